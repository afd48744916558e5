package lint

import (
	"sort"
	"sync"

	"github.com/leapstack-labs/tmdlint/pkg/core"
)

// Check reports whether entity violates the rule. The model gives access
// to other entities for cross-reference checks.
type Check func(entity core.Entity, model *core.Model) bool

// PredicateDef is a built-in implementation of one catalog rule.
type PredicateDef struct {
	RuleID      string      // catalog ID this predicate implements
	Description string      // one-line summary of what is flagged
	Kinds       []core.Kind // entity kinds the predicate can flag
	Check       Check

	// Documentation fields
	Rationale   string
	BadExample  string
	GoodExample string
}

// globalRegistry is the single global registry for predicates.
var globalRegistry = &Registry{
	predicates: make(map[string]PredicateDef),
}

// Registry stores registered predicates keyed by rule ID.
type Registry struct {
	mu         sync.RWMutex
	predicates map[string]PredicateDef
}

// Register adds a predicate to the global registry.
// Call this from init() functions in rule packages.
func Register(def PredicateDef) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.predicates[def.RuleID] = def
}

// Lookup returns the predicate registered for a rule ID.
func Lookup(ruleID string) (PredicateDef, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	def, ok := globalRegistry.predicates[ruleID]
	return def, ok
}

// All returns every registered predicate sorted by rule ID.
func All() []PredicateDef {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	defs := make([]PredicateDef, 0, len(globalRegistry.predicates))
	for _, def := range globalRegistry.predicates {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].RuleID < defs[j].RuleID })
	return defs
}

// Count returns the number of registered predicates.
func Count() int {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	return len(globalRegistry.predicates)
}

// Clear removes all registered predicates. Used for testing.
func Clear() {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.predicates = make(map[string]PredicateDef)
}
