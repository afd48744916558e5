package explain

import (
	"cmp"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"slices"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sethvargo/go-retry"

	"github.com/leapstack-labs/tmdlint/pkg/core"
)

// Enhancer explains violations one rule at a time. Provider failures are
// logged and leave the affected violations without an annotation.
type Enhancer struct {
	provider  Provider
	cfg       Config
	cache     *lru.Cache[string, string]
	logger    *slog.Logger
	retryBase time.Duration
}

// errCallLimit stops a run once its provider call budget is spent.
var errCallLimit = errors.New("explain: call limit reached")

// NewEnhancer creates an enhancer over provider. Unset settings in cfg take
// their defaults.
func NewEnhancer(provider Provider, cfg Config, logger *slog.Logger) (*Enhancer, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.MaxCalls <= 0 {
		cfg.MaxCalls = DefaultMaxCalls
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}

	cache, err := lru.New[string, string](cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	return &Enhancer{provider: provider, cfg: cfg, cache: cache, logger: logger, retryBase: 500 * time.Millisecond}, nil
}

// Enhance annotates violations in place and returns strategic
// recommendations, or "" when they could not be produced.
//
// A run makes at most cfg.MaxCalls provider calls, retries included. The
// last call is kept for the recommendations.
func (e *Enhancer) Enhance(ctx context.Context, violations []core.Violation, model *core.Model) string {
	groups := groupByRule(violations, model)
	e.logger.Info("explaining violations", "rules", len(groups), "violations", len(violations))

	budget := e.cfg.MaxCalls
	for i, g := range groups {
		if ctx.Err() != nil {
			break
		}
		prompt := rulePrompt(g, e.cfg.MaxTokens)
		key := cacheKey(prompt)

		text, ok := e.cache.Get(key)
		if !ok {
			if budget <= 1 {
				e.logger.Warn("explanation call limit reached", "limit", e.cfg.MaxCalls, "remaining_rules", len(groups)-i)
				break
			}
			e.logger.Debug("explaining rule", "rule_id", g.sample.RuleID, "count", g.count, "step", i+1, "of", len(groups))

			var err error
			text, err = e.generate(ctx, prompt, &budget, 1)
			if errors.Is(err, errCallLimit) {
				e.logger.Warn("explanation call limit reached", "limit", e.cfg.MaxCalls, "remaining_rules", len(groups)-i)
				break
			}
			if err != nil {
				e.logger.Warn("could not explain rule", "rule_id", g.sample.RuleID, "error", err)
				continue
			}
			e.cache.Add(key, text)
		}

		for _, idx := range g.indexes {
			violations[idx].Annotation = &core.Annotation{Explanation: text, Enhanced: true}
		}
	}

	return e.recommend(ctx, groups, len(violations), &budget)
}

func (e *Enhancer) recommend(ctx context.Context, groups []*ruleGroup, total int, budget *int) string {
	if len(groups) == 0 || ctx.Err() != nil || *budget <= 0 {
		return ""
	}

	summaries := make([]ruleSummary, 0, len(groups))
	for _, g := range groups {
		summaries = append(summaries, ruleSummary{
			RuleID:         g.sample.RuleID,
			RuleName:       g.sample.RuleName,
			Category:       g.sample.Category,
			Severity:       g.sample.Severity.String(),
			Count:          g.count,
			ExampleObjects: g.objects[:min(len(g.objects), recommendationExampleCap)],
		})
	}
	slices.SortStableFunc(summaries, func(a, b ruleSummary) int {
		return cmp.Compare(b.Count, a.Count)
	})

	prompt, err := recommendationPrompt(summaries, total)
	if err != nil {
		e.logger.Error("could not build recommendation prompt", "error", err)
		return ""
	}
	text, err := e.generate(ctx, prompt, budget, 0)
	if err != nil {
		e.logger.Error("could not generate recommendations", "error", err)
		return ""
	}
	return text
}

// generate calls the provider with a per-call timeout, retrying failures
// with exponential backoff. Every attempt takes one call from budget; an
// attempt that would leave less than reserve calls fails with errCallLimit.
func (e *Enhancer) generate(ctx context.Context, prompt Prompt, budget *int, reserve int) (string, error) {
	var text string
	backoff := retry.WithMaxRetries(uint64(e.cfg.MaxRetries), retry.NewExponential(e.retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if *budget <= reserve {
			return errCallLimit
		}
		*budget--

		callCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()

		out, err := e.provider.Generate(callCtx, prompt)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, ErrNoAPIKey) {
				return err
			}
			return retry.RetryableError(err)
		}
		text = out
		return nil
	})
	return text, err
}

func groupByRule(violations []core.Violation, model *core.Model) []*ruleGroup {
	var groups []*ruleGroup
	index := make(map[string]*ruleGroup)
	for i, v := range violations {
		g, ok := index[v.RuleID]
		if !ok {
			g = &ruleGroup{sample: v}
			index[v.RuleID] = g
			groups = append(groups, g)
		}
		g.count++
		g.indexes = append(g.indexes, i)
		if len(g.objects) < maxExampleObjects {
			g.objects = append(g.objects, v.ObjectName)
		}
		if g.count <= maxExampleExpressions && v.ObjectKind == core.KindMeasure {
			if expr, ok := measureExpression(model, v.ObjectName); ok {
				g.expressions = append(g.expressions, truncate(expr, maxExpressionRunes))
			}
		}
	}
	return groups
}

// measureExpression finds the first measure with the given name.
func measureExpression(model *core.Model, name string) (string, bool) {
	if model == nil {
		return "", false
	}
	for _, m := range model.Measures {
		if m.Name == name {
			return m.Expression, true
		}
	}
	return "", false
}

func cacheKey(p Prompt) string {
	sum := sha256.Sum256([]byte(p.System + "\x00" + p.User))
	return hex.EncodeToString(sum[:])
}
