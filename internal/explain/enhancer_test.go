package explain

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/tmdlint/internal/testutil"
	"github.com/leapstack-labs/tmdlint/pkg/core"
)

// fakeProvider answers each prompt from respond and records every call.
type fakeProvider struct {
	mu      sync.Mutex
	prompts []Prompt
	respond func(call int, p Prompt) (string, error)
}

func (f *fakeProvider) Generate(_ context.Context, p Prompt) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, p)
	if f.respond == nil {
		return "answer", nil
	}
	return f.respond(len(f.prompts), p)
}

func (f *fakeProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func sampleModel() *core.Model {
	m := &core.Model{}
	t := core.NewTable("Sales", "table Sales", "Sales.tmdl")
	avg := core.NewMeasure("Sales", "Avg", "measure Avg = [A] / [B]", "Sales.tmdl")
	avg.Expression = "[A] / [B]"
	long := core.NewMeasure("Sales", "Long", "", "Sales.tmdl")
	long.Expression = strings.Repeat("x", 600)
	t.Measures = append(t.Measures, avg, long)
	m.AddTable(t)
	return m
}

func sampleViolations() []core.Violation {
	divide := core.Rule{ID: "DIVIDE", Name: "Use DIVIDE", Category: "DAX Expressions", Severity: core.SeverityWarning, Description: "Use DIVIDE."}
	float := core.Rule{ID: "FLOAT", Name: "No doubles", Category: "Performance", Severity: core.SeverityWarning, Description: "Avoid double."}
	return []core.Violation{
		core.NewViolation(divide, core.ObjectRef{Name: "Avg", Kind: core.KindMeasure, FilePath: "Sales.tmdl"}),
		core.NewViolation(float, core.ObjectRef{Name: "Amount", Kind: core.KindColumn, FilePath: "Sales.tmdl"}),
		core.NewViolation(divide, core.ObjectRef{Name: "Long", Kind: core.KindMeasure, FilePath: "Sales.tmdl"}),
		core.NewViolation(float, core.ObjectRef{Name: "Price", Kind: core.KindColumn, FilePath: "Sales.tmdl"}),
		core.NewViolation(float, core.ObjectRef{Name: "Cost", Kind: core.KindColumn, FilePath: "Sales.tmdl"}),
	}
}

func newEnhancer(t *testing.T, p Provider, cfg Config) *Enhancer {
	t.Helper()
	e, err := NewEnhancer(p, cfg, testutil.NewTestLogger(t))
	require.NoError(t, err)
	e.retryBase = time.Millisecond
	return e
}

func TestEnhance_AnnotatesEachRuleGroup(t *testing.T) {
	provider := &fakeProvider{respond: func(_ int, p Prompt) (string, error) {
		switch {
		case p.System == recommendationSystem:
			return "recommendations", nil
		case strings.Contains(p.User, "Rule: Use DIVIDE"):
			return "divide explained", nil
		default:
			return "float explained", nil
		}
	}}
	violations := sampleViolations()
	before := sampleViolations()

	recs := newEnhancer(t, provider, Config{}).Enhance(context.Background(), violations, sampleModel())

	assert.Equal(t, "recommendations", recs)
	assert.Equal(t, 3, provider.calls())
	for i, v := range violations {
		require.True(t, v.Enhanced(), v.ObjectName)
		if v.RuleID == "DIVIDE" {
			assert.Equal(t, "divide explained", v.Explanation())
		} else {
			assert.Equal(t, "float explained", v.Explanation())
		}
		v.Annotation = nil
		assert.Equal(t, before[i], v)
	}
}

func TestEnhance_RulePromptContents(t *testing.T) {
	provider := &fakeProvider{}
	newEnhancer(t, provider, Config{MaxTokens: 300}).Enhance(context.Background(), sampleViolations(), sampleModel())

	require.Equal(t, 3, provider.calls())
	divide := provider.prompts[0]
	assert.Equal(t, ruleSystem, divide.System)
	assert.Equal(t, 500, divide.MaxTokens)
	assert.Contains(t, divide.User, "has 2 violations")
	assert.Contains(t, divide.User, "Severity: WARNING")
	assert.Contains(t, divide.User, "- Avg\n- Long\n")
	assert.Contains(t, divide.User, "```dax\n[A] / [B]\n```")
	assert.Contains(t, divide.User, "```dax\n"+strings.Repeat("x", 500)+"\n```")
	assert.NotContains(t, divide.User, strings.Repeat("x", 501))

	float := provider.prompts[1]
	assert.Contains(t, float.User, "- Amount\n- Price\n- Cost\n")
	assert.NotContains(t, float.User, "```dax")
}

func TestEnhance_RecommendationPromptSortedByCount(t *testing.T) {
	provider := &fakeProvider{}
	newEnhancer(t, provider, Config{}).Enhance(context.Background(), sampleViolations(), sampleModel())

	rec := provider.prompts[len(provider.prompts)-1]
	assert.Equal(t, recommendationSystem, rec.System)
	assert.Equal(t, recommendationMaxTokens, rec.MaxTokens)
	assert.Contains(t, rec.User, "5 total violations across 2 rule types")
	assert.Less(t, strings.Index(rec.User, `"rule_id": "FLOAT"`), strings.Index(rec.User, `"rule_id": "DIVIDE"`))
}

func TestEnhance_CachesExplanations(t *testing.T) {
	provider := &fakeProvider{}
	e := newEnhancer(t, provider, Config{})

	e.Enhance(context.Background(), sampleViolations(), sampleModel())
	require.Equal(t, 3, provider.calls())

	second := sampleViolations()
	e.Enhance(context.Background(), second, sampleModel())
	assert.Equal(t, 4, provider.calls(), "only recommendations are requested again")
	for _, v := range second {
		assert.True(t, v.Enhanced())
	}
}

func TestEnhance_CallLimit(t *testing.T) {
	tests := []struct {
		name        string
		maxCalls    int
		wantCalls   int
		wantDivide  bool
		wantSummary bool
	}{
		{name: "one call goes to recommendations", maxCalls: 1, wantCalls: 1, wantSummary: true},
		{name: "second call explains the first rule", maxCalls: 2, wantCalls: 2, wantDivide: true, wantSummary: true},
		{name: "zero takes the default", maxCalls: 0, wantCalls: 3, wantDivide: true, wantSummary: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{}
			violations := sampleViolations()

			recs := newEnhancer(t, provider, Config{MaxCalls: tt.maxCalls}).Enhance(context.Background(), violations, sampleModel())

			assert.Equal(t, tt.wantCalls, provider.calls())
			assert.Equal(t, tt.wantSummary, recs != "")
			for _, v := range violations {
				want := tt.wantDivide && v.RuleID == "DIVIDE"
				assert.Equal(t, want, v.Enhanced(), v.ObjectName)
			}
		})
	}
}

func TestEnhance_CallLimitCountsEveryRequest(t *testing.T) {
	// four distinct rules, more than the limit allows
	var violations []core.Violation
	for _, id := range []string{"R1", "R2", "R3", "R4"} {
		rule := core.Rule{ID: id, Name: "Rule " + id, Category: "Performance", Severity: core.SeverityInfo}
		violations = append(violations, core.NewViolation(rule, core.ObjectRef{Name: "Amount", Kind: core.KindColumn}))
	}

	tests := []struct {
		name       string
		maxCalls   int
		maxRetries int
		fail       bool
	}{
		{name: "successful calls", maxCalls: 3},
		{name: "single call", maxCalls: 1},
		{name: "failing calls with retries", maxCalls: 4, maxRetries: 2, fail: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{respond: func(int, Prompt) (string, error) {
				if tt.fail {
					return "", errors.New("unavailable")
				}
				return "answer", nil
			}}
			vs := append([]core.Violation(nil), violations...)

			newEnhancer(t, provider, Config{MaxCalls: tt.maxCalls, MaxRetries: tt.maxRetries}).Enhance(context.Background(), vs, nil)

			assert.Equal(t, tt.maxCalls, provider.calls())
		})
	}
}

func TestEnhance_CacheKeyIncludesRuleID(t *testing.T) {
	a := core.Rule{ID: "FIRST", Name: "Same", Category: "Performance", Severity: core.SeverityInfo, Description: "d"}
	b := a
	b.ID = "SECOND"
	violations := []core.Violation{
		core.NewViolation(a, core.ObjectRef{Name: "Amount", Kind: core.KindColumn}),
		core.NewViolation(b, core.ObjectRef{Name: "Amount", Kind: core.KindColumn}),
	}
	provider := &fakeProvider{respond: func(_ int, p Prompt) (string, error) {
		if p.System == recommendationSystem {
			return "recommendations", nil
		}
		if strings.Contains(p.User, "Rule ID: FIRST") {
			return "first", nil
		}
		return "second", nil
	}}

	newEnhancer(t, provider, Config{}).Enhance(context.Background(), violations, nil)

	assert.Equal(t, 3, provider.calls())
	assert.Equal(t, "first", violations[0].Explanation())
	assert.Equal(t, "second", violations[1].Explanation())
}

func TestEnhance_FailuresLeaveViolationsUnannotated(t *testing.T) {
	provider := &fakeProvider{respond: func(_ int, p Prompt) (string, error) {
		if strings.Contains(p.User, "Rule: Use DIVIDE") || p.System == recommendationSystem {
			return "", errors.New("quota exceeded")
		}
		return "ok", nil
	}}
	violations := sampleViolations()

	recs := newEnhancer(t, provider, Config{}).Enhance(context.Background(), violations, sampleModel())

	assert.Empty(t, recs)
	for _, v := range violations {
		if v.RuleID == "DIVIDE" {
			assert.Nil(t, v.Annotation)
		} else {
			assert.Equal(t, "ok", v.Explanation())
		}
	}
}

func TestEnhance_Retries(t *testing.T) {
	provider := &fakeProvider{respond: func(call int, _ Prompt) (string, error) {
		if call == 1 {
			return "", errors.New("unavailable")
		}
		return "ok", nil
	}}
	violations := sampleViolations()[:1]

	recs := newEnhancer(t, provider, Config{MaxRetries: 1}).Enhance(context.Background(), violations, sampleModel())

	assert.Equal(t, "ok", recs)
	assert.Equal(t, "ok", violations[0].Explanation())
	assert.Equal(t, 3, provider.calls())
}

func TestEnhance_CanceledContext(t *testing.T) {
	provider := &fakeProvider{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	violations := sampleViolations()
	recs := newEnhancer(t, provider, Config{}).Enhance(ctx, violations, sampleModel())

	assert.Empty(t, recs)
	assert.Zero(t, provider.calls())
	for _, v := range violations {
		assert.Nil(t, v.Annotation)
	}
}

func TestNewProvider(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Provider: "gemini"})
	assert.ErrorIs(t, err, ErrNoAPIKey)

	_, err = NewProvider(context.Background(), Config{Provider: "openai", APIKey: "k"})
	assert.ErrorContains(t, err, `unknown provider "openai"`)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))
	assert.Equal(t, "éé", truncate("ééé", 2))
}
