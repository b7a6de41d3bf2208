package impact

import (
	"fmt"

	"github.com/gyaneshwarpardhi/depgraph/internal/config"
	"github.com/gyaneshwarpardhi/depgraph/internal/guard"
)

// Suggestion is one mitigation offered for a delayed task.
type Suggestion struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
}

// Advisor turns facts about a node into a suggestion of one type.
type Advisor interface {
	// Type returns the suggestion type this advisor is registered under.
	Type() string
	// Validate checks rule params when rules are compiled.
	Validate(params map[string]interface{}) error
	Advise(f *Facts, params map[string]interface{}) (Suggestion, error)
}

// AdvisorSource looks advisors up by suggestion type.
type AdvisorSource interface {
	Get(kind string) (Advisor, error)
}

// Rule is a compiled heuristic: when Guard holds, Advisor contributes a suggestion.
// A nil Guard always holds.
type Rule struct {
	Type    string
	Guard   guard.Expr
	Params  map[string]interface{}
	advisor Advisor
}

// DefaultRules are used when a board configures none: parallelize when more than three
// tasks wait downstream, split tasks estimated above twelve hours, and reassign
// whenever anything is waiting.
func DefaultRules() []config.RuleDef {
	return []config.RuleDef{
		{Type: "parallelize", When: "downstream.count > 3", Params: map[string]interface{}{"fraction": 0.3}},
		{Type: "split", When: "target.estimated_hours > 12"},
		{Type: "reassign", When: "downstream.count > 0", Params: map[string]interface{}{"fraction": 0.4}},
	}
}

// CompileRules parses every guard and validates advisor params up front, so
// analysis never parses.
func CompileRules(defs []config.RuleDef, src AdvisorSource) ([]Rule, error) {
	rules := make([]Rule, 0, len(defs))
	for i, d := range defs {
		if d.Type == config.FallbackRuleType {
			return nil, fmt.Errorf("rule %d: %q is always applied last and cannot be configured", i, d.Type)
		}
		adv, err := src.Get(d.Type)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		if err := adv.Validate(d.Params); err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, d.Type, err)
		}
		r := Rule{Type: d.Type, Params: d.Params, advisor: adv}
		if d.When != "" {
			g, err := guard.Parse(d.When)
			if err != nil {
				return nil, fmt.Errorf("rule %d (%s): %w", i, d.Type, err)
			}
			for _, f := range guard.Fields(g) {
				if !knownField(f) {
					return nil, fmt.Errorf("rule %d (%s): unknown field %q", i, d.Type, f)
				}
			}
			r.Guard = g
		}
		rules = append(rules, r)
	}
	return rules, nil
}
