package impact

import (
	"fmt"

	"github.com/gyaneshwarpardhi/depgraph/internal/config"
	"github.com/gyaneshwarpardhi/depgraph/internal/dag"
	"github.com/gyaneshwarpardhi/depgraph/internal/guard"
	"github.com/gyaneshwarpardhi/depgraph/internal/task"
)

// Analysis summarizes what happens downstream if a task slips.
type Analysis struct {
	TargetID        string       `json:"target_id"`
	DownstreamTasks []task.Task  `json:"downstream_tasks"`
	CumulativeDelay float64      `json:"cumulative_delay"`
	CriticalPath    bool         `json:"critical_path"`
	Suggestions     []Suggestion `json:"suggested_actions"`
}

// Analyzer computes impact analyses. It is immutable and safe for concurrent use;
// a config reload builds a new one.
type Analyzer struct {
	rules    []Rule
	fallback Advisor
}

// NewAnalyzer combines compiled rules with the always-last fallback advisor.
func NewAnalyzer(rules []Rule, src AdvisorSource) (*Analyzer, error) {
	fb, err := src.Get(config.FallbackRuleType)
	if err != nil {
		return nil, fmt.Errorf("fallback advisor: %w", err)
	}
	return &Analyzer{rules: rules, fallback: fb}, nil
}

// FromConfig compiles the board's rules, or DefaultRules when none are configured.
func FromConfig(cfg *config.BoardConfig, src AdvisorSource) (*Analyzer, error) {
	defs := cfg.Impact.Rules
	if len(defs) == 0 {
		defs = DefaultRules()
	}
	rules, err := CompileRules(defs, src)
	if err != nil {
		return nil, err
	}
	return NewAnalyzer(rules, src)
}

// Rules returns the compiled rules in evaluation order.
func (a *Analyzer) Rules() []Rule {
	return append([]Rule(nil), a.rules...)
}

// Gather collects the facts the rules evaluate for node id.
//
// CumulativeDelay sums the estimates of every downstream task. It is an upper
// bound, not a schedule: parallel branches are added as if they ran back to back.
func Gather(g *dag.Graph, id string) (*Facts, error) {
	n, err := g.Node(id)
	if err != nil {
		return nil, err
	}
	downstream, err := g.Downstream(id)
	if err != nil {
		return nil, err
	}
	f := &Facts{
		Target:        n.Task,
		Prerequisites: len(n.Dependencies),
		Downstream:    downstream,
	}
	for _, t := range downstream {
		f.CumulativeDelay += t.EstimatedHours
	}
	f.CriticalPath = f.Prerequisites > 0 && len(downstream) > 0
	return f, nil
}

// Analyze evaluates the rules against node id. Suggestions keep rule order and
// always end with the fallback.
func (a *Analyzer) Analyze(g *dag.Graph, id string) (*Analysis, error) {
	f, err := Gather(g, id)
	if err != nil {
		return nil, err
	}
	res := &Analysis{
		TargetID:        id,
		DownstreamTasks: f.Downstream,
		CumulativeDelay: f.CumulativeDelay,
		CriticalPath:    f.CriticalPath,
	}
	for i, r := range a.rules {
		if r.Guard != nil {
			ok, err := guard.Eval(r.Guard, f)
			if err != nil {
				return nil, fmt.Errorf("rule %d (%s): %w", i, r.Type, err)
			}
			if !ok {
				continue
			}
		}
		s, err := r.advisor.Advise(f, r.Params)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, r.Type, err)
		}
		res.Suggestions = append(res.Suggestions, s)
	}
	s, err := a.fallback.Advise(f, nil)
	if err != nil {
		return nil, fmt.Errorf("fallback: %w", err)
	}
	res.Suggestions = append(res.Suggestions, s)
	return res, nil
}
