package advice

import (
	"fmt"
	"math"

	"github.com/gyaneshwarpardhi/depgraph/internal/impact"
)

// Parallelize suggests running dependent tasks side by side.
// Param "fraction" (default 0.3) is the share of the cumulative delay it claims to recover.
type Parallelize struct{}

func (Parallelize) Type() string { return "parallelize" }

func (Parallelize) Validate(params map[string]interface{}) error {
	return validateFraction(params)
}

func (p Parallelize) Advise(f *impact.Facts, params map[string]interface{}) (impact.Suggestion, error) {
	return impact.Suggestion{
		Type:        p.Type(),
		Description: "Parallelize dependent tasks where possible",
		Impact:      fmt.Sprintf("Could reduce delay by %dh", recovered(f, params, 0.3)),
	}, nil
}

// Split suggests breaking a large task down.
type Split struct{}

func (Split) Type() string                               { return "split" }
func (Split) Validate(params map[string]interface{}) error { return nil }

func (s Split) Advise(*impact.Facts, map[string]interface{}) (impact.Suggestion, error) {
	return impact.Suggestion{
		Type:        s.Type(),
		Description: "Break down into smaller subtasks",
		Impact:      "Reduces risk and allows for better progress tracking",
	}, nil
}

// Reassign suggests adding people to the task.
// Param "fraction" defaults to 0.4.
type Reassign struct{}

func (Reassign) Type() string { return "reassign" }

func (Reassign) Validate(params map[string]interface{}) error {
	return validateFraction(params)
}

func (r Reassign) Advise(f *impact.Facts, params map[string]interface{}) (impact.Suggestion, error) {
	return impact.Suggestion{
		Type:        r.Type(),
		Description: "Consider additional resources",
		Impact:      fmt.Sprintf("Could reduce timeline by %dh", recovered(f, params, 0.4)),
	}, nil
}

// Reschedule is the catch-all appended after every other suggestion.
type Reschedule struct{}

func (Reschedule) Type() string                               { return "reschedule" }
func (Reschedule) Validate(params map[string]interface{}) error { return nil }

func (r Reschedule) Advise(*impact.Facts, map[string]interface{}) (impact.Suggestion, error) {
	return impact.Suggestion{
		Type:        r.Type(),
		Description: "Adjust sprint timeline to accommodate delays",
		Impact:      "Maintains team velocity without burnout",
	}, nil
}

// recovered returns floor(cumulative delay × fraction) in whole hours.
func recovered(f *impact.Facts, params map[string]interface{}, def float64) int {
	frac := def
	if v, ok := toFloat64(params["fraction"]); ok {
		frac = v
	}
	return int(math.Floor(f.CumulativeDelay * frac))
}

func validateFraction(params map[string]interface{}) error {
	raw, ok := params["fraction"]
	if !ok {
		return nil
	}
	v, ok := toFloat64(raw)
	if !ok {
		return fmt.Errorf("fraction must be a number, got %T", raw)
	}
	if v <= 0 || v > 1 {
		return fmt.Errorf("fraction must be in (0, 1], got %v", v)
	}
	return nil
}

func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
