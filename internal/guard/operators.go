package guard

import (
	"fmt"
	"math"
	"strings"
)

// Operator is a comparison operator.
type Operator string

const (
	OpEq       Operator = "=="
	OpNeq      Operator = "!="
	OpGt       Operator = ">"
	OpGte      Operator = ">="
	OpLt       Operator = "<"
	OpLte      Operator = "<="
	OpContains Operator = "contains"
	OpIn       Operator = "in" // right operand is a comma-separated list
)

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

func apply(op Operator, left, right interface{}) (bool, error) {
	switch op {
	case OpEq:
		return equal(left, right), nil
	case OpNeq:
		return !equal(left, right), nil
	case OpGt, OpGte, OpLt, OpLte:
		return order(op, left, right)
	case OpContains:
		ls, ok := left.(string)
		if !ok {
			return false, fmt.Errorf("contains: left operand must be a string, got %T", left)
		}
		return strings.Contains(ls, fmt.Sprint(right)), nil
	case OpIn:
		rs, ok := right.(string)
		if !ok {
			return false, fmt.Errorf("in: right operand must be a string list, got %T", right)
		}
		for _, item := range strings.Split(rs, ",") {
			if equal(left, strings.TrimSpace(item)) {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("unknown operator %q", op)
	}
}

// equal compares numbers by value, booleans strictly and everything else by text.
func equal(left, right interface{}) bool {
	lf, lok := toFloat64(left)
	rf, rok := toFloat64(right)
	if lok && rok {
		return math.Abs(lf-rf) < 1e-9
	}
	if lb, ok := left.(bool); ok {
		rb, ok := right.(bool)
		return ok && lb == rb
	}
	return fmt.Sprint(left) == fmt.Sprint(right)
}

func order(op Operator, left, right interface{}) (bool, error) {
	lf, lok := toFloat64(left)
	rf, rok := toFloat64(right)
	if !lok || !rok {
		return false, fmt.Errorf("operator %s needs numeric operands, got %T and %T", op, left, right)
	}
	switch op {
	case OpGt:
		return lf > rf, nil
	case OpGte:
		return lf >= rf, nil
	case OpLt:
		return lf < rf, nil
	default:
		return lf <= rf, nil
	}
}
