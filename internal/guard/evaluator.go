package guard

import (
	"fmt"
	"strings"
)

// Scope resolves field paths during evaluation.
type Scope interface {
	Lookup(path []string) (interface{}, bool)
}

// Eval reports whether e holds in scope. Unknown fields are errors.
func Eval(e Expr, scope Scope) (bool, error) {
	switch x := e.(type) {
	case *Logical:
		left, err := Eval(x.Left, scope)
		if err != nil {
			return false, err
		}
		if x.Op == "AND" && !left {
			return false, nil
		}
		if x.Op == "OR" && left {
			return true, nil
		}
		return Eval(x.Right, scope)
	case *Not:
		v, err := Eval(x.Inner, scope)
		return !v, err
	case *Compare:
		left, err := value(x.Left, scope)
		if err != nil {
			return false, err
		}
		right, err := value(x.Right, scope)
		if err != nil {
			return false, err
		}
		return apply(x.Op, left, right)
	default:
		return false, fmt.Errorf("guard: unknown expression %T", e)
	}
}

// Fields lists every field path referenced by e, in order of appearance.
func Fields(e Expr) []string {
	var out []string
	var walk func(Expr)
	add := func(o Operand) {
		if f, ok := o.(*Field); ok {
			out = append(out, strings.Join(f.Path, "."))
		}
	}
	walk = func(e Expr) {
		switch x := e.(type) {
		case *Logical:
			walk(x.Left)
			walk(x.Right)
		case *Not:
			walk(x.Inner)
		case *Compare:
			add(x.Left)
			add(x.Right)
		}
	}
	walk(e)
	return out
}

func value(o Operand, scope Scope) (interface{}, error) {
	switch x := o.(type) {
	case *Literal:
		return x.Value, nil
	case *Field:
		v, ok := scope.Lookup(x.Path)
		if !ok {
			return nil, fmt.Errorf("guard: unknown field %q", strings.Join(x.Path, "."))
		}
		return v, nil
	default:
		return nil, fmt.Errorf("guard: unknown operand %T", o)
	}
}
