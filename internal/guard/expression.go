package guard

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Expr is a parsed guard.
type Expr interface {
	String() string
	guard()
}

// Logical joins two guards with AND or OR.
type Logical struct {
	Op          string // "AND" | "OR"
	Left, Right Expr
}

// Not negates a guard.
type Not struct {
	Inner Expr
}

// Compare is <operand> <operator> <operand>.
type Compare struct {
	Left  Operand
	Op    Operator
	Right Operand
}

func (*Logical) guard() {}
func (*Not) guard()     {}
func (*Compare) guard() {}

func (e *Logical) String() string {
	return "(" + e.Left.String() + " " + e.Op + " " + e.Right.String() + ")"
}
func (e *Not) String() string     { return "NOT " + e.Inner.String() }
func (e *Compare) String() string { return e.Left.String() + " " + string(e.Op) + " " + e.Right.String() }

// Operand is a literal or a field path.
type Operand interface {
	String() string
	operand()
}

// Literal holds a constant: float64, string or bool.
type Literal struct {
	Value interface{}
}

// Field holds a dot-separated path like "downstream.count".
type Field struct {
	Path []string
}

func (*Literal) operand() {}
func (*Field) operand()   {}

func (o *Literal) String() string {
	if s, ok := o.Value.(string); ok {
		return strconv.Quote(s)
	}
	return fmt.Sprint(o.Value)
}
func (o *Field) String() string { return strings.Join(o.Path, ".") }

type tokenKind int

const (
	tokIdent tokenKind = iota // field path or keyword
	tokOp                     // ==, !=, >=, <=, >, <
	tokString
	tokNumber
	tokBool
	tokLParen
	tokRParen
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func lex(src string) ([]token, error) {
	var toks []token
	for i := 0; i < len(src); {
		ch := src[i]
		switch {
		case unicode.IsSpace(rune(ch)):
			i++
		case ch == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case ch == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case ch == '=' || ch == '!' || ch == '<' || ch == '>':
			if i+1 < len(src) && src[i+1] == '=' {
				toks = append(toks, token{tokOp, src[i : i+2], i})
				i += 2
				continue
			}
			if ch == '=' || ch == '!' {
				return nil, fmt.Errorf("guard: unexpected %q at position %d", ch, i)
			}
			toks = append(toks, token{tokOp, string(ch), i})
			i++
		case ch == '"' || ch == '\'':
			j := i + 1
			var b strings.Builder
			for j < len(src) && src[j] != ch {
				if src[j] == '\\' && j+1 < len(src) {
					j++
				}
				b.WriteByte(src[j])
				j++
			}
			if j >= len(src) {
				return nil, fmt.Errorf("guard: unterminated string at position %d", i)
			}
			toks = append(toks, token{tokString, b.String(), i})
			i = j + 1
		case unicode.IsDigit(rune(ch)) || (ch == '-' && i+1 < len(src) && unicode.IsDigit(rune(src[i+1]))):
			j := i + 1
			for j < len(src) && (unicode.IsDigit(rune(src[j])) || src[j] == '.') {
				j++
			}
			toks = append(toks, token{tokNumber, src[i:j], i})
			i = j
		case unicode.IsLetter(rune(ch)) || ch == '_':
			j := i + 1
			for j < len(src) && (unicode.IsLetter(rune(src[j])) || unicode.IsDigit(rune(src[j])) || src[j] == '_' || src[j] == '.') {
				j++
			}
			word := src[i:j]
			if w := strings.ToLower(word); w == "true" || w == "false" {
				toks = append(toks, token{tokBool, w, i})
			} else {
				toks = append(toks, token{tokIdent, word, i})
			}
			i = j
		default:
			return nil, fmt.Errorf("guard: unexpected character %q at position %d", ch, i)
		}
	}
	return append(toks, token{tokEOF, "", len(src)}), nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	p.pos++
	return t
}

// keyword reports whether the next token is the (case-insensitive) keyword kw.
func (p *parser) keyword(kw string) bool {
	t := p.peek()
	return t.kind == tokIdent && strings.EqualFold(t.text, kw)
}

// Parse compiles a guard such as `downstream.count > 3 AND NOT target.status == "done"`.
func Parse(src string) (Expr, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	e, err := p.or()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, fmt.Errorf("guard: unexpected %q at position %d", t.text, t.pos)
	}
	return e, nil
}

// MustParse is like Parse but panics on error. For guards fixed at compile time.
func MustParse(src string) Expr {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

// or = and { OR and }
func (p *parser) or() (Expr, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.keyword("OR") {
		p.next()
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		left = &Logical{Op: "OR", Left: left, Right: right}
	}
	return left, nil
}

// and = unary { AND unary }
func (p *parser) and() (Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.keyword("AND") {
		p.next()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = &Logical{Op: "AND", Left: left, Right: right}
	}
	return left, nil
}

// unary = NOT unary | "(" or ")" | compare
func (p *parser) unary() (Expr, error) {
	if p.keyword("NOT") {
		p.next()
		inner, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &Not{Inner: inner}, nil
	}
	if p.peek().kind == tokLParen {
		p.next()
		inner, err := p.or()
		if err != nil {
			return nil, err
		}
		if t := p.next(); t.kind != tokRParen {
			return nil, fmt.Errorf("guard: expected \")\" at position %d, got %q", t.pos, t.text)
		}
		return inner, nil
	}
	return p.compare()
}

// compare = operand operator operand
func (p *parser) compare() (Expr, error) {
	left, err := p.operand()
	if err != nil {
		return nil, err
	}
	var op Operator
	switch t := p.peek(); {
	case t.kind == tokOp:
		op = Operator(t.text)
	case p.keyword("contains"):
		op = OpContains
	case p.keyword("in"):
		op = OpIn
	default:
		return nil, fmt.Errorf("guard: expected comparison operator at position %d, got %q", t.pos, t.text)
	}
	p.next()
	right, err := p.operand()
	if err != nil {
		return nil, err
	}
	return &Compare{Left: left, Op: op, Right: right}, nil
}

func (p *parser) operand() (Operand, error) {
	t := p.next()
	switch t.kind {
	case tokString:
		return &Literal{Value: t.text}, nil
	case tokNumber:
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, fmt.Errorf("guard: invalid number %q at position %d", t.text, t.pos)
		}
		return &Literal{Value: f}, nil
	case tokBool:
		return &Literal{Value: t.text == "true"}, nil
	case tokIdent:
		return &Field{Path: strings.Split(t.text, ".")}, nil
	default:
		if t.kind == tokEOF {
			return nil, fmt.Errorf("guard: unexpected end of expression")
		}
		return nil, fmt.Errorf("guard: expected operand at position %d, got %q", t.pos, t.text)
	}
}
