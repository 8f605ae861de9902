package symbolic

import (
	"math"
	"sort"
)

// Expr is an immutable symbolic expression. Every operation that changes an
// expression returns a new tree.
type Expr interface {
	String() string
	Equal(other Expr) bool

	subs(m Substitution) Expr
	eval(env map[Symbol]float64) (float64, error)
	compile(index map[Symbol]int) (Func, error)
	collect(out map[Symbol]struct{})
	prec() int
}

// Printing precedence, lowest binds loosest.
const (
	precAdd = iota + 1
	precMul
	precNeg
	precPow
	precAtom
)

// Num is a floating point constant.
type Num struct{ v float64 }

func N(v float64) Num { return Num{v: v} }

func (n Num) Value() float64 { return n.v }

func (n Num) Equal(other Expr) bool {
	o, ok := other.(Num)
	return ok && (o.v == n.v || (math.IsNaN(o.v) && math.IsNaN(n.v)))
}

func (n Num) subs(Substitution) Expr                   { return n }
func (n Num) eval(map[Symbol]float64) (float64, error) { return n.v, nil }
func (n Num) collect(map[Symbol]struct{})              {}
func (n Num) prec() int {
	if n.v < 0 {
		return precNeg
	}
	return precAtom
}

// Symbol is a named variable. Two symbols with the same name are the same symbol.
type Symbol struct{ name string }

func S(name string) Symbol { return Symbol{name: name} }

// Symbols creates one symbol per name, in order.
func Symbols(names ...string) []Symbol {
	out := make([]Symbol, len(names))
	for i, n := range names {
		out[i] = S(n)
	}
	return out
}

func (s Symbol) Name() string   { return s.name }
func (s Symbol) String() string { return s.name }

func (s Symbol) Equal(other Expr) bool {
	o, ok := other.(Symbol)
	return ok && o.name == s.name
}

func (s Symbol) subs(m Substitution) Expr {
	if r, ok := m[s]; ok {
		return r
	}
	return s
}

func (s Symbol) eval(env map[Symbol]float64) (float64, error) {
	v, ok := env[s]
	if !ok {
		return 0, &CompilationError{Expr: s.name, Unbound: []Symbol{s}, Err: ErrUnboundSymbol}
	}
	return v, nil
}

func (s Symbol) collect(out map[Symbol]struct{}) { out[s] = struct{}{} }
func (s Symbol) prec() int                       { return precAtom }

// Add is a sum of terms. Build it with Sum.
type Add struct{ terms []Expr }

// Sum adds terms, flattening nested sums and folding numeric constants.
func Sum(terms ...Expr) Expr {
	flat := make([]Expr, 0, len(terms))
	acc := 0.0
	for _, t := range terms {
		switch v := t.(type) {
		case Num:
			acc += v.v
		case Add:
			for _, inner := range v.terms {
				if n, ok := inner.(Num); ok {
					acc += n.v
				} else {
					flat = append(flat, inner)
				}
			}
		default:
			flat = append(flat, t)
		}
	}
	if acc != 0 {
		flat = append(flat, N(acc))
	}
	switch len(flat) {
	case 0:
		return N(0)
	case 1:
		return flat[0]
	}
	return Add{terms: flat}
}

func (a Add) Terms() []Expr { return append([]Expr(nil), a.terms...) }

func (a Add) Equal(other Expr) bool {
	o, ok := other.(Add)
	return ok && equalAll(a.terms, o.terms)
}

func (a Add) subs(m Substitution) Expr { return Sum(subsAll(a.terms, m)...) }

func (a Add) eval(env map[Symbol]float64) (float64, error) {
	acc := 0.0
	for _, t := range a.terms {
		v, err := t.eval(env)
		if err != nil {
			return 0, err
		}
		acc += v
	}
	return acc, nil
}

func (a Add) collect(out map[Symbol]struct{}) {
	for _, t := range a.terms {
		t.collect(out)
	}
}

func (a Add) prec() int { return precAdd }

// Mul is a product of factors. A numeric coefficient, if any, is always the
// first factor. Build it with Product.
type Mul struct{ factors []Expr }

// Product multiplies factors, flattening nested products and folding numeric
// constants into a single leading coefficient.
func Product(factors ...Expr) Expr {
	flat := make([]Expr, 0, len(factors))
	coeff := 1.0
	for _, f := range factors {
		switch v := f.(type) {
		case Num:
			coeff *= v.v
		case Mul:
			for _, inner := range v.factors {
				if n, ok := inner.(Num); ok {
					coeff *= n.v
				} else {
					flat = append(flat, inner)
				}
			}
		default:
			flat = append(flat, f)
		}
	}
	if coeff == 0 || len(flat) == 0 {
		return N(coeff)
	}
	if coeff != 1 {
		flat = append([]Expr{N(coeff)}, flat...)
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return Mul{factors: flat}
}

func (m Mul) Factors() []Expr { return append([]Expr(nil), m.factors...) }

// coefficient splits the leading numeric factor from the rest.
func (m Mul) coefficient() (float64, []Expr) {
	if n, ok := m.factors[0].(Num); ok {
		return n.v, m.factors[1:]
	}
	return 1, m.factors
}

func (m Mul) Equal(other Expr) bool {
	o, ok := other.(Mul)
	return ok && equalAll(m.factors, o.factors)
}

func (m Mul) subs(s Substitution) Expr { return Product(subsAll(m.factors, s)...) }

func (m Mul) eval(env map[Symbol]float64) (float64, error) {
	acc := 1.0
	for _, f := range m.factors {
		v, err := f.eval(env)
		if err != nil {
			return 0, err
		}
		acc *= v
	}
	return acc, nil
}

func (m Mul) collect(out map[Symbol]struct{}) {
	for _, f := range m.factors {
		f.collect(out)
	}
}

func (m Mul) prec() int {
	if c, _ := m.coefficient(); c < 0 {
		return precNeg
	}
	return precMul
}

// Pow is base^exp. Build it with Power.
type Pow struct{ base, exp Expr }

func Power(base, exp Expr) Expr {
	if e, ok := exp.(Num); ok {
		switch e.v {
		case 0:
			return N(1)
		case 1:
			return base
		}
		if b, ok := base.(Num); ok {
			return N(math.Pow(b.v, e.v))
		}
	}
	return Pow{base: base, exp: exp}
}

func (p Pow) Base() Expr     { return p.base }
func (p Pow) Exponent() Expr { return p.exp }

func (p Pow) Equal(other Expr) bool {
	o, ok := other.(Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p Pow) subs(m Substitution) Expr { return Power(p.base.subs(m), p.exp.subs(m)) }

func (p Pow) eval(env map[Symbol]float64) (float64, error) {
	b, err := p.base.eval(env)
	if err != nil {
		return 0, err
	}
	e, err := p.exp.eval(env)
	if err != nil {
		return 0, err
	}
	return math.Pow(b, e), nil
}

func (p Pow) collect(out map[Symbol]struct{}) {
	p.base.collect(out)
	p.exp.collect(out)
}

func (p Pow) prec() int { return precPow }

// Neg returns -x.
func Neg(x Expr) Expr { return Product(N(-1), x) }

// Diff returns a - b.
func Diff(a, b Expr) Expr { return Sum(a, Neg(b)) }

// Div returns a / b as a * b^-1.
func Div(a, b Expr) Expr { return Product(a, Power(b, N(-1))) }

// FreeSymbols returns the symbols occurring in e, sorted by name.
func FreeSymbols(e Expr) []Symbol {
	set := make(map[Symbol]struct{})
	e.collect(set)
	out := make([]Symbol, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

func equalAll(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func subsAll(es []Expr, m Substitution) []Expr {
	out := make([]Expr, len(es))
	for i, e := range es {
		out[i] = e.subs(m)
	}
	return out
}
