package symbolic

import (
	"strconv"
	"strings"
)

// Output is valid input for Parse: operators are + - * / ^ and calls use
// parentheses.

func (n Num) String() string { return formatFloat(n.v) }

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (a Add) String() string {
	var b strings.Builder
	for i, t := range a.terms {
		if i == 0 {
			b.WriteString(t.String())
			continue
		}
		if neg, ok := negated(t); ok {
			b.WriteString(" - ")
			b.WriteString(wrap(neg, precMul))
			continue
		}
		b.WriteString(" + ")
		b.WriteString(t.String())
	}
	return b.String()
}

// negated returns -t when t prints with a leading minus sign.
func negated(t Expr) (Expr, bool) {
	switch v := t.(type) {
	case Num:
		if v.v < 0 {
			return N(-v.v), true
		}
	case Mul:
		if c, rest := v.coefficient(); c < 0 {
			return Product(append([]Expr{N(-c)}, rest...)...), true
		}
	}
	return nil, false
}

func (m Mul) String() string {
	coeff, rest := m.coefficient()

	var num []string
	var den []Expr
	for _, f := range rest {
		if p, ok := f.(Pow); ok {
			if e, ok := p.exp.(Num); ok && e.v < 0 {
				den = append(den, Power(p.base, N(-e.v)))
				continue
			}
		}
		num = append(num, wrap(f, precMul))
	}

	var b strings.Builder
	switch {
	case coeff == -1 && len(num) > 0:
		b.WriteString("-")
	case coeff != 1 || len(num) == 0:
		b.WriteString(formatFloat(coeff))
		if len(num) > 0 {
			b.WriteString("*")
		}
	}
	b.WriteString(strings.Join(num, "*"))

	switch len(den) {
	case 0:
	case 1:
		b.WriteString("/")
		b.WriteString(wrap(den[0], precPow))
	default:
		parts := make([]string, len(den))
		for i, d := range den {
			parts[i] = wrap(d, precMul)
		}
		b.WriteString("/(")
		b.WriteString(strings.Join(parts, "*"))
		b.WriteString(")")
	}
	return b.String()
}

func (p Pow) String() string {
	base := p.base.String()
	if p.base.prec() <= precPow {
		base = "(" + base + ")"
	}
	exp := p.exp.String()
	if p.exp.prec() < precAtom {
		exp = "(" + exp + ")"
	}
	return base + "^" + exp
}

func (f Function) String() string {
	args := make([]string, len(f.args))
	for i, a := range f.args {
		args[i] = a.String()
	}
	return f.name + "(" + strings.Join(args, ", ") + ")"
}

// wrap prints e, parenthesized when it binds looser than min.
func wrap(e Expr, min int) string {
	return wrapString(e.String(), e.prec() < min)
}

func wrapString(s string, paren bool) string {
	if paren {
		return "(" + s + ")"
	}
	return s
}
