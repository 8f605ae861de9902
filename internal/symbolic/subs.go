package symbolic

// Substitution maps symbols to replacement expressions. All replacements are
// applied simultaneously, so a replacement that mentions its own symbol is not
// substituted again.
type Substitution map[Symbol]Expr

// Values builds a substitution that binds each symbol to a constant.
func Values(vals map[Symbol]float64) Substitution {
	m := make(Substitution, len(vals))
	for s, v := range vals {
		m[s] = N(v)
	}
	return m
}

// Substitute returns a new expression with every occurrence of a mapped symbol
// replaced. e itself is left untouched.
func Substitute(e Expr, m Substitution) Expr {
	if len(m) == 0 {
		return e
	}
	return e.subs(m)
}

// Evaluate walks the tree with the given symbol values. It is the reference
// interpreter for compiled functions.
func Evaluate(e Expr, env map[Symbol]float64) (float64, error) {
	return e.eval(env)
}
