package symbolic

// Function is a named function application such as sin(x) or atan2(y, x).
// Names without a numeric lowering are allowed here and rejected by Compile.
type Function struct {
	name string
	args []Expr
}

// Call applies the named function. When every argument is numeric and the
// function is known, the call is folded to a constant.
func Call(name string, args ...Expr) Expr {
	if fn, err := lookup(name, len(args)); err == nil {
		vals := make([]float64, len(args))
		folded := true
		for i, a := range args {
			n, ok := a.(Num)
			if !ok {
				folded = false
				break
			}
			vals[i] = n.v
		}
		if folded {
			return N(fn.eval(vals))
		}
	}
	return Function{name: name, args: append([]Expr(nil), args...)}
}

func (f Function) Name() string { return f.name }
func (f Function) Args() []Expr { return append([]Expr(nil), f.args...) }

func (f Function) Equal(other Expr) bool {
	o, ok := other.(Function)
	return ok && o.name == f.name && equalAll(f.args, o.args)
}

func (f Function) subs(m Substitution) Expr { return Call(f.name, subsAll(f.args, m)...) }

func (f Function) eval(env map[Symbol]float64) (float64, error) {
	fn, err := lookup(f.name, len(f.args))
	if err != nil {
		return 0, &CompilationError{Expr: f.String(), Func: f.name, Err: err}
	}
	vals := make([]float64, len(f.args))
	for i, a := range f.args {
		if vals[i], err = a.eval(env); err != nil {
			return 0, err
		}
	}
	return fn.eval(vals), nil
}

func (f Function) collect(out map[Symbol]struct{}) {
	for _, a := range f.args {
		a.collect(out)
	}
}

func (f Function) prec() int { return precAtom }
