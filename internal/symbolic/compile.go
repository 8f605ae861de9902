package symbolic

import "math"

// Func evaluates a compiled expression. args holds one value per variable, in
// the order given to Compile.
type Func func(args []float64) float64

// Compile lowers e to a numeric function of vars. Every free symbol of e must
// appear in vars and every function must have a numeric lowering; otherwise a
// *CompilationError is returned.
func Compile(e Expr, vars []Symbol) (Func, error) {
	index := make(map[Symbol]int, len(vars))
	for i, v := range vars {
		if _, dup := index[v]; !dup {
			index[v] = i
		}
	}

	var unbound []Symbol
	for _, s := range FreeSymbols(e) {
		if _, ok := index[s]; !ok {
			unbound = append(unbound, s)
		}
	}
	if len(unbound) > 0 {
		return nil, &CompilationError{Expr: e.String(), Unbound: unbound, Err: ErrUnboundSymbol}
	}

	fn, err := e.compile(index)
	if err != nil {
		if ce, ok := err.(*CompilationError); ok && ce.Expr == "" {
			ce.Expr = e.String()
		}
		return nil, err
	}
	return fn, nil
}

func (n Num) compile(map[Symbol]int) (Func, error) {
	v := n.v
	return func([]float64) float64 { return v }, nil
}

func (s Symbol) compile(index map[Symbol]int) (Func, error) {
	i := index[s]
	return func(args []float64) float64 { return args[i] }, nil
}

func (a Add) compile(index map[Symbol]int) (Func, error) {
	fns, err := compileAll(a.terms, index)
	if err != nil {
		return nil, err
	}
	if len(fns) == 2 {
		f0, f1 := fns[0], fns[1]
		return func(args []float64) float64 { return f0(args) + f1(args) }, nil
	}
	return func(args []float64) float64 {
		acc := 0.0
		for _, f := range fns {
			acc += f(args)
		}
		return acc
	}, nil
}

func (m Mul) compile(index map[Symbol]int) (Func, error) {
	fns, err := compileAll(m.factors, index)
	if err != nil {
		return nil, err
	}
	if len(fns) == 2 {
		f0, f1 := fns[0], fns[1]
		return func(args []float64) float64 { return f0(args) * f1(args) }, nil
	}
	return func(args []float64) float64 {
		acc := 1.0
		for _, f := range fns {
			acc *= f(args)
		}
		return acc
	}, nil
}

func (p Pow) compile(index map[Symbol]int) (Func, error) {
	base, err := p.base.compile(index)
	if err != nil {
		return nil, err
	}
	if e, ok := p.exp.(Num); ok {
		switch e.v {
		case 2:
			return func(args []float64) float64 { b := base(args); return b * b }, nil
		case -1:
			return func(args []float64) float64 { return 1 / base(args) }, nil
		case 0.5:
			return func(args []float64) float64 { return math.Sqrt(base(args)) }, nil
		}
	}
	exp, err := p.exp.compile(index)
	if err != nil {
		return nil, err
	}
	return func(args []float64) float64 { return math.Pow(base(args), exp(args)) }, nil
}

func (f Function) compile(index map[Symbol]int) (Func, error) {
	fn, err := lookup(f.name, len(f.args))
	if err != nil {
		return nil, &CompilationError{Func: f.name, Err: err}
	}
	argFns, err := compileAll(f.args, index)
	if err != nil {
		return nil, err
	}
	return func(args []float64) float64 {
		vals := make([]float64, len(argFns))
		for i, a := range argFns {
			vals[i] = a(args)
		}
		return fn.eval(vals)
	}, nil
}

func compileAll(es []Expr, index map[Symbol]int) ([]Func, error) {
	fns := make([]Func, len(es))
	for i, e := range es {
		f, err := e.compile(index)
		if err != nil {
			return nil, err
		}
		fns[i] = f
	}
	return fns, nil
}
