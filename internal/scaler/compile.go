package scaler

import (
	"github.com/san-kum/deqscale/internal/dynamo"
	"github.com/san-kum/deqscale/internal/symbolic"
)

// Compile binds the parameters and compiles each right-hand side into a
// function of [t, y_1, ..., y_n]. Errors from the symbolic package are
// returned as they are.
func (p *Problem) Compile() ([]symbolic.Func, error) {
	vars := make([]symbolic.Symbol, 0, len(p.def.States)+1)
	vars = append(vars, p.def.Time)
	vars = append(vars, p.def.States...)

	bound := p.BoundRHS()
	fns := make([]symbolic.Func, len(bound))
	for i, rhs := range bound {
		fn, err := symbolic.Compile(rhs, vars)
		if err != nil {
			return nil, err
		}
		fns[i] = fn
	}
	return fns, nil
}

// NewDerivative adapts compiled components to the integrator's signature. The
// result lists the components in the order of fns.
func NewDerivative(fns []symbolic.Func) dynamo.Func {
	return func(t float64, y dynamo.State) dynamo.State {
		args := make([]float64, len(y)+1)
		args[0] = t
		copy(args[1:], y)

		dy := make(dynamo.State, len(fns))
		for i, fn := range fns {
			dy[i] = fn(args)
		}
		return dy
	}
}
