package scaler

import (
	"math"

	"github.com/san-kum/deqscale/internal/dynamo"
	"github.com/san-kum/deqscale/internal/symbolic"
)

// DefaultTime is the time symbol used when a Definition leaves it empty.
var DefaultTime = symbolic.S("t")

type Parameter struct {
	Symbol symbolic.Symbol
	Value  float64
}

type TimeSpan struct {
	T0, Tf float64
}

// Definition is everything needed to build a Problem. RHS[i] is dStates[i]/dt
// and Y0[i] its value at Span.T0. A zero MaxScaleFactor means 1.
type Definition struct {
	Name           string
	Time           symbolic.Symbol
	States         []symbolic.Symbol
	RHS            []symbolic.Expr
	Parameters     []Parameter
	Span           TimeSpan
	Y0             []float64
	MaxScaleFactor float64
	Options        dynamo.Options
}

// Clone returns a copy that shares no slices with d. Expressions are
// immutable and are shared.
func (d Definition) Clone() Definition {
	c := d
	c.States = append([]symbolic.Symbol(nil), d.States...)
	c.RHS = append([]symbolic.Expr(nil), d.RHS...)
	c.Parameters = append([]Parameter(nil), d.Parameters...)
	c.Y0 = append([]float64(nil), d.Y0...)
	c.Options = d.Options.Clone()
	return c
}

// Problem is a validated, read-only Definition.
type Problem struct {
	def Definition
}

// NewProblem validates def and takes a private copy of it.
func NewProblem(def Definition) (*Problem, error) {
	def = def.Clone()
	if def.Time.Name() == "" {
		def.Time = DefaultTime
	}
	if def.MaxScaleFactor == 0 {
		def.MaxScaleFactor = 1
	}
	if err := validate(def); err != nil {
		return nil, err
	}
	return &Problem{def: def}, nil
}

func validate(def Definition) error {
	if len(def.States) == 0 {
		return configError("states", "no state symbols")
	}
	if len(def.States) != len(def.Y0) || len(def.States) != len(def.RHS) {
		return configError("states", "%d state symbols, %d initial values and %d right-hand sides",
			len(def.States), len(def.Y0), len(def.RHS))
	}

	seen := make(map[symbolic.Symbol]string, len(def.States)+len(def.Parameters))
	for i, s := range def.States {
		switch {
		case s.Name() == "":
			return configError("states", "state %d has no name", i)
		case symbolic.Reserved(s.Name()):
			return configError("states", "state %s is a reserved constant", s)
		case s == def.Time:
			return configError("states", "state %s is also the time symbol", s)
		case seen[s] != "":
			return configError("states", "duplicate state %s", s)
		}
		seen[s] = "state"
		if def.RHS[i] == nil {
			return configError("rhs", "no right-hand side for %s", s)
		}
		if !finite(def.Y0[i]) {
			return configError("y0", "initial value %g for %s", def.Y0[i], s)
		}
	}

	for _, p := range def.Parameters {
		switch {
		case p.Symbol.Name() == "":
			return configError("parameters", "parameter without a name")
		case symbolic.Reserved(p.Symbol.Name()):
			return configError("parameters", "parameter %s is a reserved constant", p.Symbol)
		case p.Symbol == def.Time:
			return configError("parameters", "parameter %s is also the time symbol", p.Symbol)
		case seen[p.Symbol] != "":
			return configError("parameters", "parameter %s is already a %s", p.Symbol, seen[p.Symbol])
		case !finite(p.Value):
			return configError("parameters", "value %g for %s", p.Value, p.Symbol)
		}
		seen[p.Symbol] = "parameter"
	}

	if symbolic.Reserved(def.Time.Name()) {
		return configError("time", "time symbol %s is a reserved constant", def.Time)
	}
	if !finite(def.Span.T0) || !finite(def.Span.Tf) {
		return configError("t_span", "(%g, %g) is not finite", def.Span.T0, def.Span.Tf)
	}
	if !finite(def.MaxScaleFactor) || def.MaxScaleFactor <= 0 {
		return configError("max_scale_factor", "%g is not a positive number", def.MaxScaleFactor)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (p *Problem) Name() string          { return p.def.Name }
func (p *Problem) Time() symbolic.Symbol { return p.def.Time }
func (p *Problem) TimeSpan() TimeSpan    { return p.def.Span }

// MaxScaleFactor is the bound rescaled trajectories should stay within.
func (p *Problem) MaxScaleFactor() float64 { return p.def.MaxScaleFactor }

func (p *Problem) States() []symbolic.Symbol {
	return append([]symbolic.Symbol(nil), p.def.States...)
}

func (p *Problem) RHS() []symbolic.Expr {
	return append([]symbolic.Expr(nil), p.def.RHS...)
}

func (p *Problem) Parameters() []Parameter {
	return append([]Parameter(nil), p.def.Parameters...)
}

func (p *Problem) InitialValues() []float64 {
	return append([]float64(nil), p.def.Y0...)
}

func (p *Problem) Options() dynamo.Options {
	return p.def.Options.Clone()
}

// Definition returns a copy of the (normalized) definition the problem was built from.
func (p *Problem) Definition() Definition {
	return p.def.Clone()
}

// Dim is the number of state components.
func (p *Problem) Dim() int { return len(p.def.States) }

// bindings maps each parameter to its value.
func (p *Problem) bindings() symbolic.Substitution {
	vals := make(map[symbolic.Symbol]float64, len(p.def.Parameters))
	for _, param := range p.def.Parameters {
		vals[param.Symbol] = param.Value
	}
	return symbolic.Values(vals)
}

// BoundRHS returns the right-hand sides with every parameter replaced by its value.
func (p *Problem) BoundRHS() []symbolic.Expr {
	sub := p.bindings()
	out := make([]symbolic.Expr, len(p.def.RHS))
	for i, rhs := range p.def.RHS {
		out[i] = symbolic.Substitute(rhs, sub)
	}
	return out
}
