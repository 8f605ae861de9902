package scaler

import (
	"math"

	"github.com/san-kum/deqscale/internal/dynamo"
	"github.com/san-kum/deqscale/internal/symbolic"
)

// Validation is the outcome of integrating a rescaled system and checking it
// against its bound.
type Validation struct {
	Problem   *Problem
	Solution  *dynamo.Solution
	Maxima    Maxima
	Bound     float64
	Tolerance float64
	// Violations lists the states whose maxima exceed Bound*(1+Tolerance),
	// in state order.
	Violations []symbolic.Symbol
	// Stability is the fraction of samples with every state inside the limit.
	Stability float64
}

func (v *Validation) OK() bool { return len(v.Violations) == 0 }

// Limit is the largest absolute value accepted.
func (v *Validation) Limit() float64 { return v.Bound * (1 + v.Tolerance) }

// Validate builds a Problem from def, integrates it with the scaler's solver
// and checks every trajectory against def's max scale factor. tol is relative
// to the bound.
func (s *Scaler) Validate(def Definition, tol float64) (*Validation, error) {
	if math.IsNaN(tol) || tol < 0 {
		return nil, configError("tolerance", "%g is not a non-negative number", tol)
	}
	p, err := NewProblem(def)
	if err != nil {
		return nil, err
	}

	check := New(p, WithSolver(s.solver), WithLogger(s.logger))
	m, err := check.DetermineMaxima()
	if err != nil {
		return nil, err
	}

	v := &Validation{
		Problem:   p,
		Solution:  check.Solution(),
		Maxima:    m,
		Bound:     p.MaxScaleFactor(),
		Tolerance: tol,
	}

	limit := v.Limit()
	for _, st := range p.States() {
		if m[st] > limit {
			v.Violations = append(v.Violations, st)
		}
	}

	b := newBoundCheck(limit)
	for k := 0; k < v.Solution.Len(); k++ {
		b.Observe(v.Solution.At(k))
	}
	v.Stability = b.Value()

	s.logger.Debug("validated rescaled system", "problem", p.Name(), "bound", v.Bound, "violations", len(v.Violations))
	return v, nil
}

// boundCheck counts samples with any component beyond the threshold.
type boundCheck struct {
	threshold  float64
	violations int
	samples    int
}

func newBoundCheck(threshold float64) *boundCheck {
	return &boundCheck{threshold: threshold}
}

func (b *boundCheck) Observe(x dynamo.State) {
	b.samples++
	for _, val := range x {
		if math.Abs(val) > b.threshold {
			b.violations++
			break
		}
	}
}

func (b *boundCheck) Value() float64 {
	if b.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(b.violations)/float64(b.samples)
}
