package dynamo

import (
	"fmt"
	"math"
	"strings"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Func is the right-hand side of dy/dt = f(t, y). The returned slice must have
// the same length as y and belongs to the caller.
type Func func(t float64, y State) State

type Integrator interface {
	Step(f Func, t float64, x State, dt float64) State
}

// AdaptiveIntegrator also returns the scaled error norm of the step; a step
// with errNorm <= 1 meets the tolerances.
type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(f Func, t float64, x State, dt, rtol, atol float64) (next State, errNorm float64)
	Order() int
}

// Option is one named solver option. Values are passed through uninterpreted
// until the solver decodes them.
type Option struct {
	Name  string
	Value any
}

// Options keeps solver options in the order they were given.
type Options []Option

// Clone returns an independent copy.
func (o Options) Clone() Options {
	if o == nil {
		return nil
	}
	c := make(Options, len(o))
	copy(c, o)
	return c
}

// Lookup returns the last value given for name.
func (o Options) Lookup(name string) (any, bool) {
	for i := len(o) - 1; i >= 0; i-- {
		if o[i].Name == name {
			return o[i].Value, true
		}
	}
	return nil, false
}

// With returns a copy with name set to value, replacing an earlier entry in place.
func (o Options) With(name string, value any) Options {
	c := o.Clone()
	for i := range c {
		if c[i].Name == name {
			c[i].Value = value
			return c
		}
	}
	return append(c, Option{Name: name, Value: value})
}

func (o Options) String() string {
	parts := make([]string, len(o))
	for i, opt := range o {
		parts[i] = fmt.Sprintf("%s=%v", opt.Name, opt.Value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Status is the outcome of an integration.
type Status int

const (
	// StatusFailed means the solver stopped before reaching the end of the span.
	StatusFailed Status = -1
	// StatusSuccess means the solver reached the end of the span.
	StatusSuccess Status = 0
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Solution holds the sampled trajectories of one integration. Y[i][k] is state
// component i at time T[k]. A Solution is not modified after it is returned.
type Solution struct {
	Method      string
	T           []float64
	Y           [][]float64
	Status      Status
	Message     string
	Err         error
	Steps       int
	Rejected    int
	Evaluations int
}

// NewSolution transposes row-wise samples into per-component trajectories.
func NewSolution(method string, times []float64, states []State, dim int) *Solution {
	y := make([][]float64, dim)
	for i := range y {
		y[i] = make([]float64, len(states))
		for k, s := range states {
			y[i][k] = s[i]
		}
	}
	return &Solution{Method: method, T: times, Y: y, Status: StatusSuccess, Message: "end of span reached"}
}

func (s *Solution) Success() bool { return s.Status == StatusSuccess }

// Dim is the number of state components.
func (s *Solution) Dim() int { return len(s.Y) }

// Len is the number of samples.
func (s *Solution) Len() int { return len(s.T) }

// Trajectory returns the samples of component i.
func (s *Solution) Trajectory(i int) []float64 { return s.Y[i] }

// At returns the state at sample k.
func (s *Solution) At(k int) State {
	x := make(State, len(s.Y))
	for i := range s.Y {
		x[i] = s.Y[i][k]
	}
	return x
}

// Final returns the last sampled state.
func (s *Solution) Final() State {
	if len(s.T) == 0 {
		return nil
	}
	return s.At(len(s.T) - 1)
}
