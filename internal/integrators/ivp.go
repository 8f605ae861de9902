package integrators

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/deqscale/internal/dynamo"
)

// stepController is an adaptive integrator that also proposes the next step size.
type stepController interface {
	dynamo.AdaptiveIntegrator
	NextStep(dt, errNorm float64) float64
}

// IVP solves initial value problems dy/dt = f(t, y), y(t0) = y0 over [t0, tf].
// The zero value is ready to use.
type IVP struct {
	Logger   *slog.Logger
	Registry *Registry
}

func NewIVP() *IVP {
	return &IVP{Logger: slog.Default(), Registry: NewRegistry()}
}

// Solve integrates f from t0 to tf; tf may lie before t0. Option errors and
// inconsistent derivatives are returned as errors. A run that cannot reach tf
// is not an error: the returned Solution carries StatusFailed, a message and
// the samples computed so far.
func (s *IVP) Solve(f dynamo.Func, t0, tf float64, y0 dynamo.State, opts dynamo.Options) (*dynamo.Solution, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registry := s.Registry
	if registry == nil {
		registry = NewRegistry()
	}

	cfg, ignored, err := Decode(opts)
	if err != nil {
		return nil, err
	}
	for _, name := range ignored {
		logger.Warn("ignoring unknown solver option", "option", name)
	}

	integ, method, err := registry.Get(cfg.Method)
	if err != nil {
		return nil, err
	}

	if math.IsNaN(t0) || math.IsInf(t0, 0) || math.IsNaN(tf) || math.IsInf(tf, 0) {
		return nil, fmt.Errorf("%w: time span [%g, %g]", dynamo.ErrInvalidOption, t0, tf)
	}
	if !y0.IsValid() {
		return nil, fmt.Errorf("initial state: %w", dynamo.ErrInvalidState)
	}

	r := &rhs{f: f, dim: len(y0)}
	tr := &trace{
		method: method,
		dim:    len(y0),
		times:  []float64{t0},
		states: []dynamo.State{y0.Clone()},
	}

	logger.Debug("integrating", "method", method, "t0", t0, "tf", tf, "dim", len(y0), "options", opts.String())

	if t0 != tf {
		if adaptive, ok := integ.(stepController); ok {
			if cfg.Step > 0 {
				logger.Warn("ignoring fixed step for adaptive method", "method", method, "step", cfg.Step)
			}
			err = s.adaptive(adaptive, r, tr, t0, tf, cfg)
		} else {
			err = s.fixed(integ, r, tr, t0, tf, cfg)
		}
		if err != nil {
			return nil, err
		}
	}

	sol := tr.solution(r.evals)
	if sol.Success() {
		logger.Debug("integration finished", "method", method, "steps", sol.Steps, "rejected", sol.Rejected, "evaluations", sol.Evaluations)
	} else {
		logger.Warn("integration failed", "method", method, "t", sol.T[len(sol.T)-1], "message", sol.Message)
	}
	return sol, nil
}

// rhs counts evaluations and catches derivatives of the wrong length.
type rhs struct {
	f     dynamo.Func
	dim   int
	evals int
	err   error
}

func (r *rhs) eval(t float64, y dynamo.State) dynamo.State {
	r.evals++
	dy := r.f(t, y)
	if len(dy) == r.dim {
		return dy
	}
	if r.err == nil {
		r.err = fmt.Errorf("%w: derivative has %d components, state has %d",
			dynamo.ErrDimensionMismatch, len(dy), r.dim)
	}
	nan := make(dynamo.State, r.dim)
	for i := range nan {
		nan[i] = math.NaN()
	}
	return nan
}

// trace accumulates the accepted samples of one integration.
type trace struct {
	method   string
	dim      int
	times    []float64
	states   []dynamo.State
	steps    int
	rejected int
	failure  *dynamo.StepError
}

func (tr *trace) accept(t float64, y dynamo.State) {
	tr.times = append(tr.times, t)
	tr.states = append(tr.states, y)
	tr.steps++
}

func (tr *trace) fail(t float64, y dynamo.State, err error) {
	tr.failure = &dynamo.StepError{Step: tr.steps, Time: t, State: y.Clone(), Wrapped: err}
}

func (tr *trace) solution(evals int) *dynamo.Solution {
	sol := dynamo.NewSolution(tr.method, tr.times, tr.states, tr.dim)
	sol.Steps = tr.steps
	sol.Rejected = tr.rejected
	sol.Evaluations = evals
	if tr.failure != nil {
		sol.Status = dynamo.StatusFailed
		sol.Message = fmt.Sprintf("%v at t=%g after %d steps", tr.failure.Wrapped, tr.failure.Time, tr.failure.Step)
		sol.Err = tr.failure
	}
	return sol
}

func (s *IVP) adaptive(integ stepController, r *rhs, tr *trace, t0, tf float64, cfg Config) error {
	direction := math.Copysign(1, tf-t0)
	span := math.Abs(tf - t0)
	t := t0
	y := tr.states[0]

	h := cfg.FirstStep
	if h == 0 {
		f0 := r.eval(t0, y)
		if r.err != nil {
			return r.err
		}
		h = initialStep(r, t0, y, f0, direction, integ.Order(), cfg)
		if r.err != nil {
			return r.err
		}
	}
	h = math.Min(h, math.Min(span, cfg.MaxStep))

	for direction*(tf-t) > 0 {
		if tr.steps >= cfg.MaxSteps {
			tr.fail(t, y, dynamo.ErrTooManySteps)
			return nil
		}

		minStep := math.Max(cfg.MinStep, 10*math.Abs(math.Nextafter(t, direction*math.Inf(1))-t))
		rejectedHere := false
		cause := dynamo.ErrStepTooSmall
		for {
			h = math.Min(h, cfg.MaxStep)
			if h < minStep {
				if rejectedHere {
					tr.fail(t, y, cause)
					return nil
				}
				h = minStep
			}

			last := false
			if h >= math.Abs(tf-t) {
				h = math.Abs(tf - t)
				last = true
			}

			yNew, errNorm := integ.StepAdaptive(r.eval, t, y, direction*h, cfg.RelTol, cfg.AbsTol)
			if r.err != nil {
				return r.err
			}

			if math.IsNaN(errNorm) || math.IsInf(errNorm, 0) || !yNew.IsValid() {
				tr.rejected++
				rejectedHere = true
				cause = dynamo.ErrInvalidState
				h *= 0.2
				continue
			}

			if errNorm > 1 {
				tr.rejected++
				rejectedHere = true
				cause = dynamo.ErrStepTooSmall
				h = integ.NextStep(h, errNorm)
				continue
			}

			if last {
				t = tf
			} else {
				t += direction * h
			}
			y = yNew
			tr.accept(t, y)

			next := integ.NextStep(h, errNorm)
			if rejectedHere {
				next = math.Min(next, h)
			}
			h = next
			break
		}
	}
	return nil
}

func (s *IVP) fixed(integ dynamo.Integrator, r *rhs, tr *trace, t0, tf float64, cfg Config) error {
	direction := math.Copysign(1, tf-t0)
	span := math.Abs(tf - t0)

	h := cfg.Step
	if h == 0 {
		h = span / 1000
	}
	h = math.Min(h, cfg.MaxStep)

	var n int
	if ratio := span/h - 1e-9; ratio > float64(cfg.MaxSteps) {
		// Keep the requested step and let the budget check below end the run.
		n = cfg.MaxSteps + 1
	} else {
		n = max(int(math.Ceil(ratio)), 1)
		h = span / float64(n)
	}

	t := t0
	y := tr.states[0]
	for k := 1; k <= n; k++ {
		if tr.steps >= cfg.MaxSteps {
			tr.fail(t, y, dynamo.ErrTooManySteps)
			return nil
		}
		yNew := integ.Step(r.eval, t, y, direction*h)
		if r.err != nil {
			return r.err
		}
		if !yNew.IsValid() {
			tr.fail(t, y, dynamo.ErrInvalidState)
			return nil
		}
		if k == n {
			t = tf
		} else {
			t = t0 + direction*float64(k)*h
		}
		y = yNew
		tr.accept(t, y)
	}
	return nil
}

// initialStep guesses a first step size from the size of y0, f(t0, y0) and a
// finite difference estimate of the second derivative.
func initialStep(r *rhs, t0 float64, y0, f0 dynamo.State, direction float64, order int, cfg Config) float64 {
	n := len(y0)
	if n == 0 {
		return math.Abs(cfg.MaxStep)
	}
	scale := make([]float64, n)
	for i := range y0 {
		scale[i] = cfg.AbsTol + cfg.RelTol*math.Abs(y0[i])
	}

	d0 := scaledRMS(y0, scale)
	d1 := scaledRMS(f0, scale)

	var h0 float64
	if d0 < 1e-5 || d1 < 1e-5 {
		h0 = 1e-6
	} else {
		h0 = 0.01 * d0 / d1
	}

	y1 := make(dynamo.State, n)
	floats.AddScaledTo(y1, y0, direction*h0, f0)
	f1 := r.eval(t0+direction*h0, y1)

	diff := make([]float64, n)
	floats.SubTo(diff, f1, f0)
	d2 := scaledRMS(diff, scale) / h0

	var h1 float64
	if d1 <= 1e-15 && d2 <= 1e-15 {
		h1 = math.Max(1e-6, h0*1e-3)
	} else {
		h1 = math.Pow(0.01/math.Max(d1, d2), 1/float64(order+1))
	}

	h := math.Min(100*h0, h1)
	if math.IsNaN(h) || h <= 0 {
		return 1e-6
	}
	return h
}

func scaledRMS(v, scale []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	tmp := make([]float64, len(v))
	floats.DivTo(tmp, v, scale)
	return floats.Norm(tmp, 2) / math.Sqrt(float64(len(v)))
}
