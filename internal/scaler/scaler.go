package scaler

import (
	"log/slog"

	"github.com/san-kum/deqscale/internal/dynamo"
	"github.com/san-kum/deqscale/internal/integrators"
)

// Solver integrates dy/dt = f(t, y) from t0 to tf. A run that stops early
// should be reported through the Solution's status, not as an error.
type Solver interface {
	Solve(f dynamo.Func, t0, tf float64, y0 dynamo.State, opts dynamo.Options) (*dynamo.Solution, error)
}

type Option func(*Scaler)

// WithSolver replaces the default integrators.IVP.
func WithSolver(s Solver) Option {
	if s == nil {
		panic("scaler: WithSolver(nil)")
	}
	return func(sc *Scaler) { sc.solver = s }
}

func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("scaler: WithLogger(nil)")
	}
	return func(sc *Scaler) { sc.logger = l }
}

// Scaler drives the trial integration of one Problem. It keeps the latest
// solution and maxima and is not safe for concurrent use.
type Scaler struct {
	problem  *Problem
	solver   Solver
	logger   *slog.Logger
	solution *dynamo.Solution
	maxima   Maxima
}

func New(p *Problem, opts ...Option) *Scaler {
	s := &Scaler{problem: p, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if s.solver == nil {
		s.solver = &integrators.IVP{Logger: s.logger, Registry: integrators.NewRegistry()}
	}
	return s
}

func (s *Scaler) Problem() *Problem { return s.problem }

// Solution is the result of the latest Solve, or nil.
func (s *Scaler) Solution() *dynamo.Solution { return s.solution }

// Maxima is the result of the latest DetermineMaxima, or nil.
func (s *Scaler) Maxima() Maxima { return s.maxima }

// Solve compiles the problem and integrates it over its span. A solver that
// fails part way is not an error here; check the returned Solution's status.
func (s *Scaler) Solve() (*dynamo.Solution, error) {
	p := s.problem
	fns, err := p.Compile()
	if err != nil {
		return nil, err
	}
	s.logger.Debug("compiled system", "problem", p.Name(), "states", p.Dim())

	span := p.TimeSpan()
	sol, err := s.solver.Solve(NewDerivative(fns), span.T0, span.Tf, p.InitialValues(), p.Options())
	if err != nil {
		return nil, err
	}
	s.solution = sol
	s.logger.Debug("solved system", "problem", p.Name(), "status", sol.Status, "samples", sol.Len())
	return sol, nil
}

// DetermineMaxima runs a fresh trial integration and scans it. A trial run
// that does not reach the end of the span yields an *IntegrationError.
func (s *Scaler) DetermineMaxima() (Maxima, error) {
	sol, err := s.Solve()
	if err != nil {
		return nil, err
	}
	if !sol.Success() {
		return nil, &IntegrationError{Solution: sol}
	}
	m, err := AbsMaxima(s.problem.States(), sol)
	if err != nil {
		return nil, err
	}
	s.maxima = m
	s.logger.Debug("determined maxima", "problem", s.problem.Name(), "maxima", m.String())
	return m, nil
}

// Rescale returns the rescaled definition. With m == nil the maxima come from
// a trial run; otherwise m is used as given and nothing is integrated.
func (s *Scaler) Rescale(m Maxima) (Definition, error) {
	if m == nil {
		var err error
		if m, err = s.DetermineMaxima(); err != nil {
			return Definition{}, err
		}
	}
	def, err := s.problem.Rescale(m)
	if err != nil {
		return Definition{}, err
	}
	s.logger.Debug("rescaled system", "problem", s.problem.Name(), "max_scale_factor", s.problem.MaxScaleFactor())
	return def, nil
}
