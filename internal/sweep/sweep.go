// Package sweep determines maxima over a grid of parameter values, so one
// rescaling can hold for every parameter set in the grid.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/deqscale/internal/dynamo"
	"github.com/san-kum/deqscale/internal/scaler"
	"github.com/san-kum/deqscale/internal/symbolic"
)

var ErrInvalidAxis = errors.New("sweep: invalid axis")

// Axis is the list of values one parameter takes.
type Axis struct {
	Name   string
	Values []float64
}

// ParseAxis reads "k=1,2,5" or an evenly spaced range "k=0.5:2:4" given as
// start:stop:count.
func ParseAxis(s string) (Axis, error) {
	name, def, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" || strings.TrimSpace(def) == "" {
		return Axis{}, fmt.Errorf("%w: %q, want name=values", ErrInvalidAxis, s)
	}

	if parts := strings.Split(def, ":"); len(parts) == 3 {
		start, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		stop, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		count, err3 := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err := errors.Join(err1, err2, err3); err != nil {
			return Axis{}, fmt.Errorf("%w: %q: %v", ErrInvalidAxis, s, err)
		}
		if count < 1 {
			return Axis{}, fmt.Errorf("%w: %q: count must be positive", ErrInvalidAxis, s)
		}
		if count == 1 {
			return Axis{Name: name, Values: []float64{start}}, nil
		}
		vals := make([]float64, count)
		floats.Span(vals, start, stop)
		return Axis{Name: name, Values: vals}, nil
	}

	var vals []float64
	for _, f := range strings.Split(def, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Axis{}, fmt.Errorf("%w: %q: %v", ErrInvalidAxis, s, err)
		}
		vals = append(vals, v)
	}
	return Axis{Name: name, Values: vals}, nil
}

type Option func(*Sweep)

// WithWorkers bounds the number of trial runs in flight.
func WithWorkers(n int) Option {
	if n < 1 {
		panic("sweep: WithWorkers(n<1)")
	}
	return func(s *Sweep) { s.workers = n }
}

func WithSolver(solver scaler.Solver) Option {
	if solver == nil {
		panic("sweep: WithSolver(nil)")
	}
	return func(s *Sweep) { s.solver = solver }
}

func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("sweep: WithLogger(nil)")
	}
	return func(s *Sweep) { s.logger = l }
}

// Sweep runs one trial integration per grid point. Every point gets its own
// Problem and Scaler; only the solver is shared.
type Sweep struct {
	base    scaler.Definition
	axes    []Axis
	workers int
	solver  scaler.Solver
	logger  *slog.Logger
}

// New checks that every axis names a parameter of base, once.
func New(base scaler.Definition, axes []Axis, opts ...Option) (*Sweep, error) {
	known := make(map[string]bool, len(base.Parameters))
	for _, p := range base.Parameters {
		known[p.Symbol.Name()] = true
	}
	seen := make(map[string]bool, len(axes))
	for _, ax := range axes {
		switch {
		case !known[ax.Name]:
			return nil, fmt.Errorf("%w: %s is not a parameter", ErrInvalidAxis, ax.Name)
		case seen[ax.Name]:
			return nil, fmt.Errorf("%w: %s given twice", ErrInvalidAxis, ax.Name)
		case len(ax.Values) == 0:
			return nil, fmt.Errorf("%w: %s has no values", ErrInvalidAxis, ax.Name)
		}
		seen[ax.Name] = true
	}

	s := &Sweep{
		base:    base.Clone(),
		axes:    append([]Axis(nil), axes...),
		workers: runtime.GOMAXPROCS(0),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Points returns the grid in row-major order, the last axis varying fastest.
// Each point is the full parameter list of the base definition with the swept
// values substituted.
func (s *Sweep) Points() [][]scaler.Parameter {
	var out [][]scaler.Parameter
	s.points(0, append([]scaler.Parameter(nil), s.base.Parameters...), &out)
	return out
}

func (s *Sweep) points(depth int, current []scaler.Parameter, out *[][]scaler.Parameter) {
	if depth == len(s.axes) {
		*out = append(*out, append([]scaler.Parameter(nil), current...))
		return
	}

	ax := s.axes[depth]
	for _, val := range ax.Values {
		next := append([]scaler.Parameter(nil), current...)
		for i := range next {
			if next[i].Symbol.Name() == ax.Name {
				next[i].Value = val
			}
		}
		s.points(depth+1, next, out)
	}
}

// Result is the trial run at one grid point.
type Result struct {
	Parameters []scaler.Parameter
	Maxima     scaler.Maxima
	Solution   *dynamo.Solution
}

// Run integrates every grid point. The first failing point cancels the rest
// and its error is returned. Results are in Points order.
func (s *Sweep) Run(ctx context.Context) ([]Result, error) {
	points := s.Points()
	results := make([]Result, len(points))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, params := range points {
		i, params := i, params
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := s.runPoint(params)
			if err != nil {
				return fmt.Errorf("point %s: %w", formatPoint(params, s.axes), err)
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.logger.Debug("sweep finished", "problem", s.base.Name, "points", len(points))
	return results, nil
}

func (s *Sweep) runPoint(params []scaler.Parameter) (Result, error) {
	def := s.base.Clone()
	def.Parameters = params
	p, err := scaler.NewProblem(def)
	if err != nil {
		return Result{}, err
	}

	opts := []scaler.Option{scaler.WithLogger(s.logger)}
	if s.solver != nil {
		opts = append(opts, scaler.WithSolver(s.solver))
	}
	sc := scaler.New(p, opts...)
	m, err := sc.DetermineMaxima()
	if err != nil {
		return Result{}, err
	}
	return Result{Parameters: params, Maxima: m, Solution: sc.Solution()}, nil
}

// Envelope is the largest maximum of each state over all results.
func Envelope(states []symbolic.Symbol, results []Result) scaler.Maxima {
	env := make(scaler.Maxima, len(states))
	for _, st := range states {
		env[st] = 0
		for _, r := range results {
			env[st] = math.Max(env[st], r.Maxima[st])
		}
	}
	return env
}

// Label formats the swept parameters of r, e.g. "k=1, mu=0.5".
func (r Result) Label(axes []Axis) string {
	return formatPoint(r.Parameters, axes)
}

func formatPoint(params []scaler.Parameter, axes []Axis) string {
	parts := make([]string, 0, len(axes))
	for _, ax := range axes {
		for _, p := range params {
			if p.Symbol.Name() == ax.Name {
				parts = append(parts, fmt.Sprintf("%s=%g", ax.Name, p.Value))
			}
		}
	}
	return strings.Join(parts, ", ")
}
