package scaler_test

import (
	"bytes"
	"log/slog"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/deqscale/internal/dynamo"
	"github.com/san-kum/deqscale/internal/integrators"
	"github.com/san-kum/deqscale/internal/scaler"
	"github.com/san-kum/deqscale/internal/symbolic"
)

type recordingSolver struct {
	calls int
	ivp   *integrators.IVP
}

func (r *recordingSolver) Solve(f dynamo.Func, t0, tf float64, y0 dynamo.State, opts dynamo.Options) (*dynamo.Solution, error) {
	r.calls++
	return r.ivp.Solve(f, t0, tf, y0, opts)
}

var fineSteps = dynamo.Options{
	{Name: "rtol", Value: 1e-8},
	{Name: "atol", Value: 1e-10},
	{Name: "max_step", Value: 0.01},
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func newProblem(def scaler.Definition) *scaler.Problem {
	p, err := scaler.NewProblem(def)
	Expect(err).NotTo(HaveOccurred())
	return p
}

func largest(sol *dynamo.Solution, i int) float64 {
	m := 0.0
	for _, v := range sol.Trajectory(i) {
		m = math.Max(m, math.Abs(v))
	}
	return m
}

var _ = Describe("Rescaling pipeline", func() {
	var solver *recordingSolver

	BeforeEach(func() {
		solver = &recordingSolver{ivp: &integrators.IVP{Logger: quiet(), Registry: integrators.NewRegistry()}}
	})

	Describe("exponential decay dy/dt = -y, y(0) = 10 over [0, 5]", func() {
		decay := func(factor float64) scaler.Definition {
			return scaler.Definition{
				Name:           "decay",
				States:         symbolic.Symbols("y"),
				RHS:            []symbolic.Expr{symbolic.MustParse("-y")},
				Span:           scaler.TimeSpan{T0: 0, Tf: 5},
				Y0:             []float64{10},
				MaxScaleFactor: factor,
				Options:        fineSteps,
			}
		}

		It("finds the initial value as the trial maximum", func() {
			s := scaler.New(newProblem(decay(1)), scaler.WithSolver(solver), scaler.WithLogger(quiet()))

			m, err := s.DetermineMaxima()
			Expect(err).NotTo(HaveOccurred())
			Expect(m).To(HaveKeyWithValue(symbolic.S("y"), 10.0))
		})

		DescribeTable("rescales into [-factor, factor]",
			func(factor float64) {
				s := scaler.New(newProblem(decay(factor)), scaler.WithSolver(solver), scaler.WithLogger(quiet()))

				def, err := s.Rescale(nil)
				Expect(err).NotTo(HaveOccurred())
				Expect(def.Y0[0]).To(BeNumerically("~", 1/factor, 1e-12))

				rescaled := scaler.New(newProblem(def), scaler.WithSolver(solver), scaler.WithLogger(quiet()))
				sol, err := rescaled.Solve()
				Expect(err).NotTo(HaveOccurred())
				Expect(sol.Success()).To(BeTrue())
				Expect(largest(sol, 0)).To(BeNumerically("<=", factor*(1+1e-6)))
			},
			Entry("factor 1", 1.0),
			Entry("factor 0.5", 0.5),
			Entry("factor 2", 2.0),
		)
	})

	Describe("unit oscillator y1' = y2, y2' = -y1 over one period", func() {
		var problem *scaler.Problem

		BeforeEach(func() {
			problem = newProblem(scaler.Definition{
				Name:    "oscillator",
				States:  symbolic.Symbols("y1", "y2"),
				RHS:     []symbolic.Expr{symbolic.MustParse("y2"), symbolic.MustParse("-y1")},
				Span:    scaler.TimeSpan{T0: 0, Tf: 2 * math.Pi},
				Y0:      []float64{1, 0},
				Options: fineSteps,
			})
		})

		It("has maxima close to one for both components", func() {
			m, err := scaler.New(problem, scaler.WithSolver(solver), scaler.WithLogger(quiet())).DetermineMaxima()
			Expect(err).NotTo(HaveOccurred())
			Expect(m[symbolic.S("y1")]).To(BeNumerically("~", 1, 1e-3))
			Expect(m[symbolic.S("y2")]).To(BeNumerically("~", 1, 1e-3))
		})

		It("uses supplied maxima verbatim without integrating", func() {
			s := scaler.New(problem, scaler.WithSolver(solver), scaler.WithLogger(quiet()))

			def, err := s.Rescale(scaler.Maxima{symbolic.S("y1"): 1, symbolic.S("y2"): 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(solver.calls).To(BeZero())
			Expect(def.Y0).To(Equal([]float64{1, 0}))
		})

		It("stays within one after rescaling with the true maxima", func() {
			s := scaler.New(problem, scaler.WithSolver(solver), scaler.WithLogger(quiet()))

			def, err := s.Rescale(scaler.Maxima{symbolic.S("y1"): 1, symbolic.S("y2"): 1})
			Expect(err).NotTo(HaveOccurred())

			v, err := s.Validate(def, 1e-6)
			Expect(err).NotTo(HaveOccurred())
			Expect(v.OK()).To(BeTrue(), "violations: %v", v.Violations)
			Expect(solver.calls).To(Equal(1))
		})

		It("leaves the original problem untouched", func() {
			before := problem.String()
			_, err := scaler.New(problem, scaler.WithSolver(solver), scaler.WithLogger(quiet())).Rescale(nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(problem.String()).To(Equal(before))
		})
	})

	Describe("construction", func() {
		DescribeTable("rejects inconsistent sizes",
			func(states []symbolic.Symbol, rhs []string, y0 []float64) {
				exprs := make([]symbolic.Expr, len(rhs))
				for i, src := range rhs {
					exprs[i] = symbolic.MustParse(src)
				}
				_, err := scaler.NewProblem(scaler.Definition{States: states, RHS: exprs, Y0: y0})
				Expect(err).To(MatchError(scaler.ErrConfiguration))
			},
			Entry("fewer initial values", symbolic.Symbols("a", "b"), []string{"b", "a"}, []float64{1}),
			Entry("fewer equations", symbolic.Symbols("a", "b"), []string{"b"}, []float64{1, 2}),
			Entry("fewer states", symbolic.Symbols("a"), []string{"a", "a"}, []float64{1, 2}),
		)
	})
})
