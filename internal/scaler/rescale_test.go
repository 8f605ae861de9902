package scaler

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/san-kum/deqscale/internal/symbolic"
)

func TestScaleFactors(t *testing.T) {
	def := oscillatorDef()
	def.MaxScaleFactor = 2
	p := mustProblem(t, def)

	scales, err := p.ScaleFactors(Maxima{symbolic.S("y1"): 3, symbolic.S("y2"): 0.5, symbolic.S("other"): 0})
	if err != nil {
		t.Fatal(err)
	}
	if scales[0] != 6 || scales[1] != 1 {
		t.Errorf("ScaleFactors() = %v, want [6 1]", scales)
	}
}

func TestScaleFactorErrors(t *testing.T) {
	tests := []struct {
		name       string
		maxima     Maxima
		degenerate bool
	}{
		{"missing state", Maxima{symbolic.S("y1"): 1}, false},
		{"negative maximum", Maxima{symbolic.S("y1"): 1, symbolic.S("y2"): -1}, false},
		{"nan maximum", Maxima{symbolic.S("y1"): math.NaN(), symbolic.S("y2"): 1}, false},
		{"zero maximum", Maxima{symbolic.S("y1"): 1, symbolic.S("y2"): 0}, true},
		{"infinite maximum", Maxima{symbolic.S("y1"): math.Inf(1), symbolic.S("y2"): 1}, true},
	}

	p := mustProblem(t, oscillatorDef())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Rescale(tt.maxima)
			if tt.degenerate {
				var degErr *DegenerateScaleError
				if !errors.As(err, &degErr) || !errors.Is(err, ErrDegenerateScale) {
					t.Fatalf("Rescale() error = %v, want *DegenerateScaleError", err)
				}
				if _, ok := tt.maxima[degErr.Symbol]; !ok {
					t.Errorf("error names %s", degErr.Symbol)
				}
				return
			}
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("Rescale() error = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestRescaleRewritesSystem(t *testing.T) {
	def := Definition{
		Name:   "coupled",
		States: symbolic.Symbols("x", "y"),
		RHS:    exprs("a*y - x^2", "sin(x) + t*y"),
		Parameters: []Parameter{
			{Symbol: symbolic.S("a"), Value: 3},
		},
		Span:           TimeSpan{0, 1},
		Y0:             []float64{4, -1},
		MaxScaleFactor: 0.5,
	}
	p := mustProblem(t, def)
	maxima := Maxima{symbolic.S("x"): 8, symbolic.S("y"): 2}

	got, err := p.Rescale(maxima)
	if err != nil {
		t.Fatal(err)
	}
	scales := []float64{4, 1}

	if got.Y0[0] != 1 || got.Y0[1] != -1 {
		t.Errorf("Y0 = %v, want [1 -1]", got.Y0)
	}
	if got.Name != "coupled-rescaled" {
		t.Errorf("Name = %q", got.Name)
	}
	if got.Time != p.Time() || got.Span != p.TimeSpan() || got.MaxScaleFactor != 0.5 {
		t.Errorf("rescaling changed time, span or factor: %+v", got)
	}
	if len(got.Parameters) != 1 || got.Parameters[0] != def.Parameters[0] {
		t.Errorf("Parameters = %v", got.Parameters)
	}

	// f'_i(t, u) must equal f_i(t, scale*u) / scale_i
	env := func(tv, x, y float64) map[symbolic.Symbol]float64 {
		return map[symbolic.Symbol]float64{symbolic.S("t"): tv, symbolic.S("x"): x, symbolic.S("y"): y, symbolic.S("a"): 3}
	}
	for _, pt := range [][3]float64{{0, 0.5, -0.25}, {0.7, -1, 1}, {0.2, 0.1, 0.9}} {
		for i := range got.RHS {
			rescaled, err := symbolic.Evaluate(got.RHS[i], env(pt[0], pt[1], pt[2]))
			if err != nil {
				t.Fatal(err)
			}
			orig, err := symbolic.Evaluate(def.RHS[i], env(pt[0], scales[0]*pt[1], scales[1]*pt[2]))
			if err != nil {
				t.Fatal(err)
			}
			if !scalar.EqualWithinAbsOrRel(rescaled, orig/scales[i], 1e-12, 1e-12) {
				t.Errorf("rhs %d at %v = %g, want %g", i, pt, rescaled, orig/scales[i])
			}
		}
	}
}

func TestRescaleKeepsOriginal(t *testing.T) {
	p := mustProblem(t, decayDef())
	before := p.String()

	def, err := p.Rescale(Maxima{symbolic.S("y"): 10})
	if err != nil {
		t.Fatal(err)
	}
	def.Y0[0] = 123

	if p.String() != before {
		t.Errorf("problem changed:\n%s\nwant:\n%s", p.String(), before)
	}
	if p.InitialValues()[0] != 10 {
		t.Errorf("y0 = %v", p.InitialValues())
	}
}

func TestRescaleSimultaneousSubstitution(t *testing.T) {
	// y1 -> 2*y1 and y2 -> 3*y2 must not chain into each other
	def := Definition{
		States: symbolic.Symbols("y1", "y2"),
		RHS:    exprs("y2", "y1"),
		Span:   TimeSpan{0, 1},
		Y0:     []float64{2, 3},
	}
	got, err := mustProblem(t, def).Rescale(Maxima{symbolic.S("y1"): 2, symbolic.S("y2"): 3})
	if err != nil {
		t.Fatal(err)
	}
	vals := map[symbolic.Symbol]float64{symbolic.S("y1"): 1, symbolic.S("y2"): 1}
	for i, want := range []float64{3.0 / 2.0, 2.0 / 3.0} {
		v, err := symbolic.Evaluate(got.RHS[i], vals)
		if err != nil {
			t.Fatal(err)
		}
		if !scalar.EqualWithinRel(v, want, 1e-12) {
			t.Errorf("rhs %d = %g, want %g", i, v, want)
		}
	}
}
