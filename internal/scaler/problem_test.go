package scaler

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/deqscale/internal/dynamo"
	"github.com/san-kum/deqscale/internal/symbolic"
)

func exprs(src ...string) []symbolic.Expr {
	out := make([]symbolic.Expr, len(src))
	for i, s := range src {
		out[i] = symbolic.MustParse(s)
	}
	return out
}

func oscillatorDef() Definition {
	return Definition{
		Name:       "oscillator",
		States:     symbolic.Symbols("y1", "y2"),
		RHS:        exprs("y2", "-omega^2*y1"),
		Parameters: []Parameter{{Symbol: symbolic.S("omega"), Value: 1}},
		Span:       TimeSpan{0, 2 * math.Pi},
		Y0:         []float64{1, 0},
	}
}

func decayDef() Definition {
	return Definition{
		Name:       "decay",
		States:     symbolic.Symbols("y"),
		RHS:        exprs("-k*y"),
		Parameters: []Parameter{{Symbol: symbolic.S("k"), Value: 1}},
		Span:       TimeSpan{0, 5},
		Y0:         []float64{10},
	}
}

func mustProblem(t *testing.T, def Definition) *Problem {
	t.Helper()
	p, err := NewProblem(def)
	if err != nil {
		t.Fatalf("NewProblem() error = %v", err)
	}
	return p
}

func TestNewProblemValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(d *Definition)
		field  string
	}{
		{"valid", func(d *Definition) {}, ""},
		{"missing initial value", func(d *Definition) { d.Y0 = d.Y0[:1] }, "states"},
		{"extra right-hand side", func(d *Definition) { d.RHS = append(d.RHS, symbolic.N(0)) }, "states"},
		{"extra state", func(d *Definition) { d.States = append(d.States, symbolic.S("y3")) }, "states"},
		{"no states", func(d *Definition) { d.States, d.RHS, d.Y0 = nil, nil, nil }, "states"},
		{"duplicate state", func(d *Definition) { d.States[1] = d.States[0] }, "states"},
		{"unnamed state", func(d *Definition) { d.States[0] = symbolic.Symbol{} }, "states"},
		{"state named like time", func(d *Definition) { d.States[0] = symbolic.S("t") }, "states"},
		{"nil right-hand side", func(d *Definition) { d.RHS[0] = nil }, "rhs"},
		{"nan initial value", func(d *Definition) { d.Y0[0] = math.NaN() }, "y0"},
		{"parameter is a state", func(d *Definition) {
			d.Parameters = append(d.Parameters, Parameter{Symbol: symbolic.S("y1"), Value: 1})
		}, "parameters"},
		{"duplicate parameter", func(d *Definition) {
			d.Parameters = append(d.Parameters, Parameter{Symbol: symbolic.S("omega"), Value: 2})
		}, "parameters"},
		{"parameter named like time", func(d *Definition) {
			d.Parameters = append(d.Parameters, Parameter{Symbol: symbolic.S("t"), Value: 2})
		}, "parameters"},
		{"parameter named pi", func(d *Definition) {
			d.Parameters = append(d.Parameters, Parameter{Symbol: symbolic.S("pi"), Value: 2})
		}, "parameters"},
		{"state named pi", func(d *Definition) { d.States[1] = symbolic.S("pi") }, "states"},
		{"time named pi", func(d *Definition) { d.Time = symbolic.S("pi") }, "time"},
		{"infinite parameter", func(d *Definition) { d.Parameters[0].Value = math.Inf(1) }, "parameters"},
		{"infinite span", func(d *Definition) { d.Span.Tf = math.Inf(1) }, "t_span"},
		{"negative factor", func(d *Definition) { d.MaxScaleFactor = -1 }, "max_scale_factor"},
		{"nan factor", func(d *Definition) { d.MaxScaleFactor = math.NaN() }, "max_scale_factor"},
		{"custom time symbol", func(d *Definition) { d.Time = symbolic.S("tau") }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := oscillatorDef()
			tt.modify(&def)

			_, err := NewProblem(def)
			if tt.field == "" {
				if err != nil {
					t.Fatalf("NewProblem() error = %v", err)
				}
				return
			}
			if !errors.Is(err, ErrConfiguration) {
				t.Fatalf("NewProblem() error = %v, want ErrConfiguration", err)
			}
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error is %T, want *ConfigurationError", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.field)
			}
		})
	}
}

func TestNewProblemDefaults(t *testing.T) {
	p := mustProblem(t, oscillatorDef())

	if p.Time() != symbolic.S("t") {
		t.Errorf("Time() = %v, want t", p.Time())
	}
	if p.MaxScaleFactor() != 1 {
		t.Errorf("MaxScaleFactor() = %g, want 1", p.MaxScaleFactor())
	}
	if p.Dim() != 2 {
		t.Errorf("Dim() = %d", p.Dim())
	}
}

func TestProblemIsolation(t *testing.T) {
	def := oscillatorDef()
	def.Options = dynamo.Options{{Name: "rtol", Value: 1e-6}}
	p := mustProblem(t, def)

	// changes to the caller's definition do not reach the problem
	def.Y0[0] = 99
	def.States[0] = symbolic.S("z")
	def.Options[0].Value = 1.0

	if p.InitialValues()[0] != 1 || p.States()[0] != symbolic.S("y1") {
		t.Error("problem shares slices with its definition")
	}
	if v, _ := p.Options().Lookup("rtol"); v != 1e-6 {
		t.Errorf("rtol = %v, want 1e-6", v)
	}

	// nor do changes to accessor results
	p.InitialValues()[0] = 42
	p.Parameters()[0].Value = 42
	p.Options()[0].Value = 42.0
	if p.InitialValues()[0] != 1 || p.Parameters()[0].Value != 1 {
		t.Error("accessors expose internal slices")
	}
	if v, _ := p.Options().Lookup("rtol"); v != 1e-6 {
		t.Errorf("rtol = %v after accessor write", v)
	}
}

func TestProblemsDoNotShareOptions(t *testing.T) {
	a := mustProblem(t, oscillatorDef())
	b := mustProblem(t, oscillatorDef())

	def := a.Definition()
	def.Options = def.Options.With("rtol", 1e-9)
	if _, err := NewProblem(def); err != nil {
		t.Fatal(err)
	}

	if len(a.Options()) != 0 || len(b.Options()) != 0 {
		t.Errorf("options leaked between problems: %v %v", a.Options(), b.Options())
	}
}

func TestShow(t *testing.T) {
	def := oscillatorDef()
	def.MaxScaleFactor = 0.8
	def.Options = dynamo.Options{{Name: "method", Value: "RK45"}, {Name: "rtol", Value: 1e-8}}
	p := mustProblem(t, def)

	out := p.String()

	ordered := []string{
		"Initial conditions:",
		"y0       = [1, 0]",
		"(t0, tf) = (0, 6.283185307179586)",
		"max_scale_factor = 0.8",
		"Solver options:",
		"{method=RK45, rtol=1e-08}",
		"Parameters:",
		"omega = 1",
		"System:",
		"y1' = y2",
		"y2' = -omega^2*y1",
		"System with parameter values:",
		"y2' = -y1",
	}
	pos := 0
	for _, want := range ordered {
		i := strings.Index(out[pos:], want)
		if i < 0 {
			t.Fatalf("missing or out of order %q in:\n%s", want, out)
		}
		pos += i + len(want)
	}

	// display substitution leaves the problem untouched
	if got := p.RHS()[1].String(); got != "-omega^2*y1" {
		t.Errorf("RHS()[1] = %q after Show", got)
	}
}

func TestShowOmitsDefaults(t *testing.T) {
	out := mustProblem(t, decayDef()).String()
	for _, unwanted := range []string{"max_scale_factor", "Solver options"} {
		if strings.Contains(out, unwanted) {
			t.Errorf("output contains %q:\n%s", unwanted, out)
		}
	}
}
