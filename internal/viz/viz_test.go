package viz

import (
	"strings"
	"testing"

	"github.com/san-kum/deqscale/internal/dynamo"
	"github.com/san-kum/deqscale/internal/scaler"
	"github.com/san-kum/deqscale/internal/symbolic"
)

func oscillator(t *testing.T) *scaler.Problem {
	t.Helper()
	p, err := scaler.NewProblem(scaler.Definition{
		Name:           "oscillator",
		States:         symbolic.Symbols("y1", "y2"),
		RHS:            []symbolic.Expr{symbolic.S("y2"), symbolic.Neg(symbolic.Product(symbolic.S("k"), symbolic.S("y1")))},
		Parameters:     []scaler.Parameter{{Symbol: symbolic.S("k"), Value: 4}},
		Span:           scaler.TimeSpan{T0: 0, Tf: 2},
		Y0:             []float64{1, 0},
		MaxScaleFactor: 2,
		Options:        dynamo.Options{{Name: "method", Value: "RK4"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func sampleSolution() *dynamo.Solution {
	times := []float64{0, 0.5, 1}
	states := []dynamo.State{{1, 0}, {0.5, -2}, {-1, 0.25}}
	return dynamo.NewSolution("RK4", times, states, 2)
}

func TestRenderReport(t *testing.T) {
	out := RenderReport(oscillator(t).Report())

	for _, want := range []string{
		"oscillator",
		"Initial conditions",
		"[1, 0]",
		"(0, 2)",
		"max_scale_factor:",
		"Solver options",
		"method:",
		"Parameters",
		"k:",
		"System with parameter values",
		"y1'",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestRenderReportWithoutParameters(t *testing.T) {
	r := oscillator(t).Report()
	r.Parameters = nil
	r.MaxScaleFactor = 1

	out := RenderReport(r)
	if !strings.Contains(out, "(none)") {
		t.Errorf("expected (none) for empty parameters:\n%s", out)
	}
	if strings.Contains(out, "max_scale_factor") {
		t.Errorf("unit scale factor should be omitted:\n%s", out)
	}
}

func TestRenderSolution(t *testing.T) {
	sol := sampleSolution()
	sol.Steps = 2

	out := RenderSolution([]string{"y1", "y2"}, sol)
	for _, want := range []string{"success", "RK4", "steps:", "0.25"} {
		if !strings.Contains(out, want) {
			t.Errorf("solution summary missing %q:\n%s", want, out)
		}
	}

	sol.Status = dynamo.StatusFailed
	sol.Message = "step size too small"
	out = RenderSolution([]string{"y1", "y2"}, sol)
	if !strings.Contains(out, "failed") || !strings.Contains(out, "step size too small") {
		t.Errorf("failed run not shown:\n%s", out)
	}
}

func TestRenderMaxima(t *testing.T) {
	states := symbolic.Symbols("y1", "y2")
	m := scaler.Maxima{states[0]: 1, states[1]: 2}

	out := RenderMaxima(states, m, sampleSolution())
	if !strings.Contains(out, "y1:") || !strings.Contains(out, "y2:") {
		t.Errorf("maxima missing states:\n%s", out)
	}
	if strings.Index(out, "y1:") > strings.Index(out, "y2:") {
		t.Errorf("maxima out of state order:\n%s", out)
	}
}

func TestRenderValidation(t *testing.T) {
	p := oscillator(t)
	states := p.States()

	tests := []struct {
		name       string
		maxima     scaler.Maxima
		violations []symbolic.Symbol
		want       string
	}{
		{"within", scaler.Maxima{states[0]: 2, states[1]: 1.5}, nil, "within bound"},
		{"outside", scaler.Maxima{states[0]: 3, states[1]: 1}, states[:1], "1 state(s) out of bound"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &scaler.Validation{
				Problem:    p,
				Maxima:     tt.maxima,
				Bound:      2,
				Tolerance:  0.01,
				Violations: tt.violations,
				Stability:  1,
			}
			out := RenderValidation(v)
			if !strings.Contains(out, tt.want) {
				t.Errorf("expected %q in:\n%s", tt.want, out)
			}
			if !strings.Contains(out, "2.02") {
				t.Errorf("limit not shown:\n%s", out)
			}
		})
	}
}

func TestPlotSolution(t *testing.T) {
	sol := sampleSolution()

	out, err := PlotSolution(sol, []string{"y1"}, PlotConfig{Width: 20, Height: 4})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "y1 vs time") {
		t.Errorf("missing caption for named state:\n%s", out)
	}
	if !strings.Contains(out, "y2 vs time") {
		t.Errorf("missing fallback caption:\n%s", out)
	}

	overlay, err := PlotSolution(sol, []string{"y1", "y2"}, PlotConfig{Width: 20, Height: 4, Overlay: true})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(overlay, "y2") {
		t.Errorf("missing legend:\n%s", overlay)
	}

	if _, err := PlotSolution(&dynamo.Solution{}, nil, DefaultPlotConfig()); err == nil {
		t.Error("expected error for empty solution")
	}
}

func TestBar(t *testing.T) {
	tests := []struct {
		frac  float64
		width int
		full  int
	}{
		{0, 10, 0},
		{0.5, 10, 5},
		{1.5, 10, 10},
		{-1, 10, 0},
	}
	for _, tt := range tests {
		got := strings.Count(Bar(tt.frac, tt.width), "█")
		if got != tt.full {
			t.Errorf("Bar(%g, %d) filled %d, want %d", tt.frac, tt.width, got, tt.full)
		}
	}
	if Bar(1, 0) != "" {
		t.Error("zero width bar should be empty")
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil, 5); !strings.Contains(got, "─────") {
		t.Errorf("empty sparkline = %q", got)
	}
	got := Sparkline([]float64{0, 1, 2, 3}, 4)
	if !strings.Contains(got, "▁") || !strings.Contains(got, "█") {
		t.Errorf("sparkline should span low to high, got %q", got)
	}
}

func TestPlotSpectrum(t *testing.T) {
	ps := make([]float64, 64)
	ps[3] = 10

	out := PlotSpectrum(ps, "power spectrum (y1)", PlotConfig{Width: 16, Height: 4})
	if !strings.Contains(out, "power spectrum (y1)") {
		t.Errorf("missing caption:\n%s", out)
	}
	if PlotSpectrum(nil, "empty", DefaultPlotConfig()) != "" {
		t.Error("empty spectrum should render nothing")
	}
}
