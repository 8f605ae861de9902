package config

import (
	"math"
	"sort"
)

var Presets = map[string]*ProblemFile{
	"decay": {
		Name:       "decay",
		States:     []string{"y"},
		Equations:  []string{"-k*y"},
		Parameters: []ParameterConfig{{"k", 1}},
		TSpan:      []float64{0, 5},
		Y0:         []float64{10},
	},
	"oscillator": {
		Name:       "oscillator",
		States:     []string{"y1", "y2"},
		Equations:  []string{"y2", "-omega^2*y1"},
		Parameters: []ParameterConfig{{"omega", 1}},
		TSpan:      []float64{0, 2 * math.Pi},
		Y0:         []float64{1, 0},
		Solver:     SolverOptions{{Name: "rtol", Value: 1e-8}, {Name: "atol", Value: 1e-10}},
	},
	"vanderpol": {
		Name:       "vanderpol",
		States:     []string{"x", "y"},
		Equations:  []string{"y", "mu*(1 - x^2)*y - x"},
		Parameters: []ParameterConfig{{"mu", 1}},
		TSpan:      []float64{0, 20},
		Y0:         []float64{2, 0},
		Solver:     SolverOptions{{Name: "rtol", Value: 1e-6}},
	},
	"duffing": {
		Name:       "duffing",
		States:     []string{"x", "v"},
		Equations:  []string{"v", "gamma*cos(omega*t) - delta*v - alpha*x - beta*x^3"},
		Parameters: []ParameterConfig{{"alpha", -1}, {"beta", 1}, {"delta", 0.3}, {"gamma", 0.5}, {"omega", 1.2}},
		TSpan:      []float64{0, 50},
		Y0:         []float64{1, 0},
		Solver:     SolverOptions{{Name: "rtol", Value: 1e-6}},
	},
	"lorenz": {
		Name:           "lorenz",
		States:         []string{"x", "y", "z"},
		Equations:      []string{"sigma*(y - x)", "x*(rho - z) - y", "x*y - beta*z"},
		Parameters:     []ParameterConfig{{"sigma", 10}, {"rho", 28}, {"beta", 8.0 / 3.0}},
		TSpan:          []float64{0, 30},
		Y0:             []float64{1, 1, 1},
		MaxScaleFactor: 1.2,
		Solver:         SolverOptions{{Name: "rtol", Value: 1e-6}, {Name: "atol", Value: 1e-9}},
	},
	"rossler": {
		Name:       "rossler",
		States:     []string{"x", "y", "z"},
		Equations:  []string{"-y - z", "x + a*y", "b + z*(x - c)"},
		Parameters: []ParameterConfig{{"a", 0.2}, {"b", 0.2}, {"c", 5.7}},
		TSpan:      []float64{0, 100},
		Y0:         []float64{1, 1, 1},
		Solver:     SolverOptions{{Name: "rtol", Value: 1e-6}},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *ProblemFile {
	pf, ok := Presets[name]
	if !ok {
		return nil
	}
	return pf.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
