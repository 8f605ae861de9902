package scaler

import (
	"errors"
	"testing"

	"github.com/san-kum/deqscale/internal/dynamo"
	"github.com/san-kum/deqscale/internal/symbolic"
)

func solutionOf(traj ...[]float64) *dynamo.Solution {
	n := len(traj[0])
	times := make([]float64, n)
	states := make([]dynamo.State, n)
	for k := range states {
		times[k] = float64(k)
		states[k] = make(dynamo.State, len(traj))
		for i := range traj {
			states[k][i] = traj[i][k]
		}
	}
	return dynamo.NewSolution("test", times, states, len(traj))
}

func TestAbsMaxima(t *testing.T) {
	tests := []struct {
		name string
		traj [][]float64
		want []float64
	}{
		{"mixed signs", [][]float64{{1, -5, 3, 0}}, []float64{5}},
		{"all negative", [][]float64{{-0.5, -0.25, -2}}, []float64{2}},
		{"constant zero", [][]float64{{0, 0, 0}}, []float64{0}},
		{"single sample", [][]float64{{-7}}, []float64{7}},
		{"two components", [][]float64{{1, -5, 3, 0}, {0.1, 0.2, -0.3, 0}}, []float64{5, 0.3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			states := symbolic.Symbols("a", "b")[:len(tt.traj)]
			m, err := AbsMaxima(states, solutionOf(tt.traj...))
			if err != nil {
				t.Fatalf("AbsMaxima() error = %v", err)
			}
			for i, s := range states {
				if m[s] != tt.want[i] {
					t.Errorf("max |%s| = %g, want %g", s, m[s], tt.want[i])
				}
			}
			if len(m) != len(states) {
				t.Errorf("%d maxima for %d states", len(m), len(states))
			}
		})
	}
}

func TestAbsMaximaErrors(t *testing.T) {
	states := symbolic.Symbols("a", "b")

	if _, err := AbsMaxima(states, solutionOf([]float64{1, 2})); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("one trajectory for two states: error = %v", err)
	}
	if _, err := AbsMaxima(states, nil); !errors.Is(err, ErrConfiguration) {
		t.Errorf("nil solution: error = %v", err)
	}
	empty := dynamo.NewSolution("test", nil, nil, 2)
	if _, err := AbsMaxima(states, empty); !errors.Is(err, ErrConfiguration) {
		t.Errorf("empty solution: error = %v", err)
	}
}

func TestMaximaString(t *testing.T) {
	m := Maxima{symbolic.S("y2"): 4, symbolic.S("y1"): 3}

	if s := m.String(); s != "y1=3, y2=4" {
		t.Errorf("String() = %q", s)
	}
}
