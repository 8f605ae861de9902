package scaler

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/deqscale/internal/dynamo"
	"github.com/san-kum/deqscale/internal/symbolic"
)

// Maxima maps each state to the largest absolute value its trajectory reaches.
type Maxima map[symbolic.Symbol]float64

// AbsMaxima scans every trajectory of sol. Trajectories are matched to states
// by position.
func AbsMaxima(states []symbolic.Symbol, sol *dynamo.Solution) (Maxima, error) {
	if sol == nil {
		return nil, fmt.Errorf("%w: no solution", ErrConfiguration)
	}
	if sol.Dim() != len(states) {
		return nil, fmt.Errorf("%w: solution has %d components, expected %d",
			dynamo.ErrDimensionMismatch, sol.Dim(), len(states))
	}
	if sol.Len() == 0 {
		return nil, fmt.Errorf("%w: solution has no samples", ErrConfiguration)
	}

	m := make(Maxima, len(states))
	for i, s := range states {
		m[s] = floats.Norm(sol.Trajectory(i), math.Inf(1))
	}
	return m, nil
}

// String lists the maxima sorted by symbol name.
func (m Maxima) String() string {
	names := make([]string, 0, len(m))
	for s := range m {
		names = append(names, s.Name())
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%g", name, m[symbolic.S(name)])
	}
	return strings.Join(parts, ", ")
}
