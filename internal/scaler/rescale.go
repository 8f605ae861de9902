package scaler

import (
	"math"

	"github.com/san-kum/deqscale/internal/symbolic"
)

// ScaleFactors returns max_i * MaxScaleFactor for every state, in state order.
func (p *Problem) ScaleFactors(m Maxima) ([]float64, error) {
	factor := p.def.MaxScaleFactor
	scales := make([]float64, len(p.def.States))
	for i, s := range p.def.States {
		v, ok := m[s]
		if !ok {
			return nil, configError("maxima", "no maximum for state %s", s)
		}
		if math.IsNaN(v) || v < 0 {
			return nil, configError("maxima", "maximum %g for state %s", v, s)
		}
		scale := v * factor
		if scale == 0 || math.IsInf(scale, 0) {
			return nil, &DegenerateScaleError{Symbol: s, Maximum: v, Factor: factor}
		}
		scales[i] = scale
	}
	return scales, nil
}

// Rescale rewrites the system in terms of y_i / scale_i. The result keeps the
// states, time symbol, parameters, span, options and scale factor; only the
// initial values and right-hand sides change. Maxima for symbols that are not
// states are ignored.
func (p *Problem) Rescale(m Maxima) (Definition, error) {
	scales, err := p.ScaleFactors(m)
	if err != nil {
		return Definition{}, err
	}

	sub := make(symbolic.Substitution, len(scales))
	for i, s := range p.def.States {
		sub[s] = symbolic.Product(symbolic.N(scales[i]), s)
	}

	def := p.def.Clone()
	if def.Name != "" {
		def.Name += "-rescaled"
	}
	for i, rhs := range p.def.RHS {
		def.RHS[i] = symbolic.Product(symbolic.N(1/scales[i]), symbolic.Substitute(rhs, sub))
		def.Y0[i] = p.def.Y0[i] / scales[i]
	}
	return def, nil
}
