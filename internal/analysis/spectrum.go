package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
)

var ErrTooFewSamples = errors.New("analysis: too few samples")

// minSamples is the smallest grid Dominant resamples onto.
const minSamples = 16

// Resample linearly interpolates y(t) onto n evenly spaced times spanning
// t[0]..t[len(t)-1]. t must be monotonic, in either direction.
func Resample(t, y []float64, n int) (ts, ys []float64, err error) {
	if len(t) != len(y) {
		return nil, nil, fmt.Errorf("analysis: %d times for %d values", len(t), len(y))
	}
	if len(t) < 2 || n < 2 {
		return nil, nil, ErrTooFewSamples
	}

	tt, yy := t, y
	if t[len(t)-1] < t[0] {
		tt = reversed(t)
		yy = reversed(y)
	}

	ts = make([]float64, n)
	floats.Span(ts, tt[0], tt[len(tt)-1])
	ys = make([]float64, n)
	for i, at := range ts {
		k := sort.SearchFloat64s(tt, at)
		switch {
		case k == 0:
			ys[i] = yy[0]
		case k >= len(tt):
			ys[i] = yy[len(yy)-1]
		default:
			t0, t1 := tt[k-1], tt[k]
			if t1 == t0 {
				ys[i] = yy[k]
				continue
			}
			w := (at - t0) / (t1 - t0)
			ys[i] = yy[k-1] + w*(yy[k]-yy[k-1])
		}
	}
	return ts, ys, nil
}

// PowerSpectrum returns the magnitude of the first half of the DFT of y.
func PowerSpectrum(y []float64) []float64 {
	coeffs := fft.FFTReal(y)
	ps := make([]float64, len(coeffs)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(coeffs[i])
	}
	return ps
}

// Peak is the strongest non-constant component of a signal.
type Peak struct {
	Frequency float64
	Period    float64
	Power     float64
}

// Dominant resamples y(t) onto a power of two grid, removes the mean and
// returns the strongest frequency. A signal without oscillation has a zero
// Frequency and an infinite Period.
func Dominant(t, y []float64) (Peak, error) {
	n := minSamples
	for n < len(t) {
		n *= 2
	}
	ts, ys, err := Resample(t, y, n)
	if err != nil {
		return Peak{}, err
	}
	span := ts[n-1] - ts[0]
	if span == 0 {
		return Peak{}, fmt.Errorf("%w: zero time span", ErrTooFewSamples)
	}

	floats.AddConst(-floats.Sum(ys)/float64(n), ys)
	ps := PowerSpectrum(ys)

	best := 0
	for k := 1; k < len(ps); k++ {
		if ps[k] > ps[best] {
			best = k
		}
	}
	if best == 0 || ps[best] < 1e-12*float64(n) {
		return Peak{Period: math.Inf(1)}, nil
	}

	// Bin k of an n-point grid with step span/(n-1).
	freq := float64(best) * float64(n-1) / (float64(n) * span)
	return Peak{Frequency: freq, Period: 1 / freq, Power: ps[best]}, nil
}

func reversed(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[len(v)-1-i] = x
	}
	return out
}
