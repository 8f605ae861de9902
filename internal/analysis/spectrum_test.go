package analysis

import (
	"errors"
	"math"
	"testing"
)

func TestResample(t *testing.T) {
	times := []float64{0, 1, 3, 4}
	values := []float64{0, 2, 6, 8}

	ts, ys, err := Resample(times, values, 5)
	if err != nil {
		t.Fatal(err)
	}
	for i := range ts {
		if math.Abs(ts[i]-float64(i)) > 1e-12 {
			t.Errorf("ts[%d] = %g", i, ts[i])
		}
		if math.Abs(ys[i]-2*float64(i)) > 1e-12 {
			t.Errorf("ys[%d] = %g, want %g", i, ys[i], 2*float64(i))
		}
	}
}

func TestResampleBackward(t *testing.T) {
	ts, ys, err := Resample([]float64{2, 1, 0}, []float64{4, 2, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if ts[0] != 0 || ts[2] != 2 || ys[1] != 2 {
		t.Errorf("unexpected resample %v %v", ts, ys)
	}
}

func TestResampleErrors(t *testing.T) {
	if _, _, err := Resample([]float64{0}, []float64{1}, 4); !errors.Is(err, ErrTooFewSamples) {
		t.Errorf("expected ErrTooFewSamples, got %v", err)
	}
	if _, _, err := Resample([]float64{0, 1}, []float64{1}, 4); err == nil {
		t.Error("expected length mismatch error")
	}
}

func TestDominant(t *testing.T) {
	tests := []struct {
		name string
		freq float64
	}{
		{"slow", 0.5},
		{"fast", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// uneven sampling, as from an adaptive solver
			var times, values []float64
			for x := 0.0; x <= 10; x += 0.004 + 0.006*math.Abs(math.Sin(7*x)) {
				times = append(times, x)
				values = append(values, 3+math.Sin(2*math.Pi*tt.freq*x))
			}

			peak, err := Dominant(times, values)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(peak.Frequency-tt.freq) > 0.15 {
				t.Errorf("frequency = %g, want about %g", peak.Frequency, tt.freq)
			}
			if math.Abs(peak.Period-1/tt.freq) > 0.15/tt.freq {
				t.Errorf("period = %g, want about %g", peak.Period, 1/tt.freq)
			}
		})
	}
}

func TestDominantConstant(t *testing.T) {
	times := []float64{0, 1, 2, 3}
	peak, err := Dominant(times, []float64{5, 5, 5, 5})
	if err != nil {
		t.Fatal(err)
	}
	if peak.Frequency != 0 || !math.IsInf(peak.Period, 1) {
		t.Errorf("constant signal gave %+v", peak)
	}
}
