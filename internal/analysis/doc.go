// Package analysis inspects sampled trajectories.
//
// Solutions from adaptive solvers are sampled at uneven times, so the
// spectral tools first resample onto an even grid:
//
//	peak, err := analysis.Dominant(sol.T, sol.Trajectory(0))
//	if err == nil && peak.Frequency > 0 {
//	    fmt.Printf("period %.3f\n", peak.Period)
//	}
//
// A trial span much shorter than the dominant period is a sign the maxima of a
// trial run will underestimate the true bound.
package analysis
