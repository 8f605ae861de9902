package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/deqscale/internal/dynamo"
)

// MaxPlots caps the number of per-state graphs drawn by PlotSolution.
const MaxPlots = 6

type PlotConfig struct {
	Width  int
	Height int
	// Overlay draws every state in one graph instead of one graph per state.
	Overlay bool
}

func DefaultPlotConfig() PlotConfig {
	return PlotConfig{Width: 80, Height: 10}
}

// PlotSolution draws the trajectories of sol against sample index. names
// labels the components; missing names fall back to y1, y2, ...
func PlotSolution(sol *dynamo.Solution, names []string, cfg PlotConfig) (string, error) {
	if sol == nil || sol.Len() == 0 {
		return "", fmt.Errorf("no data to plot")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg = DefaultPlotConfig()
	}

	label := func(i int) string {
		if i < len(names) {
			return names[i]
		}
		return fmt.Sprintf("y%d", i+1)
	}

	n := min(sol.Dim(), MaxPlots)
	if cfg.Overlay {
		series := make([][]float64, n)
		legends := make([]string, n)
		colors := make([]asciigraph.AnsiColor, n)
		palette := []asciigraph.AnsiColor{
			asciigraph.Cyan,
			asciigraph.Yellow,
			asciigraph.Green,
			asciigraph.Magenta,
			asciigraph.Red,
			asciigraph.Blue,
		}
		for i := 0; i < n; i++ {
			series[i] = sol.Trajectory(i)
			legends[i] = label(i)
			colors[i] = palette[i%len(palette)]
		}
		return asciigraph.PlotMany(series,
			asciigraph.Height(cfg.Height),
			asciigraph.Width(cfg.Width),
			asciigraph.SeriesColors(colors...),
			asciigraph.SeriesLegends(legends...),
		), nil
	}

	out := ""
	for i := 0; i < n; i++ {
		graph := asciigraph.Plot(sol.Trajectory(i),
			asciigraph.Height(cfg.Height),
			asciigraph.Width(cfg.Width),
			asciigraph.Caption(fmt.Sprintf("%s vs time", label(i))),
		)
		out += graph + "\n\n"
	}
	return out, nil
}

// PlotSpectrum draws the low quarter of a power spectrum, where the peaks of
// a smooth trajectory are.
func PlotSpectrum(ps []float64, caption string, cfg PlotConfig) string {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg = DefaultPlotConfig()
	}
	data := ps
	if len(ps) >= 8 {
		data = ps[:len(ps)/4]
	}
	if len(data) == 0 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(cfg.Height),
		asciigraph.Width(cfg.Width),
		asciigraph.Caption(caption),
	)
}
