// Package export writes trajectories in formats for other tools.
package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/deqscale/internal/dynamo"
)

var palette = []string{"#00ccff", "#ffcc00", "#00ff88", "#ff00ff", "#ff4444", "#8888ff"}

// SVGConfig sets the canvas size and an optional bound drawn as two dashed
// lines at +Bound and -Bound. A zero Bound draws nothing.
type SVGConfig struct {
	Width  int
	Height int
	Bound  float64
}

// SolutionSVG draws every trajectory of sol against time, one colored path per
// state. names label the legend.
func SolutionSVG(w io.Writer, sol *dynamo.Solution, names []string, cfg SVGConfig) error {
	if sol == nil || sol.Len() < 2 {
		return fmt.Errorf("export: need at least two samples")
	}
	if cfg.Width <= 0 {
		cfg.Width = 800
	}
	if cfg.Height <= 0 {
		cfg.Height = 400
	}

	minT, maxT := sol.T[0], sol.T[sol.Len()-1]
	if minT > maxT {
		minT, maxT = maxT, minT
	}
	minY, maxY := math.Inf(1), math.Inf(-1)
	for i := 0; i < sol.Dim(); i++ {
		for _, v := range sol.Trajectory(i) {
			minY = math.Min(minY, v)
			maxY = math.Max(maxY, v)
		}
	}
	if cfg.Bound > 0 {
		minY = math.Min(minY, -cfg.Bound)
		maxY = math.Max(maxY, cfg.Bound)
	}

	rangeT := maxT - minT
	if rangeT == 0 {
		rangeT = 1
	}
	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	x := func(t float64) float64 { return (t - minT) / rangeT * float64(cfg.Width) }
	y := func(v float64) float64 { return float64(cfg.Height) - (v-minY)/rangeY*float64(cfg.Height) }

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, cfg.Width, cfg.Height, cfg.Width, cfg.Height)

	fmt.Fprintf(&sb, `<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#444466" stroke-width="1"/>
`, y(0), cfg.Width, y(0))
	if cfg.Bound > 0 {
		for _, b := range []float64{cfg.Bound, -cfg.Bound} {
			fmt.Fprintf(&sb, `<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#ff4444" stroke-dasharray="6 4"/>
`, y(b), cfg.Width, y(b))
		}
	}

	for i := 0; i < sol.Dim(); i++ {
		color := palette[i%len(palette)]
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, color)
		for k, v := range sol.Trajectory(i) {
			cmd := " L"
			if k == 0 {
				cmd = "M"
			}
			fmt.Fprintf(&sb, "%s%.1f,%.1f", cmd, x(sol.T[k]), y(v))
		}
		sb.WriteString("\"/>\n")

		label := fmt.Sprintf("y%d", i+1)
		if i < len(names) {
			label = names[i]
		}
		fmt.Fprintf(&sb, `<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 16*(i+1), color, escape(label))
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
