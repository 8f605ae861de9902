package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/san-kum/deqscale/internal/dynamo"
)

func TestSolutionSVG(t *testing.T) {
	sol := dynamo.NewSolution("RK45",
		[]float64{0, 1, 2},
		[]dynamo.State{{0, 1}, {1, 0}, {0, -1}},
		2)

	var buf bytes.Buffer
	if err := SolutionSVG(&buf, sol, []string{"x", "v<1>"}, SVGConfig{Bound: 2}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if got := strings.Count(out, "<path"); got != 2 {
		t.Errorf("got %d paths, want 2", got)
	}
	if got := strings.Count(out, "stroke-dasharray"); got != 2 {
		t.Errorf("got %d bound lines, want 2", got)
	}
	if !strings.Contains(out, `width="800"`) {
		t.Error("default width not applied")
	}
	if !strings.Contains(out, "v&lt;1&gt;") {
		t.Error("legend not escaped")
	}
	if !strings.HasSuffix(out, "</svg>\n") {
		t.Error("document not closed")
	}
}

func TestSolutionSVGNoBound(t *testing.T) {
	sol := dynamo.NewSolution("RK4", []float64{0, 1}, []dynamo.State{{1}, {1}}, 1)

	var buf bytes.Buffer
	if err := SolutionSVG(&buf, sol, nil, SVGConfig{Width: 100, Height: 50}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "stroke-dasharray") {
		t.Error("bound lines drawn without a bound")
	}
	if !strings.Contains(buf.String(), ">y1</text>") {
		t.Error("missing fallback legend")
	}
}

func TestSolutionSVGTooShort(t *testing.T) {
	sol := dynamo.NewSolution("RK4", []float64{0}, []dynamo.State{{1}}, 1)
	if err := SolutionSVG(&bytes.Buffer{}, sol, nil, SVGConfig{}); err == nil {
		t.Error("expected error for a single sample")
	}
}
