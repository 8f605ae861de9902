package scaler

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/san-kum/deqscale/internal/dynamo"
)

// Equation is one line of the system as text, State' = RHS.
type Equation struct {
	State string
	RHS   string
}

func (e Equation) String() string {
	return e.State + "' = " + e.RHS
}

// Report is the human-readable description of a Problem.
type Report struct {
	Name           string
	Time           string
	States         []string
	InitialValues  []float64
	Span           TimeSpan
	MaxScaleFactor float64
	Options        dynamo.Options
	Parameters     []Parameter
	System         []Equation
	BoundSystem    []Equation
}

func (p *Problem) Report() Report {
	r := Report{
		Name:           p.def.Name,
		Time:           p.def.Time.Name(),
		States:         make([]string, len(p.def.States)),
		InitialValues:  p.InitialValues(),
		Span:           p.def.Span,
		MaxScaleFactor: p.def.MaxScaleFactor,
		Options:        p.Options(),
		Parameters:     p.Parameters(),
		System:         make([]Equation, len(p.def.States)),
		BoundSystem:    make([]Equation, len(p.def.States)),
	}
	bound := p.BoundRHS()
	for i, s := range p.def.States {
		r.States[i] = s.Name()
		r.System[i] = Equation{State: s.Name(), RHS: p.def.RHS[i].String()}
		r.BoundSystem[i] = Equation{State: s.Name(), RHS: bound[i].String()}
	}
	return r
}

// Show writes the problem as plain text: initial conditions, the scale factor
// when it is not 1, solver options when there are any, parameters, the system
// and the system with parameter values substituted.
func (p *Problem) Show(w io.Writer) error {
	r := p.Report()
	var b strings.Builder

	if r.Name != "" {
		fmt.Fprintf(&b, "Problem: %s\n\n", r.Name)
	}

	b.WriteString("Initial conditions:\n")
	fmt.Fprintf(&b, "  y0       = %s\n", FormatVector(r.InitialValues))
	fmt.Fprintf(&b, "  (t0, tf) = (%s, %s)\n", formatFloat(r.Span.T0), formatFloat(r.Span.Tf))
	if r.MaxScaleFactor != 1 {
		fmt.Fprintf(&b, "  max_scale_factor = %s\n", formatFloat(r.MaxScaleFactor))
	}

	if len(r.Options) > 0 {
		fmt.Fprintf(&b, "\nSolver options:\n  %s\n", r.Options)
	}

	b.WriteString("\nParameters:\n")
	if len(r.Parameters) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, param := range r.Parameters {
		fmt.Fprintf(&b, "  %s = %s\n", param.Symbol, formatFloat(param.Value))
	}

	b.WriteString("\nSystem:\n")
	for _, eq := range r.System {
		fmt.Fprintf(&b, "  %s\n", eq)
	}

	b.WriteString("\nSystem with parameter values:\n")
	for _, eq := range r.BoundSystem {
		fmt.Fprintf(&b, "  %s\n", eq)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (p *Problem) String() string {
	var buf bytes.Buffer
	_ = p.Show(&buf)
	return buf.String()
}

// FormatVector prints values as [a, b, c] using the shortest exact form.
func FormatVector(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = formatFloat(x)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
