package viz

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/deqscale/internal/dynamo"
	"github.com/san-kum/deqscale/internal/scaler"
	"github.com/san-kum/deqscale/internal/symbolic"
)

const barWidth = 24

// RenderReport draws the same sections as Problem.Show inside a panel.
func RenderReport(r scaler.Report) string {
	var sections []string

	if r.Name != "" {
		sections = append(sections, Title.Render(r.Name))
	}

	ic := []string{
		metric("y0", scaler.FormatVector(r.InitialValues)),
		metric("(t0, tf)", fmt.Sprintf("(%s, %s)", num(r.Span.T0), num(r.Span.Tf))),
	}
	if r.MaxScaleFactor != 1 {
		ic = append(ic, metric("max_scale_factor", num(r.MaxScaleFactor)))
	}
	sections = append(sections, section("Initial conditions", ic))

	if len(r.Options) > 0 {
		lines := make([]string, len(r.Options))
		for i, opt := range r.Options {
			lines[i] = metric(opt.Name, fmt.Sprint(opt.Value))
		}
		sections = append(sections, section("Solver options", lines))
	}

	params := []string{Subtle.Render("(none)")}
	if len(r.Parameters) > 0 {
		params = params[:0]
		for _, p := range r.Parameters {
			params = append(params, metric(p.Symbol.Name(), num(p.Value)))
		}
	}
	sections = append(sections, section("Parameters", params))
	sections = append(sections, section("System", equations(r.System)))
	sections = append(sections, section("System with parameter values", equations(r.BoundSystem)))

	return Panel.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// RenderSolution summarizes a run: status, step counts and the final state.
func RenderSolution(states []string, sol *dynamo.Solution) string {
	status := StatusOK.Render(sol.Status.String())
	if !sol.Success() {
		status = StatusFailed.Render(sol.Status.String())
	}

	lines := []string{
		metric("method", sol.Method),
		metric("status", status),
	}
	if sol.Message != "" {
		lines = append(lines, metric("message", sol.Message))
	}
	lines = append(lines,
		metric("steps", strconv.Itoa(sol.Steps)),
		metric("rejected", strconv.Itoa(sol.Rejected)),
		metric("evaluations", strconv.Itoa(sol.Evaluations)),
		metric("samples", strconv.Itoa(sol.Len())),
	)
	if sol.Len() > 0 {
		final := sol.Final()
		lines = append(lines, metric("t final", num(sol.T[sol.Len()-1])))
		for i, name := range states {
			if i < len(final) {
				lines = append(lines, metric(name, num(final[i])))
			}
		}
	}
	return Panel.Render(section("Solution", lines))
}

// RenderMaxima lists the maxima of states in order with a sparkline of each
// trajectory when sol is not nil.
func RenderMaxima(states []symbolic.Symbol, m scaler.Maxima, sol *dynamo.Solution) string {
	lines := make([]string, 0, len(states))
	for i, s := range states {
		line := metric(s.Name(), num(m[s]))
		if sol != nil && i < sol.Dim() {
			line += "  " + Sparkline(sol.Trajectory(i), barWidth)
		}
		lines = append(lines, line)
	}
	return Panel.Render(section("Maxima", lines))
}

// RenderValidation shows each state's maximum against the accepted limit.
func RenderValidation(v *scaler.Validation) string {
	status := StatusOK.Render("within bound")
	if !v.OK() {
		status = StatusFailed.Render(fmt.Sprintf("%d state(s) out of bound", len(v.Violations)))
	}

	lines := []string{
		metric("bound", num(v.Bound)),
		metric("tolerance", num(v.Tolerance)),
		metric("limit", num(v.Limit())),
		metric("stability", fmt.Sprintf("%.1f%%", 100*v.Stability)),
		metric("result", status),
		"",
	}
	limit := v.Limit()
	for _, s := range v.Problem.States() {
		frac := 1.0
		if limit > 0 {
			frac = v.Maxima[s] / limit
		}
		lines = append(lines, fmt.Sprintf("%s %s %s",
			MetricLabel.Render(pad(s.Name(), 8)),
			Bar(frac, barWidth),
			MetricValue.Render(num(v.Maxima[s]))))
	}
	return Panel.Render(section("Validation", lines))
}

func section(title string, lines []string) string {
	body := make([]string, len(lines))
	for i, l := range lines {
		body[i] = "  " + l
	}
	return HeaderStyle.Render(title) + "\n" + strings.Join(body, "\n") + "\n"
}

func equations(eqs []scaler.Equation) []string {
	out := make([]string, len(eqs))
	for i, eq := range eqs {
		out[i] = MetricLabel.Render(eq.State+"'") + " = " + eq.RHS
	}
	return out
}

func metric(label, value string) string {
	return MetricLabel.Render(label+":") + " " + MetricValue.Render(value)
}

func pad(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
