package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/deqscale/internal/config"
	"github.com/san-kum/deqscale/internal/dynamo"
	"github.com/san-kum/deqscale/internal/integrators"
	"github.com/san-kum/deqscale/internal/scaler"
	"github.com/san-kum/deqscale/internal/storage"
	"github.com/san-kum/deqscale/internal/symbolic"
	"github.com/san-kum/deqscale/internal/viz"
)

var errOutOfBound = errors.New("rescaled system exceeds its bound")

// loadProblem reads the problem named by args or --preset and applies the
// solver flags that were set on the command line.
func loadProblem(cmd *cobra.Command, args []string) (*scaler.Problem, error) {
	var pf *config.ProblemFile
	switch {
	case preset != "" && len(args) > 0:
		return nil, fmt.Errorf("give either a file or --preset, not both")
	case preset != "":
		pf = config.GetPreset(preset)
		if pf == nil {
			return nil, fmt.Errorf("unknown preset %q (see deqscale presets)", preset)
		}
	case len(args) == 1:
		var err error
		if pf, err = config.Load(args[0]); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("no problem file given")
	}

	pf.Solver = config.SolverOptions(solverOverrides(cmd, dynamo.Options(pf.Solver)))
	return pf.Problem()
}

func solverOverrides(cmd *cobra.Command, opts dynamo.Options) dynamo.Options {
	flags := cmd.Flags()
	if flags.Changed("method") {
		opts = opts.With(integrators.OptMethod, method)
	}
	if flags.Changed("rtol") {
		opts = opts.With(integrators.OptRelTol, rtol)
	}
	if flags.Changed("atol") {
		opts = opts.With(integrators.OptAbsTol, atol)
	}
	if flags.Changed("max-step") {
		opts = opts.With(integrators.OptMaxStep, maxStep)
	}
	if flags.Changed("max-steps") {
		opts = opts.With(integrators.OptMaxSteps, maxSteps)
	}
	if flags.Changed("step") {
		opts = opts.With(integrators.OptStep, step)
	}
	return opts
}

// parseMaxima turns --maxima y1=3,y2=4 into Maxima. It returns nil when the
// flag was not given.
func parseMaxima(raw map[string]string) (scaler.Maxima, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	m := make(scaler.Maxima, len(raw))
	for name, val := range raw {
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("--maxima %s: %w", name, err)
		}
		m[symbolic.S(name)] = v
	}
	return m, nil
}

func newScaler(p *scaler.Problem) *scaler.Scaler {
	return scaler.New(p, scaler.WithSolver(integrators.NewIVP()), scaler.WithLogger(slog.Default()))
}

func stateNames(p *scaler.Problem) []string {
	names := make([]string, p.Dim())
	for i, s := range p.States() {
		names[i] = s.Name()
	}
	return names
}

func saveRun(p *scaler.Problem, sol *dynamo.Solution, m scaler.Maxima) error {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(p, sol, m)
	if err != nil {
		return err
	}
	fmt.Printf("saved run: %s\n", runID)
	return nil
}

func showProblem(cmd *cobra.Command, args []string) error {
	p, err := loadProblem(cmd, args)
	if err != nil {
		return err
	}
	if plain {
		return p.Show(os.Stdout)
	}
	fmt.Println(viz.RenderReport(p.Report()))
	return nil
}

func solveProblem(cmd *cobra.Command, args []string) error {
	p, err := loadProblem(cmd, args)
	if err != nil {
		return err
	}

	start := time.Now()
	sol, err := newScaler(p).Solve()
	if err != nil {
		return err
	}
	slog.Info("integration finished", "problem", p.Name(), "status", sol.Status, "elapsed", time.Since(start))

	fmt.Println(viz.RenderSolution(stateNames(p), sol))

	if plot {
		graph, err := viz.PlotSolution(sol, stateNames(p), viz.PlotConfig{Width: plotWidth, Height: plotHeight, Overlay: overlay})
		if err != nil {
			return err
		}
		fmt.Println(graph)
	}

	if save {
		if err := saveRun(p, sol, nil); err != nil {
			return err
		}
	}
	if !sol.Success() {
		return fmt.Errorf("%w: %s", scaler.ErrIntegrationFailed, sol.Message)
	}
	return nil
}

func printMaxima(cmd *cobra.Command, args []string) error {
	p, err := loadProblem(cmd, args)
	if err != nil {
		return err
	}

	s := newScaler(p)
	m, err := s.DetermineMaxima()
	if err != nil {
		return err
	}
	fmt.Println(viz.RenderMaxima(p.States(), m, s.Solution()))

	if save {
		return saveRun(p, s.Solution(), m)
	}
	return nil
}

func rescaleProblem(cmd *cobra.Command, args []string) error {
	p, err := loadProblem(cmd, args)
	if err != nil {
		return err
	}
	m, err := parseMaxima(maximaFlag)
	if err != nil {
		return err
	}

	def, err := newScaler(p).Rescale(m)
	if err != nil {
		return err
	}
	rescaled, err := scaler.NewProblem(def)
	if err != nil {
		return err
	}

	if outFile != "" {
		if err := config.Save(outFile, config.FromDefinition(def)); err != nil {
			return err
		}
		slog.Info("wrote rescaled problem", "path", outFile)
	}

	if plain {
		return rescaled.Show(os.Stdout)
	}
	fmt.Println(viz.RenderReport(rescaled.Report()))
	return nil
}

func validateProblem(cmd *cobra.Command, args []string) error {
	p, err := loadProblem(cmd, args)
	if err != nil {
		return err
	}
	m, err := parseMaxima(maximaFlag)
	if err != nil {
		return err
	}

	s := newScaler(p)
	def, err := s.Rescale(m)
	if err != nil {
		return err
	}
	v, err := s.Validate(def, tolerance)
	if err != nil {
		return err
	}
	fmt.Println(viz.RenderValidation(v))

	if save {
		if err := saveRun(v.Problem, v.Solution, v.Maxima); err != nil {
			return err
		}
	}
	if !v.OK() {
		return fmt.Errorf("%w: %d of %d states above %g", errOutOfBound, len(v.Violations), p.Dim(), v.Limit())
	}
	return nil
}
