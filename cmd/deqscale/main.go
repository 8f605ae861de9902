package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/san-kum/deqscale/internal/config"
	"github.com/san-kum/deqscale/internal/integrators"
)

var (
	dataDir      string
	logLevel     string
	settingsFile string
	preset       string
	// Solver overrides
	method   string
	rtol     float64
	atol     float64
	maxStep  float64
	maxSteps int
	step     float64
	// Command flags
	plain      bool
	plot       bool
	overlay    bool
	save       bool
	maximaFlag map[string]string
	outFile    string
	tolerance  float64
	plotWidth  int
	plotHeight int
	params     []string
	workers    int
	svg        bool
	showBound  bool
)

// main registers the commands and runs the root command. Errors are printed by
// cobra and end the process with status 1.
func main() {
	rootCmd := &cobra.Command{
		Use:          "deqscale",
		Short:        "rescale ODE systems so every state stays within a bound",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadSettings(cmd, settingsFile); err != nil {
				return err
			}
			return setupLogger(logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".deqscale", "run store directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&settingsFile, "config", "", "settings file (default .deqscale.yaml in . or $HOME)")

	showCmd := &cobra.Command{
		Use:   "show [file]",
		Short: "print a problem",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showProblem,
	}
	showCmd.Flags().BoolVar(&plain, "plain", false, "plain text without styling")

	solveCmd := &cobra.Command{
		Use:   "solve [file]",
		Short: "integrate a problem over its time span",
		Args:  cobra.MaximumNArgs(1),
		RunE:  solveProblem,
	}
	solveCmd.Flags().BoolVar(&plot, "plot", false, "plot the trajectories")
	solveCmd.Flags().BoolVar(&overlay, "overlay", false, "draw all trajectories in one plot")
	solveCmd.Flags().BoolVar(&save, "save", false, "save the run to the store")

	maximaCmd := &cobra.Command{
		Use:   "maxima [file]",
		Short: "trial run and print the absolute maximum of each state",
		Args:  cobra.MaximumNArgs(1),
		RunE:  printMaxima,
	}
	maximaCmd.Flags().BoolVar(&save, "save", false, "save the trial run to the store")

	rescaleCmd := &cobra.Command{
		Use:   "rescale [file]",
		Short: "print the rescaled system",
		Args:  cobra.MaximumNArgs(1),
		RunE:  rescaleProblem,
	}
	rescaleCmd.Flags().StringToStringVar(&maximaFlag, "maxima", nil, "use these maxima instead of a trial run, e.g. y1=3,y2=4")
	rescaleCmd.Flags().StringVarP(&outFile, "out", "o", "", "write the rescaled problem as yaml")
	rescaleCmd.Flags().BoolVar(&plain, "plain", false, "plain text without styling")

	validateCmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "rescale, integrate again and check the bound",
		Args:  cobra.MaximumNArgs(1),
		RunE:  validateProblem,
	}
	validateCmd.Flags().Float64Var(&tolerance, "tol", 0.01, "relative tolerance on the bound")
	validateCmd.Flags().StringToStringVar(&maximaFlag, "maxima", nil, "use these maxima instead of a trial run")
	validateCmd.Flags().BoolVar(&save, "save", false, "save the rescaled run to the store")

	sweepCmd := &cobra.Command{
		Use:   "sweep [file]",
		Short: "maxima over a grid of parameter values and the rescaling that covers them all",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepProblem,
	}
	sweepCmd.Flags().StringArrayVar(&params, "param", nil, "parameter values, name=v1,v2,... or name=start:stop:count (repeatable)")
	sweepCmd.Flags().IntVar(&workers, "workers", runtime.GOMAXPROCS(0), "trial runs in parallel")
	sweepCmd.Flags().StringVarP(&outFile, "out", "o", "", "write the rescaled problem as yaml")

	for _, cmd := range []*cobra.Command{showCmd, solveCmd, maximaCmd, rescaleCmd, validateCmd, sweepCmd} {
		cmd.Flags().StringVar(&preset, "preset", "", "use a built-in problem instead of a file")
	}
	for _, cmd := range []*cobra.Command{solveCmd, maximaCmd, rescaleCmd, validateCmd, sweepCmd} {
		cmd.Flags().StringVar(&method, "method", "", "integration method ("+strings.Join(integrators.NewRegistry().List(), ", ")+")")
		cmd.Flags().Float64Var(&rtol, "rtol", 0, "relative tolerance")
		cmd.Flags().Float64Var(&atol, "atol", 0, "absolute tolerance")
		cmd.Flags().Float64Var(&maxStep, "max-step", 0, "largest step size")
		cmd.Flags().IntVar(&maxSteps, "max-steps", 0, "step budget")
		cmd.Flags().Float64Var(&step, "step", 0, "fixed step size for RK4, Heun and Euler")
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().BoolVar(&overlay, "overlay", false, "draw all trajectories in one plot")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "dominant frequency of each state of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a saved run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().BoolVar(&svg, "svg", false, "write an svg plot instead of json")
	exportCmd.Flags().BoolVar(&showBound, "bound", false, "draw the max scale factor in the svg plot")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				pf := config.GetPreset(name)
				fmt.Printf("  %-12s %s\n", name, strings.Join(pf.States, ", "))
			}
			return nil
		},
	}

	for _, cmd := range []*cobra.Command{solveCmd, plotCmd, analyzeCmd, exportCmd} {
		cmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
		cmd.Flags().IntVar(&plotHeight, "height", 10, "plot height")
	}

	rootCmd.AddCommand(showCmd, solveCmd, maximaCmd, rescaleCmd, validateCmd, sweepCmd, listCmd, plotCmd, analyzeCmd, exportCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func setupLogger(level string) error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid --log-level %q", level)
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      l,
		TimeFormat: time.Kitchen,
	})))
	return nil
}
