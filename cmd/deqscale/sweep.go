package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/deqscale/internal/config"
	"github.com/san-kum/deqscale/internal/scaler"
	"github.com/san-kum/deqscale/internal/sweep"
	"github.com/san-kum/deqscale/internal/viz"
)

func sweepProblem(cmd *cobra.Command, args []string) error {
	p, err := loadProblem(cmd, args)
	if err != nil {
		return err
	}
	if len(params) == 0 {
		return fmt.Errorf("no --param given")
	}
	if workers < 1 {
		return fmt.Errorf("--workers must be at least 1")
	}

	axes := make([]sweep.Axis, len(params))
	for i, raw := range params {
		if axes[i], err = sweep.ParseAxis(raw); err != nil {
			return err
		}
	}

	sw, err := sweep.New(p.Definition(), axes, sweep.WithWorkers(workers), sweep.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	results, err := sw.Run(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "POINT\tSTEPS\tMAXIMA")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%d\t%s\n", r.Label(axes), r.Solution.Steps, r.Maxima)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println()

	env := sweep.Envelope(p.States(), results)
	fmt.Println(viz.RenderMaxima(p.States(), env, nil))

	def, err := p.Rescale(env)
	if err != nil {
		return err
	}
	if outFile != "" {
		if err := config.Save(outFile, config.FromDefinition(def)); err != nil {
			return err
		}
		slog.Info("wrote rescaled problem", "path", outFile, "points", len(results))
	}

	rescaled, err := scaler.NewProblem(def)
	if err != nil {
		return err
	}
	fmt.Println(viz.RenderReport(rescaled.Report()))
	return nil
}
