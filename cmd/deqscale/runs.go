package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/deqscale/internal/analysis"
	"github.com/san-kum/deqscale/internal/export"
	"github.com/san-kum/deqscale/internal/storage"
	"github.com/san-kum/deqscale/internal/viz"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROBLEM\tTIME\tSPAN\tMETHOD\tSTATUS\tSTEPS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t[%g, %g]\t%s\t%s\t%d\n",
			run.ID,
			run.Problem,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.T0,
			run.Tf,
			run.Method,
			run.Status,
			run.Steps,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, sol, err := st.LoadSolution(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("problem: %s\n", meta.Problem)
	fmt.Printf("samples: %d\n\n", sol.Len())

	graph, err := viz.PlotSolution(sol, meta.States, viz.PlotConfig{Width: plotWidth, Height: plotHeight, Overlay: overlay})
	if err != nil {
		return err
	}
	fmt.Println(graph)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, sol, err := st.LoadSolution(runID)
	if err != nil {
		return err
	}

	out := io.Writer(os.Stdout)
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	if svg {
		cfg := export.SVGConfig{Width: plotWidth * 10, Height: plotHeight * 40}
		if showBound {
			cfg.Bound = meta.MaxScaleFactor
		}
		err = export.SolutionSVG(out, sol, meta.States, cfg)
	} else {
		err = storage.ExportJSON(out, meta, sol)
	}
	if err != nil {
		return err
	}
	if outFile != "" {
		fmt.Printf("exported %s to %s\n", runID, outFile)
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, sol, err := st.LoadSolution(runID)
	if err != nil {
		return err
	}
	if sol.Len() < 2 {
		return fmt.Errorf("run %s has %d samples, need at least 2", runID, sol.Len())
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("problem: %s\n\n", meta.Problem)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STATE\tFREQUENCY\tPERIOD\tPERIODS IN SPAN")
	span := math.Abs(meta.Tf - meta.T0)
	for i, name := range meta.States {
		peak, err := analysis.Dominant(sol.T, sol.Trajectory(i))
		if err != nil {
			return err
		}
		if peak.Frequency == 0 {
			fmt.Fprintf(w, "%s\t-\t-\t-\n", name)
			continue
		}
		fmt.Fprintf(w, "%s\t%.4g\t%.4g\t%.1f\n", name, peak.Frequency, peak.Period, span/peak.Period)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(meta.States) > 0 {
		_, ys, err := analysis.Resample(sol.T, sol.Trajectory(0), 1024)
		if err != nil {
			return err
		}
		caption := fmt.Sprintf("power spectrum (%s)", meta.States[0])
		fmt.Println()
		fmt.Println(viz.PlotSpectrum(analysis.PowerSpectrum(ys), caption, viz.PlotConfig{Width: plotWidth, Height: plotHeight}))
	}
	return nil
}
