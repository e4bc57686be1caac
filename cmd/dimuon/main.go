// Licensed to the Apache Software Foundation (ASF) under one or more
// contributor license agreements.  See the NOTICE file distributed with
// this work for additional information regarding copyright ownership.
// The ASF licenses this file to You under the Apache License, Version 2.0
// (the "License"); you may not use this file except in compliance with
// the License.  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// dimuon selects opposite-sign muon pairs from a NanoAOD ROOT file, prints
// the selection's cutflow, and writes the kinematic histograms as a ROOT
// file and PNG images.
//
// Without a row limit, the file is processed in parallel partitions. With
// -n, only the first rows are read, by a single sequential worker.
//
// Exit codes: 0 on success, 1 on invalid arguments or any failure.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/jba/slog/handlers/loghandler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	rdf "lostluck.dev/rdf-go"
	"lostluck.dev/rdf-go/analysis/dimuon"
	"lostluck.dev/rdf-go/output"
	"lostluck.dev/rdf-go/render"
	"lostluck.dev/rdf-go/source/rootsrc"
)

const (
	exitOK   = 0
	exitFail = 1
)

// Config handles configuring a selection run.
type Config struct {
	Input      string
	Output     string // ROOT histogram file.
	OutDir     string // Images and reports.
	NEvents    int64
	Limited    bool // Set when NEvents was given.
	Workers    int
	ConfigPath string
	Tree       string
	Metrics    bool
	Verbose    bool
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newCommand(stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "dimuon: %v\n", err)
		return exitFail
	}
	return exitOK
}

func newCommand(stdout, stderr io.Writer) *cobra.Command {
	var cfg Config
	cmd := &cobra.Command{
		Use:   "dimuon",
		Short: "Select opposite-sign dimuon events and histogram their kinematics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg.Limited = cmd.Flags().Changed("nevents")
			logger := newLogger(stderr, cfg.Verbose)
			return analyze(cmd.Context(), cfg, stdout, logger)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringVarP(&cfg.Input, "input", "i", "data.root", "input NanoAOD ROOT file")
	f.StringVarP(&cfg.Output, "output", "o", "output.root", "output ROOT file for the histograms")
	f.StringVarP(&cfg.OutDir, "outdir", "d", ".", "output directory or bucket URL for plots and reports")
	f.Int64VarP(&cfg.NEvents, "nevents", "n", 0, "process only the first `N` events, sequentially (0 reads all)")
	f.IntVarP(&cfg.Workers, "workers", "j", 0, "parallel workers when no event limit is set (0 uses every CPU)")
	f.StringVarP(&cfg.ConfigPath, "config", "c", "", "YAML selection configuration")
	f.StringVar(&cfg.Tree, "tree", rootsrc.DefaultTree, "name of the event tree")
	f.BoolVar(&cfg.Metrics, "metrics", false, "write Prometheus metrics to "+output.MetricsKey+" in the output directory")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "log debug details")
	return cmd
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(loghandler.New(w, &slog.HandlerOptions{Level: level}))
}

func (cfg Config) validate() error {
	switch {
	case cfg.Limited && cfg.NEvents < 0:
		return &dimuon.ConfigError{Field: "nevents", Err: fmt.Errorf("%d is negative", cfg.NEvents)}
	case cfg.Workers < 0:
		return &dimuon.ConfigError{Field: "workers", Err: fmt.Errorf("%d is negative", cfg.Workers)}
	case cfg.Tree == "":
		return &dimuon.ConfigError{Field: "tree", Err: fmt.Errorf("empty tree name")}
	}
	return nil
}

func (cfg Config) selection() (dimuon.Config, error) {
	if cfg.ConfigPath == "" {
		return dimuon.DefaultConfig(), nil
	}
	return dimuon.LoadConfig(cfg.ConfigPath)
}

func analyze(ctx context.Context, cfg Config, stdout io.Writer, logger *slog.Logger) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	sel, err := cfg.selection()
	if err != nil {
		return err
	}
	runID := uuid.New()
	logger = logger.With(slog.String("run", runID.String()))
	start := time.Now()

	logger.Info("opening input", slog.String("file", cfg.Input), slog.String("tree", cfg.Tree))
	src, err := rootsrc.Open(cfg.Input, cfg.Tree, dimuon.Columns(sel)...)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	opts := []rdf.Options{rdf.Name("dimuon"), rdf.Logger(logger), rdf.Registerer(reg)}
	workers := 1
	if cfg.Limited {
		logger.Info("processing first events, single-threaded", slog.Int64("events", cfg.NEvents))
		opts = append(opts, rdf.Sequential(), rdf.Range(cfg.NEvents))
	} else {
		workers = cfg.Workers
		if workers == 0 {
			workers = runtime.GOMAXPROCS(0)
		}
		logger.Info("multithreading enabled", slog.Int("workers", workers))
		opts = append(opts, rdf.Parallel(workers))
	}

	g := rdf.New(src, opts...)
	res, err := dimuon.Book(g, sel)
	if err != nil {
		return err
	}
	out, err := res.Collect(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Selected %d dimuon events\n\n=== Cutflow ===\n", out.Selected())
	if _, err := out.Report.WriteTo(stdout); err != nil {
		return err
	}

	sum := &output.Summary{
		RunID:          runID,
		Input:          cfg.Input,
		Tree:           cfg.Tree,
		Started:        start.UTC(),
		ElapsedSeconds: time.Since(start).Seconds(),
		Workers:        workers,
		Entries:        out.Report.Initial,
		Selected:       out.Selected(),
		Cutflow:        output.NewCutflow(out.Report),
	}
	if cfg.Limited {
		sum.RowLimit = cfg.NEvents
	}
	for _, h := range out.Histograms {
		sum.Histograms = append(sum.Histograms, output.NewHistogram(h))
	}
	return save(ctx, cfg, out, sum, reg, logger)
}

// save writes every artifact of a run.
func save(ctx context.Context, cfg Config, out *dimuon.Outcome, sum *output.Summary, reg prometheus.Gatherer, logger *slog.Logger) error {
	rootDir, rootKey := filepath.Split(cfg.Output)
	if rootDir == "" {
		rootDir = "."
	}
	roots, err := output.Open(ctx, rootDir)
	if err != nil {
		return err
	}
	defer roots.Close()
	if err := roots.WriteHistograms(ctx, rootKey, out.Histograms); err != nil {
		return err
	}
	logger.Info("saved histograms", slog.String("file", cfg.Output))

	store, err := output.Open(ctx, cfg.OutDir)
	if err != nil {
		return err
	}
	defer store.Close()
	for _, h := range out.Histograms {
		img, err := render.PNG(h)
		if err != nil {
			return &output.OutputError{Key: render.FileName(h), Err: err}
		}
		if err := store.Write(ctx, render.FileName(h), "image/png", img); err != nil {
			return err
		}
		logger.Info("saved plot", slog.String("file", render.FileName(h)), slog.String("location", store.Location()))
	}
	if err := store.WriteCutflow(ctx, output.CutflowKey, out.Report); err != nil {
		return err
	}
	if err := store.WriteSummary(ctx, output.SummaryKey, sum); err != nil {
		return err
	}
	if cfg.Metrics {
		if err := store.WriteMetrics(ctx, output.MetricsKey, reg); err != nil {
			return err
		}
	}
	logger.Info("analysis complete", slog.Duration("elapsed", time.Since(sum.Started)))
	return nil
}
