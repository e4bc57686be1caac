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

// gendata writes a synthetic NanoAOD-like ROOT file of Z boson decays to
// muon pairs over a soft background, for exercising the dimuon selection
// without real collision data.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jba/slog/handlers/loghandler"
	"github.com/spf13/cobra"
	"lostluck.dev/rdf-go/analysis/dimuon"
	"lostluck.dev/rdf-go/analysis/dimuon/synthetic"
	"lostluck.dev/rdf-go/source/rootsrc"
)

// Config handles configuring the generator.
type Config struct {
	Output   string
	Events   int
	Seed     uint64
	Tree     string
	Signal   float64
	SameSign float64
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newCommand(stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "gendata: %v\n", err)
		return 1
	}
	return 0
}

func newCommand(stdout, stderr io.Writer) *cobra.Command {
	def := synthetic.DefaultConfig(0, 0)
	var cfg Config
	cmd := &cobra.Command{
		Use:   "gendata",
		Short: "Write a synthetic NanoAOD-like ROOT file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := slog.New(loghandler.New(stderr, nil))
			return generate(cfg, logger)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringVarP(&cfg.Output, "output", "o", "data.root", "output ROOT file")
	f.IntVarP(&cfg.Events, "nevents", "n", 10000, "number of events")
	f.Uint64Var(&cfg.Seed, "seed", 1, "random seed; equal seeds give equal files")
	f.StringVar(&cfg.Tree, "tree", rootsrc.DefaultTree, "name of the event tree")
	f.Float64Var(&cfg.Signal, "signal", def.SignalFraction, "fraction of events holding a Z decay")
	f.Float64Var(&cfg.SameSign, "same-sign", def.SameSignFraction, "fraction of background events with same-sign muons")
	return cmd
}

func generate(cfg Config, logger *slog.Logger) error {
	switch {
	case cfg.Events < 0:
		return &dimuon.ConfigError{Field: "nevents", Err: fmt.Errorf("%d is negative", cfg.Events)}
	case cfg.Signal < 0 || cfg.Signal > 1:
		return &dimuon.ConfigError{Field: "signal", Err: fmt.Errorf("%v is not a fraction", cfg.Signal)}
	case cfg.SameSign < 0 || cfg.SameSign > 1:
		return &dimuon.ConfigError{Field: "same-sign", Err: fmt.Errorf("%v is not a fraction", cfg.SameSign)}
	}
	gen := synthetic.DefaultConfig(cfg.Events, cfg.Seed)
	gen.SignalFraction = cfg.Signal
	gen.SameSignFraction = cfg.SameSign

	if err := dimuon.WriteROOT(cfg.Output, cfg.Tree, synthetic.Generate(gen)); err != nil {
		return err
	}
	logger.Info("wrote events", slog.Int("events", cfg.Events), slog.Uint64("seed", cfg.Seed), slog.String("file", cfg.Output))
	return nil
}
