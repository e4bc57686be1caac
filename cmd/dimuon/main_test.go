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

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"lostluck.dev/rdf-go/analysis/dimuon"
	"lostluck.dev/rdf-go/analysis/dimuon/synthetic"
	"lostluck.dev/rdf-go/output"
	"lostluck.dev/rdf-go/source/rootsrc"
)

func writeInput(t *testing.T, n int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.root")
	events := synthetic.Generate(synthetic.DefaultConfig(n, 1))
	require.NoError(t, dimuon.WriteROOT(path, rootsrc.DefaultTree, events))
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Parallel(t *testing.T) {
	input := writeInput(t, 2000)
	dir := t.TempDir()
	rootFile := filepath.Join(dir, "hists", "output.root")

	code, stdout, stderr := runCLI(t, "-i", input, "-o", rootFile, "-d", dir, "-j", "3", "--metrics")
	require.Equal(t, exitOK, code, "stderr:\n%s", stderr)
	require.Contains(t, stdout, "dimuon events")
	require.Contains(t, stdout, "=== Cutflow ===")
	require.Contains(t, stdout, dimuon.LabelOpposite)
	require.Contains(t, stderr, "multithreading enabled")

	for _, name := range []string{"nJet.png", "muon1_pt.png", "muon2_pt.png", "dimuon_mass.png", output.CutflowKey, output.SummaryKey, output.MetricsKey} {
		require.FileExists(t, filepath.Join(dir, name))
	}
	require.FileExists(t, rootFile)

	metrics, err := os.ReadFile(filepath.Join(dir, output.MetricsKey))
	require.NoError(t, err)
	require.Contains(t, string(metrics), `rdf_rows_read_total{graph="dimuon"} 2000`)

	store, err := output.Open(context.Background(), dir)
	require.NoError(t, err)
	defer store.Close()
	sum, err := store.ReadSummary(context.Background(), output.SummaryKey)
	require.NoError(t, err)
	require.Equal(t, int64(2000), sum.Entries)
	require.Equal(t, 3, sum.Workers)
	require.Len(t, sum.Histograms, 4)
	require.Equal(t, sum.Cutflow.Stages[2].Pass, sum.Selected)
}

func TestRun_Limited(t *testing.T) {
	input := writeInput(t, 500)
	dir := t.TempDir()

	code, _, stderr := runCLI(t, "-i", input, "-o", filepath.Join(dir, "out.root"), "-d", dir, "-n", "100", "-j", "8")
	require.Equal(t, exitOK, code, "stderr:\n%s", stderr)
	require.Contains(t, stderr, "single-threaded")
	require.NotContains(t, stderr, "forces sequential", "a limited run should be sequential without a warning")

	store, err := output.Open(context.Background(), dir)
	require.NoError(t, err)
	defer store.Close()
	sum, err := store.ReadSummary(context.Background(), output.SummaryKey)
	require.NoError(t, err)
	require.Equal(t, int64(100), sum.Entries)
	require.Equal(t, int64(100), sum.RowLimit)
	require.Equal(t, 1, sum.Workers)
}

func TestRun_Config(t *testing.T) {
	input := writeInput(t, 500)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "selection.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("min_pt: 1000\n"), 0o644))

	code, stdout, stderr := runCLI(t, "-i", input, "-o", filepath.Join(dir, "out.root"), "-d", dir, "-c", cfgPath)
	require.Equal(t, exitOK, code, "stderr:\n%s", stderr)
	require.Contains(t, stdout, "Selected 0 dimuon events")
}

func TestRun_Failures(t *testing.T) {
	input := writeInput(t, 50)
	dir := t.TempDir()
	out := filepath.Join(dir, "out.root")
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "negative limit", args: []string{"-i", input, "-o", out, "-d", dir, "-n", "-5"}, want: "nevents"},
		{name: "negative workers", args: []string{"-i", input, "-o", out, "-d", dir, "-j", "-1"}, want: "workers"},
		{name: "unknown flag", args: []string{"--frobnicate"}, want: "unknown flag"},
		{name: "positional argument", args: []string{"-i", input, "extra"}, want: "unknown command"},
		{name: "missing input", args: []string{"-i", filepath.Join(dir, "nope.root"), "-o", out, "-d", dir}, want: "nope.root"},
		{name: "missing tree", args: []string{"-i", input, "--tree", "Runs", "-o", out, "-d", dir}, want: input},
		{name: "missing config", args: []string{"-i", input, "-c", filepath.Join(dir, "nope.yaml"), "-o", out, "-d", dir}, want: "config file"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, test.args...)
			require.Equal(t, exitFail, code)
			require.True(t, strings.HasPrefix(stderr, "dimuon: ") || strings.Contains(stderr, "dimuon: "), "stderr:\n%s", stderr)
			require.Contains(t, stderr, test.want)
		})
	}
}

func TestRun_Help(t *testing.T) {
	code, stdout, _ := runCLI(t, "--help")
	require.Equal(t, exitOK, code)
	require.Contains(t, stdout, "--nevents")
	require.Contains(t, stdout, "data.root")
}
