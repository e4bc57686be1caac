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
	"testing"

	"github.com/stretchr/testify/require"
	"lostluck.dev/rdf-go/analysis/dimuon"
	"lostluck.dev/rdf-go/source/rootsrc"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.root"), filepath.Join(dir, "b.root")
	for _, path := range []string{a, b} {
		var stdout, stderr bytes.Buffer
		code := run(context.Background(), []string{"-o", path, "-n", "300", "--seed", "4"}, &stdout, &stderr)
		require.Equal(t, 0, code, "stderr:\n%s", stderr.String())
	}

	src, err := rootsrc.Open(a, rootsrc.DefaultTree, dimuon.Columns(dimuon.DefaultConfig())...)
	require.NoError(t, err)
	require.Equal(t, int64(300), src.Entries())

	ra, err := os.ReadFile(a)
	require.NoError(t, err)
	rb, err := os.ReadFile(b)
	require.NoError(t, err)
	require.Equal(t, len(ra), len(rb), "equal seeds should give files of equal size")
}

func TestRun_Invalid(t *testing.T) {
	out := filepath.Join(t.TempDir(), "x.root")
	for _, args := range [][]string{
		{"-o", out, "-n", "-1"},
		{"-o", out, "--signal", "1.5"},
		{"-o", out, "--same-sign", "-0.1"},
		{"--bogus"},
	} {
		var stdout, stderr bytes.Buffer
		require.Equal(t, 1, run(context.Background(), args, &stdout, &stderr), "args %q", args)
		require.Contains(t, stderr.String(), "gendata: ")
	}
}
