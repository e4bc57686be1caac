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

package rdf

import (
	"context"
	"errors"
	"testing"

	"lostluck.dev/rdf-go/hist"
	"lostluck.dev/rdf-go/source"
)

// rows returns a source with n rows: x is the row number as a float64 and
// flag holds on even rows.
func rows(n int) *source.Memory {
	x := make([]float64, n)
	flag := make([]bool, n)
	for i := range n {
		x[i] = float64(i)
		flag[i] = i%2 == 0
	}
	return source.NewMemory().MustAdd("x", x).MustAdd("flag", flag)
}

func double(x float64) (float64, error) { return 2 * x, nil }

func TestInput(t *testing.T) {
	g := New(rows(4))
	a := Input[float64](g, "x")
	b := Input[float64](g, "x")
	if !a.Valid() || a != b {
		t.Fatalf("redeclared input: got %v and %v, want the same valid column", a, b)
	}
	if err := g.Err(); err != nil {
		t.Fatalf("Err() = %v, want nil", err)
	}
}

func TestInput_Missing(t *testing.T) {
	g := New(rows(4))
	c := Input[float64](g, "nope")
	if c.Valid() {
		t.Error("missing input is valid")
	}
	var serr *source.SourceError
	if err := g.Err(); !errors.As(err, &serr) || !errors.Is(err, source.ErrMissingColumn) {
		t.Fatalf("Err() = %v, want a SourceError for a missing column", err)
	}
	if serr.Column != "nope" {
		t.Errorf("SourceError.Column = %q, want %q", serr.Column, "nope")
	}
}

func TestGraph_DeclarationErrors(t *testing.T) {
	other := New(rows(4))
	foreign := Input[float64](other, "x")

	tests := []struct {
		name    string
		declare func(g *Graph)
		node    string
		want    error
	}{
		{
			name: "input type",
			declare: func(g *Graph) {
				Input[int32](g, "x")
			},
			node: "x",
			want: ErrType,
		}, {
			name: "duplicate define",
			declare: func(g *Graph) {
				x := Input[float64](g, "x")
				Define1(g, "y", double, x)
				Define1(g, "y", double, x)
			},
			node: "y",
			want: ErrDuplicate,
		}, {
			name: "define shadows input",
			declare: func(g *Graph) {
				x := Input[float64](g, "x")
				Define1(g, "x", double, x)
			},
			node: "x",
			want: ErrDuplicate,
		}, {
			name: "duplicate filter label",
			declare: func(g *Graph) {
				f := Input[bool](g, "flag")
				Filter1(g, "even", func(b bool) bool { return b }, f)
				Filter1(g, "even", func(b bool) bool { return !b }, f)
			},
			node: "even",
			want: ErrDuplicate,
		}, {
			name: "foreign input",
			declare: func(g *Graph) {
				Define1(g, "y", double, foreign)
			},
			node: "y",
			want: ErrUndeclared,
		}, {
			name: "zero column",
			declare: func(g *Graph) {
				Filter1(g, "none", func(float64) bool { return true }, Column[float64]{})
			},
			node: "none",
			want: ErrUndeclared,
		}, {
			name: "histogram binning",
			declare: func(g *Graph) {
				x := Input[float64](g, "x")
				Histo1D(g, hist.Def{Name: "h", Bins: 0, Min: 0, Max: 1}, x)
			},
			node: "h",
			want: hist.ErrDef,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			g := New(rows(4))
			test.declare(g)
			err := g.Err()
			var gerr *GraphError
			if !errors.As(err, &gerr) || !errors.Is(err, test.want) {
				t.Fatalf("Err() = %v, want a GraphError wrapping %v", err, test.want)
			}
			if got, want := gerr.Node, test.node; got != want {
				t.Errorf("GraphError.Node = %q, want %q", got, want)
			}
			if _, err := Count(g).Value(context.Background()); !errors.Is(err, test.want) {
				t.Errorf("Count().Value() error = %v, want the declaration error", err)
			}
		})
	}
}

func TestGraph_StickyError(t *testing.T) {
	g := New(rows(4))
	Input[float64](g, "missing")
	x := Input[float64](g, "x")
	if x.Valid() {
		t.Error("declaration after a failure succeeded")
	}
	if !errors.Is(g.Err(), source.ErrMissingColumn) {
		t.Errorf("Err() = %v, want the first declaration error", g.Err())
	}
}

func TestGraph_EmptyFilterLabels(t *testing.T) {
	g := New(rows(4))
	f := Input[bool](g, "flag")
	Filter1(g, "", func(b bool) bool { return b }, f)
	Filter1(g, "", func(b bool) bool { return b }, f)
	report, err := Report(g).Value(context.Background())
	if err != nil {
		t.Fatalf("Report().Value() error = %v", err)
	}
	if got := len(report.Stages); got != 0 {
		t.Errorf("report has %d stages, want unlabeled filters left out", got)
	}
	if got, want := report.Initial, int64(4); got != want {
		t.Errorf("report.Initial = %d, want %d", got, want)
	}
}

func TestGraph_DeclareAfterRun(t *testing.T) {
	g := New(rows(4))
	x := Input[float64](g, "x")
	n := Count(g)
	if _, err := n.Value(context.Background()); err != nil {
		t.Fatalf("Count().Value() error = %v", err)
	}
	if y := Define1(g, "y", double, x); y.Valid() {
		t.Error("Define after execution returned a valid column")
	}
	if err := g.Err(); !errors.Is(err, ErrNotBuilding) {
		t.Errorf("Err() = %v, want %v", err, ErrNotBuilding)
	}
	if got, err := n.Value(context.Background()); err != nil || got != 4 {
		t.Errorf("Count().Value() = %v, %v; want the completed result 4, nil", got, err)
	}
}
