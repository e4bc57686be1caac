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

package hist

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func mustH1D(t *testing.T, d Def) *H1D {
	t.Helper()
	h, err := NewH1D(d)
	if err != nil {
		t.Fatalf("NewH1D(%+v) = %v", d, err)
	}
	return h
}

var massDef = Def{Name: "h_dimuon_mass", Title: "Dimuon Invariant Mass", Bins: 75, Min: 0, Max: 150}

func TestFill(t *testing.T) {
	h := mustH1D(t, Def{Name: "h", Bins: 4, Min: 0, Max: 4})
	for _, x := range []float64{-1, 0, 0.5, 1, 3.999, 4, 10, math.NaN()} {
		h.Fill(x)
	}
	if d := cmp.Diff([]float64{2, 1, 0, 1}, h.Contents()); d != "" {
		t.Errorf("Contents diff (-want, +got):\n%v", d)
	}
	if got, want := h.Entries(), int64(8); got != want {
		t.Errorf("Entries() = %d, want %d", got, want)
	}
	if got, want := h.Underflow().Entries(), int64(1); got != want {
		t.Errorf("Underflow().Entries() = %d, want %d", got, want)
	}
	if got, want := h.Overflow().Entries(), int64(2); got != want {
		t.Errorf("Overflow().Entries() = %d, want %d", got, want)
	}
	if got, want := h.Integral(), 4.0; got != want {
		t.Errorf("Integral() = %v, want %v", got, want)
	}
	if got := h.HBook().XMean(); math.IsNaN(got) {
		t.Errorf("XMean() = NaN after a NaN fill")
	}
}

func TestFillW(t *testing.T) {
	h := mustH1D(t, Def{Name: "h", Bins: 2, Min: 0, Max: 2})
	h.FillW(0.5, 2)
	h.FillW(0.5, 3)
	h.FillW(math.NaN(), 4)
	bin := h.HBook().Binning.Bins[0]
	if got, want := [3]float64{float64(bin.Entries()), bin.SumW(), bin.SumW2()}, [3]float64{2, 5, 13}; got != want {
		t.Errorf("bin 0 (entries, SumW, SumW2) = %v, want %v", got, want)
	}
	hh := h.HBook()
	if got, want := [3]float64{float64(hh.Entries()), hh.SumW(), hh.SumW2()}, [3]float64{3, 9, 29}; got != want {
		t.Errorf("total (entries, SumW, SumW2) = %v, want %v", got, want)
	}
}

func TestDef_Validate(t *testing.T) {
	bad := []Def{
		{Bins: 1, Min: 0, Max: 1},
		{Name: "zero", Bins: 0, Min: 0, Max: 1},
		{Name: "empty", Bins: 10, Min: 1, Max: 1},
		{Name: "inf", Bins: 10, Min: 0, Max: math.Inf(1)},
	}
	for _, d := range bad {
		if _, err := NewH1D(d); !errors.Is(err, ErrDef) {
			t.Errorf("NewH1D(%+v) = %v, want ErrDef", d, err)
		}
	}
}

func TestMerge(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	values := make([]float64, 10000)
	for i := range values {
		values[i] = 91.2 + 10*rng.NormFloat64()
	}

	whole := mustH1D(t, massDef)
	for _, v := range values {
		whole.Fill(v)
	}

	for _, parts := range []int{1, 2, 3, 7, 16} {
		merged := mustH1D(t, massDef)
		chunk := (len(values) + parts - 1) / parts
		for start := 0; start < len(values); start += chunk {
			p := mustH1D(t, massDef)
			for _, v := range values[start:min(start+chunk, len(values))] {
				p.Fill(v)
			}
			if err := merged.Merge(p); err != nil {
				t.Fatalf("Merge() = %v", err)
			}
		}
		if got, want := merged.Entries(), whole.Entries(); got != want {
			t.Errorf("%d parts: Entries() = %d, want %d", parts, got, want)
		}
		if d := cmp.Diff(whole.Contents(), merged.Contents(), cmpopts.EquateApprox(0, 1e-9)); d != "" {
			t.Errorf("%d parts: Contents diff (-want, +got):\n%v", parts, d)
		}
	}
}

// Partial histograms with non-unit weights, out-of-range and NaN fills must
// merge into the same bins, outflows and totals as a single fill pass.
func TestMerge_Weighted(t *testing.T) {
	type fill struct{ x, w float64 }
	parts := [][]fill{
		{{1.5, 1}, {1.5, 3}, {-2, 0.5}},
		{{math.NaN(), 2}, {1.2, 0.25}, {9, 4}},
		{},
		{{3.5, 2}, {10, 1.5}},
	}
	d := Def{Name: "h_w", Bins: 4, Min: 0, Max: 4}

	whole := mustH1D(t, d)
	merged := mustH1D(t, d)
	for _, fs := range parts {
		p := mustH1D(t, d)
		for _, f := range fs {
			p.FillW(f.x, f.w)
			whole.FillW(f.x, f.w)
		}
		if err := merged.Merge(p); err != nil {
			t.Fatalf("Merge() = %v", err)
		}
	}

	type stats struct {
		Entries     int64
		SumW, SumW2 float64
	}
	summarize := func(h *H1D) []stats {
		hh := h.HBook()
		out := []stats{{hh.Entries(), hh.SumW(), hh.SumW2()}}
		for _, b := range hh.Binning.Bins {
			out = append(out, stats{b.Entries(), b.SumW(), b.SumW2()})
		}
		u, v := h.Underflow(), h.Overflow()
		return append(out, stats{u.Entries(), u.SumW(), u.SumW2()}, stats{v.Entries(), v.SumW(), v.SumW2()})
	}
	want := []stats{
		{8, 14.25, 36.5625},
		{0, 0, 0},
		{3, 4.25, 10.0625},
		{0, 0, 0},
		{1, 2, 4},
		{1, 0.5, 0.25},
		{2, 5.5, 18.25},
	}
	if diff := cmp.Diff(want, summarize(merged)); diff != "" {
		t.Errorf("merged stats diff (-want, +got):\n%v", diff)
	}
	if diff := cmp.Diff(summarize(whole), summarize(merged)); diff != "" {
		t.Errorf("merged differs from single pass (-want, +got):\n%v", diff)
	}
	if got, want := merged.HBook().Annotation()["name"], "h_w"; got != want {
		t.Errorf("merged name = %v, want %v", got, want)
	}
}

func TestMerge_Binning(t *testing.T) {
	a := mustH1D(t, massDef)
	b := mustH1D(t, Def{Name: "h_other", Bins: 40, Min: 0, Max: 200})
	if err := a.Merge(b); !errors.Is(err, ErrBinning) {
		t.Errorf("Merge(different binning) = %v, want ErrBinning", err)
	}
}

func TestHBook(t *testing.T) {
	h := mustH1D(t, Def{Name: "h_nJet", Title: "Number of Jets", Bins: 15, Min: 0, Max: 15})
	for _, n := range []float64{0, 1, 1, 2, 3, 3, 3, 14, 20, -1} {
		h.Fill(n)
	}
	hh := h.HBook()
	if got, want := hh.Entries(), h.Entries(); got != want {
		t.Errorf("hbook Entries() = %d, want %d", got, want)
	}
	for i := 0; i < h.Len(); i++ {
		x, y := hh.XY(i)
		if x != float64(i) || y != h.Content(i) {
			t.Errorf("hbook bin %d = (%v, %v), want (%v, %v)", i, x, y, float64(i), h.Content(i))
		}
	}
	ann := hh.Annotation()
	if ann["name"] != "h_nJet" || ann["title"] != "Number of Jets" {
		t.Errorf("hbook annotation = %v, want name and title", ann)
	}
}
