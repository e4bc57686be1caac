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

// Package hist provides fixed-binning one-dimensional histograms that merge
// associatively, so partial histograms filled by independent workers can be
// folded into one result. Storage is a go-hep hbook histogram.
package hist

import (
	"errors"
	"fmt"
	"math"

	"go-hep.org/x/hep/hbook"
)

var (
	// ErrBinning reports a merge of histograms with different binning.
	ErrBinning = errors.New("hist: incompatible binning")
	// ErrDef reports an unusable histogram definition.
	ErrDef = errors.New("hist: invalid definition")
)

// Def defines a histogram's identity, labels and binning.
type Def struct {
	Name   string
	Title  string
	XLabel string
	YLabel string

	Bins     int     // Number of equal width bins.
	Min, Max float64 // Axis range, [Min, Max).
}

// Validate reports whether d describes a usable axis.
func (d Def) Validate() error {
	switch {
	case d.Name == "":
		return fmt.Errorf("%w: empty name", ErrDef)
	case d.Bins <= 0:
		return fmt.Errorf("%w %q: bin count %d must be positive", ErrDef, d.Name, d.Bins)
	case math.IsNaN(d.Min) || math.IsInf(d.Min, 0) || math.IsNaN(d.Max) || math.IsInf(d.Max, 0):
		return fmt.Errorf("%w %q: range [%v, %v) must be finite", ErrDef, d.Name, d.Min, d.Max)
	case d.Max <= d.Min:
		return fmt.Errorf("%w %q: range [%v, %v) is empty", ErrDef, d.Name, d.Min, d.Max)
	}
	return nil
}

func (d Def) sameBinning(o Def) bool {
	return d.Bins == o.Bins && d.Min == o.Min && d.Max == o.Max
}

// H1D is a one-dimensional histogram with equal width bins.
//
// Fills outside the axis land in the underflow and overflow bins, which are
// persisted but are not part of Integral. A NaN fill counts as an entry and
// adds to the total weight, but lands in no bin.
type H1D struct {
	def Def
	h   *hbook.H1D
}

// NewH1D returns an empty histogram.
func NewH1D(d Def) (*H1D, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	h := &H1D{def: d, h: hbook.NewH1D(d.Bins, d.Min, d.Max)}
	h.annotate()
	return h, nil
}

func (h *H1D) annotate() {
	ann := h.h.Annotation()
	ann["name"] = h.def.Name
	ann["title"] = h.def.Title
}

// Def returns the histogram's definition.
func (h *H1D) Def() Def { return h.def }

// Name returns the histogram's name.
func (h *H1D) Name() string { return h.def.Name }

// HBook returns the underlying go-hep histogram, for persistence and
// plotting. It is shared, not copied.
func (h *H1D) HBook() *hbook.H1D { return h.h }

// Len returns the number of in-range bins.
func (h *H1D) Len() int { return h.h.Len() }

// Entries returns the total number of fills.
func (h *H1D) Entries() int64 { return h.h.Entries() }

// Fill adds x with unit weight.
func (h *H1D) Fill(x float64) { h.FillW(x, 1) }

// FillW adds x with weight w.
func (h *H1D) FillW(x, w float64) {
	if math.IsNaN(x) {
		// hbook would bin NaN as overflow and poison the x moments.
		d := &h.h.Binning.Dist.Dist
		d.N++
		d.SumW += w
		d.SumW2 += w * w
		return
	}
	h.h.Fill(x, w)
}

// Merge adds the contents of o into h. Both must have identical binning.
func (h *H1D) Merge(o *H1D) error {
	if !h.def.sameBinning(o.def) {
		return fmt.Errorf("%w: %q has %d bins in [%v, %v), %q has %d bins in [%v, %v)", ErrBinning,
			h.def.Name, h.def.Bins, h.def.Min, h.def.Max, o.def.Name, o.def.Bins, o.def.Min, o.def.Max)
	}
	h.h = hbook.AddH1D(h.h, o.h)
	h.annotate()
	return nil
}

// Content returns the sum of weights in the i-th bin.
func (h *H1D) Content(i int) float64 { return h.h.Value(i) }

// Contents returns the sum of weights of every in-range bin.
func (h *H1D) Contents() []float64 {
	out := make([]float64, h.h.Len())
	for i := range out {
		out[i] = h.h.Value(i)
	}
	return out
}

// Underflow returns the distribution of fills below Min.
func (h *H1D) Underflow() *hbook.Dist1D { return h.h.Binning.Underflow() }

// Overflow returns the distribution of fills at or above Max.
func (h *H1D) Overflow() *hbook.Dist1D { return h.h.Binning.Overflow() }

// Integral returns the sum of weights over in-range bins.
func (h *H1D) Integral() float64 { return h.h.Integral(h.def.Min, h.def.Max) }
