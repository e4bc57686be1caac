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

// Package cutflow tracks how many rows survive each stage of a selection.
//
// A Cutflow holds one Stage per filter in declaration order. Each stage
// counts the rows that reached it and the rows that passed it; cutflows of
// independent partitions merge by summing stage counters.
package cutflow

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrStages reports a merge of cutflows with different stage lists.
var ErrStages = errors.New("cutflow: mismatched stages")

// Stage counts the rows that reached and passed one filter.
type Stage struct {
	Label string
	All   int64 // Rows that reached the filter.
	Pass  int64 // Rows that passed the filter.
}

// Efficiency returns Pass/All as a percentage, or zero when nothing
// reached the stage.
func (s Stage) Efficiency() float64 {
	if s.All == 0 {
		return 0
	}
	return 100 * float64(s.Pass) / float64(s.All)
}

// Cutflow is an ordered list of filter stages plus the number of rows
// entering the first one.
type Cutflow struct {
	Initial int64
	Stages  []Stage
}

// New returns an empty cutflow with one stage per label. An empty label
// marks a filter that is counted but left out of reports.
func New(labels ...string) *Cutflow {
	c := &Cutflow{Stages: make([]Stage, len(labels))}
	for i, l := range labels {
		c.Stages[i].Label = l
	}
	return c
}

// Enter records a row entering the selection.
func (c *Cutflow) Enter() {
	c.Initial++
}

// Observe records a row reaching stage i, and whether it passed.
func (c *Cutflow) Observe(i int, passed bool) {
	c.Stages[i].All++
	if passed {
		c.Stages[i].Pass++
	}
}

// Merge adds o's counters into c. Both must have the same stages.
func (c *Cutflow) Merge(o *Cutflow) error {
	if len(c.Stages) != len(o.Stages) {
		return fmt.Errorf("%w: %d stages vs %d", ErrStages, len(c.Stages), len(o.Stages))
	}
	for i := range c.Stages {
		if c.Stages[i].Label != o.Stages[i].Label {
			return fmt.Errorf("%w: stage %d is %q vs %q", ErrStages, i, c.Stages[i].Label, o.Stages[i].Label)
		}
	}
	c.Initial += o.Initial
	for i := range c.Stages {
		c.Stages[i].All += o.Stages[i].All
		c.Stages[i].Pass += o.Stages[i].Pass
	}
	return nil
}

// Check verifies the counters are consistent: no stage passes more rows than
// reach it, and every stage is reached by exactly the rows passing the one
// before.
func (c *Cutflow) Check() error {
	prev := c.Initial
	for i, s := range c.Stages {
		if s.All != prev {
			return fmt.Errorf("cutflow: stage %d %q reached by %d rows, previous stage passed %d", i, s.Label, s.All, prev)
		}
		if s.Pass > s.All {
			return fmt.Errorf("cutflow: stage %d %q passed %d of %d rows", i, s.Label, s.Pass, s.All)
		}
		prev = s.Pass
	}
	return nil
}

// Report returns the labeled stages.
func (c *Cutflow) Report() *Report {
	r := &Report{Initial: c.Initial}
	for _, s := range c.Stages {
		if s.Label != "" {
			r.Stages = append(r.Stages, s)
		}
	}
	return r
}

// Report is the read only diagnostic view of a cutflow.
type Report struct {
	Initial int64
	Stages  []Stage
}

// Lookup returns the stage with the given label.
func (r *Report) Lookup(label string) (Stage, bool) {
	for _, s := range r.Stages {
		if s.Label == label {
			return s, true
		}
	}
	return Stage{}, false
}

// Final returns the number of rows passing the last stage, or the initial
// count when there are no stages.
func (r *Report) Final() int64 {
	if len(r.Stages) == 0 {
		return r.Initial
	}
	return r.Stages[len(r.Stages)-1].Pass
}

// WriteTo prints the report: the initial row count, then one line per stage
// with its pass and reach counts, its efficiency and the cumulative
// efficiency relative to the initial count.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	p := message.NewPrinter(language.English)
	width := 0
	for _, s := range r.Stages {
		width = max(width, len(s.Label))
	}
	var total int64
	pad := func(label string) string {
		return label + strings.Repeat(" ", max(0, width-len(label)))
	}
	n, err := p.Fprintf(w, "%s: %d\n", pad("Initial"), r.Initial)
	total += int64(n)
	if err != nil {
		return total, err
	}
	for _, s := range r.Stages {
		cumulative := 0.0
		if r.Initial > 0 {
			cumulative = 100 * float64(s.Pass) / float64(r.Initial)
		}
		n, err := p.Fprintf(w, "%s: pass=%-12d all=%-12d -- eff=%.2f %% cumulative eff=%.2f %%\n",
			pad(s.Label), s.Pass, s.All, s.Efficiency(), cumulative)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
