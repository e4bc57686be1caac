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

package output

import (
	"context"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/google/uuid"
	"lostluck.dev/rdf-go/cutflow"
	"lostluck.dev/rdf-go/hist"
)

// Summary is the machine readable record of a run.
type Summary struct {
	RunID          uuid.UUID   `json:"run_id"`
	Input          string      `json:"input"`
	Tree           string      `json:"tree,omitempty"`
	Started        time.Time   `json:"started"`
	ElapsedSeconds float64     `json:"elapsed_seconds"`
	Workers        int         `json:"workers"`
	RowLimit       int64       `json:"row_limit,omitempty"`
	Entries        int64       `json:"entries"`
	Selected       int64       `json:"selected"`
	Cutflow        Cutflow     `json:"cutflow"`
	Histograms     []Histogram `json:"histograms"`
}

// Cutflow is the JSON form of a cutflow report.
type Cutflow struct {
	Initial int64   `json:"initial"`
	Stages  []Stage `json:"stages"`
}

// Stage is one filter's counters.
type Stage struct {
	Label      string  `json:"label"`
	All        int64   `json:"all"`
	Pass       int64   `json:"pass"`
	Efficiency float64 `json:"efficiency_percent"`
}

// Histogram is the JSON form of a histogram.
type Histogram struct {
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	XLabel    string    `json:"x_label"`
	YLabel    string    `json:"y_label"`
	Bins      int       `json:"bins"`
	Min       float64   `json:"min"`
	Max       float64   `json:"max"`
	Entries   int64     `json:"entries"`
	Integral  float64   `json:"integral"`
	Contents  []float64 `json:"contents"`
	Underflow float64   `json:"underflow"`
	Overflow  float64   `json:"overflow"`
}

// NewCutflow converts r.
func NewCutflow(r *cutflow.Report) Cutflow {
	c := Cutflow{Initial: r.Initial, Stages: []Stage{}}
	for _, s := range r.Stages {
		c.Stages = append(c.Stages, Stage{Label: s.Label, All: s.All, Pass: s.Pass, Efficiency: s.Efficiency()})
	}
	return c
}

// NewHistogram converts h.
func NewHistogram(h *hist.H1D) Histogram {
	d := h.Def()
	return Histogram{
		Name:      d.Name,
		Title:     d.Title,
		XLabel:    d.XLabel,
		YLabel:    d.YLabel,
		Bins:      d.Bins,
		Min:       d.Min,
		Max:       d.Max,
		Entries:   h.Entries(),
		Integral:  h.Integral(),
		Contents:  h.Contents(),
		Underflow: h.Underflow().SumW(),
		Overflow:  h.Overflow().SumW(),
	}
}

// WriteSummary stores sum as indented JSON under key.
func (s *Store) WriteSummary(ctx context.Context, key string, sum *Summary) error {
	b, err := json.Marshal(sum, jsontext.WithIndent("  "))
	if err != nil {
		return &OutputError{Key: key, Err: err}
	}
	return s.WriteBytes(ctx, key, "application/json", append(b, '\n'))
}

// ReadSummary loads a summary stored under key.
func (s *Store) ReadSummary(ctx context.Context, key string) (*Summary, error) {
	b, err := s.bucket.ReadAll(ctx, key)
	if err != nil {
		return nil, &OutputError{Key: key, Err: err}
	}
	var sum Summary
	if err := json.Unmarshal(b, &sum); err != nil {
		return nil, &OutputError{Key: key, Err: err}
	}
	return &sum, nil
}
