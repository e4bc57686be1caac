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
	"bytes"
	"context"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rhist"
	"lostluck.dev/rdf-go/cutflow"
	"lostluck.dev/rdf-go/hist"
)

// Default artifact keys.
const (
	CutflowKey = "cutflow.txt"
	SummaryKey = "summary.json"
	MetricsKey = "metrics.prom"
)

// WriteHistograms stores hists as a ROOT file under key, one TH1D per
// histogram keyed by its name.
func (s *Store) WriteHistograms(ctx context.Context, key string, hists []*hist.H1D) error {
	path, cleanup, err := tempFile("rdf-*.root")
	if err != nil {
		return &OutputError{Key: key, Err: err}
	}
	defer cleanup()

	if err := writeROOT(path, hists); err != nil {
		return &OutputError{Key: key, Err: err}
	}
	return s.writeFile(ctx, key, "application/octet-stream", path)
}

func writeROOT(path string, hists []*hist.H1D) error {
	f, err := groot.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating ROOT file")
	}
	for _, h := range hists {
		if err := f.Put(h.Name(), rhist.NewH1DFrom(h.HBook())); err != nil {
			f.Close()
			return errors.Wrapf(err, "storing %s", h.Name())
		}
	}
	return errors.Wrap(f.Close(), "closing ROOT file")
}

// WriteCutflow stores the text rendering of r under key.
func (s *Store) WriteCutflow(ctx context.Context, key string, r *cutflow.Report) error {
	return s.Write(ctx, key, "text/plain; charset=utf-8", r)
}

// WriteMetrics stores every metric gathered from g under key, in the
// Prometheus text exposition format read by the node exporter's textfile
// collector.
func (s *Store) WriteMetrics(ctx context.Context, key string, g prometheus.Gatherer) error {
	path, cleanup, err := tempFile("rdf-*.prom")
	if err != nil {
		return &OutputError{Key: key, Err: err}
	}
	defer cleanup()

	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return &OutputError{Key: key, Err: errors.Wrap(err, "gathering metrics")}
	}
	return s.writeFile(ctx, key, "text/plain; version=0.0.4", path)
}

// WriteBytes stores b under key.
func (s *Store) WriteBytes(ctx context.Context, key, contentType string, b []byte) error {
	return s.Write(ctx, key, contentType, bytes.NewBuffer(b))
}
