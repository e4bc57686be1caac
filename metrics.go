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
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"lostluck.dev/rdf-go/cutflow"
)

// metrics are recorded once per run, after partitions are merged.
type metrics struct {
	rows       prometheus.Counter
	partitions prometheus.Counter
	passed     *prometheus.CounterVec
	duration   prometheus.Histogram
}

// newMetrics registers the graph's metrics with reg, which may be nil.
// Graphs sharing a name and a registry share their metrics.
func newMetrics(reg prometheus.Registerer, graph string) (*metrics, error) {
	labels := prometheus.Labels{"graph": graph}
	r := registrar{reg: reg}
	m := &metrics{
		rows: register(&r, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "rdf",
			Name:        "rows_read_total",
			Help:        "Rows read from the source.",
			ConstLabels: labels,
		})),
		partitions: register(&r, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "rdf",
			Name:        "partitions_total",
			Help:        "Source partitions processed.",
			ConstLabels: labels,
		})),
		passed: register(&r, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "rdf",
			Name:        "filter_passed_total",
			Help:        "Rows passing each labeled filter.",
			ConstLabels: labels,
		}, []string{"filter"})),
		duration: register(&r, prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "rdf",
			Name:        "run_duration_seconds",
			Help:        "Wall time of graph executions.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.01, 4, 10),
		})),
	}
	if r.err != nil {
		return nil, fmt.Errorf("rdf: registering metrics for graph %q: %w", graph, r.err)
	}
	return m, nil
}

// registrar keeps the first registration failure.
type registrar struct {
	reg prometheus.Registerer
	err error
}

// register registers c, returning the collector already registered in its
// place if there is one.
func register[C prometheus.Collector](r *registrar, c C) C {
	if r.reg == nil || r.err != nil {
		return c
	}
	err := r.reg.Register(c)
	if err == nil {
		return c
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing
		}
	}
	r.err = err
	return c
}

func (m *metrics) observe(flow *cutflow.Cutflow, partitions int, elapsed time.Duration) {
	m.rows.Add(float64(flow.Initial))
	m.partitions.Add(float64(partitions))
	for _, s := range flow.Stages {
		if s.Label != "" {
			m.passed.WithLabelValues(s.Label).Add(float64(s.Pass))
		}
	}
	m.duration.Observe(elapsed.Seconds())
}
