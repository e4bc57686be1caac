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
	"log/slog"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"lostluck.dev/rdf-go/internal/rdfopts"
)

// Options configure a Graph with specific features.
// New takes a variadic list of options, where properties
// set in later options override the value of previously set properties.
type Options = rdfopts.Options

// Name sets the name of the graph, typically to make it easier to
// refer to in logs and metrics.
func Name(name string) Options {
	return &rdfopts.Struct{
		Name: name,
	}
}

// Sequential executes the graph on the calling goroutine's worker, one
// partition after another. This is the default.
func Sequential() Options {
	return &rdfopts.Struct{
		Workers: 1,
	}
}

// Parallel executes partitions on n concurrent workers. A non-positive n
// uses GOMAXPROCS workers.
func Parallel(n int) Options {
	if n < 1 {
		n = runtime.GOMAXPROCS(0)
	}
	return &rdfopts.Struct{
		Workers: n,
	}
}

// Partitions sets how many row ranges the source is split into. By default
// there is one partition per worker.
func Partitions(k int) Options {
	return &rdfopts.Struct{
		Partitions: k,
	}
}

// Range limits execution to the first n rows of the source. A limited graph
// always runs as a single sequential partition, regardless of Parallel, so
// that bounded reads stay reproducible. As with an unbounded range end, an n
// of zero reads every row, but still sequentially.
func Range(n int64) Options {
	return &rdfopts.Struct{
		Limited: true,
		MaxRows: n,
	}
}

// Logger sets the logger used for execution progress. By default nothing
// is logged.
func Logger(l *slog.Logger) Options {
	return &rdfopts.Struct{
		Logger: l,
	}
}

// Registerer registers execution metrics with reg.
func Registerer(reg prometheus.Registerer) Options {
	return &rdfopts.Struct{
		Registerer: reg,
	}
}
