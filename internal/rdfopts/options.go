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

package rdfopts

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"lostluck.dev/rdf-go/internal"
)

// Options is the common options type shared across rdf packages.
type Options interface {
	// RDFOptions is exported so related rdf packages can implement Options.
	RDFOptions(internal.NotForPublicUse)
}

// Struct is the combination of all options in struct form.
// This is efficient to pass down the call stack and to query.
type Struct struct {
	Name       string // The configured name of the graph. Otherwise it's "rdf".
	Workers    int    // Number of concurrent partition workers. 1 is sequential.
	Partitions int    // Number of source partitions. Zero means one per worker.

	// Limited is set when a row limit was requested. A MaxRows of zero in
	// limited mode means every row, but still read sequentially.
	Limited bool
	MaxRows int64

	Logger     *slog.Logger
	Registerer prometheus.Registerer
}

func (dst *Struct) RDFOptions(internal.NotForPublicUse) {}

// Join folds srcs into dst. Properties set in later options override
// earlier ones.
func (dst *Struct) Join(srcs ...Options) {
	for _, src := range srcs {
		switch src := src.(type) {
		case *Struct:
			if src.Name != "" {
				dst.Name = src.Name
			}
			if src.Workers != 0 {
				dst.Workers = src.Workers
			}
			if src.Partitions != 0 {
				dst.Partitions = src.Partitions
			}
			if src.Limited {
				dst.Limited = true
				dst.MaxRows = src.MaxRows
			}
			if src.Logger != nil {
				dst.Logger = src.Logger
			}
			if src.Registerer != nil {
				dst.Registerer = src.Registerer
			}
		}
	}
}
