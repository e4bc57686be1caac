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

// Package rdf is a columnar dataflow engine for event selection. It exists to
// express a chain of derived columns, filters and histograms over the rows of
// a source, and to run that chain over partitions of the source in parallel.
//
// Graphs are built from typed column handles, so Go typechecks the chain of
// Define, Filter and action calls when it is declared:
//
//	g := rdf.New(src, rdf.Parallel(4))
//	pt := rdf.Input[[]float32](g, "Muon_pt")
//	n := rdf.Define1(g, "nHard", countAbove20, pt)
//	rdf.Filter1(g, "two hard muons", func(n int) bool { return n == 2 }, n)
//	h := rdf.Histo1D(g, hist.Def{Name: "h_n", Bins: 10, Max: 10}, n)
//	count := rdf.Count(g)
//
// Nothing runs until a terminal result is read. The first Value call
// executes the graph exactly once and fills every booked result together;
// later calls return the cached outcome.
//
// Things worth knowing.
//   - Derived columns are lazy and memoized per row.
//   - Filters short-circuit in declaration order and feed the cutflow Report.
//   - Actions see only rows passing the filters declared before them.
//   - Parallel results equal sequential ones, up to floating point
//     reassociation of histogram weight sums.
//   - Range limits force a single sequential partition.
package rdf
