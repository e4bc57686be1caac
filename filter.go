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

// Filters are declared with Filter1 through Filter3, by the number of input
// columns. Filters run in declaration order. A row failing a filter is
// dropped: no later filter, derived column or action is evaluated for it.
//
// Every filter counts the rows that reached it and the rows that passed it.
// The label names the filter in cutflow reports and must be unique; an empty
// label is permitted any number of times, and such filters are counted but
// left out of reports.

// filterNode is a named predicate.
type filterNode struct {
	label   string
	compile func(p *partition) func() (bool, error)
}

func (n *filterNode) bind(p *partition) func() (bool, error) {
	eval := n.compile(p)
	return func() (bool, error) {
		ok, err := eval()
		if err != nil {
			return false, wrapComputation(n.label, p.entry, err)
		}
		return ok, nil
	}
}

func filter(g *Graph, label string, compile func(p *partition) func() (bool, error), ins ...colRef) {
	if !g.declarable(label) || !g.checkInputs(label, ins...) {
		return
	}
	if label != "" {
		if g.labels[label] {
			g.fail(&GraphError{Node: label, Err: ErrDuplicate})
			return
		}
		g.labels[label] = true
	}
	g.filters = append(g.filters, &filterNode{label: label, compile: compile})
}

// Filter1 declares a filter keeping rows where pred holds for one input.
func Filter1[A any](g *Graph, label string, pred func(A) bool, a Column[A]) {
	filter(g, label, func(p *partition) func() (bool, error) {
		ga := lookup(p, a)
		return func() (bool, error) {
			va, err := ga()
			if err != nil {
				return false, err
			}
			return pred(va), nil
		}
	}, a.ref())
}

// Filter2 declares a filter keeping rows where pred holds for two inputs.
func Filter2[A, B any](g *Graph, label string, pred func(A, B) bool, a Column[A], b Column[B]) {
	filter(g, label, func(p *partition) func() (bool, error) {
		ga, gb := lookup(p, a), lookup(p, b)
		return func() (bool, error) {
			va, err := ga()
			if err != nil {
				return false, err
			}
			vb, err := gb()
			if err != nil {
				return false, err
			}
			return pred(va, vb), nil
		}
	}, a.ref(), b.ref())
}

// Filter3 declares a filter keeping rows where pred holds for three inputs.
func Filter3[A, B, C any](g *Graph, label string, pred func(A, B, C) bool, a Column[A], b Column[B], c Column[C]) {
	filter(g, label, func(p *partition) func() (bool, error) {
		ga, gb, gc := lookup(p, a), lookup(p, b), lookup(p, c)
		return func() (bool, error) {
			va, err := ga()
			if err != nil {
				return false, err
			}
			vb, err := gb()
			if err != nil {
				return false, err
			}
			vc, err := gc()
			if err != nil {
				return false, err
			}
			return pred(va, vb, vc), nil
		}
	}, a.ref(), b.ref(), c.ref())
}
