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

// Derived columns are declared with Define1 through Define4, by the number
// of input columns. The function must be a pure function of its inputs: it is
// called independently for every row of every partition, possibly
// concurrently. A returned error aborts the run with a *ComputationError.
//
// Values are computed lazily, the first time a filter or action needs them
// for a row, and then reused for that row only.

// defineNode is a derived column.
type defineNode[O any] struct {
	name    string
	compile func(p *partition) func() (O, error)
}

func (n *defineNode[O]) nodeName() string { return n.name }

func (n *defineNode[O]) bind(p *partition) any {
	eval := n.compile(p)
	var (
		seen = int64(-1)
		v    O
		err  error
	)
	return getter[O](func() (O, error) {
		if seen != p.entry {
			seen = p.entry
			v, err = eval()
			if err != nil {
				err = wrapComputation(n.name, p.entry, err)
			}
		}
		return v, err
	})
}

func define[O any](g *Graph, name string, compile func(p *partition) func() (O, error), ins ...colRef) Column[O] {
	if !g.declarable(name) || !g.checkInputs(name, ins...) {
		return Column[O]{}
	}
	return addNode[O](g, &defineNode[O]{name: name, compile: compile})
}

// Define1 declares column name as fn of one input.
func Define1[A, O any](g *Graph, name string, fn func(A) (O, error), a Column[A]) Column[O] {
	return define(g, name, func(p *partition) func() (O, error) {
		ga := lookup(p, a)
		return func() (O, error) {
			va, err := ga()
			if err != nil {
				var zero O
				return zero, err
			}
			return fn(va)
		}
	}, a.ref())
}

// Define2 declares column name as fn of two inputs.
func Define2[A, B, O any](g *Graph, name string, fn func(A, B) (O, error), a Column[A], b Column[B]) Column[O] {
	return define(g, name, func(p *partition) func() (O, error) {
		ga, gb := lookup(p, a), lookup(p, b)
		return func() (O, error) {
			var zero O
			va, err := ga()
			if err != nil {
				return zero, err
			}
			vb, err := gb()
			if err != nil {
				return zero, err
			}
			return fn(va, vb)
		}
	}, a.ref(), b.ref())
}

// Define3 declares column name as fn of three inputs.
func Define3[A, B, C, O any](g *Graph, name string, fn func(A, B, C) (O, error), a Column[A], b Column[B], c Column[C]) Column[O] {
	return define(g, name, func(p *partition) func() (O, error) {
		ga, gb, gc := lookup(p, a), lookup(p, b), lookup(p, c)
		return func() (O, error) {
			var zero O
			va, err := ga()
			if err != nil {
				return zero, err
			}
			vb, err := gb()
			if err != nil {
				return zero, err
			}
			vc, err := gc()
			if err != nil {
				return zero, err
			}
			return fn(va, vb, vc)
		}
	}, a.ref(), b.ref(), c.ref())
}

// Define4 declares column name as fn of four inputs.
func Define4[A, B, C, D, O any](g *Graph, name string, fn func(A, B, C, D) (O, error), a Column[A], b Column[B], c Column[C], d Column[D]) Column[O] {
	return define(g, name, func(p *partition) func() (O, error) {
		ga, gb, gc, gd := lookup(p, a), lookup(p, b), lookup(p, c), lookup(p, d)
		return func() (O, error) {
			var zero O
			va, err := ga()
			if err != nil {
				return zero, err
			}
			vb, err := gb()
			if err != nil {
				return zero, err
			}
			vc, err := gc()
			if err != nil {
				return zero, err
			}
			vd, err := gd()
			if err != nil {
				return zero, err
			}
			return fn(va, vb, vc, vd)
		}
	}, a.ref(), b.ref(), c.ref(), d.ref())
}
