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
	"context"

	"golang.org/x/exp/constraints"
	"lostluck.dev/rdf-go/cutflow"
	"lostluck.dev/rdf-go/hist"
)

// Result is the lazily computed outcome of a terminal action. Reading its
// Value executes the graph if it has not run yet.
type Result[T any] struct {
	g   *Graph
	val T
}

// Value executes the graph if needed and returns the action's result.
// After a failed run, every Value returns the run's error.
func (r *Result[T]) Value(ctx context.Context) (T, error) {
	if err := r.g.Run(ctx); err != nil {
		var zero T
		return zero, err
	}
	return r.val, nil
}

// action is booked on a graph and accumulated per partition.
type action interface {
	// stage returns the number of filters declared before the action was
	// booked. Only rows passing all of them are observed.
	stage() int
	// newPartial returns partition local state for p.
	newPartial(p *partition) partial
	// finish folds the partials, in partition order, into the result.
	finish(parts []partial) error
}

type partial interface {
	observe() error
}

// book registers a, returning false if the graph cannot accept it.
func (g *Graph) book(name string, a action, ins ...colRef) bool {
	if !g.declarable(name) || !g.checkInputs(name, ins...) {
		return false
	}
	g.actions = append(g.actions, a)
	return true
}

// Number is any integer or floating point type.
type Number interface {
	constraints.Integer | constraints.Float
}

// Histo1D books a histogram of col over rows passing every filter declared
// so far.
func Histo1D[T Number](g *Graph, def hist.Def, col Column[T]) *Result[*hist.H1D] {
	r := &Result[*hist.H1D]{g: g}
	if err := def.Validate(); err != nil {
		if g.declarable(def.Name) {
			g.fail(&GraphError{Node: def.Name, Err: err})
		}
		return r
	}
	g.book(def.Name, &histoAction[T]{def: def, col: col, after: len(g.filters), result: r}, col.ref())
	return r
}

type histoAction[T Number] struct {
	def    hist.Def
	col    Column[T]
	after  int
	result *Result[*hist.H1D]
}

func (a *histoAction[T]) stage() int { return a.after }

func (a *histoAction[T]) newPartial(p *partition) partial {
	h, _ := hist.NewH1D(a.def) // Validated when booked.
	return &histoPartial[T]{h: h, get: lookup(p, a.col)}
}

func (a *histoAction[T]) finish(parts []partial) error {
	total, err := hist.NewH1D(a.def)
	if err != nil {
		return err
	}
	for _, p := range parts {
		if err := total.Merge(p.(*histoPartial[T]).h); err != nil {
			return err
		}
	}
	a.result.val = total
	return nil
}

type histoPartial[T Number] struct {
	h   *hist.H1D
	get getter[T]
}

func (p *histoPartial[T]) observe() error {
	v, err := p.get()
	if err != nil {
		return err
	}
	p.h.Fill(float64(v))
	return nil
}

// Count books a count of rows passing every filter declared so far.
func Count(g *Graph) *Result[int64] {
	r := &Result[int64]{g: g}
	g.book("Count", &countAction{after: len(g.filters), result: r})
	return r
}

type countAction struct {
	after  int
	result *Result[int64]
}

func (a *countAction) stage() int { return a.after }

func (a *countAction) newPartial(*partition) partial { return new(countPartial) }

func (a *countAction) finish(parts []partial) error {
	var n int64
	for _, p := range parts {
		n += int64(*p.(*countPartial))
	}
	a.result.val = n
	return nil
}

type countPartial int64

func (p *countPartial) observe() error {
	*p++
	return nil
}

// Take books the collection of col's values for rows passing every filter
// declared so far, in source row order.
//
// Values are not copied. Array values read directly from a source may share
// memory the source reuses for later rows, so Take derived columns instead.
func Take[T any](g *Graph, col Column[T]) *Result[[]T] {
	r := &Result[[]T]{g: g}
	g.book("Take("+col.name+")", &takeAction[T]{col: col, after: len(g.filters), result: r}, col.ref())
	return r
}

type takeAction[T any] struct {
	col    Column[T]
	after  int
	result *Result[[]T]
}

func (a *takeAction[T]) stage() int { return a.after }

func (a *takeAction[T]) newPartial(p *partition) partial {
	return &takePartial[T]{get: lookup(p, a.col)}
}

func (a *takeAction[T]) finish(parts []partial) error {
	var out []T
	for _, p := range parts {
		out = append(out, p.(*takePartial[T]).vals...)
	}
	a.result.val = out
	return nil
}

type takePartial[T any] struct {
	get  getter[T]
	vals []T
}

func (p *takePartial[T]) observe() error {
	v, err := p.get()
	if err != nil {
		return err
	}
	p.vals = append(p.vals, v)
	return nil
}

// Report books the cutflow report of every labeled filter of the graph.
func Report(g *Graph) *Result[*cutflow.Report] {
	r := &Result[*cutflow.Report]{g: g}
	if g.declarable("Report") {
		g.reports = append(g.reports, r)
	}
	return r
}
