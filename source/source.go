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

// Package source provides columnar event sources for rdf graphs.
//
// A Source exposes a fixed Schema of named columns over a row range. Columns
// hold one value per row: scalars such as trigger flags or object counts, or
// variable-length arrays holding one entry per object in the event.
// Sources are read by binding typed pointers to column names, and are
// partitioned into disjoint contiguous Ranges for parallel scans.
package source

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// Source is a columnar event store.
type Source interface {
	// Schema returns the columns this source provides.
	Schema() Schema
	// Entries returns the number of rows in the source.
	Entries() int64
	// Scan reads the rows in r in order. For each row, every Var's Value is
	// set to that row's value of the named column, and then fn is called
	// with the row's entry number. Scan stops at the first error returned by
	// fn, or when ctx is done.
	//
	// Values bound to array columns may alias source memory and must be
	// treated as read only.
	Scan(ctx context.Context, r Range, vars []Var, fn func(entry int64) error) error
}

// Var binds a column to a pointer of the column's Go type.
type Var struct {
	Name  string
	Value any
}

// Range is a half open range of rows, [Min, Max).
type Range struct {
	Min, Max int64
}

// Len returns the number of rows in the range.
func (r Range) Len() int64 {
	return max(0, r.Max-r.Min)
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Min, r.Max)
}

// Split divides r into k contiguous, non-overlapping ranges whose union is r.
// Fewer than k ranges are returned when r holds fewer than k rows, and none
// when r is empty. Earlier ranges receive the remainder rows, one each.
func Split(r Range, k int) []Range {
	n := r.Len()
	if n == 0 {
		return nil
	}
	k = int(min(int64(max(k, 1)), n))
	base, rem := n/int64(k), n%int64(k)
	out := make([]Range, 0, k)
	start := r.Min
	for i := range int64(k) {
		size := base
		if i < rem {
			size++
		}
		out = append(out, Range{Min: start, Max: start + size})
		start += size
	}
	return out
}

// Head returns a view of src exposing only its first n rows.
func Head(src Source, n int64) Source {
	return &head{src: src, n: max(0, n)}
}

type head struct {
	src Source
	n   int64
}

func (h *head) Schema() Schema { return h.src.Schema() }

func (h *head) Entries() int64 { return min(h.n, h.src.Entries()) }

func (h *head) Scan(ctx context.Context, r Range, vars []Var, fn func(entry int64) error) error {
	r.Max = min(r.Max, h.Entries())
	if r.Len() == 0 {
		return nil
	}
	return h.src.Scan(ctx, r, vars, fn)
}

// Require checks that every named column is present in src's schema.
func Require(src Source, names ...string) error {
	s := src.Schema()
	for _, name := range names {
		if _, ok := s.Lookup(name); !ok {
			return &SourceError{Column: name, Err: ErrMissingColumn}
		}
	}
	return nil
}

var (
	// ErrMissingColumn reports a required column absent from a source.
	ErrMissingColumn = errors.New("missing required column")
	// ErrTypeMismatch reports a binding whose type differs from the column's.
	ErrTypeMismatch = errors.New("column type mismatch")
	// ErrLength reports a column whose row count disagrees with its source.
	ErrLength = errors.New("column length mismatch")
)

// SourceError reports a failure to open or read a columnar store.
type SourceError struct {
	Path   string // The backing store, when known.
	Column string // The offending column, when known.
	Err    error
}

func (e *SourceError) Error() string {
	msg := "source"
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Column != "" {
		msg += fmt.Sprintf(" column %q", e.Column)
	}
	return msg + ": " + e.Err.Error()
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
