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

// Package vecops has elementwise operations over per-object array columns.
//
// Comparisons produce boolean masks index-aligned to their input. Operations
// combining several arrays require them to be the same length, and report
// ErrLengthMismatch otherwise: arrays of one object collection within one
// event always share a length, so a mismatch means a malformed event.
package vecops

import (
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// Number is any integer or floating point type.
type Number interface {
	constraints.Integer | constraints.Float
}

// Signed is any type with a meaningful absolute value.
type Signed interface {
	constraints.Signed | constraints.Float
}

var (
	// ErrLengthMismatch reports arrays that should be index-aligned but are not.
	ErrLengthMismatch = errors.New("vecops: length mismatch")
	// ErrIndex reports an index outside an array.
	ErrIndex = errors.New("vecops: index out of range")
)

// Greater returns the mask v[i] > x.
func Greater[T Number](v []T, x T) []bool {
	out := make([]bool, len(v))
	for i, e := range v {
		out[i] = e > x
	}
	return out
}

// Less returns the mask v[i] < x.
func Less[T Number](v []T, x T) []bool {
	out := make([]bool, len(v))
	for i, e := range v {
		out[i] = e < x
	}
	return out
}

// Abs returns the elementwise absolute value of v.
func Abs[T Signed](v []T) []T {
	out := make([]T, len(v))
	for i, e := range v {
		if e < 0 {
			e = -e
		}
		out[i] = e
	}
	return out
}

// And returns the elementwise conjunction of masks.
func And(masks ...[]bool) ([]bool, error) {
	if len(masks) == 0 {
		return nil, nil
	}
	out := append([]bool(nil), masks[0]...)
	for j, m := range masks[1:] {
		if len(m) != len(out) {
			return nil, errors.Wrapf(ErrLengthMismatch, "mask %d has %d entries, want %d", j+1, len(m), len(out))
		}
		for i, b := range m {
			out[i] = out[i] && b
		}
	}
	return out, nil
}

// Take returns the elements of v whose mask entry is true, in their
// original order.
func Take[T any](v []T, mask []bool) ([]T, error) {
	if len(v) != len(mask) {
		return nil, errors.Wrapf(ErrLengthMismatch, "mask has %d entries, array has %d", len(mask), len(v))
	}
	out := make([]T, 0, CountTrue(mask))
	for i, keep := range mask {
		if keep {
			out = append(out, v[i])
		}
	}
	return out, nil
}

// CountTrue returns the number of true entries in mask.
func CountTrue(mask []bool) int {
	var n int
	for _, b := range mask {
		if b {
			n++
		}
	}
	return n
}

// At returns v[i], or ErrIndex.
func At[T any](v []T, i int) (T, error) {
	if i < 0 || i >= len(v) {
		var zero T
		return zero, errors.Wrap(ErrIndex, fmt.Sprintf("index %d, length %d", i, len(v)))
	}
	return v[i], nil
}
