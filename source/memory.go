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

package source

import (
	"context"
	"reflect"

	"github.com/pkg/errors"
)

// Memory is a Source backed by in-memory column slices.
// Each column is a slice with one element per row.
type Memory struct {
	schema Schema
	cols   map[string]reflect.Value
	rows   int64
}

var _ Source = (*Memory)(nil)

// NewMemory returns an empty in-memory source.
func NewMemory() *Memory {
	return &Memory{cols: map[string]reflect.Value{}, rows: -1}
}

// Add appends a column. values must be a slice holding one element per row,
// for example []bool for a trigger flag or [][]float32 for a per-object
// momentum. Every column must have the same number of rows.
func (m *Memory) Add(name string, values any) error {
	rv := reflect.ValueOf(values)
	if rv.Kind() != reflect.Slice {
		return &SourceError{Column: name, Err: errors.Errorf("values must be a slice, got %T", values)}
	}
	if _, ok := m.cols[name]; ok {
		return &SourceError{Column: name, Err: errors.New("duplicate column")}
	}
	n := int64(rv.Len())
	if m.rows >= 0 && n != m.rows {
		return &SourceError{Column: name, Err: errors.Wrapf(ErrLength, "has %d rows, source has %d", n, m.rows)}
	}
	m.rows = n
	m.cols[name] = rv
	m.schema = m.schema.with(Column{Name: name, Type: rv.Type().Elem()})
	return nil
}

// MustAdd is Add for tests and fixtures; it panics on error.
func (m *Memory) MustAdd(name string, values any) *Memory {
	if err := m.Add(name, values); err != nil {
		panic(err)
	}
	return m
}

func (m *Memory) Schema() Schema {
	return m.schema
}

func (m *Memory) Entries() int64 {
	return max(m.rows, 0)
}

func (m *Memory) Scan(ctx context.Context, r Range, vars []Var, fn func(entry int64) error) error {
	if r.Min < 0 || r.Max > m.Entries() {
		return &SourceError{Err: errors.Errorf("range %v outside [0, %d)", r, m.Entries())}
	}
	type binding struct {
		dst reflect.Value
		col reflect.Value
	}
	bound := make([]binding, 0, len(vars))
	for _, v := range vars {
		if _, err := m.schema.checkVar(v); err != nil {
			return err
		}
		bound = append(bound, binding{dst: reflect.ValueOf(v.Value).Elem(), col: m.cols[v.Name]})
	}
	for entry := r.Min; entry < r.Max; entry++ {
		if entry&0x3ff == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		for _, b := range bound {
			b.dst.Set(b.col.Index(int(entry)))
		}
		if err := fn(entry); err != nil {
			return err
		}
	}
	return ctx.Err()
}
