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
	"fmt"
	"reflect"
	"strings"
)

// Column describes a single named column. Type is the Go type of one row's
// value, for example float32 for a scalar or []float32 for a per-object array.
type Column struct {
	Name string
	Type reflect.Type
}

// IsArray reports whether the column holds a variable-length array per row.
func (c Column) IsArray() bool {
	return c.Type.Kind() == reflect.Slice
}

// Elem returns the type of a single value, or of a single array entry.
func (c Column) Elem() reflect.Type {
	if c.IsArray() {
		return c.Type.Elem()
	}
	return c.Type
}

func (c Column) String() string {
	return fmt.Sprintf("%s:%v", c.Name, c.Type)
}

// Schema is an ordered set of uniquely named columns.
type Schema struct {
	cols      []Column
	nameToNum map[string]int
}

// NewSchema builds a schema from cols. A repeated name replaces the earlier
// column's type in place.
func NewSchema(cols ...Column) Schema {
	s := Schema{nameToNum: make(map[string]int, len(cols))}
	for _, c := range cols {
		s = s.with(c)
	}
	return s
}

func (s Schema) with(c Column) Schema {
	if s.nameToNum == nil {
		s.nameToNum = map[string]int{}
	}
	if i, ok := s.nameToNum[c.Name]; ok {
		s.cols[i] = c
		return s
	}
	s.nameToNum[c.Name] = len(s.cols)
	s.cols = append(s.cols, c)
	return s
}

// Lookup returns the named column.
func (s Schema) Lookup(name string) (Column, bool) {
	i, ok := s.nameToNum[name]
	if !ok {
		return Column{}, false
	}
	return s.cols[i], true
}

// Len returns the number of columns.
func (s Schema) Len() int {
	return len(s.cols)
}

// Columns returns a copy of the columns in declaration order.
func (s Schema) Columns() []Column {
	return append([]Column(nil), s.cols...)
}

// Names returns the column names in declaration order.
func (s Schema) Names() []string {
	names := make([]string, len(s.cols))
	for i, c := range s.cols {
		names[i] = c.Name
	}
	return names
}

func (s Schema) String() string {
	parts := make([]string, len(s.cols))
	for i, c := range s.cols {
		parts[i] = c.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Check validates that every var binds a pointer to its column's type.
func (s Schema) Check(vars []Var) error {
	for _, v := range vars {
		if _, err := s.checkVar(v); err != nil {
			return err
		}
	}
	return nil
}

// checkVar validates that v binds a pointer to the named column's type.
func (s Schema) checkVar(v Var) (Column, error) {
	c, ok := s.Lookup(v.Name)
	if !ok {
		return Column{}, &SourceError{Column: v.Name, Err: ErrMissingColumn}
	}
	if got, want := reflect.TypeOf(v.Value), reflect.PointerTo(c.Type); got != want {
		return Column{}, &SourceError{Column: v.Name, Err: fmt.Errorf("%w: bound %v, want %v", ErrTypeMismatch, got, want)}
	}
	return c, nil
}
