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
	"errors"
	"fmt"
)

var (
	// ErrDuplicate reports a reused column name or filter label.
	ErrDuplicate = errors.New("already declared")
	// ErrUndeclared reports an input column that was not declared on the graph.
	ErrUndeclared = errors.New("input not declared on this graph")
	// ErrType reports an input column declared with the wrong Go type.
	ErrType = errors.New("column type mismatch")
	// ErrNotBuilding reports a declaration after execution started.
	ErrNotBuilding = errors.New("graph is immutable once execution starts")
)

// GraphError reports an invalid graph declaration. It is detected while the
// graph is built, before any row is processed.
type GraphError struct {
	Node string // The column name or filter label being declared.
	Err  error
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("rdf: declaring %q: %v", e.Node, e.Err)
}

func (e *GraphError) Unwrap() error {
	return e.Err
}

// ComputationError reports a Define or Filter function failing on a row,
// for example on a malformed event whose arrays are not index-aligned.
// It aborts the whole run.
type ComputationError struct {
	Node  string // The column name or filter label being evaluated.
	Entry int64  // The source row.
	Err   error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("rdf: evaluating %q at entry %d: %v", e.Node, e.Entry, e.Err)
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}

// wrapComputation attaches node context to err unless an upstream node
// already did.
func wrapComputation(node string, entry int64, err error) error {
	var cerr *ComputationError
	if errors.As(err, &cerr) {
		return err
	}
	return &ComputationError{Node: node, Entry: entry, Err: err}
}
