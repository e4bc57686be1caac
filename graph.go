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
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"lostluck.dev/rdf-go/cutflow"
	"lostluck.dev/rdf-go/internal/rdfopts"
	"lostluck.dev/rdf-go/source"
)

type state int

const (
	stateBuilt state = iota
	stateRunning
	stateCompleted
	stateFailed
)

func (s state) String() string {
	switch s {
	case stateBuilt:
		return "Built"
	case stateRunning:
		return "Running"
	case stateCompleted:
		return "Completed"
	case stateFailed:
		return "Failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type nodeIndex int

// node is a column of the graph: a source input or a derived column.
type node interface {
	nodeName() string
	// bind prepares the node for evaluation within a partition, returning
	// a getter[T] of the node's type.
	bind(p *partition) any
}

// Graph is a dataflow graph of columns, filters and actions over a source.
//
// A Graph is declared once, then executed by its first terminal action.
// Declaration errors are sticky: the first one is kept and reported by Err
// and by every terminal action, and later declarations are ignored.
// Declaring is not safe for concurrent use; terminal actions are.
type Graph struct {
	src    source.Source
	opts   rdfopts.Struct
	logger *slog.Logger

	mu    sync.Mutex
	state state
	err   error // First declaration error.

	nodes   []node
	names   map[string]nodeIndex
	filters []*filterNode
	labels  map[string]bool
	actions []action
	reports []*Result[*cutflow.Report]

	runErr error
	flow   *cutflow.Cutflow
}

// New returns an empty graph reading from src.
func New(src source.Source, opts ...Options) *Graph {
	var opt rdfopts.Struct
	opt.Join(opts...)
	if opt.Name == "" {
		opt.Name = "rdf"
	}
	logger := opt.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Graph{
		src:    src,
		opts:   opt,
		logger: logger.With(slog.String("graph", opt.Name)),
		names:  map[string]nodeIndex{},
		labels: map[string]bool{},
	}
}

// Err returns the first declaration error, if any.
func (g *Graph) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}

// Source returns the graph's source.
func (g *Graph) Source() source.Source {
	return g.src
}

// declarable reports whether a declaration of name may proceed, recording
// an error when the graph is failed or no longer being built.
func (g *Graph) declarable(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != stateBuilt {
		if g.err == nil {
			g.err = &GraphError{Node: name, Err: ErrNotBuilding}
		}
		return false
	}
	return g.err == nil
}

// fail records err as the graph's declaration error, unless one is set.
func (g *Graph) fail(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err == nil {
		g.err = err
	}
}

func (g *Graph) curNodeIndex() nodeIndex {
	return nodeIndex(len(g.nodes))
}

// addNode registers n under its name, rejecting duplicates.
func addNode[T any](g *Graph, n node) Column[T] {
	name := n.nodeName()
	if _, ok := g.names[name]; ok {
		g.fail(&GraphError{Node: name, Err: ErrDuplicate})
		return Column[T]{}
	}
	idx := g.curNodeIndex()
	g.nodes = append(g.nodes, n)
	g.names[name] = idx
	return Column[T]{g: g, index: idx, name: name}
}

// colRef is the untyped identity of a Column.
type colRef struct {
	g     *Graph
	index nodeIndex
	name  string
}

// checkInputs verifies every input was declared on g.
func (g *Graph) checkInputs(name string, ins ...colRef) bool {
	for i, in := range ins {
		if in.g != g {
			g.fail(&GraphError{Node: name, Err: fmt.Errorf("%w: input %d (%q)", ErrUndeclared, i, in.name)})
			return false
		}
	}
	return true
}

// Column is a typed handle to a column of a Graph.
// The zero Column is not declared on any graph.
type Column[T any] struct {
	g     *Graph
	index nodeIndex
	name  string
}

// Name returns the column's name.
func (c Column[T]) Name() string {
	return c.name
}

// Valid reports whether the column was successfully declared.
func (c Column[T]) Valid() bool {
	return c.g != nil
}

func (c Column[T]) ref() colRef {
	return colRef{g: c.g, index: c.index, name: c.name}
}

// Input declares the source column name as an input of type T, which must be
// the source's Go type for that column. A column missing from the source is
// a *source.SourceError. Declaring the same input twice returns the same
// column.
func Input[T any](g *Graph, name string) Column[T] {
	if !g.declarable(name) {
		return Column[T]{}
	}
	if idx, ok := g.names[name]; ok {
		if _, same := g.nodes[idx].(*inputNode[T]); same {
			return Column[T]{g: g, index: idx, name: name}
		}
		g.fail(&GraphError{Node: name, Err: ErrDuplicate})
		return Column[T]{}
	}
	col, ok := g.src.Schema().Lookup(name)
	if !ok {
		g.fail(&source.SourceError{Column: name, Err: source.ErrMissingColumn})
		return Column[T]{}
	}
	if want := reflect.TypeFor[T](); col.Type != want {
		g.fail(&GraphError{Node: name, Err: fmt.Errorf("%w: source has %v, declared %v", ErrType, col.Type, want)})
		return Column[T]{}
	}
	return addNode[T](g, &inputNode[T]{name: name})
}

// inputNode reads a column from the source.
type inputNode[T any] struct {
	name string
}

func (n *inputNode[T]) nodeName() string { return n.name }

func (n *inputNode[T]) bind(p *partition) any {
	v := new(T)
	p.vars = append(p.vars, source.Var{Name: n.name, Value: v})
	return getter[T](func() (T, error) {
		return *v, nil
	})
}

// getter returns a column's value for the partition's current row.
type getter[T any] func() (T, error)

func lookup[T any](p *partition, c Column[T]) getter[T] {
	return p.getters[c.index].(getter[T])
}
