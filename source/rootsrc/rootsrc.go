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

// Package rootsrc reads rdf sources from ROOT files.
//
// A ROOT TTree maps onto a source.Schema one leaf per column. Scalar leaves
// become scalar columns, and leaves counted by another leaf, as the per-muon
// branches of a NanoAOD tree are counted by nMuon, become slice columns.
package rootsrc

import (
	"context"
	"fmt"
	"reflect"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/riofs"
	"go-hep.org/x/hep/groot/rtree"
	"lostluck.dev/rdf-go/source"
)

// DefaultTree is the tree name used by NanoAOD files.
const DefaultTree = "Events"

// Source is a ROOT tree. It is safe for concurrent scans: each Scan reads
// through its own file handle.
type Source struct {
	path    string
	tree    string
	schema  source.Schema
	entries int64
}

var _ source.Source = (*Source)(nil)

// Open reads the schema of tree in the ROOT file at path, which may be any
// location groot opens, and checks that the required columns exist.
func Open(path, tree string, required ...string) (*Source, error) {
	f, t, err := openTree(path, tree)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cols []source.Column
	for _, rv := range rtree.NewReadVars(t) {
		cols = append(cols, source.Column{Name: rv.Name, Type: reflect.TypeOf(rv.Value).Elem()})
	}
	s := &Source{
		path:    path,
		tree:    tree,
		schema:  source.NewSchema(cols...),
		entries: t.Entries(),
	}
	if err := source.Require(s, required...); err != nil {
		err.(*source.SourceError).Path = path
		return nil, err
	}
	return s, nil
}

func openTree(path, tree string) (*riofs.File, rtree.Tree, error) {
	f, err := groot.Open(path)
	if err != nil {
		return nil, nil, &source.SourceError{Path: path, Err: err}
	}
	obj, err := riofs.Dir(f).Get(tree)
	if err != nil {
		f.Close()
		return nil, nil, &source.SourceError{Path: path, Err: err}
	}
	t, ok := obj.(rtree.Tree)
	if !ok {
		f.Close()
		return nil, nil, &source.SourceError{Path: path, Err: fmt.Errorf("object %q is a %s, not a tree", tree, obj.Class())}
	}
	return f, t, nil
}

// Path returns the location of the file.
func (s *Source) Path() string { return s.path }

func (s *Source) Schema() source.Schema { return s.schema }

func (s *Source) Entries() int64 { return s.entries }

func (s *Source) Scan(ctx context.Context, r source.Range, vars []source.Var, fn func(entry int64) error) error {
	if r.Min < 0 || r.Max > s.entries {
		return &source.SourceError{Path: s.path, Err: fmt.Errorf("range %v outside [0, %d)", r, s.entries)}
	}
	if err := s.schema.Check(vars); err != nil {
		err.(*source.SourceError).Path = s.path
		return err
	}
	if r.Len() == 0 {
		return nil
	}
	if len(vars) == 0 {
		// Nothing to read, only rows to count.
		for entry := r.Min; entry < r.Max; entry++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(entry); err != nil {
				return err
			}
		}
		return nil
	}

	f, t, err := openTree(s.path, s.tree)
	if err != nil {
		return err
	}
	defer f.Close()

	rvars := make([]rtree.ReadVar, len(vars))
	for i, v := range vars {
		rvars[i] = rtree.ReadVar{Name: v.Name, Value: v.Value}
	}
	rd, err := rtree.NewReader(t, rvars, rtree.WithRange(r.Min, r.Max))
	if err != nil {
		return &source.SourceError{Path: s.path, Err: err}
	}
	defer rd.Close()

	var fnErr error
	err = rd.Read(func(rc rtree.RCtx) error {
		if err := ctx.Err(); err != nil {
			fnErr = err
			return err
		}
		if err := fn(rc.Entry); err != nil {
			fnErr = err
			return err
		}
		return nil
	})
	switch {
	case fnErr != nil:
		return fnErr
	case err != nil:
		return &source.SourceError{Path: s.path, Err: err}
	}
	return nil
}
