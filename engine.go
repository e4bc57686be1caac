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
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"lostluck.dev/rdf-go/cutflow"
	"lostluck.dev/rdf-go/source"
)

// Run executes the graph, filling every booked action. Only the first call
// executes; later calls return the outcome of that execution.
//
// Partitions are processed independently and merged in partition order once
// all of them finish. A source, computation or context error aborts every
// partition still in flight and discards all partial results.
func (g *Graph) Run(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch g.state {
	case stateCompleted:
		return nil
	case stateFailed:
		return g.runErr
	}
	if g.err != nil {
		g.state, g.runErr = stateFailed, g.err
		return g.err
	}
	g.state = stateRunning
	if err := g.execute(ctx); err != nil {
		g.state, g.runErr = stateFailed, err
		return err
	}
	g.state = stateCompleted
	return nil
}

// plan resolves the execution mode into a source view, a worker count and
// the row ranges to process.
func (g *Graph) plan() (source.Source, int, []source.Range) {
	src := g.src
	workers := max(g.opts.Workers, 1)
	parts := g.opts.Partitions
	if parts < 1 {
		parts = workers
	}
	if g.opts.Limited {
		if g.opts.MaxRows > 0 {
			src = source.Head(src, g.opts.MaxRows)
		}
		if workers > 1 || parts > 1 {
			g.logger.Warn("row limit forces sequential execution", slog.Int("workers", workers), slog.Int("partitions", parts))
		}
		workers, parts = 1, 1
	}
	return src, workers, source.Split(source.Range{Min: 0, Max: src.Entries()}, parts)
}

func (g *Graph) execute(ctx context.Context) error {
	start := time.Now()
	m, err := newMetrics(g.opts.Registerer, g.opts.Name)
	if err != nil {
		return err
	}
	src, workers, ranges := g.plan()
	g.logger.Info("executing graph",
		slog.Int64("entries", src.Entries()),
		slog.Int("partitions", len(ranges)),
		slog.Int("workers", workers),
		slog.Int("filters", len(g.filters)),
		slog.Int("actions", len(g.actions)))

	done := make([]*partition, len(ranges))
	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, r := range ranges {
		eg.Go(func() error {
			p := g.newPartition(i, r)
			if err := p.run(ectx, src); err != nil {
				return err
			}
			done[i] = p
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		g.logger.Error("graph execution failed", slog.Any("error", err))
		return err
	}

	flow := g.newCutflow()
	for _, p := range done {
		if err := flow.Merge(p.flow); err != nil {
			return err
		}
	}
	if err := flow.Check(); err != nil {
		return fmt.Errorf("rdf: inconsistent cutflow: %w", err)
	}
	for ai, a := range g.actions {
		parts := make([]partial, len(done))
		for i, p := range done {
			parts[i] = p.partials[ai]
		}
		if err := a.finish(parts); err != nil {
			return err
		}
	}
	g.flow = flow
	report := flow.Report()
	for _, r := range g.reports {
		r.val = report
	}

	elapsed := time.Since(start)
	m.observe(flow, len(done), elapsed)
	g.logger.Info("graph executed",
		slog.Int64("rows", flow.Initial),
		slog.Int64("selected", report.Final()),
		slog.Duration("elapsed", elapsed))
	return nil
}

func (g *Graph) newCutflow() *cutflow.Cutflow {
	labels := make([]string, len(g.filters))
	for i, f := range g.filters {
		labels[i] = f.label
	}
	return cutflow.New(labels...)
}

// partition is the worker local state for one row range. Nothing in it is
// shared with other partitions.
type partition struct {
	index  int
	rng    source.Range
	logger *slog.Logger

	entry    int64 // Current row.
	vars     []source.Var
	getters  []any
	filters  []func() (bool, error)
	stages   []int // Per partial, its action's stage.
	partials []partial
	flow     *cutflow.Cutflow
}

func (g *Graph) newPartition(i int, r source.Range) *partition {
	p := &partition{
		index:  i,
		rng:    r,
		logger: g.logger.With(slog.Int("partition", i)),
		entry:  -1,
		flow:   g.newCutflow(),
	}
	p.getters = make([]any, len(g.nodes))
	for j, n := range g.nodes {
		p.getters[j] = n.bind(p)
	}
	for _, f := range g.filters {
		p.filters = append(p.filters, f.bind(p))
	}
	for _, a := range g.actions {
		p.stages = append(p.stages, a.stage())
		p.partials = append(p.partials, a.newPartial(p))
	}
	return p
}

func (p *partition) run(ctx context.Context, src source.Source) error {
	start := time.Now()
	if err := src.Scan(ctx, p.rng, p.vars, p.row); err != nil {
		return err
	}
	p.logger.Debug("partition done",
		slog.String("range", p.rng.String()),
		slog.Int64("rows", p.flow.Initial),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

// row evaluates the graph for one source row. Actions booked after the k-th
// filter observe the row just before the filter k+1 is evaluated.
func (p *partition) row(entry int64) error {
	p.entry = entry
	p.flow.Enter()
	next := 0
	for i, f := range p.filters {
		for ; next < len(p.partials) && p.stages[next] <= i; next++ {
			if err := p.partials[next].observe(); err != nil {
				return err
			}
		}
		ok, err := f()
		if err != nil {
			return err
		}
		p.flow.Observe(i, ok)
		if !ok {
			return nil
		}
	}
	for ; next < len(p.partials); next++ {
		if err := p.partials[next].observe(); err != nil {
			return err
		}
	}
	return nil
}
