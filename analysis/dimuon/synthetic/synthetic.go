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

// Package synthetic generates reproducible NanoAOD-like events: Z boson
// decays to two muons on top of a soft multi-muon background.
//
// It provides fixtures for tests and benchmarks, and the input of the
// gendata command.
package synthetic

import (
	"iter"
	"math"
	"math/rand/v2"

	"lostluck.dev/rdf-go/analysis/dimuon"
)

const (
	muonMass = 0.1057 // GeV
	zMass    = 91.19
	zWidth   = 2.495
)

// Config controls the generated sample.
type Config struct {
	NumEvents int
	Seed      uint64

	// SignalFraction is the probability that an event holds a Z decay.
	SignalFraction float64
	// SameSignFraction is the probability that a background event's muons
	// all share one charge.
	SameSignFraction float64
}

// DefaultConfig returns a sample of n events with seed.
func DefaultConfig(n int, seed uint64) Config {
	return Config{
		NumEvents:        n,
		Seed:             seed,
		SignalFraction:   0.4,
		SameSignFraction: 0.2,
	}
}

// Events yields the configured events with their entry numbers. The
// sequence depends only on cfg.
func Events(cfg Config) iter.Seq2[int, dimuon.Event] {
	return func(yield func(int, dimuon.Event) bool) {
		g := generator{cfg: cfg, rng: rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))}
		for i := range cfg.NumEvents {
			if !yield(i, g.event()) {
				return
			}
		}
	}
}

// Generate returns all the configured events.
func Generate(cfg Config) []dimuon.Event {
	out := make([]dimuon.Event, 0, cfg.NumEvents)
	for _, e := range Events(cfg) {
		out = append(out, e)
	}
	return out
}

type generator struct {
	cfg Config
	rng *rand.Rand
}

func (g *generator) event() dimuon.Event {
	var e dimuon.Event
	if g.rng.Float64() < g.cfg.SignalFraction {
		e.Muons = g.zDecay()
		if g.rng.Float64() < 0.1 {
			e.Muons = append(e.Muons, g.softMuon())
		}
	} else {
		e.Muons = g.background()
	}
	e.NJet = uint32(min(14, int(g.rng.ExpFloat64()*1.5)))
	e.IsoMu24, e.IsoMu18 = g.triggers(e.Muons)
	return e
}

// zDecay returns two opposite-sign muons whose invariant mass follows the
// Z line shape.
func (g *generator) zDecay() []dimuon.Muon {
	m := zMass + zWidth/2*math.Tan(math.Pi*(g.rng.Float64()-0.5))
	m = min(max(m, 60), 120)

	pt1 := 25 + 35*g.rng.Float64()
	eta1 := g.uniform(-2.3, 2.3)
	eta2 := g.uniform(-2.3, 2.3)
	phi1 := g.uniform(-math.Pi, math.Pi)
	phi2 := phi1 + math.Pi + 0.3*g.rng.NormFloat64()

	// Massless two body kinematics fix the second muon's momentum.
	pt2 := m * m / (2 * pt1 * (math.Cosh(eta1-eta2) - math.Cos(phi1-phi2)))
	if math.IsNaN(pt2) || math.IsInf(pt2, 0) || pt2 > 500 {
		pt2 = pt1
	}

	q := int32(1)
	if g.rng.IntN(2) == 0 {
		q = -1
	}
	mu := []dimuon.Muon{
		g.muon(pt1, eta1, phi1, q, 0.95, 0.03),
		g.muon(pt2, eta2, phi2, -q, 0.95, 0.03),
	}
	if g.rng.IntN(2) == 0 {
		mu[0], mu[1] = mu[1], mu[0]
	}
	return mu
}

// background returns up to three soft, loosely isolated muons.
func (g *generator) background() []dimuon.Muon {
	n := g.rng.IntN(4)
	sameSign := g.rng.Float64() < g.cfg.SameSignFraction
	q := int32(1)
	out := make([]dimuon.Muon, 0, n)
	for range n {
		if !sameSign && g.rng.IntN(2) == 0 {
			q = -q
		}
		pt := 3 + 15*g.rng.ExpFloat64()
		out = append(out, g.muon(pt, g.uniform(-2.5, 2.5), g.uniform(-math.Pi, math.Pi), q, 0.7, 0.2))
	}
	return out
}

func (g *generator) softMuon() dimuon.Muon {
	return g.muon(5+10*g.rng.Float64(), g.uniform(-2.4, 2.4), g.uniform(-math.Pi, math.Pi), 1, 0.8, 0.3)
}

func (g *generator) muon(pt, eta, phi float64, q int32, tightProb, isoMean float64) dimuon.Muon {
	return dimuon.Muon{
		Pt:      float32(pt),
		Eta:     float32(eta),
		Phi:     float32(math.Remainder(phi, 2*math.Pi)),
		Mass:    muonMass,
		Charge:  q,
		TightID: g.rng.Float64() < tightProb,
		RelIso:  float32(isoMean * g.rng.ExpFloat64()),
	}
}

// triggers fires the unprescaled path on any isolated muon above 24 GeV and
// a prescaled path above 18 GeV.
func (g *generator) triggers(muons []dimuon.Muon) (isoMu24, isoMu18 bool) {
	for _, m := range muons {
		if m.RelIso >= 0.15 {
			continue
		}
		if m.Pt > 24 && g.rng.Float64() < 0.9 {
			isoMu24 = true
		}
		if m.Pt > 18 && g.rng.Float64() < 0.3 {
			isoMu18 = true
		}
	}
	return isoMu24, isoMu18
}

func (g *generator) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*g.rng.Float64()
}
