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

// Package dimuon selects events with an opposite-sign pair of well
// identified, isolated muons and histograms their kinematics.
//
// The selection is three filters applied in order: a single-muon trigger, a
// requirement of exactly two good muons, and a requirement that the two have
// opposite charges. A good muon passes the transverse momentum, pseudorapidity,
// tight identification and relative isolation cuts of Config.
//
// The two good muons are taken in the order they appear in the event, and
// this order alone decides which is reported as the leading muon. No sort
// by transverse momentum is applied. Only the tight identification flag is
// used.
package dimuon

import (
	"context"

	rdf "lostluck.dev/rdf-go"
	"lostluck.dev/rdf-go/cutflow"
	"lostluck.dev/rdf-go/fourvec"
	"lostluck.dev/rdf-go/hist"
	"lostluck.dev/rdf-go/vecops"
)

// NanoAOD column names.
const (
	ColTriggerIsoMu24 = "HLT_IsoMu24"
	ColTriggerIsoMu18 = "HLT_IsoMu18"
	ColNJet           = "nJet"
	ColNMuon          = "nMuon"
	ColMuonPt         = "Muon_pt"
	ColMuonEta        = "Muon_eta"
	ColMuonPhi        = "Muon_phi"
	ColMuonMass       = "Muon_mass"
	ColMuonCharge     = "Muon_charge"
	ColMuonTightID    = "Muon_tightId"
	ColMuonRelIso     = "Muon_pfRelIso04_all"
)

// Filter labels, as they appear in cutflow reports.
const (
	LabelTrigger  = "Trigger selection (HLT_IsoMu24 || HLT_IsoMu18)"
	LabelPair     = "Exactly 2 good muons"
	LabelOpposite = "Opposite-sign muons"
)

// Histogram definitions, in booking order.
var (
	HistNJet = hist.Def{
		Name: "h_nJet", Title: "Number of Jets",
		XLabel: "Number of jets", YLabel: "Events",
		Bins: 15, Min: 0, Max: 15,
	}
	HistMuon1Pt = hist.Def{
		Name: "h_muon1_pt", Title: "Leading Muon p_{T}",
		XLabel: "p_{T} [GeV]", YLabel: "Events / 5 GeV",
		Bins: 40, Min: 0, Max: 200,
	}
	HistMuon2Pt = hist.Def{
		Name: "h_muon2_pt", Title: "Subleading Muon p_{T}",
		XLabel: "p_{T} [GeV]", YLabel: "Events / 5 GeV",
		Bins: 40, Min: 0, Max: 200,
	}
	HistDimuonMass = hist.Def{
		Name: "h_dimuon_mass", Title: "Dimuon Invariant Mass",
		XLabel: "m_{#mu#mu} [GeV]", YLabel: "Events / 2 GeV",
		Bins: 75, Min: 0, Max: 150,
	}
)

// Columns returns the source columns the selection reads under cfg.
func Columns(cfg Config) []string {
	return append(append([]string(nil), cfg.Triggers...),
		ColNJet,
		ColMuonPt, ColMuonEta, ColMuonPhi, ColMuonMass,
		ColMuonCharge, ColMuonTightID, ColMuonRelIso,
	)
}

// Results are the booked outputs of the selection.
type Results struct {
	NJet       *rdf.Result[*hist.H1D]
	Muon1Pt    *rdf.Result[*hist.H1D]
	Muon2Pt    *rdf.Result[*hist.H1D]
	DimuonMass *rdf.Result[*hist.H1D]
	Cutflow    *rdf.Result[*cutflow.Report]
}

// Book declares the selection on g and books its histograms and cutflow
// report. Nothing is read until the results are collected.
func Book(g *rdf.Graph, cfg Config) (*Results, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Trigger.
	isoMuA := rdf.Input[bool](g, cfg.Triggers[0])
	isoMuB := rdf.Input[bool](g, cfg.Triggers[1])
	passTrigger := rdf.Define2(g, "passTrigger", func(a, b bool) (bool, error) {
		return a || b, nil
	}, isoMuA, isoMuB)
	rdf.Filter1(g, LabelTrigger, identity, passTrigger)

	// Muon quality.
	nJet := rdf.Input[uint32](g, ColNJet)
	pt := rdf.Input[[]float32](g, ColMuonPt)
	eta := rdf.Input[[]float32](g, ColMuonEta)
	phi := rdf.Input[[]float32](g, ColMuonPhi)
	mass := rdf.Input[[]float32](g, ColMuonMass)
	charge := rdf.Input[[]int32](g, ColMuonCharge)
	tight := rdf.Input[[]bool](g, ColMuonTightID)
	iso := rdf.Input[[]float32](g, ColMuonRelIso)

	mask := rdf.Define4(g, "goodMuon_mask", cfg.GoodMuons, pt, eta, tight, iso)
	nGood := rdf.Define1(g, "nGoodMuon", func(m []bool) (int, error) {
		return vecops.CountTrue(m), nil
	}, mask)
	goodPt := rdf.Define2(g, "goodMuon_pt", vecops.Take[float32], pt, mask)
	goodEta := rdf.Define2(g, "goodMuon_eta", vecops.Take[float32], eta, mask)
	goodPhi := rdf.Define2(g, "goodMuon_phi", vecops.Take[float32], phi, mask)
	goodMass := rdf.Define2(g, "goodMuon_mass", vecops.Take[float32], mass, mask)
	goodCharge := rdf.Define2(g, "goodMuon_charge", vecops.Take[int32], charge, mask)

	// Pair.
	rdf.Filter1(g, LabelPair, func(n int) bool { return n == 2 }, nGood)
	rdf.Filter1(g, LabelOpposite, func(q []int32) bool { return q[0]*q[1] < 0 }, goodCharge)

	// Kinematics of the selected pair.
	dimuonMass := rdf.Define4(g, "dimuon_mass", pairMass, goodPt, goodEta, goodPhi, goodMass)
	muon1Pt := rdf.Define1(g, "muon1_pt", nth(0), goodPt)
	muon2Pt := rdf.Define1(g, "muon2_pt", nth(1), goodPt)

	res := &Results{
		NJet:       rdf.Histo1D(g, HistNJet, nJet),
		Muon1Pt:    rdf.Histo1D(g, HistMuon1Pt, muon1Pt),
		Muon2Pt:    rdf.Histo1D(g, HistMuon2Pt, muon2Pt),
		DimuonMass: rdf.Histo1D(g, HistDimuonMass, dimuonMass),
		Cutflow:    rdf.Report(g),
	}
	if err := g.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// GoodMuons returns the mask of muons passing the quality cuts. The arrays
// must be index-aligned.
func (c Config) GoodMuons(pt, eta []float32, tight []bool, iso []float32) ([]bool, error) {
	return vecops.And(
		vecops.Greater(pt, c.MinPt),
		vecops.Less(vecops.Abs(eta), c.MaxAbsEta),
		tight,
		vecops.Less(iso, c.MaxRelIso),
	)
}

func identity(b bool) bool { return b }

func nth(i int) func([]float32) (float32, error) {
	return func(v []float32) (float32, error) {
		return vecops.At(v, i)
	}
}

// pairMass is the invariant mass of the first two muons.
func pairMass(pt, eta, phi, m []float32) (float32, error) {
	var mu [2]fourvec.PtEtaPhiM
	for i := range mu {
		for _, v := range [][]float32{pt, eta, phi, m} {
			if _, err := vecops.At(v, i); err != nil {
				return 0, err
			}
		}
		mu[i] = fourvec.FromFloat32(pt[i], eta[i], phi[i], m[i])
	}
	return fourvec.InvariantMass(mu[0], mu[1]), nil
}

// Outcome is a collected selection.
type Outcome struct {
	// Histograms in booking order: nJet, leading muon pt, subleading muon
	// pt, dimuon mass.
	Histograms []*hist.H1D
	Report     *cutflow.Report
}

// Selected returns the number of selected events, the entries of the
// dimuon mass histogram.
func (o *Outcome) Selected() int64 {
	return o.Histogram(HistDimuonMass.Name).Entries()
}

// Histogram returns the named histogram, or nil.
func (o *Outcome) Histogram(name string) *hist.H1D {
	for _, h := range o.Histograms {
		if h.Name() == name {
			return h
		}
	}
	return nil
}

// Collect executes the graph, if needed, and gathers every result.
func (r *Results) Collect(ctx context.Context) (*Outcome, error) {
	var out Outcome
	for _, res := range []*rdf.Result[*hist.H1D]{r.NJet, r.Muon1Pt, r.Muon2Pt, r.DimuonMass} {
		h, err := res.Value(ctx)
		if err != nil {
			return nil, err
		}
		out.Histograms = append(out.Histograms, h)
	}
	report, err := r.Cutflow.Value(ctx)
	if err != nil {
		return nil, err
	}
	out.Report = report
	return &out, nil
}
