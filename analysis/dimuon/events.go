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

package dimuon

import (
	"github.com/pkg/errors"
	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/riofs"
	"go-hep.org/x/hep/groot/rtree"
	"lostluck.dev/rdf-go/source"
)

// Muon is one reconstructed muon.
type Muon struct {
	Pt, Eta, Phi, Mass float32
	Charge             int32
	TightID            bool
	RelIso             float32
}

// Event is one collision event carrying the columns the selection reads.
type Event struct {
	IsoMu24, IsoMu18 bool
	NJet             uint32
	Muons            []Muon
}

// columns is an event list in columnar form.
type columns struct {
	isoMu24, isoMu18 []bool
	nJet             []uint32
	nMuon            []int32
	pt, eta, phi     [][]float32
	mass, iso        [][]float32
	charge           [][]int32
	tight            [][]bool
}

func toColumns(events []Event) columns {
	n := len(events)
	c := columns{
		isoMu24: make([]bool, n), isoMu18: make([]bool, n),
		nJet: make([]uint32, n), nMuon: make([]int32, n),
		pt: make([][]float32, n), eta: make([][]float32, n), phi: make([][]float32, n),
		mass: make([][]float32, n), iso: make([][]float32, n),
		charge: make([][]int32, n), tight: make([][]bool, n),
	}
	for i, e := range events {
		c.isoMu24[i], c.isoMu18[i] = e.IsoMu24, e.IsoMu18
		c.nJet[i], c.nMuon[i] = e.NJet, int32(len(e.Muons))
		for _, m := range e.Muons {
			c.pt[i] = append(c.pt[i], m.Pt)
			c.eta[i] = append(c.eta[i], m.Eta)
			c.phi[i] = append(c.phi[i], m.Phi)
			c.mass[i] = append(c.mass[i], m.Mass)
			c.iso[i] = append(c.iso[i], m.RelIso)
			c.charge[i] = append(c.charge[i], m.Charge)
			c.tight[i] = append(c.tight[i], m.TightID)
		}
	}
	return c
}

// NewSource returns an in-memory source of events with NanoAOD column
// names and types.
func NewSource(events []Event) *source.Memory {
	c := toColumns(events)
	return source.NewMemory().
		MustAdd(ColTriggerIsoMu24, c.isoMu24).
		MustAdd(ColTriggerIsoMu18, c.isoMu18).
		MustAdd(ColNJet, c.nJet).
		MustAdd(ColNMuon, c.nMuon).
		MustAdd(ColMuonPt, c.pt).
		MustAdd(ColMuonEta, c.eta).
		MustAdd(ColMuonPhi, c.phi).
		MustAdd(ColMuonMass, c.mass).
		MustAdd(ColMuonCharge, c.charge).
		MustAdd(ColMuonTightID, c.tight).
		MustAdd(ColMuonRelIso, c.iso)
}

// WriteROOT writes events as a NanoAOD-like tree named tree into a new ROOT
// file at path. The per-muon branches are counted by nMuon.
func WriteROOT(path, tree string, events []Event) error {
	f, err := groot.Create(path)
	if err != nil {
		return errors.Wrapf(err, "dimuon: creating %s", path)
	}
	if err := writeTree(f, tree, events); err != nil {
		f.Close()
		return errors.Wrapf(err, "dimuon: writing %s", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "dimuon: closing %s", path)
	}
	return nil
}

func writeTree(dir riofs.Directory, tree string, events []Event) error {
	var (
		e      Event
		nMuon  int32
		pt     []float32
		eta    []float32
		phi    []float32
		mass   []float32
		iso    []float32
		charge []int32
		tight  []bool
	)
	w, err := rtree.NewWriter(dir, tree, []rtree.WriteVar{
		{Name: ColTriggerIsoMu24, Value: &e.IsoMu24},
		{Name: ColTriggerIsoMu18, Value: &e.IsoMu18},
		{Name: ColNJet, Value: &e.NJet},
		{Name: ColNMuon, Value: &nMuon},
		{Name: ColMuonPt, Value: &pt, Count: ColNMuon},
		{Name: ColMuonEta, Value: &eta, Count: ColNMuon},
		{Name: ColMuonPhi, Value: &phi, Count: ColNMuon},
		{Name: ColMuonMass, Value: &mass, Count: ColNMuon},
		{Name: ColMuonCharge, Value: &charge, Count: ColNMuon},
		{Name: ColMuonTightID, Value: &tight, Count: ColNMuon},
		{Name: ColMuonRelIso, Value: &iso, Count: ColNMuon},
	})
	if err != nil {
		return errors.Wrapf(err, "creating tree %s", tree)
	}
	for i, ev := range events {
		e = ev
		nMuon = int32(len(ev.Muons))
		pt, eta, phi, mass = pt[:0], eta[:0], phi[:0], mass[:0]
		iso, charge, tight = iso[:0], charge[:0], tight[:0]
		for _, m := range ev.Muons {
			pt = append(pt, m.Pt)
			eta = append(eta, m.Eta)
			phi = append(phi, m.Phi)
			mass = append(mass, m.Mass)
			iso = append(iso, m.RelIso)
			charge = append(charge, m.Charge)
			tight = append(tight, m.TightID)
		}
		if _, err := w.Write(); err != nil {
			w.Close()
			return errors.Wrapf(err, "event %d", i)
		}
	}
	return errors.Wrapf(w.Close(), "closing tree %s", tree)
}
