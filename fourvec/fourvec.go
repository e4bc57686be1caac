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

// Package fourvec computes relativistic kinematics of detector objects.
//
// Objects are measured as (pt, eta, phi, m): transverse momentum,
// pseudorapidity, azimuth and mass. Sums are taken in Cartesian
// (px, py, pz, E) form, in float64, and invariant masses are returned at
// the float32 precision the momenta are stored with.
package fourvec

import "math"

// PtEtaPhiM is a four-vector in detector coordinates.
type PtEtaPhiM struct {
	Pt, Eta, Phi, M float64
}

// PxPyPzE is a four-vector in Cartesian coordinates.
type PxPyPzE struct {
	Px, Py, Pz, E float64
}

// Cartesian converts v to Cartesian components.
func (v PtEtaPhiM) Cartesian() PxPyPzE {
	px := v.Pt * math.Cos(v.Phi)
	py := v.Pt * math.Sin(v.Phi)
	pz := v.Pt * math.Sinh(v.Eta)
	return PxPyPzE{
		Px: px,
		Py: py,
		Pz: pz,
		E:  math.Sqrt(px*px + py*py + pz*pz + v.M*v.M),
	}
}

// Add returns the component sum of p and q.
func (p PxPyPzE) Add(q PxPyPzE) PxPyPzE {
	return PxPyPzE{Px: p.Px + q.Px, Py: p.Py + q.Py, Pz: p.Pz + q.Pz, E: p.E + q.E}
}

// M2 returns the squared invariant mass, which rounding may make slightly
// negative for massless systems.
func (p PxPyPzE) M2() float64 {
	return p.E*p.E - p.Px*p.Px - p.Py*p.Py - p.Pz*p.Pz
}

// M returns the invariant mass. It is never negative.
func (p PxPyPzE) M() float64 {
	m2 := p.M2()
	if m2 <= 0 || math.IsNaN(m2) {
		return 0
	}
	return math.Sqrt(m2)
}

// Sum returns the Cartesian sum of objs.
func Sum(objs ...PtEtaPhiM) PxPyPzE {
	var total PxPyPzE
	for _, o := range objs {
		total = total.Add(o.Cartesian())
	}
	return total
}

// InvariantMass returns the invariant mass of the system of objs, truncated
// to float32.
func InvariantMass(objs ...PtEtaPhiM) float32 {
	return float32(Sum(objs...).M())
}

// FromFloat32 builds a four-vector from stored single precision momenta.
func FromFloat32(pt, eta, phi, m float32) PtEtaPhiM {
	return PtEtaPhiM{Pt: float64(pt), Eta: float64(eta), Phi: float64(phi), M: float64(m)}
}
