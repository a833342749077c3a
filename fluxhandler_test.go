/*
Copyright © 2019 the ClusterDyn authors.
This file is part of ClusterDyn.

ClusterDyn is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ClusterDyn is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ClusterDyn.  If not, see <http://www.gnu.org/licenses/>.
*/

package clusterdyn

import "testing"

func TestIncidentFlux(t *testing.T) {
	const testTolerance = 1e-12

	s := testSim(t, 4, 0.5)
	he1, _ := s.Network.Find(Comp(1, 0, 0))

	f := &IncidentFlux{
		Amplitude: 4e4,
		Profile:   func(x float64) float64 { return 2 - x },
		MaxDepth:  1.5,
	}
	calc, err := f.Manipulator(s.Network, s.Points)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range s.Points {
		calc(p, s.Dt)
	}

	// The deposited total integrates to the amplitude.
	var total float64
	for _, p := range s.Points {
		total += p.Cf[he1.ID()] * p.Dx
	}
	if different(total, f.Amplitude*s.Dt, testTolerance) {
		t.Errorf("deposited total: want %g, got %g", f.Amplitude*s.Dt, total)
	}

	// Deposition follows the profile shape and stops at the cutoff.
	ratio := s.Points[0].Cf[he1.ID()] / s.Points[1].Cf[he1.ID()]
	if different(ratio, 1.5/1.0, testTolerance) {
		t.Errorf("deposition ratio: want 1.5, got %g", ratio)
	}
	if s.Points[3].Cf[he1.ID()] != 0 {
		t.Error("no deposition past the maximum depth")
	}
}

func TestIncidentFluxErrors(t *testing.T) {
	s := testSim(t, 3, 0.5)
	f := &IncidentFlux{
		Amplitude: 1,
		Profile:   func(x float64) float64 { return -1 },
		MaxDepth:  10,
	}
	if _, err := f.Manipulator(s.Network, s.Points); err == nil {
		t.Error("profile depositing nothing should fail")
	}

	spec := NetworkSpec{
		LatticeConstant: testLatticeConstant,
		AtomicVolume:    testAtomicVolume,
		Temperature:     testTemperature,
		Clusters: []ClusterSpec{{
			Comp:       Comp(0, 1, 0),
			Energetics: ClusterEnergetics{FormationEnergy: 3.6, Radius: 0.14},
		}},
	}
	n, err := NewNetwork(spec)
	if err != nil {
		t.Fatal(err)
	}
	f.Profile = func(x float64) float64 { return 1 }
	if _, err := f.Manipulator(n, NewGrid(n, 3, 0.5)); err == nil {
		t.Error("network without single helium should fail")
	}
}
