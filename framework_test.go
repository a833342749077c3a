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

import (
	"errors"
	"strings"
	"testing"
)

func testSim(t *testing.T, nPoints int, dx float64) *Sim {
	n, err := NewNetwork(heliumChainSpec(3))
	if err != nil {
		t.Fatal(err)
	}
	return &Sim{
		Network: n,
		Points:  NewGrid(n, nPoints, dx),
		Dt:      1e-12,
	}
}

func TestNewGrid(t *testing.T) {
	s := testSim(t, 4, 0.25)
	if len(s.Points) != 4 {
		t.Fatalf("want 4 points, got %d", len(s.Points))
	}
	for i, p := range s.Points {
		if want := 0.25 * float64(i+1); p.X != want {
			t.Errorf("point %d: want depth %g, got %g", i, want, p.X)
		}
		if p.Dx != 0.25 {
			t.Errorf("point %d: want spacing 0.25, got %g", i, p.Dx)
		}
		if len(p.Ci) != s.Network.Size() || len(p.Cf) != s.Network.Size() {
			t.Errorf("point %d: concentration arrays not network sized", i)
		}
	}
	if s.Points[0].Prev() != nil || s.Points[3].Next() != nil {
		t.Error("edge points should have no outside neighbors")
	}
	if s.Points[1].Next() != s.Points[2] || s.Points[2].Prev() != s.Points[1] {
		t.Error("interior points not linked")
	}
}

func TestRunLoop(t *testing.T) {
	s := testSim(t, 2, 1.0)

	inits, runs, cleanups := 0, 0, 0
	s.InitFuncs = []DomainManipulator{
		func(s *Sim) error { inits++; return nil },
	}
	s.RunFuncs = []DomainManipulator{
		func(s *Sim) error { runs++; return nil },
		SteadyConvergenceCheck(3),
	}
	s.CleanupFuncs = []DomainManipulator{
		func(s *Sim) error { cleanups++; return nil },
	}
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	if inits != 1 || runs != 3 || cleanups != 1 {
		t.Errorf("want 1 init, 3 runs, 1 cleanup; got %d, %d, %d", inits, runs, cleanups)
	}

	s = testSim(t, 2, 1.0)
	s.InitFuncs = []DomainManipulator{
		func(s *Sim) error { return errors.New("boom") },
	}
	err := s.Run()
	if err == nil {
		t.Fatal("init error should propagate")
	}
	if !strings.Contains(err.Error(), "clusterdyn") {
		t.Errorf("error %q should name the package", err)
	}
}

func TestResetAndAdvance(t *testing.T) {
	s := testSim(t, 2, 1.0)
	for _, p := range s.Points {
		for i := range p.Ci {
			p.Ci[i] = 3
			p.Cf[i] = -2
		}
	}
	if err := ResetPoints()(s); err != nil {
		t.Fatal(err)
	}
	for _, p := range s.Points {
		for i := range p.Ci {
			if p.Ci[i] != 0 || p.Cf[i] != 0 {
				t.Fatal("concentrations should be zeroed")
			}
		}
	}

	// AdvanceTime promotes Cf to Ci and clips negative values.
	s.Points[0].Cf[0] = 5
	s.Points[0].Cf[1] = -1e-20
	if err := AdvanceTime()(s); err != nil {
		t.Fatal(err)
	}
	if s.Points[0].Ci[0] != 5 {
		t.Errorf("want 5, got %g", s.Points[0].Ci[0])
	}
	if s.Points[0].Ci[1] != 0 || s.Points[0].Cf[1] != 0 {
		t.Error("negative concentration should clip to zero")
	}
	if s.Time != s.Dt {
		t.Errorf("want time %g, got %g", s.Dt, s.Time)
	}
}

func TestCalculations(t *testing.T) {
	s := testSim(t, 7, 1.0)
	add := func(p *GridPoint, Dt float64) { p.Cf[0] += 1 }
	double := func(p *GridPoint, Dt float64) { p.Cf[0] *= 2 }
	if err := Calculations(add, double)(s); err != nil {
		t.Fatal(err)
	}
	for i, p := range s.Points {
		// The calculators run in order at each point.
		if p.Cf[0] != 2 {
			t.Errorf("point %d: want 2, got %g", i, p.Cf[0])
		}
	}
}

func TestSetTimeStepCFL(t *testing.T) {
	const testTolerance = 1e-12

	s := testSim(t, 3, 0.5)
	if err := SetTimeStepCFL(0.1)(s); err != nil {
		t.Fatal(err)
	}
	var dMax float64
	for _, r := range s.Network.Reactants() {
		if r.DiffusionCoefficient() > dMax {
			dMax = r.DiffusionCoefficient()
		}
	}
	want := 0.1 * 0.5 * 0.5 / (2 * dMax)
	if different(s.Dt, want, testTolerance) {
		t.Errorf("want time step %g, got %g", want, s.Dt)
	}
}

func TestDiffusion(t *testing.T) {
	const testTolerance = 1e-12

	s := testSim(t, 3, 0.5)
	he1, _ := s.Network.Find(Comp(1, 0, 0))
	id := he1.ID()
	s.Points[0].Ci[id] = 1
	s.Points[1].Ci[id] = 4
	s.Points[2].Ci[id] = 2

	calc := Diffusion(s.Network)
	for _, p := range s.Points {
		calc(p, s.Dt)
	}

	d := he1.DiffusionCoefficient()
	// Central second difference with absorbing boundaries.
	wants := []float64{
		s.Dt * d * (0 - 2*1 + 4) / 0.25,
		s.Dt * d * (1 - 2*4 + 2) / 0.25,
		s.Dt * d * (4 - 2*2 + 0) / 0.25,
	}
	for i, w := range wants {
		if different(s.Points[i].Cf[id], w, testTolerance) {
			t.Errorf("point %d: want %g, got %g", i, w, s.Points[i].Cf[id])
		}
	}
}

func TestAdvection(t *testing.T) {
	const testTolerance = 1e-12

	s := testSim(t, 3, 0.5)
	he1, _ := s.Network.Find(Comp(1, 0, 0))
	id := he1.ID()
	for _, p := range s.Points {
		p.Ci[id] = 1e-4
	}

	sink := map[int]float64{id: 2.25e-3}
	calc := Advection(s.Network, sink)
	for _, p := range s.Points {
		calc(p, s.Dt)
	}

	d := he1.DiffusionCoefficient()
	kT := kBoltzmann * s.Network.Temperature()
	v := func(x float64) float64 { return 3 * sink[id] * d * 1e-4 / (kT * x * x * x * x) }
	wants := []float64{
		s.Dt * (v(1.0) - v(0.5)) / 0.5,
		s.Dt * (v(1.5) - v(1.0)) / 0.5,
		s.Dt * (0 - v(1.5)) / 0.5,
	}
	for i, w := range wants {
		if different(s.Points[i].Cf[id], w, testTolerance) {
			t.Errorf("point %d: want %g, got %g", i, w, s.Points[i].Cf[id])
		}
	}

	// Material leaves the domain through the surface on net.
	var total float64
	for _, p := range s.Points {
		total += p.Cf[id]
	}
	if total >= 0 {
		t.Error("advection should remove material from the domain")
	}
}

func TestDiffusionPartials(t *testing.T) {
	const testTolerance = 1e-12

	s := testSim(t, 3, 0.5)
	he1, _ := s.Network.Find(Comp(1, 0, 0))
	id := he1.ID()
	d := he1.DiffusionCoefficient()

	partials := DiffusionPartials(s.Network)
	got := make(map[[2]int]float64)
	partials(s.Points[1], func(id, offset int, value float64) {
		got[[2]int{id, offset}] += value
	})

	wants := map[int]float64{-1: d / 0.25, 0: -2 * d / 0.25, 1: d / 0.25}
	for offset, w := range wants {
		if different(got[[2]int{id, offset}], w, testTolerance) {
			t.Errorf("offset %d: want %g, got %g", offset, w, got[[2]int{id, offset}])
		}
	}

	// Absorbing boundaries: the surface point keeps the full diagonal
	// term but has no shallower neighbor to couple to.
	edge := make(map[[2]int]float64)
	partials(s.Points[0], func(id, offset int, value float64) {
		if offset == -1 {
			t.Error("surface point should not couple to a shallower neighbor")
		}
		edge[[2]int{id, offset}] += value
	})
	if different(edge[[2]int{id, 0}], -2*d/0.25, testTolerance) {
		t.Errorf("surface diagonal: want %g, got %g", -2*d/0.25, edge[[2]int{id, 0}])
	}
}

func TestAdvectionPartials(t *testing.T) {
	const testTolerance = 1e-12

	s := testSim(t, 3, 0.5)
	he1, _ := s.Network.Find(Comp(1, 0, 0))
	id := he1.ID()
	d := he1.DiffusionCoefficient()
	kT := kBoltzmann * s.Network.Temperature()
	sink := map[int]float64{id: 2.25e-3}

	partials := AdvectionPartials(s.Network, sink)
	got := make(map[[2]int]float64)
	partials(s.Points[1], func(id, offset int, value float64) {
		got[[2]int{id, offset}] += value
	})

	// Upwind drift at depth 1.0 with the deeper neighbor at 1.5.
	want0 := -3 * sink[id] * d / (kT * 1.0 * 0.5)
	want1 := 3 * sink[id] * d / (kT * 1.5 * 1.5 * 1.5 * 1.5 * 0.5)
	if different(got[[2]int{id, 0}], want0, testTolerance) {
		t.Errorf("diagonal: want %g, got %g", want0, got[[2]int{id, 0}])
	}
	if different(got[[2]int{id, 1}], want1, testTolerance) {
		t.Errorf("deeper neighbor: want %g, got %g", want1, got[[2]int{id, 1}])
	}

	// The deepest point has nothing drifting in from below.
	partials(s.Points[2], func(id, offset int, value float64) {
		if offset == 1 {
			t.Error("deepest point should not couple to a deeper neighbor")
		}
	})
}

func TestTransportFill(t *testing.T) {
	n, err := NewNetwork(heliumChainSpec(4))
	if err != nil {
		t.Fatal(err)
	}
	fill := TransportFill(n)
	if len(fill) != 3 {
		t.Fatalf("want 3 mobile unknowns in the fill, got %d", len(fill))
	}
	he4, _ := n.Find(Comp(4, 0, 0))
	for _, id := range fill {
		if id == he4.ID() {
			t.Error("immobile cluster should not appear in the transport fill")
		}
	}
}

func TestReactionsStep(t *testing.T) {
	const testTolerance = 1e-12

	s := testSim(t, 2, 1.0)
	he1, _ := s.Network.Find(Comp(1, 0, 0))
	for _, p := range s.Points {
		p.Ci[he1.ID()] = 1e-4
	}

	if err := Reactions()(s); err != nil {
		t.Fatal(err)
	}

	// The same update computed directly.
	s.Network.UpdateConcentrationsFromArray(s.Points[0].Ci)
	fluxes := make([]float64, s.Network.Size())
	s.Network.ComputeAllFluxes(fluxes)
	for i, f := range fluxes {
		if different(s.Points[0].Cf[i], f*s.Dt, testTolerance) {
			t.Errorf("unknown %d: want %g, got %g", i, f*s.Dt, s.Points[0].Cf[i])
		}
	}
}

func TestRetentionAndProfile(t *testing.T) {
	const testTolerance = 1e-12

	s := testSim(t, 2, 0.5)
	he1, _ := s.Network.Find(Comp(1, 0, 0))
	he2, _ := s.Network.Find(Comp(2, 0, 0))
	s.Points[0].Ci[he1.ID()] = 2
	s.Points[1].Ci[he2.ID()] = 3

	he, v, i := s.Retention()
	// One He1 at 2 nm⁻³ and one He2 at 3 nm⁻³ over half-nm cells.
	if different(he, 0.5*2+0.5*3*2, testTolerance) {
		t.Errorf("want helium retention 4, got %g", he)
	}
	if v != 0 || i != 0 {
		t.Errorf("want no vacancy or interstitial content, got %g, %g", v, i)
	}

	depth, conc := s.Profile(he1.ID())
	if len(depth) != 2 || depth[0] != 0.5 || depth[1] != 1.0 {
		t.Errorf("unexpected depths %v", depth)
	}
	if conc[0] != 2 || conc[1] != 0 {
		t.Errorf("unexpected profile %v", conc)
	}
}
