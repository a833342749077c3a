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

package tungsten

import (
	"math"
	"testing"

	"github.com/spatialmodel/clusterdyn"
)

func TestFormationEnergy(t *testing.T) {
	// Tabulated small clusters.
	if got := FormationEnergy(clusterdyn.Comp(1, 0, 0)); got != 6.15 {
		t.Errorf("He1: want 6.15, got %g", got)
	}
	if got := FormationEnergy(clusterdyn.Comp(0, 0, 3)); got != 25.6 {
		t.Errorf("I3: want 25.6, got %g", got)
	}
	// Voids follow the capillarity scaling.
	want := 3.6 * math.Pow(8, 2.0/3.0)
	if got := FormationEnergy(clusterdyn.Comp(0, 8, 0)); math.Abs(got-want) > 1e-12 {
		t.Errorf("V8: want %g, got %g", want, got)
	}
	// Filling a void with helium costs more the fuller it gets.
	e1 := FormationEnergy(clusterdyn.Comp(1, 4, 0))
	e2 := FormationEnergy(clusterdyn.Comp(8, 4, 0))
	if (e2-FormationEnergy(clusterdyn.Comp(0, 4, 0)))/8 <= e1-FormationEnergy(clusterdyn.Comp(0, 4, 0)) {
		t.Errorf("per-atom filling cost should grow: %g, %g", e1, e2)
	}
	// Beyond the tables the energy keeps growing.
	if FormationEnergy(clusterdyn.Comp(10, 0, 0)) <= FormationEnergy(clusterdyn.Comp(8, 0, 0)) {
		t.Error("helium formation energy should grow past the table")
	}
}

func TestNetworkGeneration(t *testing.T) {
	opts := DefaultOptions()
	opts.Temperature = 1000
	spec := Network(opts)
	n, err := clusterdyn.NewNetwork(spec)
	if err != nil {
		t.Fatal(err)
	}

	// All pure clusters plus the ungrouped mixed region.
	wantClusters := opts.MaxHe + opts.MaxV + opts.MaxI
	for v := 1; v < opts.GroupingMinV; v++ {
		wantClusters += maxHeForV(v, opts.MaxHePerV)
	}
	if n.NumClusters() != wantClusters {
		t.Errorf("want %d elementary clusters, got %d", wantClusters, n.NumClusters())
	}
	if n.NumGroups() == 0 {
		t.Error("default options should produce groups")
	}

	// Every mixed composition in the grouped region is covered exactly
	// once, by a group.
	for v := opts.GroupingMinV; v <= opts.MaxV; v++ {
		for he := 1; he <= maxHeForV(v, opts.MaxHePerV); he++ {
			r, ok := n.Find(clusterdyn.Comp(he, v, 0))
			if !ok {
				t.Fatalf("He%dV%d not covered", he, v)
			}
			if !r.Grouped() {
				t.Fatalf("He%dV%d should be grouped", he, v)
			}
		}
	}
	// Nothing beyond the ratio bound is tracked.
	if _, ok := n.Find(clusterdyn.Comp(maxHeForV(12, opts.MaxHePerV)+1, 12, 0)); ok {
		t.Error("composition beyond the ratio bound should not be tracked")
	}

	// Small helium and the single vacancy diffuse, large clusters do not.
	he1, _ := n.Find(clusterdyn.Comp(1, 0, 0))
	if he1.DiffusionCoefficient() <= 0 {
		t.Error("He1 should be mobile")
	}
	v2, _ := n.Find(clusterdyn.Comp(0, 2, 0))
	if v2.DiffusionCoefficient() != 0 {
		t.Error("V2 should be immobile")
	}
}

func TestGroupRegionTiling(t *testing.T) {
	groups := groupRegion(11, 18, 4, 4, 4)
	seen := make(map[clusterdyn.Composition]int)
	for gi, g := range groups {
		if len(g.Comps) == 0 {
			t.Fatalf("group %d is empty", gi)
		}
		if g.HeWidth < 1 || g.VWidth < 1 {
			t.Fatalf("group %d has bad widths %dx%d", gi, g.HeWidth, g.VWidth)
		}
		for _, c := range g.Comps {
			seen[c]++
		}
	}
	for c, count := range seen {
		if count != 1 {
			t.Errorf("%v covered %d times", c, count)
		}
	}
	for v := 11; v <= 18; v++ {
		for he := 1; he <= 4*v; he++ {
			if seen[clusterdyn.Comp(he, v, 0)] != 1 {
				t.Errorf("He%dV%d not tiled", he, v)
			}
		}
	}
}

func TestMutationRulesResolve(t *testing.T) {
	opts := DefaultOptions()
	opts.Temperature = 1000
	n, err := clusterdyn.NewNetwork(Network(opts))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := clusterdyn.NewTrapMutation(n, MutationRules(), 1e4); err != nil {
		t.Errorf("default rules should resolve against the default network: %v", err)
	}
}

func TestSinkStrengths(t *testing.T) {
	opts := DefaultOptions()
	n, err := clusterdyn.NewNetwork(Network(opts))
	if err != nil {
		t.Fatal(err)
	}
	strengths := SinkStrengths(n)
	if len(strengths) != 7 {
		t.Errorf("want 7 advected sizes, got %d", len(strengths))
	}
	he1, _ := n.Find(clusterdyn.Comp(1, 0, 0))
	if strengths[he1.ID()] != 2.28e-3 {
		t.Errorf("He1 sink strength: want 2.28e-3, got %g", strengths[he1.ID()])
	}
}

func TestImplantationProfile(t *testing.T) {
	if ImplantationProfile(0) <= 0 {
		t.Error("profile should deposit at the surface")
	}
	// The fit dips negative beyond the implantation range and is clipped.
	if got := ImplantationProfile(30); got != 0 {
		t.Errorf("deep profile: want 0, got %g", got)
	}
	// A peak exists inside the implantation depth.
	var peak float64
	for x := 0.0; x <= ImplantationDepth; x += 0.1 {
		peak = math.Max(peak, ImplantationProfile(x))
	}
	if peak <= ImplantationProfile(ImplantationDepth) {
		t.Error("profile should peak inside the implantation depth")
	}
}
