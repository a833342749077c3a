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

// Diffusion returns a function that calculates Fickian diffusion of the
// mobile clusters along the depth axis using a central second difference.
// The exposed surface and the far boundary are absorbing: concentrations
// beyond them are zero.
func Diffusion(n *Network) PointManipulator {
	type diffuser struct {
		id int
		r  Reactant
	}
	var diffusers []diffuser
	for _, r := range n.Reactants() {
		if mobile(r) {
			diffusers = append(diffusers, diffuser{id: r.ID(), r: r})
		}
	}

	return func(p *GridPoint, Dt float64) {
		for _, d := range diffusers {
			coeff := d.r.DiffusionCoefficient()
			if coeff == 0 {
				continue
			}
			var left, right float64
			if p.prev != nil {
				left = p.prev.Ci[d.id]
			}
			if p.next != nil {
				right = p.next.Ci[d.id]
			}
			p.Cf[d.id] += Dt * coeff *
				(left - 2*p.Ci[d.id] + right) / (p.Dx * p.Dx)
		}
	}
}

// Advection returns a function that calculates the drift of mobile helium
// clusters toward the exposed surface, driven by the elastic interaction
// with it. sinkStrengths maps the unknown index of each advected cluster
// to its sink strength [eV nm³]; the drift velocity at depth x is
// 3 A D / (kB T x⁴). An upwind difference keeps the scheme stable, and
// material that drifts past the surface point is absorbed.
func Advection(n *Network, sinkStrengths map[int]float64) PointManipulator {
	type advected struct {
		id   int
		r    Reactant
		sink float64
	}
	var clusters []advected
	for _, r := range n.Reactants() {
		if a, ok := sinkStrengths[r.ID()]; ok && mobile(r) {
			clusters = append(clusters, advected{id: r.ID(), r: r, sink: a})
		}
	}

	return func(p *GridPoint, Dt float64) {
		temperature := p.Temperature
		if temperature <= 0 {
			temperature = n.Temperature()
		}
		kT := kBoltzmann * temperature
		for _, a := range clusters {
			coeff := a.r.DiffusionCoefficient()
			if coeff == 0 {
				continue
			}
			// Outgoing drift toward the surface.
			x4 := p.X * p.X * p.X * p.X
			out := 3 * a.sink * coeff * p.Ci[a.id] / (kT * x4)
			// Incoming drift from the deeper neighbor.
			var in float64
			if p.next != nil {
				xn := p.next.X
				xn4 := xn * xn * xn * xn
				in = 3 * a.sink * coeff * p.next.Ci[a.id] / (kT * xn4)
			}
			p.Cf[a.id] += Dt * (in - out) / p.Dx
		}
	}
}

// DiffusionPartials returns a function that visits the partial derivatives
// of the diffusion rate at a point with respect to the concentrations the
// rate depends on. offset is -1 for the shallower neighbor, 0 for the
// point itself, and 1 for the deeper neighbor; neighbors beyond the
// boundaries are not visited.
func DiffusionPartials(n *Network) func(p *GridPoint, visit func(id, offset int, value float64)) {
	var diffusers []Reactant
	for _, r := range n.Reactants() {
		if mobile(r) {
			diffusers = append(diffusers, r)
		}
	}

	return func(p *GridPoint, visit func(id, offset int, value float64)) {
		inv := 1 / (p.Dx * p.Dx)
		for _, r := range diffusers {
			coeff := r.DiffusionCoefficient()
			if coeff == 0 {
				continue
			}
			visit(r.ID(), 0, -2*coeff*inv)
			if p.prev != nil {
				visit(r.ID(), -1, coeff*inv)
			}
			if p.next != nil {
				visit(r.ID(), 1, coeff*inv)
			}
		}
	}
}

// AdvectionPartials returns a function that visits the partial derivatives
// of the surface-drift rate at a point, with the same offset convention as
// DiffusionPartials. The upwind scheme couples a point to itself and to
// its deeper neighbor only.
func AdvectionPartials(n *Network, sinkStrengths map[int]float64) func(p *GridPoint, visit func(id, offset int, value float64)) {
	type advected struct {
		r    Reactant
		sink float64
	}
	var clusters []advected
	for _, r := range n.Reactants() {
		if a, ok := sinkStrengths[r.ID()]; ok && mobile(r) {
			clusters = append(clusters, advected{r: r, sink: a})
		}
	}

	return func(p *GridPoint, visit func(id, offset int, value float64)) {
		temperature := p.Temperature
		if temperature <= 0 {
			temperature = n.Temperature()
		}
		kT := kBoltzmann * temperature
		for _, a := range clusters {
			coeff := a.r.DiffusionCoefficient()
			if coeff == 0 {
				continue
			}
			x4 := p.X * p.X * p.X * p.X
			visit(a.r.ID(), 0, -3*a.sink*coeff/(kT*x4*p.Dx))
			if p.next != nil {
				xn := p.next.X
				xn4 := xn * xn * xn * xn
				visit(a.r.ID(), 1, 3*a.sink*coeff/(kT*xn4*p.Dx))
			}
		}
	}
}

// TransportFill returns the unknown indices whose rates couple across
// neighboring grid points, for preallocating the off-diagonal blocks of a
// solver matrix. Mobility can change with temperature, so the fill covers
// every cluster that can diffuse at any temperature.
func TransportFill(n *Network) []int {
	var ids []int
	for _, r := range n.Reactants() {
		if mobile(r) {
			ids = append(ids, r.ID())
		}
	}
	return ids
}
