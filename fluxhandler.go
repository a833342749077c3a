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

// IncidentFlux describes the implantation of single helium atoms below the
// exposed surface.
type IncidentFlux struct {
	// Amplitude is the total incident flux [He nm⁻² s⁻¹].
	Amplitude float64 `desc:"Incident helium flux" units:"He/nm²/s"`

	// Profile is the unnormalized deposition shape as a function of depth
	// [nm]; it is normalized over the grid so the deposited total matches
	// Amplitude.
	Profile func(x float64) float64

	// MaxDepth is the deepest point that receives any flux [nm].
	MaxDepth float64 `desc:"Maximum implantation depth" units:"nm"`
}

// Manipulator returns a function adding the incident helium flux to the
// single-helium concentration of near-surface points. The network must
// track the single-helium cluster.
func (f *IncidentFlux) Manipulator(n *Network, points []*GridPoint) (PointManipulator, error) {
	he1, ok := n.FindSingle(He, 1)
	if !ok {
		return nil, configErrorf("incident flux requires the single-helium cluster in the network")
	}
	id := he1.ID()

	var norm float64
	for _, p := range points {
		if p.X <= f.MaxDepth {
			v := f.Profile(p.X)
			if v > 0 {
				norm += v * p.Dx
			}
		}
	}
	if norm <= 0 {
		return nil, configErrorf("incident flux profile deposits nothing within %g nm", f.MaxDepth)
	}
	scale := f.Amplitude / norm

	return func(p *GridPoint, Dt float64) {
		if p.X > f.MaxDepth {
			return
		}
		v := f.Profile(p.X)
		if v <= 0 {
			return
		}
		p.Cf[id] += scale * v * Dt
	}, nil
}
