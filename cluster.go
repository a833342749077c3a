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

// clusterPair records one production reaction A + B -> this cluster,
// together with the normalized offsets at which each (possibly grouped)
// reactant's concentration must be evaluated for this exact product.
type clusterPair struct {
	first, second Reactant
	reaction      *ProductionReaction

	firstDistanceHe, firstDistanceV   float64
	secondDistanceHe, secondDistanceV float64
}

// combiningCluster records one combination reaction this + other -> product,
// with the offsets for the combining partner.
type combiningCluster struct {
	combining Reactant
	reaction  *ProductionReaction

	distanceHe, distanceV float64
}

// dissociatingPair records one dissociation parent -> this + other, with the
// offsets for the (possibly grouped) parent.
type dissociatingPair struct {
	dissociating Reactant
	other        Reactant
	reaction     *DissociationReaction

	distanceHe, distanceV float64
}

// Cluster is an elementary reactant with a single exact composition and a
// single unknown in the concentration vector.
type Cluster struct {
	reactantBase

	reacting     []clusterPair
	combining    []combiningCluster
	dissociating []dissociatingPair
	emitting     []*DissociationReaction
}

// NewCluster creates an elementary cluster. The id is assigned later by the
// network.
func NewCluster(comp Composition, energetics ClusterEnergetics) *Cluster {
	return &Cluster{
		reactantBase: reactantBase{
			name:            comp.String(),
			comp:            comp,
			radius:          energetics.Radius,
			formationEnergy: energetics.FormationEnergy,
			migrationEnergy: energetics.MigrationEnergy,
			diffusionFactor: energetics.DiffusionFactor,
		},
	}
}

func (c *Cluster) Grouped() bool   { return false }
func (c *Cluster) HeMomentID() int { return c.id }
func (c *Cluster) VMomentID() int  { return c.id }

func (c *Cluster) ConcentrationAt(distHe, distV float64) float64 { return c.concentration }
func (c *Cluster) HeMoment() float64                             { return 0 }
func (c *Cluster) VMoment() float64                              { return 0 }
func (c *Cluster) HeDistance(nHe int) float64                    { return 0 }
func (c *Cluster) VDistance(nV int) float64                      { return 0 }
func (c *Cluster) HeMomentFlux() float64                         { return 0 }
func (c *Cluster) VMomentFlux() float64                          { return 0 }

func (c *Cluster) updateFromArray(concentrations []float64) {
	c.concentration = concentrations[c.id]
}

func (c *Cluster) addProduction(p clusterPair)       { c.reacting = append(c.reacting, p) }
func (c *Cluster) addCombination(cc combiningCluster) { c.combining = append(c.combining, cc) }
func (c *Cluster) addDissociation(d dissociatingPair) {
	c.dissociating = append(c.dissociating, d)
}
func (c *Cluster) addEmission(r *DissociationReaction) { c.emitting = append(c.emitting, r) }

// resetConnectivities rebuilds the connectivity set from the reaction lists.
// Partner moment unknowns are included because grouped partners contribute
// through their moments.
func (c *Cluster) resetConnectivities() {
	c.resetConnectivity()
	c.connect(c.id)
	for _, p := range c.reacting {
		c.connect(p.first.ID(), p.first.HeMomentID(), p.first.VMomentID())
		c.connect(p.second.ID(), p.second.HeMomentID(), p.second.VMomentID())
	}
	for _, cc := range c.combining {
		c.connect(cc.combining.ID(), cc.combining.HeMomentID(), cc.combining.VMomentID())
	}
	for _, d := range c.dissociating {
		c.connect(d.dissociating.ID(), d.dissociating.HeMomentID(), d.dissociating.VMomentID())
	}
}

// TotalFlux is the net production minus consumption rate of the cluster's
// concentration at the current state.
func (c *Cluster) TotalFlux() float64 {
	return c.productionFlux() - c.combinationFlux() +
		c.dissociationFlux() - c.emissionFlux()
}

func (c *Cluster) productionFlux() float64 {
	var flux float64
	for i := range c.reacting {
		p := &c.reacting[i]
		flux += p.reaction.KConstant *
			p.first.ConcentrationAt(p.firstDistanceHe, p.firstDistanceV) *
			p.second.ConcentrationAt(p.secondDistanceHe, p.secondDistanceV)
	}
	return flux
}

func (c *Cluster) combinationFlux() float64 {
	var flux float64
	for i := range c.combining {
		cc := &c.combining[i]
		flux += cc.reaction.KConstant *
			cc.combining.ConcentrationAt(cc.distanceHe, cc.distanceV)
	}
	return flux * c.concentration
}

func (c *Cluster) dissociationFlux() float64 {
	var flux float64
	for i := range c.dissociating {
		d := &c.dissociating[i]
		flux += d.reaction.KConstant *
			d.dissociating.ConcentrationAt(d.distanceHe, d.distanceV)
	}
	return flux
}

func (c *Cluster) emissionFlux() float64 {
	var flux float64
	for _, r := range c.emitting {
		flux += r.KConstant
	}
	return flux * c.concentration
}

// PartialDerivatives adds d(TotalFlux)/d(unknown) into partials for every
// connected unknown. partials must have network-size length and is not
// cleared here.
func (c *Cluster) PartialDerivatives(partials []float64) {
	// Production: flux = k * CA(dA) * CB(dB).
	for i := range c.reacting {
		p := &c.reacting[i]
		k := p.reaction.KConstant
		cA := p.first.ConcentrationAt(p.firstDistanceHe, p.firstDistanceV)
		cB := p.second.ConcentrationAt(p.secondDistanceHe, p.secondDistanceV)
		partials[p.first.ID()] += k * cB
		partials[p.first.HeMomentID()] += k * cB * p.firstDistanceHe
		partials[p.first.VMomentID()] += k * cB * p.firstDistanceV
		partials[p.second.ID()] += k * cA
		partials[p.second.HeMomentID()] += k * cA * p.secondDistanceHe
		partials[p.second.VMomentID()] += k * cA * p.secondDistanceV
	}
	// Combination: flux = -k * C(this) * Ccomb(d).
	for i := range c.combining {
		cc := &c.combining[i]
		k := cc.reaction.KConstant
		partials[c.id] -= k * cc.combining.ConcentrationAt(cc.distanceHe, cc.distanceV)
		partials[cc.combining.ID()] -= k * c.concentration
		partials[cc.combining.HeMomentID()] -= k * c.concentration * cc.distanceHe
		partials[cc.combining.VMomentID()] -= k * c.concentration * cc.distanceV
	}
	// Dissociation: flux = k * Cparent(d).
	for i := range c.dissociating {
		d := &c.dissociating[i]
		k := d.reaction.KConstant
		partials[d.dissociating.ID()] += k
		partials[d.dissociating.HeMomentID()] += k * d.distanceHe
		partials[d.dissociating.VMomentID()] += k * d.distanceV
	}
	// Emission: flux = -k * C(this).
	for _, r := range c.emitting {
		partials[c.id] -= r.KConstant
	}
}

func (c *Cluster) HeMomentPartialDerivatives(partials []float64) {}
func (c *Cluster) VMomentPartialDerivatives(partials []float64)  {}
