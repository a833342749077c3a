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

import "math"

// ProductionReaction is a forward reaction First + Second -> product(s).
// It is shared by every reactant that participates in it, and it is the
// sole owner of the forward rate constant.
type ProductionReaction struct {
	First, Second Reactant

	// KConstant is the temperature-dependent forward rate constant,
	// recomputed by the network on every temperature change.
	KConstant float64
}

// computeRate sets the diffusion-limited forward rate constant
// 4*pi*(rA+rB)*(DA+DB) from the current diffusion coefficients of the
// two reactants.
func (p *ProductionReaction) computeRate() {
	r := p.First.Radius() + p.Second.Radius()
	d := p.First.DiffusionCoefficient() + p.Second.DiffusionCoefficient()
	p.KConstant = 4 * math.Pi * r * d
}

// DissociationReaction is a reverse reaction Dissociating -> First + Second.
// Its rate constant is derived from the forward rate of the corresponding
// production reaction and the binding energy of the emitted pair.
type DissociationReaction struct {
	Dissociating  Reactant
	First, Second Reactant

	// Reverse is the production reaction First + Second -> Dissociating
	// whose forward rate sets the scale of the reverse rate.
	Reverse *ProductionReaction

	// BindingEnergy in eV; computed from formation energies at network
	// construction and fixed thereafter.
	BindingEnergy float64
	bindingSet    bool

	// KConstant is the temperature-dependent reverse rate constant.
	KConstant float64
}

// computeRate sets the reverse rate constant
// kPlus * exp(-Eb/(kB*T)) / atomicVolume, where kPlus is the forward rate
// of the re-association reaction. A non-finite or non-positive binding
// energy disables the reaction.
func (d *DissociationReaction) computeRate(temperature, atomicVolume float64) {
	if math.IsInf(d.BindingEnergy, 1) || d.BindingEnergy <= 0 {
		d.KConstant = 0
		return
	}
	d.KConstant = d.Reverse.KConstant *
		math.Exp(-d.BindingEnergy/(kBoltzmann*temperature)) / atomicVolume
}

// productionKey identifies a production reaction by the ids of its
// reactants, order-independent.
type productionKey [2]int

func makeProductionKey(a, b Reactant) productionKey {
	i, j := a.ID(), b.ID()
	if i > j {
		i, j = j, i
	}
	return productionKey{i, j}
}

// dissociationKey identifies a dissociation reaction by the ids of the
// dissociating cluster and the two fragments, fragment order-independent.
type dissociationKey [3]int

func makeDissociationKey(dissociating, a, b Reactant) dissociationKey {
	i, j := a.ID(), b.ID()
	if i > j {
		i, j = j, i
	}
	return dissociationKey{dissociating.ID(), i, j}
}

// reactionCatalog deduplicates reactions across the network so that each
// physically distinct reaction is represented by exactly one object.
type reactionCatalog struct {
	productions   map[productionKey]*ProductionReaction
	dissociations map[dissociationKey]*DissociationReaction
}

func newReactionCatalog() *reactionCatalog {
	return &reactionCatalog{
		productions:   make(map[productionKey]*ProductionReaction),
		dissociations: make(map[dissociationKey]*DissociationReaction),
	}
}

// production returns the unique production reaction between a and b,
// creating it on first use.
func (c *reactionCatalog) production(a, b Reactant) *ProductionReaction {
	key := makeProductionKey(a, b)
	if r, ok := c.productions[key]; ok {
		return r
	}
	r := &ProductionReaction{First: a, Second: b}
	c.productions[key] = r
	return r
}

// dissociation returns the unique dissociation reaction of dissociating
// into a and b, creating it on first use together with its reverse
// production reaction.
func (c *reactionCatalog) dissociation(dissociating, a, b Reactant) *DissociationReaction {
	key := makeDissociationKey(dissociating, a, b)
	if r, ok := c.dissociations[key]; ok {
		return r
	}
	r := &DissociationReaction{
		Dissociating: dissociating,
		First:        a,
		Second:       b,
		Reverse:      c.production(a, b),
	}
	c.dissociations[key] = r
	return r
}
