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
	"fmt"
	"math"
)

// superProductionPair aggregates every sub-reaction A + B -> (member of this
// group) sharing the same reactant pair into one entry. a[i][j][k] couples
// moment i of the first reactant with moment j of the second reactant into
// output moment k, where moment 0 is the value, 1 the helium moment, and 2
// the vacancy moment.
type superProductionPair struct {
	first, second Reactant
	reaction      *ProductionReaction
	a             [3][3][3]float64
}

// superCombiningPair aggregates this + B -> product sub-reactions by
// combining partner. a[i][j][k] couples this group's moment i with partner
// moment j into output moment k.
type superCombiningPair struct {
	combining Reactant
	reaction  *ProductionReaction
	a         [3][3][3]float64
}

// superDissociationPair aggregates parent -> (member of this group) + other
// sub-reactions. a[i][k] couples parent moment i into output moment k.
type superDissociationPair struct {
	dissociating Reactant
	other        Reactant
	reaction     *DissociationReaction
	a            [3][3]float64
}

// superEmissionPair aggregates (member of this group) -> first + second
// sub-reactions. a[i][k] couples this group's moment i into output moment k.
type superEmissionPair struct {
	first, second Reactant
	reaction      *DissociationReaction
	a             [3][3]float64
}

// SuperCluster represents a rectangular region of mixed helium-vacancy
// compositions with three unknowns: the value l0 (stored as the base
// concentration) and the first moments l1He and l1V in each composition
// direction. Reaction contributions from every member composition are
// folded at construction into fixed coefficient tables so evaluation cost
// does not depend on the number of member compositions.
type SuperCluster struct {
	reactantBase

	heMomID, vMomID int

	meanHe, meanV float64
	nTot          int

	heWidth, vWidth  int
	heBounds         IntegerRange
	vBounds          IntegerRange
	dispersionHe     float64
	dispersionV      float64

	l1He, l1V float64

	heMomentFlux, vMomentFlux float64

	members map[Composition]struct{}

	reacting     []superProductionPair
	combining    []superCombiningPair
	dissociating []superDissociationPair
	emitting     []superEmissionPair

	reactingIdx     map[productionKey]int
	combiningIdx    map[int]int
	dissociatingIdx map[[2]int]int
	emittingIdx     map[[2]int]int

	heMomentPartials []float64
	vMomentPartials  []float64
}

// NewSuperCluster creates a super-cluster covering the given member
// compositions, which must form a rectangle of heWidth by vWidth amounts
// (minus any invalid corners). The lattice constant sets the mean reaction
// radius of the group.
func NewSuperCluster(members []Composition, heWidth, vWidth int, latticeConstant float64) *SuperCluster {
	s := &SuperCluster{
		nTot:            len(members),
		heWidth:         heWidth,
		vWidth:          vWidth,
		members:         make(map[Composition]struct{}, len(members)),
		reactingIdx:     make(map[productionKey]int),
		combiningIdx:    make(map[int]int),
		dissociatingIdx: make(map[[2]int]int),
		emittingIdx:     make(map[[2]int]int),
	}

	// Grouped clusters are immobile and never dissociate as a whole, so
	// they carry no formation energy or mobility of their own.
	s.formationEnergy = 0
	s.migrationEnergy = math.Inf(1)
	s.diffusionFactor = 0

	var sumHe, sumV, heSquare, vSquare, radius float64
	for _, c := range members {
		s.members[c] = struct{}{}
		sumHe += float64(c.NHe)
		sumV += float64(c.NV)
		heSquare += float64(c.NHe * c.NHe)
		vSquare += float64(c.NV * c.NV)
		radius += vacancyClusterRadius(c.NV, latticeConstant)
	}
	nTot := float64(s.nTot)
	s.meanHe = sumHe / nTot
	s.meanV = sumV / nTot
	s.radius = radius / nTot
	s.comp = Composition{NHe: int(s.meanHe), NV: int(s.meanV)}
	s.name = fmt.Sprintf("He%gV%g", s.meanHe, s.meanV)

	if heWidth == 1 {
		s.dispersionHe = 1
	} else {
		s.dispersionHe = 2 * (heSquare - s.meanHe*s.meanHe*nTot) /
			(nTot * float64(heWidth-1))
	}
	if vWidth == 1 {
		s.dispersionV = 1
	} else {
		s.dispersionV = 2 * (vSquare - s.meanV*s.meanV*nTot) /
			(nTot * float64(vWidth-1))
	}

	s.heBounds = IntegerRange{
		Lower: int(s.meanHe-float64(heWidth)/2.0) + 1,
		Upper: int(s.meanHe-float64(heWidth)/2.0+float64(heWidth)) + 1,
	}
	s.vBounds = IntegerRange{
		Lower: int(s.meanV-float64(vWidth)/2.0) + 1,
		Upper: int(s.meanV-float64(vWidth)/2.0+float64(vWidth)) + 1,
	}

	return s
}

// vacancyClusterRadius is the reaction radius of a cluster containing nV
// vacancies in a lattice with the given constant.
func vacancyClusterRadius(nV int, latticeConstant float64) float64 {
	cube := latticeConstant * latticeConstant * latticeConstant
	return (math.Sqrt(3.0)/4.0)*latticeConstant +
		math.Cbrt(3.0*cube*float64(nV)/(8.0*math.Pi)) -
		math.Cbrt(3.0*cube/(8.0*math.Pi))
}

func (s *SuperCluster) Grouped() bool   { return true }
func (s *SuperCluster) HeMomentID() int { return s.heMomID }
func (s *SuperCluster) VMomentID() int  { return s.vMomID }

// NumClusters is the number of member compositions folded into the group.
func (s *SuperCluster) NumClusters() int { return s.nTot }

// MeanHe and MeanV are the mean composition of the group.
func (s *SuperCluster) MeanHe() float64 { return s.meanHe }
func (s *SuperCluster) MeanV() float64  { return s.meanV }

// HeRange and VRange are the half-open amount ranges covered by the group.
func (s *SuperCluster) HeRange() IntegerRange { return s.heBounds }
func (s *SuperCluster) VRange() IntegerRange  { return s.vBounds }

// Contains reports whether the exact composition is a member of the group.
func (s *SuperCluster) Contains(c Composition) bool {
	_, ok := s.members[c]
	return ok
}

func (s *SuperCluster) HeMoment() float64 { return s.l1He }
func (s *SuperCluster) VMoment() float64  { return s.l1V }

// SetMoments sets the first-moment unknowns directly; mainly useful in
// tests and when restoring state.
func (s *SuperCluster) SetMoments(l1He, l1V float64) {
	s.l1He = l1He
	s.l1V = l1V
}

// HeDistance maps an exact helium amount onto [-1, 1] across the group
// width, zero when the group spans a single amount.
func (s *SuperCluster) HeDistance(nHe int) float64 {
	if s.heWidth == 1 {
		return 0
	}
	return 2 * (float64(nHe) - s.meanHe) / float64(s.heWidth-1)
}

// VDistance is the vacancy analogue of HeDistance.
func (s *SuperCluster) VDistance(nV int) float64 {
	if s.vWidth == 1 {
		return 0
	}
	return 2 * (float64(nV) - s.meanV) / float64(s.vWidth-1)
}

func (s *SuperCluster) heFactor(nHe int) float64 {
	return (float64(nHe) - s.meanHe) / s.dispersionHe
}

func (s *SuperCluster) vFactor(nV int) float64 {
	return (float64(nV) - s.meanV) / s.dispersionV
}

// ConcentrationAt evaluates the first-order expansion of the member
// concentration at the given normalized offsets.
func (s *SuperCluster) ConcentrationAt(distHe, distV float64) float64 {
	return s.concentration + distHe*s.l1He + distV*s.l1V
}

// TotalConcentration sums the reconstructed concentration over every member
// composition.
func (s *SuperCluster) TotalConcentration() float64 {
	var conc float64
	for c := range s.members {
		conc += s.ConcentrationAt(s.HeDistance(c.NHe), s.VDistance(c.NV))
	}
	return conc
}

// TotalHeliumConcentration sums member concentration weighted by helium
// content.
func (s *SuperCluster) TotalHeliumConcentration() float64 {
	var conc float64
	for c := range s.members {
		conc += s.ConcentrationAt(s.HeDistance(c.NHe), s.VDistance(c.NV)) * float64(c.NHe)
	}
	return conc
}

// TotalVacancyConcentration sums member concentration weighted by vacancy
// content.
func (s *SuperCluster) TotalVacancyConcentration() float64 {
	var conc float64
	for c := range s.members {
		conc += s.ConcentrationAt(s.HeDistance(c.NHe), s.VDistance(c.NV)) * float64(c.NV)
	}
	return conc
}

func (s *SuperCluster) updateFromArray(concentrations []float64) {
	s.concentration = concentrations[s.id]
	s.l1He = concentrations[s.heMomID]
	s.l1V = concentrations[s.vMomID]
}

// distanceVector returns the moment evaluation vector (1, dHe, dV) of a
// reactant at an exact composition; for elementary reactants the offsets
// are zero.
func distanceVector(r Reactant, c Composition) [3]float64 {
	return [3]float64{1, r.HeDistance(c.NHe), r.VDistance(c.NV)}
}

// factorVector returns (1, heFactor, vFactor) of this group at the member
// composition receiving or losing the sub-reaction's flux.
func (s *SuperCluster) factorVector(c Composition) [3]float64 {
	return [3]float64{1, s.heFactor(c.NHe), s.vFactor(c.NV)}
}

// addProduction folds one sub-reaction first + second -> product, where
// product is a member of this group, into the aggregated coefficients.
func (s *SuperCluster) addProduction(r *ProductionReaction, first, second, product Composition) {
	key := makeProductionKey(r.First, r.Second)
	idx, ok := s.reactingIdx[key]
	if !ok {
		idx = len(s.reacting)
		s.reacting = append(s.reacting, superProductionPair{
			first: r.First, second: r.Second, reaction: r,
		})
		s.reactingIdx[key] = idx
	}
	p := &s.reacting[idx]

	dA := distanceVector(r.First, first)
	dB := distanceVector(r.Second, second)
	f := s.factorVector(product)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				p.a[i][j][k] += dA[i] * dB[j] * f[k]
			}
		}
	}
}

// addCombination folds one sub-reaction this(member) + partner -> product
// into the aggregated coefficients.
func (s *SuperCluster) addCombination(r *ProductionReaction, member, partnerComp Composition, partner Reactant) {
	idx, ok := s.combiningIdx[partner.ID()]
	if !ok {
		idx = len(s.combining)
		s.combining = append(s.combining, superCombiningPair{
			combining: partner, reaction: r,
		})
		s.combiningIdx[partner.ID()] = idx
	}
	cc := &s.combining[idx]

	dA := distanceVector(s, member)
	dB := distanceVector(partner, partnerComp)
	f := s.factorVector(member)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				cc.a[i][j][k] += dA[i] * dB[j] * f[k]
			}
		}
	}
}

// addDissociation folds one sub-reaction parent -> this(member) + other
// into the aggregated coefficients.
func (s *SuperCluster) addDissociation(r *DissociationReaction, parent, member Composition, other Reactant) {
	key := [2]int{r.Dissociating.ID(), other.ID()}
	idx, ok := s.dissociatingIdx[key]
	if !ok {
		idx = len(s.dissociating)
		s.dissociating = append(s.dissociating, superDissociationPair{
			dissociating: r.Dissociating, other: other, reaction: r,
		})
		s.dissociatingIdx[key] = idx
	}
	d := &s.dissociating[idx]

	dA := distanceVector(r.Dissociating, parent)
	f := s.factorVector(member)
	for i := 0; i < 3; i++ {
		for k := 0; k < 3; k++ {
			d.a[i][k] += dA[i] * f[k]
		}
	}
}

// addEmission folds one sub-reaction this(member) -> first + second into
// the aggregated coefficients.
func (s *SuperCluster) addEmission(r *DissociationReaction, member Composition) {
	key := [2]int{r.First.ID(), r.Second.ID()}
	idx, ok := s.emittingIdx[key]
	if !ok {
		idx = len(s.emitting)
		s.emitting = append(s.emitting, superEmissionPair{
			first: r.First, second: r.Second, reaction: r,
		})
		s.emittingIdx[key] = idx
	}
	e := &s.emitting[idx]

	dA := distanceVector(s, member)
	f := s.factorVector(member)
	for i := 0; i < 3; i++ {
		for k := 0; k < 3; k++ {
			e.a[i][k] += dA[i] * f[k]
		}
	}
}

func (s *SuperCluster) resetConnectivities() {
	s.resetConnectivity()
	s.connect(s.id, s.heMomID, s.vMomID)
	for i := range s.reacting {
		p := &s.reacting[i]
		s.connect(p.first.ID(), p.first.HeMomentID(), p.first.VMomentID())
		s.connect(p.second.ID(), p.second.HeMomentID(), p.second.VMomentID())
	}
	for i := range s.combining {
		cc := &s.combining[i]
		s.connect(cc.combining.ID(), cc.combining.HeMomentID(), cc.combining.VMomentID())
	}
	for i := range s.dissociating {
		d := &s.dissociating[i]
		s.connect(d.dissociating.ID(), d.dissociating.HeMomentID(), d.dissociating.VMomentID())
	}
	// Emission only involves this group's own unknowns.
}

// setMomentPartialsSize sizes the per-instance moment partial buffers to
// the network's number of unknowns.
func (s *SuperCluster) setMomentPartialsSize(dof int) {
	s.heMomentPartials = make([]float64, dof)
	s.vMomentPartials = make([]float64, dof)
}

// momentVector is (l0, l1He, l1V) of a reactant.
func momentVector(r Reactant) [3]float64 {
	return [3]float64{r.ConcentrationAt(0, 0), r.HeMoment(), r.VMoment()}
}

// TotalFlux returns the net flux of l0 and, as a side effect, accumulates
// the moment fluxes, which must be read immediately afterwards through
// HeMomentFlux and VMomentFlux.
func (s *SuperCluster) TotalFlux() float64 {
	s.heMomentFlux = 0
	s.vMomentFlux = 0
	return s.productionFlux() - s.combinationFlux() +
		s.dissociationFlux() - s.emissionFlux()
}

func (s *SuperCluster) HeMomentFlux() float64 { return s.heMomentFlux }
func (s *SuperCluster) VMomentFlux() float64  { return s.vMomentFlux }

func (s *SuperCluster) productionFlux() float64 {
	var flux float64
	nTot := float64(s.nTot)
	for n := range s.reacting {
		p := &s.reacting[n]
		value := p.reaction.KConstant / nTot
		lA := momentVector(p.first)
		lB := momentVector(p.second)
		var out [3]float64
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				prod := lA[i] * lB[j]
				for k := 0; k < 3; k++ {
					out[k] += p.a[i][j][k] * prod
				}
			}
		}
		flux += value * out[0]
		s.heMomentFlux += value * out[1]
		s.vMomentFlux += value * out[2]
	}
	return flux
}

func (s *SuperCluster) combinationFlux() float64 {
	var flux float64
	nTot := float64(s.nTot)
	lA := momentVector(s)
	for n := range s.combining {
		cc := &s.combining[n]
		value := cc.reaction.KConstant / nTot
		lB := momentVector(cc.combining)
		var out [3]float64
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				prod := lA[i] * lB[j]
				for k := 0; k < 3; k++ {
					out[k] += cc.a[i][j][k] * prod
				}
			}
		}
		flux += value * out[0]
		s.heMomentFlux -= value * out[1]
		s.vMomentFlux -= value * out[2]
	}
	return flux
}

func (s *SuperCluster) dissociationFlux() float64 {
	var flux float64
	nTot := float64(s.nTot)
	for n := range s.dissociating {
		d := &s.dissociating[n]
		value := d.reaction.KConstant / nTot
		lA := momentVector(d.dissociating)
		var out [3]float64
		for i := 0; i < 3; i++ {
			for k := 0; k < 3; k++ {
				out[k] += d.a[i][k] * lA[i]
			}
		}
		flux += value * out[0]
		s.heMomentFlux += value * out[1]
		s.vMomentFlux += value * out[2]
	}
	return flux
}

func (s *SuperCluster) emissionFlux() float64 {
	var flux float64
	nTot := float64(s.nTot)
	lA := momentVector(s)
	for n := range s.emitting {
		e := &s.emitting[n]
		value := e.reaction.KConstant / nTot
		var out [3]float64
		for i := 0; i < 3; i++ {
			for k := 0; k < 3; k++ {
				out[k] += e.a[i][k] * lA[i]
			}
		}
		flux += value * out[0]
		s.heMomentFlux -= value * out[1]
		s.vMomentFlux -= value * out[2]
	}
	return flux
}

// PartialDerivatives adds the partials of the l0 flux into partials and, as
// a side effect, recomputes the moment partial rows, which must be
// harvested immediately afterwards through HeMomentPartialDerivatives and
// VMomentPartialDerivatives.
func (s *SuperCluster) PartialDerivatives(partials []float64) {
	for _, id := range s.ConnectedIDs() {
		s.heMomentPartials[id] = 0
		s.vMomentPartials[id] = 0
	}
	s.productionPartials(partials)
	s.combinationPartials(partials)
	s.dissociationPartials(partials)
	s.emissionPartials(partials)
}

func (s *SuperCluster) productionPartials(partials []float64) {
	nTot := float64(s.nTot)
	for n := range s.reacting {
		p := &s.reacting[n]
		value := p.reaction.KConstant / nTot
		lA := momentVector(p.first)
		lB := momentVector(p.second)
		firstIDs := [3]int{p.first.ID(), p.first.HeMomentID(), p.first.VMomentID()}
		secondIDs := [3]int{p.second.ID(), p.second.HeMomentID(), p.second.VMomentID()}
		for i := 0; i < 3; i++ {
			var out [3]float64
			for j := 0; j < 3; j++ {
				for k := 0; k < 3; k++ {
					out[k] += p.a[i][j][k] * lB[j]
				}
			}
			partials[firstIDs[i]] += value * out[0]
			s.heMomentPartials[firstIDs[i]] += value * out[1]
			s.vMomentPartials[firstIDs[i]] += value * out[2]
		}
		for j := 0; j < 3; j++ {
			var out [3]float64
			for i := 0; i < 3; i++ {
				for k := 0; k < 3; k++ {
					out[k] += p.a[i][j][k] * lA[i]
				}
			}
			partials[secondIDs[j]] += value * out[0]
			s.heMomentPartials[secondIDs[j]] += value * out[1]
			s.vMomentPartials[secondIDs[j]] += value * out[2]
		}
	}
}

func (s *SuperCluster) combinationPartials(partials []float64) {
	nTot := float64(s.nTot)
	lA := momentVector(s)
	selfIDs := [3]int{s.id, s.heMomID, s.vMomID}
	for n := range s.combining {
		cc := &s.combining[n]
		value := cc.reaction.KConstant / nTot
		lB := momentVector(cc.combining)
		partnerIDs := [3]int{cc.combining.ID(), cc.combining.HeMomentID(), cc.combining.VMomentID()}
		for j := 0; j < 3; j++ {
			var out [3]float64
			for i := 0; i < 3; i++ {
				for k := 0; k < 3; k++ {
					out[k] += cc.a[i][j][k] * lA[i]
				}
			}
			partials[partnerIDs[j]] -= value * out[0]
			s.heMomentPartials[partnerIDs[j]] -= value * out[1]
			s.vMomentPartials[partnerIDs[j]] -= value * out[2]
		}
		for i := 0; i < 3; i++ {
			var out [3]float64
			for j := 0; j < 3; j++ {
				for k := 0; k < 3; k++ {
					out[k] += cc.a[i][j][k] * lB[j]
				}
			}
			partials[selfIDs[i]] -= value * out[0]
			s.heMomentPartials[selfIDs[i]] -= value * out[1]
			s.vMomentPartials[selfIDs[i]] -= value * out[2]
		}
	}
}

func (s *SuperCluster) dissociationPartials(partials []float64) {
	nTot := float64(s.nTot)
	for n := range s.dissociating {
		d := &s.dissociating[n]
		value := d.reaction.KConstant / nTot
		parentIDs := [3]int{d.dissociating.ID(), d.dissociating.HeMomentID(), d.dissociating.VMomentID()}
		for i := 0; i < 3; i++ {
			partials[parentIDs[i]] += value * d.a[i][0]
			s.heMomentPartials[parentIDs[i]] += value * d.a[i][1]
			s.vMomentPartials[parentIDs[i]] += value * d.a[i][2]
		}
	}
}

func (s *SuperCluster) emissionPartials(partials []float64) {
	nTot := float64(s.nTot)
	selfIDs := [3]int{s.id, s.heMomID, s.vMomID}
	for n := range s.emitting {
		e := &s.emitting[n]
		value := e.reaction.KConstant / nTot
		for i := 0; i < 3; i++ {
			partials[selfIDs[i]] -= value * e.a[i][0]
			s.heMomentPartials[selfIDs[i]] -= value * e.a[i][1]
			s.vMomentPartials[selfIDs[i]] -= value * e.a[i][2]
		}
	}
}

// HeMomentPartialDerivatives adds the helium moment row computed by the
// preceding PartialDerivatives call into partials.
func (s *SuperCluster) HeMomentPartialDerivatives(partials []float64) {
	for _, id := range s.ConnectedIDs() {
		partials[id] += s.heMomentPartials[id]
	}
}

// VMomentPartialDerivatives adds the vacancy moment row computed by the
// preceding PartialDerivatives call into partials.
func (s *SuperCluster) VMomentPartialDerivatives(partials []float64) {
	for _, id := range s.ConnectedIDs() {
		partials[id] += s.vMomentPartials[id]
	}
}
