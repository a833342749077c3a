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
	"math"
	"sort"
)

// Reactant is a member of the reaction network: either an elementary
// cluster with an exact composition or a super-cluster covering a region
// of compositions. Every reactant owns one primary unknown; super-clusters
// own two additional moment unknowns.
type Reactant interface {
	// ID is the dense index of the primary unknown in the concentration
	// vector. IDs are assigned once at network construction and are
	// stable for the life of the network.
	ID() int

	// HeMomentID and VMomentID are the indices of the helium and vacancy
	// first-moment unknowns. For elementary clusters they equal ID, so
	// moment writes by partner reactions collapse onto the primary
	// unknown with zero coefficients.
	HeMomentID() int
	VMomentID() int

	Name() string

	// Composition is the exact composition of an elementary cluster, or
	// the mean composition of a super-cluster.
	Composition() Composition

	// Grouped reports whether the reactant is a super-cluster.
	Grouped() bool

	// Size is the total defect count of the (mean) composition.
	Size() int

	FormationEnergy() float64
	MigrationEnergy() float64
	DiffusionFactor() float64
	DiffusionCoefficient() float64
	Radius() float64

	// ConcentrationAt evaluates the concentration at the given normalized
	// composition offsets from the group mean. Elementary clusters ignore
	// the offsets.
	ConcentrationAt(distHe, distV float64) float64
	SetConcentration(c float64)

	// HeMoment and VMoment are the first-moment values of a super-cluster,
	// zero for elementary clusters.
	HeMoment() float64
	VMoment() float64

	// HeDistance and VDistance map an exact amount to its normalized
	// offset from the group mean, zero for elementary clusters and for
	// axes of width one.
	HeDistance(nHe int) float64
	VDistance(nV int) float64

	// TotalFlux is the net rate of change of the primary unknown from all
	// reactions the reactant participates in. For super-clusters it also
	// accumulates the moment fluxes, read immediately afterwards through
	// HeMomentFlux and VMomentFlux.
	TotalFlux() float64
	HeMomentFlux() float64
	VMomentFlux() float64

	// PartialDerivatives adds the partial derivatives of the primary
	// unknown's flux into partials, a caller-owned scratch slice of
	// network-size length. Only connected entries are touched.
	PartialDerivatives(partials []float64)

	// HeMomentPartialDerivatives and VMomentPartialDerivatives do the
	// same for the moment unknowns; elementary clusters leave the slice
	// untouched.
	HeMomentPartialDerivatives(partials []float64)
	VMomentPartialDerivatives(partials []float64)

	// ConnectedIDs lists, in ascending order, the indices of every
	// unknown the reactant's fluxes depend on.
	ConnectedIDs() []int

	setTemperature(temperature float64)
	updateFromArray(concentrations []float64)
	resetConnectivities()
}

// reactantBase carries the state shared by elementary clusters and
// super-clusters.
type reactantBase struct {
	id     int
	name   string
	comp   Composition
	radius float64

	formationEnergy float64
	migrationEnergy float64
	diffusionFactor float64
	diffusionCoeff  float64

	concentration float64

	connectivity map[int]struct{}
	connectedIDs []int
}

func (r *reactantBase) ID() int                       { return r.id }
func (r *reactantBase) Name() string                  { return r.name }
func (r *reactantBase) Composition() Composition      { return r.comp }
func (r *reactantBase) Size() int                     { return r.comp.Size() }
func (r *reactantBase) FormationEnergy() float64      { return r.formationEnergy }
func (r *reactantBase) MigrationEnergy() float64      { return r.migrationEnergy }
func (r *reactantBase) DiffusionFactor() float64      { return r.diffusionFactor }
func (r *reactantBase) DiffusionCoefficient() float64 { return r.diffusionCoeff }
func (r *reactantBase) Radius() float64               { return r.radius }
func (r *reactantBase) SetConcentration(c float64)    { r.concentration = c }

// setTemperature updates the Arrhenius diffusion coefficient. A zero
// diffusion factor marks an immobile cluster.
func (r *reactantBase) setTemperature(temperature float64) {
	if r.diffusionFactor == 0 {
		r.diffusionCoeff = 0
		return
	}
	r.diffusionCoeff = r.diffusionFactor *
		math.Exp(-r.migrationEnergy/(kBoltzmann*temperature))
}

func (r *reactantBase) resetConnectivity() {
	r.connectivity = make(map[int]struct{})
	r.connectedIDs = nil
}

func (r *reactantBase) connect(ids ...int) {
	for _, id := range ids {
		r.connectivity[id] = struct{}{}
	}
	r.connectedIDs = nil
}

func (r *reactantBase) ConnectedIDs() []int {
	if r.connectedIDs == nil {
		r.connectedIDs = make([]int, 0, len(r.connectivity))
		for id := range r.connectivity {
			r.connectedIDs = append(r.connectedIDs, id)
		}
		sort.Ints(r.connectedIDs)
	}
	return r.connectedIDs
}
