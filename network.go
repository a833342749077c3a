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
	"sort"

	"github.com/ctessum/sparse"
)

// ConfigurationError reports an invalid network specification.
type ConfigurationError struct {
	msg string
}

func (e ConfigurationError) Error() string { return e.msg }

func configErrorf(format string, args ...interface{}) error {
	return ConfigurationError{msg: fmt.Sprintf(format, args...)}
}

// ClusterEnergetics holds the per-cluster physical parameters. Energies are
// in eV, the diffusion factor in nm^2/s, and the radius in nm.
type ClusterEnergetics struct {
	FormationEnergy float64 `desc:"Formation energy" units:"eV"`
	MigrationEnergy float64 `desc:"Migration energy" units:"eV"`
	DiffusionFactor float64 `desc:"Diffusion prefactor" units:"nm²/s"`
	Radius          float64 `desc:"Reaction radius" units:"nm"`
}

// ClusterSpec describes one elementary cluster to include in the network.
type ClusterSpec struct {
	Comp       Composition
	Energetics ClusterEnergetics
}

// GroupSpec describes one super-cluster: the member compositions it covers
// and the widths of the covered rectangle along each axis.
type GroupSpec struct {
	Comps   []Composition
	HeWidth int
	VWidth  int
}

// NetworkSpec is the complete description of a reaction network.
type NetworkSpec struct {
	Clusters []ClusterSpec
	Groups   []GroupSpec

	// LatticeConstant of the host material in nm.
	LatticeConstant float64 `desc:"Lattice constant" units:"nm"`

	// AtomicVolume of the host material in nm^3, used in dissociation
	// rate constants.
	AtomicVolume float64 `desc:"Atomic volume" units:"nm³"`

	// FormationEnergy evaluates the formation energy of an arbitrary
	// composition. It is required when grouped clusters emit, because
	// binding energies of grouped compositions cannot be read from any
	// elementary cluster. May be nil when there are no groups.
	FormationEnergy func(Composition) float64 `desc:"Formation energy model"`

	// Temperature in K. If positive, rate constants are computed during
	// construction; otherwise SetTemperature must be called before use.
	Temperature float64 `desc:"Temperature" units:"K"`
}

// Network is a cluster reaction network: a fixed set of reactants with
// dense indices into a concentration vector, and precompiled reaction
// lists for flux and Jacobian evaluation. The topology is fixed at
// construction; only the temperature-dependent rate constants change
// afterwards.
type Network struct {
	reactants []Reactant
	clusters  []*Cluster
	groups    []*SuperCluster

	// byComp maps every tracked exact composition to the reactant owning
	// it: the elementary cluster itself, or the group containing it.
	byComp map[Composition]Reactant

	dof int

	latticeConstant float64
	atomicVolume    float64
	temperature     float64

	catalog *reactionCatalog
}

// NewNetwork builds a network from its specification, enumerates all
// production and dissociation reactions among the tracked compositions,
// and computes rate constants if the spec carries a temperature.
func NewNetwork(spec NetworkSpec) (*Network, error) {
	if spec.LatticeConstant <= 0 {
		return nil, configErrorf("lattice constant must be positive, got %g", spec.LatticeConstant)
	}
	if spec.AtomicVolume <= 0 {
		return nil, configErrorf("atomic volume must be positive, got %g", spec.AtomicVolume)
	}

	n := &Network{
		byComp:          make(map[Composition]Reactant),
		latticeConstant: spec.LatticeConstant,
		atomicVolume:    spec.AtomicVolume,
		catalog:         newReactionCatalog(),
	}

	for _, cs := range spec.Clusters {
		if !cs.Comp.Valid() {
			return nil, configErrorf("invalid cluster composition %v", cs.Comp)
		}
		if _, dup := n.byComp[cs.Comp]; dup {
			return nil, configErrorf("duplicate composition %v", cs.Comp)
		}
		c := NewCluster(cs.Comp, cs.Energetics)
		n.byComp[cs.Comp] = c
		n.clusters = append(n.clusters, c)
	}
	for gi, gs := range spec.Groups {
		if len(gs.Comps) == 0 {
			return nil, configErrorf("group %d has no member compositions", gi)
		}
		if gs.HeWidth < 1 || gs.VWidth < 1 {
			return nil, configErrorf("group %d has non-positive widths %dx%d", gi, gs.HeWidth, gs.VWidth)
		}
		comps := append([]Composition(nil), gs.Comps...)
		sort.Slice(comps, func(i, j int) bool {
			if comps[i].NHe != comps[j].NHe {
				return comps[i].NHe < comps[j].NHe
			}
			return comps[i].NV < comps[j].NV
		})
		for _, c := range comps {
			if !c.Valid() || c.NI != 0 {
				return nil, configErrorf("group %d contains invalid member %v", gi, c)
			}
			if _, dup := n.byComp[c]; dup {
				return nil, configErrorf("composition %v appears in more than one reactant", c)
			}
		}
		g := NewSuperCluster(comps, gs.HeWidth, gs.VWidth, spec.LatticeConstant)
		for _, c := range comps {
			n.byComp[c] = g
		}
		n.groups = append(n.groups, g)
	}

	// Assign dense ids: elementary clusters first, then three consecutive
	// unknowns per group.
	id := 0
	for _, c := range n.clusters {
		c.id = id
		n.reactants = append(n.reactants, c)
		id++
	}
	for _, g := range n.groups {
		g.id = id
		g.heMomID = id + 1
		g.vMomID = id + 2
		n.reactants = append(n.reactants, g)
		id += 3
	}
	n.dof = id

	if err := n.enumerateProductions(); err != nil {
		return nil, err
	}
	if err := n.enumerateDissociations(spec.FormationEnergy); err != nil {
		return nil, err
	}

	for _, r := range n.reactants {
		r.resetConnectivities()
	}
	for _, g := range n.groups {
		g.setMomentPartialsSize(n.dof)
	}

	if spec.Temperature > 0 {
		n.SetTemperature(spec.Temperature)
	}
	return n, nil
}

// Size is the number of unknowns in the concentration vector: one per
// elementary cluster plus three per group.
func (n *Network) Size() int { return n.dof }

// Temperature is the temperature the current rate constants were computed
// for.
func (n *Network) Temperature() float64 { return n.temperature }

// NumClusters and NumGroups count the reactants by kind.
func (n *Network) NumClusters() int { return len(n.clusters) }
func (n *Network) NumGroups() int   { return len(n.groups) }

// Reactants returns all reactants in id order.
func (n *Network) Reactants() []Reactant { return n.reactants }

// Groups returns the super-clusters in id order.
func (n *Network) Groups() []*SuperCluster { return n.groups }

// ReactantsOf returns the elementary clusters made purely of the given
// species, in id order.
func (n *Network) ReactantsOf(s Species) []Reactant {
	var out []Reactant
	for _, c := range n.clusters {
		if c.comp.Amount(s) == c.comp.Size() {
			out = append(out, c)
		}
	}
	return out
}

// Find returns the reactant owning the exact composition: the elementary
// cluster with that composition, or the group whose region contains it.
func (n *Network) Find(c Composition) (Reactant, bool) {
	r, ok := n.byComp[c]
	return r, ok
}

// FindSingle returns the reactant owning the pure cluster of size n of
// the given species.
func (n *Network) FindSingle(s Species, size int) (Reactant, bool) {
	var c Composition
	switch s {
	case He:
		c.NHe = size
	case V:
		c.NV = size
	case I:
		c.NI = size
	default:
		return nil, false
	}
	return n.Find(c)
}

// mobile reports whether the reactant can diffuse at any temperature.
func mobile(r Reactant) bool { return r.DiffusionFactor() > 0 }

// memberComps lists the exact compositions a reactant stands for.
func (n *Network) memberComps(r Reactant) []Composition {
	if g, ok := r.(*SuperCluster); ok {
		comps := make([]Composition, 0, g.nTot)
		for c := range g.members {
			comps = append(comps, c)
		}
		sort.Slice(comps, func(i, j int) bool {
			if comps[i].NHe != comps[j].NHe {
				return comps[i].NHe < comps[j].NHe
			}
			return comps[i].NV < comps[j].NV
		})
		return comps
	}
	return []Composition{r.Composition()}
}

// enumerateProductions registers every reaction A + B -> C where the
// merged composition of a tracked pair is itself tracked. Pairs where
// neither reactant is mobile are skipped because their rate constant is
// identically zero, and pairs of two groups are not treated.
func (n *Network) enumerateProductions() error {
	for i, a := range n.reactants {
		for j := i; j < len(n.reactants); j++ {
			b := n.reactants[j]
			if !mobile(a) && !mobile(b) {
				continue
			}
			if a.Grouped() && b.Grouped() {
				continue
			}
			for _, ca := range n.memberComps(a) {
				for _, cb := range n.memberComps(b) {
					prod := ca.Plus(cb)
					if !prod.Valid() {
						continue
					}
					owner, ok := n.byComp[prod]
					if !ok {
						continue
					}
					n.registerProduction(a, b, owner, ca, cb, prod)
				}
			}
		}
	}
	return nil
}

// registerProduction wires one sub-reaction a + b -> product into the
// product's production list and both reactants' combination lists.
func (n *Network) registerProduction(a, b, product Reactant, ca, cb, cProd Composition) {
	r := n.catalog.production(a, b)
	// Orient the composition arguments to the reaction's stored order.
	if r.First != a {
		a, b = b, a
		ca, cb = cb, ca
	}

	switch p := product.(type) {
	case *Cluster:
		p.addProduction(clusterPair{
			first: a, second: b, reaction: r,
			firstDistanceHe:  a.HeDistance(ca.NHe),
			firstDistanceV:   a.VDistance(ca.NV),
			secondDistanceHe: b.HeDistance(cb.NHe),
			secondDistanceV:  b.VDistance(cb.NV),
		})
	case *SuperCluster:
		p.addProduction(r, ca, cb, cProd)
	}

	n.registerCombination(r, a, ca, b, cb)
	n.registerCombination(r, b, cb, a, ca)
}

// registerCombination records consumption of reactant c at composition cc
// by combining with partner at composition cp.
func (n *Network) registerCombination(r *ProductionReaction, c Reactant, cc Composition, partner Reactant, cp Composition) {
	switch rc := c.(type) {
	case *Cluster:
		rc.addCombination(combiningCluster{
			combining: partner, reaction: r,
			distanceHe: partner.HeDistance(cp.NHe),
			distanceV:  partner.VDistance(cp.NV),
		})
	case *SuperCluster:
		rc.addCombination(r, cc, cp, partner)
	}
}

// singleSpecies are the monomers a cluster can emit.
var singleSpecies = []Composition{
	{NHe: 1},
	{NV: 1},
	{NI: 1},
}

// enumerateDissociations registers every reaction C -> (C - s) + s where s
// is a tracked monomer and the residue composition is tracked. The binding
// energy comes from stored cluster energies for elementary parents and
// from the formation energy model for grouped compositions.
func (n *Network) enumerateDissociations(formationEnergy func(Composition) float64) error {
	efOf := func(c Composition) (float64, bool) {
		if r, ok := n.byComp[c]; ok && !r.Grouped() {
			return r.FormationEnergy(), true
		}
		if formationEnergy != nil {
			return formationEnergy(c), true
		}
		return 0, false
	}

	for _, parent := range n.reactants {
		for _, cp := range n.memberComps(parent) {
			if cp.Size() < 2 {
				continue
			}
			for _, sc := range singleSpecies {
				single, ok := n.byComp[sc]
				if !ok {
					continue
				}
				residue := cp.Minus(sc)
				if !residue.Valid() {
					continue
				}
				residueOwner, ok := n.byComp[residue]
				if !ok {
					continue
				}

				efParent, ok1 := efOf(cp)
				efResidue, ok2 := efOf(residue)
				if !ok1 || !ok2 {
					continue
				}
				eb := efResidue + single.FormationEnergy() - efParent

				r := n.catalog.dissociation(parent, residueOwner, single)
				if !r.bindingSet {
					// For grouped parents the binding energy is fixed at
					// the first member composition in scan order; rate
					// variation across the group is second order.
					r.BindingEnergy = eb
					r.bindingSet = true
				}

				n.registerEmission(r, parent, cp)
				n.registerDissociation(r, residueOwner, cp, residue, single)
				n.registerDissociation(r, single, cp, sc, residueOwner)
			}
		}
	}
	return nil
}

// registerEmission records loss of the parent at composition cp.
func (n *Network) registerEmission(r *DissociationReaction, parent Reactant, cp Composition) {
	switch p := parent.(type) {
	case *Cluster:
		p.addEmission(r)
	case *SuperCluster:
		p.addEmission(r, cp)
	}
}

// registerDissociation records gain of fragment at composition cf from the
// parent dissociating at composition cp.
func (n *Network) registerDissociation(r *DissociationReaction, fragment Reactant, cp, cf Composition, other Reactant) {
	switch f := fragment.(type) {
	case *Cluster:
		f.addDissociation(dissociatingPair{
			dissociating: r.Dissociating, other: other, reaction: r,
			distanceHe: r.Dissociating.HeDistance(cp.NHe),
			distanceV:  r.Dissociating.VDistance(cp.NV),
		})
	case *SuperCluster:
		f.addDissociation(r, cp, cf, other)
	}
}

// SetTemperature recomputes every diffusion coefficient and rate constant
// for the given temperature. Cluster diffusion is updated first because
// the forward rates depend on it, and reverse rates depend in turn on the
// forward rates.
func (n *Network) SetTemperature(temperature float64) {
	n.temperature = temperature
	for _, r := range n.reactants {
		r.setTemperature(temperature)
	}
	for _, p := range n.catalog.productions {
		p.computeRate()
	}
	for _, d := range n.catalog.dissociations {
		d.computeRate(temperature, n.atomicVolume)
	}
}

// LargestRate returns the largest forward rate constant in the network,
// used to scale instantaneous processes.
func (n *Network) LargestRate() float64 {
	var largest float64
	for _, p := range n.catalog.productions {
		largest = math.Max(largest, p.KConstant)
	}
	return largest
}

// UpdateConcentrationsFromArray loads reactant state from the unknown
// vector, which must have length Size.
func (n *Network) UpdateConcentrationsFromArray(concentrations []float64) {
	for _, r := range n.reactants {
		r.updateFromArray(concentrations)
	}
}

// FillConcentrationsArray writes reactant state back into the unknown
// vector.
func (n *Network) FillConcentrationsArray(concentrations []float64) {
	for _, c := range n.clusters {
		concentrations[c.id] = c.concentration
	}
	for _, g := range n.groups {
		concentrations[g.id] = g.concentration
		concentrations[g.heMomID] = g.l1He
		concentrations[g.vMomID] = g.l1V
	}
}

// ComputeAllFluxes adds every reactant's net reaction flux into fluxes,
// which must have length Size. Reactant state must be current, normally
// via UpdateConcentrationsFromArray.
func (n *Network) ComputeAllFluxes(fluxes []float64) {
	for _, c := range n.clusters {
		fluxes[c.id] += c.TotalFlux()
	}
	for _, g := range n.groups {
		fluxes[g.id] += g.TotalFlux()
		fluxes[g.heMomID] += g.HeMomentFlux()
		fluxes[g.vMomID] += g.VMomentFlux()
	}
}

// ComputeAllPartials evaluates the reaction Jacobian row by row, calling
// visit for every structurally nonzero entry. scratch is a caller-owned
// slice of length Size, zero on entry and zero again on return; entries
// are cleared as they are harvested so the buffer can be reused across
// rows and grid points.
func (n *Network) ComputeAllPartials(scratch []float64, visit func(row, col int, value float64)) {
	harvest := func(row int, cols []int) {
		for _, col := range cols {
			if scratch[col] != 0 {
				visit(row, col, scratch[col])
				scratch[col] = 0
			}
		}
	}
	for _, c := range n.clusters {
		c.PartialDerivatives(scratch)
		harvest(c.id, c.ConnectedIDs())
	}
	for _, g := range n.groups {
		cols := g.ConnectedIDs()
		g.PartialDerivatives(scratch)
		harvest(g.id, cols)
		g.HeMomentPartialDerivatives(scratch)
		harvest(g.heMomID, cols)
		g.VMomentPartialDerivatives(scratch)
		harvest(g.vMomID, cols)
	}
}

// DiagonalFill returns the structural nonzero pattern of the reaction
// Jacobian as a Size by Size sparse boolean mask, for preallocating solver
// matrices.
func (n *Network) DiagonalFill() *sparse.SparseArray {
	fill := sparse.ZerosSparse(n.dof, n.dof)
	for _, c := range n.clusters {
		for _, col := range c.ConnectedIDs() {
			fill.Set(1, c.id, col)
		}
	}
	for _, g := range n.groups {
		for _, row := range []int{g.id, g.heMomID, g.vMomID} {
			for _, col := range g.ConnectedIDs() {
				fill.Set(1, row, col)
			}
		}
	}
	return fill
}

// Snapshot captures the current concentration vector.
func (n *Network) Snapshot() *sparse.DenseArray {
	snap := sparse.ZerosDense(n.dof)
	n.FillConcentrationsArray(snap.Elements)
	return snap
}

// Restore loads a previously captured concentration vector.
func (n *Network) Restore(snap *sparse.DenseArray) error {
	if len(snap.Elements) != n.dof {
		return configErrorf("snapshot has %d unknowns, network has %d", len(snap.Elements), n.dof)
	}
	n.UpdateConcentrationsFromArray(snap.Elements)
	return nil
}

// TotalHeliumConcentration sums helium content over every reactant.
func (n *Network) TotalHeliumConcentration() float64 {
	var total float64
	for _, c := range n.clusters {
		total += c.concentration * float64(c.comp.NHe)
	}
	for _, g := range n.groups {
		total += g.TotalHeliumConcentration()
	}
	return total
}

// TotalVacancyConcentration sums vacancy content over every reactant.
func (n *Network) TotalVacancyConcentration() float64 {
	var total float64
	for _, c := range n.clusters {
		total += c.concentration * float64(c.comp.NV)
	}
	for _, g := range n.groups {
		total += g.TotalVacancyConcentration()
	}
	return total
}

// TotalInterstitialConcentration sums interstitial content over every
// reactant.
func (n *Network) TotalInterstitialConcentration() float64 {
	var total float64
	for _, c := range n.clusters {
		total += c.concentration * float64(c.comp.NI)
	}
	return total
}
