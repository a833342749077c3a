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

// Package tungsten generates cluster reaction networks for
// plasma-facing tungsten, with parameter tables for helium, vacancy,
// and interstitial defects in the BCC lattice.
package tungsten

import (
	"math"

	"github.com/spatialmodel/clusterdyn"
)

const (
	// LatticeConstant of BCC tungsten [nm].
	LatticeConstant = 0.31698

	// AtomicVolume is the volume per lattice atom [nm³]; the BCC cell
	// holds two atoms.
	AtomicVolume = LatticeConstant * LatticeConstant * LatticeConstant / 2
)

// Parameter tables for small clusters, indexed by size-1. Larger clusters
// of each kind are immobile.
var (
	heFormationEnergies = []float64{6.15, 11.44, 16.35, 21.0, 26.1, 30.24, 34.93, 38.80}
	heMigrationEnergies = []float64{0.13, 0.20, 0.25, 0.20, 0.12, 0.30, 0.35}
	heDiffusionFactors  = []float64{2.9e10, 3.2e10, 2.3e10, 1.7e10, 5.0e9, 1.0e9, 5.0e8}

	vFormationEnergy = 3.6
	vMigrationEnergy = 1.30
	vDiffusionFactor = 1.8e12

	iFormationEnergies = []float64{10.35, 18.42, 25.6, 32.16, 38.5}
	iMigrationEnergies = []float64{0.01, 0.02, 0.03, 0.04, 0.05}
	iDiffusionFactors  = []float64{8.8e10, 8.0e10, 3.9e10, 2.0e10, 1.0e10}
)

// heVRatioBounds lists the largest helium content of mixed clusters for
// small vacancy sizes. Small vacancy clusters hold disproportionately more
// helium than the asymptotic ratio suggests.
var heVRatioBounds = []int{9, 14, 18, 20, 27, 30, 35, 40, 45, 50}

func maxHeForV(v, maxHePerV int) int {
	if v <= len(heVRatioBounds) {
		return heVRatioBounds[v-1]
	}
	return maxHePerV * v
}

// Options configures the generated network.
type Options struct {
	// MaxHe, MaxV, and MaxI bound the sizes of the pure-species clusters.
	MaxHe int `desc:"Largest pure helium cluster"`
	MaxV  int `desc:"Largest vacancy cluster"`
	MaxI  int `desc:"Largest interstitial cluster"`

	// MaxHePerV bounds the helium content of large mixed clusters to this
	// many atoms per vacancy; small vacancy sizes use a fixed table that
	// allows higher ratios.
	MaxHePerV int `desc:"Helium to vacancy ratio bound"`

	// GroupingMinV is the vacancy size above which mixed clusters are
	// folded into groups; zero disables grouping.
	GroupingMinV int `desc:"Smallest grouped vacancy size"`

	// GroupHeWidth and GroupVWidth are the group rectangle dimensions.
	GroupHeWidth int `desc:"Group width along the helium axis"`
	GroupVWidth  int `desc:"Group width along the vacancy axis"`

	// Temperature in K; if positive, rate constants are computed at
	// network construction.
	Temperature float64 `desc:"Temperature" units:"K"`
}

// DefaultOptions are a small network suitable for near-surface helium
// implantation problems.
func DefaultOptions() Options {
	return Options{
		MaxHe:        8,
		MaxV:         30,
		MaxI:         5,
		MaxHePerV:    4,
		GroupingMinV: 11,
		GroupHeWidth: 4,
		GroupVWidth:  4,
	}
}

// FormationEnergy models the formation energy [eV] of an arbitrary
// helium-vacancy cluster: a capillarity scaling of the void energy with a
// filling term that stiffens as the helium to vacancy ratio grows.
func FormationEnergy(c clusterdyn.Composition) float64 {
	x := float64(c.NHe)
	y := float64(c.NV)
	switch {
	case c.NI > 0:
		if c.NI <= len(iFormationEnergies) {
			return iFormationEnergies[c.NI-1]
		}
		return iFormationEnergies[len(iFormationEnergies)-1] +
			6.0*float64(c.NI-len(iFormationEnergies))
	case c.NV == 0:
		if c.NHe <= len(heFormationEnergies) {
			return heFormationEnergies[c.NHe-1]
		}
		return heFormationEnergies[len(heFormationEnergies)-1] +
			4.0*float64(c.NHe-len(heFormationEnergies))
	case c.NHe == 0:
		return vFormationEnergy * math.Pow(y, 2.0/3.0)
	default:
		ratio := x / y
		return vFormationEnergy*math.Pow(y, 2.0/3.0) +
			x*(1.2+0.5*ratio)
	}
}

func energetics(c clusterdyn.Composition) clusterdyn.ClusterEnergetics {
	e := clusterdyn.ClusterEnergetics{
		FormationEnergy: FormationEnergy(c),
		MigrationEnergy: math.Inf(1),
		Radius:          clusterdyn.ReactionRadius(c, LatticeConstant),
	}
	switch {
	case c.NV == 0 && c.NI == 0 && c.NHe <= len(heMigrationEnergies):
		e.MigrationEnergy = heMigrationEnergies[c.NHe-1]
		e.DiffusionFactor = heDiffusionFactors[c.NHe-1]
	case c.NHe == 0 && c.NV == 1:
		e.MigrationEnergy = vMigrationEnergy
		e.DiffusionFactor = vDiffusionFactor
	case c.NHe == 0 && c.NI > 0 && c.NI <= len(iMigrationEnergies):
		e.MigrationEnergy = iMigrationEnergies[c.NI-1]
		e.DiffusionFactor = iDiffusionFactors[c.NI-1]
	}
	return e
}

// Network generates the tungsten cluster network specification: pure
// helium, vacancy, and interstitial clusters, mixed helium-vacancy
// clusters up to the ratio bound, and groups covering the mixed region
// above GroupingMinV.
func Network(opts Options) clusterdyn.NetworkSpec {
	spec := clusterdyn.NetworkSpec{
		LatticeConstant: LatticeConstant,
		AtomicVolume:    AtomicVolume,
		FormationEnergy: FormationEnergy,
		Temperature:     opts.Temperature,
	}

	add := func(c clusterdyn.Composition) {
		spec.Clusters = append(spec.Clusters, clusterdyn.ClusterSpec{
			Comp:       c,
			Energetics: energetics(c),
		})
	}

	for n := 1; n <= opts.MaxHe; n++ {
		add(clusterdyn.Comp(n, 0, 0))
	}
	for n := 1; n <= opts.MaxV; n++ {
		add(clusterdyn.Comp(0, n, 0))
	}
	for n := 1; n <= opts.MaxI; n++ {
		add(clusterdyn.Comp(0, 0, n))
	}

	groupedFrom := opts.GroupingMinV
	if groupedFrom <= 0 || groupedFrom > opts.MaxV {
		groupedFrom = opts.MaxV + 1
	}
	for v := 1; v < groupedFrom; v++ {
		for he := 1; he <= maxHeForV(v, opts.MaxHePerV); he++ {
			add(clusterdyn.Comp(he, v, 0))
		}
	}

	if groupedFrom <= opts.MaxV {
		spec.Groups = append(spec.Groups,
			groupRegion(groupedFrom, opts.MaxV, opts.MaxHePerV,
				opts.GroupHeWidth, opts.GroupVWidth)...)
	}
	return spec
}

// groupRegion tiles the mixed composition region between vacancy sizes
// vMin and vMax with rectangles of the given widths. Rectangle cells
// outside the ratio bound are dropped, and trailing partial rectangles
// keep their reduced width.
func groupRegion(vMin, vMax, maxHePerV, heWidth, vWidth int) []clusterdyn.GroupSpec {
	var groups []clusterdyn.GroupSpec
	for v0 := vMin; v0 <= vMax; v0 += vWidth {
		v1 := v0 + vWidth - 1
		if v1 > vMax {
			v1 = vMax
		}
		maxHe := maxHeForV(v1, maxHePerV)
		for he0 := 1; he0 <= maxHe; he0 += heWidth {
			he1 := he0 + heWidth - 1
			if he1 > maxHe {
				he1 = maxHe
			}
			var comps []clusterdyn.Composition
			for v := v0; v <= v1; v++ {
				for he := he0; he <= he1; he++ {
					if he > maxHeForV(v, maxHePerV) {
						continue
					}
					comps = append(comps, clusterdyn.Comp(he, v, 0))
				}
			}
			if len(comps) == 0 {
				continue
			}
			groups = append(groups, clusterdyn.GroupSpec{
				Comps:   comps,
				HeWidth: he1 - he0 + 1,
				VWidth:  v1 - v0 + 1,
			})
		}
	}
	return groups
}

// SinkStrengths returns the surface sink strengths [eV nm³] of the mobile
// helium clusters, keyed by unknown index, for use with surface drift.
func SinkStrengths(n *clusterdyn.Network) map[int]float64 {
	strengths := []float64{2.28e-3, 5.06e-3, 7.26e-3, 6.21e-3, 1.55e-2, 2.27e-2, 2.71e-2}
	out := make(map[int]float64)
	for _, r := range n.ReactantsOf(clusterdyn.He) {
		size := r.Composition().NHe
		if size <= len(strengths) {
			out[r.ID()] = strengths[size-1]
		}
	}
	return out
}

// ImplantationProfile is the fitted depth distribution of 250 eV helium
// implanted through a (100) surface, valid to ImplantationDepth.
func ImplantationProfile(x float64) float64 {
	value := 7.00876507 + 0.6052078*x - 3.01711048*math.Pow(x, 2) +
		1.36595786*math.Pow(x, 3) - 0.295595*math.Pow(x, 4) +
		0.03597462*math.Pow(x, 5) - 0.0025142*math.Pow(x, 6) +
		0.0000942235*math.Pow(x, 7) - 0.0000014679*math.Pow(x, 8)
	if value < 0 {
		return 0
	}
	return value
}

// ImplantationDepth is the deepest point reached by the implantation
// profile [nm].
const ImplantationDepth = 10.0

// MutationRules are the near-surface trap mutation reactions of helium
// clusters below a (100) surface.
func MutationRules() []clusterdyn.MutationRule {
	return []clusterdyn.MutationRule{
		{NHe: 2, NV: 1, Depth: 0.5},
		{NHe: 3, NV: 1, Depth: 0.6},
		{NHe: 4, NV: 1, Depth: 0.6},
		{NHe: 5, NV: 1, Depth: 0.8},
		{NHe: 6, NV: 2, Depth: 0.8},
		{NHe: 7, NV: 2, Depth: 0.8},
	}
}
