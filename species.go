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
	"strings"
)

// Species identifies one of the defect species tracked by the network.
type Species int

const (
	// He is interstitial helium.
	He Species = iota
	// V is a lattice vacancy.
	V
	// I is a self-interstitial atom.
	I

	numSpecies
)

func (s Species) String() string {
	switch s {
	case He:
		return "He"
	case V:
		return "V"
	case I:
		return "I"
	}
	return fmt.Sprintf("Species(%d)", int(s))
}

// kBoltzmann is the Boltzmann constant in eV/K.
const kBoltzmann = 8.6173324e-5

// Composition is the exact species content of a cluster. Vacancies and
// interstitials annihilate pairwise, so a valid composition never has both
// NV > 0 and NI > 0.
type Composition struct {
	NHe, NV, NI int
}

// Comp is shorthand for constructing a normalized composition.
func Comp(nHe, nV, nI int) Composition {
	return Composition{NHe: nHe, NV: nV, NI: nI}.normalize()
}

func (c Composition) normalize() Composition {
	if c.NV > 0 && c.NI > 0 {
		if c.NV >= c.NI {
			c.NV -= c.NI
			c.NI = 0
		} else {
			c.NI -= c.NV
			c.NV = 0
		}
	}
	return c
}

// Size is the total number of atomic defects in the composition.
func (c Composition) Size() int {
	return c.NHe + c.NV + c.NI
}

// Plus returns the composition resulting from merging c with o, with
// vacancy-interstitial annihilation applied.
func (c Composition) Plus(o Composition) Composition {
	return Composition{
		NHe: c.NHe + o.NHe,
		NV:  c.NV + o.NV,
		NI:  c.NI + o.NI,
	}.normalize()
}

// Minus returns the component-wise difference c - o. No annihilation is
// applied; callers use it to compute the residue left after emitting a
// single-species cluster, which must already be a valid composition.
func (c Composition) Minus(o Composition) Composition {
	return Composition{
		NHe: c.NHe - o.NHe,
		NV:  c.NV - o.NV,
		NI:  c.NI - o.NI,
	}
}

// Valid reports whether every count is non-negative and the composition
// contains at least one defect.
func (c Composition) Valid() bool {
	return c.NHe >= 0 && c.NV >= 0 && c.NI >= 0 && c.Size() > 0 &&
		!(c.NV > 0 && c.NI > 0)
}

// Amount returns the count of the given species.
func (c Composition) Amount(s Species) int {
	switch s {
	case He:
		return c.NHe
	case V:
		return c.NV
	case I:
		return c.NI
	}
	return 0
}

func (c Composition) String() string {
	var b strings.Builder
	if c.NHe > 0 {
		fmt.Fprintf(&b, "He%d", c.NHe)
	}
	if c.NV > 0 {
		fmt.Fprintf(&b, "V%d", c.NV)
	}
	if c.NI > 0 {
		fmt.Fprintf(&b, "I%d", c.NI)
	}
	if b.Len() == 0 {
		return "empty"
	}
	return b.String()
}

// heliumRadius is the reaction radius of interstitial helium [nm].
const heliumRadius = 0.3

// ReactionRadius estimates the reaction radius of a composition in a
// lattice with the given constant [nm]. Vacancy-type and interstitial-type
// clusters grow with the cube root of their size; pure helium clusters use
// the impurity radius.
func ReactionRadius(c Composition, latticeConstant float64) float64 {
	switch {
	case c.NV > 0:
		return vacancyClusterRadius(c.NV, latticeConstant)
	case c.NI > 0:
		return vacancyClusterRadius(c.NI, latticeConstant)
	default:
		return heliumRadius
	}
}

// IntegerRange is a half-open interval [Lower, Upper) of composition
// amounts covered by a super-cluster along one species axis.
type IntegerRange struct {
	Lower, Upper int
}

// Contains reports whether n falls within the half-open range.
func (r IntegerRange) Contains(n int) bool {
	return n >= r.Lower && n < r.Upper
}

// Width is the number of integers covered by the range.
func (r IntegerRange) Width() int {
	return r.Upper - r.Lower
}
