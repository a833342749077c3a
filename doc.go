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

// Package clusterdyn simulates the evolution of populations of point-defect
// clusters (combinations of helium atoms, vacancies, and interstitials)
// in a material under irradiation.
//
// The heart of the package is the cluster reaction network: every tracked
// combination of species is a reactant with a dense integer index into the
// vector of unknowns, and each reactant carries precompiled lists of the
// production, combination, dissociation, and emission reactions it
// participates in. Large families of similar mixed clusters are folded into
// super-clusters that track a handful of statistical moments instead of one
// unknown per exact composition; the projection of every reaction onto those
// moments is reduced, once, to a fixed set of coefficients so that flux and
// Jacobian evaluation in the inner loop stays proportional to the number of
// effective reactions rather than the number of grouped compositions.
//
// Around the network, the package provides a one-dimensional spatial
// simulation in the same shape as the network itself: a grid of points, each
// holding a concentration vector, advanced by composable manipulator
// functions for reactions, diffusion, advection, incident flux, and
// near-surface trap mutation.
package clusterdyn
