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
	"sync"
)

// Version gives the model version number.
const Version = "0.1.0"

// GridPoint holds the state of a single point of the one-dimensional
// spatial grid. X is the depth below the exposed surface in nm.
type GridPoint struct {
	sync.Mutex

	// X is the depth of the point below the surface [nm].
	X float64 `desc:"Depth below surface" units:"nm"`

	// Dx is the grid spacing around the point [nm].
	Dx float64 `desc:"Grid spacing" units:"nm"`

	// Ci are the concentrations at the beginning of the current time
	// step and Cf the concentrations being accumulated for its end, both
	// indexed by network unknown.
	Ci []float64
	Cf []float64

	// Temperature at the point [K].
	Temperature float64 `desc:"Temperature" units:"K"`

	prev, next *GridPoint
}

// Prev and Next are the neighboring points toward and away from the
// surface, nil at the domain edges.
func (p *GridPoint) Prev() *GridPoint { return p.prev }
func (p *GridPoint) Next() *GridPoint { return p.next }

// Sim holds the current state of a one-dimensional cluster dynamics
// simulation: a reaction network shared by all points, the grid, and the
// manipulator functions that advance it.
type Sim struct {
	// InitFuncs are run once before the simulation starts, RunFuncs once
	// per time step until Done is set, and CleanupFuncs once afterwards.
	InitFuncs    []DomainManipulator
	RunFuncs     []DomainManipulator
	CleanupFuncs []DomainManipulator

	Network *Network
	Points  []*GridPoint

	// Dt is the current time step [s] and Time the elapsed simulation
	// time [s].
	Dt   float64 `desc:"Time step" units:"s"`
	Time float64 `desc:"Elapsed time" units:"s"`

	// Done signals that the simulation has finished.
	Done bool

	fluxBuf    []float64
	scratchBuf []float64
}

// A DomainManipulator is a function that operates on the entire simulation
// domain at once.
type DomainManipulator func(s *Sim) error

// A PointManipulator is a function that operates on one grid point,
// advancing its Cf concentrations over the time step Dt.
type PointManipulator func(p *GridPoint, Dt float64)

// NewGrid creates a uniform grid of n points with spacing dx, the first
// point at depth dx below the surface, and allocates the concentration
// buffers for the given network.
func NewGrid(network *Network, n int, dx float64) []*GridPoint {
	points := make([]*GridPoint, n)
	for i := range points {
		points[i] = &GridPoint{
			X:  float64(i+1) * dx,
			Dx: dx,
			Ci: make([]float64, network.Size()),
			Cf: make([]float64, network.Size()),
		}
	}
	for i, p := range points {
		if i > 0 {
			p.prev = points[i-1]
		}
		if i < n-1 {
			p.next = points[i+1]
		}
	}
	return points
}

// Run initializes the simulation, advances it until a manipulator sets
// Done, and cleans up.
func (s *Sim) Run() error {
	for _, f := range s.InitFuncs {
		if err := f(s); err != nil {
			return fmt.Errorf("clusterdyn: initializing: %w", err)
		}
	}
	for !s.Done {
		for _, f := range s.RunFuncs {
			if err := f(s); err != nil {
				return fmt.Errorf("clusterdyn: running: %w", err)
			}
		}
	}
	for _, f := range s.CleanupFuncs {
		if err := f(s); err != nil {
			return fmt.Errorf("clusterdyn: cleaning up: %w", err)
		}
	}
	return nil
}

// Cleanup runs the cleanup functions without waiting for the simulation to
// finish.
func (s *Sim) Cleanup() error {
	for _, f := range s.CleanupFuncs {
		if err := f(s); err != nil {
			return fmt.Errorf("clusterdyn: cleaning up: %w", err)
		}
	}
	return nil
}

func (s *Sim) buffers() ([]float64, []float64) {
	if s.fluxBuf == nil {
		s.fluxBuf = make([]float64, s.Network.Size())
		s.scratchBuf = make([]float64, s.Network.Size())
	}
	return s.fluxBuf, s.scratchBuf
}
