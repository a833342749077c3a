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
	"io"
	"math"
	"runtime"
	"sync"
	"time"
)

// ResetPoints zeroes the concentrations at every grid point.
func ResetPoints() DomainManipulator {
	return func(s *Sim) error {
		for _, p := range s.Points {
			for i := range p.Ci {
				p.Ci[i] = 0
				p.Cf[i] = 0
			}
		}
		return nil
	}
}

// Calculations returns a function that concurrently runs a series of
// calculations on all of the grid points. The calculators must only touch
// the point they are given and the Ci arrays of its neighbors.
func Calculations(calculators ...PointManipulator) DomainManipulator {

	nprocs := runtime.GOMAXPROCS(0)
	var wg sync.WaitGroup

	return func(s *Sim) error {
		wg.Add(nprocs)
		for pp := 0; pp < nprocs; pp++ {
			go func(pp int) {
				var p *GridPoint
				for ii := pp; ii < len(s.Points); ii += nprocs {
					p = s.Points[ii]
					p.Lock()
					for _, f := range calculators {
						f(p, s.Dt)
					}
					p.Unlock()
				}
				wg.Done()
			}(pp)
		}
		wg.Wait()
		return nil
	}
}

// Reactions advances the reaction network at every grid point over one
// time step. It runs sequentially because the network state is shared
// among all points; rate constants are recomputed whenever the point
// temperature differs from the network's.
func Reactions() DomainManipulator {
	return func(s *Sim) error {
		fluxes, _ := s.buffers()
		for _, p := range s.Points {
			if p.Temperature > 0 && p.Temperature != s.Network.Temperature() {
				s.Network.SetTemperature(p.Temperature)
			}
			s.Network.UpdateConcentrationsFromArray(p.Ci)
			for i := range fluxes {
				fluxes[i] = 0
			}
			s.Network.ComputeAllFluxes(fluxes)
			for i, f := range fluxes {
				p.Cf[i] += f * s.Dt
			}
		}
		return nil
	}
}

// AdvanceTime ends the current time step, making the accumulated final
// concentrations the initial concentrations of the next step. Negative
// concentrations produced by the explicit update are clipped to zero.
func AdvanceTime() DomainManipulator {
	return func(s *Sim) error {
		for _, p := range s.Points {
			for i, c := range p.Cf {
				if c < 0 {
					c = 0
					p.Cf[i] = 0
				}
				p.Ci[i] = c
			}
		}
		s.Time += s.Dt
		return nil
	}
}

// SetTimeStepCFL sets the time step from the diffusion stability limit
// dx²/(2 D) of the fastest diffuser, scaled by the given Courant factor
// (typically well below 1).
func SetTimeStepCFL(courant float64) DomainManipulator {
	return func(s *Sim) error {
		var dMax float64
		for _, r := range s.Network.Reactants() {
			dMax = math.Max(dMax, r.DiffusionCoefficient())
		}
		if dMax <= 0 {
			return fmt.Errorf("clusterdyn: no mobile cluster, cannot set time step from stability limit")
		}
		var dxMin float64 = math.Inf(1)
		for _, p := range s.Points {
			dxMin = math.Min(dxMin, p.Dx)
		}
		s.Dt = courant * dxMin * dxMin / (2 * dMax)
		return nil
	}
}

// SteadyConvergenceCheck checks whether the simulation is finished and
// sets the Done flag if it is. If numIterations > 0 the simulation
// finishes after that many steps; otherwise it finishes when the total
// helium and vacancy content in the domain change by less than 0.5%
// between checks.
func SteadyConvergenceCheck(numIterations int) DomainManipulator {

	const tolerance = 0.005
	const checkPeriod = 100 // steps between convergence checks

	oldSums := make([]float64, 2)
	iteration := 0

	return func(s *Sim) error {
		iteration++

		if numIterations > 0 {
			if iteration >= numIterations {
				s.Done = true
			}
			return nil
		}
		if iteration%checkPeriod != 0 {
			return nil
		}
		var heSum, vSum float64
		for _, p := range s.Points {
			s.Network.UpdateConcentrationsFromArray(p.Ci)
			heSum += s.Network.TotalHeliumConcentration()
			vSum += s.Network.TotalVacancyConcentration()
		}
		done := true
		for i, sum := range []float64{heSum, vSum} {
			bias := (sum - oldSums[i]) / oldSums[i]
			if math.Abs(bias) > tolerance || math.IsInf(bias, 0) || math.IsNaN(bias) {
				done = false
			}
			oldSums[i] = sum
		}
		if done {
			s.Done = true
		}
		return nil
	}
}

// Log writes simulation status messages to w.
func Log(w io.Writer) DomainManipulator {
	startTime := time.Now()
	stepTime := time.Now()

	iteration := 0

	return func(s *Sim) error {
		iteration++
		fmt.Fprintf(w, "Iteration %-6d  walltime=%6.3gh  Δwalltime=%4.2gs  "+
			"timestep=%.3gs  t=%.3gs\n",
			iteration, time.Since(startTime).Hours(),
			time.Since(stepTime).Seconds(), s.Dt, s.Time)
		stepTime = time.Now()
		return nil
	}
}

// Retention sums the helium, vacancy, and interstitial content over the
// whole domain, weighted by grid spacing, giving areal densities.
func (s *Sim) Retention() (he, v, i float64) {
	for _, p := range s.Points {
		s.Network.UpdateConcentrationsFromArray(p.Ci)
		he += s.Network.TotalHeliumConcentration() * p.Dx
		v += s.Network.TotalVacancyConcentration() * p.Dx
		i += s.Network.TotalInterstitialConcentration() * p.Dx
	}
	return he, v, i
}

// Profile returns the depth profile of the concentration of one unknown.
func (s *Sim) Profile(id int) (depth, conc []float64) {
	depth = make([]float64, len(s.Points))
	conc = make([]float64, len(s.Points))
	for i, p := range s.Points {
		depth[i] = p.X
		conc[i] = p.Ci[id]
	}
	return depth, conc
}
