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
	"sort"

	"gopkg.in/yaml.v3"
)

// A TemperatureHandler gives the temperature at depth x [nm] and time
// t [s].
type TemperatureHandler interface {
	Temperature(x, t float64) float64
}

// ConstantTemperature holds the whole domain at one temperature [K].
type ConstantTemperature float64

func (c ConstantTemperature) Temperature(x, t float64) float64 { return float64(c) }

// TemperatureGradient interpolates linearly between a surface temperature
// and a bulk temperature reached at Depth.
type TemperatureGradient struct {
	Surface float64 `yaml:"surface" desc:"Surface temperature" units:"K"`
	Bulk    float64 `yaml:"bulk" desc:"Bulk temperature" units:"K"`
	Depth   float64 `yaml:"depth" desc:"Depth where the bulk temperature is reached" units:"nm"`
}

func (g TemperatureGradient) Temperature(x, t float64) float64 {
	if x >= g.Depth {
		return g.Bulk
	}
	return g.Surface + (g.Bulk-g.Surface)*x/g.Depth
}

// TemperatureProfile interpolates the domain temperature in time from a
// table of samples.
type TemperatureProfile struct {
	Points []TemperaturePoint `yaml:"points"`
}

// TemperaturePoint is one sample of a time-dependent temperature profile.
type TemperaturePoint struct {
	Time        float64 `yaml:"time" units:"s"`
	Temperature float64 `yaml:"temperature" units:"K"`
}

// ReadTemperatureProfile parses a YAML temperature profile of the form
//
//	points:
//	  - {time: 0, temperature: 1000}
//	  - {time: 10, temperature: 500}
//
// The samples are sorted by time and must not be empty.
func ReadTemperatureProfile(r io.Reader) (*TemperatureProfile, error) {
	var p TemperatureProfile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("clusterdyn: parsing temperature profile: %w", err)
	}
	if len(p.Points) == 0 {
		return nil, configErrorf("temperature profile has no samples")
	}
	sort.Slice(p.Points, func(i, j int) bool { return p.Points[i].Time < p.Points[j].Time })
	return &p, nil
}

func (p *TemperatureProfile) Temperature(x, t float64) float64 {
	pts := p.Points
	if t <= pts[0].Time {
		return pts[0].Temperature
	}
	if t >= pts[len(pts)-1].Time {
		return pts[len(pts)-1].Temperature
	}
	i := sort.Search(len(pts), func(i int) bool { return pts[i].Time > t })
	lo, hi := pts[i-1], pts[i]
	frac := (t - lo.Time) / (hi.Time - lo.Time)
	return lo.Temperature + frac*(hi.Temperature-lo.Temperature)
}

// ApplyTemperature sets every grid point's temperature from the handler at
// the current simulation time.
func ApplyTemperature(h TemperatureHandler) DomainManipulator {
	return func(s *Sim) error {
		for _, p := range s.Points {
			p.Temperature = h.Temperature(p.X, s.Time)
		}
		return nil
	}
}
