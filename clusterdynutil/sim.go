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

package clusterdynutil

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/spatialmodel/clusterdyn"
	"github.com/spatialmodel/clusterdyn/material/tungsten"
)

// networkOptions reads the network generation options from the
// configuration.
func networkOptions(cfg *viper.Viper) tungsten.Options {
	opts := tungsten.DefaultOptions()
	opts.MaxHe = cfg.GetInt("Network.MaxHe")
	opts.MaxV = cfg.GetInt("Network.MaxV")
	opts.MaxI = cfg.GetInt("Network.MaxI")
	opts.MaxHePerV = cfg.GetInt("Network.MaxHePerV")
	opts.GroupingMinV = cfg.GetInt("Network.GroupingMinV")
	opts.GroupHeWidth = cfg.GetInt("Network.GroupHeWidth")
	opts.GroupVWidth = cfg.GetInt("Network.GroupVWidth")
	opts.Temperature = cfg.GetFloat64("Temperature.Constant")
	return opts
}

// buildNetwork creates the tungsten reaction network from the
// configuration.
func buildNetwork(cfg *viper.Viper) (*clusterdyn.Network, error) {
	return clusterdyn.NewNetwork(tungsten.Network(networkOptions(cfg)))
}

// temperatureHandler selects the temperature handler from the
// configuration. A constant temperature value and a temperature file
// cannot both be given.
func temperatureHandler(cfg *viper.Viper) (clusterdyn.TemperatureHandler, error) {
	constTemp := cfg.GetFloat64("Temperature.Constant")
	profilePath := cfg.GetString("Temperature.Profile")
	bulkTemp := cfg.GetFloat64("Temperature.Bulk")

	if profilePath != "" {
		if bulkTemp > 0 {
			return nil, fmt.Errorf("clusterdyn: a temperature file and a temperature gradient cannot both be given")
		}
		f, err := os.Open(profilePath)
		if err != nil {
			return nil, fmt.Errorf("clusterdyn: opening temperature profile: %w", err)
		}
		defer f.Close()
		return clusterdyn.ReadTemperatureProfile(f)
	}
	if constTemp <= 0 {
		return nil, fmt.Errorf("clusterdyn: temperature information has not been given")
	}
	if bulkTemp > 0 {
		depth := cfg.GetFloat64("Grid.Dx") * float64(cfg.GetInt("Grid.NPoints"))
		return clusterdyn.TemperatureGradient{
			Surface: constTemp,
			Bulk:    bulkTemp,
			Depth:   depth,
		}, nil
	}
	return clusterdyn.ConstantTemperature(constTemp), nil
}

// NewSim assembles a simulation from the configuration, logging progress
// to w.
func NewSim(cfg *viper.Viper, w io.Writer) (*clusterdyn.Sim, error) {
	network, err := buildNetwork(cfg)
	if err != nil {
		return nil, err
	}

	nPoints := cfg.GetInt("Grid.NPoints")
	dx := cfg.GetFloat64("Grid.Dx")
	if nPoints < 3 || dx <= 0 {
		return nil, fmt.Errorf("clusterdyn: grid needs at least 3 points and positive spacing, got %d and %g", nPoints, dx)
	}
	points := clusterdyn.NewGrid(network, nPoints, dx)

	tempHandler, err := temperatureHandler(cfg)
	if err != nil {
		return nil, err
	}

	flux := &clusterdyn.IncidentFlux{
		Amplitude: cfg.GetFloat64("Flux.Amplitude"),
		Profile:   tungsten.ImplantationProfile,
		MaxDepth:  tungsten.ImplantationDepth,
	}
	fluxCalc, err := flux.Manipulator(network, points)
	if err != nil {
		return nil, err
	}

	mutation, err := clusterdyn.NewTrapMutation(network, tungsten.MutationRules(), 1e4)
	if err != nil {
		return nil, err
	}

	sim := &clusterdyn.Sim{
		Network: network,
		Points:  points,
	}
	sim.InitFuncs = []clusterdyn.DomainManipulator{
		clusterdyn.ResetPoints(),
		clusterdyn.ApplyTemperature(tempHandler),
		clusterdyn.SetTimeStepCFL(cfg.GetFloat64("Sim.Courant")),
	}
	sim.RunFuncs = []clusterdyn.DomainManipulator{
		clusterdyn.ApplyTemperature(tempHandler),
		clusterdyn.Calculations(
			clusterdyn.Diffusion(network),
			clusterdyn.Advection(network, tungsten.SinkStrengths(network)),
			fluxCalc,
			mutation.Manipulator(network),
		),
		clusterdyn.Reactions(),
		clusterdyn.AdvanceTime(),
		clusterdyn.SteadyConvergenceCheck(cfg.GetInt("Sim.NumIterations")),
		clusterdyn.Log(w),
	}
	return sim, nil
}

// Results is the structure of the YAML output file.
type Results struct {
	Time float64 `yaml:"time"`

	// Retention gives the areal densities of the retained species
	// [per nm²].
	Retention struct {
		Helium        float64 `yaml:"helium"`
		Vacancies     float64 `yaml:"vacancies"`
		Interstitials float64 `yaml:"interstitials"`
	} `yaml:"retention"`

	// Profiles gives depth profiles of selected reactants, keyed by
	// reactant name.
	Profiles map[string]DepthProfile `yaml:"profiles"`
}

// DepthProfile is one concentration depth profile.
type DepthProfile struct {
	Depth         []float64 `yaml:"depth"`
	Concentration []float64 `yaml:"concentration"`
}

// profileComps lists the compositions whose depth profiles go into the
// results file: the vacancy and interstitial monomers plus the configured
// helium sizes.
func profileComps(cfg *viper.Viper) ([]clusterdyn.Composition, error) {
	sizes, err := cast.ToIntSliceE(cfg.Get("Output.HeProfiles"))
	if err != nil {
		return nil, fmt.Errorf("clusterdyn: parsing Output.HeProfiles: %w", err)
	}
	comps := []clusterdyn.Composition{
		clusterdyn.Comp(0, 1, 0),
		clusterdyn.Comp(0, 0, 1),
	}
	for _, size := range sizes {
		if size < 1 {
			return nil, fmt.Errorf("clusterdyn: Output.HeProfiles sizes must be positive, got %d", size)
		}
		comps = append(comps, clusterdyn.Comp(size, 0, 0))
	}
	return comps, nil
}

// WriteResults writes the retention and the configured depth profiles to a
// YAML file.
func WriteResults(cfg *viper.Viper, sim *clusterdyn.Sim, path string) error {
	var res Results
	res.Time = sim.Time
	he, v, i := sim.Retention()
	res.Retention.Helium = he
	res.Retention.Vacancies = v
	res.Retention.Interstitials = i

	comps, err := profileComps(cfg)
	if err != nil {
		return err
	}
	res.Profiles = make(map[string]DepthProfile)
	for _, comp := range comps {
		r, ok := sim.Network.Find(comp)
		if !ok {
			continue
		}
		depth, conc := sim.Profile(r.ID())
		res.Profiles[r.Name()] = DepthProfile{Depth: depth, Concentration: conc}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("clusterdyn: creating output file: %w", err)
	}
	defer f.Close()
	enc := yaml.NewEncoder(f)
	defer enc.Close()
	if err := enc.Encode(&res); err != nil {
		return fmt.Errorf("clusterdyn: writing output file: %w", err)
	}
	return nil
}
