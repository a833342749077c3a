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

// Package clusterdynutil provides the command-line interface for the
// ClusterDyn cluster dynamics model.
package clusterdynutil

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/spatialmodel/clusterdyn"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var logger *logrus.Logger

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	Cfg = viper.New()
	Cfg.SetEnvPrefix("CLUSTERDYN")
	Cfg.AutomaticEnv()

	logger = logrus.StandardLogger()
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	// Options are the configuration options available to ClusterDyn.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Network.MaxHe",
			usage: `
              Network.MaxHe specifies the largest pure helium cluster to
              track.`,
			defaultVal: 8,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), networkCmd.Flags()},
		},
		{
			name: "Network.MaxV",
			usage: `
              Network.MaxV specifies the largest vacancy cluster to track.`,
			defaultVal: 30,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), networkCmd.Flags()},
		},
		{
			name: "Network.MaxI",
			usage: `
              Network.MaxI specifies the largest self-interstitial cluster
              to track.`,
			defaultVal: 5,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), networkCmd.Flags()},
		},
		{
			name: "Network.MaxHePerV",
			usage: `
              Network.MaxHePerV bounds the helium content of mixed
              clusters to this many atoms per vacancy.`,
			defaultVal: 4,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), networkCmd.Flags()},
		},
		{
			name: "Network.GroupingMinV",
			usage: `
              Network.GroupingMinV specifies the vacancy size above which
              mixed clusters are folded into grouped super-clusters.
              Zero disables grouping.`,
			defaultVal: 11,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), networkCmd.Flags()},
		},
		{
			name: "Network.GroupHeWidth",
			usage: `
              Network.GroupHeWidth specifies the helium-axis width of
              grouped super-clusters.`,
			defaultVal: 4,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), networkCmd.Flags()},
		},
		{
			name: "Network.GroupVWidth",
			usage: `
              Network.GroupVWidth specifies the vacancy-axis width of
              grouped super-clusters.`,
			defaultVal: 4,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), networkCmd.Flags()},
		},
		{
			name: "Grid.NPoints",
			usage: `
              Grid.NPoints specifies the number of spatial grid points.`,
			defaultVal: 100,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Grid.Dx",
			usage: `
              Grid.Dx specifies the grid spacing in nm.`,
			defaultVal: 0.5,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Temperature.Constant",
			usage: `
              Temperature.Constant specifies a constant temperature in K
              for the whole domain.`,
			defaultVal: 1000.0,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags(), networkCmd.Flags()},
		},
		{
			name: "Temperature.Profile",
			usage: `
              Temperature.Profile specifies the path to a YAML file of
              time-temperature samples. A constant temperature value and a
              temperature file cannot both be given.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Temperature.Bulk",
			usage: `
              Temperature.Bulk specifies the bulk temperature in K for a
              spatial temperature gradient. Zero means no gradient.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Flux.Amplitude",
			usage: `
              Flux.Amplitude specifies the incident helium flux in
              He/nm²/s.`,
			defaultVal: 1.0e-4,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Sim.NumIterations",
			usage: `
              Sim.NumIterations specifies the number of time steps to
              calculate. If less than 1, the simulation runs until the
              retained helium and vacancy content converge.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Sim.Courant",
			usage: `
              Sim.Courant scales the time step relative to the diffusion
              stability limit of the fastest diffuser.`,
			defaultVal: 0.5,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Output.HeProfiles",
			usage: `
              Output.HeProfiles specifies the pure helium cluster sizes
              whose depth profiles are written to the results file, in
              addition to the V and I monomers.`,
			defaultVal: []int{1},
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile specifies the path to the YAML results file.`,
			shorthand:  "o",
			defaultVal: "clusterdyn_output.yaml",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
	}

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch def := option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, def, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, def, option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, def, option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, def, option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, def, option.usage)
				} else {
					set.IntP(option.name, option.shorthand, def, option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, def, option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, def, option.usage)
				}
			case []int:
				if option.shorthand == "" {
					set.IntSlice(option.name, def, option.usage)
				} else {
					set.IntSliceP(option.name, option.shorthand, def, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(networkCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("clusterdyn: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "clusterdyn",
	Short: "A cluster dynamics model for irradiated materials.",
	Long: `ClusterDyn simulates the evolution of helium, vacancy, and interstitial
cluster populations in a material exposed to a plasma or ion beam.
Use the subcommands specified below to access the model functionality.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'CLUSTERDYN_var' where 'var'
is the name of the variable to be set.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of ClusterDyn.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("ClusterDyn v%s\n", clusterdyn.Version)
	},
	DisableAutoGenTag: true,
}

// networkCmd builds the reaction network and reports its size without
// running a simulation.
var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Build the reaction network and print its statistics.",
	Long: `network builds the cluster reaction network from the current
configuration and prints the number of clusters, groups, and unknowns,
for checking a configuration before committing to a simulation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		network, err := buildNetwork(Cfg)
		if err != nil {
			return err
		}
		cmd.Printf("clusters:  %d\n", network.NumClusters())
		cmd.Printf("groups:    %d\n", network.NumGroups())
		cmd.Printf("unknowns:  %d\n", network.Size())
		return nil
	},
	DisableAutoGenTag: true,
}

// runCmd runs a transient simulation.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a transient simulation.",
	Long: `run advances a one-dimensional cluster dynamics simulation in time
until the configured number of iterations completes or the retained defect
content converges, then writes the results to the output file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sim, err := NewSim(Cfg, os.Stdout)
		if err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{
			"unknowns": sim.Network.Size(),
			"points":   len(sim.Points),
		}).Info("starting simulation")
		if err := sim.Run(); err != nil {
			return err
		}
		he, v, i := sim.Retention()
		logger.WithFields(logrus.Fields{
			"helium":        he,
			"vacancies":     v,
			"interstitials": i,
		}).Info("simulation finished")
		return WriteResults(Cfg, sim, Cfg.GetString("OutputFile"))
	},
	DisableAutoGenTag: true,
}

// Execute runs the root command, printing errors to standard error.
func Execute() {
	if err := Root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
