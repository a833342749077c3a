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
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/spatialmodel/clusterdyn"
)

// testConfig is a small ungrouped configuration that runs quickly.
func testConfig() *viper.Viper {
	cfg := viper.New()
	cfg.Set("Network.MaxHe", 8)
	cfg.Set("Network.MaxV", 3)
	cfg.Set("Network.MaxI", 2)
	cfg.Set("Network.MaxHePerV", 4)
	cfg.Set("Network.GroupingMinV", 0)
	cfg.Set("Network.GroupHeWidth", 4)
	cfg.Set("Network.GroupVWidth", 4)
	cfg.Set("Grid.NPoints", 3)
	cfg.Set("Grid.Dx", 0.5)
	cfg.Set("Temperature.Constant", 1000.0)
	cfg.Set("Temperature.Profile", "")
	cfg.Set("Temperature.Bulk", 0.0)
	cfg.Set("Flux.Amplitude", 1.0e-4)
	cfg.Set("Sim.NumIterations", 2)
	cfg.Set("Sim.Courant", 0.5)
	cfg.Set("Output.HeProfiles", []int{1, 2})
	return cfg
}

func TestBuildNetwork(t *testing.T) {
	n, err := buildNetwork(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	if n.NumGroups() != 0 {
		t.Errorf("grouping disabled, got %d groups", n.NumGroups())
	}
	if n.Temperature() != 1000 {
		t.Errorf("want temperature 1000, got %g", n.Temperature())
	}

	cfg := testConfig()
	cfg.Set("Network.GroupingMinV", 2)
	n, err = buildNetwork(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if n.NumGroups() == 0 {
		t.Error("grouping enabled, got no groups")
	}
}

func TestTemperatureHandler(t *testing.T) {
	h, err := temperatureHandler(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := h.(clusterdyn.ConstantTemperature); !ok {
		t.Errorf("want constant temperature, got %T", h)
	}

	cfg := testConfig()
	cfg.Set("Temperature.Bulk", 300.0)
	h, err = temperatureHandler(cfg)
	if err != nil {
		t.Fatal(err)
	}
	g, ok := h.(clusterdyn.TemperatureGradient)
	if !ok {
		t.Fatalf("want gradient, got %T", h)
	}
	if g.Surface != 1000 || g.Bulk != 300 || g.Depth != 1.5 {
		t.Errorf("unexpected gradient %+v", g)
	}

	profile := filepath.Join(t.TempDir(), "temp.yaml")
	data := "points:\n  - {time: 0, temperature: 800}\n  - {time: 1, temperature: 600}\n"
	if err := os.WriteFile(profile, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	cfg = testConfig()
	cfg.Set("Temperature.Profile", profile)
	h, err = temperatureHandler(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got := h.Temperature(0, 0); got != 800 {
		t.Errorf("want 800, got %g", got)
	}

	// A profile and a gradient together are ambiguous.
	cfg.Set("Temperature.Bulk", 300.0)
	if _, err := temperatureHandler(cfg); err == nil {
		t.Error("profile plus gradient should fail")
	}

	cfg = testConfig()
	cfg.Set("Temperature.Constant", 0.0)
	if _, err := temperatureHandler(cfg); err == nil {
		t.Error("no temperature information should fail")
	}
}

func TestNewSimErrors(t *testing.T) {
	cfg := testConfig()
	cfg.Set("Grid.NPoints", 2)
	if _, err := NewSim(cfg, io.Discard); err == nil {
		t.Error("too few grid points should fail")
	}

	cfg = testConfig()
	cfg.Set("Network.MaxHe", 3)
	if _, err := NewSim(cfg, io.Discard); err == nil {
		t.Error("network too small for the mutation rules should fail")
	}
}

func TestNewSimRun(t *testing.T) {
	sim, err := NewSim(testConfig(), io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if err := sim.Run(); err != nil {
		t.Fatal(err)
	}
	if sim.Time <= 0 || sim.Dt <= 0 {
		t.Errorf("simulation did not advance: time %g, step %g", sim.Time, sim.Dt)
	}

	// Implanted helium is retained in the domain.
	he, _, _ := sim.Retention()
	if he <= 0 {
		t.Errorf("want positive helium retention, got %g", he)
	}

	out := filepath.Join(t.TempDir(), "out.yaml")
	if err := WriteResults(testConfig(), sim, out); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var res Results
	if err := yaml.NewDecoder(f).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.Time != sim.Time {
		t.Errorf("want time %g, got %g", sim.Time, res.Time)
	}
	if res.Retention.Helium != he {
		t.Errorf("want retention %g, got %g", he, res.Retention.Helium)
	}
	for _, name := range []string{"He1", "He2", "V1", "I1"} {
		p, ok := res.Profiles[name]
		if !ok {
			t.Errorf("profile %q missing", name)
			continue
		}
		if len(p.Depth) != 3 || len(p.Concentration) != 3 {
			t.Errorf("profile %q has wrong length", name)
		}
	}
}
