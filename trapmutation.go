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

import "sync"

// MutationRule describes trap mutation of one helium cluster size: within
// Depth of the surface, He_n clusters capture NV lattice vacancies and
// punch out the same number of interstitials.
type MutationRule struct {
	NHe   int     `desc:"Helium cluster size"`
	NV    int     `desc:"Vacancies captured"`
	Depth float64 `desc:"Maximum depth" units:"nm"`
}

// TrapMutation transforms near-surface helium clusters into helium-vacancy
// clusters, emitting interstitials. The process is treated as effectively
// instantaneous: its rate is pinned well above the fastest reaction in the
// network so it is never rate limiting.
type TrapMutation struct {
	rules []MutationRule

	// Enhancement multiplies the largest forward rate constant in the
	// network to form the mutation rate.
	Enhancement float64

	heIDs   []int
	prodIDs []int
	iID     int

	// rate cache, keyed by the temperature it was computed for. Guarded
	// by mx: the manipulator runs on every Calculations worker.
	mx       sync.Mutex
	rateTemp float64
	rate     float64
}

// NewTrapMutation resolves the rule clusters against the network. Every
// mutating size, its helium-vacancy product, and the single interstitial
// must be tracked as elementary clusters.
func NewTrapMutation(n *Network, rules []MutationRule, enhancement float64) (*TrapMutation, error) {
	if enhancement <= 0 {
		return nil, configErrorf("trap mutation enhancement must be positive, got %g", enhancement)
	}
	single, ok := n.FindSingle(I, 1)
	if !ok {
		return nil, configErrorf("trap mutation requires the single-interstitial cluster in the network")
	}
	t := &TrapMutation{
		rules:       rules,
		Enhancement: enhancement,
		iID:         single.ID(),
	}
	for _, rule := range rules {
		he, ok := n.FindSingle(He, rule.NHe)
		if !ok {
			return nil, configErrorf("trap mutation rule He%d: cluster not tracked", rule.NHe)
		}
		prod, ok := n.Find(Comp(rule.NHe, rule.NV, 0))
		if !ok {
			return nil, configErrorf("trap mutation rule He%d: product He%dV%d not tracked", rule.NHe, rule.NHe, rule.NV)
		}
		if prod.Grouped() {
			return nil, configErrorf("trap mutation rule He%d: product He%dV%d is grouped; products must be elementary", rule.NHe, rule.NHe, rule.NV)
		}
		t.heIDs = append(t.heIDs, he.ID())
		t.prodIDs = append(t.prodIDs, prod.ID())
	}
	return t, nil
}

func (t *TrapMutation) currentRate(n *Network) float64 {
	t.mx.Lock()
	defer t.mx.Unlock()
	if n.Temperature() != t.rateTemp || t.rate == 0 {
		t.rateTemp = n.Temperature()
		t.rate = t.Enhancement * n.LargestRate()
	}
	return t.rate
}

// Manipulator returns a function applying trap mutation at near-surface
// points.
func (t *TrapMutation) Manipulator(n *Network) PointManipulator {
	return func(p *GridPoint, Dt float64) {
		rate := t.currentRate(n)
		for i, rule := range t.rules {
			if p.X > rule.Depth {
				continue
			}
			flux := rate * p.Ci[t.heIDs[i]]
			p.Cf[t.heIDs[i]] -= flux * Dt
			p.Cf[t.prodIDs[i]] += flux * Dt
			p.Cf[t.iID] += float64(rule.NV) * flux * Dt
		}
	}
}

// Partials adds the trap mutation contribution to the Jacobian at the
// given point, visiting structurally nonzero entries.
func (t *TrapMutation) Partials(n *Network, p *GridPoint, visit func(row, col int, value float64)) {
	rate := t.currentRate(n)
	for i, rule := range t.rules {
		if p.X > rule.Depth {
			continue
		}
		visit(t.heIDs[i], t.heIDs[i], -rate)
		visit(t.prodIDs[i], t.heIDs[i], rate)
		visit(t.iID, t.heIDs[i], float64(rule.NV)*rate)
	}
}
