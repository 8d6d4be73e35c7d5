// Per-tick protocol: production, acquisition, corporations. Each phase
// finishes for every entity before the next phase starts.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/starfield/internal/celestial"
)

// Tick runs one discrete step of the simulation.
func (s *Simulation) Tick(tick uint64) {
	s.LastTick = tick
	s.tickEvents = s.tickEvents[:0]

	s.produce(tick)
	bought, rejected := s.acquire(tick)
	fired := s.operateCorporations(tick)
	s.Stats.Purchases += bought
	s.Stats.Rejections += rejected
	s.Stats.CorporationEffects += fired

	if s.cfg.Strict {
		if err := s.Verify(); err != nil {
			panic(fmt.Sprintf("tick %d: invariant violated: %v", tick, err))
		}
	}

	slog.Info("tick report",
		"tick", tick,
		"purchases", bought,
		"rejected_purchases", rejected,
		"corporation_effects", fired,
		"unowned_asteroids", s.unownedCount(),
	)

	s.appendEvents(s.tickEvents...)
}

// produce advances every planet's economy in field order.
func (s *Simulation) produce(tick uint64) {
	for _, p := range s.Planets {
		y := p.GenerateResources()
		slog.Debug("resources generated",
			"planet", p.Name,
			"resources", y.Resources,
			"accumulated", y.Accumulated,
			"demand", y.Demand,
			"money", y.Money,
			"fuel", y.Fuel,
		)
		s.record(tick, CategoryEconomy, fmt.Sprintf("%s generated %d resources (%d / %d), converted to %.2f money and %.2f fuel",
			p.Name, y.Resources, y.Accumulated, y.Demand, y.Money, y.Fuel))

		if up := y.Upgrade; up != nil {
			s.Stats.Upgrades++
			desc := fmt.Sprintf("%s upgraded to %s technology level, demand %d, productivity %d",
				p.Name, celestial.TierName(up.To), up.Demand, up.Productivity)
			if up.Maxed {
				desc = fmt.Sprintf("%s has reached the maximum technology level, productivity %d", p.Name, up.Productivity)
			}
			slog.Debug("technology upgraded", "planet", p.Name, "tier", celestial.TierName(up.To), "maxed", up.Maxed)
			s.record(tick, CategoryUpgrade, desc)
		}
	}
}

// acquire gives every planet, in field order, a chance at every still
// unowned asteroid. Earlier planets get first refusal. It returns the number
// of purchases and of rejected attempts.
func (s *Simulation) acquire(tick uint64) (bought, rejected int) {
	for _, p := range s.Planets {
		for _, a := range s.Asteroids {
			if a.Owned() {
				continue
			}
			out, err := p.BuyAsteroid(a)
			if err != nil {
				panic(fmt.Sprintf("tick %d: %s buying %s: %v", tick, p.Name, a.Name, err))
			}
			if !out.Bought {
				rejected++
				slog.Debug("purchase rejected",
					"planet", p.Name,
					"asteroid", a.Name,
					"price", out.Price,
					"fuel_cost", out.FuelCost,
				)
				s.record(tick, CategoryRejected, fmt.Sprintf("%s cannot buy %s due to insufficient funds or fuel (price %.2f, fuel cost %.2f)",
					p.Name, a.Name, out.Price, out.FuelCost))
				continue
			}
			bought++
			slog.Debug("asteroid bought",
				"planet", p.Name,
				"asteroid", a.Name,
				"price", out.Price,
				"fuel_cost", out.FuelCost,
				"productivity", p.Productivity,
			)
			s.record(tick, CategoryPurchase, fmt.Sprintf("%s bought %s for %.2f money and %.2f fuel, productivity now %d",
				p.Name, a.Name, out.Price, out.FuelCost, p.Productivity))
		}
	}
	return bought, rejected
}

// operateCorporations runs every corporation once, in registration order.
func (s *Simulation) operateCorporations(tick uint64) int {
	fired := 0
	for _, c := range s.Corporations {
		eff := c.Operate(s.Planets, s.Asteroids)
		if !eff.Fired {
			continue
		}
		fired++
		slog.Debug("corporation acted", "corporation", c.Name, "affected", eff.Affected)
		s.record(tick, CategoryCorporation, eff.Description())
	}
	return fired
}

func (s *Simulation) unownedCount() int {
	n := 0
	for _, a := range s.Asteroids {
		if !a.Owned() {
			n++
		}
	}
	return n
}
