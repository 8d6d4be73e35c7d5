// Package corp provides corporations: passive actors that, with a fixed chance
// each tick, apply one global perturbation to the field's economy.
package corp

import (
	"fmt"

	"github.com/talgya/starfield/internal/balance"
	"github.com/talgya/starfield/internal/celestial"
	"github.com/talgya/starfield/internal/entropy"
)

// Kind is the closed set of corporation strategies.
type Kind uint8

const (
	KindLogistics  Kind = iota // Cuts every planet's fuel cost per distance
	KindTechTrader             // Raises demand on Medium and High planets
	KindMiner                  // Discounts every unowned asteroid
)

// KindName returns the configuration name of a corporation kind.
func KindName(k Kind) string {
	switch k {
	case KindLogistics:
		return "logistics"
	case KindTechTrader:
		return "tech_trader"
	case KindMiner:
		return "miner"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of KindName.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "logistics":
		return KindLogistics, nil
	case "tech_trader":
		return KindTechTrader, nil
	case "miner":
		return KindMiner, nil
	default:
		return 0, fmt.Errorf("unknown corporation kind %q", s)
	}
}

// Roller yields the per-tick chance roll. *entropy.Int satisfies it.
type Roller interface {
	Int() int
}

// Corporation holds a name, a strategy, and its own chance stream.
type Corporation struct {
	Name string
	Kind Kind

	chance Roller
}

// New creates a corporation rolling [0, ChanceRange) from its own stream.
func New(name string, kind Kind, seed int64) *Corporation {
	return &Corporation{
		Name:   name,
		Kind:   kind,
		chance: entropy.MustInt(0, balance.ChanceRange-1, seed),
	}
}

// NewWithRoller creates a corporation with an injected chance source.
func NewWithRoller(name string, kind Kind, r Roller) *Corporation {
	return &Corporation{Name: name, Kind: kind, chance: r}
}

// Effect describes what one Operate call did.
type Effect struct {
	Corporation string
	Kind        Kind
	Fired       bool
	Affected    int // Planets or asteroids touched
}

// Description returns a one-line account of a fired effect.
func (e Effect) Description() string {
	switch e.Kind {
	case KindLogistics:
		return fmt.Sprintf("%s is optimizing transportation costs, fuel cost reduced on %d planets", e.Corporation, e.Affected)
	case KindTechTrader:
		return fmt.Sprintf("%s is trading high-tech resources, demand raised on %d planets", e.Corporation, e.Affected)
	case KindMiner:
		return fmt.Sprintf("%s is mining asteroids, price cut on %d unowned asteroids", e.Corporation, e.Affected)
	default:
		return e.Corporation
	}
}

// Operate rolls once and, below the threshold, applies the corporation's effect.
func (c *Corporation) Operate(planets []*celestial.Planet, asteroids []*celestial.Asteroid) Effect {
	eff := Effect{Corporation: c.Name, Kind: c.Kind}
	if c.chance.Int() >= balance.ChanceThreshold {
		return eff
	}
	eff.Fired = true

	switch c.Kind {
	case KindLogistics:
		for _, p := range planets {
			p.FuelCostPerDistance *= balance.LogisticsFuelMul
			eff.Affected++
		}
	case KindTechTrader:
		for _, p := range planets {
			if p.Tier == celestial.TierMedium || p.Tier == celestial.TierHigh {
				p.Demand = int(float64(p.Demand) * balance.TechTraderDemandMul)
				eff.Affected++
			}
		}
	case KindMiner:
		for _, a := range asteroids {
			if !a.Owned() {
				a.SetPrice(a.Price * balance.MinerPriceMul)
				eff.Affected++
			}
		}
	}
	return eff
}

// Defaults returns the three corporations of the reference configuration.
func Defaults(seed int64) []*Corporation {
	return []*Corporation{
		New("Logistics Corp", KindLogistics, entropy.Derive(seed, 600)),
		New("Tech Trader Corp", KindTechTrader, entropy.Derive(seed, 601)),
		New("Miner Corp", KindMiner, entropy.Derive(seed, 602)),
	}
}
