package celestial

import (
	"fmt"
	"strings"

	"github.com/talgya/starfield/internal/balance"
	"github.com/talgya/starfield/internal/entropy"
	"github.com/talgya/starfield/internal/world"
)

// Tier is a planet's technology level. Tiers are ordered: Low < Medium < High.
type Tier uint8

const (
	TierLow Tier = iota
	TierMedium
	TierHigh
)

// TierName returns a human-readable name for a technology tier.
func TierName(t Tier) string {
	switch t {
	case TierLow:
		return "Low"
	case TierMedium:
		return "Medium"
	case TierHigh:
		return "High"
	default:
		return "Unknown"
	}
}

func (t Tier) String() string { return TierName(t) }

// IntSource yields integer draws. *entropy.Int satisfies it.
type IntSource interface {
	Int() int
}

// Planet is a body with an economy. It never changes hands.
type Planet struct {
	Body
	ID PlanetID `json:"id"`

	Demand int  `json:"demand"` // Accumulation that triggers the next upgrade; 0 = never again
	Tier   Tier `json:"tier"`

	// Running totals, all reset together on upgrade or purchase.
	Accumulated int     `json:"accumulated"`
	Money       float64 `json:"money"`
	Fuel        float64 `json:"fuel"`

	FuelCostPerDistance float64 `json:"fuel_cost_per_distance"`

	Owned []*Asteroid `json:"-"`

	// Replaced wholesale at the Medium → High transition.
	demandGen  IntSource
	streamSeed int64
}

// NewPlanet creates a Low-tier planet with empty totals and the reference
// fuel-cost multiplier. seed drives the planet's demand stream (0 = random).
func NewPlanet(id PlanetID, name string, pos world.Position, productivity, demand int, price float64, seed int64) *Planet {
	return &Planet{
		Body: Body{
			Kind:         KindPlanet,
			Name:         name,
			Position:     pos,
			Productivity: productivity,
			Price:        price,
		},
		ID:                  id,
		Demand:              demand,
		Tier:                TierLow,
		FuelCostPerDistance: balance.FuelCostPerDistance,
		demandGen:           entropy.MustInt(balance.DemandMin, balance.DemandMax, entropy.Derive(seed, 0)),
		streamSeed:          seed,
	}
}

// SetDemandSource replaces the generator used to roll demand on upgrade.
func (p *Planet) SetDemandSource(src IntSource) {
	p.demandGen = src
}

// Yield reports one call to GenerateResources.
type Yield struct {
	Resources   int
	Money       float64
	Fuel        float64
	Accumulated int
	Demand      int
	Upgrade     *Upgrade // nil when the threshold was not reached
}

// Upgrade reports one technology transition.
type Upgrade struct {
	From, To     Tier
	Demand       int
	Productivity int
	Maxed        bool // Upgrade applied at High; no further upgrades follow
}

// GenerateResources adds one tick of production and converts it into money
// and fuel. Reaching a nonzero demand triggers UpgradeTechnology.
func (p *Planet) GenerateResources() Yield {
	p.Accumulated += p.Productivity
	money := float64(p.Productivity) * balance.MoneyPerResource
	fuel := float64(p.Productivity) * balance.FuelPerResource
	p.Money += money
	p.Fuel += fuel

	y := Yield{
		Resources:   p.Productivity,
		Money:       money,
		Fuel:        fuel,
		Accumulated: p.Accumulated,
		Demand:      p.Demand,
	}
	if p.Demand > 0 && p.Accumulated >= p.Demand {
		up := p.UpgradeTechnology()
		y.Upgrade = &up
	}
	return y
}

// UpgradeTechnology clears the running totals and advances the tier.
func (p *Planet) UpgradeTechnology() Upgrade {
	p.resetTotals()

	up := Upgrade{From: p.Tier}
	switch p.Tier {
	case TierLow:
		p.Tier = TierMedium
		p.Demand = p.demandGen.Int()
		p.Productivity = scale(p.Productivity, balance.MediumProductivityMul)
	case TierMedium:
		p.Tier = TierHigh
		p.demandGen = entropy.MustInt(balance.HighDemandMin, balance.HighDemandMax, entropy.Derive(p.streamSeed, 1))
		p.Demand = p.demandGen.Int()
		p.Productivity = scale(p.Productivity, balance.HighProductivityMul)
	default:
		p.Productivity = scale(p.Productivity, balance.MaxedProductivityMul)
		p.Demand = 0
		up.Maxed = true
	}
	up.To = p.Tier
	up.Demand = p.Demand
	up.Productivity = p.Productivity
	return up
}

// Purchase reports one attempt to buy an asteroid.
type Purchase struct {
	Asteroid string
	Price    float64
	FuelCost float64
	Bought   bool
}

// BuyAsteroid attempts to buy an unowned asteroid. A planet short on money or
// fuel gets Bought == false and keeps its state untouched; that is not an error.
// A successful purchase spends the planet's whole economic buffer.
func (p *Planet) BuyAsteroid(a *Asteroid) (Purchase, error) {
	if p.demandGen == nil {
		return Purchase{}, fmt.Errorf("%w: %q", ErrUnregistered, p.Name)
	}
	if a.Owned() {
		return Purchase{}, fmt.Errorf("%w: %s by planet %d", ErrAlreadyOwned, a.Name, *a.Owner)
	}

	cost := a.FuelCostTo(p)
	out := Purchase{Asteroid: a.Name, Price: a.Price, FuelCost: cost}
	if p.Money < a.Price || p.Fuel < cost {
		return out, nil
	}

	if err := a.SetOwner(p.ID); err != nil {
		return out, err
	}
	p.Money -= a.Price
	p.Fuel -= cost
	p.Owned = append(p.Owned, a)
	p.Productivity += a.Productivity
	p.resetTotals()

	out.Bought = true
	return out, nil
}

// OwnedNames lists the owned asteroids in purchase order.
func (p *Planet) OwnedNames() []string {
	names := make([]string, len(p.Owned))
	for i, a := range p.Owned {
		names[i] = a.Name
	}
	return names
}

// Describe returns the planet summary followed by its holdings.
func (p *Planet) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s | Accumulated: %d | Demand: %d | Technology: %s | Money: %s | Fuel: %s\n",
		p.Body.Describe(), p.Accumulated, p.Demand, TierName(p.Tier),
		formatAmount(p.Money), formatAmount(p.Fuel))
	if len(p.Owned) == 0 {
		fmt.Fprintf(&b, "%s does not own any asteroids.", p.Name)
		return b.String()
	}
	fmt.Fprintf(&b, "%s owns the following asteroids:", p.Name)
	for _, name := range p.OwnedNames() {
		fmt.Fprintf(&b, "\n  - %s", name)
	}
	return b.String()
}

func (p *Planet) resetTotals() {
	p.Accumulated = 0
	p.Money = 0
	p.Fuel = 0
}

// scale multiplies an integer quantity, truncating toward zero.
func scale(v int, mul float64) int {
	return int(float64(v) * mul)
}
