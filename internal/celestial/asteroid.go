package celestial

import (
	"fmt"

	"github.com/talgya/starfield/internal/world"
)

// Asteroid is a body a single planet may buy. Owner refers back to the buyer
// by handle; the planet holds the asteroid, never the other way round.
type Asteroid struct {
	Body
	ID    AsteroidID `json:"id"`
	Owner *PlanetID  `json:"owner,omitempty"`
}

// NewAsteroid creates an unowned asteroid.
func NewAsteroid(id AsteroidID, name string, pos world.Position, productivity int, price float64) *Asteroid {
	return &Asteroid{
		Body: Body{
			Kind:         KindAsteroid,
			Name:         name,
			Position:     pos,
			Productivity: productivity,
			Price:        price,
		},
		ID: id,
	}
}

// Owned reports whether a planet has bought the asteroid.
func (a *Asteroid) Owned() bool {
	return a.Owner != nil
}

// FuelCostTo returns the fuel p spends to reach the asteroid at p's current
// fuel-cost multiplier.
func (a *Asteroid) FuelCostTo(p *Planet) float64 {
	return world.Distance(a.Position, p.Position) * p.FuelCostPerDistance
}

// SetOwner records the buyer. Ownership never changes once set.
func (a *Asteroid) SetOwner(id PlanetID) error {
	if a.Owner != nil {
		return fmt.Errorf("%w: %s by planet %d", ErrAlreadyOwned, a.Name, *a.Owner)
	}
	a.Owner = &id
	return nil
}

// SetPrice overwrites the asking price.
func (a *Asteroid) SetPrice(price float64) {
	a.Price = price
}

// Describe returns the asteroid summary.
func (a *Asteroid) Describe() string {
	return fmt.Sprintf("%s | Productivity: %d", a.Body.Describe(), a.Productivity)
}
