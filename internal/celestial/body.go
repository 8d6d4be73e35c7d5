// Package celestial provides the bodies of the field: planets with an economy,
// and asteroids that planets buy to raise their productivity.
package celestial

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/talgya/starfield/internal/world"
)

var (
	// ErrAlreadyOwned is an invariant violation: asteroid ownership is set once.
	ErrAlreadyOwned = errors.New("celestial: asteroid already owned")

	// ErrUnregistered reports a planet used before it was built by NewPlanet.
	ErrUnregistered = errors.New("celestial: planet not registered")
)

// Kind discriminates the closed set of body variants.
type Kind uint8

const (
	KindPlanet Kind = iota
	KindAsteroid
)

// KindName returns a human-readable name for a body kind.
func KindName(k Kind) string {
	switch k {
	case KindPlanet:
		return "Planet"
	case KindAsteroid:
		return "Asteroid"
	default:
		return "Unknown"
	}
}

// PlanetID is a planet's index in the field's planet list.
type PlanetID int

// AsteroidID is an asteroid's index in the field's asteroid list.
type AsteroidID int

// Body holds the attributes shared by every celestial body.
type Body struct {
	Kind         Kind           `json:"kind"`
	Name         string         `json:"name"`
	Position     world.Position `json:"position"`
	Productivity int            `json:"productivity"`
	Price        float64        `json:"price"`
}

// Describe returns the shared part of a body summary.
func (b *Body) Describe() string {
	return fmt.Sprintf("%s at %s, production: %d, price: %s",
		b.Name, b.Position, b.Productivity, formatAmount(b.Price))
}

// formatAmount renders money, fuel, and prices with thousands separators.
func formatAmount(v float64) string {
	return humanize.CommafWithDigits(v, 2)
}
