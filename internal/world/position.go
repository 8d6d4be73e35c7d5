// Package world provides the 2-D geometry of the field and body placement.
package world

import (
	"fmt"
	"math"
)

// Position is a point on the field. Positions never change after creation.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance between two positions.
func Distance(a, b Position) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// String formats the position with two decimals.
func (p Position) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y)
}

// InBounds reports whether p lies in [lo, hi] on both axes.
func (p Position) InBounds(lo, hi float64) bool {
	return p.X >= lo && p.X <= hi && p.Y >= lo && p.Y <= hi
}
