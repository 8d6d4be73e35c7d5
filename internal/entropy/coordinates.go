package entropy

// Coordinates composes two independent generators into 2-D positions.
type Coordinates struct {
	x, y Generator
}

// NewCoordinates takes exclusive ownership of the two axis generators.
func NewCoordinates(x, y Generator) *Coordinates {
	return &Coordinates{x: x, y: y}
}

// NewSquare builds a coordinate generator with both axes real over [lo, hi).
func NewSquare(lo, hi float64, seed int64) (*Coordinates, error) {
	x, err := NewReal(lo, hi, Derive(seed, 1))
	if err != nil {
		return nil, err
	}
	y, err := NewReal(lo, hi, Derive(seed, 2))
	if err != nil {
		return nil, err
	}
	return NewCoordinates(x, y), nil
}

// Generate draws x then y.
func (c *Coordinates) Generate() (x, y float64) {
	return c.x.Generate(), c.y.Generate()
}
