// Body placement. Uniform layout draws straight from the coordinate generator;
// clustered layout rejection-samples the same draws against a simplex noise
// density so bodies bunch into belts while staying inside the field bounds.
package world

import (
	"fmt"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/starfield/internal/entropy"
)

// Layout selects how body positions are distributed over the field.
type Layout uint8

const (
	LayoutUniform   Layout = iota // Independent uniform draws on both axes
	LayoutClustered               // Uniform draws thinned by a noise density
)

// maxClusterAttempts bounds rejection sampling; the last candidate is kept.
const maxClusterAttempts = 32

// LayoutName returns the configuration name of a layout.
func LayoutName(l Layout) string {
	switch l {
	case LayoutUniform:
		return "uniform"
	case LayoutClustered:
		return "clustered"
	default:
		return "unknown"
	}
}

// ParseLayout is the inverse of LayoutName. The empty string means uniform.
func ParseLayout(s string) (Layout, error) {
	switch s {
	case "", "uniform":
		return LayoutUniform, nil
	case "clustered":
		return LayoutClustered, nil
	default:
		return 0, fmt.Errorf("unknown layout %q", s)
	}
}

// GenConfig holds placement parameters.
type GenConfig struct {
	Layout Layout
	Seed   int64   // 0 = nondeterministic
	Scale  float64 // Noise frequency per field unit (clustered only)
}

// DefaultGenConfig returns the reference placement: uniform over the field.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Layout: LayoutUniform,
		Scale:  0.012,
	}
}

// Placer hands out body positions in generation order.
type Placer struct {
	cfg    GenConfig
	coords *entropy.Coordinates
	noise  opensimplex.Noise
	accept *entropy.Real
}

// NewPlacer wraps a coordinate generator. The placer owns coords from here on.
func NewPlacer(cfg GenConfig, coords *entropy.Coordinates) *Placer {
	p := &Placer{cfg: cfg, coords: coords}
	if cfg.Layout == LayoutClustered {
		seed := cfg.Seed
		if seed == 0 {
			seed = entropy.CryptoSeed()
		}
		p.noise = opensimplex.NewNormalized(seed)
		p.accept = entropy.MustReal(0, 1, entropy.Derive(cfg.Seed, 3))
		if p.cfg.Scale <= 0 {
			p.cfg.Scale = DefaultGenConfig().Scale
		}
	}
	return p
}

// Next returns the next position.
func (p *Placer) Next() Position {
	x, y := p.coords.Generate()
	if p.cfg.Layout != LayoutClustered {
		return Position{X: x, Y: y}
	}

	for attempt := 1; attempt < maxClusterAttempts; attempt++ {
		if p.accept.Generate() < p.Density(Position{X: x, Y: y}) {
			break
		}
		x, y = p.coords.Generate()
	}
	return Position{X: x, Y: y}
}

// Density returns the clustered-layout acceptance probability at pos, in [0, 1].
// Uniform layouts have density 1 everywhere.
func (p *Placer) Density(pos Position) float64 {
	if p.noise == nil {
		return 1
	}
	return octaveNoise(p.noise, pos.X, pos.Y, 3, p.cfg.Scale, 0.5)
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
