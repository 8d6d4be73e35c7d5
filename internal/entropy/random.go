// Package entropy provides the bounded random generators every stochastic part of
// the simulation draws from. Each generator owns its own stream; nothing is shared.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	mrand "math/rand"
)

// ErrInvalidRange is returned when a generator is configured with lower > upper.
var ErrInvalidRange = errors.New("entropy: lower bound exceeds upper bound")

// Generator produces one bounded value per call.
type Generator interface {
	Generate() float64
}

// Int draws whole numbers uniformly from [Lo, Hi], both bounds inclusive.
type Int struct {
	lo, hi int
	rng    *mrand.Rand
}

// NewInt creates an integer generator over [lo, hi]. A zero seed draws the
// stream seed from crypto/rand.
func NewInt(lo, hi int, seed int64) (*Int, error) {
	if lo > hi {
		return nil, fmt.Errorf("%w: int [%d, %d]", ErrInvalidRange, lo, hi)
	}
	return &Int{lo: lo, hi: hi, rng: newStream(seed)}, nil
}

// MustInt is NewInt for ranges fixed at compile time.
func MustInt(lo, hi int, seed int64) *Int {
	g, err := NewInt(lo, hi, seed)
	if err != nil {
		panic(err)
	}
	return g
}

// Int returns the next value.
func (g *Int) Int() int {
	return g.lo + g.rng.Intn(g.hi-g.lo+1)
}

// Generate implements Generator.
func (g *Int) Generate() float64 {
	return float64(g.Int())
}

// Bounds returns the configured range.
func (g *Int) Bounds() (lo, hi int) {
	return g.lo, g.hi
}

// Real draws floats uniformly from [Lo, Hi).
type Real struct {
	lo, hi float64
	rng    *mrand.Rand
}

// NewReal creates a real-valued generator over [lo, hi).
func NewReal(lo, hi float64, seed int64) (*Real, error) {
	if lo > hi {
		return nil, fmt.Errorf("%w: real [%g, %g)", ErrInvalidRange, lo, hi)
	}
	return &Real{lo: lo, hi: hi, rng: newStream(seed)}, nil
}

// MustReal is NewReal for ranges fixed at compile time.
func MustReal(lo, hi float64, seed int64) *Real {
	g, err := NewReal(lo, hi, seed)
	if err != nil {
		panic(err)
	}
	return g
}

// Generate implements Generator.
func (g *Real) Generate() float64 {
	return g.lo + g.rng.Float64()*(g.hi-g.lo)
}

// Bounds returns the configured range.
func (g *Real) Bounds() (lo, hi float64) {
	return g.lo, g.hi
}

// Derive returns the stream seed for the k-th generator of a run. A zero base
// stays zero so every derived stream falls back to crypto/rand.
func Derive(base, k int64) int64 {
	if base == 0 {
		return 0
	}
	return base + k
}

func newStream(seed int64) *mrand.Rand {
	if seed == 0 {
		seed = CryptoSeed()
	}
	return mrand.New(mrand.NewSource(seed))
}

// CryptoSeed returns a nonzero seed read from crypto/rand.
func CryptoSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand does not fail on supported platforms.
		return 1
	}
	s := int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
	if s == 0 {
		return 1
	}
	return s
}
