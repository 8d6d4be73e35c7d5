package entropy

import (
	"errors"
	"math"
	"testing"
)

func TestNewInt_InvalidRange(t *testing.T) {
	if _, err := NewInt(10, 5, 1); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("got %v, want ErrInvalidRange", err)
	}
	if _, err := NewReal(1.5, 0.5, 1); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("got %v, want ErrInvalidRange", err)
	}
}

func TestInt_InclusiveBounds(t *testing.T) {
	g := MustInt(37, 60, 42)
	sawLo, sawHi := false, false
	for range 20000 {
		v := g.Int()
		if v < 37 || v > 60 {
			t.Fatalf("value %d outside [37, 60]", v)
		}
		if v == 37 {
			sawLo = true
		}
		if v == 60 {
			sawHi = true
		}
	}
	if !sawLo || !sawHi {
		t.Errorf("bounds not reached: lo=%v hi=%v", sawLo, sawHi)
	}
}

func TestInt_SingleValueRange(t *testing.T) {
	g := MustInt(7, 7, 3)
	for range 10 {
		if v := g.Int(); v != 7 {
			t.Fatalf("got %d, want 7", v)
		}
	}
}

func TestReal_HalfOpen(t *testing.T) {
	g := MustReal(150.0, 300.0, 9)
	for range 10000 {
		v := g.Generate()
		if v < 150.0 || v >= 300.0 {
			t.Fatalf("value %f outside [150, 300)", v)
		}
	}
}

func TestSeededStreamsRepeat(t *testing.T) {
	a := MustReal(0, 500, 11)
	b := MustReal(0, 500, 11)
	for i := range 50 {
		if x, y := a.Generate(), b.Generate(); x != y {
			t.Fatalf("draw %d: %f != %f", i, x, y)
		}
	}
}

func TestDerive(t *testing.T) {
	if got := Derive(0, 5); got != 0 {
		t.Errorf("Derive(0, 5) = %d, want 0", got)
	}
	if got := Derive(42, 5); got != 47 {
		t.Errorf("Derive(42, 5) = %d, want 47", got)
	}
}

func TestCoordinates(t *testing.T) {
	c, err := NewSquare(0, 500, 42)
	if err != nil {
		t.Fatal(err)
	}
	for range 1000 {
		x, y := c.Generate()
		if x < 0 || x >= 500 || y < 0 || y >= 500 {
			t.Fatalf("position (%f, %f) out of bounds", x, y)
		}
	}
}

type fixed float64

func (f fixed) Generate() float64 { return float64(f) }

func TestCoordinates_AxisOrder(t *testing.T) {
	c := NewCoordinates(fixed(3), fixed(4))
	x, y := c.Generate()
	if x != 3 || y != 4 {
		t.Errorf("got (%v, %v), want (3, 4)", x, y)
	}
	if d := math.Hypot(x, y); d != 5 {
		t.Errorf("hypot = %v, want 5", d)
	}
}
