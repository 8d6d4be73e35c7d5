// Simulation is the game field: it owns every body and corporation and runs
// the per-tick protocol over them.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/talgya/starfield/internal/balance"
	"github.com/talgya/starfield/internal/celestial"
	"github.com/talgya/starfield/internal/corp"
	"github.com/talgya/starfield/internal/entropy"
	"github.com/talgya/starfield/internal/world"
)

var (
	ErrTooManyPlanets   = errors.New("engine: too many planets")
	ErrTooManyAsteroids = errors.New("engine: too many asteroids")
	ErrNegativeCount    = errors.New("engine: negative entity count")
	ErrFieldGenerated   = errors.New("engine: field already generated")
)

// maxEvents bounds the in-memory event log.
const maxEvents = 1000

// FieldConfig holds field generation parameters.
type FieldConfig struct {
	Planets   int
	Asteroids int
	Routes    int          // Validated and reported; no effect on the simulation
	Seed      int64        // 0 = nondeterministic
	Layout    world.Layout // Body placement
	Strict    bool         // Verify invariants after every tick
}

// Simulation holds the complete field state.
type Simulation struct {
	RunID        uuid.UUID
	Planets      []*celestial.Planet
	Asteroids    []*celestial.Asteroid
	Corporations []*corp.Corporation
	Events       []Event // Recent events, trimmed to maxEvents
	LastTick     uint64

	// Running totals over the whole run.
	Stats SimStats

	// Fuel cost between planets, one entry per unordered pair.
	fuelCosts map[planetPair]float64

	cfg       FieldConfig
	placer    *world.Placer
	generated bool

	// Events raised during the tick in progress.
	tickEvents []Event
}

// SimStats tracks run-wide counters.
type SimStats struct {
	Purchases          int `json:"purchases"`
	Rejections         int `json:"rejections"`
	Upgrades           int `json:"upgrades"`
	CorporationEffects int `json:"corporation_effects"`
}

type planetPair struct {
	lo, hi celestial.PlanetID
}

func pairOf(a, b celestial.PlanetID) planetPair {
	if a > b {
		a, b = b, a
	}
	return planetPair{lo: a, hi: b}
}

// NewSimulation validates cfg and prepares an empty field. It fails before
// any body exists when the requested counts exceed field capacity.
func NewSimulation(cfg FieldConfig) (*Simulation, error) {
	if cfg.Planets < 0 || cfg.Asteroids < 0 {
		return nil, fmt.Errorf("%w: planets=%d asteroids=%d", ErrNegativeCount, cfg.Planets, cfg.Asteroids)
	}
	if cfg.Planets > balance.MaxPlanets {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyPlanets, cfg.Planets, balance.MaxPlanets)
	}
	if cfg.Asteroids > balance.MaxAsteroids {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyAsteroids, cfg.Asteroids, balance.MaxAsteroids)
	}

	coords, err := entropy.NewSquare(balance.CoordMin, balance.CoordMax, entropy.Derive(cfg.Seed, 200))
	if err != nil {
		return nil, fmt.Errorf("coordinate generator: %w", err)
	}
	gen := world.DefaultGenConfig()
	gen.Layout = cfg.Layout
	gen.Seed = entropy.Derive(cfg.Seed, 210)

	return &Simulation{
		RunID:     uuid.New(),
		fuelCosts: make(map[planetPair]float64),
		cfg:       cfg,
		placer:    world.NewPlacer(gen, coords),
	}, nil
}

// Config returns the configuration the field was built from.
func (s *Simulation) Config() FieldConfig {
	return s.cfg
}

// AddCorporation registers a corporation. Corporations operate in
// registration order.
func (s *Simulation) AddCorporation(c *corp.Corporation) {
	s.Corporations = append(s.Corporations, c)
}

// GenerateField creates every planet and asteroid and fills the inter-planet
// fuel-cost table.
func (s *Simulation) GenerateField() error {
	if s.generated {
		return ErrFieldGenerated
	}
	seed := s.cfg.Seed
	prodGen := entropy.MustInt(balance.ProductivityMin, balance.ProductivityMax, entropy.Derive(seed, 100))
	demandGen := entropy.MustInt(balance.DemandMin, balance.DemandMax, entropy.Derive(seed, 101))
	priceGen := entropy.MustReal(balance.PriceMin, balance.PriceMax, entropy.Derive(seed, 102))

	s.Planets = make([]*celestial.Planet, 0, s.cfg.Planets)
	for i := 0; i < s.cfg.Planets; i++ {
		pos := s.placer.Next()
		p := celestial.NewPlanet(
			celestial.PlanetID(i), world.PlanetName(i), pos,
			prodGen.Int(), demandGen.Int(), priceGen.Generate(),
			entropy.Derive(seed, 1000+2*int64(i)),
		)
		s.Planets = append(s.Planets, p)
	}

	s.Asteroids = make([]*celestial.Asteroid, 0, s.cfg.Asteroids)
	for i := 0; i < s.cfg.Asteroids; i++ {
		pos := s.placer.Next()
		a := celestial.NewAsteroid(celestial.AsteroidID(i), world.AsteroidName(i), pos, prodGen.Int(), priceGen.Generate())
		s.Asteroids = append(s.Asteroids, a)
	}

	for i := 0; i < len(s.Planets); i++ {
		for j := i + 1; j < len(s.Planets); j++ {
			d := world.Distance(s.Planets[i].Position, s.Planets[j].Position)
			s.fuelCosts[pairOf(s.Planets[i].ID, s.Planets[j].ID)] = d * balance.FuelCostPerDistance
		}
	}

	s.generated = true
	slog.Info("field generated",
		"run", s.RunID,
		"planets", len(s.Planets),
		"asteroids", len(s.Asteroids),
		"routes", s.cfg.Routes,
		"layout", world.LayoutName(s.cfg.Layout),
		"fuel_routes", len(s.fuelCosts),
	)
	return nil
}

// FuelCost returns the table entry for two planets. The table is symmetric;
// a planet's cost to itself is 0.
func (s *Simulation) FuelCost(a, b celestial.PlanetID) (float64, bool) {
	if a == b {
		return 0, int(a) >= 0 && int(a) < len(s.Planets)
	}
	c, ok := s.fuelCosts[pairOf(a, b)]
	return c, ok
}

// FuelCostByName looks planets up by display name. Names are unique by
// generation convention only; the first match wins.
func (s *Simulation) FuelCostByName(a, b string) (float64, bool) {
	pa, okA := s.PlanetByName(a)
	pb, okB := s.PlanetByName(b)
	if !okA || !okB {
		return 0, false
	}
	return s.FuelCost(pa.ID, pb.ID)
}

// PlanetByName returns the first planet with the given name.
func (s *Simulation) PlanetByName(name string) (*celestial.Planet, bool) {
	for _, p := range s.Planets {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Run executes steps ticks, logs the winner as a result event, and returns it.
func (s *Simulation) Run(steps int, onReport func(Report)) Result {
	eng := NewEngine()
	eng.Tick = s.LastTick
	eng.OnTick = s.Tick
	eng.OnReport = func(tick uint64) {
		r := s.Snapshot(tick)
		if onReport != nil {
			onReport(r)
		}
	}
	eng.Run(steps)

	res := s.DetermineWinner()
	s.appendEvents(Event{Tick: s.LastTick, Description: res.String(), Category: CategoryResult})
	return res
}

// Describe returns the full field listing: planets first, then asteroids.
func (s *Simulation) Describe() string {
	var b strings.Builder
	b.WriteString("Planets:\n")
	for _, p := range s.Planets {
		b.WriteString(p.Describe())
		b.WriteByte('\n')
	}
	b.WriteString("Asteroids:\n")
	for _, a := range s.Asteroids {
		b.WriteString(a.Describe())
		b.WriteByte('\n')
	}
	return b.String()
}

// Verify checks the cross-entity invariants of the field.
func (s *Simulation) Verify() error {
	for _, p := range s.Planets {
		if p.Accumulated < 0 || p.Money < 0 || p.Fuel < 0 {
			return fmt.Errorf("%s has negative totals: acc=%d money=%f fuel=%f", p.Name, p.Accumulated, p.Money, p.Fuel)
		}
		for _, a := range p.Owned {
			if a.Owner == nil || *a.Owner != p.ID {
				return fmt.Errorf("%s lists %s but the asteroid does not point back", p.Name, a.Name)
			}
		}
	}
	for _, a := range s.Asteroids {
		if a.Owner == nil {
			continue
		}
		id := int(*a.Owner)
		if id < 0 || id >= len(s.Planets) {
			return fmt.Errorf("%s owned by unknown planet %d", a.Name, id)
		}
		found := false
		for _, o := range s.Planets[id].Owned {
			if o == a {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%s points at %s which does not hold it", a.Name, s.Planets[id].Name)
		}
	}
	return nil
}
