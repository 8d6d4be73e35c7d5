package engine

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/talgya/starfield/internal/balance"
	"github.com/talgya/starfield/internal/celestial"
	"github.com/talgya/starfield/internal/corp"
	"github.com/talgya/starfield/internal/world"
)

func newField(t *testing.T, cfg FieldConfig) *Simulation {
	t.Helper()
	s, err := NewSimulation(cfg)
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}
	if err := s.GenerateField(); err != nil {
		t.Fatalf("GenerateField: %v", err)
	}
	return s
}

func TestNewSimulation_CapacityErrors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     FieldConfig
		wantErr error
	}{
		{"too many planets", FieldConfig{Planets: 101, Asteroids: 10}, ErrTooManyPlanets},
		{"too many asteroids", FieldConfig{Planets: 10, Asteroids: 51}, ErrTooManyAsteroids},
		{"negative", FieldConfig{Planets: -1}, ErrNegativeCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSimulation(tt.cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
			if s != nil {
				t.Fatalf("got a field with %d planets, want none", len(s.Planets))
			}
		})
	}
}

func TestNewSimulation_AtCapacity(t *testing.T) {
	s := newField(t, FieldConfig{Planets: balance.MaxPlanets, Asteroids: balance.MaxAsteroids, Seed: 5})
	if len(s.Planets) != 100 || len(s.Asteroids) != 50 {
		t.Fatalf("got %d planets, %d asteroids", len(s.Planets), len(s.Asteroids))
	}
}

func TestGenerateField(t *testing.T) {
	s := newField(t, FieldConfig{Planets: 12, Asteroids: 8, Routes: 3, Seed: 42})

	for i, p := range s.Planets {
		if p.ID != celestial.PlanetID(i) || p.Name != world.PlanetName(i) {
			t.Errorf("planet %d: id=%d name=%q", i, p.ID, p.Name)
		}
		if p.Tier != celestial.TierLow || p.Money != 0 || p.Fuel != 0 || p.Accumulated != 0 {
			t.Errorf("%s not in initial state: %+v", p.Name, p)
		}
		if p.Productivity < balance.ProductivityMin || p.Productivity > balance.ProductivityMax {
			t.Errorf("%s productivity %d out of range", p.Name, p.Productivity)
		}
		if p.Demand < balance.DemandMin || p.Demand > balance.DemandMax {
			t.Errorf("%s demand %d out of range", p.Name, p.Demand)
		}
		if p.Price < balance.PriceMin || p.Price >= balance.PriceMax {
			t.Errorf("%s price %f out of range", p.Name, p.Price)
		}
		if p.FuelCostPerDistance != balance.FuelCostPerDistance {
			t.Errorf("%s fuel cost %f", p.Name, p.FuelCostPerDistance)
		}
		if !p.Position.InBounds(balance.CoordMin, balance.CoordMax) {
			t.Errorf("%s at %v out of bounds", p.Name, p.Position)
		}
	}
	for _, a := range s.Asteroids {
		if a.Owned() {
			t.Errorf("%s owned at generation", a.Name)
		}
		if a.Productivity < balance.ProductivityMin || a.Productivity > balance.ProductivityMax {
			t.Errorf("%s productivity %d out of range", a.Name, a.Productivity)
		}
	}

	if err := s.GenerateField(); !errors.Is(err, ErrFieldGenerated) {
		t.Errorf("second GenerateField: got %v, want ErrFieldGenerated", err)
	}
}

func TestFuelCostTable(t *testing.T) {
	s := newField(t, FieldConfig{Planets: 9, Asteroids: 0, Seed: 7})

	if want := 9 * 8 / 2; len(s.fuelCosts) != want {
		t.Errorf("table has %d entries, want %d", len(s.fuelCosts), want)
	}
	for _, a := range s.Planets {
		for _, b := range s.Planets {
			ab, ok1 := s.FuelCost(a.ID, b.ID)
			ba, ok2 := s.FuelCost(b.ID, a.ID)
			if !ok1 || !ok2 {
				t.Fatalf("missing entry for %s/%s", a.Name, b.Name)
			}
			if ab != ba {
				t.Errorf("cost(%s,%s)=%f != cost(%s,%s)=%f", a.Name, b.Name, ab, b.Name, a.Name, ba)
			}
			want := world.Distance(a.Position, b.Position) * 0.1
			if math.Abs(ab-want) > 1e-9 {
				t.Errorf("cost(%s,%s)=%f, want %f", a.Name, b.Name, ab, want)
			}
		}
	}

	byName, ok := s.FuelCostByName("Planet-1", "Planet-9")
	byID, _ := s.FuelCost(0, 8)
	if !ok || byName != byID {
		t.Errorf("FuelCostByName = %f, %v; want %f", byName, ok, byID)
	}
	if _, ok := s.FuelCostByName("Planet-1", "Planet-99"); ok {
		t.Error("lookup of unknown planet succeeded")
	}
}

func TestAcquire_FirstPlanetHasFirstRefusal(t *testing.T) {
	s, err := NewSimulation(FieldConfig{})
	if err != nil {
		t.Fatal(err)
	}
	first := celestial.NewPlanet(0, "Planet-1", world.Position{X: 0, Y: 0}, 40, 500, 200, 1)
	second := celestial.NewPlanet(1, "Planet-2", world.Position{X: 0, Y: 10}, 40, 500, 200, 2)
	first.Money, first.Fuel = 250, 30
	second.Money, second.Fuel = 400, 60
	s.Planets = []*celestial.Planet{first, second}
	s.Asteroids = []*celestial.Asteroid{
		celestial.NewAsteroid(0, "Asteroid-1", world.Position{X: 0, Y: 100}, 45, 200),
	}

	if n, rejected := s.acquire(1); n != 1 || rejected != 0 {
		t.Fatalf("purchases = %d, rejected = %d; want 1, 0", n, rejected)
	}
	if owner := s.Asteroids[0].Owner; owner == nil || *owner != 0 {
		t.Fatalf("owner = %v, want Planet-1", owner)
	}
	if second.Money != 400 || second.Fuel != 60 || len(second.Owned) != 0 {
		t.Errorf("second planet changed: money=%f fuel=%f owned=%d", second.Money, second.Fuel, len(second.Owned))
	}
	if err := s.Verify(); err != nil {
		t.Error(err)
	}
}

func TestAcquire_DepletedPlanetKeepsTrying(t *testing.T) {
	s, _ := NewSimulation(FieldConfig{})
	p := celestial.NewPlanet(0, "Planet-1", world.Position{}, 40, 500, 200, 1)
	p.Money, p.Fuel = 300, 100
	s.Planets = []*celestial.Planet{p}
	s.Asteroids = []*celestial.Asteroid{
		celestial.NewAsteroid(0, "Asteroid-1", world.Position{X: 10}, 45, 200),
		celestial.NewAsteroid(1, "Asteroid-2", world.Position{X: 20}, 45, 150),
	}
	if n, rejected := s.acquire(1); n != 1 || rejected != 1 {
		t.Fatalf("purchases = %d, rejected = %d; want 1, 1", n, rejected)
	}
	if s.Asteroids[1].Owned() {
		t.Error("second asteroid bought with a spent buffer")
	}

	var rejections []Event
	for _, e := range s.tickEvents {
		if e.Category == CategoryRejected {
			rejections = append(rejections, e)
		}
	}
	if len(rejections) != 1 || !strings.Contains(rejections[0].Description, "Planet-1 cannot buy Asteroid-2") {
		t.Errorf("rejection events = %+v", rejections)
	}
}

func TestDetermineWinner_TierRankBeatsMoney(t *testing.T) {
	s, _ := NewSimulation(FieldConfig{})
	low := celestial.NewPlanet(0, "Planet-1", world.Position{}, 40, 500, 200, 1)
	high := celestial.NewPlanet(1, "Planet-2", world.Position{}, 40, 500, 200, 2)
	med := celestial.NewPlanet(2, "Planet-3", world.Position{}, 40, 500, 200, 3)
	low.Money, high.Money, med.Money = 900, 1, 500
	high.Tier = celestial.TierHigh
	med.Tier = celestial.TierMedium
	s.Planets = []*celestial.Planet{low, high, med}

	res := s.DetermineWinner()
	if !res.Found || res.Winner != high || res.Tier != "High" {
		t.Fatalf("winner = %+v, want Planet-2 at High", res)
	}
}

func TestDetermineWinner_MoneyBreaksTies(t *testing.T) {
	s, _ := NewSimulation(FieldConfig{})
	a := celestial.NewPlanet(0, "Planet-1", world.Position{}, 40, 500, 200, 1)
	b := celestial.NewPlanet(1, "Planet-2", world.Position{}, 40, 500, 200, 2)
	c := celestial.NewPlanet(2, "Planet-3", world.Position{}, 40, 500, 200, 3)
	a.Money, b.Money, c.Money = 10, 30, 30
	s.Planets = []*celestial.Planet{a, b, c}

	if res := s.DetermineWinner(); res.Name != "Planet-2" {
		t.Errorf("winner = %s, want Planet-2", res.Name)
	}
}

func TestDetermineWinner_NoPlanets(t *testing.T) {
	s := newField(t, FieldConfig{Planets: 0, Asteroids: 3})
	res := s.DetermineWinner()
	if res.Found {
		t.Fatalf("found winner %s in an empty field", res.Name)
	}
	if res.String() != "No winner found." {
		t.Errorf("String() = %q", res.String())
	}
}

func TestRun_Invariants(t *testing.T) {
	for _, layout := range []world.Layout{world.LayoutUniform, world.LayoutClustered} {
		t.Run(world.LayoutName(layout), func(t *testing.T) {
			s := newField(t, FieldConfig{Planets: 20, Asteroids: 30, Seed: 1234, Layout: layout, Strict: true})
			for _, c := range corp.Defaults(1234) {
				s.AddCorporation(c)
			}

			owners := make(map[string]int)
			tiers := make(map[string]celestial.Tier)
			reports := 0

			res := s.Run(balance.DefaultSteps, func(r Report) {
				reports++
				if r.Tick != uint64(reports) {
					t.Fatalf("report tick %d, want %d", r.Tick, reports)
				}
				for _, a := range r.Asteroids {
					prev, seen := owners[a.Name]
					if seen && (a.Owner == nil || *a.Owner != prev) {
						t.Fatalf("tick %d: %s changed owner", r.Tick, a.Name)
					}
					if a.Owner != nil {
						owners[a.Name] = *a.Owner
					}
				}
				for _, p := range r.Planets {
					if p.Money < 0 || p.Fuel < 0 || p.Accumulated < 0 {
						t.Fatalf("tick %d: %s has negative totals", r.Tick, p.Name)
					}
				}
				for _, p := range s.Planets {
					if p.Tier < tiers[p.Name] {
						t.Fatalf("tick %d: %s tier went down", r.Tick, p.Name)
					}
					tiers[p.Name] = p.Tier
				}
			})

			if reports != balance.DefaultSteps {
				t.Errorf("reports = %d, want %d", reports, balance.DefaultSteps)
			}
			if !res.Found {
				t.Fatal("no winner in a populated field")
			}
			for _, p := range s.Planets {
				if p.Tier > res.Winner.Tier || (p.Tier == res.Winner.Tier && p.Money > res.Winner.Money) {
					t.Errorf("%s beats winner %s", p.Name, res.Name)
				}
			}
			if err := s.Verify(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestDetermineWinner_LeavesEventLogAlone(t *testing.T) {
	s := newField(t, FieldConfig{Planets: 3, Asteroids: 2, Seed: 5})
	before := len(s.Events)
	s.DetermineWinner()
	s.DetermineWinner()
	if len(s.Events) != before {
		t.Errorf("events = %d, want %d", len(s.Events), before)
	}
}

func TestRun_RecordsResultOnce(t *testing.T) {
	s := newField(t, FieldConfig{Planets: 20, Asteroids: 30, Seed: 77})
	res := s.Run(balance.DefaultSteps, nil)

	if len(s.Events) > maxEvents {
		t.Errorf("event log = %d, exceeds %d", len(s.Events), maxEvents)
	}
	results := 0
	for _, e := range s.Events {
		if e.Category == CategoryResult {
			results++
		}
	}
	if results != 1 {
		t.Errorf("result events = %d, want 1", results)
	}
	last := s.Events[len(s.Events)-1]
	if last.Category != CategoryResult || last.Description != res.String() {
		t.Errorf("last event = %+v, want %q", last, res.String())
	}
	if s.Stats.Rejections == 0 {
		t.Error("no rejected purchases counted over a full run")
	}
}

func TestRun_SeedIsReproducible(t *testing.T) {
	final := func() Report {
		s := newField(t, FieldConfig{Planets: 10, Asteroids: 10, Seed: 99})
		for _, c := range corp.Defaults(99) {
			s.AddCorporation(c)
		}
		s.Run(25, nil)
		r := s.Snapshot(s.LastTick)
		r.RunID = ""
		return r
	}
	a, b := final(), final()
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different fields")
	}
}

func TestEngine_RunsExactSteps(t *testing.T) {
	eng := NewEngine()
	var ticks, reports []uint64
	finished := false
	eng.OnTick = func(tick uint64) { ticks = append(ticks, tick) }
	eng.OnReport = func(tick uint64) { reports = append(reports, tick) }
	eng.OnFinish = func(tick uint64) { finished = tick == 7 }
	eng.Run(7)

	if len(ticks) != 7 || ticks[0] != 1 || ticks[6] != 7 {
		t.Errorf("ticks = %v", ticks)
	}
	if !reflect.DeepEqual(ticks, reports) {
		t.Errorf("reports = %v, want %v", reports, ticks)
	}
	if !finished {
		t.Error("OnFinish not called with the last tick")
	}
}

func TestSnapshot_IsDetached(t *testing.T) {
	s := newField(t, FieldConfig{Planets: 2, Asteroids: 1, Seed: 3})
	r := s.Snapshot(0)
	s.Planets[0].Money = 12345
	if r.Planets[0].Money == 12345 {
		t.Error("snapshot aliases planet state")
	}
}
