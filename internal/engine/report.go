package engine

import (
	"github.com/talgya/starfield/internal/celestial"
)

// PlanetState is a planet's state as of a report.
type PlanetState struct {
	ID                  int      `json:"id"`
	Name                string   `json:"name"`
	X                   float64  `json:"x"`
	Y                   float64  `json:"y"`
	Productivity        int      `json:"productivity"`
	Price               float64  `json:"price"`
	Demand              int      `json:"demand"`
	Tier                string   `json:"tier"`
	Accumulated         int      `json:"accumulated"`
	Money               float64  `json:"money"`
	Fuel                float64  `json:"fuel"`
	FuelCostPerDistance float64  `json:"fuel_cost_per_distance"`
	Owned               []string `json:"owned"`
}

// AsteroidState is an asteroid's state as of a report.
type AsteroidState struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Productivity int     `json:"productivity"`
	Price        float64 `json:"price"`
	Owner        *int    `json:"owner,omitempty"`
}

// Report is the full state of the field after one tick.
type Report struct {
	RunID     string          `json:"run_id"`
	Tick      uint64          `json:"tick"`
	Planets   []PlanetState   `json:"planets"`
	Asteroids []AsteroidState `json:"asteroids"`
	Events    []Event         `json:"events"`
}

// Snapshot captures the field. The report shares no memory with the field.
func (s *Simulation) Snapshot(tick uint64) Report {
	r := Report{
		RunID:     s.RunID.String(),
		Tick:      tick,
		Planets:   make([]PlanetState, len(s.Planets)),
		Asteroids: make([]AsteroidState, len(s.Asteroids)),
		Events:    append([]Event(nil), s.tickEvents...),
	}
	for i, p := range s.Planets {
		r.Planets[i] = planetState(p)
	}
	for i, a := range s.Asteroids {
		st := AsteroidState{
			ID:           int(a.ID),
			Name:         a.Name,
			X:            a.Position.X,
			Y:            a.Position.Y,
			Productivity: a.Productivity,
			Price:        a.Price,
		}
		if a.Owner != nil {
			owner := int(*a.Owner)
			st.Owner = &owner
		}
		r.Asteroids[i] = st
	}
	return r
}

func planetState(p *celestial.Planet) PlanetState {
	return PlanetState{
		ID:                  int(p.ID),
		Name:                p.Name,
		X:                   p.Position.X,
		Y:                   p.Position.Y,
		Productivity:        p.Productivity,
		Price:               p.Price,
		Demand:              p.Demand,
		Tier:                celestial.TierName(p.Tier),
		Accumulated:         p.Accumulated,
		Money:               p.Money,
		Fuel:                p.Fuel,
		FuelCostPerDistance: p.FuelCostPerDistance,
		Owned:               p.OwnedNames(),
	}
}
