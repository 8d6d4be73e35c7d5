package engine

import (
	"fmt"

	"github.com/talgya/starfield/internal/celestial"
)

// Result is the outcome of a run.
type Result struct {
	Found  bool              `json:"found"`
	Winner *celestial.Planet `json:"-"`
	Name   string            `json:"name,omitempty"`
	Tier   string            `json:"tier,omitempty"`
	Money  float64           `json:"money"`
	Tick   uint64            `json:"tick"`
}

// String renders the result as announced at the end of a run.
func (r Result) String() string {
	if !r.Found {
		return "No winner found."
	}
	return fmt.Sprintf("The winner is %s with technology level %s and money %.2f.", r.Name, r.Tier, r.Money)
}

// DetermineWinner picks the planet with the highest technology tier, breaking
// ties by money. Tiers compare by rank, not by name. On a full tie the planet
// earlier in field order wins. It does not modify the field.
func (s *Simulation) DetermineWinner() Result {
	var best *celestial.Planet
	for _, p := range s.Planets {
		if best == nil || p.Tier > best.Tier || (p.Tier == best.Tier && p.Money > best.Money) {
			best = p
		}
	}

	res := Result{Tick: s.LastTick}
	if best != nil {
		res.Found = true
		res.Winner = best
		res.Name = best.Name
		res.Tier = celestial.TierName(best.Tier)
		res.Money = best.Money
	}
	return res
}
