package engine

// Event categories.
const (
	CategoryEconomy     = "economy"
	CategoryUpgrade     = "upgrade"
	CategoryPurchase    = "purchase"
	CategoryRejected    = "rejected"
	CategoryCorporation = "corporation"
	CategoryResult      = "result"
)

// Event is a notable occurrence during a run.
type Event struct {
	Tick        uint64 `json:"tick" db:"tick"`
	Description string `json:"description" db:"description"`
	Category    string `json:"category" db:"category"`
}

func (s *Simulation) record(tick uint64, category, desc string) {
	s.tickEvents = append(s.tickEvents, Event{
		Tick:        tick,
		Description: desc,
		Category:    category,
	})
}

// appendEvents adds events to the log and trims it to maxEvents.
func (s *Simulation) appendEvents(events ...Event) {
	s.Events = append(s.Events, events...)
	if len(s.Events) > maxEvents {
		s.Events = s.Events[len(s.Events)-maxEvents:]
	}
}
