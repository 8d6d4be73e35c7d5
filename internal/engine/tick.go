// Package engine provides the game field and its fixed-step tick loop.
package engine

import (
	"log/slog"
)

// Engine drives the simulation forward one discrete tick at a time. It has no
// clock: Run executes the requested number of ticks back to back.
type Engine struct {
	Tick uint64 // Last completed tick (monotonic, starts at 0)

	// Callbacks for each tick layer, populated during setup.
	OnTick   func(tick uint64) // Every tick: the simulation protocol
	OnReport func(tick uint64) // Every tick, after OnTick returns
	OnFinish func(tick uint64) // Once, after the last tick
}

// NewEngine creates an engine at tick 0.
func NewEngine() *Engine {
	return &Engine{}
}

// Run executes exactly steps ticks.
func (e *Engine) Run(steps int) {
	slog.Info("simulation engine started", "tick", e.Tick, "steps", steps)

	for i := 0; i < steps; i++ {
		e.step()
	}

	if e.OnFinish != nil {
		e.OnFinish(e.Tick)
	}
	slog.Info("simulation engine stopped", "tick", e.Tick)
}

// step advances the simulation by one tick.
func (e *Engine) step() {
	e.Tick++

	if e.OnTick != nil {
		e.OnTick(e.Tick)
	}
	if e.OnReport != nil {
		e.OnReport(e.Tick)
	}
}
