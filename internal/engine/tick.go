// Package engine provides the tick loop and the colony that runs every
// agent once per tick.
package engine

import (
	"log/slog"
	"sync"
	"time"
)

// Engine drives the colony forward one tick at a time.
type Engine struct {
	Interval    time.Duration // Base tick interval at speed 1
	MaxTicks    uint64        // Stop after this tick; 0 runs until Stop
	ReportEvery uint64        // Ticks between OnReport calls; 0 disables
	SaveEvery   uint64        // Ticks between OnSave calls; 0 disables

	// Callbacks, populated during setup.
	OnTick   func(tick uint64) // Every tick
	OnReport func(tick uint64)
	OnSave   func(tick uint64)

	mu      sync.Mutex
	tick    uint64 // Monotonic, never resets
	speed   float64
	running bool
	done    chan struct{}
}

// NewEngine creates an engine starting after the given tick.
func NewEngine(start uint64) *Engine {
	return &Engine{
		Interval: time.Second,
		tick:     start,
		speed:    1.0,
	}
}

// Tick returns the last completed tick.
func (e *Engine) Tick() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

// Speed returns the speed multiplier; 0 means paused.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// SetSpeed changes the speed multiplier. Negative values pause.
func (e *Engine) SetSpeed(speed float64) {
	e.mu.Lock()
	e.speed = max(speed, 0)
	e.mu.Unlock()
	slog.Info("engine speed changed", "speed", speed)
}

// Running reports whether Run is looping.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Run starts the tick loop. Blocks until Stop is called or MaxTicks is
// reached.
func (e *Engine) Run() {
	e.mu.Lock()
	e.running = true
	e.done = make(chan struct{})
	done := e.done
	e.mu.Unlock()
	slog.Info("colony engine started", "tick", e.Tick(), "speed", e.Speed())

	for e.Running() {
		speed := e.Speed()
		if speed <= 0 {
			// Paused; check again shortly.
			sleepOrDone(done, 100*time.Millisecond)
			continue
		}

		start := time.Now()
		tick := e.Step()
		if e.MaxTicks > 0 && tick >= e.MaxTicks {
			slog.Info("tick limit reached", "tick", tick)
			e.Stop()
			break
		}

		// Sleep for the remainder of the tick interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / speed)
		if elapsed < target {
			sleepOrDone(done, target-elapsed)
		}
	}

	slog.Info("colony engine stopped", "tick", e.Tick())
}

func sleepOrDone(done <-chan struct{}, d time.Duration) {
	select {
	case <-done:
	case <-time.After(d):
	}
}

// Stop halts the tick loop.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return
	}
	e.running = false
	close(e.done)
}

// Step advances the colony by one tick and returns the tick number.
func (e *Engine) Step() uint64 {
	e.mu.Lock()
	e.tick++
	tick := e.tick
	e.mu.Unlock()

	if e.OnTick != nil {
		e.OnTick(tick)
	}
	if e.ReportEvery > 0 && tick%e.ReportEvery == 0 && e.OnReport != nil {
		e.OnReport(tick)
	}
	if e.SaveEvery > 0 && tick%e.SaveEvery == 0 && e.OnSave != nil {
		e.OnSave(tick)
	}
	return tick
}
