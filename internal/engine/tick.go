// Tick loop that drives the store on a fixed wall-clock cadence.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/talgya/geofarm/internal/economy"
)

// GameWeek is seven game days.
const GameWeek = 7 * economy.GameDay

// Engine drives the store forward. It owns no game state: OnTick advances
// the store and returns what happened, and the day and week layers fire
// when game time crosses a boundary.
type Engine struct {
	Interval time.Duration // Wall time between ticks (default 1 second)

	// Callbacks for each tick layer, populated during setup.
	OnTick func() TickReport   // Every tick
	OnDay  func(now time.Time) // Each game day boundary crossed
	OnWeek func(now time.Time) // Each game week boundary crossed

	tick    atomic.Uint64
	running atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewEngine creates a simulation engine with default settings.
func NewEngine() *Engine {
	return &Engine{Interval: time.Second}
}

// Run starts the simulation loop. Blocks until ctx is cancelled or Stop is called.
func (e *Engine) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()

	interval := e.Interval
	if interval <= 0 {
		interval = time.Second
	}

	e.running.Store(true)
	defer e.running.Store(false)
	slog.Info("simulation engine started", "tick", e.tick.Load(), "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("simulation engine stopped", "tick", e.tick.Load())
			return
		case <-ticker.C:
			e.step()
		}
	}
}

// Stop halts the simulation loop.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
}

// Running reports whether Run is active.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Ticks returns how many ticks have run.
func (e *Engine) Ticks() uint64 {
	return e.tick.Load()
}

// step advances the simulation by one tick.
func (e *Engine) step() {
	e.tick.Add(1)
	if e.OnTick == nil {
		return
	}
	r := e.OnTick()

	// A long pause fires each layer once, not once per missed boundary.
	if e.OnDay != nil && crossed(r.Previous, r.Now, economy.GameDay) {
		e.OnDay(r.Now)
	}
	if e.OnWeek != nil && crossed(r.Previous, r.Now, GameWeek) {
		e.OnWeek(r.Now)
	}
}

// crossed reports whether a multiple of period lies in (prev, now].
func crossed(prev, now time.Time, period time.Duration) bool {
	if !now.After(prev) {
		return false
	}
	p := period.Milliseconds()
	return floorDiv(now.UnixMilli(), p) > floorDiv(prev.UnixMilli(), p)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && (a < 0) {
		q--
	}
	return q
}
