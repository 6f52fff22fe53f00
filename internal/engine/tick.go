// Package engine runs the island simulation: the game clock, building
// production, automation, player commands and the frame loop that drives them.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// ErrStopped is returned by Do once the engine has shut down.
var ErrStopped = errors.New("engine stopped")

// recentEvents is how many events Engine keeps for late subscribers.
const recentEvents = 256

type command struct {
	fn   func(*Simulation) error
	done chan error
}

// Engine drives a Simulation from wall-clock frames. Every access to the
// simulation goes through the loop goroutine: frames, commands and queries
// alike. Before Run starts, Do executes inline under a lock.
type Engine struct {
	Sim      *Simulation
	Interval time.Duration // Frame interval
	Speed    float64       // Game seconds per wall second; 0 pauses

	AutosaveEvery time.Duration
	OnAutosave    func(*Simulation) // Runs on the loop goroutine; must not call Do

	Frame uint64

	mu       sync.Mutex
	running  bool
	stopped  bool
	commands chan command
	quit     chan struct{}

	subMu  sync.Mutex
	subs   map[chan Event]struct{}
	recent []Event

	log *slog.Logger
}

// NewEngine creates an engine with a 100ms frame at real-time speed.
func NewEngine(sim *Simulation) *Engine {
	return &Engine{
		Sim:      sim,
		Interval: 100 * time.Millisecond,
		Speed:    1,
		commands: make(chan command),
		quit:     make(chan struct{}),
		subs:     make(map[chan Event]struct{}),
		log:      slog.With("component", "engine"),
	}
}

// Run starts the frame loop. It blocks until ctx is done or Stop is called.
func (e *Engine) Run(ctx context.Context) {
	e.mu.Lock()
	e.running = true
	e.mu.Unlock()

	e.log.Info("simulation engine started", "time", e.Sim.Clock.Now(), "speed", e.Speed, "interval", e.Interval)

	ticker := time.NewTicker(e.Interval)
	defer ticker.Stop()
	last := time.Now()
	lastSave := last

	for {
		select {
		case <-ctx.Done():
			e.shutdown()
			return
		case <-e.quit:
			e.shutdown()
			return
		case cmd := <-e.commands:
			cmd.done <- e.exec(cmd.fn)
		case now := <-ticker.C:
			e.step(now.Sub(last))
			last = now
			if e.AutosaveEvery > 0 && now.Sub(lastSave) >= e.AutosaveEvery {
				e.autosave()
				lastSave = now
			}
		}
	}
}

// Stop halts the frame loop.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.markStopped()
}

// markStopped closes quit once, releasing any Do waiting to hand a command
// to the loop. Callers hold mu.
func (e *Engine) markStopped() {
	if !e.stopped {
		e.stopped = true
		close(e.quit)
	}
}

func (e *Engine) shutdown() {
	e.mu.Lock()
	e.running = false
	e.markStopped()
	e.mu.Unlock()
	e.log.Info("simulation engine stopped",
		"frame", humanize.Comma(int64(e.Frame)),
		"time", e.Sim.Clock.Now(),
	)
}

// step advances the simulation by one frame of wall time.
func (e *Engine) step(wall time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Frame++
	if e.Speed <= 0 {
		return
	}
	e.Sim.Tick(e.Sim.Clock.Now() + wall.Seconds()*e.Speed)
	e.publish(e.Sim.DrainEvents())
}

// Advance ticks the simulation to game time now. Used by hosts that drive
// time themselves and by tests.
func (e *Engine) Advance(now float64) {
	_ = e.Do(context.Background(), func(s *Simulation) error {
		s.Tick(now)
		return nil
	})
}

// Do runs fn against the simulation on the loop goroutine and returns its
// error. Events fn emits are published afterwards.
func (e *Engine) Do(ctx context.Context, fn func(*Simulation) error) error {
	e.mu.Lock()
	running, stopped := e.running, e.stopped
	e.mu.Unlock()
	if stopped && !running {
		return ErrStopped
	}
	if !running {
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.execLocked(fn)
	}

	cmd := command{fn: fn, done: make(chan error, 1)}
	select {
	case e.commands <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	case <-e.quit:
		return ErrStopped
	}
	select {
	case err := <-cmd.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) exec(fn func(*Simulation) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.execLocked(fn)
}

func (e *Engine) execLocked(fn func(*Simulation) error) error {
	err := fn(e.Sim)
	e.publish(e.Sim.DrainEvents())
	return err
}

func (e *Engine) autosave() {
	if e.OnAutosave == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.OnAutosave(e.Sim)
}

// ── Event fan-out ───────────────────────────────────────────────────

// Subscribe returns a channel receiving every event published from now on,
// and a function that cancels the subscription. Slow subscribers miss events
// rather than stall the loop.
func (e *Engine) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)
	e.subMu.Lock()
	e.subs[ch] = struct{}{}
	e.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.subMu.Lock()
			delete(e.subs, ch)
			e.subMu.Unlock()
			close(ch)
		})
	}
}

// Recent returns up to n of the most recent events, oldest first.
func (e *Engine) Recent(n int) []Event {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	if n <= 0 || n > len(e.recent) {
		n = len(e.recent)
	}
	out := make([]Event, n)
	copy(out, e.recent[len(e.recent)-n:])
	return out
}

func (e *Engine) publish(events []Event) {
	if len(events) == 0 {
		return
	}
	e.subMu.Lock()
	defer e.subMu.Unlock()
	e.recent = append(e.recent, events...)
	if len(e.recent) > recentEvents {
		e.recent = append([]Event(nil), e.recent[len(e.recent)-recentEvents:]...)
	}
	for ch := range e.subs {
		for _, ev := range events {
			select {
			case ch <- ev:
			default:
			}
		}
	}
}
