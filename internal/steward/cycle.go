package steward

import (
	"fmt"
	"log/slog"
)

// stallCycles is how many empty cycles in a row are logged as a stall.
const stallCycles = 3

// Steward ties one observe, triage, decide, act round together.
type Steward struct {
	Observer *Observer
	Actor    *Actor
	Memory   *CycleMemory
}

// New creates a steward for the API at baseURL. memoryPath may be empty.
func New(baseURL, adminKey, memoryPath string) *Steward {
	return &Steward{
		Observer: NewObserver(baseURL),
		Actor:    NewActor(baseURL, adminKey),
		Memory:   LoadMemory(memoryPath),
	}
}

// RunCycle executes one cycle and records it. Rejected moves are counted,
// not treated as failures; any other error from the API ends the cycle.
func (st *Steward) RunCycle() (CycleRecord, error) {
	snap, err := st.Observer.Observe()
	if err != nil {
		return CycleRecord{}, fmt.Errorf("observe: %w", err)
	}
	health := Triage(snap)
	actions := Decide(snap, health)

	rec := CycleRecord{
		Time:      snap.Status.Time,
		Stage:     health.Stage,
		Points:    snap.Status.Points,
		Cities:    snap.Status.Cities,
		Attempted: len(actions),
	}
	slog.Info("steward observed",
		"stage", health.Stage,
		"points", snap.Status.Points,
		"cities", snap.Status.Cities,
		"ready", len(health.Ready),
		"actions", len(actions),
	)

	var actErr error
	for _, a := range actions {
		if _, err := st.Actor.Act(a); err != nil {
			if IsRejected(err) {
				rec.Rejected++
				slog.Debug("move rejected", "kind", a.Kind, "reason", a.Reason, "error", err)
				continue
			}
			actErr = fmt.Errorf("%s: %w", a.Kind, err)
			break
		}
		rec.Applied++
		rec.Kinds = append(rec.Kinds, a.Kind)
		slog.Info("move applied", "kind", a.Kind, "reason", a.Reason)
	}

	st.Memory.Record(rec)
	st.Memory.Save()
	if st.Memory.Stalled(stallCycles) {
		slog.Warn("steward stalled", "cycles", stallCycles, "recent", st.Memory.Summary())
	}
	return rec, actErr
}
