package steward

import (
	"github.com/talgya/hexisle/internal/settlement"
	"github.com/talgya/hexisle/internal/world"
)

// Stage is the steward's coarse read of the game.
type Stage string

const (
	StageNoIsland   Stage = "NO_ISLAND"
	StagePrestige   Stage = "PRESTIGE"
	StageExpanding  Stage = "EXPANDING"
	StageDeveloping Stage = "DEVELOPING"
)

// Health holds derived signals computed from a Snapshot.
// Deterministic and cheap; Decide works from it.
type Health struct {
	Amounts    [world.NumResources]int
	Capacity   int
	Scarcest   world.Resource
	Richest    world.Resource
	Full       []world.Resource // At capacity
	Ready      []world.HexCoord // Harvestable now, bordering one of our cities
	Nearby     map[world.HexCoord]world.Resource
	HasCapital bool
	Stage      Stage
}

// Triage computes Health from the snapshot's data.
func Triage(snap *Snapshot) *Health {
	h := &Health{
		Capacity: snap.Resources.Capacity,
		Nearby:   make(map[world.HexCoord]world.Resource),
	}
	for _, r := range world.AllResources {
		h.Amounts[r] = snap.Resources.Resources[r.String()]
		if h.Amounts[r] >= h.Capacity {
			h.Full = append(h.Full, r)
		}
		if h.Amounts[r] < h.Amounts[h.Scarcest] {
			h.Scarcest = r
		}
		if h.Amounts[r] > h.Amounts[h.Richest] {
			h.Richest = r
		}
	}

	if snap.Map == nil {
		h.Stage = StageNoIsland
		return h
	}

	cooldown := make(map[world.HexCoord]float64, len(snap.Map.Hexes))
	for _, hv := range snap.Map.Hexes {
		c := world.HexCoord{Q: hv.Q, R: hv.R}
		if hv.Resource != nil {
			h.Nearby[c] = *hv.Resource
			cooldown[c] = hv.Cooldown
		}
	}
	// Nearby so far holds every visible resource hex; keep only the ones
	// our cities touch.
	touched := make(map[world.HexCoord]bool)
	for _, c := range snap.Cities {
		if c.Level == settlement.LevelCapital {
			h.HasCapital = true
		}
		for _, hex := range c.Vertex.Hexes() {
			if _, ok := h.Nearby[hex]; !ok || touched[hex] {
				continue
			}
			touched[hex] = true
			if cooldown[hex] == 0 {
				h.Ready = append(h.Ready, hex)
			}
		}
	}
	for hex := range h.Nearby {
		if !touched[hex] {
			delete(h.Nearby, hex)
		}
	}

	switch {
	case snap.Status.CanPrestige:
		h.Stage = StagePrestige
	case len(snap.Outposts) > 0 || len(snap.Roads) > 0:
		h.Stage = StageExpanding
	default:
		h.Stage = StageDeveloping
	}
	return h
}
