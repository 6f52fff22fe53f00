package steward

import (
	"fmt"

	"github.com/talgya/hexisle/internal/api"
	"github.com/talgya/hexisle/internal/config"
	"github.com/talgya/hexisle/internal/economy"
	"github.com/talgya/hexisle/internal/engine"
	"github.com/talgya/hexisle/internal/settlement"
)

// maxActions caps the commands sent in one cycle.
const maxActions = 12

// Action is one command the steward wants to play.
type Action struct {
	Kind   string `json:"kind"`
	Path   string `json:"path"`
	Body   any    `json:"body,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// utilityOrder is the order non-producing buildings are added to a city.
var utilityOrder = []settlement.BuildingType{
	settlement.BuildingMarket,
	settlement.BuildingStorehouse,
	settlement.BuildingConstructionGuild,
	settlement.BuildingLibrary,
	settlement.BuildingTemple,
}

// Decide turns a snapshot into an ordered list of moves. It does not know
// prices; moves the server rejects are simply skipped.
func Decide(snap *Snapshot, h *Health) []Action {
	switch h.Stage {
	case StageNoIsland:
		var out []Action
		if a, ok := metaUpgrade(snap); ok {
			out = append(out, a)
		}
		return append(out, Action{Kind: "island", Path: "/api/v1/island", Body: api.IslandRequest{}, Reason: "no island in play"})
	case StagePrestige:
		return []Action{{Kind: "prestige", Path: "/api/v1/prestige", Body: struct{}{},
			Reason: fmt.Sprintf("%d civilization points", snap.Status.Points)}}
	}

	var out []Action
	for _, hex := range h.Ready {
		out = append(out, Action{Kind: "harvest", Path: "/api/v1/harvest", Body: api.HarvestRequest{Hex: hex},
			Reason: fmt.Sprintf("%s ready", h.Nearby[hex])})
	}
	if a, ok := trade(snap, h); ok {
		out = append(out, a)
	}
	if a, ok := cityUpgrade(snap, h); ok {
		out = append(out, a)
	}
	out = append(out, buildings(snap, h)...)
	if len(snap.Outposts) > 0 {
		out = append(out, Action{Kind: "outpost", Path: "/api/v1/outpost", Body: api.VertexRequest{Vertex: snap.Outposts[0]},
			Reason: fmt.Sprintf("%d open sites", len(snap.Outposts))})
	} else if len(snap.Roads) > 0 {
		out = append(out, Action{Kind: "road", Path: "/api/v1/road", Body: api.RoadRequest{Edge: snap.Roads[0]},
			Reason: "no outpost site reachable"})
	}
	if a, ok := automation(snap); ok {
		out = append(out, a)
	}

	if len(out) > maxActions {
		out = out[:maxActions]
	}
	return out
}

// trade swaps the richest resource for the scarcest when there is a clear
// surplus.
func trade(snap *Snapshot, h *Health) (Action, bool) {
	if !snap.Rates.TradeAccess || h.Richest == h.Scarcest {
		return Action{}, false
	}
	rate := snap.Rates.Rates[h.Richest.String()]
	if rate <= 0 || h.Amounts[h.Richest] < 2*rate || h.Amounts[h.Scarcest] >= h.Capacity {
		return Action{}, false
	}
	return Action{
		Kind: "trade",
		Path: "/api/v1/trade",
		Body: api.TradeRequest{
			Offered:   economy.Cost{h.Richest: rate},
			Requested: economy.Cost{h.Scarcest: 1},
		},
		Reason: fmt.Sprintf("%d %s for 1 %s", rate, h.Richest, h.Scarcest),
	}, true
}

// cityUpgrade picks the lowest-level city that may still climb.
func cityUpgrade(snap *Snapshot, h *Health) (Action, bool) {
	var best *settlement.City
	for i := range snap.Cities {
		c := &snap.Cities[i]
		if c.Level >= settlement.MaxCityLevel {
			continue
		}
		if c.Level+1 == settlement.LevelCapital && h.HasCapital {
			continue
		}
		if best == nil || c.Level < best.Level {
			best = c
		}
	}
	if best == nil {
		return Action{}, false
	}
	return Action{Kind: "city_upgrade", Path: "/api/v1/city/upgrade", Body: api.VertexRequest{Vertex: best.Vertex},
		Reason: fmt.Sprintf("%s is a %s", best.Name, best.Level)}, true
}

// buildings proposes, per city, producers for the resources it borders
// and then the first missing utility building.
func buildings(snap *Snapshot, h *Health) []Action {
	var out []Action
	for _, c := range snap.Cities {
		seen := make(map[settlement.BuildingType]bool)
		for _, hex := range c.Vertex.Hexes() {
			res, ok := h.Nearby[hex]
			if !ok {
				continue
			}
			bt := settlement.ProducerFor(res)
			if c.Has(bt) || seen[bt] {
				continue
			}
			seen[bt] = true
			out = append(out, buildAction(c, bt, fmt.Sprintf("borders %s", res)))
		}
		for _, bt := range utilityOrder {
			if c.Has(bt) {
				continue
			}
			if bt == settlement.BuildingMarket && snap.Rates.TradeAccess {
				continue
			}
			if bt == settlement.BuildingStorehouse && len(h.Full) == 0 {
				continue
			}
			out = append(out, buildAction(c, bt, "utility"))
			break
		}
	}
	return out
}

func buildAction(c settlement.City, bt settlement.BuildingType, reason string) Action {
	t := bt
	return Action{
		Kind:   "building",
		Path:   "/api/v1/building",
		Body:   api.BuildingRequest{Type: &t, Vertex: c.Vertex},
		Reason: fmt.Sprintf("%s in %s: %s", bt, c.Name, reason),
	}
}

// automation switches on every tier the guild unlocks.
func automation(snap *Snapshot) (Action, bool) {
	g := snap.Status.GuildLevel
	if g < 1 {
		return Action{}, false
	}
	want := engine.AutomationFlags{Roads: g >= 1, Outposts: g >= 2, CityUpgrade: g >= 2, Production: g >= 3}
	if snap.Status.Automation == want {
		return Action{}, false
	}
	return Action{Kind: "automation", Path: "/api/v1/automation", Body: want,
		Reason: fmt.Sprintf("guild level %d", g)}, true
}

// metaUpgrade spends prestige on the least-developed meta-upgrade.
func metaUpgrade(snap *Snapshot) (Action, bool) {
	if snap.Status.Progress.Prestige <= 0 {
		return Action{}, false
	}
	key := config.UpgradeKeys[0]
	for _, k := range config.UpgradeKeys[1:] {
		if snap.Status.Progress.Upgrades[k] < snap.Status.Progress.Upgrades[key] {
			key = k
		}
	}
	return Action{Kind: "meta_upgrade", Path: "/api/v1/prestige/upgrade", Body: api.UpgradeRequest{Key: key},
		Reason: fmt.Sprintf("%d prestige to spend", snap.Status.Progress.Prestige)}, true
}
