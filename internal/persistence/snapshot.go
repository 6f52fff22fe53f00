package persistence

import (
	"fmt"

	"github.com/talgya/hexisle/internal/config"
	"github.com/talgya/hexisle/internal/economy"
	"github.com/talgya/hexisle/internal/engine"
	"github.com/talgya/hexisle/internal/errs"
	"github.com/talgya/hexisle/internal/island"
	"github.com/talgya/hexisle/internal/settlement"
	"github.com/talgya/hexisle/internal/world"
)

// SnapshotVersion is the save format written by Capture.
const SnapshotVersion = 1

// Snapshot is the complete saved state of one simulation.
type Snapshot struct {
	Version    int                    `json:"version"`
	Player     string                 `json:"player"`
	Time       float64                `json:"time"`
	IslandSeed int64                  `json:"island_seed"`
	Island     *IslandV1              `json:"island,omitempty"` // Absent between prestige and a new island
	Resources  map[string]int         `json:"resources"`
	Progress   engine.Progression     `json:"progress"`
	Automation engine.AutomationFlags `json:"automation"`
	Runtime    engine.Runtime         `json:"runtime"`
}

// IslandV1 is the saved map.
type IslandV1 struct {
	Radius          int              `json:"radius"`
	DiscoveryRadius int              `json:"discovery_radius"` // -1 reveals everything
	Hexes           []HexV1          `json:"hexes"`
	Visible         []world.HexCoord `json:"visible"`
	Civilizations   []string         `json:"civilizations"`
	Cities          []CityV1         `json:"cities"`
	Roads           []RoadV1         `json:"roads"`
}

type HexV1 struct {
	Q       int           `json:"q"`
	R       int           `json:"r"`
	Terrain world.Terrain `json:"terrain"`
}

type CityV1 struct {
	ID        uint64       `json:"id"`
	Name      string       `json:"name"`
	Vertex    world.Vertex `json:"vertex"`
	Level     int          `json:"level"`
	Owner     string       `json:"owner"`
	Buildings []BuildingV1 `json:"buildings"`
}

type BuildingV1 struct {
	Type           string   `json:"type"`
	Level          int      `json:"level"`
	LastProduction *float64 `json:"last_production,omitempty"`
	Specialization *string  `json:"specialization,omitempty"`
}

type RoadV1 struct {
	Edge  world.Edge `json:"edge"`
	Owner string     `json:"owner"`
}

// Capture copies the simulation into a Snapshot. The result shares no
// memory with sim.
func Capture(sim *engine.Simulation) Snapshot {
	snap := Snapshot{
		Version:    SnapshotVersion,
		Player:     string(sim.Player),
		Time:       sim.Clock.Now(),
		IslandSeed: sim.IslandSeed,
		Resources:  make(map[string]int, world.NumResources),
		Progress:   sim.Progress.Clone(),
		Automation: sim.Automation,
		Runtime:    sim.Runtime(),
	}
	for _, r := range world.AllResources {
		snap.Resources[r.String()] = sim.Ledger.Get(r)
	}
	if sim.Map != nil {
		snap.Island = captureIsland(sim.Map)
	}
	return snap
}

func captureIsland(m *island.Map) *IslandV1 {
	out := &IslandV1{
		Radius:          m.Grid.Radius,
		DiscoveryRadius: -1,
		Visible:         m.VisibleHexes(),
	}
	if d, ok := m.Discovery().(island.RadiusDiscovery); ok {
		out.DiscoveryRadius = d.Radius
	}
	for _, c := range m.Grid.Coords() {
		t, _ := m.Grid.Terrain(c)
		out.Hexes = append(out.Hexes, HexV1{Q: c.Q, R: c.R, Terrain: t})
	}
	for _, civ := range m.Civilizations() {
		out.Civilizations = append(out.Civilizations, string(civ))
	}
	for _, c := range m.Cities() {
		cv := CityV1{
			ID:     uint64(c.ID),
			Name:   c.Name,
			Vertex: c.Vertex,
			Level:  int(c.Level),
			Owner:  string(c.Owner),
		}
		for _, bt := range c.BuildingTypes() {
			b := c.Buildings[bt]
			bv := BuildingV1{Type: bt.String(), Level: b.Level}
			if b.LastProduction != nil {
				ts := *b.LastProduction
				bv.LastProduction = &ts
			}
			if b.Specialization != nil {
				name := b.Specialization.String()
				bv.Specialization = &name
			}
			cv.Buildings = append(cv.Buildings, bv)
		}
		out.Cities = append(out.Cities, cv)
	}
	for _, e := range m.Roads() {
		owner, _ := m.RoadOwner(e)
		out.Roads = append(out.Roads, RoadV1{Edge: e, Owner: string(owner)})
	}
	return out
}

// Restore rebuilds a simulation from snap under rules. Any inconsistency
// is reported as a corrupt-save error.
func Restore(rules *config.Rules, snap Snapshot) (*engine.Simulation, error) {
	if snap.Version != SnapshotVersion {
		return nil, errs.Corruptf("unsupported save version %d", snap.Version)
	}
	if snap.Player == "" {
		return nil, errs.Corruptf("save has no player")
	}
	if snap.Time < 0 {
		return nil, errs.Corruptf("negative game time %v", snap.Time)
	}
	if snap.Runtime.RNGDraws >= engine.MaxRNGDraws {
		return nil, errs.Corruptf("random stream position %d is past %d", snap.Runtime.RNGDraws, engine.MaxRNGDraws)
	}

	sim := engine.NewSimulation(rules, settlement.CivID(snap.Player), snap.Runtime.RNGSeed)
	sim.IslandSeed = snap.IslandSeed
	sim.SetClock(snap.Time)

	amounts := make(map[world.Resource]int, len(snap.Resources))
	for name, n := range snap.Resources {
		r, err := world.ParseResource(name)
		if err != nil {
			return nil, errs.WrapCorrupt("resources", err)
		}
		amounts[r] = n
	}
	ledger, err := economy.LedgerFrom(amounts)
	if err != nil {
		return nil, errs.WrapCorrupt("resources", err)
	}
	sim.Ledger = ledger

	if err := restoreProgress(rules, snap.Progress); err != nil {
		return nil, err
	}
	sim.Progress = snap.Progress.Clone()
	sim.Automation = snap.Automation

	if snap.Island != nil {
		m, err := restoreIsland(rules, snap.Island, settlement.CivID(snap.Player))
		if err != nil {
			return nil, err
		}
		sim.Map = m
	}
	for _, cd := range snap.Runtime.Cooldowns {
		if cd.HarvestedAt > snap.Time {
			return nil, errs.Corruptf("hex %s harvested in the future (%v)", cd.Hex, cd.HarvestedAt)
		}
	}
	sim.RestoreRuntime(snap.Runtime)
	return sim, nil
}

func restoreProgress(rules *config.Rules, p engine.Progression) error {
	if p.Prestige < 0 || p.PrestigeEarned < 0 || p.Resets < 0 {
		return errs.Corruptf("negative progression %+v", p)
	}
	for key, level := range p.Upgrades {
		u, ok := rules.Upgrades[key]
		if !ok {
			return errs.Corruptf("unknown meta-upgrade %q", key)
		}
		if level < 0 || level > u.MaxLevel {
			return errs.Corruptf("meta-upgrade %s at level %d", key, level)
		}
	}
	return nil
}

func restoreIsland(rules *config.Rules, iv *IslandV1, player settlement.CivID) (*island.Map, error) {
	grid := world.NewGrid(iv.Radius)
	for _, h := range iv.Hexes {
		c := world.HexCoord{Q: h.Q, R: h.R}
		if grid.Has(c) {
			return nil, errs.Corruptf("hex %s listed twice", c)
		}
		if !h.Terrain.Valid() {
			return nil, errs.Corruptf("hex %s has terrain %d", c, h.Terrain)
		}
		grid.Set(c, h.Terrain)
	}

	var policy island.Discovery = island.RevealAll{}
	if iv.DiscoveryRadius >= 0 {
		policy = island.RadiusDiscovery{Radius: iv.DiscoveryRadius, Owner: player}
	}
	m := island.New(grid, policy)
	for _, c := range iv.Visible {
		if !grid.Has(c) {
			return nil, errs.Corruptf("visible hex %s is off the island", c)
		}
		m.SetVisible(c)
	}
	for _, civ := range iv.Civilizations {
		m.RegisterCivilization(settlement.CivID(civ))
	}

	for _, cv := range iv.Cities {
		c, err := restoreCity(rules, cv)
		if err != nil {
			return nil, err
		}
		if err := m.RestoreCity(c); err != nil {
			return nil, errs.WrapCorrupt(fmt.Sprintf("city %d", cv.ID), err)
		}
	}
	if err := m.CheckSpacing(); err != nil {
		return nil, errs.WrapCorrupt("city spacing", err)
	}

	for _, rv := range iv.Roads {
		if !world.ValidEdge(rv.Edge) {
			return nil, errs.Corruptf("road %s is not a hex border", rv.Edge)
		}
		if err := m.AddRoad(rv.Edge, settlement.CivID(rv.Owner)); err != nil {
			return nil, errs.WrapCorrupt(fmt.Sprintf("road %s", rv.Edge), err)
		}
	}
	return m, nil
}

func restoreCity(rules *config.Rules, cv CityV1) (*settlement.City, error) {
	level := settlement.Level(cv.Level)
	if cv.Level < 0 || !level.Valid() {
		return nil, errs.Corruptf("city %d has level %d", cv.ID, cv.Level)
	}
	if !world.ValidVertex(cv.Vertex) {
		return nil, errs.Corruptf("city %d is not on a corner", cv.ID)
	}
	if limit := rules.Limits.MaxBuildingsFor(level); len(cv.Buildings) > limit {
		return nil, errs.Corruptf("city %d holds %d buildings, %s allows %d", cv.ID, len(cv.Buildings), level, limit)
	}

	c := settlement.NewCity(settlement.CityID(cv.ID), cv.Vertex, settlement.CivID(cv.Owner), level, cv.Name)
	for _, bv := range cv.Buildings {
		bt, err := settlement.ParseBuildingType(bv.Type)
		if err != nil {
			return nil, errs.WrapCorrupt(fmt.Sprintf("city %d", cv.ID), err)
		}
		if c.Has(bt) {
			return nil, errs.Corruptf("city %d has two %s", cv.ID, bt)
		}
		if bv.Level < 1 || bv.Level > bt.MaxLevel() {
			return nil, errs.Corruptf("city %d %s at level %d", cv.ID, bt, bv.Level)
		}
		b := settlement.NewBuilding(bt)
		b.Level = bv.Level
		if bv.LastProduction != nil {
			ts := *bv.LastProduction
			b.LastProduction = &ts
		}
		if bv.Specialization != nil {
			r, err := world.ParseResource(*bv.Specialization)
			if err != nil {
				return nil, errs.WrapCorrupt(fmt.Sprintf("city %d port", cv.ID), err)
			}
			if err := b.Specialize(r); err != nil {
				return nil, errs.WrapCorrupt(fmt.Sprintf("city %d %s", cv.ID, bt), err)
			}
		}
		c.Buildings[bt] = b
	}
	return c, nil
}

// Summary is the listing metadata stored beside a save.
type Summary struct {
	Time       float64
	IslandSeed int64
	Cities     int
	Resets     int
}

// Summarize extracts listing metadata from snap.
func Summarize(snap Snapshot) Summary {
	s := Summary{Time: snap.Time, IslandSeed: snap.IslandSeed, Resets: snap.Progress.Resets}
	if snap.Island != nil {
		for _, c := range snap.Island.Cities {
			if c.Owner == snap.Player {
				s.Cities++
			}
		}
	}
	return s
}
