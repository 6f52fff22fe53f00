// Civilization scoring, prestige resets, meta-upgrades and island creation.
package engine

import (
	"fmt"
	"math"

	"github.com/talgya/hexisle/internal/config"
	"github.com/talgya/hexisle/internal/errs"
	"github.com/talgya/hexisle/internal/island"
	"github.com/talgya/hexisle/internal/settlement"
	"github.com/talgya/hexisle/internal/world"
)

// Progression is the meta state that survives prestige resets.
type Progression struct {
	Prestige       int            `json:"prestige"`        // Spendable balance
	PrestigeEarned int            `json:"prestige_earned"` // Lifetime total
	Resets         int            `json:"resets"`
	Upgrades       map[string]int `json:"upgrades"` // Meta-upgrade levels by key
}

// NewProgression returns an empty progression record.
func NewProgression() Progression {
	return Progression{Upgrades: make(map[string]int)}
}

// Clone returns a deep copy.
func (p Progression) Clone() Progression {
	out := p
	out.Upgrades = make(map[string]int, len(p.Upgrades))
	for k, v := range p.Upgrades {
		out.Upgrades[k] = v
	}
	return out
}

// CivilizationPoints is the sum of civ's city levels plus one per library
// and one per temple. Recomputed on every call.
func (s *Simulation) CivilizationPoints(civ settlement.CivID) int {
	points := 0
	for _, c := range s.CitiesByCivilization(civ) {
		points += int(c.Level)
		points += c.Count(settlement.BuildingLibrary)
		points += c.Count(settlement.BuildingTemple)
	}
	return points
}

// CanPrestige reports why civ cannot reset yet, or nil if it can.
func (s *Simulation) CanPrestige(civ settlement.CivID) error {
	if err := s.requirePlayer(civ); err != nil {
		return err
	}
	if !s.hasCapital(civ) {
		return errs.Validationf(errs.ErrNotEligible, "prestige needs a capital")
	}
	if p := s.CivilizationPoints(civ); p < s.Rules.Prestige.Threshold {
		return errs.Validationf(errs.ErrNotEligible, "prestige needs %d points, have %d", s.Rules.Prestige.Threshold, p)
	}
	return nil
}

// PrestigeResult reports a completed reset.
type PrestigeResult struct {
	Points     int     `json:"points"`
	Gained     int     `json:"gained"`
	Total      int     `json:"total"`
	Resets     int     `json:"resets"`
	Time       float64 `json:"time"`
	IslandSeed int64   `json:"island_seed"`
}

// ActivatePrestige converts civ's points into permanent prestige and
// discards the island. Resources and cooldowns are cleared; the clock,
// automation flags and meta-upgrades carry over.
func (s *Simulation) ActivatePrestige(civ settlement.CivID) (PrestigeResult, error) {
	if err := s.CanPrestige(civ); err != nil {
		return PrestigeResult{}, err
	}
	points := s.CivilizationPoints(civ)
	gain := int(math.Floor(float64(points) * s.Rules.Prestige.Multiplier))

	s.Progress.Prestige += gain
	s.Progress.PrestigeEarned += gain
	s.Progress.Resets++

	res := PrestigeResult{
		Points:     points,
		Gained:     gain,
		Total:      s.Progress.Prestige,
		Resets:     s.Progress.Resets,
		Time:       s.Clock.Now(),
		IslandSeed: s.IslandSeed,
	}

	s.Map = nil
	s.Ledger.Reset()
	s.clearCooldowns()
	s.lastAutomation = nil

	s.emit(Event{Kind: EventPrestige, Civ: civ, Amount: gain, Detail: fmt.Sprintf("%d points", points)})
	s.log.Info("prestige", "points", points, "gained", gain, "total", s.Progress.Prestige, "resets", s.Progress.Resets)
	if s.OnPrestige != nil {
		s.OnPrestige(res)
	}
	return res, nil
}

// UpgradeResult reports a meta-upgrade purchase.
type UpgradeResult struct {
	Key       string `json:"key"`
	Level     int    `json:"level"`
	Cost      int    `json:"cost"`
	Remaining int    `json:"remaining"`
}

// PurchaseUpgrade spends prestige on the next level of a meta-upgrade.
func (s *Simulation) PurchaseUpgrade(key string) (UpgradeResult, error) {
	if _, ok := s.Rules.Upgrades[key]; !ok {
		return UpgradeResult{}, errs.Validationf(errs.ErrInvalidArgument, "unknown upgrade %q", key)
	}
	level := s.Progress.Upgrades[key]
	cost, ok := s.Rules.MetaUpgradeCost(key, level)
	if !ok {
		return UpgradeResult{}, errs.Validationf(errs.ErrMaxLevel, "%s level %d", key, level)
	}
	if s.Progress.Prestige < cost {
		return UpgradeResult{}, errs.Validationf(errs.ErrInsufficient, "%s costs %d prestige, have %d", key, cost, s.Progress.Prestige)
	}
	s.Progress.Prestige -= cost
	s.Progress.Upgrades[key] = level + 1

	s.emit(Event{Kind: EventUpgradePurchased, Civ: s.Player, Amount: level + 1, Detail: key})
	return UpgradeResult{Key: key, Level: level + 1, Cost: cost, Remaining: s.Progress.Prestige}, nil
}

// IslandResult reports a freshly generated island.
type IslandResult struct {
	Seed   int64             `json:"seed"`
	Hexes  int               `json:"hexes"`
	City   settlement.CityID `json:"city"`
	Vertex world.Vertex      `json:"vertex"`
	Road   world.Edge        `json:"road"`
}

// NewIsland generates an island from seed (0 picks one) and settles the
// player on the best starting corner with one outpost and one road.
// It fails while an island is still in play.
func (s *Simulation) NewIsland(seed int64) (IslandResult, error) {
	if s.Map != nil {
		return IslandResult{}, errs.Validationf(errs.ErrNotEligible, "an island is already in play")
	}

	gen := world.DefaultGenConfig()
	gen.Radius = s.Rules.Island.Radius
	gen.DesertShare = s.Rules.Island.DesertShare
	gen.Seed = seed
	grid, used := world.Generate(gen)

	site, ok := world.ChooseStart(grid, used)
	if !ok {
		return IslandResult{}, errs.WrapInternal("choose start", fmt.Errorf("island %d has no settleable corner", used))
	}

	m := island.New(grid, island.RadiusDiscovery{Radius: s.Rules.Island.DiscoveryRadius, Owner: s.Player})
	m.RegisterCivilization(s.Player)
	s.Map = m
	s.IslandSeed = used

	c, err := m.AddCity(site.Vertex, s.Player, settlement.LevelOutpost, s.cityName())
	if err != nil {
		s.Map = nil
		return IslandResult{}, errs.WrapInternal("place start city", err)
	}
	if err := m.AddRoad(site.Road, s.Player); err != nil {
		s.Map = nil
		return IslandResult{}, errs.WrapInternal("place start road", err)
	}
	m.Discover()
	s.applyHeadStart()

	s.emit(Event{Kind: EventIslandCreated, Civ: s.Player, City: c.ID, Vertex: vertexRef(c.Vertex), Detail: fmt.Sprintf("seed %d", used)})
	s.log.Info("island created", "seed", used, "hexes", grid.HexCount(), "start", c.Name)
	return IslandResult{Seed: used, Hexes: grid.HexCount(), City: c.ID, Vertex: c.Vertex, Road: site.Road}, nil
}

// applyHeadStart credits the head_start meta-upgrade to every resource.
func (s *Simulation) applyHeadStart() {
	bonus := int(s.Rules.MetaUpgradeBonus(config.UpgradeHeadStart, s.Progress.Upgrades[config.UpgradeHeadStart]))
	if bonus <= 0 {
		return
	}
	capacity := s.Capacity(s.Player)
	for _, r := range world.AllResources {
		s.Ledger.AddCapped(r, bonus, capacity)
	}
}
