// Simulation ties the island, the ledger and the clock together and runs
// production and automation each tick.
package engine

import (
	"log/slog"
	"math/rand"

	"golang.org/x/time/rate"

	"github.com/talgya/hexisle/internal/config"
	"github.com/talgya/hexisle/internal/economy"
	"github.com/talgya/hexisle/internal/errs"
	"github.com/talgya/hexisle/internal/island"
	"github.com/talgya/hexisle/internal/settlement"
	"github.com/talgya/hexisle/internal/world"
)

// Simulation holds the complete game state for one player. It is not safe
// for concurrent use; Engine serializes access.
type Simulation struct {
	Rules  *config.Rules
	Player settlement.CivID

	Map        *island.Map // nil between a prestige reset and NewIsland
	IslandSeed int64
	Ledger     *economy.Ledger
	Clock      Clock
	Progress   Progression
	Automation AutomationFlags

	// OnPrestige runs after a successful reset, before the new island exists.
	OnPrestige func(PrestigeResult)

	rng *rand.Rand
	src *countingSource

	limiters    map[world.HexCoord]*rate.Limiter
	harvestedAt map[world.HexCoord]float64

	lastAutomation *float64
	pending        []Event
	log            *slog.Logger
}

// NewSimulation creates a simulation with no island. seed drives every
// random draw the simulation makes after generation.
func NewSimulation(rules *config.Rules, player settlement.CivID, seed int64) *Simulation {
	src := newCountingSource(seed)
	return &Simulation{
		Rules:       rules,
		Player:      player,
		Ledger:      economy.NewLedger(),
		Progress:    NewProgression(),
		rng:         rand.New(src),
		src:         src,
		limiters:    make(map[world.HexCoord]*rate.Limiter),
		harvestedAt: make(map[world.HexCoord]float64),
		log:         slog.With("component", "simulation"),
	}
}

// Tick advances the clock to now and runs production, then automation.
func (s *Simulation) Tick(now float64) {
	s.UpdateTime(now)
	if s.Map == nil {
		return
	}
	s.runProduction()
	s.runAutomation()
}

// UpdateTime moves the game clock forward. Earlier times are ignored.
func (s *Simulation) UpdateTime(now float64) {
	if !s.Clock.Set(now) && now < s.Clock.Now() {
		s.log.Debug("ignoring clock rewind", "now", s.Clock.Now(), "requested", now)
	}
}

func (s *Simulation) requireIsland() error {
	if s.Map == nil {
		return errs.Validation(errs.ErrNoIsland)
	}
	return nil
}

func (s *Simulation) requirePlayer(civ settlement.CivID) error {
	if civ != s.Player {
		return errs.Validationf(errs.ErrNotOwner, "civilization %q is not the player", civ)
	}
	return s.requireIsland()
}

// ownedCity returns the player's city at v.
func (s *Simulation) ownedCity(v world.Vertex, civ settlement.CivID) (*settlement.City, error) {
	c := s.Map.City(v)
	if c == nil {
		return nil, errs.NotFoundf("no city at %s", v)
	}
	if c.Owner != civ {
		return nil, errs.Validationf(errs.ErrNotOwner, "city %q", c.Name)
	}
	return c, nil
}

// ── Queries ─────────────────────────────────────────────────────────

// HexTerrain returns a hex's terrain; false when there is no island or no such hex.
func (s *Simulation) HexTerrain(c world.HexCoord) (world.Terrain, bool) {
	if s.Map == nil {
		return 0, false
	}
	return s.Map.HexTerrain(c)
}

// IsHexVisible reports whether a hex has been discovered.
func (s *Simulation) IsHexVisible(c world.HexCoord) bool {
	return s.Map != nil && s.Map.IsHexVisible(c)
}

// City returns the city at v, or nil.
func (s *Simulation) City(v world.Vertex) *settlement.City {
	if s.Map == nil {
		return nil
	}
	return s.Map.City(v)
}

// HasCity reports whether v hosts a city.
func (s *Simulation) HasCity(v world.Vertex) bool {
	return s.Map != nil && s.Map.HasCity(v)
}

// BuildableRoads lists the edges civ can build a road on.
func (s *Simulation) BuildableRoads(civ settlement.CivID) []world.Edge {
	if s.Map == nil {
		return nil
	}
	return s.Map.BuildableRoads(civ)
}

// BuildableOutposts lists the corners civ can found a city on.
func (s *Simulation) BuildableOutposts(civ settlement.CivID) []world.Vertex {
	if s.Map == nil {
		return nil
	}
	return s.Map.BuildableOutposts(civ)
}

// CitiesByCivilization lists civ's cities by id.
func (s *Simulation) CitiesByCivilization(civ settlement.CivID) []*settlement.City {
	if s.Map == nil {
		return nil
	}
	return s.Map.CitiesByCivilization(civ)
}

// Capacity returns the per-resource storage cap of civ: base, plus a bonus
// per city and city level, per storehouse and per storage meta-upgrade.
func (s *Simulation) Capacity(civ settlement.CivID) int {
	ct := s.Rules.Capacity
	total := ct.Base
	if s.Map != nil {
		for _, c := range s.Map.CitiesByCivilization(civ) {
			total += ct.PerCity + ct.PerCityLevel*int(c.Level)
			if c.Has(settlement.BuildingStorehouse) {
				total += ct.PerStorehouse
			}
		}
	}
	if civ == s.Player {
		total += int(s.Rules.MetaUpgradeBonus(config.UpgradeStorage, s.Progress.Upgrades[config.UpgradeStorage]))
	}
	return total
}

// Rates returns civ's exchange rates from its ports.
func (s *Simulation) Rates(civ settlement.CivID) economy.RateTable {
	var ports []economy.PortInfo
	for _, c := range s.CitiesByCivilization(civ) {
		if p := c.Building(settlement.BuildingPort); p != nil {
			ports = append(ports, economy.PortInfo{Specialization: p.Specialization})
		}
	}
	return economy.Rates(s.Rules.RatePolicy, ports)
}

// HasTradeAccess reports whether any of civ's cities has a market or port.
func (s *Simulation) HasTradeAccess(civ settlement.CivID) bool {
	for _, c := range s.CitiesByCivilization(civ) {
		if c.Has(settlement.BuildingMarket) || c.Has(settlement.BuildingPort) {
			return true
		}
	}
	return false
}

// HarvestMultiplier returns the player's manual harvest multiplier.
func (s *Simulation) HarvestMultiplier() float64 {
	return 1 + s.Rules.MetaUpgradeBonus(config.UpgradeHarvestYield, s.Progress.Upgrades[config.UpgradeHarvestYield])
}

// Status summarizes the simulation for the API.
type Status struct {
	Time         float64          `json:"time"`
	Player       settlement.CivID `json:"player"`
	HasIsland    bool             `json:"has_island"`
	IslandSeed   int64            `json:"island_seed"`
	Cities       int              `json:"cities"`
	Roads        int              `json:"roads"`
	VisibleHexes int              `json:"visible_hexes"`
	Resources    map[string]int   `json:"resources"`
	Capacity     int              `json:"capacity"`
	Points       int              `json:"points"`
	CanPrestige  bool             `json:"can_prestige"`
	Progress     Progression      `json:"progress"`
	Automation   AutomationFlags  `json:"automation"`
	GuildLevel   int              `json:"guild_level"`
	TradeAccess  bool             `json:"trade_access"`
}

// Status returns a snapshot summary.
func (s *Simulation) Status() Status {
	st := Status{
		Time:        s.Clock.Now(),
		Player:      s.Player,
		HasIsland:   s.Map != nil,
		IslandSeed:  s.IslandSeed,
		Resources:   make(map[string]int, world.NumResources),
		Capacity:    s.Capacity(s.Player),
		Points:      s.CivilizationPoints(s.Player),
		CanPrestige: s.CanPrestige(s.Player) == nil,
		Progress:    s.Progress.Clone(),
		Automation:  s.Automation,
		GuildLevel:  s.guildLevel(),
		TradeAccess: s.HasTradeAccess(s.Player),
	}
	for _, r := range world.AllResources {
		st.Resources[r.String()] = s.Ledger.Get(r)
	}
	if s.Map != nil {
		st.Cities = len(s.Map.CitiesByCivilization(s.Player))
		st.Roads = len(s.Map.RoadsOf(s.Player))
		st.VisibleHexes = len(s.Map.VisibleHexes())
	}
	return st
}

// discover re-runs fog-of-war and emits an event when new hexes appear.
func (s *Simulation) discover(civ settlement.CivID) {
	fresh := s.Map.Discover()
	if len(fresh) == 0 {
		return
	}
	s.emit(Event{Kind: EventDiscovered, Civ: civ, Amount: len(fresh)})
}

// Runtime is the simulation state kept outside the map, ledger and clock.
type Runtime struct {
	RNGSeed        int64      `json:"rng_seed"`
	RNGDraws       uint64     `json:"rng_draws"`
	LastAutomation *float64   `json:"last_automation,omitempty"`
	Cooldowns      []Cooldown `json:"cooldowns,omitempty"`
}

// Runtime captures the random stream position, automation timer and cooldowns.
func (s *Simulation) Runtime() Runtime {
	rt := Runtime{
		RNGSeed:   s.src.seed,
		RNGDraws:  s.src.draws,
		Cooldowns: s.Cooldowns(),
	}
	if s.lastAutomation != nil {
		ts := *s.lastAutomation
		rt.LastAutomation = &ts
	}
	return rt
}

// RestoreRuntime reseeds the random stream and fast-forwards it to the
// saved position, then restores the automation timer and cooldowns.
func (s *Simulation) RestoreRuntime(rt Runtime) {
	s.src.Seed(rt.RNGSeed)
	s.src.skip(rt.RNGDraws)
	s.lastAutomation = nil
	if rt.LastAutomation != nil {
		ts := *rt.LastAutomation
		s.lastAutomation = &ts
	}
	s.RestoreCooldowns(rt.Cooldowns)
}

// SetClock sets the clock directly. Used when restoring saves.
func (s *Simulation) SetClock(t float64) {
	s.Clock = Clock{now: t}
}
