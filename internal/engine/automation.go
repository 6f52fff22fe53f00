// Automation: the construction guild builds on the player's behalf.
package engine

import (
	"github.com/talgya/hexisle/internal/settlement"
)

// AutomationFlags are the player's automation switches. A flag takes
// effect only once the construction guild reaches its tier.
type AutomationFlags struct {
	Roads       bool `json:"roads"`        // Guild level 1
	Outposts    bool `json:"outposts"`     // Guild level 2
	CityUpgrade bool `json:"city_upgrade"` // Guild level 2
	Production  bool `json:"production"`   // Guild level 3
}

// Guild levels that unlock each automation.
const (
	guildTierRoads      = 1
	guildTierOutposts   = 2
	guildTierCities     = 2
	guildTierProduction = 3
)

// guildLevel returns the highest construction guild level among the
// player's cities, or 0 without one.
func (s *Simulation) guildLevel() int {
	best := 0
	for _, c := range s.CitiesByCivilization(s.Player) {
		if g := c.Building(settlement.BuildingConstructionGuild); g != nil && g.Level > best {
			best = g.Level
		}
	}
	return best
}

// runAutomation attempts at most one action per automation interval, in
// priority order: city upgrade, production building, outpost, road.
// Failures are expected and only logged at debug.
func (s *Simulation) runAutomation() {
	guild := s.guildLevel()
	if guild == 0 {
		return
	}
	now := s.Clock.Now()
	if s.lastAutomation != nil && now-*s.lastAutomation < s.Rules.Automation.Interval {
		return
	}
	ts := now
	s.lastAutomation = &ts

	steps := []struct {
		name    string
		enabled bool
		tier    int
		try     func() bool
	}{
		{"city_upgrade", s.Automation.CityUpgrade, guildTierCities, s.autoUpgradeCity},
		{"production", s.Automation.Production, guildTierProduction, s.autoBuildProducer},
		{"outpost", s.Automation.Outposts, guildTierOutposts, s.autoBuildOutpost},
		{"road", s.Automation.Roads, guildTierRoads, s.autoBuildRoad},
	}
	for _, step := range steps {
		if !step.enabled || guild < step.tier {
			continue
		}
		if step.try() {
			s.log.Debug("automation acted", "action", step.name, "time", now)
			return
		}
	}
}

func (s *Simulation) autoUpgradeCity() bool {
	for _, c := range s.Map.CitiesByCivilization(s.Player) {
		if c.Level >= settlement.MaxCityLevel {
			continue
		}
		_, err := s.UpgradeCity(c.Vertex, s.Player)
		if err == nil {
			return true
		}
		s.log.Debug("auto city upgrade skipped", "city", c.Name, "error", err)
	}
	return false
}

// autoBuildProducer builds the first missing producer whose terrain
// touches the city.
func (s *Simulation) autoBuildProducer() bool {
	for _, c := range s.Map.CitiesByCivilization(s.Player) {
		for _, h := range c.Vertex.Hexes() {
			t, ok := s.Map.HexTerrain(h)
			if !ok || !s.Map.IsHarvestable(h) {
				continue
			}
			res, _ := t.Resource()
			bt := settlement.ProducerFor(res)
			if c.Has(bt) {
				continue
			}
			_, err := s.BuildBuilding(bt, c.Vertex, s.Player)
			if err == nil {
				return true
			}
			s.log.Debug("auto build skipped", "city", c.Name, "building", bt, "error", err)
		}
	}
	return false
}

func (s *Simulation) autoBuildOutpost() bool {
	if !s.Ledger.CanAfford(s.Rules.OutpostCost) {
		return false
	}
	for _, v := range s.Map.BuildableOutposts(s.Player) {
		_, err := s.BuildOutpost(v, s.Player)
		if err == nil {
			return true
		}
		s.log.Debug("auto outpost skipped", "vertex", v, "error", err)
	}
	return false
}

func (s *Simulation) autoBuildRoad() bool {
	if !s.Ledger.CanAfford(s.Rules.RoadCost) {
		return false
	}
	for _, e := range s.Map.BuildableRoads(s.Player) {
		_, err := s.BuildRoad(e, s.Player)
		if err == nil {
			return true
		}
		s.log.Debug("auto road skipped", "edge", e, "error", err)
	}
	return false
}
