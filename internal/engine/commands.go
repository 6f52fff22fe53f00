// Player commands. Each command validates everything first, then pays,
// then mutates, so a failure leaves no trace.
package engine

import (
	"github.com/talgya/hexisle/internal/economy"
	"github.com/talgya/hexisle/internal/errs"
	"github.com/talgya/hexisle/internal/settlement"
	"github.com/talgya/hexisle/internal/world"
)

// BuildResult reports a successful construction.
type BuildResult struct {
	Paid   economy.Cost      `json:"paid"`
	City   settlement.CityID `json:"city,omitempty"`
	Vertex *world.Vertex     `json:"vertex,omitempty"`
	Edge   *world.Edge       `json:"edge,omitempty"`
	Level  int               `json:"level,omitempty"`
}

// BuildRoad places a road for civ on e.
func (s *Simulation) BuildRoad(e world.Edge, civ settlement.CivID) (BuildResult, error) {
	if err := s.requirePlayer(civ); err != nil {
		return BuildResult{}, err
	}
	if err := s.Map.CanBuildRoad(e, civ); err != nil {
		return BuildResult{}, err
	}
	cost := s.Rules.RoadCost
	if err := s.Ledger.Pay(cost); err != nil {
		return BuildResult{}, err
	}
	if err := s.Map.AddRoad(e, civ); err != nil {
		s.refund(cost)
		return BuildResult{}, err
	}

	s.emit(Event{Kind: EventRoadBuilt, Civ: civ, Edge: edgeRef(e)})
	s.discover(civ)
	return BuildResult{Paid: cost, Edge: edgeRef(e)}, nil
}

// BuildOutpost founds a new level 0 city for civ at v.
func (s *Simulation) BuildOutpost(v world.Vertex, civ settlement.CivID) (BuildResult, error) {
	if err := s.requirePlayer(civ); err != nil {
		return BuildResult{}, err
	}
	if err := s.Map.CanBuildOutpost(v, civ); err != nil {
		return BuildResult{}, err
	}
	cost := s.Rules.OutpostCost
	if err := s.Ledger.Pay(cost); err != nil {
		return BuildResult{}, err
	}
	c, err := s.Map.AddCity(v, civ, settlement.LevelOutpost, s.cityName())
	if err != nil {
		s.refund(cost)
		return BuildResult{}, err
	}

	s.emit(Event{Kind: EventOutpostFounded, Civ: civ, City: c.ID, Vertex: vertexRef(v), Detail: c.Name})
	s.discover(civ)
	return BuildResult{Paid: cost, City: c.ID, Vertex: vertexRef(v)}, nil
}

// BuildBuilding adds a level 1 building of type t to civ's city at v.
func (s *Simulation) BuildBuilding(t settlement.BuildingType, v world.Vertex, civ settlement.CivID) (BuildResult, error) {
	if err := s.requirePlayer(civ); err != nil {
		return BuildResult{}, err
	}
	if !t.Valid() {
		return BuildResult{}, errs.Validationf(errs.ErrInvalidArgument, "building type %d", uint8(t))
	}
	c, err := s.ownedCity(v, civ)
	if err != nil {
		return BuildResult{}, err
	}
	if t.Info().Coastal && !s.Map.Grid.VertexOnCoast(v) {
		return BuildResult{}, errs.Validationf(errs.ErrNotEligible, "%s needs a coastal city", t)
	}
	if err := c.CanAddBuilding(t, s.Rules.Limits); err != nil {
		return BuildResult{}, err
	}
	cost := s.Rules.BuildingCost[t]
	if err := s.Ledger.Pay(cost); err != nil {
		return BuildResult{}, err
	}
	if _, err := c.AddBuilding(t, s.Rules.Limits); err != nil {
		s.refund(cost)
		return BuildResult{}, err
	}

	s.emit(Event{Kind: EventBuildingBuilt, Civ: civ, City: c.ID, Vertex: vertexRef(v), Building: buildingRef(t), Amount: 1})
	return BuildResult{Paid: cost, City: c.ID, Vertex: vertexRef(v), Level: 1}, nil
}

// UpgradeBuilding raises the level of civ's building of type t in the city at v.
func (s *Simulation) UpgradeBuilding(t settlement.BuildingType, v world.Vertex, civ settlement.CivID) (BuildResult, error) {
	if err := s.requirePlayer(civ); err != nil {
		return BuildResult{}, err
	}
	c, err := s.ownedCity(v, civ)
	if err != nil {
		return BuildResult{}, err
	}
	b := c.Building(t)
	if b == nil {
		return BuildResult{}, errs.NotFoundf("city %q has no %s", c.Name, t)
	}
	if b.AtMaxLevel() {
		return BuildResult{}, errs.Validationf(errs.ErrMaxLevel, "%s level %d", t, b.Level)
	}
	cost := s.Rules.UpgradeBuildingCost(t, b.Level)
	if err := s.Ledger.Pay(cost); err != nil {
		return BuildResult{}, err
	}
	if err := b.Upgrade(); err != nil {
		s.refund(cost)
		return BuildResult{}, err
	}

	s.emit(Event{Kind: EventBuildingUpgraded, Civ: civ, City: c.ID, Vertex: vertexRef(v), Building: buildingRef(t), Amount: b.Level})
	return BuildResult{Paid: cost, City: c.ID, Vertex: vertexRef(v), Level: b.Level}, nil
}

// UpgradeCity raises civ's city at v one level. A civilization may hold
// only one Capital.
func (s *Simulation) UpgradeCity(v world.Vertex, civ settlement.CivID) (BuildResult, error) {
	if err := s.requirePlayer(civ); err != nil {
		return BuildResult{}, err
	}
	c, err := s.ownedCity(v, civ)
	if err != nil {
		return BuildResult{}, err
	}
	if err := c.CanUpgrade(); err != nil {
		return BuildResult{}, err
	}
	if c.Level+1 == settlement.LevelCapital && s.hasCapital(civ) {
		return BuildResult{}, errs.Validationf(errs.ErrNotEligible, "%s already has a capital", civ)
	}
	cost, ok := s.Rules.CityCost(c.Level)
	if !ok {
		return BuildResult{}, errs.Validationf(errs.ErrMaxLevel, "city %q", c.Name)
	}
	if err := s.Ledger.Pay(cost); err != nil {
		return BuildResult{}, err
	}
	if err := c.Upgrade(); err != nil {
		s.refund(cost)
		return BuildResult{}, err
	}

	s.emit(Event{Kind: EventCityUpgraded, Civ: civ, City: c.ID, Vertex: vertexRef(v), Amount: int(c.Level), Detail: c.Level.String()})
	return BuildResult{Paid: cost, City: c.ID, Vertex: vertexRef(v), Level: int(c.Level)}, nil
}

// SpecializePort fixes the favored resource of the port in civ's city at v.
// A port can be specialized only once.
func (s *Simulation) SpecializePort(v world.Vertex, r world.Resource, civ settlement.CivID) error {
	if err := s.requirePlayer(civ); err != nil {
		return err
	}
	c, err := s.ownedCity(v, civ)
	if err != nil {
		return err
	}
	p := c.Building(settlement.BuildingPort)
	if p == nil {
		return errs.NotFoundf("city %q has no port", c.Name)
	}
	if err := p.Specialize(r); err != nil {
		return err
	}
	s.emit(Event{Kind: EventPortSpecialized, Civ: civ, City: c.ID, Vertex: vertexRef(v), Resource: resourceRef(r)})
	return nil
}

// BatchTrade exchanges offered for requested at civ's rates. It needs a
// market or port in any of civ's cities.
func (s *Simulation) BatchTrade(offered, requested economy.Cost, civ settlement.CivID) (economy.TradeResult, error) {
	if err := s.requirePlayer(civ); err != nil {
		return economy.TradeResult{}, err
	}
	if !s.HasTradeAccess(civ) {
		return economy.TradeResult{}, errs.Validation(errs.ErrNoTradeAccess)
	}
	res, err := s.Ledger.Trade(offered, requested, s.Rates(civ), s.Capacity(civ))
	if err != nil {
		return economy.TradeResult{}, err
	}
	s.emit(Event{Kind: EventTraded, Civ: civ, Amount: res.Batches, Detail: res.Paid.String() + " for " + res.Received.String()})
	return res, nil
}

// SetAutomation stores civ's automation flags. Flags the construction
// guild does not yet support are kept but have no effect.
func (s *Simulation) SetAutomation(flags AutomationFlags, civ settlement.CivID) error {
	if civ != s.Player {
		return errs.Validationf(errs.ErrNotOwner, "civilization %q is not the player", civ)
	}
	s.Automation = flags
	return nil
}

func (s *Simulation) hasCapital(civ settlement.CivID) bool {
	for _, c := range s.Map.CitiesByCivilization(civ) {
		if c.Level == settlement.LevelCapital {
			return true
		}
	}
	return false
}

// refund returns a payment after a mutation failed behind a passed check.
func (s *Simulation) refund(cost economy.Cost) {
	for _, r := range world.AllResources {
		if n := cost[r]; n > 0 {
			_ = s.Ledger.Add(r, n)
		}
	}
}

// cityName picks an unused name for a new city.
func (s *Simulation) cityName() string {
	used := make(map[string]bool)
	for _, c := range s.Map.Cities() {
		used[c.Name] = true
	}
	return world.CityName(s.rng, used)
}
