// Building production: per-building timers with catch-up.
package engine

import (
	"github.com/talgya/hexisle/internal/settlement"
	"github.com/talgya/hexisle/internal/world"
)

// runProduction visits every production-capable building of the player,
// cities by id and buildings by type.
func (s *Simulation) runProduction() {
	now := s.Clock.Now()
	capacity := s.Capacity(s.Player)
	for _, c := range s.Map.CitiesByCivilization(s.Player) {
		for _, bt := range c.BuildingTypes() {
			s.produce(c, c.Buildings[bt], now, capacity)
		}
	}
}

// productionInterval returns the cycle length of b, and false if b does not
// produce at its current level.
func (s *Simulation) productionInterval(b *settlement.Building) (float64, bool) {
	if b.RandomOutput() {
		return s.Rules.Production.RandomInterval, true
	}
	if _, ok := b.Type.Harvests(); ok {
		return s.Rules.ProductionInterval(b.Level), true
	}
	return 0, false
}

// produce runs at most one production cycle of b. A building seen for the
// first time is stamped and skipped. A lapsed cycle always advances the
// stamp by exactly one interval, even when nothing could be credited, so a
// long frame is caught up one cycle per tick.
func (s *Simulation) produce(c *settlement.City, b *settlement.Building, now float64, capacity int) {
	interval, ok := s.productionInterval(b)
	if !ok {
		return
	}
	if b.LastProduction == nil {
		ts := now
		b.LastProduction = &ts
		return
	}
	if now-*b.LastProduction < interval {
		return
	}

	if b.RandomOutput() {
		r := world.AllResources[s.rng.Intn(world.NumResources)]
		if n := s.Ledger.AddCapped(r, 1, capacity); n > 0 {
			s.emit(Event{
				Kind: EventProduced, Civ: c.Owner, City: c.ID,
				Vertex: vertexRef(c.Vertex), Building: buildingRef(b.Type),
				Resource: resourceRef(r), Amount: n,
			})
		}
	} else {
		res, _ := b.Type.Harvests()
		want := world.TerrainFor(res)
		for _, h := range c.Vertex.Hexes() {
			if t, ok := s.Map.HexTerrain(h); !ok || t != want || !s.Map.IsHarvestable(h) {
				continue
			}
			if n := s.Ledger.AddCapped(res, 1, capacity); n > 0 {
				s.emit(Event{
					Kind: EventProduced, Civ: c.Owner, City: c.ID,
					Vertex: vertexRef(c.Vertex), Hex: hexRef(h), Building: buildingRef(b.Type),
					Resource: resourceRef(res), Amount: n,
				})
			}
		}
	}

	next := *b.LastProduction + interval
	b.LastProduction = &next
}
