// Manual harvesting with per-hex cooldowns.
package engine

import (
	"math"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/talgya/hexisle/internal/errs"
	"github.com/talgya/hexisle/internal/settlement"
	"github.com/talgya/hexisle/internal/world"
)

// HarvestResult reports a successful manual harvest.
type HarvestResult struct {
	Hex      world.HexCoord    `json:"hex"`
	Resource world.Resource    `json:"resource"`
	Amount   int               `json:"amount"` // Credited after the capacity cap
	City     settlement.CityID `json:"city"`
	Vertex   world.Vertex      `json:"vertex"`
}

// Harvest gathers from hex c for civ. The hex must be visible, harvestable
// and border one of civ's cities: the one at cityVertex when given,
// otherwise the lowest-id match. Each hex then cools down for
// the configured number of game seconds.
func (s *Simulation) Harvest(c world.HexCoord, civ settlement.CivID, cityVertex *world.Vertex) (HarvestResult, error) {
	if err := s.requirePlayer(civ); err != nil {
		return HarvestResult{}, err
	}
	t, ok := s.Map.HexTerrain(c)
	if !ok {
		return HarvestResult{}, errs.Validationf(errs.ErrOffGrid, "hex %s", c)
	}
	if !s.Map.IsHexVisible(c) {
		return HarvestResult{}, errs.Validationf(errs.ErrNotHarvestable, "hex %s is undiscovered", c)
	}
	res, ok := t.Resource()
	if !ok {
		return HarvestResult{}, errs.Validationf(errs.ErrNotHarvestable, "hex %s is %s", c, t)
	}

	city, err := s.harvestingCity(c, civ, cityVertex)
	if err != nil {
		return HarvestResult{}, err
	}

	now := s.Clock.Now()
	if !s.limiter(c).AllowN(gameTime(now), 1) {
		return HarvestResult{}, errs.Validationf(errs.ErrCooldown, "hex %s ready in %.1fs", c, s.RemainingCooldown(c))
	}
	s.harvestedAt[c] = now

	gain := int(math.Floor(float64(s.Rules.Harvest.BaseGain) * s.HarvestMultiplier()))
	n := s.Ledger.AddCapped(res, gain, s.Capacity(civ))

	s.emit(Event{
		Kind: EventHarvested, Civ: civ, City: city.ID, Vertex: vertexRef(city.Vertex),
		Hex: hexRef(c), Resource: resourceRef(res), Amount: n,
	})
	return HarvestResult{Hex: c, Resource: res, Amount: n, City: city.ID, Vertex: city.Vertex}, nil
}

func (s *Simulation) harvestingCity(c world.HexCoord, civ settlement.CivID, cityVertex *world.Vertex) (*settlement.City, error) {
	if cityVertex != nil {
		city, err := s.ownedCity(*cityVertex, civ)
		if err != nil {
			return nil, err
		}
		if !city.Vertex.Touches(c) {
			return nil, errs.Validationf(errs.ErrNotConnected, "city %q does not border %s", city.Name, c)
		}
		return city, nil
	}
	for _, city := range s.Map.CitiesTouching(c) {
		if city.Owner == civ {
			return city, nil
		}
	}
	return nil, errs.Validationf(errs.ErrNotConnected, "no city of yours borders %s", c)
}

// RemainingCooldown returns the game seconds until hex c can be harvested again.
func (s *Simulation) RemainingCooldown(c world.HexCoord) float64 {
	lim, ok := s.limiters[c]
	if !ok || s.Rules.Harvest.Cooldown <= 0 {
		return 0
	}
	tokens := lim.TokensAt(gameTime(s.Clock.Now()))
	if tokens >= 1 {
		return 0
	}
	return (1 - tokens) * s.Rules.Harvest.Cooldown
}

// limiter returns the cooldown limiter for c, creating it on first use.
// Limiters are fed game time only.
func (s *Simulation) limiter(c world.HexCoord) *rate.Limiter {
	if lim, ok := s.limiters[c]; ok {
		return lim
	}
	lim := rate.NewLimiter(s.cooldownLimit(), 1)
	s.limiters[c] = lim
	return lim
}

func (s *Simulation) cooldownLimit() rate.Limit {
	if s.Rules.Harvest.Cooldown <= 0 {
		return rate.Inf
	}
	return rate.Every(time.Duration(s.Rules.Harvest.Cooldown * float64(time.Second)))
}

// Cooldown records the game time a hex was last harvested.
type Cooldown struct {
	Hex         world.HexCoord `json:"hex"`
	HarvestedAt float64        `json:"harvested_at"`
}

// Cooldowns returns the hexes still cooling down, in coordinate order.
func (s *Simulation) Cooldowns() []Cooldown {
	now := s.Clock.Now()
	var out []Cooldown
	for h, at := range s.harvestedAt {
		if now-at < s.Rules.Harvest.Cooldown {
			out = append(out, Cooldown{Hex: h, HarvestedAt: at})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hex.Less(out[j].Hex) })
	return out
}

// RestoreCooldowns replays saved harvests into fresh limiters.
func (s *Simulation) RestoreCooldowns(cds []Cooldown) {
	s.clearCooldowns()
	for _, cd := range cds {
		s.limiter(cd.Hex).AllowN(gameTime(cd.HarvestedAt), 1)
		s.harvestedAt[cd.Hex] = cd.HarvestedAt
	}
}

func (s *Simulation) clearCooldowns() {
	s.limiters = make(map[world.HexCoord]*rate.Limiter)
	s.harvestedAt = make(map[world.HexCoord]float64)
}
