package engine

import (
	"github.com/talgya/hexisle/internal/settlement"
	"github.com/talgya/hexisle/internal/world"
)

// EventKind classifies an Event.
type EventKind string

const (
	EventProduced         EventKind = "produced"
	EventHarvested        EventKind = "harvested"
	EventRoadBuilt        EventKind = "road_built"
	EventOutpostFounded   EventKind = "outpost_founded"
	EventBuildingBuilt    EventKind = "building_built"
	EventBuildingUpgraded EventKind = "building_upgraded"
	EventCityUpgraded     EventKind = "city_upgraded"
	EventPortSpecialized  EventKind = "port_specialized"
	EventTraded           EventKind = "traded"
	EventDiscovered       EventKind = "discovered"
	EventPrestige         EventKind = "prestige"
	EventIslandCreated    EventKind = "island_created"
	EventUpgradePurchased EventKind = "upgrade_purchased"
)

// Event is one effect for a renderer or log to pick up. Events are values;
// consumers get copies.
type Event struct {
	Kind     EventKind                `json:"kind"`
	Time     float64                  `json:"time"`
	Civ      settlement.CivID         `json:"civ,omitempty"`
	City     settlement.CityID        `json:"city,omitempty"`
	Vertex   *world.Vertex            `json:"vertex,omitempty"`
	Edge     *world.Edge              `json:"edge,omitempty"`
	Hex      *world.HexCoord          `json:"hex,omitempty"` // Source hex; nil for random output
	Building *settlement.BuildingType `json:"building,omitempty"`
	Resource *world.Resource          `json:"resource,omitempty"`
	Amount   int                      `json:"amount,omitempty"`
	Detail   string                   `json:"detail,omitempty"`
}

func (s *Simulation) emit(e Event) {
	e.Time = s.Clock.Now()
	s.pending = append(s.pending, e)
}

// DrainEvents returns the events emitted since the last call and clears them.
func (s *Simulation) DrainEvents() []Event {
	out := s.pending
	s.pending = nil
	return out
}

func vertexRef(v world.Vertex) *world.Vertex                       { return &v }
func edgeRef(e world.Edge) *world.Edge                             { return &e }
func hexRef(h world.HexCoord) *world.HexCoord                      { return &h }
func resourceRef(r world.Resource) *world.Resource                 { return &r }
func buildingRef(t settlement.BuildingType) *settlement.BuildingType { return &t }
