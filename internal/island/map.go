// Package island holds the map state: who owns what where on the current
// island, fog-of-war, and the placement rules for roads and cities.
package island

import (
	"fmt"
	"sort"

	"github.com/talgya/hexisle/internal/errs"
	"github.com/talgya/hexisle/internal/settlement"
	"github.com/talgya/hexisle/internal/world"
)

// Map is the single source of truth for what exists where on the island.
// Cities live in an arena keyed by CityID; the vertex index holds ids only.
type Map struct {
	Grid *world.Grid

	visible map[world.HexCoord]bool
	cities  map[settlement.CityID]*settlement.City
	cityAt  map[world.Vertex]settlement.CityID
	roads   map[world.Edge]settlement.CivID
	civs    map[settlement.CivID]bool

	nextCityID settlement.CityID
	discovery  Discovery
}

// New creates an empty map over grid. A nil discovery policy defaults to
// RadiusDiscovery{Radius: 1}.
func New(grid *world.Grid, discovery Discovery) *Map {
	if discovery == nil {
		discovery = RadiusDiscovery{Radius: 1}
	}
	return &Map{
		Grid:       grid,
		visible:    make(map[world.HexCoord]bool),
		cities:     make(map[settlement.CityID]*settlement.City),
		cityAt:     make(map[world.Vertex]settlement.CityID),
		roads:      make(map[world.Edge]settlement.CivID),
		civs:       make(map[settlement.CivID]bool),
		nextCityID: 1,
		discovery:  discovery,
	}
}

// RegisterCivilization adds a civilization to the map.
func (m *Map) RegisterCivilization(civ settlement.CivID) {
	m.civs[civ] = true
}

// HasCivilization reports whether civ is registered.
func (m *Map) HasCivilization(civ settlement.CivID) bool {
	return m.civs[civ]
}

// Civilizations returns registered civilizations in sorted order.
func (m *Map) Civilizations() []settlement.CivID {
	out := make([]settlement.CivID, 0, len(m.civs))
	for c := range m.civs {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Discovery returns the fog-of-war policy.
func (m *Map) Discovery() Discovery {
	return m.discovery
}

// ── Hex queries ─────────────────────────────────────────────────────

// HexTerrain returns the terrain of a hex and whether it exists.
func (m *Map) HexTerrain(c world.HexCoord) (world.Terrain, bool) {
	return m.Grid.Terrain(c)
}

// IsHexVisible reports whether the hex exists and has been discovered.
func (m *Map) IsHexVisible(c world.HexCoord) bool {
	return m.visible[c]
}

// SetVisible marks a hex discovered. Off-grid hexes are ignored.
func (m *Map) SetVisible(c world.HexCoord) {
	if m.Grid.Has(c) {
		m.visible[c] = true
	}
}

// VisibleHexes returns every discovered hex in sorted order.
func (m *Map) VisibleHexes() []world.HexCoord {
	out := make([]world.HexCoord, 0, len(m.visible))
	for _, c := range m.Grid.Coords() {
		if m.visible[c] {
			out = append(out, c)
		}
	}
	return out
}

// IsHarvestable reports whether a hex exists, is visible, and yields a resource.
func (m *Map) IsHarvestable(c world.HexCoord) bool {
	t, ok := m.Grid.Terrain(c)
	return ok && m.visible[c] && t.Harvestable()
}

// ── Cities ──────────────────────────────────────────────────────────

// AddCity places a new city. Fails if the vertex is occupied, off the grid,
// or entirely in boundary water. Placement rules beyond that (road
// contiguity, spacing) are checked by CanBuildOutpost.
func (m *Map) AddCity(v world.Vertex, civ settlement.CivID, level settlement.Level, name string) (*settlement.City, error) {
	if !m.Grid.HasVertex(v) {
		return nil, errs.Validationf(errs.ErrOffGrid, "corner %s", v)
	}
	if m.HasCity(v) {
		return nil, errs.Validationf(errs.ErrOccupied, "corner %s", v)
	}
	if !m.Grid.VertexOnLand(v) {
		return nil, errs.Validationf(errs.ErrNotEligible, "corner %s is open water", v)
	}
	if !level.Valid() {
		return nil, errs.Validationf(errs.ErrInvalidArgument, "city level %d", uint8(level))
	}

	c := settlement.NewCity(m.nextCityID, v, civ, level, name)
	m.nextCityID++
	m.cities[c.ID] = c
	m.cityAt[v] = c.ID
	m.RegisterCivilization(civ)
	return c, nil
}

// RestoreCity inserts a city with its saved id. Used when loading saves.
func (m *Map) RestoreCity(c *settlement.City) error {
	if c.ID == 0 {
		return fmt.Errorf("city %q has no id", c.Name)
	}
	if _, dup := m.cities[c.ID]; dup {
		return fmt.Errorf("duplicate city id %d", c.ID)
	}
	if !m.Grid.HasVertex(c.Vertex) {
		return fmt.Errorf("city %d corner %s not on grid", c.ID, c.Vertex)
	}
	if m.HasCity(c.Vertex) {
		return fmt.Errorf("city %d corner %s already occupied", c.ID, c.Vertex)
	}
	m.cities[c.ID] = c
	m.cityAt[c.Vertex] = c.ID
	m.RegisterCivilization(c.Owner)
	if c.ID >= m.nextCityID {
		m.nextCityID = c.ID + 1
	}
	return nil
}

// HasCity reports whether v hosts a city.
func (m *Map) HasCity(v world.Vertex) bool {
	_, ok := m.cityAt[v]
	return ok
}

// City returns the city at v, or nil.
func (m *Map) City(v world.Vertex) *settlement.City {
	id, ok := m.cityAt[v]
	if !ok {
		return nil
	}
	return m.cities[id]
}

// CityByID returns the city with the given id, or nil.
func (m *Map) CityByID(id settlement.CityID) *settlement.City {
	return m.cities[id]
}

// CityOwner returns the owner of the city at v.
func (m *Map) CityOwner(v world.Vertex) (settlement.CivID, bool) {
	c := m.City(v)
	if c == nil {
		return "", false
	}
	return c.Owner, true
}

// Cities returns every city ordered by id.
func (m *Map) Cities() []*settlement.City {
	out := make([]*settlement.City, 0, len(m.cities))
	for _, c := range m.cities {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CitiesByCivilization returns civ's cities ordered by id.
func (m *Map) CitiesByCivilization(civ settlement.CivID) []*settlement.City {
	var out []*settlement.City
	for _, c := range m.Cities() {
		if c.Owner == civ {
			out = append(out, c)
		}
	}
	return out
}

// NextCityID returns the id the next city will receive.
func (m *Map) NextCityID() settlement.CityID {
	return m.nextCityID
}

// CitiesTouching returns the cities on corners of hex c, ordered by id.
func (m *Map) CitiesTouching(c world.HexCoord) []*settlement.City {
	var out []*settlement.City
	for _, v := range m.Grid.VerticesOf(c) {
		if city := m.City(v); city != nil {
			out = append(out, city)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ── Roads ───────────────────────────────────────────────────────────

// AddRoad places a road. Fails if the edge is occupied, off the grid, or
// runs between two water hexes.
func (m *Map) AddRoad(e world.Edge, civ settlement.CivID) error {
	if !m.Grid.HasEdge(e) {
		return errs.Validationf(errs.ErrOffGrid, "edge %s", e)
	}
	if m.HasRoad(e) {
		return errs.Validationf(errs.ErrOccupied, "edge %s", e)
	}
	if !m.Grid.EdgeOnLand(e) {
		return errs.Validationf(errs.ErrNotEligible, "edge %s is open water", e)
	}
	m.roads[e] = civ
	m.RegisterCivilization(civ)
	return nil
}

// HasRoad reports whether e hosts a road.
func (m *Map) HasRoad(e world.Edge) bool {
	_, ok := m.roads[e]
	return ok
}

// RoadOwner returns the owner of the road on e.
func (m *Map) RoadOwner(e world.Edge) (settlement.CivID, bool) {
	civ, ok := m.roads[e]
	return civ, ok
}

// Roads returns every road edge in sorted order.
func (m *Map) Roads() []world.Edge {
	out := make([]world.Edge, 0, len(m.roads))
	for e := range m.roads {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// RoadsOf returns civ's road edges in sorted order.
func (m *Map) RoadsOf(civ settlement.CivID) []world.Edge {
	var out []world.Edge
	for _, e := range m.Roads() {
		if m.roads[e] == civ {
			out = append(out, e)
		}
	}
	return out
}

// ── Discovery ───────────────────────────────────────────────────────

// Discover applies the discovery policy and returns newly visible hexes.
// Visibility is sticky: discovered hexes never return to fog.
func (m *Map) Discover() []world.HexCoord {
	var fresh []world.HexCoord
	for _, c := range m.discovery.Reveal(m) {
		if m.Grid.Has(c) && !m.visible[c] {
			m.visible[c] = true
			fresh = append(fresh, c)
		}
	}
	sort.Slice(fresh, func(i, j int) bool { return fresh[i].Less(fresh[j]) })
	return fresh
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map(hexes=%d, visible=%d, cities=%d, roads=%d)",
		m.Grid.HexCount(), len(m.visible), len(m.cities), len(m.roads))
}
