// Placement rules: contiguous road networks and minimum city spacing.
package island

import (
	"sort"

	"github.com/talgya/hexisle/internal/errs"
	"github.com/talgya/hexisle/internal/settlement"
	"github.com/talgya/hexisle/internal/world"
)

// MinCitySpacing is the minimum graph distance (in edges) between any two cities.
const MinCitySpacing = 2

// CanBuildRoad checks whether civ may place a road on e: the edge is on the
// grid, touches land, is free, and shares a corner with civ's city or road.
func (m *Map) CanBuildRoad(e world.Edge, civ settlement.CivID) error {
	if !m.Grid.HasEdge(e) {
		return errs.Validationf(errs.ErrOffGrid, "edge %s", e)
	}
	if m.HasRoad(e) {
		return errs.Validationf(errs.ErrOccupied, "edge %s", e)
	}
	if !m.Grid.EdgeOnLand(e) {
		return errs.Validationf(errs.ErrNotEligible, "edge %s is open water", e)
	}
	if !m.edgeConnected(e, civ) {
		return errs.Validationf(errs.ErrNotConnected, "edge %s", e)
	}
	return nil
}

// edgeConnected reports whether e shares a corner with civ's city or road.
func (m *Map) edgeConnected(e world.Edge, civ settlement.CivID) bool {
	for _, v := range m.Grid.EdgeVertices(e) {
		if owner, ok := m.CityOwner(v); ok && owner == civ {
			return true
		}
		for _, other := range m.Grid.VertexEdges(v) {
			if other == e {
				continue
			}
			if owner, ok := m.roads[other]; ok && owner == civ {
				return true
			}
		}
	}
	return false
}

// BuildableRoads returns every edge civ may build a road on, in sorted order.
// Only edges touching civ's network are considered, so the search is local.
func (m *Map) BuildableRoads(civ settlement.CivID) []world.Edge {
	candidates := make(map[world.Edge]bool)
	frontier := make(map[world.Vertex]bool)
	for _, c := range m.CitiesByCivilization(civ) {
		frontier[c.Vertex] = true
	}
	for _, e := range m.RoadsOf(civ) {
		for _, v := range m.Grid.EdgeVertices(e) {
			frontier[v] = true
		}
	}
	for v := range frontier {
		for _, e := range m.Grid.VertexEdges(v) {
			candidates[e] = true
		}
	}

	out := make([]world.Edge, 0, len(candidates))
	for e := range candidates {
		if m.CanBuildRoad(e, civ) == nil {
			out = append(out, e)
		}
	}
	sortEdges(out)
	return out
}

// CanBuildOutpost checks whether civ may found a new city at v: the corner is
// free and on land, touches one of civ's roads, and no city of any
// civilization sits within MinCitySpacing-1 edges.
func (m *Map) CanBuildOutpost(v world.Vertex, civ settlement.CivID) error {
	if !m.Grid.HasVertex(v) {
		return errs.Validationf(errs.ErrOffGrid, "corner %s", v)
	}
	if m.HasCity(v) {
		return errs.Validationf(errs.ErrOccupied, "corner %s", v)
	}
	if !m.Grid.VertexOnLand(v) {
		return errs.Validationf(errs.ErrNotEligible, "corner %s is open water", v)
	}
	if !m.touchesOwnRoad(v, civ) {
		return errs.Validationf(errs.ErrNotConnected, "corner %s", v)
	}
	if !m.spacingOK(v) {
		return errs.Validationf(errs.ErrSpacing, "corner %s", v)
	}
	return nil
}

func (m *Map) touchesOwnRoad(v world.Vertex, civ settlement.CivID) bool {
	for _, e := range m.Grid.VertexEdges(v) {
		if owner, ok := m.roads[e]; ok && owner == civ {
			return true
		}
	}
	return false
}

// spacingOK searches outward from v, stopping once a city is found inside
// the spacing radius or the radius is exhausted.
func (m *Map) spacingOK(v world.Vertex) bool {
	return m.nearestCityWithin(v, MinCitySpacing-1) < 0
}

// nearestCityWithin returns the graph distance from v to the closest city
// within limit edges, or -1 if there is none.
func (m *Map) nearestCityWithin(v world.Vertex, limit int) int {
	seen := map[world.Vertex]bool{v: true}
	layer := []world.Vertex{v}
	for d := 0; d <= limit; d++ {
		var next []world.Vertex
		for _, u := range layer {
			if m.HasCity(u) {
				return d
			}
			if d == limit {
				continue
			}
			for _, w := range m.Grid.AdjacentVertices(u) {
				if !seen[w] {
					seen[w] = true
					next = append(next, w)
				}
			}
		}
		layer = next
	}
	return -1
}

// BuildableOutposts returns every corner civ may found a city on, in sorted
// order. Candidates are the ends of civ's roads.
func (m *Map) BuildableOutposts(civ settlement.CivID) []world.Vertex {
	candidates := make(map[world.Vertex]bool)
	for _, e := range m.RoadsOf(civ) {
		for _, v := range m.Grid.EdgeVertices(e) {
			candidates[v] = true
		}
	}
	out := make([]world.Vertex, 0, len(candidates))
	for v := range candidates {
		if m.CanBuildOutpost(v, civ) == nil {
			out = append(out, v)
		}
	}
	sortVertices(out)
	return out
}

// GraphDistance returns the shortest edge-path length between two corners,
// ignoring ownership, or -1 if it exceeds limit (limit < 0 means unbounded).
func (m *Map) GraphDistance(a, b world.Vertex, limit int) int {
	if a == b {
		return 0
	}
	seen := map[world.Vertex]bool{a: true}
	layer := []world.Vertex{a}
	for d := 1; len(layer) > 0 && (limit < 0 || d <= limit); d++ {
		var next []world.Vertex
		for _, u := range layer {
			for _, w := range m.Grid.AdjacentVertices(u) {
				if w == b {
					return d
				}
				if !seen[w] {
					seen[w] = true
					next = append(next, w)
				}
			}
		}
		layer = next
	}
	return -1
}

// CheckSpacing verifies that every pair of cities is at least
// MinCitySpacing edges apart. Used to validate restored saves.
func (m *Map) CheckSpacing() error {
	for _, c := range m.Cities() {
		for _, w := range m.Grid.AdjacentVertices(c.Vertex) {
			if other := m.City(w); other != nil {
				return errs.Validationf(errs.ErrSpacing, "cities %d and %d are adjacent", c.ID, other.ID)
			}
		}
	}
	return nil
}

func sortEdges(es []world.Edge) {
	sort.Slice(es, func(i, j int) bool { return es[i].Less(es[j]) })
}

func sortVertices(vs []world.Vertex) {
	sort.Slice(vs, func(i, j int) bool { return vs[i].Less(vs[j]) })
}
