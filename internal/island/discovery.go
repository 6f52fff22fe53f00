package island

import (
	"github.com/talgya/hexisle/internal/settlement"
	"github.com/talgya/hexisle/internal/world"
)

// Discovery decides which hexes the current settlement network reveals.
type Discovery interface {
	Reveal(m *Map) []world.HexCoord
}

// RadiusDiscovery reveals every hex within Radius of a hex that touches a
// city or road owned by Owner. Radius 0 reveals only the touching hexes.
// An empty Owner makes the policy map-wide.
type RadiusDiscovery struct {
	Radius int
	Owner  settlement.CivID
}

// Reveal implements Discovery.
func (d RadiusDiscovery) Reveal(m *Map) []world.HexCoord {
	cities, roads := m.Cities(), m.Roads()
	if d.Owner != "" {
		cities, roads = m.CitiesByCivilization(d.Owner), m.RoadsOf(d.Owner)
	}
	sources := make(map[world.HexCoord]bool)
	for _, c := range cities {
		for _, h := range c.Vertex {
			sources[h] = true
		}
	}
	for _, e := range roads {
		sources[e[0]] = true
		sources[e[1]] = true
	}

	var out []world.HexCoord
	for _, c := range m.Grid.Coords() {
		for s := range sources {
			if world.Distance(c, s) <= d.Radius {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// RevealAll is a discovery policy with no fog (useful for tests and sandbox play).
type RevealAll struct{}

// Reveal implements Discovery.
func (RevealAll) Reveal(m *Map) []world.HexCoord {
	return m.Grid.Coords()
}
