package engine

import (
	"testing"

	"github.com/talgya/hexisle/internal/config"
	"github.com/talgya/hexisle/internal/island"
	"github.com/talgya/hexisle/internal/settlement"
	"github.com/talgya/hexisle/internal/world"
)

const player settlement.CivID = "player"

// home is the corner shared by the forest, clay and field hexes of testGrid.
var home = world.NewVertex(world.HexCoord{Q: 0, R: 0}, world.HexCoord{Q: 1, R: 0}, world.HexCoord{Q: 1, R: -1})

// coastal is a land corner touching the water ring of testGrid.
var coastal = world.NewVertex(world.HexCoord{Q: 2, R: 0}, world.HexCoord{Q: 3, R: 0}, world.HexCoord{Q: 3, R: -1})

// testGrid is a radius 2 pasture island ringed by water, with forest, clay
// and field around the origin corner.
func testGrid() *world.Grid {
	g := world.NewGrid(2)
	for q := -3; q <= 3; q++ {
		for r := -3; r <= 3; r++ {
			c := world.HexCoord{Q: q, R: r}
			switch d := world.Distance(c, world.HexCoord{}); {
			case d <= 2:
				g.Set(c, world.TerrainPasture)
			case d == 3:
				g.Set(c, world.TerrainWater)
			}
		}
	}
	g.Set(world.HexCoord{Q: 0, R: 0}, world.TerrainForest)
	g.Set(world.HexCoord{Q: 1, R: 0}, world.TerrainClay)
	g.Set(world.HexCoord{Q: 1, R: -1}, world.TerrainField)
	return g
}

// newTestSim returns a simulation on testGrid with the player's outpost at
// home and no fog. mutate may adjust the tuning first.
func newTestSim(t *testing.T, mutate func(*config.Tuning)) (*Simulation, *settlement.City) {
	t.Helper()
	tun := config.Default()
	if mutate != nil {
		mutate(&tun)
	}
	rules, err := tun.Compile()
	if err != nil {
		t.Fatalf("compile tuning: %v", err)
	}
	sim := NewSimulation(rules, player, 7)
	sim.Map = island.New(testGrid(), island.RevealAll{})
	c, err := sim.Map.AddCity(home, player, settlement.LevelOutpost, "Home")
	if err != nil {
		t.Fatalf("AddCity: %v", err)
	}
	sim.Map.Discover()
	return sim, c
}

// fund gives the player n of every resource, ignoring capacity.
func fund(t *testing.T, s *Simulation, n int) {
	t.Helper()
	for _, r := range world.AllResources {
		if err := s.Ledger.Add(r, n); err != nil {
			t.Fatal(err)
		}
	}
}

// addBuilding places a building directly, bypassing costs.
func addBuilding(t *testing.T, s *Simulation, c *settlement.City, bt settlement.BuildingType) *settlement.Building {
	t.Helper()
	b, err := c.AddBuilding(bt, s.Rules.Limits)
	if err != nil {
		t.Fatalf("AddBuilding %s: %v", bt, err)
	}
	return b
}

// spacedCorners returns up to n land corners at least two edges from every
// existing city and from each other.
func spacedCorners(m *island.Map, n int) []world.Vertex {
	var out []world.Vertex
	taken := make([]world.Vertex, 0, n)
	for _, c := range m.Cities() {
		taken = append(taken, c.Vertex)
	}
	for _, v := range m.Grid.Vertices() {
		if len(out) == n {
			break
		}
		if !m.Grid.VertexOnLand(v) {
			continue
		}
		ok := true
		for _, u := range taken {
			if d := m.GraphDistance(u, v, 1); d >= 0 {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, v)
			taken = append(taken, v)
		}
	}
	return out
}
