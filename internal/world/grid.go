package world

import (
	"fmt"
	"sort"
)

// Grid holds the finite set of island hexes and their terrain.
// Every Vertex or Edge handed out by a Grid has all of its hexes present.
type Grid struct {
	terrain map[HexCoord]Terrain
	coords  []HexCoord // sorted, rebuilt lazily after Set
	Radius  int
}

// NewGrid creates an empty grid. Radius is informational (land radius used by
// generation); membership is decided solely by Set.
func NewGrid(radius int) *Grid {
	return &Grid{
		terrain: make(map[HexCoord]Terrain),
		Radius:  radius,
	}
}

// Set places or retypes a hex.
func (g *Grid) Set(c HexCoord, t Terrain) {
	if _, ok := g.terrain[c]; !ok {
		g.coords = nil
	}
	g.terrain[c] = t
}

// Has reports whether the hex exists.
func (g *Grid) Has(c HexCoord) bool {
	_, ok := g.terrain[c]
	return ok
}

// Terrain returns the terrain of a hex and whether the hex exists.
func (g *Grid) Terrain(c HexCoord) (Terrain, bool) {
	t, ok := g.terrain[c]
	return t, ok
}

// HexCount returns the total number of hexes in the grid.
func (g *Grid) HexCount() int {
	return len(g.terrain)
}

// Coords returns every hex coordinate in sorted order.
// The slice is shared; callers must not modify it.
func (g *Grid) Coords() []HexCoord {
	if g.coords == nil {
		g.coords = make([]HexCoord, 0, len(g.terrain))
		for c := range g.terrain {
			g.coords = append(g.coords, c)
		}
		sort.Slice(g.coords, func(i, j int) bool { return g.coords[i].Less(g.coords[j]) })
	}
	return g.coords
}

// HasVertex reports whether v is a real corner with all three hexes on the grid.
func (g *Grid) HasVertex(v Vertex) bool {
	return ValidVertex(v) && g.Has(v[0]) && g.Has(v[1]) && g.Has(v[2])
}

// HasEdge reports whether e is a real border with both hexes on the grid.
func (g *Grid) HasEdge(e Edge) bool {
	return ValidEdge(e) && g.Has(e[0]) && g.Has(e[1])
}

// Neighbors returns the on-grid neighbors of c.
func (g *Grid) Neighbors(c HexCoord) []HexCoord {
	out := make([]HexCoord, 0, 6)
	for _, n := range c.Neighbors() {
		if g.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

// VerticesOf returns the on-grid corners of hex c.
func (g *Grid) VerticesOf(c HexCoord) []Vertex {
	out := make([]Vertex, 0, 6)
	for _, v := range VerticesOfHex(c) {
		if g.HasVertex(v) {
			out = append(out, v)
		}
	}
	return out
}

// EdgesOf returns the on-grid borders of hex c.
func (g *Grid) EdgesOf(c HexCoord) []Edge {
	out := make([]Edge, 0, 6)
	for _, e := range EdgesOfHex(c) {
		if g.HasEdge(e) {
			out = append(out, e)
		}
	}
	return out
}

// VertexEdges returns the on-grid borders meeting at v.
func (g *Grid) VertexEdges(v Vertex) []Edge {
	out := make([]Edge, 0, 3)
	for _, e := range EdgesOfVertex(v) {
		if g.HasEdge(e) {
			out = append(out, e)
		}
	}
	return out
}

// EdgeVertices returns the on-grid corners bounding e.
func (g *Grid) EdgeVertices(e Edge) []Vertex {
	out := make([]Vertex, 0, 2)
	for _, v := range VerticesOfEdge(e) {
		if g.HasVertex(v) {
			out = append(out, v)
		}
	}
	return out
}

// AdjacentVertices returns the on-grid corners one edge away from v.
func (g *Grid) AdjacentVertices(v Vertex) []Vertex {
	out := make([]Vertex, 0, 3)
	for _, e := range g.VertexEdges(v) {
		for _, w := range g.EdgeVertices(e) {
			if w != v {
				out = append(out, w)
			}
		}
	}
	return out
}

// Vertices returns every on-grid corner in sorted order.
func (g *Grid) Vertices() []Vertex {
	seen := make(map[Vertex]bool)
	var out []Vertex
	for _, c := range g.Coords() {
		for _, v := range g.VerticesOf(c) {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Edges returns every on-grid border in sorted order.
func (g *Grid) Edges() []Edge {
	seen := make(map[Edge]bool)
	var out []Edge
	for _, c := range g.Coords() {
		for _, e := range g.EdgesOf(c) {
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// VertexOnLand reports whether at least one hex of v is not boundary water.
func (g *Grid) VertexOnLand(v Vertex) bool {
	for _, h := range v {
		if t, ok := g.Terrain(h); ok && !t.IsBoundary() {
			return true
		}
	}
	return false
}

// EdgeOnLand reports whether at least one hex of e is not boundary water.
func (g *Grid) EdgeOnLand(e Edge) bool {
	for _, h := range e {
		if t, ok := g.Terrain(h); ok && !t.IsBoundary() {
			return true
		}
	}
	return false
}

// VertexOnCoast reports whether v touches both land and water.
func (g *Grid) VertexOnCoast(v Vertex) bool {
	water := false
	for _, h := range v {
		if t, ok := g.Terrain(h); ok && t.IsBoundary() {
			water = true
		}
	}
	return water && g.VertexOnLand(v)
}

// String returns a summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(radius=%d, hexes=%d)", g.Radius, g.HexCount())
}

// TerrainCounts returns a summary of terrain type distribution.
func TerrainCounts(g *Grid) map[Terrain]int {
	counts := make(map[Terrain]int)
	for _, t := range g.terrain {
		counts[t]++
	}
	return counts
}
