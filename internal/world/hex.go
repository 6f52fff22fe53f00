// Package world provides the hex grid, terrain, and topology for the island.
// Uses axial coordinates (q, r) for the hex grid. Corners (vertices) and
// borders (edges) are identified by the sorted tuple of hexes that meet there.
package world

import "fmt"

// HexCoord represents a position on the hex grid using axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

func (h HexCoord) String() string {
	return fmt.Sprintf("(%d,%d)", h.Q, h.R)
}

// Less orders coordinates by Q, then R. Used to canonicalize vertices and edges.
func (h HexCoord) Less(o HexCoord) bool {
	if h.Q != o.Q {
		return h.Q < o.Q
	}
	return h.R < o.R
}

// HexNeighborDirections defines the six neighbor offsets in axial coordinates.
// Consecutive directions are themselves neighbors, so directions i and i+1
// together with the origin hex form a corner.
var HexNeighborDirections = [6]HexCoord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbor returns the adjacent coordinate in the given direction (0–5, wraps).
func (h HexCoord) Neighbor(dir int) HexCoord {
	d := HexNeighborDirections[((dir%6)+6)%6]
	return HexCoord{Q: h.Q + d.Q, R: h.R + d.R}
}

// Neighbors returns the six adjacent hex coordinates.
func (h HexCoord) Neighbors() [6]HexCoord {
	var result [6]HexCoord
	for i := range HexNeighborDirections {
		result[i] = h.Neighbor(i)
	}
	return result
}

// IsAdjacent reports whether two coordinates share a border.
func IsAdjacent(a, b HexCoord) bool {
	return Distance(a, b) == 1
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b HexCoord) int {
	dq := abs(a.Q - b.Q)
	dr := abs(a.R - b.R)
	ds := abs(a.S() - b.S())
	// Max of the three absolute differences in cube coordinates.
	max := dq
	if dr > max {
		max = dr
	}
	if ds > max {
		max = ds
	}
	return max
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
