// Vertex and edge identity, derived purely from hex coordinates.
package world

import "fmt"

// Vertex is a corner shared by three mutually adjacent hexes.
// The triple is always stored sorted, so two vertices are equal iff they
// name the same corner. Build with NewVertex.
type Vertex [3]HexCoord

// Edge is the border between two adjacent hexes, stored sorted. Build with NewEdge.
type Edge [2]HexCoord

// NewVertex canonicalizes three hexes into a Vertex. The caller is
// responsible for passing mutually adjacent hexes (see ValidVertex).
func NewVertex(a, b, c HexCoord) Vertex {
	if b.Less(a) {
		a, b = b, a
	}
	if c.Less(b) {
		b, c = c, b
	}
	if b.Less(a) {
		a, b = b, a
	}
	return Vertex{a, b, c}
}

// NewEdge canonicalizes two hexes into an Edge.
func NewEdge(a, b HexCoord) Edge {
	if b.Less(a) {
		a, b = b, a
	}
	return Edge{a, b}
}

// ValidVertex reports whether the three hexes of v are distinct and pairwise adjacent.
func ValidVertex(v Vertex) bool {
	return IsAdjacent(v[0], v[1]) && IsAdjacent(v[1], v[2]) && IsAdjacent(v[0], v[2])
}

// ValidEdge reports whether the two hexes of e are adjacent.
func ValidEdge(e Edge) bool {
	return IsAdjacent(e[0], e[1])
}

// Hexes returns the three hexes meeting at the vertex.
func (v Vertex) Hexes() [3]HexCoord {
	return [3]HexCoord(v)
}

// Touches reports whether h is one of the vertex's hexes.
func (v Vertex) Touches(h HexCoord) bool {
	return v[0] == h || v[1] == h || v[2] == h
}

func (v Vertex) String() string {
	return fmt.Sprintf("V[%s %s %s]", v[0], v[1], v[2])
}

// Less orders vertices lexicographically by their sorted hexes.
func (v Vertex) Less(o Vertex) bool {
	for i := 0; i < 3; i++ {
		if v[i] != o[i] {
			return v[i].Less(o[i])
		}
	}
	return false
}

// Touches reports whether h is one of the edge's hexes.
func (e Edge) Touches(h HexCoord) bool {
	return e[0] == h || e[1] == h
}

func (e Edge) String() string {
	return fmt.Sprintf("E[%s %s]", e[0], e[1])
}

// Less orders edges lexicographically by their sorted hexes.
func (e Edge) Less(o Edge) bool {
	if e[0] != o[0] {
		return e[0].Less(o[0])
	}
	return e[1].Less(o[1])
}

// VerticesOfHex returns the six corners of a hex.
// Corner i is formed by the hex and its neighbors in directions i and i+1.
func VerticesOfHex(h HexCoord) [6]Vertex {
	var out [6]Vertex
	for i := 0; i < 6; i++ {
		out[i] = NewVertex(h, h.Neighbor(i), h.Neighbor(i+1))
	}
	return out
}

// EdgesOfHex returns the six borders of a hex.
func EdgesOfHex(h HexCoord) [6]Edge {
	var out [6]Edge
	for i := 0; i < 6; i++ {
		out[i] = NewEdge(h, h.Neighbor(i))
	}
	return out
}

// commonNeighbors returns the two hexes adjacent to both a and b.
// a and b must be adjacent.
func commonNeighbors(a, b HexCoord) [2]HexCoord {
	var out [2]HexCoord
	n := 0
	for _, c := range a.Neighbors() {
		if c != b && IsAdjacent(c, b) {
			out[n] = c
			n++
			if n == 2 {
				break
			}
		}
	}
	return out
}

// VerticesOfEdge returns the two corners bounding an edge.
func VerticesOfEdge(e Edge) [2]Vertex {
	c := commonNeighbors(e[0], e[1])
	a := NewVertex(e[0], e[1], c[0])
	b := NewVertex(e[0], e[1], c[1])
	if b.Less(a) {
		a, b = b, a
	}
	return [2]Vertex{a, b}
}

// EdgesOfVertex returns the three borders meeting at a corner.
func EdgesOfVertex(v Vertex) [3]Edge {
	return [3]Edge{
		NewEdge(v[0], v[1]),
		NewEdge(v[0], v[2]),
		NewEdge(v[1], v[2]),
	}
}

// AdjacentVertices returns the three corners one edge away from v.
func AdjacentVertices(v Vertex) [3]Vertex {
	var out [3]Vertex
	for i, e := range EdgesOfVertex(v) {
		ends := VerticesOfEdge(e)
		if ends[0] == v {
			out[i] = ends[1]
		} else {
			out[i] = ends[0]
		}
	}
	return out
}
