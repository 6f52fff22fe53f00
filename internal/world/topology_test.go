package world

import "testing"

func TestNewVertexIsOrderIndependent(t *testing.T) {
	a, b, c := HexCoord{0, 0}, HexCoord{1, 0}, HexCoord{1, -1}
	want := NewVertex(a, b, c)
	perms := [][3]HexCoord{{a, c, b}, {b, a, c}, {b, c, a}, {c, a, b}, {c, b, a}}
	for _, p := range perms {
		if got := NewVertex(p[0], p[1], p[2]); got != want {
			t.Fatalf("NewVertex(%v) = %v, want %v", p, got, want)
		}
	}
	if NewEdge(b, a) != NewEdge(a, b) {
		t.Fatalf("NewEdge not order independent")
	}
}

func TestVerticesOfHexAreDistinctCorners(t *testing.T) {
	h := HexCoord{2, -1}
	seen := make(map[Vertex]bool)
	for _, v := range VerticesOfHex(h) {
		if !ValidVertex(v) {
			t.Fatalf("%v is not a valid corner", v)
		}
		if !v.Touches(h) {
			t.Fatalf("%v does not touch %v", v, h)
		}
		seen[v] = true
	}
	if len(seen) != 6 {
		t.Fatalf("got %d distinct corners, want 6", len(seen))
	}
}

func TestCornersAreSharedBetweenNeighbors(t *testing.T) {
	h := HexCoord{0, 0}
	for dir := 0; dir < 6; dir++ {
		n := h.Neighbor(dir)
		shared := 0
		mine := VerticesOfHex(h)
		for _, v := range VerticesOfHex(n) {
			for _, w := range mine {
				if v == w {
					shared++
				}
			}
		}
		if shared != 2 {
			t.Fatalf("hex %v and neighbor %v share %d corners, want 2", h, n, shared)
		}
	}
}

func TestVerticesOfEdge(t *testing.T) {
	for _, e := range EdgesOfHex(HexCoord{1, 1}) {
		ends := VerticesOfEdge(e)
		if ends[0] == ends[1] {
			t.Fatalf("edge %v has identical ends", e)
		}
		for _, v := range ends {
			if !ValidVertex(v) || !v.Touches(e[0]) || !v.Touches(e[1]) {
				t.Fatalf("edge %v end %v does not contain both hexes", e, v)
			}
		}
	}
}

func TestEdgesOfVertexBoundIt(t *testing.T) {
	v := NewVertex(HexCoord{0, 0}, HexCoord{1, 0}, HexCoord{1, -1})
	for _, e := range EdgesOfVertex(v) {
		ends := VerticesOfEdge(e)
		if ends[0] != v && ends[1] != v {
			t.Fatalf("edge %v of %v does not end at it", e, v)
		}
	}
}

func TestAdjacentVerticesShareTwoHexes(t *testing.T) {
	v := NewVertex(HexCoord{0, 0}, HexCoord{0, 1}, HexCoord{-1, 1})
	adj := AdjacentVertices(v)
	seen := make(map[Vertex]bool)
	for _, w := range adj {
		if w == v {
			t.Fatalf("vertex listed as its own neighbor")
		}
		common := 0
		for _, h := range w {
			if v.Touches(h) {
				common++
			}
		}
		if common != 2 {
			t.Fatalf("adjacent %v shares %d hexes with %v, want 2", w, common, v)
		}
		seen[w] = true
	}
	if len(seen) != 3 {
		t.Fatalf("got %d distinct neighbors, want 3", len(seen))
	}
}

func TestDistance(t *testing.T) {
	cases := []struct {
		a, b HexCoord
		want int
	}{
		{HexCoord{0, 0}, HexCoord{0, 0}, 0},
		{HexCoord{0, 0}, HexCoord{1, -1}, 1},
		{HexCoord{0, 0}, HexCoord{2, -1}, 2},
		{HexCoord{-2, 0}, HexCoord{2, 0}, 4},
	}
	for _, c := range cases {
		if got := Distance(c.a, c.b); got != c.want {
			t.Errorf("Distance(%v, %v) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}
