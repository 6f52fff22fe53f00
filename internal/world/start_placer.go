// Start placement: finds the opening corner for a fresh island.
package world

import (
	"math/rand"
	"sort"
)

// StartSite holds the opening city corner and its first road.
type StartSite struct {
	Vertex Vertex
	Road   Edge
	Score  float64 // Desirability score
}

// ChooseStart scores every land corner and returns the best opening site.
// Ties are broken by a seeded shuffle so different islands open differently.
// Returns false if the grid has no usable corner.
func ChooseStart(g *Grid, seed int64) (StartSite, bool) {
	rng := rand.New(rand.NewSource(seed + 200))

	type scored struct {
		v     Vertex
		score float64
	}
	var candidates []scored
	for _, v := range g.Vertices() {
		s := startScore(g, v)
		if s > 0 {
			candidates = append(candidates, scored{v, s})
		}
	}
	if len(candidates) == 0 {
		return StartSite{}, false
	}

	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	best := candidates[0]
	site := StartSite{Vertex: best.v, Score: best.score}

	// First road: the land edge whose far corner has the richest surroundings.
	bestRoad := -1.0
	for _, e := range g.VertexEdges(best.v) {
		if !g.EdgeOnLand(e) {
			continue
		}
		far := 0.0
		for _, w := range g.EdgeVertices(e) {
			if w != best.v {
				far = startScore(g, w)
			}
		}
		if far > bestRoad {
			bestRoad = far
			site.Road = e
		}
	}
	if bestRoad < 0 {
		return StartSite{}, false
	}
	return site, true
}

// startScore evaluates how desirable a corner is for the opening city.
// Prefers resource diversity; boundary-only corners score zero.
func startScore(g *Grid, v Vertex) float64 {
	if !g.VertexOnLand(v) {
		return 0
	}
	score := 0.0
	kinds := make(map[Resource]bool)
	for _, h := range v {
		t, _ := g.Terrain(h)
		if r, ok := t.Resource(); ok {
			score += 1.0
			kinds[r] = true
		}
	}
	score += float64(len(kinds)) * 1.5

	// Small bonus for sea access (ports).
	if g.VertexOnCoast(v) {
		score += 0.5
	}
	return score
}

// CityName produces a procedural city name by combining syllables,
// avoiding any name already in used.
func CityName(rng *rand.Rand, used map[string]bool) string {
	prefixes := []string{
		"Iron", "Green", "Ash", "Stone", "Mill", "Cross", "Black",
		"Silver", "Red", "White", "Bright", "High", "Low",
		"Old", "New", "Far", "Deep", "Long", "Broad", "Gold",
		"Storm", "Thorn", "Elm", "Oak", "Pine", "Copper", "Salt",
	}
	suffixes := []string{
		"haven", "ford", "hollow", "wick", "bridge", "gate", "keep",
		"stead", "wood", "field", "dale", "crest", "vale", "port",
		"town", "bury", "well", "brook", "cliff", "moor",
		"ridge", "watch", "rest", "point", "reach", "helm",
	}

	for i := 0; i < 64; i++ {
		name := prefixes[rng.Intn(len(prefixes))] + suffixes[rng.Intn(len(suffixes))]
		if !used[name] {
			return name
		}
	}
	// Name space exhausted in practice only on huge islands.
	return prefixes[rng.Intn(len(prefixes))] + suffixes[rng.Intn(len(suffixes))] + "2"
}
