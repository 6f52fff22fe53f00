// Island generation using layered simplex noise.
// Generates elevation and moisture fields, derives terrain per land hex, and
// rings the island with boundary water.
package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds island generation parameters.
type GenConfig struct {
	Radius      int     // Land radius; water ring sits at Radius+1
	Seed        int64   // Random seed (0 = random)
	DesertShare float64 // Fraction of land hexes turned barren (0.0–1.0)
	MountainLvl float64 // Elevation threshold for mountains (0.0–1.0)
	ClayLvl     float64 // Elevation threshold for clay pits (0.0–1.0)
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Radius:      3,
		Seed:        0,
		DesertShare: 0.06,
		MountainLvl: 0.68,
		ClayLvl:     0.56,
	}
}

// SmallTestConfig returns a tiny deterministic island for rapid iteration.
func SmallTestConfig() GenConfig {
	cfg := DefaultGenConfig()
	cfg.Radius = 2
	cfg.Seed = 42
	return cfg
}

// Generate creates a complete island grid and returns it with the seed used.
func Generate(cfg GenConfig) (*Grid, int64) {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	// Independent noise layers.
	elevNoise := opensimplex.NewNormalized(seed)
	moistNoise := opensimplex.NewNormalized(seed + 1)
	rng := rand.New(rand.NewSource(seed + 100))

	g := NewGrid(cfg.Radius)

	var land []HexCoord
	for q := -cfg.Radius - 1; q <= cfg.Radius+1; q++ {
		for r := -cfg.Radius - 1; r <= cfg.Radius+1; r++ {
			coord := HexCoord{Q: q, R: r}
			d := Distance(coord, HexCoord{})
			if d > cfg.Radius+1 {
				continue
			}
			if d == cfg.Radius+1 {
				g.Set(coord, TerrainWater)
				continue
			}

			// Hex axial → cartesian: x = q + r*0.5, y = r * sqrt(3)/2
			x := float64(q) + float64(r)*0.5
			y := float64(r) * math.Sqrt(3.0) / 2.0

			elev := octaveNoise(elevNoise, x, y, 3, 0.35, 0.5)
			moist := octaveNoise(moistNoise, x, y, 2, 0.3, 0.5)

			g.Set(coord, deriveTerrain(elev, moist, cfg))
			land = append(land, coord)
		}
	}

	// land is already in sorted (q, r) order, which keeps generation deterministic.
	sprinkleDesert(g, land, cfg.DesertShare, rng)
	ensureEveryResource(g, land, rng)

	return g, seed
}

// deriveTerrain determines terrain type from the noise fields.
func deriveTerrain(elev, moist float64, cfg GenConfig) Terrain {
	if elev > cfg.MountainLvl {
		return TerrainMountain
	}
	if elev > cfg.ClayLvl {
		return TerrainClay
	}
	if moist > 0.58 {
		return TerrainForest
	}
	if moist > 0.42 {
		return TerrainPasture
	}
	return TerrainField
}

// sprinkleDesert turns a share of land hexes barren.
func sprinkleDesert(g *Grid, land []HexCoord, share float64, rng *rand.Rand) {
	n := int(math.Round(float64(len(land)) * share))
	if n <= 0 {
		return
	}
	perm := rng.Perm(len(land))
	for i := 0; i < n && i < len(perm); i++ {
		g.Set(land[perm[i]], TerrainDesert)
	}
}

// ensureEveryResource converts hexes of the most common harvestable terrain
// until every resource terrain appears at least once.
func ensureEveryResource(g *Grid, land []HexCoord, rng *rand.Rand) {
	if len(land) < NumResources {
		return
	}
	for _, res := range AllResources {
		want := TerrainFor(res)
		counts := TerrainCounts(g)
		if counts[want] > 0 {
			continue
		}

		// Pick the most common harvestable terrain as the donor.
		donor := TerrainForest
		for _, t := range AllTerrains {
			if t.Harvestable() && counts[t] > counts[donor] {
				donor = t
			}
		}
		var pool []HexCoord
		for _, c := range land {
			if t, _ := g.Terrain(c); t == donor {
				pool = append(pool, c)
			}
		}
		if len(pool) == 0 {
			continue
		}
		g.Set(pool[rng.Intn(len(pool))], want)
	}
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
