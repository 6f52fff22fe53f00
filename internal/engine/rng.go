package engine

import "math/rand"

// MaxRNGDraws bounds the saved stream position. When a source reaches it,
// the source reseeds itself from its own last value and starts counting
// again, so a restore never replays more than this many draws.
const MaxRNGDraws uint64 = 1 << 24

// countingSource wraps a seeded source and counts draws, so a restored
// simulation can fast-forward to the exact same random stream.
type countingSource struct {
	seed  int64
	src   rand.Source
	draws uint64
}

func newCountingSource(seed int64) *countingSource {
	return &countingSource{seed: seed, src: rand.NewSource(seed)}
}

func (c *countingSource) Int63() int64 {
	v := c.src.Int63()
	c.draws++
	if c.draws >= MaxRNGDraws {
		c.Seed(v)
	}
	return v
}

func (c *countingSource) Seed(seed int64) {
	c.seed = seed
	c.draws = 0
	c.src.Seed(seed)
}

// skip advances the stream by n draws.
func (c *countingSource) skip(n uint64) {
	for c.draws < n {
		c.Int63()
	}
}
