package sim

import (
	"hash/fnv"
	"math/rand"
)

// Named random streams derived from a cohort seed.
const (
	// StreamMortality drives the per-step death draws. Its seed is the
	// cohort seed itself.
	StreamMortality = "mortality"

	// StreamBootstrap drives resampling of a cohort's survival times.
	StreamBootstrap = "bootstrap"
)

// streamSeed derives the seed of a named stream from a cohort seed.
// StreamMortality uses the cohort seed unchanged; every other stream XORs
// in the FNV-1a hash of its name, so streams sharing a seed never overlap.
func streamSeed(seed int64, stream string) int64 {
	if stream == StreamMortality {
		return seed
	}
	h := fnv.New64a()
	h.Write([]byte(stream))
	return seed ^ int64(h.Sum64())
}

// newStream returns a fresh generator for the named stream of seed.
// Callers own the generator; nothing is shared between calls.
func newStream(seed int64, stream string) *rand.Rand {
	return rand.New(rand.NewSource(streamSeed(seed, stream)))
}
