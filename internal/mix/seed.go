// Package mix implements the ranking and selection engine behind the
// generated playlists: a multi-signal weighted scorer, an artist-diversity
// selector, and the per-day deterministic seeding that keeps a mix stable
// within one calendar day while shuffling it the next.
package mix

import (
	"math/rand/v2"
	"time"
)

// YourMixSeedOffset separates the sectioned mix's random stream from the
// daily mix's while both stay derived from the same calendar day.
const YourMixSeedOffset = 17

// DaySeed derives a seed from the calendar day of t. Repeated calls within
// one day yield the same seed; the seed changes at local midnight.
func DaySeed(t time.Time) int64 {
	return int64(t.Year()*1000 + t.YearDay())
}

// NewRand returns a fresh generator for the given seed. Callers create one
// per ranking pass; the generator is never shared or global, which is what
// makes mix generation reproducible.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
}
