package mix

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaySeed_StableWithinDay(t *testing.T) {
	morning := time.Date(2025, 6, 15, 0, 0, 1, 0, time.UTC)
	evening := time.Date(2025, 6, 15, 23, 59, 59, 0, time.UTC)

	assert.Equal(t, DaySeed(morning), DaySeed(evening))
}

func TestDaySeed_ChangesAcrossDays(t *testing.T) {
	today := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)

	assert.NotEqual(t, DaySeed(today), DaySeed(tomorrow))
}

func TestDaySeed_ChangesAcrossYears(t *testing.T) {
	// Same day-of-year, different year.
	a := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.NotEqual(t, DaySeed(a), DaySeed(b))
}

func TestNewRand_Deterministic(t *testing.T) {
	a := NewRand(12345)
	b := NewRand(12345)

	for range 10 {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestNewRand_SeedOffsetDiverges(t *testing.T) {
	seed := DaySeed(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))
	a := NewRand(seed)
	b := NewRand(seed + YourMixSeedOffset)

	assert.NotEqual(t, a.Float64(), b.Float64())
}
