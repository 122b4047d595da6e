package mix

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunemixapp/tunemix-engine/internal/domain"
)

var rankNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func daysAgoMs(days int) int64 {
	return rankNow.AddDate(0, 0, -days).UnixMilli()
}

func rankOrder(ranked []RankedSong) []string {
	ids := make([]string, 0, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.Song.ID)
	}
	return ids
}

func TestRank_EmptyCatalog(t *testing.T) {
	assert.Nil(t, Rank(nil, nil, nil, rankNow, NewRand(1)))
}

func TestRank_Deterministic(t *testing.T) {
	songs := []domain.Song{
		{ID: "s1", ArtistID: 1, Genre: "rock"},
		{ID: "s2", ArtistID: 2, Genre: "jazz"},
		{ID: "s3", ArtistID: 3, Genre: "rock"},
		{ID: "s4", ArtistID: 1, Genre: "pop"},
	}
	engagements := map[string]domain.SongEngagementStats{
		"s1": {PlayCount: 10, TotalPlayDurationMs: 600000, LastPlayedTimestamp: daysAgoMs(5)},
		"s2": {PlayCount: 2, TotalPlayDurationMs: 120000, LastPlayedTimestamp: daysAgoMs(20)},
	}

	a := Rank(songs, engagements, nil, rankNow, NewRand(99))
	b := Rank(songs, engagements, nil, rankNow, NewRand(99))

	assert.Equal(t, rankOrder(a), rankOrder(b))
	for i := range a {
		assert.Equal(t, a[i].FinalScore, b[i].FinalScore)
	}
}

func TestRank_HeavyEngagementOutranksUnplayed(t *testing.T) {
	songs := []domain.Song{
		{ID: "played", ArtistID: 1, Genre: "rock"},
		{ID: "unplayed", ArtistID: 2, Genre: "jazz"},
	}
	engagements := map[string]domain.SongEngagementStats{
		// Rested long enough that recency also favors it.
		"played": {PlayCount: 50, TotalPlayDurationMs: 3000000, LastPlayedTimestamp: daysAgoMs(30)},
	}

	ranked := Rank(songs, engagements, nil, rankNow, NewRand(1))

	require.Len(t, ranked, 2)
	assert.Equal(t, "played", ranked[0].Song.ID)
	assert.Greater(t, ranked[0].AffinityScore, ranked[1].AffinityScore)
}

func TestRank_ArtistAffinitySpillsToSiblingSongs(t *testing.T) {
	songs := []domain.Song{
		{ID: "played", ArtistID: 1, Genre: "rock"},
		{ID: "sibling", ArtistID: 1, Genre: "rock"},
		{ID: "stranger", ArtistID: 2, Genre: "classical"},
	}
	engagements := map[string]domain.SongEngagementStats{
		"played": {PlayCount: 20, TotalPlayDurationMs: 1200000, LastPlayedTimestamp: daysAgoMs(10)},
	}

	ranked := Rank(songs, engagements, nil, rankNow, NewRand(1))

	var sibling, stranger RankedSong
	for _, r := range ranked {
		switch r.Song.ID {
		case "sibling":
			sibling = r
		case "stranger":
			stranger = r
		}
	}
	// Neither has direct plays, but the sibling shares the played artist
	// and genre, so its preference signal must push it higher.
	assert.Greater(t, sibling.FinalScore, stranger.FinalScore)
}

func TestRank_FavoriteBoost(t *testing.T) {
	songs := []domain.Song{
		{ID: "fav", ArtistID: 1},
		{ID: "plain", ArtistID: 2},
	}
	favorites := map[string]struct{}{"fav": {}}

	ranked := Rank(songs, nil, favorites, rankNow, NewRand(1))

	require.Equal(t, "fav", ranked[0].Song.ID)
	assert.Equal(t, 1.0, ranked[0].FavoriteScore)
	assert.Equal(t, 0.0, ranked[1].FavoriteScore)
}

func TestSortByDiscovery_TieBreakBySongID(t *testing.T) {
	// Discovery scores carry no noise, so identical stats tie exactly and
	// the id tie-break decides the order.
	songs := []domain.Song{
		{ID: "c", ArtistID: 1},
		{ID: "a", ArtistID: 2},
		{ID: "b", ArtistID: 3},
	}

	ranked := Rank(songs, nil, nil, rankNow, NewRand(5))
	SortByDiscovery(ranked)

	assert.Equal(t, []string{"a", "b", "c"}, rankOrder(ranked))
}

func TestComputeRecencyScore_Buckets(t *testing.T) {
	tests := []struct {
		name       string
		lastPlayed int64
		want       float64
	}{
		{"never played", 0, 0.6},
		{"negative timestamp", -5, 0.6},
		{"played today", daysAgoMs(0), 0.2},
		{"played 2 days ago", daysAgoMs(2), 0.5},
		{"played 5 days ago", daysAgoMs(5), 0.7},
		{"played 10 days ago", daysAgoMs(10), 0.85},
		{"played 30 days ago", daysAgoMs(30), 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeRecencyScore(tt.lastPlayed, rankNow.UnixMilli())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeRecencyScore_FutureTimestampClamped(t *testing.T) {
	future := rankNow.Add(48 * time.Hour).UnixMilli()
	// A future last-played reads as "just played".
	assert.Equal(t, 0.2, computeRecencyScore(future, rankNow.UnixMilli()))
}

func TestComputeNoveltyScore_Decay(t *testing.T) {
	nowMs := rankNow.UnixMilli()

	assert.Equal(t, 1.0, computeNoveltyScore(nowMs, nowMs))
	assert.InDelta(t, 0.5, computeNoveltyScore(daysAgoMs(30), nowMs), 1e-9)
	assert.Equal(t, 0.0, computeNoveltyScore(daysAgoMs(90), nowMs))
	assert.Equal(t, 0.0, computeNoveltyScore(0, nowMs))
}

func TestComputeNoveltyScore_EpochSecondsDetected(t *testing.T) {
	nowMs := rankNow.UnixMilli()
	addedSeconds := rankNow.AddDate(0, 0, -30).Unix()

	got := computeNoveltyScore(addedSeconds, nowMs)

	assert.InDelta(t, 0.5, got, 1e-9)
}

func TestSortByDiscovery_UnplayedFirst(t *testing.T) {
	songs := []domain.Song{
		{ID: "heavy", ArtistID: 1, DateAdded: daysAgoMs(300)},
		{ID: "fresh", ArtistID: 2, DateAdded: daysAgoMs(3)},
	}
	engagements := map[string]domain.SongEngagementStats{
		"heavy": {PlayCount: 40, TotalPlayDurationMs: 2400000, LastPlayedTimestamp: daysAgoMs(1)},
	}

	ranked := Rank(songs, engagements, nil, rankNow, NewRand(1))
	SortByDiscovery(ranked)

	assert.Equal(t, "fresh", ranked[0].Song.ID)
	assert.Greater(t, ranked[0].DiscoveryScore, ranked[1].DiscoveryScore)
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, clamp01(-0.5))
	assert.Equal(t, 1.0, clamp01(1.5))
	assert.Equal(t, 0.25, clamp01(0.25))
}
