package mix

import (
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/tunemixapp/tunemix-engine/internal/domain"
)

const (
	dayMs = 24 * 60 * 60 * 1000

	// dateAdded values below this are assumed to be epoch seconds.
	epochSecondsCutoff = 10_000_000_000
)

// RankedSong wraps a song with its score breakdown for one ranking pass.
// Ephemeral: recomputed per generation, never persisted.
type RankedSong struct {
	Song domain.Song

	FinalScore     float64
	DiscoveryScore float64
	AffinityScore  float64
	RecencyScore   float64
	NoveltyScore   float64
	FavoriteScore  float64
}

// Rank scores every catalog song against the engagement history and
// favorites, returning the catalog ordered by final score descending with
// ties broken by song id ascending. The pass is a pure reduction over its
// inputs apart from the caller-supplied generator, which contributes a small
// jitter term so near-ties do not freeze into one ordering forever.
func Rank(
	songs []domain.Song,
	engagements map[string]domain.SongEngagementStats,
	favoriteIDs map[string]struct{},
	now time.Time,
	rng *rand.Rand,
) []RankedSong {
	if len(songs) == 0 {
		return nil
	}

	byID := domain.SongsByID(songs)
	nowMs := now.UnixMilli()

	// Taste accumulators: engagement weight summed per artist and per genre,
	// favorite counts per artist.
	artistAffinity := make(map[int64]float64)
	genreAffinity := make(map[string]float64)
	for songID, stats := range engagements {
		song, ok := byID[songID]
		if !ok {
			continue
		}
		weight := stats.EngagementWeight()
		if weight <= 0 {
			continue
		}
		artistAffinity[song.ArtistID] += weight
		if song.Genre != "" {
			genreAffinity[strings.ToLower(song.Genre)] += weight
		}
	}

	favoriteArtistWeights := make(map[int64]int)
	for id := range favoriteIDs {
		if song, ok := byID[id]; ok {
			favoriteArtistWeights[song.ArtistID]++
		}
	}

	maxPlayCount := 1.0
	maxDuration := 1.0
	for _, stats := range engagements {
		maxPlayCount = max(maxPlayCount, float64(stats.PlayCount))
		maxDuration = max(maxDuration, float64(stats.TotalPlayDurationMs))
	}
	maxArtistAffinity := maxValue(artistAffinity)
	maxGenreAffinity := maxValue(genreAffinity)
	maxFavoriteArtist := 1.0
	for _, n := range favoriteArtistWeights {
		maxFavoriteArtist = max(maxFavoriteArtist, float64(n))
	}

	ranked := make([]RankedSong, 0, len(songs))
	for _, song := range songs {
		stats, engaged := engagements[song.ID]

		playCountScore := float64(stats.PlayCount) / maxPlayCount
		durationScore := float64(stats.TotalPlayDurationMs) / maxDuration
		affinityScore := clamp01(playCountScore*0.7 + durationScore*0.3)

		// The strongest taste signal wins outright; summing would dilute one
		// strong match with weak ones.
		artistPreference := artistAffinity[song.ArtistID] / maxArtistAffinity
		genrePreference := 0.0
		if song.Genre != "" {
			genrePreference = genreAffinity[strings.ToLower(song.Genre)] / maxGenreAffinity
		}
		favoriteArtistPreference := float64(favoriteArtistWeights[song.ArtistID]) / maxFavoriteArtist
		preferenceScore := max(artistPreference, genrePreference, favoriteArtistPreference)

		var lastPlayed int64
		if engaged {
			lastPlayed = stats.LastPlayedTimestamp
		}
		recencyScore := computeRecencyScore(lastPlayed, nowMs)
		noveltyScore := computeNoveltyScore(song.DateAdded, nowMs)

		favoriteScore := 0.0
		if _, ok := favoriteIDs[song.ID]; ok {
			favoriteScore = 1.0
		}

		// Cold-start boost so songs with no history at all can still surface.
		baselineScore := 0.0
		if !engaged {
			baselineScore = 0.1
		}

		noise := rng.Float64() * 0.03

		finalScore := affinityScore*0.4 +
			preferenceScore*0.2 +
			recencyScore*0.2 +
			favoriteScore*0.15 +
			noveltyScore*0.05 +
			baselineScore +
			noise

		discoveryScore := clamp01(1.0-affinityScore)*0.6 +
			noveltyScore*0.25 +
			preferenceScore*0.15

		ranked = append(ranked, RankedSong{
			Song:           song,
			FinalScore:     finalScore,
			DiscoveryScore: discoveryScore,
			AffinityScore:  affinityScore,
			RecencyScore:   recencyScore,
			NoveltyScore:   noveltyScore,
			FavoriteScore:  favoriteScore,
		})
	}

	slices.SortFunc(ranked, func(a, b RankedSong) int {
		if a.FinalScore != b.FinalScore {
			if a.FinalScore > b.FinalScore {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Song.ID, b.Song.ID)
	})
	return ranked
}

// SortByDiscovery reorders ranked songs by discovery score descending,
// song id ascending. Used to build the discovery section of the sectioned mix.
func SortByDiscovery(ranked []RankedSong) {
	slices.SortFunc(ranked, func(a, b RankedSong) int {
		if a.DiscoveryScore != b.DiscoveryScore {
			if a.DiscoveryScore > b.DiscoveryScore {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Song.ID, b.Song.ID)
	})
}

// computeRecencyScore buckets days since last play. Very recent plays score
// low on purpose: they were just heard, so the boost favors songs that have
// rested for a while. No history at all lands in the middle.
func computeRecencyScore(lastPlayedTimestamp, nowMs int64) float64 {
	if lastPlayedTimestamp <= 0 {
		return 0.6
	}
	days := max(nowMs-lastPlayedTimestamp, 0) / dayMs
	switch {
	case days < 1:
		return 0.2
	case days < 3:
		return 0.5
	case days < 7:
		return 0.7
	case days < 14:
		return 0.85
	default:
		return 1.0
	}
}

// computeNoveltyScore decays linearly over 60 days since the song entered
// the library. Epoch-second dates are detected and widened to milliseconds.
func computeNoveltyScore(dateAdded, nowMs int64) float64 {
	if dateAdded <= 0 {
		return 0
	}
	if dateAdded < epochSecondsCutoff {
		dateAdded *= 1000
	}
	days := float64(max(nowMs-dateAdded, 0) / dayMs)
	return clamp01(1.0 - days/60.0)
}

func maxValue[K comparable](m map[K]float64) float64 {
	result := 1.0
	for _, v := range m {
		result = max(result, v)
	}
	return result
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
