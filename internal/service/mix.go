package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/tunemixapp/tunemix-engine/internal/domain"
	"github.com/tunemixapp/tunemix-engine/internal/mix"
	"github.com/tunemixapp/tunemix-engine/internal/store"
)

// Default mix sizes.
const (
	DefaultDailyMixLimit = 30
	DefaultYourMixLimit  = 60
)

// Your Mix section shares of the overall limit.
const (
	favoriteSectionShare = 0.3
	coreSectionShare     = 0.45
	favoriteSectionMin   = 5
	coreSectionMin       = 10
)

// MixService composes the ranking engine and diversity selector into the two
// generated playlists, persisting each as an id list so the last mix
// survives a restart.
//
// Generation is a pure pass over snapshots read at the start, so it is safe
// to run on a background worker; only the engagement store's own lock is
// involved.
type MixService struct {
	engagements *store.EngagementStore
	state       *store.Store
	logger      *slog.Logger

	dailyLimit int
	yourLimit  int

	// now is the wall clock; injectable so tests can pin the calendar day.
	now func() time.Time
}

// NewMixService creates a new mix service with default limits.
func NewMixService(engagements *store.EngagementStore, state *store.Store, logger *slog.Logger) *MixService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &MixService{
		engagements: engagements,
		state:       state,
		logger:      logger,
		dailyLimit:  DefaultDailyMixLimit,
		yourLimit:   DefaultYourMixLimit,
		now:         time.Now,
	}
}

// SetLimits overrides the default mix sizes. Non-positive values keep the
// current limit.
func (s *MixService) SetLimits(daily, your int) {
	if daily > 0 {
		s.dailyLimit = daily
	}
	if your > 0 {
		s.yourLimit = your
	}
}

// GenerateDailyMix produces the flat ranked playlist: rank everything,
// select with artist diversity, then pad with a seeded shuffle of the
// remaining catalog when diversity under-fills. An empty catalog yields an
// empty mix. The result is persisted before being returned.
func (s *MixService) GenerateDailyMix(ctx context.Context, songs []domain.Song, favoriteIDs map[string]struct{}, limit int) []domain.Song {
	if limit <= 0 {
		limit = s.dailyLimit
	}
	if len(songs) == 0 {
		return nil
	}

	now := s.now()
	rng := mix.NewRand(mix.DaySeed(now))

	ranked := mix.Rank(songs, s.engagements.ReadAll(), favoriteIDs, now, rng)
	if len(ranked) == 0 {
		shuffled := shuffledCopy(songs, rng)
		result := shuffled[:min(limit, len(shuffled))]
		s.persistMix(ctx, domain.MixDaily, result, now)
		return result
	}

	selected := mix.SelectDiverse(ranked, favoriteIDs, limit)
	if len(selected) < limit && len(selected) < len(songs) {
		remaining := songsNotIn(songs, songIDSet(selected))
		rng.Shuffle(len(remaining), func(i, j int) {
			remaining[i], remaining[j] = remaining[j], remaining[i]
		})
		combined := dedupeSongs(append(selected, remaining...))
		selected = combined[:min(limit, len(combined))]
	}

	s.persistMix(ctx, domain.MixDaily, selected, now)
	return selected
}

// GenerateYourMix produces the sectioned playlist: a favorites section, a
// core-taste section over the remaining ranked pool, and a discovery section
// re-sorted by discovery score, concatenated in that order, padded with a
// seeded shuffle of unused catalog songs and truncated to limit.
func (s *MixService) GenerateYourMix(ctx context.Context, songs []domain.Song, favoriteIDs map[string]struct{}, limit int) []domain.Song {
	if limit <= 0 {
		limit = s.yourLimit
	}
	if len(songs) == 0 {
		return nil
	}

	now := s.now()
	rng := mix.NewRand(mix.DaySeed(now) + mix.YourMixSeedOffset)

	ranked := mix.Rank(songs, s.engagements.ReadAll(), favoriteIDs, now, rng)
	if len(ranked) == 0 {
		shuffled := shuffledCopy(songs, rng)
		result := shuffled[:min(limit, len(shuffled))]
		s.persistMix(ctx, domain.MixYour, result, now)
		return result
	}

	favoriteSize := min(max(int(float64(limit)*favoriteSectionShare), favoriteSectionMin), limit)
	coreSize := min(max(int(float64(limit)*coreSectionShare), coreSectionMin), limit)
	discoverySize := max(limit-favoriteSize-coreSize, 0)

	favoriteRanked := make([]mix.RankedSong, 0, len(favoriteIDs))
	for _, r := range ranked {
		if _, ok := favoriteIDs[r.Song.ID]; ok {
			favoriteRanked = append(favoriteRanked, r)
		}
	}
	favoriteSection := mix.SelectDiverse(favoriteRanked, favoriteIDs, favoriteSize)

	chosen := songIDSet(favoriteSection)
	coreSection := mix.SelectDiverse(rankedNotIn(ranked, chosen), favoriteIDs, coreSize)
	for _, song := range coreSection {
		chosen[song.ID] = struct{}{}
	}

	discoveryCandidates := rankedNotIn(ranked, chosen)
	mix.SortByDiscovery(discoveryCandidates)
	discoverySection := mix.SelectDiverse(discoveryCandidates, favoriteIDs, discoverySize)

	result := dedupeSongs(concatSongs(favoriteSection, coreSection, discoverySection))

	if len(result) < limit {
		filler := songsNotIn(songs, songIDSet(result))
		rng.Shuffle(len(filler), func(i, j int) {
			filler[i], filler[j] = filler[j], filler[i]
		})
		for _, song := range filler {
			result = append(result, song)
			if len(result) >= limit {
				break
			}
		}
	}

	result = result[:min(limit, len(result))]
	s.persistMix(ctx, domain.MixYour, result, now)
	return result
}

// LoadMix reconstructs the last persisted mix of the given kind against the
// live catalog. Ids no longer in the catalog are dropped, order preserved.
// A never-generated mix loads as empty.
func (s *MixService) LoadMix(ctx context.Context, kind domain.MixKind, catalog []domain.Song) ([]domain.Song, error) {
	persisted, err := s.state.GetMix(ctx, kind)
	if errors.Is(err, store.ErrMixNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load mix %q: %w", kind, err)
	}
	return persisted.Resolve(catalog), nil
}

// RefreshIfStale regenerates both mixes when the stored refresh stamp is
// from a different calendar day than today. Returns whether a refresh ran.
func (s *MixService) RefreshIfStale(ctx context.Context, songs []domain.Song, favoriteIDs map[string]struct{}) (bool, error) {
	last, err := s.state.LastRefresh(ctx)
	if err != nil {
		return false, err
	}

	now := s.now()
	if !last.IsZero() && last.Year() == now.Year() && last.YearDay() == now.YearDay() {
		return false, nil
	}

	if err := s.ForceRefresh(ctx, songs, favoriteIDs); err != nil {
		return false, err
	}
	return true, nil
}

// ForceRefresh regenerates both mixes unconditionally and stamps the
// refresh time.
func (s *MixService) ForceRefresh(ctx context.Context, songs []domain.Song, favoriteIDs map[string]struct{}) error {
	daily := s.GenerateDailyMix(ctx, songs, favoriteIDs, 0)
	your := s.GenerateYourMix(ctx, songs, favoriteIDs, 0)

	if err := s.state.SetLastRefresh(ctx, s.now()); err != nil {
		return fmt.Errorf("stamp mix refresh: %w", err)
	}

	s.logger.Info("mixes refreshed",
		"daily_size", len(daily),
		"your_size", len(your),
	)
	return nil
}

// persistMix saves the generated id list. Persistence failures degrade to a
// log line; the freshly generated mix is still returned to the caller.
func (s *MixService) persistMix(ctx context.Context, kind domain.MixKind, songs []domain.Song, generatedAt time.Time) {
	if err := s.state.SaveMix(ctx, domain.NewMix(kind, songs, generatedAt)); err != nil {
		s.logger.Error("failed to persist mix", "kind", kind, "error", err)
	}
}

func shuffledCopy(songs []domain.Song, rng *rand.Rand) []domain.Song {
	shuffled := make([]domain.Song, len(songs))
	copy(shuffled, songs)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

func songIDSet(songs []domain.Song) map[string]struct{} {
	ids := make(map[string]struct{}, len(songs))
	for _, s := range songs {
		ids[s.ID] = struct{}{}
	}
	return ids
}

func songsNotIn(songs []domain.Song, exclude map[string]struct{}) []domain.Song {
	result := make([]domain.Song, 0, len(songs))
	for _, s := range songs {
		if _, ok := exclude[s.ID]; !ok {
			result = append(result, s)
		}
	}
	return result
}

func rankedNotIn(ranked []mix.RankedSong, exclude map[string]struct{}) []mix.RankedSong {
	result := make([]mix.RankedSong, 0, len(ranked))
	for _, r := range ranked {
		if _, ok := exclude[r.Song.ID]; !ok {
			result = append(result, r)
		}
	}
	return result
}

func dedupeSongs(songs []domain.Song) []domain.Song {
	seen := make(map[string]struct{}, len(songs))
	result := make([]domain.Song, 0, len(songs))
	for _, s := range songs {
		if _, ok := seen[s.ID]; ok {
			continue
		}
		seen[s.ID] = struct{}{}
		result = append(result, s)
	}
	return result
}

func concatSongs(sections ...[]domain.Song) []domain.Song {
	var total int
	for _, sec := range sections {
		total += len(sec)
	}
	result := make([]domain.Song, 0, total)
	for _, sec := range sections {
		result = append(result, sec...)
	}
	return result
}
