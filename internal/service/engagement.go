package service

import (
	"log/slog"

	"github.com/tunemixapp/tunemix-engine/internal/domain"
	"github.com/tunemixapp/tunemix-engine/internal/store"
)

// EngagementService is the host-facing surface over the engagement store:
// validated manual play recording plus stat reads.
type EngagementService struct {
	engagements *store.EngagementStore
	logger      *slog.Logger
}

// NewEngagementService creates a new engagement service.
func NewEngagementService(engagements *store.EngagementStore, logger *slog.Logger) *EngagementService {
	return &EngagementService{
		engagements: engagements,
		logger:      logger,
	}
}

// RecordPlayRequest contains the data for crediting one listening session.
type RecordPlayRequest struct {
	SongID     string `json:"song_id" validate:"required"`
	DurationMs int64  `json:"duration_ms" validate:"gte=0"`
	Timestamp  int64  `json:"timestamp" validate:"gte=0"`
}

// RecordPlay credits a listening session to a song. Hosts use this for
// out-of-band credit (imports, scrobbles); live playback goes through the
// session tracker instead.
func (s *EngagementService) RecordPlay(req RecordPlayRequest) error {
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}

	s.engagements.RecordPlay(req.SongID, req.DurationMs, req.Timestamp)

	s.logger.Debug("recorded play",
		"song_id", req.SongID,
		"duration_ms", req.DurationMs,
	)
	return nil
}

// GetScore returns a song's play count, 0 when unplayed.
func (s *EngagementService) GetScore(songID string) int {
	return s.engagements.GetScore(songID)
}

// GetStats returns a song's engagement stats and whether a record exists.
func (s *EngagementService) GetStats(songID string) (domain.SongEngagementStats, bool) {
	return s.engagements.GetStats(songID)
}

// AllStats returns the full sanitized engagement mapping.
func (s *EngagementService) AllStats() map[string]domain.SongEngagementStats {
	return s.engagements.ReadAll()
}
