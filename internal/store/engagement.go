package store

import (
	"bytes"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/tunemixapp/tunemix-engine/internal/domain"
)

// scoreKeyCandidates are the alternate field names older builds used when an
// entry carried a bare integer score wrapped in an object.
var scoreKeyCandidates = []string{"score", "count", "value"}

// canonical field names of the current engagement schema.
var statsFieldNames = []string{"playCount", "totalPlayDurationMs", "lastPlayedTimestamp"}

// EngagementStore persists per-song engagement stats in a single JSON file.
//
// The reader tolerates every historical encoding of the file: the current
// object schema, bare integer scores, numeric-string scores, and objects
// carrying the score under an alternate key. Entries that fit no shape are
// dropped with a warning, never surfaced as errors; a structurally invalid
// file reads as empty. The writer always emits the current schema, so legacy
// files migrate forward on the first write after a read.
//
// One mutex guards every read-modify-write sequence so concurrent recorders
// (session finalization, mix generation) cannot lose updates.
type EngagementStore struct {
	path   string
	logger *slog.Logger

	mu sync.Mutex
}

// NewEngagementStore creates a store over the engagement file at path.
// The file does not need to exist yet.
func NewEngagementStore(path string, logger *slog.Logger) *EngagementStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &EngagementStore{
		path:   path,
		logger: logger,
	}
}

// ReadAll returns the sanitized engagement mapping. Missing, empty or
// corrupt files read as an empty mapping.
func (s *EngagementStore) ReadAll() map[string]domain.SongEngagementStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked()
}

// WriteAll replaces the engagement file with the sanitized mapping in the
// current schema.
func (s *EngagementStore) WriteAll(stats map[string]domain.SongEngagementStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(stats)
}

// RecordPlay credits one finalized listening session to a song:
// play count +1, listening duration accumulated, last-played replaced.
// The whole read-modify-write runs under the store lock. Persistence
// failures are logged, not returned; the next successful write still
// carries this update only if it happens within the same process read,
// so the only acceptable loss is the failed write itself.
func (s *EngagementStore) RecordPlay(songID string, durationMs, timestamp int64) {
	if songID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stats := s.readLocked()
	stats[songID] = stats[songID].ApplyPlay(durationMs, timestamp)

	if err := s.writeLocked(stats); err != nil {
		s.logger.Error("failed to persist song engagements", "song_id", songID, "error", err)
	}
}

// GetScore returns a song's play count, 0 when the song has no record.
func (s *EngagementStore) GetScore(songID string) int {
	return s.ReadAll()[songID].PlayCount
}

// GetStats returns a song's engagement stats and whether a record exists.
func (s *EngagementStore) GetStats(songID string) (domain.SongEngagementStats, bool) {
	stats, ok := s.ReadAll()[songID]
	return stats, ok
}

func (s *EngagementStore) readLocked() map[string]domain.SongEngagementStats {
	result := make(map[string]domain.SongEngagementStats)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return result
	}
	if err != nil {
		s.logger.Error("failed to read engagement file", "path", s.path, "error", err)
		return result
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return result
	}

	var entries map[string]jsontext.Value
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Error("failed to parse engagement file, ignoring its contents",
			"path", s.path, "error", err)
		return result
	}

	for songID, raw := range entries {
		stats, ok := parseStatsValue(raw)
		if !ok {
			s.logger.Warn("skipping engagement entry that could not be parsed",
				"song_id", songID, "value", string(raw))
			continue
		}
		result[songID] = stats
	}
	return result
}

func (s *EngagementStore) writeLocked(stats map[string]domain.SongEngagementStats) error {
	sanitized := make(map[string]domain.SongEngagementStats, len(stats))
	for songID, st := range stats {
		sanitized[songID] = st.Sanitize()
	}

	data, err := json.Marshal(sanitized)
	if err != nil {
		return fmt.Errorf("marshal engagements: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create engagement dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write engagement file: %w", err)
	}
	return nil
}

// parseStatsValue decodes one entry value, trying the current schema first
// and falling back through the legacy shapes.
func parseStatsValue(raw jsontext.Value) (domain.SongEngagementStats, bool) {
	if raw.Kind() == '{' {
		var fields map[string]jsontext.Value
		if err := json.Unmarshal(raw, &fields); err != nil {
			return domain.SongEngagementStats{}, false
		}

		if hasStatsField(fields) {
			var stats domain.SongEngagementStats
			if err := json.Unmarshal(raw, &stats); err == nil {
				return stats.Sanitize(), true
			}
		}

		for _, key := range scoreKeyCandidates {
			if v, ok := fields[key]; ok {
				if score, ok := extractScore(v); ok {
					return domain.SongEngagementStats{PlayCount: score}.Sanitize(), true
				}
			}
		}
		return domain.SongEngagementStats{}, false
	}

	if score, ok := extractScore(raw); ok {
		return domain.SongEngagementStats{PlayCount: score}.Sanitize(), true
	}
	return domain.SongEngagementStats{}, false
}

func hasStatsField(fields map[string]jsontext.Value) bool {
	for _, name := range statsFieldNames {
		if _, ok := fields[name]; ok {
			return true
		}
	}
	return false
}

// extractScore reads a bare integer score from a JSON number or a numeric
// string.
func extractScore(raw jsontext.Value) (int, bool) {
	switch raw.Kind() {
	case '0':
		var n float64
		if err := json.Unmarshal(raw, &n); err != nil {
			return 0, false
		}
		return int(n), true
	case '"':
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return 0, false
		}
		n, err := strconv.Atoi(strings.TrimSpace(str))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
