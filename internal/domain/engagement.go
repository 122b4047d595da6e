package domain

// SongEngagementStats is the per-song record of listening evidence.
// All fields are non-negative; counts and durations only ever grow.
// JSON field names are the on-disk engagement file schema and must not change.
type SongEngagementStats struct {
	PlayCount           int   `json:"playCount"`
	TotalPlayDurationMs int64 `json:"totalPlayDurationMs"`
	LastPlayedTimestamp int64 `json:"lastPlayedTimestamp"`
}

// Sanitize clamps every field to be >= 0. Idempotent; applied on every
// read and write path so corrupt or adversarial input never propagates.
func (s SongEngagementStats) Sanitize() SongEngagementStats {
	return SongEngagementStats{
		PlayCount:           max(s.PlayCount, 0),
		TotalPlayDurationMs: max(s.TotalPlayDurationMs, 0),
		LastPlayedTimestamp: max(s.LastPlayedTimestamp, 0),
	}
}

// ApplyPlay returns the stats after one finalized listening session.
// PlayCount increments (floor 1), duration accumulates (floor 0), and the
// last-played timestamp is replaced (floor 0).
func (s SongEngagementStats) ApplyPlay(durationMs, timestamp int64) SongEngagementStats {
	return SongEngagementStats{
		PlayCount:           max(s.PlayCount+1, 1),
		TotalPlayDurationMs: s.TotalPlayDurationMs + max(durationMs, 0),
		LastPlayedTimestamp: max(timestamp, 0),
	}.Sanitize()
}

// EngagementWeight is the taste-signal weight of one song's stats:
// play count plus minutes of accumulated listening.
func (s SongEngagementStats) EngagementWeight() float64 {
	return float64(s.PlayCount) + float64(s.TotalPlayDurationMs)/60000.0
}
