package domain

import "math"

// ActiveSession is one continuous span of listening to a single song.
// At most one exists per tracker. Elapsed-time math uses a monotonic
// millisecond clock (realtime); wall-clock epochs are only used for the
// timestamps that end up in persisted stats.
type ActiveSession struct {
	ID                     string
	SongID                 string
	TotalDurationMs        int64
	StartedAtEpochMs       int64
	LastKnownPositionMs    int64
	AccumulatedListeningMs int64
	LastRealtimeMs         int64
	LastUpdateEpochMs      int64
	IsPlaying              bool
	IsVoluntary            bool
}

// Accumulate flushes the elapsed monotonic slice since the last checkpoint
// into accumulated listening time, but only while the session was playing.
// The checkpoint always advances, so a paused stretch is never credited.
func (s *ActiveSession) Accumulate(nowRealtimeMs int64) {
	if s.IsPlaying {
		s.AccumulatedListeningMs += max(nowRealtimeMs-s.LastRealtimeMs, 0)
	}
	s.LastRealtimeMs = nowRealtimeMs
}

// Touch records a playback observation: flushes elapsed playing time, then
// refreshes play state, position and bookkeeping clocks.
func (s *ActiveSession) Touch(isPlaying bool, positionMs, nowRealtimeMs, nowEpochMs int64) {
	s.Accumulate(nowRealtimeMs)
	s.IsPlaying = isPlaying
	s.LastKnownPositionMs = max(positionMs, 0)
	s.LastUpdateEpochMs = nowEpochMs
}

// SetDuration corrects the known track duration mid-session. Non-positive
// values are ignored (players report these before the media is prepared).
func (s *ActiveSession) SetDuration(durationMs int64) {
	if durationMs > 0 {
		s.TotalDurationMs = durationMs
	}
}

// ListenedMs is the creditable listening time: accumulated playing time
// capped at the track duration when the duration is known, never negative.
func (s *ActiveSession) ListenedMs() int64 {
	limit := int64(math.MaxInt64)
	if s.TotalDurationMs > 0 {
		limit = s.TotalDurationMs
	}
	return max(min(s.AccumulatedListeningMs, limit), 0)
}

// CommitTimestamp picks the epoch timestamp recorded with a finalized
// session: the last observed update when available, otherwise the start
// plus the listened span, clamped into [startedAt, now].
func (s *ActiveSession) CommitTimestamp(listenedMs, nowEpochMs int64) int64 {
	ts := s.LastUpdateEpochMs
	if ts <= 0 {
		ts = s.StartedAtEpochMs + listenedMs
	}
	return min(max(ts, max(s.StartedAtEpochMs, 0)), nowEpochMs)
}
