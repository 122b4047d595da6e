package service

import (
	"log/slog"
	"time"

	"github.com/tunemixapp/tunemix-engine/internal/domain"
	"github.com/tunemixapp/tunemix-engine/internal/id"
)

// MinSessionListen is the floor under which a finalized session is discarded
// instead of committed. Rejects accidental taps and skips so they never
// pollute engagement data.
const MinSessionListen = 5 * time.Second

// PlayRecorder receives finalized listening credit.
// *store.EngagementStore is the production implementation.
type PlayRecorder interface {
	RecordPlay(songID string, durationMs, timestamp int64)
}

// Clock separates the two time sources the tracker needs: a wall clock for
// persisted timestamps and a monotonic millisecond clock for elapsed-time
// math, so accumulation stays correct across wall-clock adjustments.
type Clock interface {
	Now() time.Time
	RealtimeMs() int64
}

type systemClock struct {
	origin time.Time
}

// NewSystemClock returns a Clock backed by the system's wall and monotonic
// clocks.
func NewSystemClock() Clock {
	return &systemClock{origin: time.Now()}
}

func (c *systemClock) Now() time.Time { return time.Now() }

// RealtimeMs uses the monotonic reading carried by the origin timestamp.
func (c *systemClock) RealtimeMs() int64 { return time.Since(c.origin).Milliseconds() }

// SessionTracker turns the playback event stream into finalized engagement
// records. It owns at most one ActiveSession at a time.
//
// All methods must be driven from a single logical timeline (the playback
// event stream is inherently sequential); the tracker itself holds no lock
// because the engagement store already serializes its writes.
type SessionTracker struct {
	recorder PlayRecorder
	clock    Clock
	logger   *slog.Logger

	minListenMs int64

	// onVoluntary, when set, is invoked as soon as a voluntary session is
	// created so hosts can react to explicit picks. Never affects stats.
	onVoluntary func(songID string)

	session            *domain.ActiveSession
	pendingVoluntaryID string
}

// NewSessionTracker creates a tracker feeding finalized sessions into the
// recorder. A nil clock selects the system clock.
func NewSessionTracker(recorder PlayRecorder, clock Clock, logger *slog.Logger) *SessionTracker {
	if clock == nil {
		clock = NewSystemClock()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SessionTracker{
		recorder:    recorder,
		clock:       clock,
		logger:      logger,
		minListenMs: MinSessionListen.Milliseconds(),
	}
}

// SetMinListen overrides the commit threshold.
func (t *SessionTracker) SetMinListen(d time.Duration) {
	t.minListenMs = d.Milliseconds()
}

// SetVoluntaryHook registers the explicit-pick callback.
func (t *SessionTracker) SetVoluntaryHook(fn func(songID string)) {
	t.onVoluntary = fn
}

// OnVoluntarySelection marks the next session created for songID as a
// deliberate user pick rather than an auto-advance. One-shot: consumed by
// the first matching session.
func (t *SessionTracker) OnVoluntarySelection(songID string) {
	t.pendingVoluntaryID = songID
}

// OnSongChanged starts a session for the new current song, finalizing any
// prior session first. A nil song just finalizes (playback went idle).
func (t *SessionTracker) OnSongChanged(song *domain.Song, positionMs, durationMs int64, isPlaying bool) {
	t.finalize()
	if song == nil {
		return
	}

	nowRealtime := t.clock.RealtimeMs()
	nowEpoch := t.clock.Now().UnixMilli()

	// Best known duration: the player's report when positive, else the
	// catalog's, else unknown.
	normalizedDuration := int64(0)
	switch {
	case durationMs > 0:
		normalizedDuration = durationMs
	case song.DurationMs > 0:
		normalizedDuration = song.DurationMs
	}

	sessionID, err := id.Generate("ses")
	if err != nil {
		t.logger.Warn("failed to generate session id", "error", err)
	}

	voluntary := t.pendingVoluntaryID == song.ID
	t.session = &domain.ActiveSession{
		ID:                  sessionID,
		SongID:              song.ID,
		TotalDurationMs:     normalizedDuration,
		StartedAtEpochMs:    nowEpoch,
		LastKnownPositionMs: max(positionMs, 0),
		LastRealtimeMs:      nowRealtime,
		LastUpdateEpochMs:   nowEpoch,
		IsPlaying:           isPlaying,
		IsVoluntary:         voluntary,
	}
	if voluntary {
		t.pendingVoluntaryID = ""
		if t.onVoluntary != nil {
			t.onVoluntary(song.ID)
		}
	}

	t.logger.Debug("session started",
		"session_id", sessionID,
		"song_id", song.ID,
		"duration_ms", normalizedDuration,
		"voluntary", voluntary,
	)
}

// OnPlayStateChanged records a play/pause transition.
func (t *SessionTracker) OnPlayStateChanged(isPlaying bool, positionMs int64) {
	if t.session == nil {
		return
	}
	t.session.Touch(isPlaying, positionMs, t.clock.RealtimeMs(), t.clock.Now().UnixMilli())
}

// OnProgress records a periodic progress tick. Same accumulation as a play
// state change; called on a polling cadence so long playing stretches are
// credited even without discrete events.
func (t *SessionTracker) OnProgress(positionMs int64, isPlaying bool) {
	if t.session == nil {
		return
	}
	t.session.Touch(isPlaying, positionMs, t.clock.RealtimeMs(), t.clock.Now().UnixMilli())
}

// EnsureSession is the idempotent re-entry point for resent status (e.g. a
// remote playback surface re-reporting). If the active session already
// targets this song it only refreshes bookkeeping; otherwise it behaves like
// OnSongChanged. A nil song finalizes.
func (t *SessionTracker) EnsureSession(song *domain.Song, positionMs, durationMs int64, isPlaying bool) {
	if song == nil {
		t.finalize()
		return
	}
	if t.session != nil && t.session.SongID == song.ID {
		t.UpdateDuration(durationMs)
		t.session.Touch(isPlaying, positionMs, t.clock.RealtimeMs(), t.clock.Now().UnixMilli())
		return
	}
	t.OnSongChanged(song, positionMs, durationMs, isPlaying)
}

// UpdateDuration corrects the active session's track duration once the
// player learns the real value.
func (t *SessionTracker) UpdateDuration(durationMs int64) {
	if t.session == nil {
		return
	}
	t.session.SetDuration(durationMs)
}

// OnPlaybackStopped finalizes the active session when playback stops
// entirely.
func (t *SessionTracker) OnPlaybackStopped() {
	t.finalize()
}

// Active returns a snapshot of the current session, if any.
func (t *SessionTracker) Active() (domain.ActiveSession, bool) {
	if t.session == nil {
		return domain.ActiveSession{}, false
	}
	return *t.session, true
}

// Close finalizes any in-flight session. Mandatory on shutdown so in-progress
// listening credit is not silently lost.
func (t *SessionTracker) Close() error {
	t.finalize()
	return nil
}

// finalize flushes the final playing slice, commits the session through the
// recorder when it crossed the listen threshold, and discards it. Sessions
// under the threshold vanish silently.
func (t *SessionTracker) finalize() {
	session := t.session
	if session == nil {
		return
	}

	session.Accumulate(t.clock.RealtimeMs())

	listened := session.ListenedMs()
	if listened >= t.minListenMs {
		timestamp := session.CommitTimestamp(listened, t.clock.Now().UnixMilli())
		t.recorder.RecordPlay(session.SongID, listened, timestamp)

		t.logger.Debug("session committed",
			"session_id", session.ID,
			"song_id", session.SongID,
			"listened_ms", listened,
		)
	}

	t.session = nil
	if t.pendingVoluntaryID == session.SongID {
		t.pendingVoluntaryID = ""
	}
}
