package service

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunemixapp/tunemix-engine/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestEngagementService(t *testing.T) *EngagementService {
	t.Helper()
	engagements := store.NewEngagementStore(filepath.Join(t.TempDir(), "song_scores.json"), nil)
	return NewEngagementService(engagements, discardLogger())
}

func TestEngagementService_RecordPlay(t *testing.T) {
	svc := newTestEngagementService(t)

	err := svc.RecordPlay(RecordPlayRequest{
		SongID:     "s1",
		DurationMs: 120000,
		Timestamp:  1700000000000,
	})
	require.NoError(t, err)

	stats, ok := svc.GetStats("s1")
	require.True(t, ok)
	assert.Equal(t, 1, stats.PlayCount)
	assert.Equal(t, int64(120000), stats.TotalPlayDurationMs)
}

func TestEngagementService_RecordPlay_RequiresSongID(t *testing.T) {
	svc := newTestEngagementService(t)

	err := svc.RecordPlay(RecordPlayRequest{DurationMs: 1000})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "song_id is required")
}

func TestEngagementService_RecordPlay_RejectsNegatives(t *testing.T) {
	svc := newTestEngagementService(t)

	err := svc.RecordPlay(RecordPlayRequest{SongID: "s1", DurationMs: -1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duration_ms")

	err = svc.RecordPlay(RecordPlayRequest{SongID: "s1", Timestamp: -1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timestamp")

	// Nothing was recorded.
	assert.Equal(t, 0, svc.GetScore("s1"))
}

func TestEngagementService_GetScore_Unplayed(t *testing.T) {
	svc := newTestEngagementService(t)
	assert.Equal(t, 0, svc.GetScore("unknown"))
}

func TestEngagementService_AllStats(t *testing.T) {
	svc := newTestEngagementService(t)

	require.NoError(t, svc.RecordPlay(RecordPlayRequest{SongID: "s1", DurationMs: 60000, Timestamp: 1000}))
	require.NoError(t, svc.RecordPlay(RecordPlayRequest{SongID: "s2", DurationMs: 30000, Timestamp: 2000}))

	all := svc.AllStats()
	assert.Len(t, all, 2)
	assert.Equal(t, 1, all["s1"].PlayCount)
}
