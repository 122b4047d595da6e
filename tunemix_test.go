package tunemix

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("ENV", "development")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DATA_PATH", dir)
	t.Setenv("ENGAGEMENT_FILE", filepath.Join(dir, "song_scores.json"))
	t.Setenv("TUNEMIX_ENV_FILE", filepath.Join(dir, "no-such.env"))

	engine, err := New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = engine.Shutdown()
	})
	return engine
}

func TestEngine_EndToEnd(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	catalog := []Song{
		{ID: "s1", ArtistID: 1, Genre: "rock", DurationMs: 180000},
		{ID: "s2", ArtistID: 2, Genre: "jazz", DurationMs: 200000},
		{ID: "s3", ArtistID: 3, Genre: "pop", DurationMs: 160000},
	}

	// Manual credit through the engagement surface.
	require.NoError(t, engine.Engagement.RecordPlay(RecordPlayRequest{
		SongID:     "s1",
		DurationMs: 120000,
		Timestamp:  1700000000000,
	}))
	assert.Equal(t, 1, engine.Engagement.GetScore("s1"))

	// Mixes generate, persist and reload.
	daily := engine.Mixes.GenerateDailyMix(ctx, catalog, nil, 0)
	assert.Len(t, daily, 3)

	loaded, err := engine.Mixes.LoadMix(ctx, MixDaily, catalog)
	require.NoError(t, err)
	assert.Len(t, loaded, 3)
}

func TestEngine_TrackerFeedsEngagement(t *testing.T) {
	engine := newTestEngine(t)

	song := &Song{ID: "s1", ArtistID: 1, DurationMs: 180000}
	engine.Tracker.OnSongChanged(song, 0, 180000, true)

	// The system clock has not advanced enough to cross the listen
	// threshold, so stopping discards the session.
	engine.Tracker.OnPlaybackStopped()

	assert.Equal(t, 0, engine.Engagement.GetScore("s1"))
}

func TestEngine_Shutdown(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ENV", "development")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DATA_PATH", dir)
	t.Setenv("ENGAGEMENT_FILE", filepath.Join(dir, "song_scores.json"))
	t.Setenv("TUNEMIX_ENV_FILE", filepath.Join(dir, "no-such.env"))

	engine, err := New()
	require.NoError(t, err)

	assert.NoError(t, engine.Shutdown())
}
