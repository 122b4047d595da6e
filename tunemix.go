// Package tunemix is the embedding surface of the engine: it assembles the
// engagement store, session tracker and mix services from environment
// configuration and hands the host ready-to-use handles. Hosts drive the
// tracker from their playback events and ask the mix services for playlists;
// everything else stays internal.
package tunemix

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/tunemixapp/tunemix-engine/internal/di"
	"github.com/tunemixapp/tunemix-engine/internal/di/providers"
	"github.com/tunemixapp/tunemix-engine/internal/domain"
	"github.com/tunemixapp/tunemix-engine/internal/service"
)

// Domain types hosts exchange with the engine.
type (
	Song                = domain.Song
	SongEngagementStats = domain.SongEngagementStats
	ActiveSession       = domain.ActiveSession
	Mix                 = domain.Mix
	MixKind             = domain.MixKind

	RecordPlayRequest = service.RecordPlayRequest

	EngagementService = service.EngagementService
	SessionTracker    = service.SessionTracker
	MixService        = service.MixService

	// Clock lets hosts substitute the tracker's time sources in tests.
	Clock = service.Clock
)

// Mix kinds.
const (
	MixDaily = domain.MixDaily
	MixYour  = domain.MixYour
)

// Engine is one assembled engine instance. Create with New, release with
// Shutdown.
type Engine struct {
	injector *do.RootScope

	// Engagement records and reads listening credit.
	Engagement *EngagementService
	// Tracker turns playback events into finalized engagement.
	Tracker *SessionTracker
	// Mixes generates, persists and reloads the daily playlists.
	Mixes *MixService
}

// New assembles an engine from environment configuration (see
// internal/config for the knobs and their defaults).
func New() (*Engine, error) {
	injector := di.NewContainer()

	if err := di.Bootstrap(injector); err != nil {
		_ = injector.Shutdown()
		return nil, fmt.Errorf("bootstrap engine: %w", err)
	}

	engagement := do.MustInvoke[*service.EngagementService](injector)
	tracker := do.MustInvoke[*providers.TrackerHandle](injector)
	mixes := do.MustInvoke[*service.MixService](injector)

	return &Engine{
		injector:   injector,
		Engagement: engagement,
		Tracker:    tracker.SessionTracker,
		Mixes:      mixes,
	}, nil
}

// Shutdown finalizes any in-flight listening session, then closes the state
// store. The engine must not be used afterwards.
func (e *Engine) Shutdown() error {
	if err := e.injector.Shutdown(); err != nil {
		return fmt.Errorf("shutdown engine: %w", err)
	}
	return nil
}
