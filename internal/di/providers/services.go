package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/tunemixapp/tunemix-engine/internal/config"
	"github.com/tunemixapp/tunemix-engine/internal/service"
	"github.com/tunemixapp/tunemix-engine/internal/store"
)

// ProvideEngagementService provides the engagement service.
func ProvideEngagementService(i do.Injector) (*service.EngagementService, error) {
	engagements := do.MustInvoke[*store.EngagementStore](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewEngagementService(engagements, log), nil
}

// TrackerHandle wraps the session tracker with shutdown capability.
// Shutdown finalizes any in-flight session before the stores close.
type TrackerHandle struct {
	*service.SessionTracker
}

// Shutdown implements do.Shutdownable.
func (h *TrackerHandle) Shutdown() error {
	return h.Close()
}

// ProvideSessionTracker provides the playback session tracker. The
// engagement store doubles as the play recorder.
func ProvideSessionTracker(i do.Injector) (*TrackerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	engagements := do.MustInvoke[*store.EngagementStore](i)
	log := do.MustInvoke[*slog.Logger](i)

	tracker := service.NewSessionTracker(engagements, nil, log)
	tracker.SetMinListen(cfg.Session.MinListen)

	return &TrackerHandle{SessionTracker: tracker}, nil
}

// ProvideMixService provides the mix generation service.
func ProvideMixService(i do.Injector) (*service.MixService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	engagements := do.MustInvoke[*store.EngagementStore](i)
	state := do.MustInvoke[*StateStoreHandle](i)
	log := do.MustInvoke[*slog.Logger](i)

	svc := service.NewMixService(engagements, state.Store, log)
	svc.SetLimits(cfg.Mix.DailyLimit, cfg.Mix.YourLimit)

	return svc, nil
}
