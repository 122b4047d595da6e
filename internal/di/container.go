// Package di provides dependency injection configuration for the engine.
package di

import (
	"github.com/samber/do/v2"

	"github.com/tunemixapp/tunemix-engine/internal/di/providers"
	"github.com/tunemixapp/tunemix-engine/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStateStore)
	do.Provide(injector, providers.ProvideEngagementStore)

	// Engine services
	do.Provide(injector, providers.ProvideEngagementService)
	do.Provide(injector, providers.ProvideSessionTracker)
	do.Provide(injector, providers.ProvideMixService)

	return injector
}

// Bootstrap triggers lazy initialization of all services so failures
// surface at startup instead of first use. The invocation order also fixes
// the shutdown order: the container shuts down in reverse, so the tracker
// finalizes its in-flight session before the stores close.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*providers.StateStoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.EngagementService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.MixService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.TrackerHandle](injector); err != nil {
		return err
	}
	return nil
}
