// Package providers contains dependency injection providers for the engine.
package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/tunemixapp/tunemix-engine/internal/config"
	"github.com/tunemixapp/tunemix-engine/internal/logger"
)

// ProvideConfig provides the engine configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.Load()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*slog.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("starting engine",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Data.BasePath,
		"engagement_file", cfg.Engagement.Path,
	)

	return log, nil
}
