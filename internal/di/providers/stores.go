package providers

import (
	"log/slog"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/tunemixapp/tunemix-engine/internal/config"
	"github.com/tunemixapp/tunemix-engine/internal/store"
)

// StateStoreHandle wraps the state store with shutdown capability.
type StateStoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StateStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStateStore provides the persistent mix state store.
func ProvideStateStore(i do.Injector) (*StateStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	dbPath := filepath.Join(cfg.Data.BasePath, "db")
	db, err := store.New(dbPath, log)
	if err != nil {
		return nil, err
	}

	return &StateStoreHandle{Store: db}, nil
}

// ProvideEngagementStore provides the engagement file store.
func ProvideEngagementStore(i do.Injector) (*store.EngagementStore, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	return store.NewEngagementStore(cfg.Engagement.Path, log), nil
}
