package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tunemixapp/tunemix-engine/internal/domain"
)

const (
	mixPrefix         = "mix:"
	mixLastRefreshKey = "mix:meta:last_refresh"
)

// ErrMixNotFound is returned when no mix of the requested kind was persisted.
var ErrMixNotFound = ErrNotFound.WithMessage("mix not found")

// SaveMix persists a generated mix as its ordered song-id list.
func (s *Store) SaveMix(ctx context.Context, mix *domain.Mix) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if mix == nil || mix.Kind == "" {
		return ErrInvalidInput.WithMessage("mix kind is required")
	}

	if err := s.set([]byte(mixPrefix+string(mix.Kind)), mix); err != nil {
		return fmt.Errorf("save mix %q: %w", mix.Kind, err)
	}
	return nil
}

// GetMix retrieves the last persisted mix of the given kind.
func (s *Store) GetMix(ctx context.Context, kind domain.MixKind) (*domain.Mix, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var mix domain.Mix
	err := s.get([]byte(mixPrefix+string(kind)), &mix)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrMixNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get mix %q: %w", kind, err)
	}
	return &mix, nil
}

// SetLastRefresh stamps the moment both mixes were last regenerated.
func (s *Store) SetLastRefresh(ctx context.Context, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.set([]byte(mixLastRefreshKey), at.UnixMilli())
}

// LastRefresh returns the last regeneration time, or the zero time when no
// refresh has ever been recorded.
func (s *Store) LastRefresh(ctx context.Context) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}

	var ms int64
	err := s.get([]byte(mixLastRefreshKey), &ms)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("get last refresh: %w", err)
	}
	return time.UnixMilli(ms), nil
}
