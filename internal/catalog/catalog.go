// Package catalog loads the questionnaire configuration: YAML seed files
// written by administrators, and the active snapshot resolved from the Redis
// cache and the database.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shakespeare-advisor/advisor-engine/internal/scoring"
)

// ─── SEED FILES ──────────────────────────────────────────────────────────────

// ParseYAML decodes and validates a seed document. Unknown keys are rejected
// so a misspelt field fails loudly instead of silently taking its default.
func ParseYAML(r io.Reader) (*scoring.Snapshot, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var data scoring.SnapshotData
	if err := dec.Decode(&data); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("catalog: decode seed: %w", err)
	}
	snap, err := scoring.NewSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return snap, nil
}

// LoadFile parses the seed file at path.
func LoadFile(path string) (*scoring.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open seed: %w", err)
	}
	defer f.Close()
	return ParseYAML(f)
}

// ─── LOADER ──────────────────────────────────────────────────────────────────

// SnapshotStore is the persistent home of the configuration. store.Store
// implements it.
type SnapshotStore interface {
	LoadSnapshot(ctx context.Context) (scoring.SnapshotData, error)
	SaveSnapshot(ctx context.Context, snap *scoring.Snapshot) error
}

// SnapshotCache is an optional shared copy of the configuration.
// cache.SnapshotCache implements it; Get returns nil, nil on a miss.
type SnapshotCache interface {
	Get(ctx context.Context) (*scoring.SnapshotData, error)
	Set(ctx context.Context, data scoring.SnapshotData) error
	Invalidate(ctx context.Context) error
}

// Loader resolves the active snapshot: cache first, then the store, filling
// the cache on the way back. Cache failures are logged and never fatal.
type Loader struct {
	store SnapshotStore
	cache SnapshotCache // may be nil
	log   *slog.Logger
}

// NewLoader creates a Loader. cache may be nil.
func NewLoader(store SnapshotStore, cache SnapshotCache, log *slog.Logger) *Loader {
	return &Loader{store: store, cache: cache, log: log}
}

// Load returns the active snapshot.
func (l *Loader) Load(ctx context.Context) (*scoring.Snapshot, error) {
	if l.cache != nil {
		data, err := l.cache.Get(ctx)
		switch {
		case err != nil:
			l.log.Warn("catalog: snapshot cache read failed, falling back to store", "error", err)
		case data != nil:
			snap, err := scoring.NewSnapshot(*data)
			if err == nil {
				l.log.Debug("catalog: snapshot loaded from cache")
				return snap, nil
			}
			l.log.Warn("catalog: cached snapshot is invalid, reloading from store", "error", err)
		}
	}

	data, err := l.store.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: load snapshot: %w", err)
	}
	snap, err := scoring.NewSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("catalog: stored configuration: %w", err)
	}

	if l.cache != nil {
		if err := l.cache.Set(ctx, snap.Data()); err != nil {
			l.log.Warn("catalog: snapshot cache fill failed", "error", err)
		}
	}
	l.log.Info("catalog: snapshot loaded from store",
		"questions", len(data.Questions),
		"pages", len(data.Pages),
		"technologies", len(data.Technologies),
	)
	return snap, nil
}

// Seed replaces the stored configuration with snap and drops the cached copy
// so every replica reloads it.
func (l *Loader) Seed(ctx context.Context, snap *scoring.Snapshot) error {
	if err := l.store.SaveSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("catalog: seed: %w", err)
	}
	if l.cache != nil {
		if err := l.cache.Invalidate(ctx); err != nil {
			l.log.Warn("catalog: snapshot cache invalidation failed", "error", err)
		}
	}
	return nil
}
