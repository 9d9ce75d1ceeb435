// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/priorityx/priorityx/schema"
)

// ScoreProvider abstracts the mixed-effects estimation backend that turns a
// panel into per-entity (x, y) scores. The core treats it as a potentially
// slow, retryable black box; any backend honoring this contract can be
// substituted without touching the pipeline.
type ScoreProvider interface {
	// Fit estimates scores for every entity in the panel. A degenerate fit
	// returns a result with Status.Converged = false rather than an error;
	// errors are reserved for invalid invocations.
	Fit(ctx context.Context, panel []schema.PanelRow, opts schema.FitOptions) (*schema.FitResult, error)
}

// EventSource loads raw events from a tabular input.
// Implementations map configured entity/timestamp/count columns onto
// schema.Event fields and surface unmapped columns as attributes.
type EventSource interface {
	Load(ctx context.Context, cfg *Config) ([]schema.Event, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetMovementStore() CacheStore
}

// CacheStore defines the interface for cache data storage, keyed by the
// order-independent run signature.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	Clear() error
	GetStatus() (CacheStatus, error)
	Close() error
}

// CacheStatus reports the state of a cache store for the status command.
type CacheStatus struct {
	Backend         schema.DatabaseBackend
	Connected       bool
	Location        string
	EntryCount      int64
	SizeBytes       int64
	LastEntryTime   time.Time
	OldestEntryTime time.Time
}
