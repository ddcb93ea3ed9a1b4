// Package store persists aggregated health records.
//
// The cache layer keeps records for a bounded time to spare the providers;
// a [Store] keeps the latest record of every component analyzed, so the
// HTTP service can answer with the last known state without running the
// pipeline. Backends:
//   - [MongoStore]: one document per component in a MongoDB collection
//   - [NullStore]: persistence disabled
package store

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/stackhealth/pkg/health"
)

// ErrNotFound is returned by [Store.Load] when no record was saved for an identity.
var ErrNotFound = errors.New("record not found")

// Entry is a stored record with the time it was produced.
type Entry struct {
	Record     health.Record `json:"record"`
	AnalyzedAt time.Time     `json:"analyzed_at"`
}

// Store persists the latest record per component identity.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save replaces the stored entry for the record's identity.
	Save(ctx context.Context, e Entry) error

	// Load returns the stored entry for id, or ErrNotFound.
	Load(ctx context.Context, id health.Identity) (Entry, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// NullStore stores nothing.
type NullStore struct{}

func (NullStore) Save(context.Context, Entry) error { return nil }

func (NullStore) Load(context.Context, health.Identity) (Entry, error) {
	return Entry{}, ErrNotFound
}

func (NullStore) Close(context.Context) error { return nil }

var _ Store = NullStore{}
