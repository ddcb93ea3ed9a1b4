// Package cache provides the caching backends used by stackhealth.
//
// Two kinds of data are cached:
//   - HTTP responses from provider APIs (deps.dev, GitHub), keyed by
//     [Keyer.HTTPKey]
//   - Aggregated health records, keyed by [Keyer.RecordKey]
//
// Backends implement [Cache]:
//   - [FileCache]: one JSON file per entry, for CLI usage
//   - [RedisCache]: shared cache for the HTTP service
//   - [NullCache]: disables caching
package cache

import (
	"context"
	"time"
)

// Default time-to-live values for cached data.
const (
	// TTLHTTP is how long raw provider responses are kept.
	TTLHTTP = 24 * time.Hour

	// TTLRecord is how long an aggregated health record is kept.
	TTLRecord = 12 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiration.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored bytes and true on a hit. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// RecordKeyOpts are the analysis options that change a health record and
// therefore take part in its cache key.
type RecordKeyOpts struct {
	GitHub    bool `json:"github"`    // GitHub analyzer registered
	Providers int  `json:"providers"` // number of registered analyzers
}

// Keyer builds cache keys.
type Keyer interface {
	// HTTPKey builds the key for a provider response.
	HTTPKey(namespace, key string) string

	// RecordKey builds the key for an aggregated record of the given purl.
	RecordKey(purl string, opts RecordKeyOpts) string
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// RecordKey returns "record:<sha256(purl, opts)>".
func (DefaultKeyer) RecordKey(purl string, opts RecordKeyOpts) string {
	return hashKey("record", purl, opts)
}
