// Package cache provides a small byte-oriented cache used to skip repeated
// work between montage runs.
//
// Two things are worth caching: the decoded and cropped pixels of a design
// (decoding a large PNG and scanning its alpha channel dominates small runs)
// and the packed layout for a given sequence of boxes. Both are keyed by
// content hashes produced by a [Keyer], so a cache can be shared freely
// between users and processes.
//
// Backends:
//   - [NullCache]: caching disabled
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP server
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry. Implementations must be safe
// for concurrent use.
type Cache interface {
	// Get returns the value for key and whether it was found. A miss is not
	// an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default entry lifetimes.
const (
	TTLAsset  = 7 * 24 * time.Hour
	TTLLayout = 24 * time.Hour
)
