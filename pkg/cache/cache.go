// Package cache stores rendered chart artifacts and normalized datasets.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default,
//     ~/.cache/fitcharts)
//   - [RedisCache]: shared cache for the HTTP service
//   - [NullCache]: stores nothing, used with --no-cache
//
// # Keys
//
// Keys are built by a [Keyer] from a content hash plus the options that
// affect the output, so two renders share an entry only when they would
// produce identical bytes. [ScopedKeyer] prefixes keys per tenant.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored bytes and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default time-to-live values per entry kind.
const (
	TTLItems    = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Keyer builds cache keys for the pipeline stages.
type Keyer interface {
	// ItemsKey identifies the normalized items of a dataset for a value key.
	ItemsKey(datasetHash, dataKey string) string

	// ArtifactKey identifies one rendered output format.
	ArtifactKey(datasetHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts lists every option that changes rendered bytes.
type ArtifactKeyOpts struct {
	Format       string  `json:"format"`
	Type         string  `json:"type"`
	DataKey      string  `json:"data_key"`
	Title        string  `json:"title,omitempty"`
	Color        string  `json:"color,omitempty"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	ClassName    string  `json:"class_name,omitempty"`
	Styles       string  `json:"styles,omitempty"`
	Animate      bool    `json:"animate,omitempty"`
	LinkTemplate string  `json:"link_template,omitempty"`
	Themed       bool    `json:"themed,omitempty"`
	Scale        float64 `json:"scale,omitempty"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ItemsKey returns "items:<hash>".
func (DefaultKeyer) ItemsKey(datasetHash, dataKey string) string {
	return hashKey("items", datasetHash, dataKey)
}

// ArtifactKey returns "artifact:<hash>".
func (DefaultKeyer) ArtifactKey(datasetHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", datasetHash, opts)
}
