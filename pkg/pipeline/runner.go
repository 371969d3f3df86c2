package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fitcharts/pkg/cache"
	"github.com/matzehuels/fitcharts/pkg/dataset"
	"github.com/matzehuels/fitcharts/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so caching behaves the same everywhere.
//
// The Runner holds no per-run state; multiple goroutines can share one
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// HashRecords returns the content hash of a dataset. Field order inside a
// record does not affect the hash. NaN and infinite values hash as their
// string forms.
func HashRecords(records []dataset.Record) (string, error) {
	data, err := json.Marshal(dataset.FiniteRecords(records))
	if err != nil {
		return "", fmt.Errorf("hash dataset: %w", err)
	}
	return cache.Hash(data), nil
}

// Execute runs the complete normalize → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, records []dataset.Record, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	hash, err := HashRecords(records)
	if err != nil {
		return nil, err
	}
	result := &Result{DatasetHash: hash}
	result.Stats.RecordCount = len(records)

	// Stage 1: Normalize
	normalizeStart := time.Now()
	items, itemsHit := r.NormalizeWithCacheInfo(ctx, records, hash, opts)
	result.Items = items
	result.Stats.NormalizeTime = time.Since(normalizeStart)
	result.Stats.ItemCount = len(items)
	result.Stats.CoercedCount = dataset.CoercedCount(items)
	result.CacheInfo.ItemsHit = itemsHit

	r.Logger.Info("normalized dataset",
		"records", len(records),
		"items", len(items),
		"coerced", result.Stats.CoercedCount,
		"duration", result.Stats.NormalizeTime)
	if result.Stats.CoercedCount > 0 {
		r.Logger.Warn("values replaced by 0", "key", opts.DataKey, "count", result.Stats.CoercedCount)
	}

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, items, hash, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"type", opts.Type,
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// NormalizeWithCacheInfo normalizes records, reusing cached items for the
// same dataset hash and data key. Normalization cannot fail, so cache
// errors only cost a recomputation.
func (r *Runner) NormalizeWithCacheInfo(ctx context.Context, records []dataset.Record, hash string, opts Options) ([]dataset.Item, bool) {
	cacheKey := r.Keyer.ItemsKey(hash, opts.DataKey)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var items []dataset.Item
			if err := json.Unmarshal(data, &items); err == nil && items != nil {
				observability.Cache().OnCacheHit(ctx, "items")
				return items, true
			}
		}
		observability.Cache().OnCacheMiss(ctx, "items")
	}

	start := time.Now()
	observability.Pipeline().OnNormalizeStart(ctx, len(records))
	items := dataset.Normalize(records, opts.DataKey)
	observability.Pipeline().OnNormalizeComplete(ctx, len(items), dataset.CoercedCount(items), time.Since(start))

	if data, err := json.Marshal(items); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLItems); err != nil {
			r.Logger.Debug("cache write failed", "stage", "items", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "items", len(data))
		}
	}
	return items, false
}

// Normalize is a convenience wrapper that discards the cache hit info.
func (r *Runner) Normalize(ctx context.Context, records []dataset.Record, opts Options) ([]dataset.Item, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	hash, err := HashRecords(records)
	if err != nil {
		return nil, err
	}
	items, _ := r.NormalizeWithCacheInfo(ctx, records, hash, opts)
	return items, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
// A cache hit requires every requested format to be present.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, items []dataset.Item, hash string, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, cacheKey)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Type, opts.Formats)
	rendered, err := Render(ctx, items, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Type, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err != nil {
			r.Logger.Debug("cache write failed", "stage", "artifact", "format", format, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
