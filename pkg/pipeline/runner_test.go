package pipeline

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/fitcharts/pkg/cache"
	"github.com/matzehuels/fitcharts/pkg/dataset"
	"github.com/matzehuels/fitcharts/pkg/observability"
	"github.com/matzehuels/fitcharts/pkg/render/chart"
)

// memCache is an in-memory cache.Cache for tests.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

var _ cache.Cache = (*memCache)(nil)

func weekRecords() []dataset.Record {
	return []dataset.Record{
		{"name": "Mon", "calories": 1800},
		{"name": "Tue", "calories": "2100"},
		{"label": "Wed", "calories": "n/a"},
	}
}

func TestRunnerExecute(t *testing.T) {
	ctx := context.Background()
	c := newMemCache()
	r := NewRunner(c, nil, nil)

	opts := Options{
		Type:    "line",
		DataKey: "calories",
		Formats: []string{FormatSVG, FormatJSON, FormatText},
		IDs:     &chart.Sequence{},
	}
	res, err := r.Execute(ctx, weekRecords(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.Stats.RecordCount != 3 || res.Stats.ItemCount != 3 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if res.Stats.CoercedCount != 1 {
		t.Errorf("CoercedCount = %d, want 1", res.Stats.CoercedCount)
	}
	if res.Items[1].Value != 2100 || res.Items[2].Name != "Wed" {
		t.Errorf("items = %+v", res.Items)
	}
	if res.CacheInfo.ItemsHit || res.CacheInfo.RenderHit {
		t.Error("first run should miss the cache")
	}
	if len(res.DatasetHash) != 64 {
		t.Errorf("DatasetHash = %q", res.DatasetHash)
	}

	svg := string(res.Artifacts[FormatSVG])
	if !strings.Contains(svg, "fitchart-line") || !strings.Contains(svg, `class="line-path"`) {
		t.Errorf("svg artifact is not a line chart: %.200s", svg)
	}

	var doc map[string]any
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &doc); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if doc["type"] != "line" || doc["data_key"] != "calories" {
		t.Errorf("json artifact header = %v %v", doc["type"], doc["data_key"])
	}

	if !strings.Contains(string(res.Artifacts[FormatText]), "Mon") {
		t.Error("txt artifact should contain item names")
	}

	// Second run hits both stages.
	res2, err := r.Execute(ctx, weekRecords(), opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !res2.CacheInfo.ItemsHit || !res2.CacheInfo.RenderHit {
		t.Errorf("second run CacheInfo = %+v, want hits", res2.CacheInfo)
	}
	if string(res2.Artifacts[FormatSVG]) != svg {
		t.Error("cached svg differs")
	}
	if res2.Items[2].Coerced != true {
		t.Error("Coerced flag should survive the items cache")
	}
}

func TestRunnerNonFiniteValues(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(newMemCache(), nil, nil)
	records := []dataset.Record{
		{"name": "Mon", "value": math.NaN()},
		{"name": "Tue", "value": math.Inf(1), "splits": []any{math.Inf(-1), 4.2}},
		{"name": "Wed", "value": 10},
	}
	opts := Options{
		Type:    "area",
		Formats: []string{FormatSVG, FormatJSON},
		IDs:     &chart.Sequence{},
	}

	res, err := r.Execute(ctx, records, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for _, it := range res.Items[:2] {
		if it.Value != 0 || !it.Coerced {
			t.Errorf("%s = %v (coerced %v), want 0 coerced", it.Name, it.Value, it.Coerced)
		}
	}
	if res.Items[0].Fields["value"] != "NaN" {
		t.Errorf("Fields[value] = %#v, want \"NaN\"", res.Items[0].Fields["value"])
	}
	if res.Stats.CoercedCount != 2 {
		t.Errorf("CoercedCount = %d, want 2", res.Stats.CoercedCount)
	}
	if strings.Contains(string(res.Artifacts[FormatSVG]), "NaN") {
		t.Error("svg should not contain NaN")
	}
	if !json.Valid(res.Artifacts[FormatJSON]) {
		t.Error("json artifact is not valid JSON")
	}
	if records[0]["value"] == "NaN" {
		t.Error("Execute must not modify the caller's records")
	}

	res2, err := r.Execute(ctx, records, opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !res2.CacheInfo.ItemsHit || !res2.Items[1].Coerced {
		t.Errorf("second run = %+v, items %+v", res2.CacheInfo, res2.Items)
	}
}

func TestRunnerCacheKeysFollowOptions(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(newMemCache(), nil, nil)

	if _, err := r.Execute(ctx, weekRecords(), Options{DataKey: "calories"}); err != nil {
		t.Fatal(err)
	}

	res, err := r.Execute(ctx, weekRecords(), Options{DataKey: "calories", Type: "area"})
	if err != nil {
		t.Fatal(err)
	}
	if !res.CacheInfo.ItemsHit {
		t.Error("same dataset and key should reuse items")
	}
	if res.CacheInfo.RenderHit {
		t.Error("different chart type must not reuse artifacts")
	}

	changed := weekRecords()
	changed[0]["calories"] = 1900
	res, err = r.Execute(ctx, changed, Options{DataKey: "calories"})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.ItemsHit || res.CacheInfo.RenderHit {
		t.Error("changed dataset must miss the cache")
	}
}

func TestRunnerRefresh(t *testing.T) {
	ctx := context.Background()
	c := newMemCache()
	r := NewRunner(c, nil, nil)

	if _, err := r.Execute(ctx, weekRecords(), Options{}); err != nil {
		t.Fatal(err)
	}
	res, err := r.Execute(ctx, weekRecords(), Options{Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.ItemsHit || res.CacheInfo.RenderHit {
		t.Error("Refresh should bypass the cache")
	}
}

func TestRunnerEmptyDataset(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), nil, Options{Formats: []string{FormatSVG, FormatJSON}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Items == nil || len(res.Items) != 0 {
		t.Errorf("Items = %v, want empty non-nil", res.Items)
	}
	if !strings.Contains(string(res.Artifacts[FormatSVG]), chart.EmptyMessage) {
		t.Error("empty dataset should render the empty state")
	}
}

func TestRunnerInvalidOptions(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if _, err := r.Execute(context.Background(), weekRecords(), Options{Formats: []string{"gif"}}); err == nil {
		t.Error("invalid format should fail")
	}
}

type countingHooks struct {
	observability.NoopPipelineHooks
	observability.NoopCacheHooks
	mu        sync.Mutex
	renders   int
	hits      map[string]int
	normalize int
}

func (h *countingHooks) OnNormalizeComplete(context.Context, int, int, time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.normalize++
}

func (h *countingHooks) OnRenderComplete(context.Context, string, []string, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.renders++
}

func (h *countingHooks) OnCacheHit(_ context.Context, keyType string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits[keyType]++
}

func TestRunnerEmitsHooks(t *testing.T) {
	h := &countingHooks{hits: map[string]int{}}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	defer observability.Reset()

	ctx := context.Background()
	r := NewRunner(newMemCache(), nil, nil)
	for i := 0; i < 2; i++ {
		if _, err := r.Execute(ctx, weekRecords(), Options{}); err != nil {
			t.Fatal(err)
		}
	}

	if h.normalize != 1 || h.renders != 1 {
		t.Errorf("normalize = %d, renders = %d; want 1, 1", h.normalize, h.renders)
	}
	if h.hits["items"] != 1 || h.hits["artifact"] != 1 {
		t.Errorf("hits = %v", h.hits)
	}
}

func TestHashRecordsIgnoresFieldOrder(t *testing.T) {
	a := []dataset.Record{{"name": "Mon", "value": 1}}
	b := []dataset.Record{{"value": 1, "name": "Mon"}}
	ha, err := HashRecords(a)
	if err != nil {
		t.Fatal(err)
	}
	hb, _ := HashRecords(b)
	if ha != hb {
		t.Error("hash should not depend on map order")
	}
}
