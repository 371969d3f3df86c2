package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fitcharts/pkg/cache"
	"github.com/matzehuels/fitcharts/pkg/errors"
	"github.com/matzehuels/fitcharts/pkg/observability"
	"github.com/matzehuels/fitcharts/pkg/pipeline"
	"github.com/matzehuels/fitcharts/pkg/render/chart"
	"github.com/matzehuels/fitcharts/pkg/storage"
)

type memCache struct {
	data map[string][]byte
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.data[key] = data
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	t.Cleanup(observability.Reset)

	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(&memCache{data: map[string][]byte{}}, nil, logger)
	return New(DefaultConfig(), logger, runner, storage.NewMemoryStore(), NewMetrics())
}

func do(t *testing.T, s *Server, method, target, contentType, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body map[string]errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body["error"]
}

const weekBody = `[{"name":"Mon","value":1200},{"name":"Tue","value":"1500"},{"name":"Wed","value":"n/a"}]`

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %v", body["status"])
	}
	if _, ok := body["build"]; !ok {
		t.Error("missing build info")
	}
}

func TestRenderSVG(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/v1/render?type=line&title=Week", "application/json", weekBody)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := rec.Header().Get(HeaderCache); got != "miss" {
		t.Errorf("%s = %q, want miss", HeaderCache, got)
	}
	if got := rec.Header().Get(HeaderCoerced); got != "1" {
		t.Errorf("%s = %q, want 1", HeaderCoerced, got)
	}
	if rec.Header().Get(HeaderDataset) == "" {
		t.Errorf("%s is empty", HeaderDataset)
	}
	svg := rec.Body.String()
	if !strings.HasPrefix(svg, "<svg") || !strings.Contains(svg, "Week") {
		t.Errorf("unexpected body: %.120s", svg)
	}
	if strings.Count(svg, `class="point"`) != 3 {
		t.Errorf("want 3 points in line chart")
	}

	again := do(t, s, http.MethodPost, "/api/v1/render?type=line&title=Week", "application/json", weekBody)
	if got := again.Header().Get(HeaderCache); got != "hit" {
		t.Errorf("second render %s = %q, want hit", HeaderCache, got)
	}
}

func TestRenderEnvelope(t *testing.T) {
	s := newTestServer(t)
	body := `{"data":[{"label":"Protein","grams":120},{"label":"Carbs","grams":210}],"options":{"type":"bar","data_key":"grams"}}`
	rec := do(t, s, http.MethodPost, "/api/v1/render?format=json", "application/json", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var out struct {
		Type     string  `json:"type"`
		MaxValue float64 `json:"max_value"`
		Items    []struct {
			Name  string  `json:"name"`
			Value float64 `json:"value"`
		} `json:"items"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Type != "bar" || out.MaxValue != 210 || len(out.Items) != 2 {
		t.Fatalf("out = %+v", out)
	}
	if out.Items[0].Name != "Protein" || out.Items[0].Value != 120 {
		t.Errorf("items[0] = %+v", out.Items[0])
	}
}

func TestRenderCSV(t *testing.T) {
	s := newTestServer(t)
	body := "name,steps\nMon,8000\nTue,12000\n"
	rec := do(t, s, http.MethodPost, "/api/v1/render?key=steps&format=txt", "text/csv", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("empty text plot")
	}
}

func TestRenderTOML(t *testing.T) {
	s := newTestServer(t)
	body := "[[data]]\nname = \"Mon\"\nvalue = 3\n"
	rec := do(t, s, http.MethodPost, "/api/v1/render", "application/toml", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
}

func TestRenderTOMLNonFinite(t *testing.T) {
	s := newTestServer(t)
	body := "[[data]]\nname = \"Mon\"\nvalue = nan\n\n[[data]]\nname = \"Tue\"\nvalue = 10\n"
	for _, format := range []string{"svg", "json"} {
		rec := do(t, s, http.MethodPost, "/api/v1/render?format="+format, "application/toml", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, body = %s", format, rec.Code, rec.Body)
		}
		if got := rec.Header().Get(HeaderCoerced); got != "1" {
			t.Errorf("%s: %s = %q, want 1", format, HeaderCoerced, got)
		}
	}
}

func TestRenderEmptyDataset(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/v1/render", "application/json", `{"data":"not a list"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), chart.EmptyMessage) {
		t.Error("empty dataset should render the empty state")
	}
}

func TestRenderErrors(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		contentType string
		body        string
		status      int
		code        errors.Code
	}{
		{"empty body", "/api/v1/render", "application/json", "", http.StatusBadRequest, "INVALID_DATASET"},
		{"malformed json", "/api/v1/render", "application/json", "{", http.StatusBadRequest, "INVALID_DATASET"},
		{"bad format", "/api/v1/render?format=gif", "application/json", weekBody, http.StatusBadRequest, "INVALID_FORMAT"},
		{"bad width", "/api/v1/render?width=wide", "application/json", weekBody, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad animate", "/api/v1/render?animate=maybe", "application/json", weekBody, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad data key", "/api/v1/render?key=1abc", "application/json", weekBody, http.StatusBadRequest, "INVALID_DATA_KEY"},
		{"width too large", "/api/v1/render?width=20000", "application/json", weekBody, http.StatusBadRequest, "INVALID_INPUT"},
		{"nan width", "/api/v1/render?width=NaN&height=NaN", "application/json", weekBody, http.StatusBadRequest, "INVALID_INPUT"},
		{"nan scale", "/api/v1/render?scale=nan", "application/json", weekBody, http.StatusBadRequest, "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			rec := do(t, s, http.MethodPost, tt.target, tt.contentType, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body)
			}
			if got := decodeError(t, rec); got.Code != tt.code {
				t.Errorf("code = %q, want %q", got.Code, tt.code)
			}
		})
	}
}

func TestRenderBodyLimit(t *testing.T) {
	s := newTestServer(t)
	s.cfg.MaxBodyBytes = 16
	rec := do(t, s, http.MethodPost, "/api/v1/render", "application/json", weekBody)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestTheme(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/v1/theme?primary=%23111111", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var th struct {
		Primary string `json:"primary"`
		Text    string `json:"text"`
		Dark    bool   `json:"dark"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&th); err != nil {
		t.Fatal(err)
	}
	if th.Primary != "#111111" || !th.Dark || th.Text != "#ffffff" {
		t.Errorf("theme = %+v", th)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/theme?primary=nope", "", "")
	if err := json.NewDecoder(rec.Body).Decode(&th); err != nil {
		t.Fatal(err)
	}
	if th.Primary != chart.DefaultColor {
		t.Errorf("invalid primary = %q, want default", th.Primary)
	}
}

// flakyStore fails every Get and records whether Put was reached.
type flakyStore struct {
	*storage.MemoryStore
	puts int
}

func (s *flakyStore) Get(context.Context, string) (*storage.Document, error) {
	return nil, errors.New(errors.ErrCodeTimeout, "get timed out")
}

func (s *flakyStore) Put(ctx context.Context, doc *storage.Document) error {
	s.puts++
	return s.MemoryStore.Put(ctx, doc)
}

func TestCreateChartStoreError(t *testing.T) {
	t.Cleanup(observability.Reset)
	logger := log.NewWithOptions(io.Discard, log.Options{})
	store := &flakyStore{MemoryStore: storage.NewMemoryStore()}
	s := New(DefaultConfig(), logger, pipeline.NewRunner(nil, nil, logger), store, NewMetrics())

	body := `{"id":"0b3c6f9e-8f4f-4a51-9d1c-2f7c8d9e0a11","name":"Steps","data":[]}`
	rec := do(t, s, http.MethodPost, "/api/v1/charts", "application/json", body)
	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, want 504 (body %s)", rec.Code, rec.Body)
	}
	if store.puts != 0 {
		t.Error("chart must not be written when the owner check fails")
	}
}

func TestChartLifecycle(t *testing.T) {
	s := newTestServer(t)
	const owner = "coach-7"

	create := `{"name":"Weekly calories","data":[{"name":"Mon","calories":2100},{"name":"Tue","calories":1850}],"options":{"type":"area","data_key":"calories"}}`
	rec := do(t, s, http.MethodPost, "/api/v1/charts", "application/json", create, OwnerHeader, owner)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body)
	}
	var doc storage.Document
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatal(err)
	}
	if doc.ID == "" || doc.Owner != owner || len(doc.Records) != 2 {
		t.Fatalf("doc = %+v", doc)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/charts", "", "", OwnerHeader, owner)
	var list struct {
		Charts []storage.Document `json:"charts"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list.Charts) != 1 || list.Charts[0].ID != doc.ID {
		t.Errorf("list = %+v", list.Charts)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/charts/"+doc.ID+"/render.svg", "", "", OwnerHeader, owner)
	if rec.Code != http.StatusOK {
		t.Fatalf("render status = %d, body = %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), "linearGradient") {
		t.Error("area chart should carry a gradient")
	}

	// Other owners do not see the chart.
	rec = do(t, s, http.MethodGet, "/api/v1/charts/"+doc.ID, "", "", OwnerHeader, "someone-else")
	if rec.Code != http.StatusNotFound {
		t.Errorf("foreign get status = %d, want 404", rec.Code)
	}

	rec = do(t, s, http.MethodDelete, "/api/v1/charts/"+doc.ID, "", "", OwnerHeader, owner)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = do(t, s, http.MethodGet, "/api/v1/charts/"+doc.ID, "", "", OwnerHeader, owner)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
	if got := decodeError(t, rec); got.Code != "CHART_NOT_FOUND" {
		t.Errorf("code = %q", got.Code)
	}
}

func TestChartErrors(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/charts/not-a-uuid", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid id status = %d, want 400", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/charts", "application/json", `{"name":"x","options":{"data_key":"1bad"}}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid options status = %d, want 400", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/charts", "application/json", `{"name":"x","data":[]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	var doc storage.Document
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatal(err)
	}
	rec = do(t, s, http.MethodGet, "/api/v1/charts/"+doc.ID+"/render.bmp", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad format status = %d, want 400", rec.Code)
	}
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/nope", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeError(t, rec); got.Code != "NOT_FOUND" {
		t.Errorf("code = %q", got.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodPost, "/api/v1/render?type=bar", "application/json", weekBody)

	rec := do(t, s, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`fitcharts_http_requests_total{method="POST",route="/api/v1/render",status="200"} 1`,
		`fitcharts_pipeline_renders_total{outcome="ok",type="bar"} 1`,
		"fitcharts_pipeline_normalized_items_total 3",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeInvalidInput, http.StatusBadRequest},
		{errors.ErrCodeInvalidConfig, http.StatusBadRequest},
		{errors.ErrCodeChartNotFound, http.StatusNotFound},
		{errors.ErrCodeUnsupported, http.StatusUnsupportedMediaType},
		{errors.ErrCodeTimeout, http.StatusGatewayTimeout},
		{errors.ErrCodeUnavailable, http.StatusServiceUnavailable},
		{errors.ErrCodeStorage, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.code); got != tt.want {
			t.Errorf("statusFor(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

var _ cache.Cache = (*memCache)(nil)
