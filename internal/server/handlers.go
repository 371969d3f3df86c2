package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/fitcharts/pkg/buildinfo"
	"github.com/matzehuels/fitcharts/pkg/cache"
	"github.com/matzehuels/fitcharts/pkg/dataset"
	"github.com/matzehuels/fitcharts/pkg/errors"
	fcio "github.com/matzehuels/fitcharts/pkg/io"
	"github.com/matzehuels/fitcharts/pkg/pipeline"
	"github.com/matzehuels/fitcharts/pkg/storage"
	"github.com/matzehuels/fitcharts/pkg/theme"
)

// Response headers describing a render.
const (
	HeaderCache   = "X-Fitcharts-Cache"
	HeaderDataset = "X-Fitcharts-Dataset"
	HeaderCoerced = "X-Fitcharts-Coerced"
)

var errNotFound = errors.New(errors.ErrCodeNotFound, "not found")

// renderRequest is the JSON body of POST /api/v1/render.
type renderRequest struct {
	Data    any              `json:"data"`
	Options pipeline.Options `json:"options"`
}

// chartRequest is the JSON body of POST /api/v1/charts.
type chartRequest struct {
	ID      string           `json:"id,omitempty"`
	Name    string           `json:"name"`
	Data    any              `json:"data"`
	Options pipeline.Options `json:"options"`
}

// =============================================================================
// Health
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

// =============================================================================
// Render
// =============================================================================

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var (
		records []dataset.Record
		opts    pipeline.Options
	)
	switch mediaType(r) {
	case "text/csv":
		records, err = fcio.ReadCSV(bytes.NewReader(body))
	case "application/toml":
		records, err = fcio.ReadTOML(bytes.NewReader(body))
	default:
		records, opts, err = decodeRenderRequest(body)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := applyQuery(&opts, r.URL.Query()); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.render(w, r, s.runner, records, opts)
}

// decodeRenderRequest accepts either a bare array of records or an object
// with data and options.
func decodeRenderRequest(body []byte) ([]dataset.Record, pipeline.Options, error) {
	var opts pipeline.Options
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, opts, errors.New(errors.ErrCodeInvalidDataset, "request body is empty")
	}
	if trimmed[0] == '[' {
		records, err := fcio.ReadJSON(bytes.NewReader(trimmed))
		return records, opts, err
	}

	var req renderRequest
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		return nil, opts, errors.Wrap(errors.ErrCodeInvalidDataset, err, "parse request body")
	}
	return dataset.Records(req.Data), req.Options, nil
}

// applyQuery overrides options with query parameters that are present.
// format selects the single output format of the response.
func applyQuery(opts *pipeline.Options, q url.Values) error {
	str := map[string]*string{
		"type":  &opts.Type,
		"key":   &opts.DataKey,
		"title": &opts.Title,
		"color": &opts.Color,
		"link":  &opts.LinkTemplate,
	}
	for name, dst := range str {
		if q.Has(name) {
			*dst = q.Get(name)
		}
	}

	num := map[string]*float64{
		"width":  &opts.Width,
		"height": &opts.Height,
		"scale":  &opts.Scale,
	}
	for name, dst := range num {
		if !q.Has(name) {
			continue
		}
		v, err := strconv.ParseFloat(q.Get(name), 64)
		if err != nil {
			return errors.New(errors.ErrCodeInvalidInput, "%s must be a number", name)
		}
		*dst = v
	}

	flags := map[string]*bool{
		"animate": &opts.Animate,
		"themed":  &opts.Themed,
		"refresh": &opts.Refresh,
	}
	for name, dst := range flags {
		if !q.Has(name) {
			continue
		}
		v, err := strconv.ParseBool(q.Get(name))
		if err != nil {
			return errors.New(errors.ErrCodeInvalidInput, "%s must be true or false", name)
		}
		*dst = v
	}

	format := pipeline.FormatSVG
	if q.Has("format") {
		format = strings.ToLower(q.Get("format"))
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		return err
	}
	opts.Formats = []string{format}
	return nil
}

// render runs the pipeline and writes the single requested artifact.
func (s *Server) render(w http.ResponseWriter, r *http.Request, runner *pipeline.Runner, records []dataset.Record, opts pipeline.Options) {
	ctx := r.Context()
	if s.cfg.RenderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RenderTimeout)
		defer cancel()
	}

	opts.Logger = s.logger
	result, err := runner.Execute(ctx, records, opts)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			err = errors.Wrap(errors.ErrCodeTimeout, err, "render timed out")
		}
		s.writeError(w, r, err)
		return
	}

	format := opts.Formats[0]
	cacheState := "miss"
	if result.CacheInfo.RenderHit {
		cacheState = "hit"
	}
	h := w.Header()
	h.Set("Content-Type", pipeline.ContentTypes[format])
	h.Set(HeaderCache, cacheState)
	h.Set(HeaderDataset, result.DatasetHash)
	h.Set(HeaderCoerced, strconv.Itoa(result.Stats.CoercedCount))
	w.WriteHeader(http.StatusOK)
	w.Write(result.Artifacts[format])
}

// =============================================================================
// Theme
// =============================================================================

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, theme.Derive(r.URL.Query().Get("primary")))
}

// =============================================================================
// Saved Charts
// =============================================================================

func (s *Server) handleCreateChart(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req chartRequest
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse chart"))
		return
	}

	// Formats and refresh are chosen per render, not saved.
	req.Options.Formats = nil
	req.Options.Refresh = false
	check := req.Options
	if err := check.ValidateForRender(); err != nil {
		s.writeError(w, r, err)
		return
	}

	doc := &storage.Document{
		ID:      req.ID,
		Owner:   owner(r),
		Name:    req.Name,
		Options: req.Options,
		Records: dataset.Records(req.Data),
	}

	if doc.ID != "" {
		existing, err := s.store.Get(r.Context(), doc.ID)
		switch {
		case errors.Is(err, errors.ErrCodeChartNotFound): // new chart
		case err != nil:
			s.writeError(w, r, err)
			return
		case existing.Owner != doc.Owner:
			s.writeError(w, r, storage.ErrNotFound)
			return
		}
	}

	if err := s.store.Put(r.Context(), doc); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("saved chart", "id", doc.ID, "owner", doc.Owner, "records", len(doc.Records))
	s.writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleListCharts(w http.ResponseWriter, r *http.Request) {
	docs, err := s.store.List(r.Context(), owner(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if docs == nil {
		docs = []*storage.Document{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"charts": docs})
}

func (s *Server) handleGetChart(w http.ResponseWriter, r *http.Request) {
	doc, err := s.ownedChart(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteChart(w http.ResponseWriter, r *http.Request) {
	doc, err := s.ownedChart(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Delete(r.Context(), doc.ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("deleted chart", "id", doc.ID, "owner", doc.Owner)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRenderChart(w http.ResponseWriter, r *http.Request) {
	doc, err := s.ownedChart(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := doc.Options
	q := r.URL.Query()
	q.Set("format", chi.URLParam(r, "format"))
	if err := applyQuery(&opts, q); err != nil {
		s.writeError(w, r, err)
		return
	}

	// Saved chart artifacts are keyed per owner.
	runner := pipeline.NewRunner(s.runner.Cache,
		cache.NewScopedKeyer(s.runner.Keyer, "owner:"+doc.Owner+":"), s.logger)
	s.render(w, r, runner, doc.Records, opts)
}

// ownedChart loads the chart named in the URL. Charts of other owners are
// reported as missing.
func (s *Server) ownedChart(r *http.Request) (*storage.Document, error) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateChartID(id); err != nil {
		return nil, err
	}
	doc, err := s.store.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if doc.Owner != owner(r) {
		return nil, storage.ErrNotFound
	}
	return doc, nil
}

func owner(r *http.Request) string {
	if o := strings.TrimSpace(r.Header.Get(OwnerHeader)); o != "" {
		return o
	}
	return storage.DefaultOwner
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	limit := s.cfg.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultConfig().MaxBodyBytes
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "request body exceeds %d bytes", limit)
	}
	return body, nil
}

func mediaType(r *http.Request) string {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return mt
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", "error", err)
	}
}

type errorBody struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)

	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal error"
	}

	s.writeJSON(w, status, map[string]errorBody{"error": {
		Code:      code,
		Message:   msg,
		RequestID: middleware.GetReqID(r.Context()),
	}})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidDataset,
		errors.ErrCodeInvalidDataKey, errors.ErrCodeInvalidChartID, errors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeChartNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusUnsupportedMediaType
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
