// Package server implements the fitcharts HTTP service.
//
// Routes:
//
//	GET    /healthz
//	GET    /metrics
//	POST   /api/v1/render?format=svg
//	GET    /api/v1/theme?primary=%234cc27d
//	POST   /api/v1/charts
//	GET    /api/v1/charts
//	GET    /api/v1/charts/{id}
//	DELETE /api/v1/charts/{id}
//	GET    /api/v1/charts/{id}/render.{format}
//
// Saved charts are grouped by the X-Fitcharts-Owner request header. The
// header is trusted as given; authentication belongs to the fronting proxy.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/fitcharts/pkg/cache"
	"github.com/matzehuels/fitcharts/pkg/observability"
	"github.com/matzehuels/fitcharts/pkg/pipeline"
	"github.com/matzehuels/fitcharts/pkg/storage"
)

// OwnerHeader carries the owner of saved charts.
const OwnerHeader = "X-Fitcharts-Owner"

// Server serves the HTTP API.
type Server struct {
	cfg     Config
	logger  *log.Logger
	runner  *pipeline.Runner
	store   storage.Store
	metrics *Metrics
	router  chi.Router
}

// New creates a server from already constructed backends and registers
// metrics as the observability hooks.
func New(cfg Config, logger *log.Logger, runner *pipeline.Runner, store storage.Store, metrics *Metrics) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	metrics.Register()

	s := &Server{
		cfg:     cfg,
		logger:  logger,
		runner:  runner,
		store:   store,
		metrics: metrics,
	}
	s.router = s.routes()
	return s
}

// Open builds the cache and storage backends named in cfg and returns a
// ready server. Close releases them.
func Open(ctx context.Context, cfg Config, logger *log.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c, err := openCache(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}
	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		c.Close()
		return nil, err
	}

	logger.Info("backends ready", "cache", cfg.Cache.Backend, "storage", cfg.Storage.Backend)
	runner := pipeline.NewRunner(cache.WithTTL(c, cfg.Cache.TTL), nil, logger)
	return New(cfg, logger, runner, store, nil), nil
}

func openCache(ctx context.Context, cfg CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case CacheFile:
		return cache.NewFileCache(cfg.Dir)
	}
	return cache.NewNullCache(), nil
}

func openStore(ctx context.Context, cfg StorageConfig) (storage.Store, error) {
	if cfg.Backend == StorageMongo {
		return storage.NewMongoStore(ctx, storage.MongoConfig{URI: cfg.MongoURI, Database: cfg.Database})
	}
	return storage.NewMemoryStore(), nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/render", s.handleRender)
		r.Get("/theme", s.handleTheme)

		r.Route("/charts", func(r chi.Router) {
			r.Post("/", s.handleCreateChart)
			r.Get("/", s.handleListCharts)
			r.Get("/{id}", s.handleGetChart)
			r.Delete("/{id}", s.handleDeleteChart)
			r.Get("/{id}/render.{format}", s.handleRenderChart)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, errNotFound)
	})
	return r
}

// instrument logs every request and reports it to the HTTP hooks under its
// route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)

		observability.HTTP().OnRequest(r.Context(), r.Method, route, status, d)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", d,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down", "timeout", timeout)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// Close releases the cache and storage backends.
func (s *Server) Close(ctx context.Context) error {
	observability.Reset()
	return errors.Join(s.runner.Close(), s.store.Close(ctx))
}
