package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/events"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/publish"
	"git.home.luguber.info/inful/sitebuilder/internal/registry"
	smw "git.home.luguber.info/inful/sitebuilder/internal/server/middleware"
	"git.home.luguber.info/inful/sitebuilder/internal/store"
	"git.home.luguber.info/inful/sitebuilder/internal/tenant"
)

// Options carries the collaborators the server does not own.
type Options struct {
	Store     store.Store
	Tenants   tenant.Store
	Layouts   map[string]*registry.Layout
	Bus       *events.Bus
	Recorder  metrics.Recorder
	Registry  *prom.Registry
	Publisher publish.Publisher
	Logger    *slog.Logger
}

// Server serves the editor API for all tenants.
type Server struct {
	httpServer *http.Server
	cfg        *config.Config

	store     store.Store
	tenants   tenant.Store
	layouts   map[string]*registry.Layout
	sessions  *SessionManager
	bus       *events.Bus
	registry  *prom.Registry
	publisher publish.Publisher
	adapter   *ferrors.HTTPErrorAdapter
	logger    *slog.Logger
}

// New wires the editor server.
func New(cfg *config.Config, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = metrics.NopRecorder{}
	}
	publisher := opts.Publisher
	if publisher == nil {
		publisher = publish.NopPublisher{}
	}
	tenants := opts.Tenants
	if tenants == nil {
		tenants = tenant.NewOpenStore()
	}
	layouts := opts.Layouts
	if layouts == nil {
		layouts = registry.DefaultLayouts()
	}
	bus := opts.Bus
	if bus == nil {
		bus = events.NewBus()
	}

	s := &Server{
		cfg:       cfg,
		store:     opts.Store,
		tenants:   tenants,
		layouts:   layouts,
		bus:       bus,
		registry:  opts.Registry,
		publisher: publisher,
		adapter:   ferrors.NewHTTPErrorAdapter(logger),
		logger:    logger,
	}
	s.sessions = NewSessionManager(opts.Store, layouts, bus, recorder, logger)

	return s
}

// Handler builds the full route table with middleware applied.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST /api/v1/sites/{site}/pages/{page}/session", s.handleOpenSession)
	api.HandleFunc("GET /api/v1/sites/{site}/pages", s.handleListPages)
	api.HandleFunc("GET /api/v1/sites/{site}/pages/{page}/revisions", s.handleRevisions)
	api.HandleFunc("GET /api/v1/sessions/{id}", s.handleGetSession)
	api.HandleFunc("POST /api/v1/sessions/{id}/mutations", s.handleMutation)
	api.HandleFunc("POST /api/v1/sessions/{id}/move", s.handleMove)
	api.HandleFunc("POST /api/v1/sessions/{id}/save", s.handleSave)
	api.HandleFunc("POST /api/v1/sessions/{id}/discard", s.handleDiscard)
	api.HandleFunc("DELETE /api/v1/sessions/{id}", s.handleCloseSession)
	api.HandleFunc("GET /api/v1/sessions/{id}/events", s.handleSessionEvents)

	withTenant := smw.Tenant(s.tenants, s.adapter)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/", withTenant(api))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.registry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	} else {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	chain := smw.Chain(s.logger, s.adapter)
	return chain(mux)
}

// Start runs the HTTP server until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  config.Duration(s.cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.Duration(s.cfg.Server.WriteTimeout, 15*time.Second),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Editor server listening", "addr", s.cfg.Server.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.Shutdown()
	}
}

// Shutdown drains in-flight requests and closes all live sessions.
func (s *Server) Shutdown() error {
	s.logger.Info("Shutting down editor server")

	ctx, cancel := context.WithTimeout(context.Background(),
		config.Duration(s.cfg.Server.ShutdownTimeout, 10*time.Second))
	defer cancel()

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}

	s.sessions.CloseAll()
	s.bus.Close()
	return err
}
