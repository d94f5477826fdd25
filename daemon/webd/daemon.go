package webd

import (
	"context"
	"errors"
	"github.com/gorilla/mux"
	"github.com/olahol/melody"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/catdb/cache"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/params"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/pipeline"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/state"
	"log/slog"
	"net"
	"net/http"
	"time"
)

type WebDaemon struct {
	Config    *params.WebDaemonConfig
	logger    *slog.Logger
	started   time.Time
	artifacts pipeline.ArtifactSource

	// state is nil when no data directory is configured.
	state *state.State

	// readers serve live classification sessions, one per connection.
	readers *melody.Melody
	// watchers receive every live window result.
	watchers *melody.Melody
}

// NewWebDaemon creates a daemon classifying with artifacts from src.
// A nil src loads the configured model lazily, on the first full window or batch upload.
func NewWebDaemon(config *params.WebDaemonConfig, src pipeline.ArtifactSource) (*WebDaemon, error) {
	if config == nil {
		config = params.DefaultWebDaemonConfig()
	}
	if config.Pipeline == nil {
		config.Pipeline = params.DefaultPipelineConfig()
	}
	if err := config.Pipeline.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		src = pipeline.NewLazyArtifacts(config.Model)
	}
	d := &WebDaemon{
		Config:    config,
		logger:    slog.With("d", "web"),
		started:   time.Now(),
		artifacts: src,
	}
	if config.DataDir != "" {
		st, err := state.Open(config.DataDir, false)
		if err != nil {
			return nil, err
		}
		d.state = st
	}
	d.initMelody()
	return d, nil
}

// Run serves until ctx is canceled, then shuts the server down.
// Ended live sessions are stored and cached while running.
func (s *WebDaemon) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go cache.Track(ctx)
	s.startBroadcast(ctx)
	if s.state != nil {
		go s.state.RecordSessions(ctx)
	}

	ln, err := net.Listen(s.Config.Network, s.Config.Address)
	if err != nil {
		return err
	}
	server := &http.Server{Handler: s.NewRouter()}
	go func() {
		<-ctx.Done()
		shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutCancel()
		_ = s.readers.Close()
		_ = s.watchers.Close()
		_ = server.Shutdown(shutCtx)
	}()

	s.logger.Info("Starting web daemon", "address", ln.Addr().String())
	err = server.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	return err
}

// Close releases the state database.
func (s *WebDaemon) Close() error {
	if s.state == nil {
		return nil
	}
	return s.state.Close()
}

func (s *WebDaemon) NewRouter() *mux.Router {
	router := mux.NewRouter().StrictSlash(false)
	router.Use(s.loggingMiddleware)

	// Websockets. The trailing slash form is the one clients historically used.
	router.Path("/ws/read/").HandlerFunc(s.handleRead)
	router.Path("/ws/read").HandlerFunc(s.handleRead)
	router.Path("/ws/watch").HandlerFunc(s.handleWatch)

	apiRoutes := router.NewRoute().Subrouter()

	// All API routes use permissive CORS settings.
	apiRoutes.Use(permissiveCorsMiddleware)

	// /ping is a simple server healthcheck endpoint
	apiRoutes.Path("/ping").HandlerFunc(pingPong)

	apiJSONRoutes := apiRoutes.NewRoute().Subrouter()
	jsonMiddleware := contentTypeMiddlewareFunc("application/json")
	apiJSONRoutes.Use(jsonMiddleware)

	apiJSONRoutes.Path("/status").HandlerFunc(s.statusReport).Methods(http.MethodGet)
	apiJSONRoutes.Path("/sessions").HandlerFunc(s.handleSessions).Methods(http.MethodGet)
	apiJSONRoutes.Path("/sessions/{id}").HandlerFunc(s.handleSession).Methods(http.MethodGet)
	apiJSONRoutes.Path("/runs").HandlerFunc(s.handleRuns).Methods(http.MethodGet)
	apiJSONRoutes.Path("/runs/{id}").HandlerFunc(s.handleRun).Methods(http.MethodGet)

	authenticatedAPIRoutes := apiJSONRoutes.NewRoute().Subrouter()
	authenticatedAPIRoutes.Use(s.tokenAuthenticationMiddleware)

	authenticatedAPIRoutes.Path("/analyze").HandlerFunc(s.handleAnalyze).Methods(http.MethodPost, http.MethodOptions)
	authenticatedAPIRoutes.Path("/runs/{id}").HandlerFunc(s.handleDeleteRun).Methods(http.MethodDelete)

	return router
}
