// Package server wires the assistant API: session CRUD, one-shot analysis,
// streamed chat, the document vault, and the live voice websocket.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/assistant"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/gateway/config"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/gateway/handlers"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/gateway/mw"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/live/session"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/live/sessions"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/store"
	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/vault"
)

// Deps are the collaborators the server routes requests to.
type Deps struct {
	Repo         store.Repository
	Orchestrator *assistant.Orchestrator
	Connector    session.Connector
	Vault        *vault.Vault
}

type Server struct {
	cfg     config.Config
	logger  *slog.Logger
	mux     *http.ServeMux
	deps    Deps
	tracker *sessions.Tracker
}

func New(cfg config.Config, logger *slog.Logger, deps Deps) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:     cfg,
		logger:  logger,
		mux:     http.NewServeMux(),
		deps:    deps,
		tracker: sessions.NewTracker(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.Handle("GET /healthz", handlers.HealthHandler{})

	sessionsHandler := handlers.SessionsHandler{
		Repo:            s.deps.Repo,
		DefaultLanguage: s.cfg.DefaultLanguage,
		Logger:          s.logger,
	}
	s.mux.HandleFunc("GET /v1/sessions", sessionsHandler.List)
	s.mux.HandleFunc("POST /v1/sessions", sessionsHandler.Create)
	s.mux.HandleFunc("GET /v1/sessions/{id}", sessionsHandler.Get)
	s.mux.HandleFunc("PUT /v1/sessions/{id}", sessionsHandler.Update)
	s.mux.HandleFunc("DELETE /v1/sessions/{id}", sessionsHandler.Delete)

	s.mux.Handle("POST /v1/analyze/form", handlers.AnalyzeFormHandler{
		Analyzer: s.deps.Orchestrator,
		Logger:   s.logger,
	})
	s.mux.Handle("POST /v1/analyze/problem", handlers.AnalyzeProblemHandler{
		Analyzer: s.deps.Orchestrator,
		Logger:   s.logger,
	})
	s.mux.Handle("GET /v1/offices", handlers.OfficesHandler{
		Analyzer: s.deps.Orchestrator,
		Logger:   s.logger,
	})

	s.mux.Handle("POST /v1/chat", handlers.ChatHandler{
		Orchestrator:    s.deps.Orchestrator,
		Repo:            s.deps.Repo,
		DefaultLanguage: s.cfg.DefaultLanguage,
		PingInterval:    s.cfg.SSEPingInterval,
		Logger:          s.logger,
	})

	vaultHandler := handlers.VaultHandler{Vault: s.deps.Vault, Logger: s.logger}
	s.mux.HandleFunc("GET /v1/vault", vaultHandler.List)
	s.mux.HandleFunc("POST /v1/vault/{id}/fetch", vaultHandler.Fetch)

	s.mux.Handle("GET /v1/live", handlers.LiveHandler{
		Connector:          s.deps.Connector,
		Tracker:            s.tracker,
		Repo:               s.deps.Repo,
		Voice:              s.cfg.Voice,
		DefaultLanguage:    s.cfg.DefaultLanguage,
		PlaybackLookahead:  s.cfg.LivePlaybackLookahead,
		FrameInterval:      s.cfg.LiveFrameInterval,
		ReconnectDelay:     s.cfg.LiveReconnectDelay,
		PingInterval:       s.cfg.LiveWSPingInterval,
		WriteTimeout:       s.cfg.LiveWSWriteTimeout,
		MaxAudioFrameBytes: s.cfg.LiveMaxAudioFrameBytes,
		Logger:             s.logger,
	})
}

func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = mw.CORS(s.cfg.CORSAllowedOrigins, h)
	h = mw.Recover(s.logger, h)
	h = mw.AccessLog(s.logger, h)
	h = mw.RequestID(h)
	return h
}

// DrainLiveSessions warns every open voice session, stops them, and waits for
// teardown or ctx expiry. Used during graceful shutdown.
func (s *Server) DrainLiveSessions(ctx context.Context) {
	if warned := s.tracker.WarnAll("shutting_down", "server is restarting"); warned > 0 {
		s.logger.Info("warned live sessions", "count", warned)
	}
	s.tracker.StopAll()
	if !s.tracker.Wait(ctx) {
		s.logger.Warn("live sessions did not drain before deadline", "remaining", s.tracker.Count())
	}
}
