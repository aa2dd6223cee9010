// Package server implements the HTTP API, middleware, and request handlers of the dashboard.
package server

import (
	"net/http"

	"github.com/woozymasta/vigil/internal/config"
	"github.com/woozymasta/vigil/internal/dashboard"
	"github.com/woozymasta/vigil/internal/game"
)

// New creates a Server serving dash, using store for health checks.
func New(dash *dashboard.Service, store Pinger, cfg *config.Config) *Server {
	return &Server{
		dash:           dash,
		store:          store,
		probe:          game.QueryServer,
		a2sOptions:     cfg.A2S,
		authToken:      cfg.Server.AuthToken,
		maxBody:        cfg.Server.MaxBodySize,
		trustProxy:     cfg.Server.TrustProxy,
		rateLimitCount: cfg.RateLimit.Count,
		rateLimitWin:   cfg.RateLimit.Window,

		shutdown: make(chan struct{}),
	}
}

// Close stops background routines started by Handler.
func (s *Server) Close() {
	select {
	case <-s.shutdown:
	default:
		close(s.shutdown)
	}
}

// Handler configures the HTTP routes and returns the main handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	limit := s.RateLimitMiddleware()

	api := func(h http.HandlerFunc) http.Handler {
		return AdminAuthMiddleware(s.authToken, ETagMiddleware(h))
	}
	mutation := func(h http.HandlerFunc) http.Handler {
		return AdminAuthMiddleware(s.authToken, limit(h))
	}

	mux.Handle("GET /api/overview", api(s.handleOverview))
	mux.Handle("GET /api/metrics", api(s.handleMetrics))
	mux.Handle("GET /api/players/series", api(s.handleOnlinePlayers))
	mux.Handle("GET /api/servers", api(s.handleServers))
	mux.Handle("GET /api/templates", api(s.handleTemplates))
	mux.Handle("GET /api/bans", api(s.handleBansReports))
	mux.Handle("GET /api/reports", api(s.handleReports))
	mux.Handle("GET /api/a2s", AdminAuthMiddleware(s.authToken, limit(http.HandlerFunc(s.handleServerQuery))))

	mux.Handle("POST /api/bans", mutation(s.handleAddBan))
	mux.Handle("DELETE /api/bans/{id}", mutation(s.handleUnban))
	mux.Handle("DELETE /api/reports/{id}", mutation(s.handleCloseReport))

	mux.HandleFunc("GET /healthz", s.handleHealth)

	return RequestIDMiddleware(s.LoggingMiddleware(mux))
}
