package server

import (
	"context"
	"time"

	"github.com/woozymasta/vigil/internal/config"
	"github.com/woozymasta/vigil/internal/dashboard"
	"github.com/woozymasta/vigil/internal/game"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProbeFunc queries a live game server.
type ProbeFunc func(ip string, port int, options config.A2S) (*game.Probe, error)

// Server holds the dependencies and configuration required to serve the dashboard API.
type Server struct {
	// dash runs page loads and mutations against the store.
	dash *dashboard.Service

	// store is pinged by the health endpoint.
	store Pinger

	// probe performs live A2S queries; replaced in tests.
	probe ProbeFunc

	// shutdown stops background routines such as the rate limiter cleanup.
	shutdown chan struct{}

	// authToken, when set, must be presented as a Bearer token on every /api request.
	authToken string

	// a2sOptions holds timeouts and buffer size for live probes.
	a2sOptions config.A2S

	// maxBody is the maximum accepted request body size in bytes.
	maxBody int64

	// rateLimitCount mutations are allowed per IP within rateLimitWin.
	rateLimitCount int
	rateLimitWin   time.Duration

	// trustProxy makes GetRealIP honor CF-Connecting-IP and X-Forwarded-For.
	trustProxy bool
}
