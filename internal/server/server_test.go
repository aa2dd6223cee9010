package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woozymasta/vigil/internal/config"
	"github.com/woozymasta/vigil/internal/dashboard"
	"github.com/woozymasta/vigil/internal/game"
	"github.com/woozymasta/vigil/internal/models"
	"github.com/woozymasta/vigil/internal/storage"
)

var fixedNow = time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	srv     *Server
	repo    *storage.Repository
	handler http.Handler
}

func newTestEnv(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()

	repo, err := storage.New(storage.Config{
		Driver:          storage.DriverSQLite,
		Path:            filepath.Join(t.TempDir(), "vigil.db"),
		MaxOpenConns:    4,
		ConnMaxLifetime: time.Hour,
	}, storage.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	cfg := &config.Config{
		Server:    config.Server{MaxBodySize: 4096},
		RateLimit: config.RateLimit{Count: 100, Window: time.Minute},
	}
	if mutate != nil {
		mutate(cfg)
	}

	srv := New(dashboard.New(repo), repo, cfg)
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, repo: repo, handler: srv.Handler()}
}

func (e *testEnv) do(t *testing.T, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}

	r := httptest.NewRequest(method, path, reader)
	for k, vs := range header {
		for _, v := range vs {
			r.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v), w.Body.String())
	return v
}

func TestOverview_EmptyStore(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/api/overview", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	page := decode[dashboard.Overview](t, w)
	assert.Zero(t, page.Metrics.ActiveServers)
	require.Len(t, page.Series, 1)
	assert.Zero(t, page.Series[0].OnlinePlayers)
	assert.True(t, page.Series[0].Date.Equal(fixedNow))
	assert.NotNil(t, page.Servers)
	assert.Empty(t, page.Servers)
	assert.Empty(t, page.Templates)
}

func TestServersAndTemplates(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	started := fixedNow.Add(-90 * time.Minute)

	require.NoError(t, env.repo.InsertServerTemplate(ctx, "survival"))
	require.NoError(t, env.repo.InsertServer(ctx, storage.ServerSeed{
		ServerName: "eu-1", Template: "survival", IsOnline: true, OnlinePlayers: 3, MaxPlayers: 20, StartedAt: &started,
	}))

	w := env.do(t, http.MethodGet, "/api/servers", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[dashboard.ServersPage](t, w)
	require.Len(t, page.Servers, 1)
	assert.Equal(t, "1h 30m", page.Servers[0].Uptime)
	assert.Equal(t, models.StatusOnline, page.Servers[0].Status)
	assert.Equal(t, []string{"survival"}, page.Templates)

	w = env.do(t, http.MethodGet, "/api/templates", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"survival"}, decode[[]string](t, w))
}

func TestETag(t *testing.T) {
	env := newTestEnv(t, nil)
	require.NoError(t, env.repo.ReplaceDashboardMetrics(context.Background(), 1, 2, 3))

	first := env.do(t, http.MethodGet, "/api/metrics", "", nil)
	require.Equal(t, http.StatusOK, first.Code)
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	metrics := decode[models.DashboardMetrics](t, first)
	assert.Equal(t, int64(3), metrics.OpenReports)

	second := env.do(t, http.MethodGet, "/api/metrics", "", http.Header{"If-None-Match": {etag}})
	assert.Equal(t, http.StatusNotModified, second.Code)
	assert.Empty(t, second.Body.String())

	require.NoError(t, env.repo.ReplaceDashboardMetrics(context.Background(), 1, 2, 4))
	third := env.do(t, http.MethodGet, "/api/metrics", "", http.Header{"If-None-Match": {etag}})
	assert.Equal(t, http.StatusOK, third.Code)
	assert.NotEqual(t, etag, third.Header().Get("ETag"))
}

func TestAddBan(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/bans", `{"username":" bob ","reason":" afk ","length_minutes":60}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	bans := decode[[]models.ActiveBan](t, w)
	require.Len(t, bans, 1)
	assert.Equal(t, "bob", bans[0].Username)
	assert.Equal(t, "afk", bans[0].Reason)
	assert.Equal(t, int64(60), bans[0].LengthMinutes)
	assert.Equal(t, "1h 0m", bans[0].BanLength)

	w = env.do(t, http.MethodPost, "/api/bans", `{"username":"","reason":"reason","length_minutes":60}`, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	rejected := decode[struct {
		Error string             `json:"error"`
		Bans  []models.ActiveBan `json:"bans"`
	}](t, w)
	assert.Contains(t, rejected.Error, "username")
	assert.Len(t, rejected.Bans, 1)

	w = env.do(t, http.MethodPost, "/api/bans", `{"username":"x","reason":"y"}`, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(t, http.MethodPost, "/api/bans", `{broken`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/bans", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[dashboard.BansReportsPage](t, w)
	assert.Len(t, page.Bans, 1)
	assert.Empty(t, page.Reports)
}

func TestUnban(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	started := fixedNow.Add(-time.Hour)
	require.NoError(t, env.repo.InsertBanAt(ctx, "carol", "x-ray", &started, 120))

	for _, id := range []string{"NaN", "abc", "99999", "1.5"} {
		w := env.do(t, http.MethodDelete, "/api/bans/"+id, "", nil)
		require.Equal(t, http.StatusOK, w.Code, id)
		assert.Len(t, decode[[]models.ActiveBan](t, w), 1, id)
	}

	bans, err := env.repo.GetActiveBans(ctx)
	require.NoError(t, err)
	require.Len(t, bans, 1)
	assert.Equal(t, int64(60), bans[0].RemainingMinutes)

	w := env.do(t, http.MethodDelete, "/api/bans/"+jsonInt(bans[0].ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]models.ActiveBan](t, w))
}

func TestCloseReport(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	require.NoError(t, env.repo.InsertPlayerReport(ctx, "griefer", "alice", "lava", "spawn"))
	require.NoError(t, env.repo.InsertPlayerReport(ctx, "cheater", "bob", "fly", "arena"))

	w := env.do(t, http.MethodGet, "/api/reports", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	reports := decode[[]models.PlayerReport](t, w)
	require.Len(t, reports, 2)
	assert.Equal(t, "cheater", reports[0].ReportedPlayer)

	w = env.do(t, http.MethodDelete, "/api/reports/"+jsonInt(reports[0].ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	remaining := decode[[]models.PlayerReport](t, w)
	require.Len(t, remaining, 1)
	assert.Equal(t, "griefer", remaining[0].ReportedPlayer)
}

func TestAuthToken(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) { cfg.Server.AuthToken = "s3cret" })

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/metrics", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodDelete, "/api/bans/1", "", http.Header{"Authorization": {"Bearer nope"}}).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/metrics", "", http.Header{"Authorization": {"Bearer s3cret"}}).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/healthz", "", nil).Code)
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) { cfg.RateLimit = config.RateLimit{Count: 2, Window: time.Hour} })

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, "/api/bans/1", "", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, "/api/reports/1", "", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, env.do(t, http.MethodDelete, "/api/bans/1", "", nil).Code)

	// reads are not limited
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/bans", "", nil).Code)
}

func TestServerQuery(t *testing.T) {
	env := newTestEnv(t, nil)
	env.srv.probe = func(ip string, port int, _ config.A2S) (*game.Probe, error) {
		if port == 2303 {
			return nil, errors.New("i/o timeout")
		}
		return &game.Probe{Name: "eu-1", Map: "chernarusplus", Players: 4, MaxPlayers: 60}, nil
	}
	h := env.srv.Handler()

	do := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	assert.Equal(t, http.StatusBadRequest, do("/api/a2s?ip=1.2.3.4").Code)
	assert.Equal(t, http.StatusBadRequest, do("/api/a2s?ip=not-an-ip&port=2302").Code)
	assert.Equal(t, http.StatusBadRequest, do("/api/a2s?ip=1.2.3.4&port=70000").Code)
	assert.Equal(t, http.StatusGatewayTimeout, do("/api/a2s?ip=1.2.3.4&port=2303").Code)

	w := do("/api/a2s?ip=1.2.3.4&port=2302")
	require.Equal(t, http.StatusOK, w.Code)
	probe := decode[game.Probe](t, w)
	assert.Equal(t, "eu-1", probe.Name)
	assert.Equal(t, 60, probe.MaxPlayers)
}

func TestHealthAndRequestID(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/healthz", "", http.Header{RequestIDHeader: {"req-123"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))

	w = env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	require.NoError(t, env.repo.Close())
	w = env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = env.do(t, http.MethodGet, "/api/overview", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Database Error", decode[map[string]string](t, w)["error"])
}

func TestGetRealIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	assert.Equal(t, "10.0.0.1", GetRealIP(r, false))
	assert.Equal(t, "203.0.113.7", GetRealIP(r, true))

	r.Header.Set("CF-Connecting-IP", "198.51.100.2")
	assert.Equal(t, "198.51.100.2", GetRealIP(r, true))
}

func jsonInt(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
