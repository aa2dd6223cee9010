package server

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/woozymasta/vigil/internal/dashboard"
	"github.com/woozymasta/vigil/internal/models"
	"github.com/woozymasta/vigil/internal/vars"
)

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError writes {"error": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// storeFailure logs err and answers 500 without leaking the cause.
func storeFailure(w http.ResponseWriter, r *http.Request, err error, msg string) {
	zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg(msg)
	writeError(w, http.StatusInternalServerError, "Database Error")
}

// pathID parses the {id} path value; anything unparsable becomes NaN,
// which the dashboard treats as a no-op.
func pathID(r *http.Request) float64 {
	id, err := strconv.ParseFloat(r.PathValue("id"), 64)
	if err != nil {
		return math.NaN()
	}

	return id
}

// handleOverview returns the landing page data.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	page, err := s.dash.Overview(r.Context())
	if err != nil {
		storeFailure(w, r, err, "Failed to load overview")
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := s.dash.Metrics(r.Context())
	if err != nil {
		storeFailure(w, r, err, "Failed to load metrics")
		return
	}

	writeJSON(w, http.StatusOK, metrics)
}

func (s *Server) handleOnlinePlayers(w http.ResponseWriter, r *http.Request) {
	series, err := s.dash.OnlinePlayers(r.Context())
	if err != nil {
		storeFailure(w, r, err, "Failed to load online players series")
		return
	}

	writeJSON(w, http.StatusOK, series)
}

// handleServers returns the roster with template filter values.
func (s *Server) handleServers(w http.ResponseWriter, r *http.Request) {
	page, err := s.dash.ServersPage(r.Context())
	if err != nil {
		storeFailure(w, r, err, "Failed to load servers")
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.dash.Templates(r.Context())
	if err != nil {
		storeFailure(w, r, err, "Failed to load templates")
		return
	}

	writeJSON(w, http.StatusOK, templates)
}

// handleBansReports returns active bans and open reports.
func (s *Server) handleBansReports(w http.ResponseWriter, r *http.Request) {
	page, err := s.dash.BansReportsPage(r.Context())
	if err != nil {
		storeFailure(w, r, err, "Failed to load bans and reports")
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	reports, err := s.dash.PlayerReports(r.Context())
	if err != nil {
		storeFailure(w, r, err, "Failed to load reports")
		return
	}

	writeJSON(w, http.StatusOK, reports)
}

// handleAddBan creates a ban and returns the refreshed list.
// Invalid input answers 422 with the reason and the unchanged list.
func (s *Server) handleAddBan(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)

	var req models.NewBanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		zerolog.Ctx(r.Context()).Debug().Err(err).Msg("Invalid ban payload")
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	bans, err := s.dash.AddActiveBan(r.Context(), req.Username, req.Reason, req.LengthMinutes)

	var verr *dashboard.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error": verr.Error(),
			"bans":  bans,
		})
	case err != nil:
		storeFailure(w, r, err, "Failed to add ban")
	default:
		writeJSON(w, http.StatusCreated, bans)
	}
}

// handleUnban deletes a ban and returns the refreshed list.
func (s *Server) handleUnban(w http.ResponseWriter, r *http.Request) {
	if err := s.dash.UnbanActiveBan(r.Context(), pathID(r)); err != nil {
		storeFailure(w, r, err, "Failed to unban")
		return
	}

	bans, err := s.dash.ActiveBans(r.Context())
	if err != nil {
		storeFailure(w, r, err, "Failed to load bans")
		return
	}

	writeJSON(w, http.StatusOK, bans)
}

// handleCloseReport deletes a report and returns the refreshed list.
func (s *Server) handleCloseReport(w http.ResponseWriter, r *http.Request) {
	if err := s.dash.ClosePlayerReport(r.Context(), pathID(r)); err != nil {
		storeFailure(w, r, err, "Failed to close report")
		return
	}

	reports, err := s.dash.PlayerReports(r.Context())
	if err != nil {
		storeFailure(w, r, err, "Failed to load reports")
		return
	}

	writeJSON(w, http.StatusOK, reports)
}

// handleServerQuery performs a live A2S query to a specific game server.
// Query params: ?ip=1.2.3.4&port=2302
func (s *Server) handleServerQuery(w http.ResponseWriter, r *http.Request) {
	ip := r.URL.Query().Get("ip")
	portStr := r.URL.Query().Get("port")

	if ip == "" || portStr == "" {
		writeError(w, http.StatusBadRequest, "Missing ip or port")
		return
	}
	if net.ParseIP(ip) == nil {
		writeError(w, http.StatusBadRequest, "Invalid ip")
		return
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		writeError(w, http.StatusBadRequest, "Invalid port")
		return
	}

	probe, err := s.probe(ip, port, s.a2sOptions)
	if err != nil {
		zerolog.Ctx(r.Context()).Debug().Err(err).Str("ip", ip).Int("port", port).Msg("A2S query failed")
		writeError(w, http.StatusGatewayTimeout, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, probe)
}

// handleHealth reports store reachability and build info.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"build":  vars.Info(),
	})
}
