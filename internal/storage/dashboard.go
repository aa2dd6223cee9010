package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/woozymasta/vigil/internal/models"
)

// SeriesWindow is how far back the online players chart reaches.
const SeriesWindow = 90 * 24 * time.Hour

type metricsRow struct {
	ActiveServers sql.NullInt64 `db:"active_servers"`
	OnlinePlayers sql.NullInt64 `db:"online_players"`
	OpenReports   sql.NullInt64 `db:"open_reports"`
}

type onlinePlayersRow struct {
	RecordedAt    sql.NullTime  `db:"recorded_at"`
	OnlinePlayers sql.NullInt64 `db:"online_players"`
}

// GetDashboardMetrics reads the single aggregate row; a missing row or null columns read as zero.
func (r *Repository) GetDashboardMetrics(ctx context.Context) (models.DashboardMetrics, error) {
	var row metricsRow
	err := r.db.GetContext(ctx, &row,
		"SELECT active_servers, online_players, open_reports FROM dashboard_metrics LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return models.DashboardMetrics{}, nil
	}
	if err != nil {
		return models.DashboardMetrics{}, fmt.Errorf("select dashboard metrics: %w", err)
	}

	return models.DashboardMetrics{
		ActiveServers: row.ActiveServers.Int64,
		OnlinePlayers: row.OnlinePlayers.Int64,
		OpenReports:   row.OpenReports.Int64,
	}, nil
}

// GetOnlinePlayersSeries returns the samples of the trailing SeriesWindow in ascending time order.
// An empty window yields a single zero sample at the current instant so the chart always has a point.
func (r *Repository) GetOnlinePlayersSeries(ctx context.Context) ([]models.OnlinePlayersPoint, error) {
	now := r.now().UTC()

	var rows []onlinePlayersRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT recorded_at, online_players
		FROM online_player_minutes
		WHERE recorded_at >= ?
		ORDER BY recorded_at ASC`), now.Add(-SeriesWindow))
	if err != nil {
		return nil, fmt.Errorf("select online players series: %w", err)
	}

	if len(rows) == 0 {
		return []models.OnlinePlayersPoint{{Date: now, OnlinePlayers: 0}}, nil
	}

	points := make([]models.OnlinePlayersPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, models.OnlinePlayersPoint{
			Date:          row.RecordedAt.Time.UTC(),
			OnlinePlayers: row.OnlinePlayers.Int64,
		})
	}

	return points, nil
}
