package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/woozymasta/vigil/internal/models"
	"github.com/woozymasta/vigil/internal/timefmt"
)

type serverRow struct {
	ServerName    sql.NullString `db:"server_name"`
	Template      sql.NullString `db:"template"`
	StartedAt     sql.NullTime   `db:"started_at"`
	OnlinePlayers sql.NullInt64  `db:"online_players"`
	MaxPlayers    sql.NullInt64  `db:"max_players"`
	ID            int64          `db:"id"`
	IsOnline      sql.NullBool   `db:"is_online"`
}

// GetServers returns the roster sorted by name. Uptime is computed against the
// repository clock on every call; a server without a start time reports zero uptime.
func (r *Repository) GetServers(ctx context.Context) ([]models.Server, error) {
	var rows []serverRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, server_name, template, is_online, online_players, max_players, started_at
		FROM servers
		ORDER BY server_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("select servers: %w", err)
	}

	now := r.now()
	servers := make([]models.Server, 0, len(rows))
	for _, row := range rows {
		status := models.StatusOffline
		if row.IsOnline.Bool {
			status = models.StatusOnline
		}

		uptime := timefmt.Zero
		if row.StartedAt.Valid {
			uptime = timefmt.Duration(now.Sub(row.StartedAt.Time))
		}

		servers = append(servers, models.Server{
			ID:            row.ID,
			ServerName:    row.ServerName.String,
			Template:      row.Template.String,
			Status:        status,
			OnlinePlayers: row.OnlinePlayers.Int64,
			MaxPlayers:    row.MaxPlayers.Int64,
			Uptime:        uptime,
		})
	}

	return servers, nil
}

// GetServerTemplates returns all template names in ascending order.
func (r *Repository) GetServerTemplates(ctx context.Context) ([]string, error) {
	templates := []string{}
	if err := r.db.SelectContext(ctx, &templates,
		"SELECT name FROM server_templates ORDER BY name ASC"); err != nil {
		return nil, fmt.Errorf("select server templates: %w", err)
	}

	return templates, nil
}
