package storage

import (
	"context"
	"fmt"
	"time"
)

// The tables written here are owned by the game-server fleet in production.
// These helpers exist for local seeding and fixtures only.

// ServerSeed describes a roster row to insert.
type ServerSeed struct {
	StartedAt     *time.Time
	ServerName    string
	Template      string
	OnlinePlayers int
	MaxPlayers    int
	IsOnline      bool
}

// InsertServer adds a roster row.
func (r *Repository) InsertServer(ctx context.Context, s ServerSeed) error {
	var started any
	if s.StartedAt != nil {
		started = s.StartedAt.UTC()
	}

	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO servers (server_name, template, is_online, online_players, max_players, started_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		s.ServerName, s.Template, s.IsOnline, s.OnlinePlayers, s.MaxPlayers, started)
	if err != nil {
		return fmt.Errorf("insert server %q: %w", s.ServerName, err)
	}

	return nil
}

// InsertServerTemplate adds a template name.
func (r *Repository) InsertServerTemplate(ctx context.Context, name string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind("INSERT INTO server_templates (name) VALUES (?)"), name); err != nil {
		return fmt.Errorf("insert server template %q: %w", name, err)
	}

	return nil
}

// InsertBanAt adds a ban with an explicit start time; nil stores no start time.
func (r *Repository) InsertBanAt(ctx context.Context, username, reason string, startedAt *time.Time, lengthMinutes int64) error {
	var started any
	if startedAt != nil {
		started = startedAt.UTC()
	}

	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO active_bans (username, reason, started_at, length_minutes)
		VALUES (?, ?, ?, ?)`),
		username, reason, started, lengthMinutes)
	if err != nil {
		return fmt.Errorf("insert ban for %q: %w", username, err)
	}

	return nil
}

// InsertPlayerReport files a report.
func (r *Repository) InsertPlayerReport(ctx context.Context, reported, reporter, reason, location string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO player_reports (reported_player, reporter_player, reason, location)
		VALUES (?, ?, ?, ?)`),
		reported, reporter, reason, location)
	if err != nil {
		return fmt.Errorf("insert player report: %w", err)
	}

	return nil
}

// InsertOnlinePlayersSample records one point of the online players series.
func (r *Repository) InsertOnlinePlayersSample(ctx context.Context, at time.Time, players int64) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		"INSERT INTO online_player_minutes (recorded_at, online_players) VALUES (?, ?)"),
		at.UTC(), players)
	if err != nil {
		return fmt.Errorf("insert online players sample: %w", err)
	}

	return nil
}

// ReplaceDashboardMetrics overwrites the single aggregate row.
func (r *Repository) ReplaceDashboardMetrics(ctx context.Context, activeServers, onlinePlayers, openReports int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM dashboard_metrics"); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear dashboard metrics: %w", err)
	}

	if _, err := tx.ExecContext(ctx, r.db.Rebind(
		"INSERT INTO dashboard_metrics (active_servers, online_players, open_reports) VALUES (?, ?, ?)"),
		activeServers, onlinePlayers, openReports); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert dashboard metrics: %w", err)
	}

	return tx.Commit()
}
