package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/woozymasta/vigil/internal/models"
	"github.com/woozymasta/vigil/internal/timefmt"
)

type banRow struct {
	Username      sql.NullString `db:"username"`
	Reason        sql.NullString `db:"reason"`
	StartedAt     sql.NullTime   `db:"started_at"`
	LengthMinutes sql.NullInt64  `db:"length_minutes"`
	ID            int64          `db:"id"`
}

// GetActiveBans returns every ban row, most recently started first.
// Expired bans are included with zero remaining time.
func (r *Repository) GetActiveBans(ctx context.Context) ([]models.ActiveBan, error) {
	var rows []banRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, username, reason, started_at, length_minutes
		FROM active_bans
		ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("select active bans: %w", err)
	}

	now := r.now()
	bans := make([]models.ActiveBan, 0, len(rows))
	for _, row := range rows {
		bans = append(bans, r.toActiveBan(row, now))
	}

	return bans, nil
}

func (r *Repository) toActiveBan(row banRow, now time.Time) models.ActiveBan {
	length := row.LengthMinutes.Int64

	ban := models.ActiveBan{
		ID:            row.ID,
		Username:      row.Username.String,
		Reason:        row.Reason.String,
		Start:         timefmt.NoStart,
		LengthMinutes: length,
		BanLength:     timefmt.Minutes(float64(length)),
	}

	var elapsed float64
	if row.StartedAt.Valid && row.StartedAt.Time.Unix() > 0 {
		started := row.StartedAt.Time
		ban.StartedAt = &started
		ban.Start = timefmt.BanStart(started, r.loc)
		elapsed = now.Sub(started).Minutes()
	}

	ban.RemainingMinutes = RemainingMinutes(length, elapsed)
	ban.CurrentLength = timefmt.Minutes(float64(ban.RemainingMinutes))

	return ban
}

// RemainingMinutes is max(0, floor(length - elapsed)).
func RemainingMinutes(lengthMinutes int64, elapsedMinutes float64) int64 {
	remaining := math.Floor(float64(lengthMinutes) - elapsedMinutes)
	if remaining <= 0 || math.IsNaN(remaining) {
		return 0
	}

	return int64(remaining)
}

// CreateActiveBan inserts a ban starting at the store's current time.
// Several bans for the same username may coexist.
func (r *Repository) CreateActiveBan(ctx context.Context, username, reason string, lengthMinutes int64) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO active_bans (username, reason, started_at, length_minutes)
		VALUES (?, ?, CURRENT_TIMESTAMP, ?)`),
		username, reason, lengthMinutes)
	if err != nil {
		return fmt.Errorf("insert active ban: %w", err)
	}

	return nil
}

// DeleteActiveBan removes a ban by id. Deleting an unknown id is not an error.
func (r *Repository) DeleteActiveBan(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM active_bans WHERE id = ?"), id); err != nil {
		return fmt.Errorf("delete active ban %d: %w", id, err)
	}

	return nil
}
