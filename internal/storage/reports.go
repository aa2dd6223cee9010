package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/woozymasta/vigil/internal/models"
)

type reportRow struct {
	ReportedPlayer sql.NullString `db:"reported_player"`
	ReporterPlayer sql.NullString `db:"reporter_player"`
	Reason         sql.NullString `db:"reason"`
	Location       sql.NullString `db:"location"`
	ID             int64          `db:"id"`
}

// GetPlayerReports returns all open reports, newest id first.
func (r *Repository) GetPlayerReports(ctx context.Context) ([]models.PlayerReport, error) {
	var rows []reportRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, reported_player, reporter_player, reason, location
		FROM player_reports
		ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("select player reports: %w", err)
	}

	reports := make([]models.PlayerReport, 0, len(rows))
	for _, row := range rows {
		reports = append(reports, models.PlayerReport{
			ID:             row.ID,
			ReportedPlayer: row.ReportedPlayer.String,
			ReporterPlayer: row.ReporterPlayer.String,
			Reason:         row.Reason.String,
			Location:       row.Location.String,
		})
	}

	return reports, nil
}

// DeletePlayerReport closes a report by deleting it. Unknown ids are ignored.
func (r *Repository) DeletePlayerReport(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM player_reports WHERE id = ?"), id); err != nil {
		return fmt.Errorf("delete player report %d: %w", id, err)
	}

	return nil
}
