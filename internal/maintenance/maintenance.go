// Package maintenance provides one-shot database tasks run from the command line.
package maintenance

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/vigil/internal/config"
	"github.com/woozymasta/vigil/internal/models"
)

// BanStore is the ban access needed by the sweeper.
type BanStore interface {
	GetActiveBans(ctx context.Context) ([]models.ActiveBan, error)
	DeleteActiveBan(ctx context.Context, id int64) error
}

// Run checks if any maintenance flags are set and executes the corresponding task.
// Returns true if a maintenance task was executed (indicating the program should exit).
func Run(ctx context.Context, cfg *config.Config, store BanStore) bool {
	if !cfg.Tasks.PruneExpiredBans {
		return false
	}

	log.Info().Msg("Pruning expired bans...")
	deleted, err := PruneExpiredBans(ctx, store, time.Now())
	if err != nil {
		log.Error().Err(err).Int("deleted", deleted).Msg("Failed to prune expired bans")
	} else {
		log.Info().Int("deleted", deleted).Msg("Prune finished")
	}

	return true
}

// PruneExpiredBans deletes every ban whose end time is at or before now and returns how many were removed.
// Reads never expire bans on their own; this is the explicit sweeper.
func PruneExpiredBans(ctx context.Context, store BanStore, now time.Time) (int, error) {
	bans, err := store.GetActiveBans(ctx)
	if err != nil {
		return 0, err
	}

	var deleted int
	for _, ban := range bans {
		if !ban.Expired(now) {
			continue
		}

		if err := store.DeleteActiveBan(ctx, ban.ID); err != nil {
			return deleted, err
		}
		deleted++

		log.Debug().
			Int64("id", ban.ID).
			Str("username", ban.Username).
			Str("ban_length", ban.BanLength).
			Msg("Expired ban deleted")
	}

	return deleted, nil
}
