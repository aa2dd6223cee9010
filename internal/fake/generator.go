// Package fake seeds a development database with randomized fleet data.
package fake

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/vigil/internal/storage"
)

// SampleInterval is the spacing of generated online players samples.
const SampleInterval = 30 * time.Minute

var (
	templates = []string{"survival", "creative", "pvp", "skyblock", "minigames"}
	regions   = []string{"eu", "na", "asia", "oce", "sa"}
	names     = []string{"Steve", "Alex", "Notch", "Herobrine", "Jeb", "Dinnerbone", "Grumm", "Kai", "Sunny", "Zuri"}
	reasons   = []string{"griefing", "x-ray", "fly hack", "spam", "toxic chat", "duping", "afk farming"}
	locations = []string{"spawn", "nether", "the end", "market", "arena", "lobby"}
)

// GenerateData populates the store with count servers, bans and reports, every
// template, 90 days of online player samples and a matching metrics row.
func GenerateData(ctx context.Context, store *storage.Repository, count int) error {
	now := time.Now().UTC()

	for _, name := range templates {
		if err := store.InsertServerTemplate(ctx, name); err != nil {
			log.Warn().Err(err).Str("template", name).Msg("Failed to generate template")
		}
	}

	var activeServers, onlinePlayers int64
	for i := 0; i < count; i++ {
		online := rand.Float32() < 0.8
		maxPlayers := 20 + rand.Intn(5)*20

		seed := storage.ServerSeed{
			ServerName: fmt.Sprintf("%s-%s-%02d", regions[rand.Intn(len(regions))], templates[rand.Intn(len(templates))], i+1),
			Template:   templates[rand.Intn(len(templates))],
			IsOnline:   online,
			MaxPlayers: maxPlayers,
		}
		if online {
			started := now.Add(-time.Duration(rand.Intn(14*24*60)) * time.Minute)
			seed.StartedAt = &started
			seed.OnlinePlayers = rand.Intn(maxPlayers + 1)
			activeServers++
			onlinePlayers += int64(seed.OnlinePlayers)
		}

		if err := store.InsertServer(ctx, seed); err != nil {
			return err
		}
	}

	for i := 0; i < count; i++ {
		started := now.Add(-time.Duration(rand.Intn(3*24*60)) * time.Minute)
		lengths := []int64{30, 60, 90, 1440, 10080}
		if err := store.InsertBanAt(ctx, randomName(), reasons[rand.Intn(len(reasons))], &started, lengths[rand.Intn(len(lengths))]); err != nil {
			return err
		}

		if err := store.InsertPlayerReport(ctx, randomName(), randomName(),
			reasons[rand.Intn(len(reasons))], locations[rand.Intn(len(locations))]); err != nil {
			return err
		}
	}

	// Daily wave around the current fleet size
	for at := now.Add(-storage.SeriesWindow); at.Before(now); at = at.Add(SampleInterval) {
		hour := float64(at.Hour()) + float64(at.Minute())/60
		wave := 0.6 + 0.4*math.Sin((hour-6)/24*2*math.Pi)
		players := int64(float64(onlinePlayers) * wave * (0.9 + rand.Float64()*0.2))
		if err := store.InsertOnlinePlayersSample(ctx, at, players); err != nil {
			return err
		}
	}

	if err := store.ReplaceDashboardMetrics(ctx, activeServers, onlinePlayers, int64(count)); err != nil {
		return err
	}

	log.Info().
		Int("servers", count).
		Int64("active_servers", activeServers).
		Int64("online_players", onlinePlayers).
		Msg("Fake data generated")

	return nil
}

func randomName() string {
	return fmt.Sprintf("%s%d", names[rand.Intn(len(names))], rand.Intn(1000))
}
