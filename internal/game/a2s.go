// Package game probes live game servers using the Source Engine Query (A2S) protocol.
package game

import (
	"time"

	"github.com/woozymasta/a2s/pkg/a2s"
	"github.com/woozymasta/vigil/internal/config"
)

// Probe is the live state reported by a game server.
type Probe struct {
	QueriedAt   time.Time `json:"queried_at"`
	Name        string    `json:"name"`
	Map         string    `json:"map"`
	Game        string    `json:"game"`
	Version     string    `json:"version"`
	Environment string    `json:"environment"`
	Latency     string    `json:"latency"`
	Players     int       `json:"players"`
	MaxPlayers  int       `json:"max_players"`
}

// QueryServer connects to a game server via UDP and requests A2S_INFO.
func QueryServer(ip string, port int, options config.A2S) (*Probe, error) {
	client, err := a2s.New(ip, port)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Close() }()

	client.BufferSize = options.BufferSize
	client.Timeout = options.Timeout

	start := time.Now()
	info, err := client.GetInfo()
	if err != nil {
		return nil, err
	}

	return &Probe{
		QueriedAt:   start.UTC(),
		Name:        info.Name,
		Map:         info.Map,
		Game:        info.Game,
		Version:     info.Version,
		Environment: info.Environment.String(),
		Latency:     time.Since(start).Round(time.Millisecond).String(),
		Players:     int(info.Players),
		MaxPlayers:  int(info.MaxPlayers),
	}, nil
}
