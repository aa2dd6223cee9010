// Package models defines the records served by the dashboard API.
package models

import "time"

// Server status labels.
const (
	StatusOnline  = "Online"
	StatusOffline = "Offline"
)

// DashboardMetrics is the single-row fleet aggregate shown on the overview cards.
type DashboardMetrics struct {
	ActiveServers int64 `json:"active_servers"`
	OnlinePlayers int64 `json:"online_players"`
	OpenReports   int64 `json:"open_reports"`
}

// OnlinePlayersPoint is one sample of the online players chart.
type OnlinePlayersPoint struct {
	Date          time.Time `json:"date"`
	OnlinePlayers int64     `json:"online_players"`
}

// Server is a game server from the fleet roster with its uptime computed at read time.
type Server struct {
	ServerName    string `json:"server_name"`
	Template      string `json:"template"`
	Status        string `json:"status"`
	Uptime        string `json:"uptime"`
	ID            int64  `json:"id"`
	OnlinePlayers int64  `json:"online_players"`
	MaxPlayers    int64  `json:"max_players"`
}

// ActiveBan is a ban row with its remaining time computed at read time.
// Bans whose remaining time reached zero stay listed until deleted.
type ActiveBan struct {
	StartedAt        *time.Time `json:"started_at,omitempty"`
	Username         string     `json:"username"`
	Reason           string     `json:"reason"`
	Start            string     `json:"start"`
	BanLength        string     `json:"ban_length"`
	CurrentLength    string     `json:"current_length"`
	ID               int64      `json:"id"`
	LengthMinutes    int64      `json:"length_minutes"`
	RemainingMinutes int64      `json:"remaining_minutes"`
}

// Expired reports whether the ban has been fully served at now.
// A ban without a start time has served nothing yet.
func (b ActiveBan) Expired(now time.Time) bool {
	if b.StartedAt == nil {
		return b.LengthMinutes <= 0
	}

	return !b.StartedAt.Add(time.Duration(b.LengthMinutes) * time.Minute).After(now)
}

// PlayerReport is an open report filed in game; closing it deletes the row.
type PlayerReport struct {
	ReportedPlayer string `json:"reported_player"`
	ReporterPlayer string `json:"reporter_player"`
	Reason         string `json:"reason"`
	Location       string `json:"location"`
	ID             int64  `json:"id"`
}

// NewBanRequest is the payload for creating a ban.
type NewBanRequest struct {
	Username      string  `json:"username"`
	Reason        string  `json:"reason"`
	LengthMinutes float64 `json:"length_minutes"`
}
