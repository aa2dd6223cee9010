// Package dashboard implements the operations behind the dashboard pages:
// concurrent page loads and the validated ban/report mutations.
package dashboard

import (
	"context"

	"github.com/woozymasta/vigil/internal/models"
	"golang.org/x/sync/errgroup"
)

// Store is the data access the dashboard depends on.
type Store interface {
	GetDashboardMetrics(ctx context.Context) (models.DashboardMetrics, error)
	GetOnlinePlayersSeries(ctx context.Context) ([]models.OnlinePlayersPoint, error)
	GetServers(ctx context.Context) ([]models.Server, error)
	GetServerTemplates(ctx context.Context) ([]string, error)
	GetActiveBans(ctx context.Context) ([]models.ActiveBan, error)
	CreateActiveBan(ctx context.Context, username, reason string, lengthMinutes int64) error
	DeleteActiveBan(ctx context.Context, id int64) error
	GetPlayerReports(ctx context.Context) ([]models.PlayerReport, error)
	DeletePlayerReport(ctx context.Context, id int64) error
}

// Service runs dashboard reads and mutations against a Store.
type Service struct {
	store Store
}

// New returns a Service backed by store.
func New(store Store) *Service {
	return &Service{store: store}
}

// Overview is the landing page: fleet cards, the online players chart and the roster.
type Overview struct {
	Series    []models.OnlinePlayersPoint `json:"online_players"`
	Servers   []models.Server             `json:"servers"`
	Templates []string                    `json:"templates"`
	Metrics   models.DashboardMetrics     `json:"metrics"`
}

// ServersPage is the roster with its template filter values.
type ServersPage struct {
	Servers   []models.Server `json:"servers"`
	Templates []string        `json:"templates"`
}

// BansReportsPage lists active bans next to open reports.
type BansReportsPage struct {
	Bans    []models.ActiveBan    `json:"bans"`
	Reports []models.PlayerReport `json:"reports"`
}

// Overview loads every part of the landing page concurrently.
// Each part is an independent snapshot; the first failure cancels the rest.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	var page Overview
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		page.Metrics, err = s.store.GetDashboardMetrics(ctx)
		return err
	})
	g.Go(func() (err error) {
		page.Series, err = s.store.GetOnlinePlayersSeries(ctx)
		return err
	})
	g.Go(func() (err error) {
		page.Servers, err = s.store.GetServers(ctx)
		return err
	})
	g.Go(func() (err error) {
		page.Templates, err = s.store.GetServerTemplates(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &page, nil
}

// ServersPage loads the roster and templates concurrently.
func (s *Service) ServersPage(ctx context.Context) (*ServersPage, error) {
	var page ServersPage
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		page.Servers, err = s.store.GetServers(ctx)
		return err
	})
	g.Go(func() (err error) {
		page.Templates, err = s.store.GetServerTemplates(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &page, nil
}

// BansReportsPage loads bans and reports concurrently.
func (s *Service) BansReportsPage(ctx context.Context) (*BansReportsPage, error) {
	var page BansReportsPage
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		page.Bans, err = s.store.GetActiveBans(ctx)
		return err
	})
	g.Go(func() (err error) {
		page.Reports, err = s.store.GetPlayerReports(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &page, nil
}

// Metrics returns the fleet aggregate.
func (s *Service) Metrics(ctx context.Context) (models.DashboardMetrics, error) {
	return s.store.GetDashboardMetrics(ctx)
}

// OnlinePlayers returns the chart series.
func (s *Service) OnlinePlayers(ctx context.Context) ([]models.OnlinePlayersPoint, error) {
	return s.store.GetOnlinePlayersSeries(ctx)
}

// Templates returns the template names.
func (s *Service) Templates(ctx context.Context) ([]string, error) {
	return s.store.GetServerTemplates(ctx)
}

// ActiveBans returns all bans.
func (s *Service) ActiveBans(ctx context.Context) ([]models.ActiveBan, error) {
	return s.store.GetActiveBans(ctx)
}

// PlayerReports returns all open reports.
func (s *Service) PlayerReports(ctx context.Context) ([]models.PlayerReport, error) {
	return s.store.GetPlayerReports(ctx)
}
