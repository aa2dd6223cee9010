// Package storage owns the connection pool to the fleet database and the queries
// behind every dashboard read and mutation.
package storage

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // Driver pgx
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // Driver sqlite
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Config holds database configuration.
type Config struct {
	// betteralign:ignore

	Driver          string        `long:"driver" env:"DRIVER" description:"Database driver" choice:"sqlite" choice:"mysql" choice:"postgres" default:"sqlite"`
	DSN             string        `long:"dsn" env:"DSN" description:"Full data source name, overrides path/host/port/user/password/name"`
	Path            string        `short:"d" long:"path" env:"PATH" description:"Path to SQLite database" default:"vigil.db"`
	Host            string        `long:"host" env:"HOST" description:"Database host" default:"127.0.0.1"`
	Port            int           `long:"port" env:"PORT" description:"Database port, 0 uses the driver default"`
	User            string        `long:"user" env:"USER" description:"Database user" default:"vigil"`
	Password        string        `long:"password" env:"PASSWORD" description:"Database password"`
	Name            string        `long:"name" env:"NAME" description:"Database (schema) name" default:"vigil"`
	MaxOpenConns    int           `long:"max-open-conns" env:"MAX_OPEN_CONNS" description:"Max open connections in the pool" default:"10"`
	MaxIdleConns    int           `long:"max-idle-conns" env:"MAX_IDLE_CONNS" description:"Max idle connections in the pool" default:"5"`
	ConnMaxLifetime time.Duration `long:"conn-max-lifetime" env:"CONN_MAX_LIFETIME" description:"Max lifetime of a pooled connection" default:"1h"`
	Migrate         bool          `long:"migrate" env:"MIGRATE" description:"Apply embedded schema migrations (always on for sqlite)"`
}

// Validate checks that the configuration can produce a data source name.
func (c Config) Validate() error {
	switch c.Driver {
	case DriverSQLite:
		if c.DSN == "" && c.Path == "" {
			return fmt.Errorf("sqlite driver requires a database path")
		}
	case DriverMySQL, DriverPostgres:
		if c.DSN == "" && c.Host == "" {
			return fmt.Errorf("%s driver requires a host or a dsn", c.Driver)
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Driver)
	}

	return nil
}

// DataSource returns the database/sql driver name and DSN for the configuration.
func (c Config) DataSource() (string, string) {
	switch c.Driver {
	case DriverMySQL:
		if c.DSN != "" {
			return "mysql", c.DSN
		}
		mc := mysql.NewConfig()
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.port()))
		mc.User = c.User
		mc.Passwd = c.Password
		mc.DBName = c.Name
		mc.ParseTime = true
		mc.Loc = time.UTC
		mc.Params = map[string]string{"time_zone": "'+00:00'"}
		mc.MultiStatements = c.Migrate
		return "mysql", mc.FormatDSN()

	case DriverPostgres:
		if c.DSN != "" {
			return "pgx", c.DSN
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.User, c.Password),
			Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.port())),
			Path:     "/" + c.Name,
			RawQuery: "sslmode=disable",
		}
		return "pgx", u.String()

	default:
		if c.DSN != "" {
			return "sqlite", c.DSN
		}
		return "sqlite", c.Path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_time_format=sqlite"
	}
}

func (c Config) port() int {
	if c.Port > 0 {
		return c.Port
	}
	if c.Driver == DriverPostgres {
		return 5432
	}

	return 3306
}

// Option customizes a Repository.
type Option func(*Repository)

// WithClock replaces the wall clock used for uptime, remaining ban time and the series window.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

// WithLocation sets the timezone used to render ban start times.
func WithLocation(loc *time.Location) Option {
	return func(r *Repository) {
		if loc != nil {
			r.loc = loc
		}
	}
}

// Repository manages the pooled database handle shared by every reader and mutation.
type Repository struct {
	db     *sqlx.DB
	now    func() time.Time
	loc    *time.Location
	driver string
}

// New opens the connection pool, tunes it, verifies connectivity and applies migrations when enabled.
// It is meant to be called once at startup; the returned Repository is safe for concurrent use.
func New(cfg Config, opts ...Option) (*Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	driverName, dsn := cfg.DataSource()
	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", cfg.Driver, err)
	}

	if cfg.Driver == DriverSQLite || cfg.Migrate {
		if err := runMigrations(ctx, db, cfg.Driver); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	r := &Repository{db: db, now: time.Now, loc: time.UTC, driver: cfg.Driver}
	for _, opt := range opts {
		opt(r)
	}

	log.Debug().
		Str("driver", cfg.Driver).
		Int("max_open", cfg.MaxOpenConns).
		Msg("Database pool ready")

	return r, nil
}

// DB returns the shared pool handle.
func (r *Repository) DB() *sqlx.DB {
	return r.db
}

// Driver returns the configured driver name.
func (r *Repository) Driver() string {
	return r.driver
}

// Ping checks that the store is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the underlying database pool.
func (r *Repository) Close() error {
	return r.db.Close()
}
