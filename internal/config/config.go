// Package config handles the parsing and validation of application configuration
// from command-line arguments and environment variables.
package config

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata" // Timezones for --timezone on hosts without zoneinfo

	"github.com/jessevdk/go-flags"
	"github.com/woozymasta/vigil/internal/logger"
	"github.com/woozymasta/vigil/internal/storage"
	"github.com/woozymasta/vigil/internal/vars"
)

// Config represents the complete application flags configuration.
type Config struct {
	// betteralign:ignore

	Server    Server         `group:"Server Options" env-namespace:"VIGIL"`
	Storage   storage.Config `group:"Storage Options" namespace:"db" env-namespace:"VIGIL_DB"`
	Tasks     Tasks          `group:"Maintenance Options" namespace:"db"`
	RateLimit RateLimit      `group:"Rate Limit Options" namespace:"rate-limit" env-namespace:"VIGIL_RATE_LIMIT"`
	A2S       A2S            `group:"A2S Options" namespace:"a2s" env-namespace:"VIGIL_A2S"`
	Logger    logger.Config  `group:"Logger Options" namespace:"log" env-namespace:"VIGIL_LOG"`

	Version bool `short:"v" long:"version" description:"Print version and build info"`
}

// Server holds web server configuration.
type Server struct {
	// betteralign:ignore

	Address     string        `short:"l" long:"address" env:"LISTEN_ADDRESS" description:"Server listen address" default:":8080"`
	AuthToken   string        `short:"t" long:"auth-token" env:"AUTH_TOKEN" description:"Optional bearer token required by the API, empty disables auth"`
	Timezone    string        `long:"timezone" env:"TIMEZONE" description:"IANA timezone used to render ban start times" default:"UTC"`
	MaxBodySize int64         `long:"max-body-size" env:"MAX_BODY_SIZE" description:"Max body size for incoming requests" default:"4096"`
	Timeout     time.Duration `long:"timeout" env:"TIMEOUT" description:"Read and write timeout of HTTP requests" default:"15s"`
	TrustProxy  bool          `long:"trust-proxy" env:"TRUST_PROXY" description:"Trust X-Forwarded-For headers"`
}

// Tasks holds one-shot maintenance commands; when any is set the process runs it and exits.
type Tasks struct {
	// betteralign:ignore

	PruneExpiredBans bool `long:"prune-expired-bans" description:"Delete bans whose remaining time reached zero and exit"`
	GenerateCount    int  `long:"gen-fake-data" description:"Seed the database with N fake rows per table and exit" hidden:"true"`
}

// A2S holds Source Query protocol configuration for live server probes.
type A2S struct {
	// betteralign:ignore

	Timeout    time.Duration `long:"timeout" env:"TIMEOUT" description:"Query timeout" default:"3s"`
	BufferSize uint16        `long:"buffer-size" env:"BUFFER_SIZE" description:"Response body buffer size" default:"1400"`
}

// RateLimit holds limits applied to mutating API calls.
type RateLimit struct {
	// betteralign:ignore

	Count  int           `long:"count" env:"COUNT" description:"Mutations allowed per IP within the window" default:"30"`
	Window time.Duration `long:"window" env:"WINDOW" description:"Rate limit window duration" default:"1m"`
}

// Location resolves the configured timezone, falling back to UTC.
func (s Server) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}

	return loc
}

// Parse reads the configuration from flags and environment variables.
// It terminates the application if the configuration is invalid or if the help flag is invoked.
func Parse() *Config {
	cfg, err := ParseArgs(os.Args[1:])
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, flagsErr.Message)
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if cfg.Version {
		vars.Print()
		os.Exit(0)
	}

	return cfg
}

// ParseArgs parses args and the environment into a validated Config.
func ParseArgs(args []string) (*Config, error) {
	var cfg Config
	parser := flags.NewParser(&cfg, flags.HelpFlag|flags.PassDoubleDash)
	parser.NamespaceDelimiter = "-"

	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	if cfg.Version {
		return &cfg, nil
	}

	if err := cfg.Storage.Validate(); err != nil {
		return nil, err
	}
	if cfg.RateLimit.Count <= 0 || cfg.RateLimit.Window <= 0 {
		return nil, fmt.Errorf("rate limit count and window must be positive")
	}
	if _, err := time.LoadLocation(cfg.Server.Timezone); err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Server.Timezone, err)
	}

	return &cfg, nil
}
