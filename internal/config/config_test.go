package config

import (
	"testing"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs_Defaults(t *testing.T) {
	cfg, err := ParseArgs(nil)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "UTC", cfg.Server.Timezone)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "vigil.db", cfg.Storage.Path)
	assert.Equal(t, 10, cfg.Storage.MaxOpenConns)
	assert.Equal(t, time.Hour, cfg.Storage.ConnMaxLifetime)
	assert.Equal(t, 30, cfg.RateLimit.Count)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 3*time.Second, cfg.A2S.Timeout)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.False(t, cfg.Tasks.PruneExpiredBans)
}

func TestParseArgs_Flags(t *testing.T) {
	cfg, err := ParseArgs([]string{
		"--db-driver", "mysql",
		"--db-host", "db.internal",
		"--db-password", "secret",
		"--db-prune-expired-bans",
		"--rate-limit-count", "5",
		"--log-format", "json",
		"--timezone", "Europe/Berlin",
		"-t", "token",
	})
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Storage.Driver)
	assert.Equal(t, "db.internal", cfg.Storage.Host)
	assert.Equal(t, "secret", cfg.Storage.Password)
	assert.True(t, cfg.Tasks.PruneExpiredBans)
	assert.Equal(t, 5, cfg.RateLimit.Count)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.Equal(t, "token", cfg.Server.AuthToken)
	assert.Equal(t, "Europe/Berlin", cfg.Server.Location().String())
}

func TestParseArgs_Env(t *testing.T) {
	t.Setenv("VIGIL_DB_DRIVER", "postgres")
	t.Setenv("VIGIL_DB_DSN", "postgres://vigil@db/vigil")
	t.Setenv("VIGIL_LISTEN_ADDRESS", "127.0.0.1:9000")

	cfg, err := ParseArgs(nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "postgres://vigil@db/vigil", cfg.Storage.DSN)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Address)
}

func TestParseArgs_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown driver", []string{"--db-driver", "oracle"}},
		{"bad timezone", []string{"--timezone", "Mars/Olympus"}},
		{"zero rate limit", []string{"--rate-limit-count", "0"}},
		{"empty sqlite path", []string{"--db-path", ""}},
		{"unknown flag", []string{"--nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArgs(tt.args)
			assert.Error(t, err)
		})
	}
}

func TestParseArgs_Help(t *testing.T) {
	_, err := ParseArgs([]string{"--help"})

	var flagsErr *flags.Error
	require.ErrorAs(t, err, &flagsErr)
	assert.Equal(t, flags.ErrHelp, flagsErr.Type)
}

func TestServer_LocationFallback(t *testing.T) {
	assert.Equal(t, time.UTC, Server{Timezone: "Nowhere/Special"}.Location())
}
