// Package logger initializes and configures the global zerolog instance.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds configuration options for the application logger.
type Config struct {
	Level      string `long:"level" env:"LEVEL" description:"Log level (trace, debug, info, warn, error)" default:"info"`
	Format     string `long:"format" env:"FORMAT" description:"Log format (console or json)" choice:"console" choice:"json" default:"console"`
	Output     string `long:"output" env:"OUTPUT" description:"Log output (stdout, stderr or file path)" default:"stderr"`
	MaxSizeMB  int    `long:"max-size" env:"MAX_SIZE" description:"Rotate the log file after this many megabytes" default:"50"`
	MaxBackups int    `long:"max-backups" env:"MAX_BACKUPS" description:"Rotated log files to keep" default:"5"`
	MaxAgeDays int    `long:"max-age" env:"MAX_AGE" description:"Days to keep rotated log files" default:"30"`
	Compress   bool   `long:"compress" env:"COMPRESS" description:"Gzip rotated log files"`
}

// Setup initializes the global logger from cfg.
// File outputs are rotated by size; the returned closer releases the file.
func Setup(cfg Config) io.Closer {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var (
		writer io.Writer
		closer io.Closer = nopCloser{}
		tty    bool
	)

	switch cfg.Output {
	case "stdout":
		writer, tty = os.Stdout, isTerminal(os.Stdout)
	case "stderr", "":
		writer, tty = os.Stderr, isTerminal(os.Stderr)
	default:
		rotating := &lumberjack.Logger{
			Filename:   cfg.Output,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		writer, closer = rotating, rotating
	}

	log.Logger = New(writer, cfg.Format, tty && os.Getenv("NO_COLOR") == "")

	return closer
}

// New builds a logger writing to w in the given format ("json" or console).
func New(w io.Writer, format string, color bool) zerolog.Logger {
	if format == "json" {
		return zerolog.New(w).With().Timestamp().Logger()
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    !color,
	}).With().Timestamp().Logger()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// isTerminal checks if the provided file descriptor refers to a character device (terminal).
func isTerminal(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}

	return (stat.Mode() & os.ModeCharDevice) != 0
}
