// Package config loads focussync settings from FOCUSSYNC_* environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/focussync/internal/domain"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration.
type Config struct {
	DBPath       string
	NATSURL      string // empty runs local-only
	NATSBucket   string
	ScheduleFile string
	HTTPAddr     string // empty disables the control API
	Timezone     string

	DefaultMinutes   int
	TickInterval     time.Duration
	EvalInterval     time.Duration
	CommandInterval  time.Duration
	CommandMaxAge    time.Duration
	DeepBreathCount  time.Duration
	DeepBreathWindow time.Duration

	BlockBeginHook string
	BlockEndHook   string
	HookTimeout    time.Duration

	LogLevel       slog.Level
	MetricsEnabled bool
}

// Default returns a Config with sensible defaults. Paths live under the
// user's config directory.
func Default() Config {
	dir := defaultDir()
	return Config{
		DBPath:           filepath.Join(dir, "focussync.db"),
		NATSBucket:       "focussync",
		ScheduleFile:     filepath.Join(dir, "schedule.yaml"),
		HTTPAddr:         "127.0.0.1:7420",
		Timezone:         "Local",
		DefaultMinutes:   domain.DefaultMinutes,
		TickInterval:     time.Second,
		EvalInterval:     15 * time.Second,
		CommandInterval:  2 * time.Second,
		CommandMaxAge:    30 * time.Second,
		DeepBreathCount:  30 * time.Second,
		DeepBreathWindow: 60 * time.Second,
		HookTimeout:      10 * time.Second,
		LogLevel:         slog.LevelInfo,
		MetricsEnabled:   true,
	}
}

func defaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "focussync")
	}
	return "."
}

// LoadDotEnv loads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from environment variables, falling back to
// defaults for unset values. Malformed values are reported.
func Load() (Config, error) {
	cfg := Default()
	var errs []error

	setString(&cfg.DBPath, "FOCUSSYNC_DB")
	setString(&cfg.NATSURL, "FOCUSSYNC_NATS_URL")
	setString(&cfg.NATSBucket, "FOCUSSYNC_NATS_BUCKET")
	setString(&cfg.ScheduleFile, "FOCUSSYNC_SCHEDULE_FILE")
	if v, ok := os.LookupEnv("FOCUSSYNC_HTTP_ADDR"); ok {
		cfg.HTTPAddr = v
	}
	setString(&cfg.Timezone, "FOCUSSYNC_TIMEZONE")
	setString(&cfg.BlockBeginHook, "FOCUSSYNC_BLOCK_BEGIN_HOOK")
	setString(&cfg.BlockEndHook, "FOCUSSYNC_BLOCK_END_HOOK")

	if v := os.Getenv("FOCUSSYNC_DEFAULT_MINUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			errs = append(errs, fmt.Errorf("FOCUSSYNC_DEFAULT_MINUTES: want a positive integer, got %q", v))
		} else {
			cfg.DefaultMinutes = n
		}
	}

	errs = appendErr(errs, setDuration(&cfg.TickInterval, "FOCUSSYNC_TICK_INTERVAL"))
	errs = appendErr(errs, setDuration(&cfg.EvalInterval, "FOCUSSYNC_EVAL_INTERVAL"))
	errs = appendErr(errs, setDuration(&cfg.CommandInterval, "FOCUSSYNC_COMMAND_INTERVAL"))
	errs = appendErr(errs, setDuration(&cfg.CommandMaxAge, "FOCUSSYNC_COMMAND_MAX_AGE"))
	errs = appendErr(errs, setDuration(&cfg.DeepBreathCount, "FOCUSSYNC_DEEP_BREATH_COUNT"))
	errs = appendErr(errs, setDuration(&cfg.DeepBreathWindow, "FOCUSSYNC_DEEP_BREATH_WINDOW"))
	errs = appendErr(errs, setDuration(&cfg.HookTimeout, "FOCUSSYNC_HOOK_TIMEOUT"))

	if v := os.Getenv("FOCUSSYNC_LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			errs = append(errs, fmt.Errorf("FOCUSSYNC_LOG_LEVEL: %w", err))
		}
	}
	if v := os.Getenv("FOCUSSYNC_METRICS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("FOCUSSYNC_METRICS: want a boolean, got %q", v))
		} else {
			cfg.MetricsEnabled = b
		}
	}

	if _, err := cfg.Location(); err != nil {
		errs = append(errs, err)
	}
	return cfg, errors.Join(errs...)
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("FOCUSSYNC_TIMEZONE: %w", err)
	}
	return loc, nil
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, env string) error {
	v := os.Getenv(env)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fmt.Errorf("%s: want a positive duration such as 30s, got %q", env, v)
	}
	*dst = d
	return nil
}

func appendErr(errs []error, err error) []error {
	if err != nil {
		return append(errs, err)
	}
	return errs
}
