package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "CROFDB"

// Config holds the CLI configuration loaded from .env files, environment variables and flags.
type Config struct {
	Username       string        `mapstructure:"username"`
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	LogLevel       string        `mapstructure:"log_level"`
	TimeoutSeconds int64         `mapstructure:"timeout_seconds"`
	RetryCount     int           `mapstructure:"retry_count"`
	RetryWaitMS    int64         `mapstructure:"retry_wait_ms"`
	Timeout        time.Duration `mapstructure:"-"`
	RetryWait      time.Duration `mapstructure:"-"`

	StorageType        string        `mapstructure:"storage_type"`
	BBoltPath          string        `mapstructure:"bbolt_path"`
	SnapshotTTLSeconds int64         `mapstructure:"snapshot_ttl_seconds"`
	SnapshotTTL        time.Duration `mapstructure:"-"`
	CleanupSeconds     int64         `mapstructure:"snapshot_cleanup_interval_seconds"`
	CleanupInterval    time.Duration `mapstructure:"-"`
	RestoreConcurrency int           `mapstructure:"restore_concurrency"`
}

// Flags returns the flag set understood by Load. Flag names use dashes; they map
// onto the underscore config keys.
func Flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("username", "", "database location (username)")
	fs.String("api-key", "", "database API key")
	fs.String("base-url", "", "service base URL")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	fs.Int64("timeout-seconds", 0, "per-request timeout in seconds")
	fs.Int("retry-count", 0, "retries for failed round trips")
	fs.Int64("retry-wait-ms", 0, "wait between retries in milliseconds")
	fs.String("storage-type", "", "snapshot storage (bbolt, none)")
	fs.String("bbolt-path", "", "snapshot database path")
	fs.Int64("snapshot-ttl-seconds", 0, "snapshot retention in seconds")
	fs.Int64("snapshot-cleanup-interval-seconds", 0, "how often expired snapshots are swept, in seconds")
	fs.Int("restore-concurrency", 0, "parallel writes during restore/import")
	fs.SortFlags = false
	return fs
}

// Load reads configuration from configs/.env, CROFDB_* environment variables and
// any flags explicitly set on fs (fs may be nil).
func Load(fs *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("username", "")
	v.SetDefault("api_key", "")
	v.SetDefault("base_url", "https://database.nahcrof.com")
	v.SetDefault("log_level", "info")
	v.SetDefault("timeout_seconds", 30)
	v.SetDefault("retry_count", 0)
	v.SetDefault("retry_wait_ms", 500)
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/snapshots.db")
	v.SetDefault("snapshot_ttl_seconds", int64((30*24*time.Hour)/time.Second))
	v.SetDefault("snapshot_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))
	v.SetDefault("restore_concurrency", 4)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if fs != nil {
		var bindErr error
		fs.VisitAll(func(f *pflag.Flag) {
			if bindErr != nil {
				return
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			bindErr = v.BindPFlag(key, f)
		})
		if bindErr != nil {
			return nil, fmt.Errorf("bind flags: %w", bindErr)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	c.StorageType = strings.ToLower(strings.TrimSpace(c.StorageType))

	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("invalid timeout_seconds (must be positive seconds)")
	}
	c.Timeout = time.Duration(c.TimeoutSeconds) * time.Second

	if c.RetryCount < 0 {
		return fmt.Errorf("invalid retry_count (must not be negative)")
	}
	if c.RetryWaitMS < 0 {
		return fmt.Errorf("invalid retry_wait_ms (must not be negative)")
	}
	c.RetryWait = time.Duration(c.RetryWaitMS) * time.Millisecond

	if c.SnapshotTTLSeconds <= 0 {
		return fmt.Errorf("invalid snapshot_ttl_seconds (must be positive seconds)")
	}
	c.SnapshotTTL = time.Duration(c.SnapshotTTLSeconds) * time.Second

	if c.CleanupSeconds <= 0 {
		return fmt.Errorf("invalid snapshot_cleanup_interval_seconds (must be positive seconds)")
	}
	c.CleanupInterval = time.Duration(c.CleanupSeconds) * time.Second

	if c.RestoreConcurrency <= 0 {
		return fmt.Errorf("invalid restore_concurrency (must be positive)")
	}
	return nil
}

// RequireCredentials reports whether username and api key are present.
func (c *Config) RequireCredentials() error {
	if c == nil {
		return errors.New("config must not be nil")
	}
	if strings.TrimSpace(c.Username) == "" {
		return errors.New("username is required (CROFDB_USERNAME or --username)")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.New("api key is required (CROFDB_API_KEY or --api-key)")
	}
	return nil
}

// Redacted returns a copy safe for logging.
func (c Config) Redacted() Config {
	if c.APIKey != "" {
		c.APIKey = "***"
	}
	return c
}
