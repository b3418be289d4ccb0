// Package config loads and validates scanner configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper. The core never
// reads this directly; commands translate it into plain values at run start.
type Config struct {
	Scrape     ScrapeConfig     `mapstructure:"scrape"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Frontier   FrontierConfig   `mapstructure:"frontier"`
	Headless   HeadlessConfig   `mapstructure:"headless"`
	Checkpoint CheckpointConfig `mapstructure:"checkpoint"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Archive    ArchiveConfig    `mapstructure:"archive"`
	PubSub     PubSubConfig     `mapstructure:"pubsub"`
	Status     StatusConfig     `mapstructure:"status"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ScrapeConfig governs the scan itself.
type ScrapeConfig struct {
	BaseURL                string `mapstructure:"base_url"`
	Query                  string `mapstructure:"query"`
	StartDate              string `mapstructure:"start_date"`
	EndDate                string `mapstructure:"end_date"`
	StartNumber            int    `mapstructure:"start_number"`
	MaxPapers              int    `mapstructure:"max_papers"`
	MaxChecked             int    `mapstructure:"max_checked"`
	MaxConsecutiveFailures int    `mapstructure:"max_consecutive_failures"`
	DownloadPDFs           bool   `mapstructure:"download_pdfs"`
}

// HTTPConfig configures the fetch primitive.
type HTTPConfig struct {
	DelaySeconds   float64 `mapstructure:"delay_seconds"`
	MaxRetries     int     `mapstructure:"max_retries"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	UserAgent      string  `mapstructure:"user_agent"`
}

// Delay converts the configured delay into a duration.
func (c HTTPConfig) Delay() time.Duration {
	return time.Duration(c.DelaySeconds * float64(time.Second))
}

// Timeout converts the configured timeout into a duration.
func (c HTTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// FrontierConfig bounds the auto-detection probe window.
type FrontierConfig struct {
	ProbeStart int `mapstructure:"probe_start"`
	ProbeEnd   int `mapstructure:"probe_end"`
	ProbeStep  int `mapstructure:"probe_step"`
	Buffer     int `mapstructure:"buffer"`
	Fallback   int `mapstructure:"fallback"`
}

// HeadlessConfig configures the optional rendered re-fetch.
type HeadlessConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	NavTimeoutSec int  `mapstructure:"nav_timeout_seconds"`
	BodyThreshold int  `mapstructure:"body_threshold"`
}

// CheckpointConfig sets the snapshot path and cadence.
type CheckpointConfig struct {
	Path  string `mapstructure:"path"`
	Every int    `mapstructure:"every"`
}

// StorageConfig selects the blob backend for PDF downloads.
type StorageConfig struct {
	Backend   string `mapstructure:"backend"`
	LocalDir  string `mapstructure:"local_dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
}

// ArchiveConfig controls the optional Postgres mirror of accepted papers.
type ArchiveConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
	Table   string `mapstructure:"table"`
}

// PubSubConfig holds metadata for acceptance-event notifications.
type PubSubConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// StatusConfig controls the optional status/metrics HTTP server.
type StatusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NBERSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scrape.base_url", "https://www.nber.org")
	v.SetDefault("scrape.query", "AI")
	v.SetDefault("scrape.max_consecutive_failures", 50)
	v.SetDefault("scrape.download_pdfs", false)
	v.SetDefault("http.delay_seconds", 1.5)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("http.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	v.SetDefault("frontier.probe_start", 33500)
	v.SetDefault("frontier.probe_end", 33000)
	v.SetDefault("frontier.probe_step", 10)
	v.SetDefault("frontier.buffer", 10)
	v.SetDefault("frontier.fallback", 33200)
	v.SetDefault("headless.enabled", false)
	v.SetDefault("headless.nav_timeout_seconds", 25)
	v.SetDefault("headless.body_threshold", 2048)
	v.SetDefault("checkpoint.path", "data/nber_papers.json")
	v.SetDefault("checkpoint.every", 10)
	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.local_dir", "downloads")
	v.SetDefault("archive.table", "papers")
	v.SetDefault("status.addr", ":8090")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Scrape.BaseURL == "" {
		return fmt.Errorf("scrape.base_url must be set")
	}
	if c.HTTP.DelaySeconds < 0 {
		return fmt.Errorf("http.delay_seconds must be >= 0")
	}
	if c.HTTP.MaxRetries <= 0 {
		return fmt.Errorf("http.max_retries must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Checkpoint.Every <= 0 {
		return fmt.Errorf("checkpoint.every must be > 0")
	}
	if c.Archive.Enabled && c.Archive.DSN == "" {
		return fmt.Errorf("archive.dsn must be set when archive is enabled")
	}
	if c.PubSub.Enabled && (c.PubSub.ProjectID == "" || c.PubSub.Topic == "") {
		return fmt.Errorf("pubsub.project_id and pubsub.topic must be set when pubsub is enabled")
	}
	switch c.Storage.Backend {
	case "local", "gcs", "none":
	default:
		return fmt.Errorf("storage.backend must be local, gcs, or none")
	}
	if c.Storage.Backend == "gcs" && c.Storage.GCSBucket == "" {
		return fmt.Errorf("storage.gcs_bucket must be set for the gcs backend")
	}
	return nil
}
