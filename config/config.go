package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	watermillutil "github.com/courtside-club/courtside/internal/watermill"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL          string        `yaml:"url"`
	QueueGroup   string        `yaml:"queue_group"`
	StreamName   string        `yaml:"stream_name"`
	StreamMaxAge time.Duration `yaml:"stream_max_age"`
}

// SchedulerConfig tunes schedule generation.
type SchedulerConfig struct {
	// AllowCourtless schedules sessions without courts on one implicit court.
	AllowCourtless bool `yaml:"allow_courtless"`
	CandidateLimit int  `yaml:"candidate_limit"`
}

// RateLimitConfig throttles generate and regenerate requests per session.
// PerMinute <= 0 disables throttling.
type RateLimitConfig struct {
	PerMinute float64 `yaml:"per_minute"`
	Burst     int     `yaml:"burst"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	// MetricsAddress is the listen address of the ops server; empty disables it.
	MetricsAddress string `yaml:"metrics_address"`
	Environment    string `yaml:"environment"`
	LogLevel       string `yaml:"log_level"`
}

// Default stream and rate settings.
const (
	DefaultQueueGroup   = "courtside"
	DefaultStreamName   = "COURTSIDE_SESSIONS"
	DefaultStreamMaxAge = 24 * time.Hour
	DefaultRatePerMin   = 6
	DefaultRateBurst    = 3
)

// LoadConfig loads the configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		// If the file is not found, try loading from environment variables
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// --- OVERRIDE WITH ENV VARS IF PRESENT ---
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("NATS_QUEUE_GROUP"); v != "" {
		cfg.NATS.QueueGroup = v
	}
	if v := os.Getenv("NATS_STREAM_NAME"); v != "" {
		cfg.NATS.StreamName = v
	}
	if v := os.Getenv("NATS_STREAM_MAX_AGE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.NATS.StreamMaxAge = d
		}
	}
	if v := os.Getenv("SCHEDULER_ALLOW_COURTLESS"); v != "" {
		cfg.Scheduler.AllowCourtless = v == "true"
	}
	if v := os.Getenv("SCHEDULER_CANDIDATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scheduler.CandidateLimit = n
		}
	}
	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimit.PerMinute = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimit.Burst = n
		}
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config

	cfg.Postgres.DSN = os.Getenv("DATABASE_URL")
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	cfg.NATS.URL = os.Getenv("NATS_URL")
	if cfg.NATS.URL == "" {
		return nil, fmt.Errorf("NATS_URL environment variable not set")
	}
	cfg.NATS.QueueGroup = os.Getenv("NATS_QUEUE_GROUP")
	cfg.NATS.StreamName = os.Getenv("NATS_STREAM_NAME")
	if v := os.Getenv("NATS_STREAM_MAX_AGE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid NATS_STREAM_MAX_AGE value: %v", err)
		}
		cfg.NATS.StreamMaxAge = d
	}

	cfg.Scheduler.AllowCourtless = os.Getenv("SCHEDULER_ALLOW_COURTLESS") == "true"
	if v := os.Getenv("SCHEDULER_CANDIDATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SCHEDULER_CANDIDATE_LIMIT value: %v", err)
		}
		cfg.Scheduler.CandidateLimit = n
	}

	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE value: %v", err)
		}
		cfg.RateLimit.PerMinute = f
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_BURST value: %v", err)
		}
		cfg.RateLimit.Burst = n
	}

	cfg.Observability.MetricsAddress = os.Getenv("METRICS_ADDRESS") // optional; empty disables the ops server
	cfg.Observability.Environment = os.Getenv("ENV")
	cfg.Observability.LogLevel = os.Getenv("LOG_LEVEL")

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.NATS.QueueGroup == "" {
		c.NATS.QueueGroup = DefaultQueueGroup
	}
	if c.NATS.StreamName == "" {
		c.NATS.StreamName = DefaultStreamName
	}
	if c.NATS.StreamMaxAge <= 0 {
		c.NATS.StreamMaxAge = DefaultStreamMaxAge
	}
	if c.RateLimit.PerMinute == 0 {
		c.RateLimit.PerMinute = DefaultRatePerMin
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = DefaultRateBurst
	}
}

// ToWatermillConfig maps the NATS settings onto the pub/sub config. The
// stream captures the session-scoped response subjects.
func ToWatermillConfig(appCfg *Config) watermillutil.Config {
	return watermillutil.Config{
		URL:            appCfg.NATS.URL,
		QueueGroup:     appCfg.NATS.QueueGroup,
		StreamName:     appCfg.NATS.StreamName,
		StreamSubjects: []string{"session.*.v1.>", "session.schedule.*.v1.>"},
		StreamMaxAge:   appCfg.NATS.StreamMaxAge,
	}
}
