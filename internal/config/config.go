package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

type Config struct {
	TargetBaseURL  string `env:"TARGET_BASE_URL" envDefault:"http://127.0.0.1:8000"`
	ProbeFile      string `env:"PROBE_FILE"` // empty means the built-in probe set
	ProbeTimeoutMS int    `env:"PROBE_TIMEOUT_MS" envDefault:"5000"`
	MaxDetailBytes int    `env:"MAX_DETAIL_BYTES" envDefault:"2048"`

	LogDir   string `env:"LOG_DIR" envDefault:"logs"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	SlackWebhookURL string `env:"SLACK_WEBHOOK_URL"`
	WatchCooldownMS int    `env:"WATCH_COOLDOWN_MS" envDefault:"300000"`

	// API
	Addr           string   `env:"API_ADDR" envDefault:"127.0.0.1:8080"`
	PublicAPIKeys  []string `env:"PUBLIC_API_KEYS" envSeparator:","`
	AdminAPIKeys   []string `env:"ADMIN_API_KEYS" envSeparator:","`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	PublicRPM      int      `env:"PUBLIC_RPM" envDefault:"120"`
	PublicBurst    int      `env:"PUBLIC_BURST" envDefault:"60"`
	AdminRPM       int      `env:"ADMIN_RPM" envDefault:"60"`
	AdminBurst     int      `env:"ADMIN_BURST" envDefault:"30"`

	// Derived from the *_MS variables.
	ProbeTimeout  time.Duration
	WatchCooldown time.Duration
}

// FromEnv loads .env if present, then reads the process environment.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if strings.TrimSpace(cfg.TargetBaseURL) == "" {
		cfg.TargetBaseURL = "http://127.0.0.1:8000"
	}
	if cfg.ProbeTimeoutMS <= 0 {
		cfg.ProbeTimeoutMS = 5000
	}
	if cfg.MaxDetailBytes <= 0 {
		cfg.MaxDetailBytes = 2048
	}
	if cfg.WatchCooldownMS < 0 {
		cfg.WatchCooldownMS = 0
	}
	cfg.ProbeTimeout = time.Duration(cfg.ProbeTimeoutMS) * time.Millisecond
	cfg.WatchCooldown = time.Duration(cfg.WatchCooldownMS) * time.Millisecond
	cfg.PublicAPIKeys = compact(cfg.PublicAPIKeys)
	cfg.AdminAPIKeys = compact(cfg.AdminAPIKeys)
	cfg.AllowedOrigins = compact(cfg.AllowedOrigins)
	return cfg, nil
}

func compact(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
