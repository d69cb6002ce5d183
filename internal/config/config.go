package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	AuthRemote = "remote"
	AuthMemory = "memory"
)

type Config struct {
	Environment    string   `env:"ENV" envDefault:"development"`
	Port           string   `env:"PORT" envDefault:"8080"`
	Host           string   `env:"HOST" envDefault:"http://localhost:8080"` // Raw HOST env (e.g. https://soullog.app)
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	FrontendURL    string   `env:"FRONTEND_URL" envDefault:"http://localhost:8080"`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`

	// StoreDriver selects the journal tree backend: mongo, disk or memory.
	StoreDriver   string `env:"STORE_DRIVER" envDefault:"mongo"`
	StoreDiskPath string `env:"STORE_DISK_PATH" envDefault:"data/tree"`
	MongoURI      string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017/soullog"`
	PostgresURI   string `env:"POSTGRES_URI" envDefault:"postgres://localhost:5432/soullog?sslmode=disable"`
	RedisURI      string `env:"REDIS_URI" envDefault:"redis://localhost:6379/0"`

	// AuthDriver selects where identities and sessions live: "remote" uses
	// Postgres and Redis, "memory" keeps both in process.
	AuthDriver string `env:"AUTH_DRIVER" envDefault:"remote"`

	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"false"`
	Timezone     string        `env:"TIMEZONE" envDefault:"Local"`

	// AllowedHost is derived from Host in production; host check is skipped otherwise.
	AllowedHost string `env:"-"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.Environment = strings.ToLower(strings.TrimSpace(cfg.Environment))
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.AuthDriver = strings.ToLower(strings.TrimSpace(cfg.AuthDriver))
	if cfg.AuthDriver != AuthRemote && cfg.AuthDriver != AuthMemory {
		return nil, fmt.Errorf("invalid AUTH_DRIVER %q", cfg.AuthDriver)
	}
	cfg.AllowedOrigins = parseOrigins(cfg.AllowedOrigins)

	if cfg.IsProduction() {
		cfg.AllowedHost = hostname(cfg.Host)
	}

	if len(cfg.AllowedOrigins) == 0 {
		if u := strings.TrimSpace(cfg.FrontendURL); u != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, u)
		}
	}
	// A backend host like api.soullog.app also admits https://soullog.app and https://www.soullog.app
	if h := hostname(cfg.Host); h != "" && h != "localhost" {
		parts := strings.Split(h, ".")
		if len(parts) >= 2 {
			domain := strings.Join(parts[1:], ".")
			for _, origin := range []string{"https://" + domain, "https://www." + domain} {
				if !containsOrigin(cfg.AllowedOrigins, origin) {
					cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
				}
			}
		}
	}

	if _, err := cfg.Location(); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}

	return cfg, nil
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

// Location is the single time zone used for dates, greetings and streaks.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func hostname(raw string) string {
	h := strings.TrimSpace(raw)
	for _, prefix := range []string{"https://", "http://"} {
		h = strings.TrimPrefix(h, prefix)
	}
	if idx := strings.Index(h, "/"); idx != -1 {
		h = h[:idx]
	}
	if idx := strings.Index(h, ":"); idx != -1 {
		h = h[:idx]
	}
	return strings.TrimSpace(h)
}

func parseOrigins(in []string) []string {
	var out []string
	for _, part := range in {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func containsOrigin(list []string, o string) bool {
	o = strings.TrimSpace(strings.ToLower(o))
	for _, v := range list {
		if strings.TrimSpace(strings.ToLower(v)) == o {
			return true
		}
	}
	return false
}
