package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port          string `env:"PORT" envDefault:"8080"`
	SqliteDB      string `env:"SQLITE_DB" envDefault:"portfolio.db"`
	AnalyticsDB   string `env:"ANALYTICS_DB"`
	SessionSecret string `env:"SESSION_SECRET,required"`
	Domain        string `env:"DOMAIN" envDefault:"http://localhost:8080"`
	MediaRoot     string `env:"MEDIA_ROOT" envDefault:"media"`
	GinMode       string `env:"GIN_MODE" envDefault:"release"`

	AdminEmail        string `env:"ADMIN_EMAIL" envDefault:"admin@example.com"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`

	CacheDir string        `env:"CACHE_DIR" envDefault:"cache"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"0s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"true"`

	AdminSiteHeader string `env:"ADMIN_SITE_HEADER" envDefault:"Portfolio Administration"`
	AdminSiteTitle  string `env:"ADMIN_SITE_TITLE" envDefault:"Portfolio Admin"`
	AdminIndexTitle string `env:"ADMIN_INDEX_TITLE" envDefault:"Welcome to Portfolio Administration"`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// CacheEnabled reports whether rendered pages should be cached on disk.
func (c *Config) CacheEnabled() bool {
	return c.CacheTTL > 0
}
