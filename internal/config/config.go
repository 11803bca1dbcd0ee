// internal/config/config.go
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	DefaultUpstreamURL = "https://raw.githubusercontent.com/SimplifyJobs/Summer2026-Internships/dev/README.md"
)

type Config struct {
	App struct {
		Port            int    `yaml:"port" json:"port"`
		DataDir         string `yaml:"data_dir" json:"data_dir"`
		SessionTTLHours int    `yaml:"session_ttl_hours" json:"session_ttl_hours"`
	} `yaml:"app" json:"app"`

	Upstream struct {
		URL            string `yaml:"url" json:"url"`
		UserAgent      string `yaml:"user_agent" json:"user_agent"`
		TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
	} `yaml:"upstream" json:"upstream"`

	Storage struct {
		Driver string `yaml:"driver" json:"driver"` // sqlite | postgres
		Path   string `yaml:"path" json:"path"`     // sqlite file, relative to data_dir
		DSN    string `yaml:"dsn" json:"dsn"`
		// AdminDSN carries the elevated role that may write the jobs table.
		AdminDSN string `yaml:"admin_dsn" json:"admin_dsn"`
	} `yaml:"storage" json:"storage"`

	Sync struct {
		Transactional       bool `yaml:"transactional" json:"transactional"`
		MinIntervalSeconds  int  `yaml:"min_interval_seconds" json:"min_interval_seconds"`
		AutoIntervalMinutes int  `yaml:"auto_interval_minutes" json:"auto_interval_minutes"` // 0 disables
	} `yaml:"sync" json:"sync"`

	Tracker struct {
		PerPage int `yaml:"per_page" json:"per_page"`
	} `yaml:"tracker" json:"tracker"`
}

func Defaults() Config {
	var cfg Config
	cfg.App.Port = 38471
	cfg.App.DataDir = "."
	cfg.App.SessionTTLHours = 24 * 14
	cfg.Upstream.URL = DefaultUpstreamURL
	cfg.Upstream.UserAgent = "internhunt/1.0 (+local)"
	cfg.Upstream.TimeoutSeconds = 20
	cfg.Storage.Driver = DriverSQLite
	cfg.Storage.Path = "internhunt.db"
	cfg.Sync.MinIntervalSeconds = 10
	cfg.Tracker.PerPage = 50
	return cfg
}

func Load(path string) (Config, error) {
	cfg := Defaults()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

func (c Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.Upstream.TimeoutSeconds) * time.Second
}

func (c Config) AutoSyncInterval() time.Duration {
	return time.Duration(c.Sync.AutoIntervalMinutes) * time.Minute
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.App.SessionTTLHours) * time.Hour
}

// ConnString picks the elevated credentials when present.
func (c Config) ConnString() string {
	if c.Storage.Driver == DriverPostgres {
		if c.Storage.AdminDSN != "" {
			return c.Storage.AdminDSN
		}
		return c.Storage.DSN
	}
	return c.Storage.Path
}

// Redacted hides credentials so the config can be served over HTTP.
func (c Config) Redacted() Config {
	out := c
	if out.Storage.DSN != "" {
		out.Storage.DSN = "[redacted]"
	}
	if out.Storage.AdminDSN != "" {
		out.Storage.AdminDSN = "[redacted]"
	}
	return out
}
