// config/overlay.go
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// LoadDotEnv loads .env files into the process environment. A missing file is
// not an error.
func LoadDotEnv(paths ...string) {
	if err := godotenv.Load(paths...); err != nil {
		log.Debug().Err(err).Msg("[config] no .env file, using process environment")
	}
}

// OverlayEnv applies INTERNHUNT_* variables on top of the file config.
func OverlayEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	if v := getEnvInt("INTERNHUNT_PORT"); v > 0 {
		cfg.App.Port = v
	}
	if v := getEnv("INTERNHUNT_DATA_DIR"); v != "" {
		cfg.App.DataDir = v
	}
	if v := getEnv("INTERNHUNT_UPSTREAM_URL"); v != "" {
		cfg.Upstream.URL = v
	}
	if v := getEnvInt("INTERNHUNT_UPSTREAM_TIMEOUT_SECONDS"); v > 0 {
		cfg.Upstream.TimeoutSeconds = v
	}
	if v := getEnv("INTERNHUNT_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := getEnv("INTERNHUNT_DB_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := getEnv("INTERNHUNT_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := getEnv("INTERNHUNT_ADMIN_DSN"); v != "" {
		cfg.Storage.AdminDSN = v
	}
	if v := getEnv("INTERNHUNT_SYNC_AUTO_INTERVAL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Sync.AutoIntervalMinutes = n
		}
	}
	if v := getEnv("INTERNHUNT_SYNC_TRANSACTIONAL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Sync.Transactional = b
		}
	}
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func getEnvInt(key string) int {
	if val := getEnv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return 0
}
