package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy plus any problems found.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	out.Upstream.URL = strings.TrimSpace(out.Upstream.URL)
	out.Storage.Driver = strings.ToLower(strings.TrimSpace(out.Storage.Driver))
	out.Storage.Path = strings.TrimSpace(out.Storage.Path)
	out.Storage.DSN = strings.TrimSpace(out.Storage.DSN)
	out.Storage.AdminDSN = strings.TrimSpace(out.Storage.AdminDSN)

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}
	if out.App.SessionTTLHours <= 0 {
		res.addErr("app.session_ttl_hours must be > 0")
	}

	// upstream
	if out.Upstream.URL == "" {
		res.addErr("upstream.url is required")
	} else if u, err := url.Parse(out.Upstream.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		res.addErr("upstream.url must be an absolute http(s) URL")
	}
	if out.Upstream.TimeoutSeconds <= 0 {
		res.addErr("upstream.timeout_seconds must be > 0")
	} else if out.Upstream.TimeoutSeconds > 120 {
		res.addWarn("upstream.timeout_seconds is very high (%d); a stuck fetch will hold the sync lock that long.", out.Upstream.TimeoutSeconds)
	}

	// storage
	switch out.Storage.Driver {
	case DriverSQLite:
		if out.Storage.Path == "" {
			res.addErr("storage.path is required when storage.driver=sqlite")
		}
	case DriverPostgres:
		if out.Storage.DSN == "" && out.Storage.AdminDSN == "" {
			res.addErr("storage.dsn or storage.admin_dsn is required when storage.driver=postgres")
		}
		if out.Storage.AdminDSN == "" {
			res.addWarn("storage.admin_dsn is empty; syncing jobs will be refused.")
		}
	default:
		res.addErr("storage.driver must be %q or %q", DriverSQLite, DriverPostgres)
	}

	if out.Sync.MinIntervalSeconds < 0 {
		res.addErr("sync.min_interval_seconds must be >= 0")
	}
	if out.Sync.AutoIntervalMinutes < 0 {
		res.addErr("sync.auto_interval_minutes must be >= 0")
	} else if out.Sync.AutoIntervalMinutes > 0 && out.Sync.AutoIntervalMinutes < 5 {
		res.addWarn("sync.auto_interval_minutes=%d polls the upstream README very often.", out.Sync.AutoIntervalMinutes)
	}
	if out.Sync.Transactional {
		res.addWarn("sync.transactional=true: deactivate and upsert run in one transaction (differs from the two-step default).")
	}

	if out.Tracker.PerPage <= 0 || out.Tracker.PerPage > 500 {
		res.addErr("tracker.per_page must be 1..500")
	}

	return out, res
}

func Validate(cfg Config) error {
	_, res := NormalizeAndValidate(cfg)
	if res.OK() {
		return nil
	}
	return errors.New("config validation failed:\n- " + strings.Join(res.Errors, "\n- "))
}
