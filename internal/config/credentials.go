package config

import (
	"errors"
	"strings"
)

var ErrMissingCredentials = errors.New("missing storage credentials")

// CredentialsError is a configuration error raised before any network or
// storage activity.
type CredentialsError struct {
	Missing string
	Detail  string
}

func (e *CredentialsError) Error() string {
	return "Server configuration error: " + e.Missing
}

func (e *CredentialsError) Unwrap() error { return ErrMissingCredentials }

// RequireReadCredentials checks that listing jobs can reach storage.
func (c Config) RequireReadCredentials() error {
	switch c.Storage.Driver {
	case DriverPostgres:
		if strings.TrimSpace(c.Storage.DSN) == "" && strings.TrimSpace(c.Storage.AdminDSN) == "" {
			return &CredentialsError{Missing: "Missing database credentials"}
		}
	default:
		if strings.TrimSpace(c.Storage.Path) == "" {
			return &CredentialsError{Missing: "Missing database path"}
		}
	}
	return nil
}

// RequireWriteCredentials checks that a sync may write the jobs table.
func (c Config) RequireWriteCredentials() error {
	if err := c.RequireReadCredentials(); err != nil {
		return err
	}
	if c.Storage.Driver == DriverPostgres && strings.TrimSpace(c.Storage.AdminDSN) == "" {
		return &CredentialsError{
			Missing: "storage.admin_dsn is required for syncing jobs. Set it in config.yml, INTERNHUNT_ADMIN_DSN, or the OS keychain.",
			Detail:  "The elevated role is needed to bypass row level security when writing the jobs table.",
		}
	}
	return nil
}
