package secrets

import (
	"errors"
	"fmt"
	"strings"

	"internhunt-engine/internal/config"

	"github.com/zalando/go-keyring"
)

const (
	// “Service” groups the app’s secrets in the OS keychain.
	KeyringService = "internhunt"
)

var ErrNotFound = errors.New("storage admin credentials not found in keychain")

func GetAdminDSN(keyringAccount string) (string, error) {
	if strings.TrimSpace(keyringAccount) != "" {
		dsn, err := keyring.Get(KeyringService, keyringAccount)
		if err == nil && strings.TrimSpace(dsn) != "" {
			return dsn, nil
		}
	}
	return "", ErrNotFound
}

func SetAdminDSN(keyringAccount string, dsn string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(dsn) == "" {
		return errors.New("dsn is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, dsn)
}

func DeleteAdminDSN(keyringAccount string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, keyringAccount)
}

// AdminKeyringAccount names the keychain entry for the configured database.
func AdminKeyringAccount(cfg config.Config) string {
	return fmt.Sprintf("internhunt:%s:admin", cfg.Storage.Driver)
}

// FillAdminDSN fills storage.admin_dsn from the keychain when neither the
// file nor the environment supplied it. Only postgres uses it.
func FillAdminDSN(cfg *config.Config) bool {
	if cfg == nil || cfg.Storage.Driver != config.DriverPostgres || cfg.Storage.AdminDSN != "" {
		return false
	}
	dsn, err := GetAdminDSN(AdminKeyringAccount(*cfg))
	if err != nil {
		return false
	}
	cfg.Storage.AdminDSN = dsn
	return true
}
