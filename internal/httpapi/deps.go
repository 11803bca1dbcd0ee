package httpapi

import (
	"internhunt-engine/internal/auth"
	"internhunt-engine/internal/config"
	"internhunt-engine/internal/events"
	"internhunt-engine/internal/limit"
	"internhunt-engine/internal/scrape"
	"internhunt-engine/internal/store"
)

type Deps struct {
	DB  *store.DB
	Hub *events.Hub

	// Cfg is built once at start and shared read-only.
	Cfg         *config.Config
	UserCfgPath string

	Syncer *scrape.Syncer
	Auth   *auth.Service

	// Limiter throttles sign-in, sign-up and sync per client address.
	Limiter *limit.Keyed
}
