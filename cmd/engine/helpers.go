package main

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"internhunt-engine/internal/config"
	"internhunt-engine/internal/httpapi"
	"internhunt-engine/internal/store"

	"github.com/rs/zerolog/log"
)

// openStore connects using the configured driver and brings the schema up to
// date. A relative sqlite path lives in the data dir.
func openStore(cfg *config.Config, dataDir string) (*store.DB, error) {
	conn := cfg.ConnString()
	if cfg.Storage.Driver == config.DriverSQLite && !filepath.IsAbs(conn) {
		conn = filepath.Join(dataDir, conn)
	}
	db, err := store.Open(cfg.Storage.Driver, conn)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Driver, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if n, err := db.DeleteExpiredSessions(ctx); err != nil {
		log.Warn().Err(err).Msg("prune expired sessions")
	} else if n > 0 {
		log.Debug().Int64("removed", n).Msg("pruned expired sessions")
	}
	return db, nil
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func shutdownHandler(token *string, srv *http.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		// Local-only guard
		if !httpapi.IsLocal(r) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		got := r.Header.Get("X-Shutdown-Token")
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(*token)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// Respond immediately, then shutdown asynchronously
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("shutting down\n"))

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}
}
