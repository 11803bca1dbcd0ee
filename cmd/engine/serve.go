package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"internhunt-engine/internal/auth"
	"internhunt-engine/internal/config"
	"internhunt-engine/internal/events"
	"internhunt-engine/internal/fetch"
	"internhunt-engine/internal/httpapi"
	"internhunt-engine/internal/limit"
	"internhunt-engine/internal/scheduler"
	"internhunt-engine/internal/scrape"

	"github.com/rs/zerolog/log"
)

func runServe(cfg *config.Config, userCfgPath, dataDir string) error {
	db, err := openStore(cfg, dataDir)
	if err != nil {
		return err
	}
	defer db.Close()

	hub := events.NewHub()
	// One request per second per upstream host, and a small burst per client
	// on the sensitive routes.
	upstream := limit.NewKeyed(1, 2)
	clients := limit.NewKeyed(0.5, 5)

	fetcher := fetch.New(cfg.UpstreamTimeout(), cfg.Upstream.UserAgent, upstream)
	syncer := scrape.NewSyncer(cfg, fetcher, db, hub, filepath.Join(dataDir, "sync.lock"))

	deps := httpapi.Deps{
		DB:          db,
		Hub:         hub,
		Cfg:         cfg,
		UserCfgPath: userCfgPath,
		Syncer:      syncer,
		Auth:        &auth.Service{Store: db, Hub: hub, TTL: cfg.SessionTTL()},
		Limiter:     clients,
	}
	mux := httpapi.NewMux(deps)

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           httpapi.Handler(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	shutdownToken, err := randomToken(16)
	if err != nil {
		return err
	}
	mux.HandleFunc("/shutdown", shutdownHandler(&shutdownToken, srv))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()

	if every := cfg.AutoSyncInterval(); every > 0 {
		go scheduler.Every(ctx, every, "sync", false, syncer.Scheduled)
		log.Info().Dur("every", every).Msg("scheduled sync enabled")
	}

	log.Info().
		Str("addr", "http://"+addr).
		Str("storage", db.Dialect).
		Str("config", userCfgPath).
		Str("shutdown_token", shutdownToken).
		Msg("engine listening")

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info().Msg("engine stopped")
	return nil
}
