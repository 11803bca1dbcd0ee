package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"internhunt-engine/internal/config"
	"internhunt-engine/internal/secrets"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const usage = `usage: engine [-v] <command> [flags]

commands:
  serve    run the HTTP API (default)
  sync     fetch the README once and reconcile storage
  list     print active jobs (-q search, -category name)
  secret   set or delete the admin DSN in the OS keychain
`

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var verbose bool
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cmd, args := "serve", flag.Args()
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	// Engine data dir: use env if provided, else local folder.
	dataDir := os.Getenv("INTERNHUNT_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("create data dir")
	}

	cfg, userCfgPath, err := loadConfig(dataDir)
	if err != nil {
		log.Fatal().Err(err).Str("path", userCfgPath).Msg("config load failed")
	}

	switch cmd {
	case "serve":
		err = runServe(cfg, userCfgPath, dataDir)
	case "sync":
		err = runSync(cfg, dataDir, args)
	case "list":
		err = runList(cfg, dataDir, args)
	case "secret":
		err = runSecret(cfg, args)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", cmd).Msg("failed")
	}
}

// loadConfig layers the file, .env, INTERNHUNT_* variables and the keychain,
// in that order, then validates the result.
func loadConfig(dataDir string) (*config.Config, string, error) {
	userCfgPath, err := config.EnsureUserConfig(dataDir)
	if err != nil {
		return nil, "", fmt.Errorf("config bootstrap: %w", err)
	}
	cfg, err := config.Load(userCfgPath)
	if err != nil {
		return nil, userCfgPath, err
	}

	config.LoadDotEnv(filepath.Join(dataDir, ".env"))
	config.OverlayEnv(&cfg)
	if secrets.FillAdminDSN(&cfg) {
		log.Debug().Str("stage", "config").Msg("admin dsn loaded from keychain")
	}

	cfg, vr := config.NormalizeAndValidate(cfg)
	for _, w := range vr.Warnings {
		log.Warn().Str("stage", "config").Msg(w)
	}
	if !vr.OK() {
		return nil, userCfgPath, config.Validate(cfg)
	}
	return &cfg, userCfgPath, nil
}
