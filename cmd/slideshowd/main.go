// SPDX-License-Identifier: MIT

// Command slideshowd runs the slideshow playback engine and serves its display page.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/CMRapp/Slideshow-sub000/internal/config"
	"github.com/CMRapp/Slideshow-sub000/internal/daemon"
	"github.com/CMRapp/Slideshow-sub000/internal/health"
	xglog "github.com/CMRapp/Slideshow-sub000/internal/log"
)

var (
	version   = "v0.1.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "config":
			os.Exit(runConfigCLI(os.Args[2:]))
		case "healthcheck":
			os.Exit(runHealthcheckCLI(os.Args[2:]))
		}
	}

	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML); defaults to $"+config.EnvConfigPath)
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Safe defaults until config is loaded.
	xglog.Configure(xglog.Config{
		Level:   "info",
		Service: "slideshowd",
		Version: version,
	})
	logger := xglog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path := resolveConfigPath(*configPath)
	cfg, err := config.NewLoader(path, version).Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str(xglog.FieldEvent, "config.load_failed").
			Str(xglog.FieldPath, path).
			Msg("failed to load configuration")
	}

	xglog.Configure(xglog.Config{
		Level:   cfg.LogLevel,
		Service: "slideshowd",
		Version: version,
	})

	if path != "" {
		logger.Info().
			Str(xglog.FieldEvent, "config.loaded").
			Str("source", "file").
			Str(xglog.FieldPath, path).
			Msg("loaded configuration from file")
	} else {
		logger.Info().
			Str(xglog.FieldEvent, "config.loaded").
			Str("source", "env+defaults").
			Msg("loaded configuration from environment and defaults")
	}

	if err := health.PerformStartupChecks(ctx, cfg); err != nil {
		logger.Fatal().
			Err(err).
			Str(xglog.FieldEvent, "startup.check_failed").
			Msg("startup checks failed, verify configuration and permissions")
	}

	logger.Info().
		Str(xglog.FieldEvent, "startup").
		Str("version", version).
		Str("commit", commit).
		Str("build_date", buildDate).
		Str("addr", cfg.API.ListenAddr).
		Msg("starting slideshowd")

	app, err := daemon.Bootstrap(ctx, cfg, daemon.Options{
		Version:    version,
		ConfigPath: path,
		Logger:     &logger,
	})
	if err != nil {
		logger.Fatal().
			Err(err).
			Str(xglog.FieldEvent, "bootstrap.failed").
			Msg("failed to assemble slideshow runtime")
	}

	if err := app.Run(ctx); err != nil {
		logger.Fatal().
			Err(err).
			Str(xglog.FieldEvent, "daemon.failed").
			Msg("daemon app failed")
	}

	logger.Info().Msg("server exiting")
}

// resolveConfigPath prefers the flag, then SLIDESHOW_CONFIG.
func resolveConfigPath(flagValue string) string {
	if p := strings.TrimSpace(flagValue); p != "" {
		return p
	}
	return strings.TrimSpace(os.Getenv(config.EnvConfigPath))
}
