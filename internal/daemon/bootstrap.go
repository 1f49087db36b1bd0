// SPDX-License-Identifier: MIT

// Package daemon wires the slideshow runtime together and manages its lifecycle.
package daemon

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/CMRapp/Slideshow-sub000/internal/api"
	"github.com/CMRapp/Slideshow-sub000/internal/config"
	"github.com/CMRapp/Slideshow-sub000/internal/feed"
	"github.com/CMRapp/Slideshow-sub000/internal/health"
	xglog "github.com/CMRapp/Slideshow-sub000/internal/log"
	"github.com/CMRapp/Slideshow-sub000/internal/playlist"
	"github.com/CMRapp/Slideshow-sub000/internal/slideshow"
	"github.com/CMRapp/Slideshow-sub000/internal/telemetry"
)

// Options carries process inputs that are not part of AppConfig.
type Options struct {
	// Version is the build version
	Version string

	// ConfigPath is the YAML file watched for hot reload; empty disables watching
	ConfigPath string

	// Logger defaults to the "daemon" component logger
	Logger *zerolog.Logger
}

// Bootstrap builds the engine, HTTP surface and servers described by cfg.
// Nothing is started until App.Run.
func Bootstrap(ctx context.Context, cfg config.AppConfig, opts Options) (*App, error) {
	logger := xglog.WithComponent("daemon")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "slideshowd",
		ServiceVersion: opts.Version,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("telemetry initialization failed, continuing without tracing")
		tp = nil
	} else if tp.Enabled() {
		logger.Info().
			Str("exporter", cfg.Telemetry.Exporter).
			Str("endpoint", cfg.Telemetry.Endpoint).
			Float64("sampling_rate", cfg.Telemetry.SamplingRate).
			Msg("telemetry initialized")
	}

	client := feed.New(cfg.Source.URL, feed.Options{
		Timeout:   cfg.Source.Timeout,
		ListField: cfg.Source.ListField,
	})

	engineOpts := []slideshow.Option{
		slideshow.WithTiming(TimingFromConfig(cfg)),
		slideshow.WithPlaying(cfg.Playback.StartPlaying),
	}

	var exporter *playlist.Exporter
	if cfg.Export.M3UPath != "" {
		exporter = playlist.NewExporter(cfg.Export.M3UPath)
		engineOpts = append(engineOpts, slideshow.WithOrderObserver(exporter.Observe))
	}

	engine, err := slideshow.New(client, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("create slideshow engine: %w", err)
	}

	hm := health.NewManager(opts.Version)
	hm.RegisterChecker(health.NewPlaybackChecker(engine))
	if exporter != nil {
		hm.RegisterChecker(health.NewFileChecker("m3u_export", cfg.Export.M3UPath))
	}

	holder := config.NewConfigHolder(cfg, config.NewLoader(opts.ConfigPath, opts.Version))

	srv := api.New(cfg, engine,
		api.WithHealth(hm),
		api.WithConfigReloader(holder),
	)

	mgr, err := NewManager(config.ParseServerConfig(cfg), Deps{
		Logger:         logger,
		Config:         cfg,
		APIHandler:     srv.Handler(),
		MetricsHandler: promhttp.Handler(),
		MetricsAddr:    config.MetricsAddr(cfg),
	})
	if err != nil {
		return nil, fmt.Errorf("create daemon manager: %w", err)
	}
	if tp != nil {
		mgr.RegisterShutdownHook("telemetry", tp.Shutdown)
	}

	logger.Info().
		Str(xglog.FieldSourceURL, config.MaskURL(cfg.Source.URL)).
		Dur("advance_interval", cfg.Playback.AdvanceInterval).
		Dur("poll_base", cfg.Polling.BaseInterval).
		Str(xglog.FieldExportTo, cfg.Export.M3UPath).
		Msg("slideshow runtime assembled")

	var runner Runner
	if exporter != nil {
		runner = exporter
	}
	return NewApp(logger, mgr, holder, engine, runner), nil
}
