// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/CMRapp/Slideshow-sub000/internal/config"
	xglog "github.com/CMRapp/Slideshow-sub000/internal/log"
	"github.com/CMRapp/Slideshow-sub000/internal/slideshow"
)

// Engine is the slideshow engine lifecycle the App drives.
type Engine interface {
	Start(ctx context.Context) error
	Stop()
	ApplyTiming(t slideshow.Timing) (slideshow.View, error)
}

// Runner is a background component that runs until ctx is cancelled.
type Runner interface {
	Run(ctx context.Context) error
}

// App owns the long-lived runtime: the engine, the export writer, config
// watching and reload wiring. Server management is delegated to Manager.
type App struct {
	logger       zerolog.Logger
	manager      Manager
	cfgHolder    *config.ConfigHolder
	engine       Engine
	exporter     Runner
	reloadSignal os.Signal
}

// NewApp creates a new App orchestrator. cfgHolder and exporter may be nil.
func NewApp(logger zerolog.Logger, manager Manager, cfgHolder *config.ConfigHolder, engine Engine, exporter Runner) *App {
	return &App{
		logger:       logger,
		manager:      manager,
		cfgHolder:    cfgHolder,
		engine:       engine,
		exporter:     exporter,
		reloadSignal: syscall.SIGHUP,
	}
}

// Run starts all owned subsystems and blocks until ctx is cancelled or a fatal error occurs.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}
	if a.engine == nil {
		return ErrMissingEngine
	}

	g, ctx := errgroup.WithContext(ctx)

	// The first fetch is synchronous, so servers come up alongside it and
	// report "loading" until it lands.
	g.Go(func() error {
		defer a.engine.Stop()
		if err := a.engine.Start(ctx); err != nil {
			if ctx.Err() != nil {
				// Shut down before the engine got going.
				return nil
			}
			return err
		}
		<-ctx.Done()
		return nil
	})

	if a.exporter != nil {
		g.Go(func() error { return a.exporter.Run(ctx) })
	}

	if a.cfgHolder != nil {
		// Watcher is best-effort: a missing directory must not take the display down.
		g.Go(func() error {
			if err := a.cfgHolder.Watch(ctx); err != nil {
				a.logger.Warn().Err(err).Str(xglog.FieldEvent, "config.watcher_start_failed").Msg("config watcher unavailable")
			}
			return nil
		})

		applyCh := make(chan config.AppConfig, 1)
		a.cfgHolder.RegisterListener(applyCh)
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case cfg := <-applyCh:
					a.applyConfig(cfg)
				}
			}
		})

		if a.reloadSignal != nil {
			g.Go(func() error { return a.watchReloadSignal(ctx) })
		}
	}

	g.Go(func() error {
		err := a.manager.Start(ctx)
		if err != nil {
			_ = a.manager.Shutdown(context.Background())
		}
		return err
	})

	return g.Wait()
}

// applyConfig pushes reloadable settings into the running engine. Listen
// addresses and the source URL need a restart.
func (a *App) applyConfig(cfg config.AppConfig) {
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
		zerolog.SetGlobalLevel(level)
	}
	if _, err := a.engine.ApplyTiming(TimingFromConfig(cfg)); err != nil {
		a.logger.Warn().Err(err).Str(xglog.FieldEvent, "config.apply_failed").Msg("could not apply slideshow timing")
	}
}

func (a *App) watchReloadSignal(ctx context.Context) error {
	hupChan := make(chan os.Signal, 1)
	signal.Notify(hupChan, a.reloadSignal)
	defer signal.Stop(hupChan)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-hupChan:
			a.logger.Info().
				Str(xglog.FieldEvent, "config.reload_signal").
				Str("signal", a.reloadSignal.String()).
				Msg("received reload signal, reloading config")

			if err := a.cfgHolder.Reload(ctx); err != nil {
				a.logger.Warn().
					Err(err).
					Str(xglog.FieldEvent, "config.reload_failed").
					Msg("config reload failed")
			}
		}
	}
}

// TimingFromConfig maps the polling and playback settings onto engine cadences.
func TimingFromConfig(cfg config.AppConfig) slideshow.Timing {
	return slideshow.Timing{
		AdvanceInterval: cfg.Playback.AdvanceInterval,
		ReshuffleEvery:  cfg.Playback.ReshuffleEvery,
		Backoff: slideshow.Backoff{
			Base:             cfg.Polling.BaseInterval,
			CapMultiplier:    cfg.Polling.CapMultiplier,
			HiddenMultiplier: cfg.Polling.HiddenMultiplier,
		},
	}
}
