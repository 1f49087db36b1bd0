// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	xglog "github.com/CMRapp/Slideshow-sub000/internal/log"
)

const defaultDebounce = 500 * time.Millisecond

// ConfigHolder holds configuration with atomic reloading capability.
// Reloads come from the file watcher, SIGHUP or the reload API endpoint.
type ConfigHolder struct {
	mu         sync.RWMutex
	current    AppConfig
	loader     *Loader
	configPath string
	debounce   time.Duration
	logger     zerolog.Logger

	reloadMu        sync.RWMutex
	reloadListeners []chan<- AppConfig
}

// NewConfigHolder creates a new configuration holder with initial config.
func NewConfigHolder(initial AppConfig, loader *Loader) *ConfigHolder {
	return &ConfigHolder{
		current:    initial,
		loader:     loader,
		configPath: loader.Path(),
		debounce:   defaultDebounce,
		logger:     xglog.WithComponent("config"),
	}
}

// Get returns the current configuration (thread-safe read).
func (h *ConfigHolder) Get() AppConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Reload reloads configuration and swaps it in only when it loads and validates.
// On failure the previous configuration stays active.
func (h *ConfigHolder) Reload(_ context.Context) error {
	h.logger.Info().Str(xglog.FieldEvent, "config.reload_start").Msg("reloading configuration")

	newCfg, err := h.loader.Load()
	if err != nil {
		h.logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "config.reload_failed").
			Msg("failed to load new configuration")
		return fmt.Errorf("load config: %w", err)
	}

	h.mu.Lock()
	oldCfg := h.current
	h.current = newCfg
	h.mu.Unlock()

	h.notifyListeners(newCfg)
	h.logChanges(oldCfg, newCfg)

	h.logger.Info().
		Str(xglog.FieldEvent, "config.reload_success").
		Msg("configuration reloaded successfully")
	return nil
}

// Watch blocks watching the config file until ctx is cancelled. It watches the
// parent directory so that editors replacing the file by rename are seen.
// With no config file it returns immediately.
func (h *ConfigHolder) Watch(ctx context.Context) error {
	if h.configPath == "" {
		h.logger.Info().
			Str(xglog.FieldEvent, "config.watcher_disabled").
			Msg("config file watcher disabled (using ENV-only configuration)")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	target := filepath.Clean(h.configPath)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch config dir: %w", err)
	}

	h.logger.Info().
		Str(xglog.FieldEvent, "config.watcher_started").
		Str(xglog.FieldPath, target).
		Msg("watching config file for changes")

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Str(xglog.FieldEvent, "config.watcher_stopped").Msg("config watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			h.logger.Debug().
				Str(xglog.FieldEvent, "config.file_changed").
				Str("op", event.Op.String()).
				Msg("config file changed")

			if debounce == nil {
				debounce = time.NewTimer(h.debounce)
			} else {
				debounce.Reset(h.debounce)
			}
			fire = debounce.C

		case <-fire:
			fire = nil
			if err := h.Reload(ctx); err != nil {
				h.logger.Error().
					Err(err).
					Str(xglog.FieldEvent, "config.auto_reload_failed").
					Msg("automatic config reload failed")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			h.logger.Error().
				Err(err).
				Str(xglog.FieldEvent, "config.watcher_error").
				Msg("config watcher error")
		}
	}
}

// RegisterListener registers a channel to receive config reload notifications.
// Sends are non-blocking; the caller is responsible for closing the channel.
func (h *ConfigHolder) RegisterListener(ch chan<- AppConfig) {
	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()
	h.reloadListeners = append(h.reloadListeners, ch)
}

func (h *ConfigHolder) notifyListeners(newCfg AppConfig) {
	h.reloadMu.RLock()
	defer h.reloadMu.RUnlock()

	for _, ch := range h.reloadListeners {
		select {
		case ch <- newCfg:
		default:
			h.logger.Warn().
				Str(xglog.FieldEvent, "config.listener_skip").
				Msg("skipped notifying listener (channel full)")
		}
	}
}

func (h *ConfigHolder) logChanges(old, newCfg AppConfig) {
	changed := func(key string, from, to any) {
		h.logger.Info().
			Str(xglog.FieldEvent, "config.changed").
			Str("key", key).
			Interface("old", from).
			Interface("new", to).
			Msg("config value changed")
	}

	if old.Source.URL != newCfg.Source.URL {
		changed("source.url", MaskURL(old.Source.URL), MaskURL(newCfg.Source.URL))
	}
	if old.Polling != newCfg.Polling {
		changed("polling", old.Polling, newCfg.Polling)
	}
	if old.Playback != newCfg.Playback {
		changed("playback", old.Playback, newCfg.Playback)
	}
	if old.Export != newCfg.Export {
		changed("export.m3uPath", old.Export.M3UPath, newCfg.Export.M3UPath)
	}
	if old.LogLevel != newCfg.LogLevel {
		changed("logLevel", old.LogLevel, newCfg.LogLevel)
	}
	if !slices.Equal(old.API.AllowedOrigins, newCfg.API.AllowedOrigins) {
		changed("api.allowedOrigins", old.API.AllowedOrigins, newCfg.API.AllowedOrigins)
	}
	if old.API.ListenAddr != newCfg.API.ListenAddr || old.Metrics != newCfg.Metrics {
		h.logger.Warn().
			Str(xglog.FieldEvent, "config.restart_required").
			Msg("listener addresses changed; restart required to apply")
	}
}

// MaskURL hides credentials and query strings from a URL for logging.
func MaskURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "***redacted***"
	}
	return (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: u.Path}).String()
}
