// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{} // keys read during the last Load
}

// NewLoader creates a new configuration loader. An empty configPath means ENV-only.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// Path returns the config file path (may be empty).
func (l *Loader) Path() string {
	return l.configPath
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

func (l *Loader) envList(key string, defaultVal []string) []string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseList(key, defaultVal)
}

// Load loads configuration with precedence: ENV > File > Defaults.
// Order is fixed: defaults, strict file parse, env overrides, validation.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		if err := l.loadFile(l.configPath, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	l.mergeEnv(&cfg)
	cfg.Source.URL = strings.TrimSpace(expandEnv(cfg.Source.URL))
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile decodes a YAML file over cfg. Keys absent from the file keep their
// current value; unknown keys are an error.
func (l *Loader) loadFile(path string, cfg *AppConfig) error {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("%w: %s (only YAML supported)", ErrUnsupportedFormat, ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("strict config parse error: %w: %w", ErrUnknownConfigField, err)
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return nil
}

func (l *Loader) mergeEnv(cfg *AppConfig) {
	clear(l.ConsumedEnvKeys)

	cfg.LogLevel = l.envString(EnvLogLevel, cfg.LogLevel)

	cfg.API.ListenAddr = l.envString(EnvListenAddr, cfg.API.ListenAddr)
	cfg.API.AllowedOrigins = l.envList(EnvAllowedOrigins, cfg.API.AllowedOrigins)
	cfg.API.RateLimit.Requests = l.envInt(EnvRateLimitRequests, cfg.API.RateLimit.Requests)
	cfg.API.RateLimit.Window = l.envDuration(EnvRateLimitWindow, cfg.API.RateLimit.Window)

	cfg.Metrics.Enabled = l.envBool(EnvMetricsEnabled, cfg.Metrics.Enabled)
	cfg.Metrics.ListenAddr = l.envString(EnvMetricsListen, cfg.Metrics.ListenAddr)

	cfg.Source.URL = l.envString(EnvSourceURL, cfg.Source.URL)
	cfg.Source.ListField = l.envString(EnvSourceListField, cfg.Source.ListField)
	cfg.Source.Timeout = l.envDuration(EnvSourceTimeout, cfg.Source.Timeout)

	cfg.Polling.BaseInterval = l.envDuration(EnvPollBase, cfg.Polling.BaseInterval)
	cfg.Polling.CapMultiplier = l.envInt(EnvPollCap, cfg.Polling.CapMultiplier)
	cfg.Polling.HiddenMultiplier = l.envInt(EnvPollHidden, cfg.Polling.HiddenMultiplier)

	cfg.Playback.AdvanceInterval = l.envDuration(EnvAdvanceInterval, cfg.Playback.AdvanceInterval)
	cfg.Playback.ReshuffleEvery = l.envInt(EnvReshuffleEvery, cfg.Playback.ReshuffleEvery)
	cfg.Playback.StartPlaying = l.envBool(EnvStartPlaying, cfg.Playback.StartPlaying)

	cfg.Export.M3UPath = l.envString(EnvExportM3U, cfg.Export.M3UPath)

	cfg.Telemetry.Enabled = l.envBool(EnvTelemetryEnabled, cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = l.envString(EnvTelemetryExporter, cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString(EnvTelemetryEndpoint, cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat(EnvTelemetrySampling, cfg.Telemetry.SamplingRate)
}
