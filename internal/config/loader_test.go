// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CMRapp/Slideshow-sub000/internal/validate"
)

const minimalYAML = `
source:
  url: https://media.example.com/api/media
`

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoader_DefaultsWithMinimalFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), minimalYAML)

	cfg, err := NewLoader(path, "1.2.3").Load()
	require.NoError(t, err)

	want := Defaults()
	want.Version = "1.2.3"
	want.Source.URL = "https://media.example.com/api/media"
	assert.Equal(t, want, cfg)
}

func TestLoader_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
logLevel: debug
api:
  listenAddr: ":9000"
  allowedOrigins: ["https://kiosk.example.com"]
  rateLimit:
    requests: 10
    window: 30s
source:
  url: https://media.example.com/api/media
  listField: items
  timeout: 3s
polling:
  baseInterval: 1m
  capMultiplier: 4
  hiddenMultiplier: 2
playback:
  advanceInterval: 8s
  reshuffleEvery: 3
  startPlaying: false
`)

	cfg, err := NewLoader(path, "").Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":9000", cfg.API.ListenAddr)
	assert.Equal(t, []string{"https://kiosk.example.com"}, cfg.API.AllowedOrigins)
	assert.Equal(t, RateLimitConfig{Requests: 10, Window: 30 * time.Second}, cfg.API.RateLimit)
	assert.Equal(t, SourceConfig{URL: "https://media.example.com/api/media", ListField: "items", Timeout: 3 * time.Second}, cfg.Source)
	assert.Equal(t, PollingConfig{BaseInterval: time.Minute, CapMultiplier: 4, HiddenMultiplier: 2}, cfg.Polling)
	assert.Equal(t, PlaybackConfig{AdvanceInterval: 8 * time.Second, ReshuffleEvery: 3, StartPlaying: false}, cfg.Playback)
	assert.Equal(t, DefaultMetricsListenAddr, cfg.Metrics.ListenAddr, "untouched keys keep defaults")
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), minimalYAML+"polling:\n  baseInterval: 1m\n")
	t.Setenv(EnvPollBase, "10s")
	t.Setenv(EnvSourceURL, "http://override.example.com/list")
	t.Setenv(EnvAllowedOrigins, "https://a.example,https://b.example")
	t.Setenv(EnvStartPlaying, "no")

	l := NewLoader(path, "")
	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Polling.BaseInterval)
	assert.Equal(t, "http://override.example.com/list", cfg.Source.URL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.API.AllowedOrigins)
	assert.False(t, cfg.Playback.StartPlaying)
	assert.Contains(t, l.ConsumedEnvKeys, EnvPollBase)
	assert.Contains(t, l.ConsumedEnvKeys, EnvTelemetrySampling)
}

func TestLoader_EnvOnly(t *testing.T) {
	t.Setenv("MEDIA_HOST", "media.internal")
	t.Setenv(EnvSourceURL, "https://${MEDIA_HOST}/api/media")

	cfg, err := NewLoader("", "").Load()
	require.NoError(t, err)
	assert.Equal(t, "https://media.internal/api/media", cfg.Source.URL)
}

func TestLoader_StrictParsing(t *testing.T) {
	path := writeConfig(t, t.TempDir(), minimalYAML+"bouquet: premium\n")

	_, err := NewLoader(path, "").Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownConfigField))
}

func TestLoader_RejectsMultipleDocuments(t *testing.T) {
	path := writeConfig(t, t.TempDir(), minimalYAML+"---\nlogLevel: warn\n")

	_, err := NewLoader(path, "").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple documents")
}

func TestLoader_RejectsNonYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))

	_, err := NewLoader(path, "").Load()
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoader_MissingFile(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "absent.yaml"), "").Load()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoader_EmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "")
	t.Setenv(EnvSourceURL, "https://media.example.com/api/media")

	cfg, err := NewLoader(path, "").Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseInterval, cfg.Polling.BaseInterval)
}

func TestValidate(t *testing.T) {
	valid := Defaults()
	valid.Source.URL = "https://media.example.com/api/media"
	require.NoError(t, Validate(valid))

	tests := []struct {
		name   string
		mutate func(*AppConfig)
		field  string
	}{
		{"missing source url", func(c *AppConfig) { c.Source.URL = "" }, "source.url"},
		{"non-http source", func(c *AppConfig) { c.Source.URL = "file:///tmp/list.json" }, "source.url"},
		{"zero base interval", func(c *AppConfig) { c.Polling.BaseInterval = 0 }, "polling.baseInterval"},
		{"cap below one", func(c *AppConfig) { c.Polling.CapMultiplier = 0 }, "polling.capMultiplier"},
		{"hidden below one", func(c *AppConfig) { c.Polling.HiddenMultiplier = 0 }, "polling.hiddenMultiplier"},
		{"zero advance", func(c *AppConfig) { c.Playback.AdvanceInterval = 0 }, "playback.advanceInterval"},
		{"reshuffle below one", func(c *AppConfig) { c.Playback.ReshuffleEvery = 0 }, "playback.reshuffleEvery"},
		{"bad log level", func(c *AppConfig) { c.LogLevel = "loud" }, "logLevel"},
		{"metrics on api port", func(c *AppConfig) { c.Metrics.ListenAddr = c.API.ListenAddr }, "metrics.listenAddr"},
		{"bad exporter", func(c *AppConfig) {
			c.Telemetry.Enabled = true
			c.Telemetry.Exporter = "zipkin"
		}, "telemetry.exporter"},
		{"sampling out of range", func(c *AppConfig) {
			c.Telemetry.Enabled = true
			c.Telemetry.SamplingRate = 2
		}, "telemetry.samplingRate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			err := Validate(cfg)
			require.Error(t, err)
			var ve validate.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields(), tt.field)
		})
	}
}

func TestParseServerConfig(t *testing.T) {
	cfg := Defaults()
	cfg.API.ListenAddr = ":7000"
	t.Setenv("SLIDESHOW_SERVER_SHUTDOWN_TIMEOUT", "1s")
	t.Setenv("SLIDESHOW_SERVER_READ_TIMEOUT", "5s")

	sc := ParseServerConfig(cfg)
	assert.Equal(t, ":7000", sc.ListenAddr)
	assert.Equal(t, 5*time.Second, sc.ReadTimeout)
	assert.Equal(t, time.Duration(0), sc.WriteTimeout)
	assert.Equal(t, minShutdownTimeout, sc.ShutdownTimeout, "shutdown timeout has a floor")

	assert.Equal(t, DefaultMetricsListenAddr, MetricsAddr(cfg))
	cfg.Metrics.Enabled = false
	assert.Empty(t, MetricsAddr(cfg))
}
