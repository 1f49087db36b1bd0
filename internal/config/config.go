// SPDX-License-Identifier: MIT

// Package config loads, validates and hot-reloads the slideshowd configuration.
//
// Precedence is ENV > YAML file > defaults. The YAML file is parsed strictly:
// unknown keys are rejected.
package config

import "time"

// AppConfig is the fully resolved daemon configuration.
type AppConfig struct {
	Version string `yaml:"-"`

	LogLevel  string          `yaml:"logLevel"`
	API       APIConfig       `yaml:"api"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Source    SourceConfig    `yaml:"source"`
	Polling   PollingConfig   `yaml:"polling"`
	Playback  PlaybackConfig  `yaml:"playback"`
	Export    ExportConfig    `yaml:"export"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// APIConfig configures the control and display HTTP server.
type APIConfig struct {
	ListenAddr     string          `yaml:"listenAddr"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig bounds control requests per client IP.
type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// MetricsConfig configures the separate Prometheus listener.
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listenAddr"`
}

// SourceConfig points at the external media list endpoint.
type SourceConfig struct {
	URL       string        `yaml:"url"`
	ListField string        `yaml:"listField"`
	Timeout   time.Duration `yaml:"timeout"`
}

// PollingConfig drives the visibility-aware poller backoff.
type PollingConfig struct {
	BaseInterval     time.Duration `yaml:"baseInterval"`
	CapMultiplier    int           `yaml:"capMultiplier"`
	HiddenMultiplier int           `yaml:"hiddenMultiplier"`
}

// PlaybackConfig drives the cursor and reshuffler.
type PlaybackConfig struct {
	AdvanceInterval time.Duration `yaml:"advanceInterval"`
	ReshuffleEvery  int           `yaml:"reshuffleEvery"`
	StartPlaying    bool          `yaml:"startPlaying"`
}

// ExportConfig enables the playback-order M3U export when M3UPath is set.
type ExportConfig struct {
	M3UPath string `yaml:"m3uPath"`
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
}

// Default values.
const (
	DefaultLogLevel          = "info"
	DefaultListenAddr        = ":8088"
	DefaultMetricsListenAddr = ":9090"
	DefaultListField         = "media"
	DefaultSourceTimeout     = 10 * time.Second
	DefaultBaseInterval      = 30 * time.Second
	DefaultCapMultiplier     = 8
	DefaultHiddenMultiplier  = 4
	DefaultAdvanceInterval   = 5 * time.Second
	DefaultReshuffleEvery    = 5
	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = time.Minute
	DefaultTelemetryExporter = "grpc"
	DefaultTelemetryEndpoint = "localhost:4317"
)

// Defaults returns the configuration used when neither file nor env set a value.
func Defaults() AppConfig {
	return AppConfig{
		LogLevel: DefaultLogLevel,
		API: APIConfig{
			ListenAddr: DefaultListenAddr,
			RateLimit: RateLimitConfig{
				Requests: DefaultRateLimitRequests,
				Window:   DefaultRateLimitWindow,
			},
		},
		Metrics: MetricsConfig{
			Enabled:    true,
			ListenAddr: DefaultMetricsListenAddr,
		},
		Source: SourceConfig{
			ListField: DefaultListField,
			Timeout:   DefaultSourceTimeout,
		},
		Polling: PollingConfig{
			BaseInterval:     DefaultBaseInterval,
			CapMultiplier:    DefaultCapMultiplier,
			HiddenMultiplier: DefaultHiddenMultiplier,
		},
		Playback: PlaybackConfig{
			AdvanceInterval: DefaultAdvanceInterval,
			ReshuffleEvery:  DefaultReshuffleEvery,
			StartPlaying:    true,
		},
		Telemetry: TelemetryConfig{
			Exporter:     DefaultTelemetryExporter,
			Endpoint:     DefaultTelemetryEndpoint,
			SamplingRate: 1.0,
		},
	}
}
