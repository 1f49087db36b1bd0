// SPDX-License-Identifier: MIT

package config

import (
	"github.com/CMRapp/Slideshow-sub000/internal/validate"
)

const maxCapMultiplier = 1 << 16

// Validate checks a resolved AppConfig and reports every invalid field at once.
func Validate(cfg AppConfig) error {
	v := validate.New()

	if _, err := validate.ParseLogLevel(cfg.LogLevel); err != nil {
		v.AddError("logLevel", "must be one of trace, debug, info, warn, error", cfg.LogLevel)
	}

	v.ListenAddr("api.listenAddr", cfg.API.ListenAddr)
	v.Positive("api.rateLimit.requests", cfg.API.RateLimit.Requests)
	v.PositiveDuration("api.rateLimit.window", cfg.API.RateLimit.Window)

	if cfg.Metrics.Enabled {
		v.ListenAddr("metrics.listenAddr", cfg.Metrics.ListenAddr)
		if cfg.Metrics.ListenAddr == cfg.API.ListenAddr {
			v.AddError("metrics.listenAddr", "must differ from api.listenAddr", cfg.Metrics.ListenAddr)
		}
	}

	v.URL("source.url", cfg.Source.URL, []string{"http", "https"})
	v.NotEmpty("source.listField", cfg.Source.ListField)
	v.PositiveDuration("source.timeout", cfg.Source.Timeout)

	v.PositiveDuration("polling.baseInterval", cfg.Polling.BaseInterval)
	// base × cap × hidden must fit in a time.Duration.
	v.Range("polling.capMultiplier", cfg.Polling.CapMultiplier, 1, maxCapMultiplier)
	v.Min("polling.hiddenMultiplier", cfg.Polling.HiddenMultiplier, 1)

	v.PositiveDuration("playback.advanceInterval", cfg.Playback.AdvanceInterval)
	v.Min("playback.reshuffleEvery", cfg.Playback.ReshuffleEvery, 1)

	v.OutputFile("export.m3uPath", cfg.Export.M3UPath)

	if cfg.Telemetry.Enabled {
		v.OneOf("telemetry.exporter", cfg.Telemetry.Exporter, []string{"grpc", "http"})
		v.NotEmpty("telemetry.endpoint", cfg.Telemetry.Endpoint)
		v.FloatRange("telemetry.samplingRate", cfg.Telemetry.SamplingRate, 0, 1)
	}

	return v.Err()
}
