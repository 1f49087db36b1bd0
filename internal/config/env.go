// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/CMRapp/Slideshow-sub000/internal/log"
)

// Environment variable names. Every YAML key has an ENV counterpart.
const (
	EnvLogLevel          = "SLIDESHOW_LOG_LEVEL"
	EnvListenAddr        = "SLIDESHOW_LISTEN"
	EnvAllowedOrigins    = "SLIDESHOW_ALLOWED_ORIGINS"
	EnvRateLimitRequests = "SLIDESHOW_RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "SLIDESHOW_RATE_LIMIT_WINDOW"
	EnvMetricsEnabled    = "SLIDESHOW_METRICS_ENABLED"
	EnvMetricsListen     = "SLIDESHOW_METRICS_LISTEN"
	EnvSourceURL         = "SLIDESHOW_SOURCE_URL"
	EnvSourceListField   = "SLIDESHOW_SOURCE_LIST_FIELD"
	EnvSourceTimeout     = "SLIDESHOW_SOURCE_TIMEOUT"
	EnvPollBase          = "SLIDESHOW_POLL_BASE_INTERVAL"
	EnvPollCap           = "SLIDESHOW_POLL_CAP_MULTIPLIER"
	EnvPollHidden        = "SLIDESHOW_POLL_HIDDEN_MULTIPLIER"
	EnvAdvanceInterval   = "SLIDESHOW_ADVANCE_INTERVAL"
	EnvReshuffleEvery    = "SLIDESHOW_RESHUFFLE_EVERY"
	EnvStartPlaying      = "SLIDESHOW_START_PLAYING"
	EnvExportM3U         = "SLIDESHOW_EXPORT_M3U"
	EnvTelemetryEnabled  = "SLIDESHOW_TELEMETRY_ENABLED"
	EnvTelemetryExporter = "SLIDESHOW_TELEMETRY_EXPORTER"
	EnvTelemetryEndpoint = "SLIDESHOW_TELEMETRY_ENDPOINT"
	EnvTelemetrySampling = "SLIDESHOW_TELEMETRY_SAMPLING_RATE"
	EnvConfigPath        = "SLIDESHOW_CONFIG"
)

// parseEnv implements the shared lookup policy: unset or empty falls back to the
// default, unparsable values warn and fall back, and every decision is logged
// with its source.
func parseEnv[T any](
	logger zerolog.Logger,
	key string,
	defaultValue T,
	parse func(string) (T, error),
	field func(*zerolog.Event, string, T) *zerolog.Event,
) T {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		msg := "using default value"
		if ok {
			msg = "using default value (environment variable is empty)"
		}
		field(logger.Debug().Str("key", key).Str("source", "default"), "default", defaultValue).Msg(msg)
		return defaultValue
	}

	parsed, err := parse(v)
	if err != nil {
		field(logger.Warn().Str("key", key).Str("value", v), "default", defaultValue).
			Msg("invalid environment variable, using default")
		return defaultValue
	}

	ev := logger.Debug().Str("key", key).Str("source", "environment")
	if isSensitive(key) {
		ev = ev.Bool("sensitive", true)
	} else {
		ev = field(ev, "value", parsed)
	}
	ev.Msg("using environment variable")
	return parsed
}

func isSensitive(key string) bool {
	k := strings.ToLower(key)
	return strings.Contains(k, "token") || strings.Contains(k, "password") || strings.Contains(k, "secret")
}

func envLogger() zerolog.Logger {
	return log.WithComponent("config")
}

// ParseString reads a string from environment variable or returns default value.
func ParseString(key, defaultValue string) string {
	return parseEnv(envLogger(), key, defaultValue,
		func(s string) (string, error) { return s, nil },
		func(e *zerolog.Event, k, v string) *zerolog.Event { return e.Str(k, v) })
}

// ParseInt reads an integer from environment variable or returns default value.
func ParseInt(key string, defaultValue int) int {
	return parseEnv(envLogger(), key, defaultValue, strconv.Atoi,
		func(e *zerolog.Event, k string, v int) *zerolog.Event { return e.Int(k, v) })
}

// ParseDuration reads a duration in Go duration format (e.g. "5s").
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	return parseEnv(envLogger(), key, defaultValue, time.ParseDuration,
		func(e *zerolog.Event, k string, v time.Duration) *zerolog.Event { return e.Dur(k, v) })
}

// ParseBool reads a boolean. It accepts "true", "false", "1", "0", "yes", "no" (case-insensitive).
func ParseBool(key string, defaultValue bool) bool {
	return parseEnv(envLogger(), key, defaultValue, parseBool,
		func(e *zerolog.Event, k string, v bool) *zerolog.Event { return e.Bool(k, v) })
}

// ParseFloat reads a float64 from environment variable or returns default value.
func ParseFloat(key string, defaultValue float64) float64 {
	return parseEnv(envLogger(), key, defaultValue,
		func(s string) (float64, error) { return strconv.ParseFloat(s, 64) },
		func(e *zerolog.Event, k string, v float64) *zerolog.Event { return e.Float64(k, v) })
}

// ParseList reads a comma-separated list; blank entries are dropped.
func ParseList(key string, defaultValue []string) []string {
	return parseEnv(envLogger(), key, defaultValue, splitList,
		func(e *zerolog.Event, k string, v []string) *zerolog.Event { return e.Strs(k, v) })
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

func splitList(s string) ([]string, error) {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

// expandEnv expands environment variables in the format ${VAR} or $VAR
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}
