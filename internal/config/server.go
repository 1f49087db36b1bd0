// SPDX-License-Identifier: MIT

package config

import (
	"strings"
	"time"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	// ListenAddr is the address to listen on (e.g., ":8088")
	ListenAddr string

	// ReadTimeout is the maximum duration for reading the entire request
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response.
	// Zero disables it, which long-lived websocket connections rely on.
	WriteTimeout time.Duration

	// IdleTimeout is the maximum amount of time to wait for the next request
	IdleTimeout time.Duration

	// MaxHeaderBytes bounds the size of request headers.
	MaxHeaderBytes int

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown
	ShutdownTimeout time.Duration
}

const (
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 0
	defaultIdleTimeout     = 120 * time.Second
	defaultMaxHeaderBytes  = 1 << 20 // 1 MB
	defaultShutdownTimeout = 15 * time.Second
	minShutdownTimeout     = 3 * time.Second
)

// ParseServerConfig resolves server settings for cfg. Timeouts come from
// SLIDESHOW_SERVER_* env vars or defaults; the listen address comes from cfg.
func ParseServerConfig(cfg AppConfig) ServerConfig {
	listen := strings.TrimSpace(cfg.API.ListenAddr)
	if listen == "" {
		listen = DefaultListenAddr
	}

	maxHeaderBytes := ParseInt("SLIDESHOW_SERVER_MAX_HEADER_BYTES", defaultMaxHeaderBytes)
	if maxHeaderBytes <= 0 {
		maxHeaderBytes = defaultMaxHeaderBytes
	}

	shutdownTimeout := ParseDuration("SLIDESHOW_SERVER_SHUTDOWN_TIMEOUT", defaultShutdownTimeout)
	if shutdownTimeout < minShutdownTimeout {
		shutdownTimeout = minShutdownTimeout
	}

	return ServerConfig{
		ListenAddr:      listen,
		ReadTimeout:     ParseDuration("SLIDESHOW_SERVER_READ_TIMEOUT", defaultReadTimeout),
		WriteTimeout:    ParseDuration("SLIDESHOW_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
		IdleTimeout:     ParseDuration("SLIDESHOW_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		MaxHeaderBytes:  maxHeaderBytes,
		ShutdownTimeout: shutdownTimeout,
	}
}

// MetricsAddr returns the metrics listen address, or "" when metrics are disabled.
func MetricsAddr(cfg AppConfig) string {
	if !cfg.Metrics.Enabled {
		return ""
	}
	return cfg.Metrics.ListenAddr
}
