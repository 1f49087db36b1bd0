// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/CMRapp/Slideshow-sub000/internal/config"
	"github.com/CMRapp/Slideshow-sub000/internal/log"
)

const resolveTimeout = 2 * time.Second

// PerformStartupChecks validates the environment before the daemon starts serving.
// An unwritable export directory is fatal; an unresolvable source host only warns,
// because the poller retries and the display shows the error.
func PerformStartupChecks(ctx context.Context, cfg config.AppConfig) error {
	logger := log.WithComponent("startup-check")
	logger.Info().Msg("running pre-flight startup checks")

	if cfg.Export.M3UPath != "" {
		if err := checkWritableDir(filepath.Dir(cfg.Export.M3UPath)); err != nil {
			return fmt.Errorf("export directory check failed: %w", err)
		}
	}

	checkSourceHost(ctx, logger, cfg.Source.URL)

	logger.Info().Msg("all startup checks passed")
	return nil
}

func checkWritableDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", path)
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	f, err := os.CreateTemp(path, ".write_test_*")
	if err != nil {
		return fmt.Errorf("directory is not writable: %s: %w", path, err)
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return nil
}

func checkSourceHost(ctx context.Context, logger zerolog.Logger, rawURL string) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return
	}
	host := u.Hostname()
	if net.ParseIP(host) != nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, resolveTimeout)
	defer cancel()
	if _, err := net.DefaultResolver.LookupHost(ctx, host); err != nil {
		logger.Warn().
			Err(err).
			Str(log.FieldEvent, "startup.source_unresolved").
			Str("host", host).
			Msg("media source host does not resolve yet; polling will retry")
	}
}
