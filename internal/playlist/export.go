// SPDX-License-Identifier: MIT

package playlist

import (
	"context"
	"fmt"

	"github.com/google/renameio/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	xglog "github.com/CMRapp/Slideshow-sub000/internal/log"
	"github.com/CMRapp/Slideshow-sub000/internal/media"
)

var exportWrites = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "slideshow_export_writes_total",
	Help: "M3U playback order exports by result",
}, []string{"result"}) // result=success|failure

// WriteFile atomically replaces path with the M3U rendering of items.
// The pending file is fsynced before the rename.
func WriteFile(path string, items []Item) error {
	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending M3U file: %w", err)
	}
	defer func() { _ = pendingFile.Cleanup() }()

	if err := WriteM3U(pendingFile, items); err != nil {
		return fmt.Errorf("write M3U data: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace M3U file: %w", err)
	}
	return nil
}

// Exporter writes the playback order to disk whenever it changes. Observe is
// safe to call from the engine loop: it never blocks and keeps only the latest order.
type Exporter struct {
	path    string
	pending chan []media.Descriptor
	logger  zerolog.Logger
}

// NewExporter creates an exporter for path.
func NewExporter(path string) *Exporter {
	return &Exporter{
		path:    path,
		pending: make(chan []media.Descriptor, 1),
		logger:  xglog.WithComponent("export"),
	}
}

// Observe queues an order for writing, replacing any order not yet written.
func (e *Exporter) Observe(items []media.Descriptor) {
	for {
		select {
		case e.pending <- items:
			return
		default:
		}
		select {
		case <-e.pending:
		default:
		}
	}
}

// Run writes queued orders until ctx is cancelled. A final queued order is
// flushed before returning.
func (e *Exporter) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			select {
			case items := <-e.pending:
				e.write(items)
			default:
			}
			return nil
		case items := <-e.pending:
			e.write(items)
		}
	}
}

func (e *Exporter) write(items []media.Descriptor) {
	if err := WriteFile(e.path, FromDescriptors(items)); err != nil {
		exportWrites.WithLabelValues("failure").Inc()
		e.logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "export.write_failed").
			Str(xglog.FieldExportTo, e.path).
			Msg("failed to export playback order")
		return
	}
	exportWrites.WithLabelValues("success").Inc()
	e.logger.Debug().
		Str(xglog.FieldEvent, "export.written").
		Str(xglog.FieldExportTo, e.path).
		Int(xglog.FieldLength, len(items)).
		Msg("playback order exported")
}
