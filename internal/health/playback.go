// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"fmt"

	"github.com/CMRapp/Slideshow-sub000/internal/slideshow"
)

// Snapshotter exposes the engine's latest view.
type Snapshotter interface {
	Snapshot() slideshow.View
}

// PlaybackChecker derives readiness from the slideshow engine. The daemon is
// ready once the first fetch has completed; a failing source degrades it.
type PlaybackChecker struct {
	engine Snapshotter
}

// NewPlaybackChecker creates a checker over the engine snapshot.
func NewPlaybackChecker(engine Snapshotter) *PlaybackChecker {
	return &PlaybackChecker{engine: engine}
}

func (c *PlaybackChecker) Name() string {
	return "playback"
}

func (c *PlaybackChecker) Check(_ context.Context) CheckResult {
	v := c.engine.Snapshot()
	switch v.Status {
	case slideshow.StatusLoading:
		return CheckResult{Status: StatusUnhealthy, Message: "waiting for first playlist fetch"}
	case slideshow.StatusError:
		return CheckResult{
			Status:  StatusDegraded,
			Message: fmt.Sprintf("%d consecutive fetch failures", v.Failures),
			Error:   v.Error,
		}
	case slideshow.StatusEmpty:
		return CheckResult{Status: StatusHealthy, Message: "playlist is empty"}
	default:
		return CheckResult{
			Status:  StatusHealthy,
			Message: fmt.Sprintf("showing %d of %d", v.Index+1, v.Length),
		}
	}
}
