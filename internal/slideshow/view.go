// SPDX-License-Identifier: MIT

package slideshow

import (
	"time"

	"github.com/CMRapp/Slideshow-sub000/internal/media"
)

// Status is what the display should render.
type Status string

const (
	// StatusLoading: the first fetch has not completed yet.
	StatusLoading Status = "loading"
	// StatusShowing: a descriptor is on screen.
	StatusShowing Status = "showing"
	// StatusEmpty: the source returned no media. Not an error.
	StatusEmpty Status = "empty"
	// StatusError: the last fetch failed; the display shows the message and a retry control.
	StatusError Status = "error"
)

// PollState is the poller's state machine position.
type PollState string

const (
	PollIdle      PollState = "idle"
	PollScheduled PollState = "scheduled"
	PollFetching  PollState = "fetching"
)

// View is an immutable snapshot of the engine, published after every change.
type View struct {
	Revision uint64    `json:"revision"`
	Status   Status    `json:"status"`
	Error    string    `json:"error,omitempty"`
	Index    int       `json:"index"`
	Length   int       `json:"length"`
	Current  *Item     `json:"current,omitempty"`
	Playing  bool      `json:"playing"`
	Hovered  bool      `json:"hovered"`
	Visible  bool      `json:"visible"`
	Failures int       `json:"failures"`
	Cycles   int       `json:"cycles"`
	Poll     PollState `json:"poll"`

	NextPollDelay   time.Duration `json:"-"`
	NextPollSeconds float64       `json:"next_poll_seconds"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Item is the rendered form of the current descriptor.
type Item struct {
	media.Descriptor
	Kind    media.Category `json:"kind"`
	Label   string         `json:"label"`
	Caption string         `json:"caption"`
}

// Advancing reports whether the automatic advance timer currently moves the cursor.
func (v View) Advancing() bool {
	return v.Status == StatusShowing && v.Playing && !v.Hovered
}

func newItem(d media.Descriptor) *Item {
	return &Item{
		Descriptor: d,
		Kind:       d.Kind(),
		Label:      d.Label(),
		Caption:    d.Caption(),
	}
}
