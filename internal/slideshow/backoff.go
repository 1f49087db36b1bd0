// SPDX-License-Identifier: MIT

package slideshow

import "time"

// Backoff computes the delay before the next playlist poll:
//
//	delay = Base × min(2^failures, CapMultiplier) × (visible ? 1 : HiddenMultiplier)
type Backoff struct {
	Base             time.Duration
	CapMultiplier    int
	HiddenMultiplier int
}

// DefaultBackoff polls every 30s, backs off up to 8× and slows 4× while hidden.
func DefaultBackoff() Backoff {
	return Backoff{
		Base:             30 * time.Second,
		CapMultiplier:    8,
		HiddenMultiplier: 4,
	}
}

// Multiplier returns min(2^failures, CapMultiplier).
func (b Backoff) Multiplier(failures int) int {
	limit := b.CapMultiplier
	if limit < 1 {
		limit = 1
	}
	m := 1
	for i := 0; i < failures && m < limit; i++ {
		m *= 2
	}
	if m > limit {
		m = limit
	}
	return m
}

// Delay returns the poll delay for the given failure count and visibility.
func (b Backoff) Delay(failures int, visible bool) time.Duration {
	d := b.Base * time.Duration(b.Multiplier(failures))
	if !visible {
		hidden := b.HiddenMultiplier
		if hidden < 1 {
			hidden = 1
		}
		d *= time.Duration(hidden)
	}
	return d
}
