// SPDX-License-Identifier: MIT

package api

import (
	"sync"

	"github.com/CMRapp/Slideshow-sub000/internal/slideshow"
)

// presence is what one connected display page last reported.
type presence struct {
	hovered bool
	visible bool
}

// displays merges the hover and visibility reports of every connected display
// page into the shared engine flags: hovered while any page is hovered, visible
// while any page is visible. A page that disconnects withdraws its report.
type displays struct {
	ctrl Controller

	mu    sync.Mutex
	next  uint64
	conns map[uint64]presence
}

func newDisplays(ctrl Controller) *displays {
	return &displays{ctrl: ctrl, conns: make(map[uint64]presence)}
}

// join registers a page. It counts as visible and not hovered until it reports.
func (d *displays) join() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.next
	d.next++
	d.conns[id] = presence{visible: true}
	return id
}

// report records a hovered or visible flag from page id and pushes the merged value.
func (d *displays) report(id uint64, f flag, value bool) (slideshow.View, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.conns[id]
	if !ok {
		p = presence{visible: true}
	}
	switch f {
	case flagHovered:
		p.hovered = value
	case flagVisible:
		p.visible = value
	}
	d.conns[id] = p
	return d.applyLocked(f)
}

// leave drops page id and re-applies any merged flag its departure changes.
func (d *displays) leave(id uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.conns[id]; !ok {
		return nil
	}
	before := d.mergedLocked()
	delete(d.conns, id)
	after := d.mergedLocked()

	if before.hovered != after.hovered {
		if _, err := d.applyLocked(flagHovered); err != nil {
			return err
		}
	}
	if before.visible != after.visible {
		if _, err := d.applyLocked(flagVisible); err != nil {
			return err
		}
	}
	return nil
}

// count returns the number of connected pages.
func (d *displays) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.conns)
}

// mergedLocked folds all reports. With no pages connected the engine defaults apply.
func (d *displays) mergedLocked() presence {
	if len(d.conns) == 0 {
		return presence{visible: true}
	}
	var m presence
	for _, p := range d.conns {
		m.hovered = m.hovered || p.hovered
		m.visible = m.visible || p.visible
	}
	return m
}

// applyLocked runs under d.mu so concurrent pages push merged values in order.
func (d *displays) applyLocked(f flag) (slideshow.View, error) {
	m := d.mergedLocked()
	if f == flagHovered {
		return d.ctrl.SetHovered(m.hovered)
	}
	return d.ctrl.SetVisible(m.visible)
}
