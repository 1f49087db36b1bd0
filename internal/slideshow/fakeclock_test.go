// SPDX-License-Identifier: MIT

package slideshow

import (
	"sort"
	"sync"
	"time"
)

// fakeClock is a manually advanced Clock. Due timers and tickers are delivered
// synchronously from Advance, so once Advance returns the engine loop has
// received every event that fired.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	timers  []*fakeTimer
	tickers []*fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) NewTimer(d time.Duration) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, when: c.now.Add(d), ch: make(chan time.Time)}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{clock: c, period: d, next: c.now.Add(d), ch: make(chan time.Time)}
	c.tickers = append(c.tickers, t)
	return t
}

// Pending returns the number of armed one-shot timers.
func (c *fakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

type fakeEvent struct {
	at time.Time
	ch chan time.Time
}

// Advance moves time forward by d and delivers everything that came due.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now

	var events []fakeEvent
	remaining := c.timers[:0]
	for _, t := range c.timers {
		if !t.when.After(now) {
			t.fired = true
			events = append(events, fakeEvent{at: t.when, ch: t.ch})
			continue
		}
		remaining = append(remaining, t)
	}
	c.timers = remaining

	for _, t := range c.tickers {
		// Like time.Ticker, missed ticks collapse into one.
		if t.stopped || t.next.After(now) {
			continue
		}
		events = append(events, fakeEvent{at: t.next, ch: t.ch})
		for !t.next.After(now) {
			t.next = t.next.Add(t.period)
		}
	}
	c.mu.Unlock()

	sort.SliceStable(events, func(i, j int) bool { return events[i].at.Before(events[j].at) })
	for _, ev := range events {
		select {
		case ev.ch <- ev.at:
		case <-time.After(time.Second):
		}
	}
}

type fakeTimer struct {
	clock *fakeClock
	when  time.Time
	ch    chan time.Time
	fired bool
}

func (t *fakeTimer) C() <-chan time.Time { return t.ch }

func (t *fakeTimer) Stop() bool {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, other := range c.timers {
		if other == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return true
		}
	}
	return false
}

type fakeTicker struct {
	clock   *fakeClock
	period  time.Duration
	next    time.Time
	ch      chan time.Time
	stopped bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	t.stopped = true
}
