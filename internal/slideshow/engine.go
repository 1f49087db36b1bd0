// SPDX-License-Identifier: MIT

// Package slideshow implements the playback engine: it polls the media source
// with visibility-aware backoff, advances a cursor on a fixed cadence and
// reshuffles the playlist every few full cycles.
//
// All state is owned by a single event-loop goroutine. Public methods post
// commands to the loop and wait for the resulting View.
package slideshow

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/CMRapp/Slideshow-sub000/internal/feed"
	xglog "github.com/CMRapp/Slideshow-sub000/internal/log"
	"github.com/CMRapp/Slideshow-sub000/internal/media"
	"github.com/CMRapp/Slideshow-sub000/internal/telemetry"
)

// DefaultAdvanceInterval is the fixed cadence of automatic advance.
const DefaultAdvanceInterval = 5 * time.Second

// Fetcher returns the current list of displayable descriptors.
type Fetcher interface {
	Fetch(ctx context.Context) ([]media.Descriptor, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context) ([]media.Descriptor, error)

func (f FetcherFunc) Fetch(ctx context.Context) ([]media.Descriptor, error) { return f(ctx) }

// OrderObserver is notified on the loop goroutine whenever the playback order
// changes (refetch or reshuffle). It receives a private copy and must not block.
type OrderObserver func(items []media.Descriptor)

// Timing groups the tunable cadences; it can be swapped at runtime.
// Zero fields take their defaults. A negative ReshuffleEvery disables reshuffling.
type Timing struct {
	AdvanceInterval time.Duration
	ReshuffleEvery  int
	Backoff         Backoff
}

// DefaultTiming returns the standard slideshow cadences.
func DefaultTiming() Timing {
	return Timing{
		AdvanceInterval: DefaultAdvanceInterval,
		ReshuffleEvery:  DefaultReshuffleEvery,
		Backoff:         DefaultBackoff(),
	}
}

func (t Timing) normalized() Timing {
	def := DefaultTiming()
	if t.AdvanceInterval <= 0 {
		t.AdvanceInterval = def.AdvanceInterval
	}
	if t.ReshuffleEvery == 0 {
		t.ReshuffleEvery = def.ReshuffleEvery
	}
	if t.Backoff.Base <= 0 {
		t.Backoff.Base = def.Backoff.Base
	}
	if t.Backoff.CapMultiplier < 1 {
		t.Backoff.CapMultiplier = def.Backoff.CapMultiplier
	}
	if t.Backoff.HiddenMultiplier < 1 {
		t.Backoff.HiddenMultiplier = def.Backoff.HiddenMultiplier
	}
	return t
}

// Option configures an Engine.
type Option func(*Engine)

func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

func WithTiming(t Timing) Option {
	return func(e *Engine) { e.timing = t }
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithOrderObserver(fn OrderObserver) Option {
	return func(e *Engine) { e.observer = fn }
}

// WithPlaying sets the initial play/pause flag (default playing).
func WithPlaying(playing bool) Option {
	return func(e *Engine) { e.playing = playing }
}

// WithVisible sets the initial page-visibility flag (default visible).
func WithVisible(visible bool) Option {
	return func(e *Engine) { e.state.Visible = visible }
}

const (
	lifecycleNew int32 = iota
	lifecycleRunning
	lifecycleStopped
)

type fetchResult struct {
	items []media.Descriptor
	err   error
}

// Engine drives one slideshow instance.
type Engine struct {
	fetcher  Fetcher
	clock    Clock
	rng      *rand.Rand
	logger   zerolog.Logger
	observer OrderObserver

	lifeMu    sync.Mutex
	lifecycle atomic.Int32
	cancel    context.CancelFunc
	done      chan struct{}

	cmds    chan func()
	fetches chan fetchResult

	view     atomic.Pointer[View]
	revision uint64

	subsMu  sync.Mutex
	subs    map[int]chan View
	nextSub int
	closed  bool

	// Loop-owned state below; touched only by Start (before the loop exists) and run.
	state       PlaylistState
	timing      Timing
	reshuffler  *Reshuffler
	poll        PollState
	pollTimer   Timer
	advance     Ticker
	nextDelay   time.Duration
	playing     bool
	hovered     bool
	loaded      bool
	fetchErr    error
	fetchCancel context.CancelFunc
}

// New creates an engine around fetcher. The engine is idle until Start.
func New(fetcher Fetcher, opts ...Option) (*Engine, error) {
	if fetcher == nil {
		return nil, ErrMissingFetcher
	}
	e := &Engine{
		fetcher: fetcher,
		clock:   RealClock{},
		logger:  xglog.WithComponent("slideshow"),
		done:    make(chan struct{}),
		cmds:    make(chan func(), 64),
		fetches: make(chan fetchResult, 1),
		subs:    make(map[int]chan View),
		state:   NewPlaylistState(),
		timing:  DefaultTiming(),
		poll:    PollIdle,
		playing: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.timing = e.timing.normalized()
	e.reshuffler = NewReshuffler(e.timing.ReshuffleEvery, e.rng)
	e.publish()
	return e, nil
}

// Start performs one synchronous fetch, arms the poll and advance timers and
// launches the event loop. A failed initial fetch is not an error: it is shown
// on the display and retried by the poller. An already cancelled ctx is
// returned as is and leaves the engine unstarted.
func (e *Engine) Start(ctx context.Context) error {
	e.lifeMu.Lock()
	switch e.lifecycle.Load() {
	case lifecycleRunning:
		e.lifeMu.Unlock()
		return ErrAlreadyStarted
	case lifecycleStopped:
		e.lifeMu.Unlock()
		return ErrStopped
	}
	if err := ctx.Err(); err != nil {
		e.lifeMu.Unlock()
		return fmt.Errorf("start slideshow engine: %w", err)
	}
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.lifecycle.Store(lifecycleRunning)
	e.lifeMu.Unlock()

	e.logger.Info().
		Str(xglog.FieldEvent, "slideshow.start").
		Dur("advance_interval", e.timing.AdvanceInterval).
		Dur("poll_base", e.timing.Backoff.Base).
		Int("reshuffle_every", e.timing.ReshuffleEvery).
		Msg("starting slideshow engine")

	e.setPoll(PollFetching)
	pollsTotal.WithLabelValues("start").Inc()
	e.applyFetch(e.fetch(ctx, "start", e.state.Failures, e.state.Visible))

	e.advance = e.clock.NewTicker(e.timing.AdvanceInterval)
	e.arm()
	e.publish()

	go e.run(ctx)
	return nil
}

// Stop cancels both timers and any in-flight fetch and waits for the loop to exit.
// It is safe to call more than once and before Start.
func (e *Engine) Stop() {
	e.lifeMu.Lock()
	switch e.lifecycle.Load() {
	case lifecycleNew:
		e.lifecycle.Store(lifecycleStopped)
		close(e.done)
		e.closeSubscribers()
		e.lifeMu.Unlock()
		return
	case lifecycleStopped:
		e.lifeMu.Unlock()
		<-e.done
		return
	}
	e.lifecycle.Store(lifecycleStopped)
	cancel := e.cancel
	e.lifeMu.Unlock()

	cancel()
	<-e.done
}

// Done is closed once the engine has fully stopped.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Snapshot returns the latest published view without blocking.
func (e *Engine) Snapshot() View {
	if v := e.view.Load(); v != nil {
		return *v
	}
	return View{Status: StatusLoading, Index: -1, Poll: PollIdle}
}

// Subscribe returns a channel that always holds the latest view after each change.
// Stale values are dropped; the channel is closed when the engine stops or cancel is called.
func (e *Engine) Subscribe() (<-chan View, func()) {
	ch := make(chan View, 1)
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	if e.closed {
		close(ch)
		return ch, func() {}
	}
	id := e.nextSub
	e.nextSub++
	e.subs[id] = ch
	ch <- e.Snapshot()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.subsMu.Lock()
			defer e.subsMu.Unlock()
			if c, ok := e.subs[id]; ok {
				delete(e.subs, id)
				close(c)
			}
		})
	}
}

// Next moves to the next descriptor, wrapping around. The advance timer keeps its phase.
func (e *Engine) Next() (View, error) {
	return e.exec(func() { e.step("next") })
}

// Previous moves to the previous descriptor, wrapping around.
func (e *Engine) Previous() (View, error) {
	return e.exec(func() {
		if e.state.Empty() {
			return
		}
		e.state.Previous()
		advancesTotal.WithLabelValues("previous").Inc()
	})
}

// Retry triggers an immediate out-of-band fetch. The pending poll timer is
// cancelled and re-armed once the fetch completes. While a fetch is already in
// flight the call is a no-op.
func (e *Engine) Retry() (View, error) {
	return e.exec(func() {
		if e.poll == PollFetching {
			e.logger.Debug().Str(xglog.FieldEvent, "slideshow.retry_coalesced").Msg("fetch already in flight")
			return
		}
		e.stopPollTimer()
		e.startFetch("retry")
	})
}

// SetPlaying toggles the top-level play/pause flag.
func (e *Engine) SetPlaying(playing bool) (View, error) {
	return e.exec(func() { e.playing = playing })
}

// SetHovered records pointer hover over the display region; hovering pauses advance.
func (e *Engine) SetHovered(hovered bool) (View, error) {
	return e.exec(func() { e.hovered = hovered })
}

// SetVisible records page visibility. While a poll is scheduled the timer is
// re-armed immediately with the new multiplier; during a fetch the flag only
// affects the next re-arm.
func (e *Engine) SetVisible(visible bool) (View, error) {
	return e.exec(func() {
		if e.state.Visible == visible {
			return
		}
		e.state.Visible = visible
		e.logger.Debug().
			Str(xglog.FieldEvent, "slideshow.visibility").
			Bool(xglog.FieldVisible, visible).
			Str("poll", string(e.poll)).
			Msg("page visibility changed")
		if e.poll == PollScheduled {
			e.stopPollTimer()
			e.arm()
		}
	})
}

// ApplyTiming swaps the cadences. A changed advance interval restarts the
// advance ticker; a scheduled poll is re-armed with the new backoff.
func (e *Engine) ApplyTiming(t Timing) (View, error) {
	t = t.normalized()
	return e.exec(func() {
		old := e.timing
		e.timing = t
		e.reshuffler.Every = t.ReshuffleEvery
		if old.AdvanceInterval != t.AdvanceInterval && e.advance != nil {
			e.advance.Stop()
			e.advance = e.clock.NewTicker(t.AdvanceInterval)
		}
		if old.Backoff != t.Backoff && e.poll == PollScheduled {
			e.stopPollTimer()
			e.arm()
		}
		e.logger.Info().
			Str(xglog.FieldEvent, "slideshow.timing_applied").
			Dur("advance_interval", t.AdvanceInterval).
			Dur("poll_base", t.Backoff.Base).
			Int("reshuffle_every", t.ReshuffleEvery).
			Msg("slideshow timing updated")
	})
}

// exec runs fn on the loop and returns the view published afterwards.
func (e *Engine) exec(fn func()) (View, error) {
	switch e.lifecycle.Load() {
	case lifecycleNew:
		return e.Snapshot(), ErrNotStarted
	case lifecycleStopped:
		return e.Snapshot(), ErrStopped
	}

	reply := make(chan View, 1)
	cmd := func() {
		fn()
		reply <- e.publish()
	}
	select {
	case e.cmds <- cmd:
	case <-e.done:
		return e.Snapshot(), ErrStopped
	}
	select {
	case v := <-reply:
		return v, nil
	case <-e.done:
		return e.Snapshot(), ErrStopped
	}
}

func (e *Engine) run(ctx context.Context) {
	defer e.shutdown()

	for {
		var pollC <-chan time.Time
		if e.pollTimer != nil {
			pollC = e.pollTimer.C()
		}

		select {
		case <-ctx.Done():
			return

		case cmd := <-e.cmds:
			cmd()

		case <-pollC:
			e.pollTimer = nil
			e.startFetch("timer")
			e.publish()

		case res := <-e.fetches:
			e.fetchCancel = nil
			e.applyFetch(res)
			e.arm()
			e.publish()

		case <-e.advance.C():
			if e.tick() {
				e.publish()
			}
		}
	}
}

func (e *Engine) shutdown() {
	e.stopPollTimer()
	if e.advance != nil {
		e.advance.Stop()
	}
	if e.fetchCancel != nil {
		e.fetchCancel()
		e.fetchCancel = nil
	}
	fetchInFlight.Set(0)
	e.setPoll(PollIdle)
	e.publish()

	e.logger.Info().Str(xglog.FieldEvent, "slideshow.stop").Msg("slideshow engine stopped")

	e.lifeMu.Lock()
	close(e.done)
	e.lifeMu.Unlock()
	e.closeSubscribers()
}

// startFetch launches the single in-flight fetch; its result arrives on e.fetches.
func (e *Engine) startFetch(trigger string) {
	e.setPoll(PollFetching)
	pollsTotal.WithLabelValues(trigger).Inc()
	fetchInFlight.Set(1)

	ctx, cancel := context.WithCancel(context.Background())
	e.fetchCancel = cancel
	done := e.done
	failures, visible := e.state.Failures, e.state.Visible
	go func() {
		defer cancel()
		res := e.fetch(ctx, trigger, failures, visible)
		select {
		case e.fetches <- res:
		case <-done:
		}
	}()
}

// fetch runs one fetch inside a poll span. It must not touch loop-owned state.
func (e *Engine) fetch(ctx context.Context, trigger string, failures int, visible bool) fetchResult {
	ctx, span := telemetry.Tracer("slideshow").Start(ctx, "slideshow.poll",
		trace.WithAttributes(telemetry.PollAttributes(trigger, failures, visible)...))
	defer span.End()

	items, err := e.fetcher.Fetch(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
	} else {
		span.SetAttributes(attribute.Int(telemetry.PlaylistLenKey, len(items)))
	}
	return fetchResult{items: items, err: err}
}

func (e *Engine) applyFetch(res fetchResult) {
	fetchInFlight.Set(0)
	e.loaded = true

	if res.err != nil {
		e.state.Failures++
		e.fetchErr = res.err
		consecutiveFailures.Set(float64(e.state.Failures))
		e.logger.Warn().
			Err(res.err).
			Str(xglog.FieldEvent, "slideshow.fetch_failed").
			Int(xglog.FieldFailures, e.state.Failures).
			Msg("playlist fetch failed, backing off")
		return
	}

	if e.state.Failures > 0 {
		e.logger.Info().
			Str(xglog.FieldEvent, "slideshow.fetch_recovered").
			Int(xglog.FieldFailures, e.state.Failures).
			Msg("playlist fetch recovered")
	}
	e.state.Failures = 0
	e.fetchErr = nil
	consecutiveFailures.Set(0)

	oldIndex := e.state.Index
	e.state.Replace(res.items)
	playlistLength.Set(float64(e.state.Len()))
	e.logger.Debug().
		Str(xglog.FieldEvent, "slideshow.playlist_replaced").
		Int(xglog.FieldLength, e.state.Len()).
		Int("old_index", oldIndex).
		Int(xglog.FieldIndex, e.state.Index).
		Msg("playlist replaced")
	e.notifyOrder()
}

// arm schedules the next poll using the current failure count and visibility.
func (e *Engine) arm() {
	delay := e.timing.Backoff.Delay(e.state.Failures, e.state.Visible)
	e.nextDelay = delay
	e.pollTimer = e.clock.NewTimer(delay)
	e.setPoll(PollScheduled)
	pollDelaySeconds.Set(delay.Seconds())
	e.logger.Debug().
		Str(xglog.FieldEvent, "slideshow.poll_armed").
		Dur(xglog.FieldDelay, delay).
		Int(xglog.FieldFailures, e.state.Failures).
		Bool(xglog.FieldVisible, e.state.Visible).
		Msg("next poll scheduled")
}

func (e *Engine) stopPollTimer() {
	if e.pollTimer != nil {
		e.pollTimer.Stop()
		e.pollTimer = nil
	}
	if e.poll == PollScheduled {
		e.setPoll(PollIdle)
	}
}

func (e *Engine) setPoll(p PollState) {
	if e.poll == p {
		return
	}
	e.logger.Trace().
		Str(xglog.FieldOldState, string(e.poll)).
		Str(xglog.FieldNewState, string(p)).
		Msg("poll state transition")
	e.poll = p
}

// tick handles one automatic advance; it reports whether the cursor moved.
func (e *Engine) tick() bool {
	if !e.playing || e.hovered || e.fetchErr != nil || e.state.Empty() {
		return false
	}
	e.step("auto")
	return true
}

// step moves forward and runs the reshuffle check on wrap.
func (e *Engine) step(trigger string) {
	if e.state.Empty() {
		return
	}
	advancesTotal.WithLabelValues(trigger).Inc()
	if !e.state.Next() {
		return
	}
	if e.reshuffler.OnWrap(&e.state) {
		reshufflesTotal.Inc()
		e.logger.Info().
			Str(xglog.FieldEvent, "slideshow.reshuffled").
			Int(xglog.FieldCycles, e.state.Cycles).
			Int(xglog.FieldLength, e.state.Len()).
			Msg("playlist reshuffled")
		e.notifyOrder()
	}
}

func (e *Engine) notifyOrder() {
	if e.observer == nil {
		return
	}
	e.observer(append([]media.Descriptor(nil), e.state.Items...))
}

func (e *Engine) status() Status {
	switch {
	case !e.loaded:
		return StatusLoading
	case e.fetchErr != nil:
		return StatusError
	case e.state.Empty():
		return StatusEmpty
	default:
		return StatusShowing
	}
}

// publish builds a view from loop-owned state, stores it and fans it out.
func (e *Engine) publish() View {
	e.revision++
	v := View{
		Revision:        e.revision,
		Status:          e.status(),
		Index:           e.state.Index,
		Length:          e.state.Len(),
		Playing:         e.playing,
		Hovered:         e.hovered,
		Visible:         e.state.Visible,
		Failures:        e.state.Failures,
		Cycles:          e.state.Cycles,
		Poll:            e.poll,
		NextPollDelay:   e.nextDelay,
		NextPollSeconds: e.nextDelay.Seconds(),
		UpdatedAt:       e.clock.Now(),
	}
	if e.fetchErr != nil {
		v.Error = feed.Message(e.fetchErr)
	} else if cur, ok := e.state.Current(); ok {
		v.Current = newItem(cur)
	}
	e.view.Store(&v)

	e.subsMu.Lock()
	for _, ch := range e.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- v:
		default:
		}
	}
	e.subsMu.Unlock()
	return v
}

func (e *Engine) closeSubscribers() {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	for id, ch := range e.subs {
		delete(e.subs, id)
		close(ch)
	}
}
