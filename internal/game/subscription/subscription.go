// Package subscription manages per-channel projection workers. Each
// subscribed channel runs one actor goroutine that folds appended
// commits into its projection as notifications arrive, so exactly one
// fold runs against a channel at a time.
package subscription

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/continental/internal/game/commitlog"
	"github.com/louisbranch/continental/internal/game/message"
	"github.com/louisbranch/continental/internal/game/reducer"
	"github.com/louisbranch/continental/internal/game/snapshot"
	"github.com/louisbranch/continental/internal/game/state"
	apperrors "github.com/louisbranch/continental/internal/platform/errors"
)

const (
	// debounceWindow is the quiet period used to coalesce notification
	// bursts into a single fold batch.
	debounceWindow = 50 * time.Millisecond

	// foldTimeout bounds one batch's log reads.
	foldTimeout = 10 * time.Second

	// reportRetries and reportInterval bound how long Report waits for a
	// busy channel to quiesce before failing.
	reportRetries  = 5
	reportInterval = 100 * time.Millisecond
)

// Report is a reference-safe copy of a channel's current projection.
type Report struct {
	Players  map[string]*state.Player
	Games    map[string]*state.Game
	Messages []message.Message
}

// Manager owns the channel workers.
type Manager struct {
	log       commitlog.Log
	notifier  *commitlog.Notifier
	snapshots snapshot.Store
	cfg       reducer.Config
	tracer    trace.Tracer
	debounce  time.Duration

	mu       sync.Mutex
	channels map[string]*worker
}

// Option configures a Manager.
type Option func(*Manager)

// WithDebounce overrides the notification coalescing window.
func WithDebounce(window time.Duration) Option {
	return func(m *Manager) {
		if window > 0 {
			m.debounce = window
		}
	}
}

// NewManager builds a manager folding with the provided reducer config.
// The snapshot store may be nil; workers then prime from an empty
// projection.
func NewManager(journal commitlog.Log, notifier *commitlog.Notifier, snapshots snapshot.Store, cfg reducer.Config, opts ...Option) *Manager {
	m := &Manager{
		log:       journal,
		notifier:  notifier,
		snapshots: snapshots,
		cfg:       cfg,
		tracer:    otel.Tracer("continental.subscription"),
		debounce:  debounceWindow,
		channels:  make(map[string]*worker),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

type worker struct {
	channel string
	sub     *commitlog.Subscription
	done    chan struct{}
	exited  chan struct{}

	mu           sync.Mutex
	busy         bool
	state        *state.State
	messages     []message.Message
	lastPosition int64
}

// Start subscribes to the channel, primes its projection from the latest
// snapshot when one exists, and begins folding notifications. A second
// Start for a live channel fails with ALREADY_SUBSCRIBED.
func (m *Manager) Start(ctx context.Context, channel string) error {
	if m == nil {
		return fmt.Errorf("manager is not configured")
	}

	m.mu.Lock()
	if _, ok := m.channels[channel]; ok {
		m.mu.Unlock()
		return apperrors.New(apperrors.CodeAlreadySubscribed, "channel "+channel+" is already subscribed")
	}
	w := &worker{
		channel: channel,
		done:    make(chan struct{}),
		exited:  make(chan struct{}),
		state:   state.NewState(),
	}
	m.channels[channel] = w
	m.mu.Unlock()

	if m.snapshots != nil {
		st, asOf, err := m.snapshots.Read(ctx, channel)
		switch {
		case err == nil:
			w.state = st
			w.lastPosition = asOf + 1
		case apperrors.CodeOf(err) == apperrors.CodeNotFound:
			// No snapshot yet; replay from the start of the log.
		default:
			m.remove(channel)
			return fmt.Errorf("read snapshot: %w", err)
		}
	}

	w.sub = m.notifier.Subscribe(channel)
	go m.run(w)
	return nil
}

// Stop unsubscribes the channel, waits for its worker to exit, and
// checkpoints the projection when a snapshot store is configured.
func (m *Manager) Stop(ctx context.Context, channel string) error {
	m.mu.Lock()
	w, ok := m.channels[channel]
	if ok {
		delete(m.channels, channel)
	}
	m.mu.Unlock()
	if !ok {
		return apperrors.New(apperrors.CodeNotFound, "channel "+channel+" is not subscribed")
	}

	close(w.done)
	w.sub.Stop()
	<-w.exited

	if m.snapshots != nil {
		w.mu.Lock()
		st := w.state.Clone()
		asOf := w.lastPosition - 1
		w.mu.Unlock()
		if asOf < 0 {
			asOf = 0
		}
		if _, err := m.snapshots.Take(ctx, channel, st, asOf); err != nil {
			return fmt.Errorf("take snapshot: %w", err)
		}
	}
	return nil
}

// Report returns a copy of the channel's projection. A channel mid-fold
// is polled a bounded number of times before failing with BUSY, so
// readers never block the fold worker.
func (m *Manager) Report(ctx context.Context, channel string) (Report, error) {
	m.mu.Lock()
	w, ok := m.channels[channel]
	m.mu.Unlock()
	if !ok {
		return Report{}, apperrors.New(apperrors.CodeNotFound, "channel "+channel+" is not subscribed")
	}

	for attempt := 0; attempt < reportRetries; attempt++ {
		busy, err := m.quiescent(ctx, w)
		if err != nil {
			return Report{}, err
		}
		if !busy {
			w.mu.Lock()
			st := w.state.Clone()
			messages := append([]message.Message(nil), w.messages...)
			w.mu.Unlock()
			return Report{Players: st.Players, Games: st.Games, Messages: messages}, nil
		}
		select {
		case <-ctx.Done():
			return Report{}, apperrors.Wrap(apperrors.CodeTimeout, "report wait interrupted", ctx.Err())
		case <-time.After(reportInterval):
		}
	}
	return Report{}, apperrors.New(apperrors.CodeBusy, "channel "+channel+" is busy")
}

// quiescent reports whether the channel is idle: no fold in flight and
// no live busy marker from a recent put.
func (m *Manager) quiescent(ctx context.Context, w *worker) (bool, error) {
	w.mu.Lock()
	busy := w.busy
	w.mu.Unlock()
	if busy {
		return true, nil
	}
	marked, err := m.log.Busy(ctx, w.channel)
	if err != nil {
		return false, fmt.Errorf("check channel busy: %w", err)
	}
	return marked, nil
}

// run is the worker loop: wait for a notification, absorb the burst that
// follows it, then fold all commits up to the newest timestamp seen.
func (m *Manager) run(w *worker) {
	defer close(w.exited)
	for {
		select {
		case <-w.done:
			return
		case note, ok := <-w.sub.C:
			if !ok {
				return
			}
			latest := m.absorb(w, note.Timestamp)
			m.fold(w, latest)
		}
	}
}

// absorb drains further notifications until the channel stays quiet for
// the debounce window, returning the newest timestamp observed.
func (m *Manager) absorb(w *worker, latest int64) int64 {
	timer := time.NewTimer(m.debounce)
	defer timer.Stop()
	for {
		select {
		case <-w.done:
			return latest
		case note, ok := <-w.sub.C:
			if !ok {
				return latest
			}
			if note.Timestamp > latest {
				latest = note.Timestamp
			}
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(m.debounce)
		case <-timer.C:
			return latest
		}
	}
}

// fold reads commits in (lastPosition-1, upTo] and applies them to the
// projection. Infrastructure failures leave the position unchanged so
// the next notification retries the same range.
func (m *Manager) fold(w *worker, upTo int64) {
	w.mu.Lock()
	if upTo < w.lastPosition {
		w.mu.Unlock()
		return
	}
	w.busy = true
	from := w.lastPosition
	w.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), foldTimeout)
	defer cancel()
	ctx, span := m.tracer.Start(ctx, "subscription.fold",
		trace.WithAttributes(attribute.String("channel", w.channel)))
	defer span.End()

	commits, err := m.log.GetRange(ctx, w.channel, from, upTo)
	if err != nil {
		log.Printf("subscription: fold %s: %v", w.channel, err)
		w.mu.Lock()
		w.busy = false
		w.mu.Unlock()
		return
	}

	w.mu.Lock()
	result := reducer.Fold(m.cfg, commits, w.state)
	w.state = result.State
	w.messages = append(w.messages, result.Messages...)
	w.lastPosition = upTo + 1
	w.busy = false
	w.mu.Unlock()
}

func (m *Manager) remove(channel string) {
	m.mu.Lock()
	delete(m.channels, channel)
	m.mu.Unlock()
}
