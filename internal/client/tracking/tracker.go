package tracking

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/safetrail/safetrail/internal/model"
	"github.com/safetrail/safetrail/internal/notification"
)

// Status describes the tracker lifecycle.
type Status string

const (
	StatusOffline   Status = "offline"
	StatusSearching Status = "searching"
	StatusOnline    Status = "online"
)

// ErrPermissionDenied is returned by providers when the user refused
// location access.
var ErrPermissionDenied = errors.New("location permission denied")

// deniedNotice is surfaced for any failed one-shot acquisition, not only an
// explicit permission refusal.
const deniedNotice = "Location access denied. Some features may be limited."

// Reporter forwards location fixes to the backend.
type Reporter interface {
	ReportLocation(ctx context.Context, coord model.Coordinate) error
}

// Tracker maintains the device's current coordinate from a positioning
// provider and reports each fix upstream. Reporting is fire and forget: a
// failed report never changes the tracker state or the current coordinate.
type Tracker struct {
	provider Provider
	reporter Reporter
	notifier notification.Notifier
	logger   *slog.Logger
	opts     Options

	mu      sync.Mutex
	status  Status
	current *model.Coordinate
	cancel  context.CancelFunc
	done    chan struct{}
}

// New builds an idle tracker. reporter may be nil, in which case fixes are
// kept locally only.
func New(provider Provider, reporter Reporter, notifier notification.Notifier, logger *slog.Logger, opts Options) *Tracker {
	if opts.MaxStaleness == 0 && opts.AcquireTimeout == 0 {
		opts = DefaultOptions()
	}
	return &Tracker{
		provider: provider,
		reporter: reporter,
		notifier: notifier,
		logger:   logger,
		opts:     opts,
		status:   StatusOffline,
	}
}

// Status reports the current lifecycle state.
func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Current returns the latest coordinate, if any fix has been acquired.
func (t *Tracker) Current() (model.Coordinate, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return model.Coordinate{}, false
	}
	return *t.current, true
}

// Locate acquires a one-shot fix, stores it as the current coordinate and
// reports it.
func (t *Tracker) Locate(ctx context.Context) (model.Coordinate, error) {
	coord, err := t.provider.Current(ctx, t.opts)
	if err != nil {
		t.handleError(err, true)
		return model.Coordinate{}, err
	}
	t.apply(ctx, coord)
	return coord, nil
}

// Start begins tracking: a one-shot fix first, so a coordinate is recorded
// and reported before the continuous subscription delivers anything, then the
// subscription itself. It is a no-op if tracking is already running. The
// subscription stops when ctx is cancelled or Stop is called.
func (t *Tracker) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.cancel != nil {
		t.mu.Unlock()
		return nil
	}
	watchCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})
	t.status = StatusSearching
	done := t.done
	t.mu.Unlock()

	if _, err := t.Locate(watchCtx); err != nil {
		t.abortStart(cancel, done)
		return err
	}

	events, err := t.provider.Watch(watchCtx, t.opts)
	if err != nil {
		t.abortStart(cancel, done)
		t.handleError(err, true)
		return err
	}

	go func() {
		defer close(done)
		for ev := range events {
			if ev.Err != nil {
				// Subscription errors drop the tracker offline without a
				// notice; only the initial acquisition surfaces one.
				t.handleError(ev.Err, false)
				continue
			}
			if ev.Coordinate != nil {
				t.apply(watchCtx, *ev.Coordinate)
			}
		}
		t.mu.Lock()
		t.status = StatusOffline
		t.cancel = nil
		t.done = nil
		t.mu.Unlock()
	}()
	return nil
}

func (t *Tracker) abortStart(cancel context.CancelFunc, done chan struct{}) {
	t.mu.Lock()
	t.cancel = nil
	t.done = nil
	t.status = StatusOffline
	t.mu.Unlock()
	cancel()
	close(done)
}

// Stop cancels the continuous subscription and waits for the watch loop to
// drain. The last known coordinate is retained.
func (t *Tracker) Stop() {
	t.mu.Lock()
	cancel := t.cancel
	done := t.done
	t.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (t *Tracker) apply(ctx context.Context, coord model.Coordinate) {
	t.mu.Lock()
	t.current = &coord
	t.status = StatusOnline
	reporter := t.reporter
	t.mu.Unlock()

	if reporter == nil {
		return
	}
	if err := reporter.ReportLocation(ctx, coord); err != nil && t.logger != nil {
		t.logger.Warn("location report failed", "error", err)
	}
}

func (t *Tracker) handleError(err error, notify bool) {
	t.mu.Lock()
	t.status = StatusOffline
	t.mu.Unlock()
	if t.logger != nil {
		t.logger.Warn("positioning error", "error", err)
	}
	if notify && t.notifier != nil {
		_ = t.notifier.Send(context.Background(), notification.Message{Kind: notification.KindLocation, Body: deniedNotice})
	}
}
