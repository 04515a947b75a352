package tracking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/safetrail/safetrail/internal/logging"
	"github.com/safetrail/safetrail/internal/model"
	"github.com/safetrail/safetrail/internal/notification"
)

type fakeProvider struct {
	current    model.Coordinate
	currentErr error
	watchErr   error
	events     chan Event
}

func (p *fakeProvider) Current(_ context.Context, _ Options) (model.Coordinate, error) {
	if p.currentErr != nil {
		return model.Coordinate{}, p.currentErr
	}
	return p.current, nil
}

func (p *fakeProvider) Watch(ctx context.Context, _ Options) (<-chan Event, error) {
	if p.watchErr != nil {
		return nil, p.watchErr
	}
	out := make(chan Event)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-p.events:
				if !ok {
					return
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

type recordingReporter struct {
	mu     sync.Mutex
	coords []model.Coordinate
	err    error
}

func (r *recordingReporter) ReportLocation(_ context.Context, coord model.Coordinate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.coords = append(r.coords, coord)
	return r.err
}

func (r *recordingReporter) reported() []model.Coordinate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Coordinate(nil), r.coords...)
}

func coordAt(lat, lng float64) model.Coordinate {
	return model.Coordinate{Latitude: lat, Longitude: lng, Timestamp: time.Now().UTC()}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestLocateStoresAndReports(t *testing.T) {
	provider := &fakeProvider{current: coordAt(28.61, 77.20)}
	reporter := &recordingReporter{}
	tracker := New(provider, reporter, notification.NewRecorder(), logging.Discard(), DefaultOptions())

	coord, err := tracker.Locate(context.Background())
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if coord.Latitude != 28.61 {
		t.Fatalf("got latitude %v, want 28.61", coord.Latitude)
	}
	if tracker.Status() != StatusOnline {
		t.Fatalf("got status %q, want online", tracker.Status())
	}
	got, ok := tracker.Current()
	if !ok || got.Longitude != 77.20 {
		t.Fatalf("current = %v, %v", got, ok)
	}
	if len(reporter.reported()) != 1 {
		t.Fatalf("got %d reports, want 1", len(reporter.reported()))
	}
}

func TestStartTakesInitialFixBeforeWatch(t *testing.T) {
	// The watch channel stays silent; everything after Start comes from the
	// one-shot acquisition alone.
	provider := &fakeProvider{current: coordAt(28.55, 77.15), events: make(chan Event)}
	reporter := &recordingReporter{}
	tracker := New(provider, reporter, notification.NewRecorder(), logging.Discard(), DefaultOptions())

	if err := tracker.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer tracker.Stop()

	if tracker.Status() != StatusOnline {
		t.Fatalf("got status %q after Start, want online", tracker.Status())
	}
	coord, ok := tracker.Current()
	if !ok || coord.Latitude != 28.55 {
		t.Fatalf("current after Start = %v, %v", coord, ok)
	}
	if len(reporter.reported()) != 1 {
		t.Fatalf("got %d reports after Start, want 1", len(reporter.reported()))
	}
}

func TestWatchReplacesCurrentFix(t *testing.T) {
	provider := &fakeProvider{current: coordAt(28.50, 77.10), events: make(chan Event, 4)}
	reporter := &recordingReporter{}
	tracker := New(provider, reporter, notification.NewRecorder(), logging.Discard(), DefaultOptions())

	if err := tracker.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	first := coordAt(28.60, 77.20)
	second := coordAt(28.70, 77.30)
	provider.events <- Event{Coordinate: &first}
	provider.events <- Event{Coordinate: &second}

	waitFor(t, func() bool {
		coord, ok := tracker.Current()
		return ok && coord.Latitude == 28.70
	})
	if tracker.Status() != StatusOnline {
		t.Fatalf("got status %q, want online", tracker.Status())
	}

	tracker.Stop()
	if tracker.Status() != StatusOffline {
		t.Fatalf("got status %q after Stop, want offline", tracker.Status())
	}
	// Last fix survives the stop.
	if coord, ok := tracker.Current(); !ok || coord.Latitude != 28.70 {
		t.Fatalf("current after Stop = %v, %v", coord, ok)
	}
	// Initial fix plus the two watch deliveries.
	if len(reporter.reported()) != 3 {
		t.Fatalf("got %d reports, want 3", len(reporter.reported()))
	}
}

func TestPositioningErrorGoesOffline(t *testing.T) {
	recorder := notification.NewRecorder()
	provider := &fakeProvider{current: coordAt(28.61, 77.20), events: make(chan Event, 2)}
	tracker := New(provider, nil, recorder, logging.Discard(), DefaultOptions())

	if err := tracker.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if tracker.Status() != StatusOnline {
		t.Fatalf("got status %q after Start, want online", tracker.Status())
	}

	provider.events <- Event{Err: errors.New("gps signal lost")}
	waitFor(t, func() bool { return tracker.Status() == StatusOffline })

	// The stale coordinate is kept for panic workflows, and subscription
	// errors surface no notice.
	if _, ok := tracker.Current(); !ok {
		t.Fatal("current coordinate dropped on positioning error")
	}
	if len(recorder.Messages()) != 0 {
		t.Fatalf("got notices %v, want none for a subscription error", recorder.Messages())
	}
	tracker.Stop()
}

func TestFailedAcquisitionNotifiesOnce(t *testing.T) {
	recorder := notification.NewRecorder()
	provider := &fakeProvider{currentErr: ErrPermissionDenied}
	tracker := New(provider, nil, recorder, logging.Discard(), DefaultOptions())

	if err := tracker.Start(context.Background()); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("got %v, want ErrPermissionDenied", err)
	}
	if tracker.Status() != StatusOffline {
		t.Fatalf("got status %q, want offline", tracker.Status())
	}
	msgs := recorder.Messages()
	if len(msgs) != 1 || msgs[0].Body != deniedNotice {
		t.Fatalf("got notices %v, want single denial notice", msgs)
	}
}

func TestReportFailureDoesNotChangeState(t *testing.T) {
	provider := &fakeProvider{current: coordAt(28.61, 77.20)}
	reporter := &recordingReporter{err: errors.New("network unreachable")}
	tracker := New(provider, reporter, notification.NewRecorder(), logging.Discard(), DefaultOptions())

	if _, err := tracker.Locate(context.Background()); err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if tracker.Status() != StatusOnline {
		t.Fatalf("got status %q, want online despite report failure", tracker.Status())
	}
	if _, ok := tracker.Current(); !ok {
		t.Fatal("current coordinate missing after failed report")
	}
}

func TestStartIsIdempotent(t *testing.T) {
	provider := &fakeProvider{current: coordAt(28.61, 77.20), events: make(chan Event)}
	tracker := New(provider, nil, notification.NewRecorder(), logging.Discard(), DefaultOptions())

	if err := tracker.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := tracker.Start(context.Background()); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	tracker.Stop()
	tracker.Stop()
}
