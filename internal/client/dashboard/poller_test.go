package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/safetrail/safetrail/internal/logging"
	"github.com/safetrail/safetrail/internal/model"
)

// blockingFetcher lets the test control when each Dashboard call returns, so
// responses can complete out of issue order.
type blockingFetcher struct {
	mu       sync.Mutex
	calls    int
	release  map[int]chan struct{}
	snapshot func(call int) model.DashboardSnapshot
	err      error
}

func newBlockingFetcher() *blockingFetcher {
	return &blockingFetcher{
		release: map[int]chan struct{}{},
		snapshot: func(call int) model.DashboardSnapshot {
			return model.DashboardSnapshot{Tourists: call}
		},
	}
}

func (f *blockingFetcher) gate(call int) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.release[call]
	if !ok {
		ch = make(chan struct{})
		f.release[call] = ch
	}
	return ch
}

func (f *blockingFetcher) Dashboard(ctx context.Context) (model.DashboardSnapshot, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	err := f.err
	f.mu.Unlock()
	if err != nil {
		return model.DashboardSnapshot{}, err
	}
	select {
	case <-f.gate(call):
	case <-ctx.Done():
		return model.DashboardSnapshot{}, ctx.Err()
	}
	return f.snapshot(call), nil
}

func (f *blockingFetcher) Alerts(_ context.Context) ([]model.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return []model.Alert{}, nil
}

func TestRefreshNowAppliesView(t *testing.T) {
	fetcher := newBlockingFetcher()
	close(fetcher.gate(1))
	poller := New(fetcher, logging.Discard())

	if _, ok := poller.Current(); ok {
		t.Fatal("expected no view before first refresh")
	}
	if err := poller.RefreshNow(context.Background()); err != nil {
		t.Fatalf("RefreshNow: %v", err)
	}
	view, ok := poller.Current()
	if !ok || view.Snapshot.Tourists != 1 {
		t.Fatalf("view = %+v, %v", view, ok)
	}
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	fetcher := newBlockingFetcher()
	poller := New(fetcher, logging.Discard())

	// Issue refresh 1 and leave its response in flight.
	firstDone := make(chan error, 1)
	go func() { firstDone <- poller.RefreshNow(context.Background()) }()

	// Wait until call 1 is blocked inside the fetcher.
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		fetcher.mu.Lock()
		started := fetcher.calls >= 1
		fetcher.mu.Unlock()
		if started {
			break
		}
		time.Sleep(time.Millisecond)
	}

	// Issue refresh 2 and let it complete first.
	close(fetcher.gate(2))
	if err := poller.RefreshNow(context.Background()); err != nil {
		t.Fatalf("second RefreshNow: %v", err)
	}
	view, _ := poller.Current()
	if view.Snapshot.Tourists != 2 {
		t.Fatalf("got tourists %d after second refresh, want 2", view.Snapshot.Tourists)
	}

	// Now release the slow first response. It must not overwrite the view.
	close(fetcher.gate(1))
	if err := <-firstDone; err != nil {
		t.Fatalf("first RefreshNow: %v", err)
	}
	view, _ = poller.Current()
	if view.Snapshot.Tourists != 2 {
		t.Fatalf("stale response overwrote the view: tourists = %d", view.Snapshot.Tourists)
	}
}

func TestRefreshFailureKeepsLastView(t *testing.T) {
	fetcher := newBlockingFetcher()
	close(fetcher.gate(1))
	poller := New(fetcher, logging.Discard())

	if err := poller.RefreshNow(context.Background()); err != nil {
		t.Fatalf("RefreshNow: %v", err)
	}
	fetcher.mu.Lock()
	fetcher.err = errors.New("service unavailable")
	fetcher.mu.Unlock()

	if err := poller.RefreshNow(context.Background()); err == nil {
		t.Fatal("expected refresh failure")
	}
	view, ok := poller.Current()
	if !ok || view.Snapshot.Tourists != 1 {
		t.Fatalf("last good view lost: %+v, %v", view, ok)
	}
}

func TestStartPollsAndStops(t *testing.T) {
	fetcher := newBlockingFetcher()
	close(fetcher.gate(1))
	close(fetcher.gate(2))
	close(fetcher.gate(3))
	poller := New(fetcher, logging.Discard())

	poller.Start(context.Background(), 20*time.Millisecond)
	poller.Start(context.Background(), 20*time.Millisecond) // no-op

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if view, ok := poller.Current(); ok && view.Snapshot.Tourists >= 2 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	view, ok := poller.Current()
	if !ok || view.Snapshot.Tourists < 2 {
		t.Fatalf("poller did not advance: %+v, %v", view, ok)
	}

	poller.Stop()
	poller.Stop()

	fetcher.mu.Lock()
	after := fetcher.calls
	fetcher.mu.Unlock()
	time.Sleep(60 * time.Millisecond)
	fetcher.mu.Lock()
	later := fetcher.calls
	fetcher.mu.Unlock()
	if later != after {
		t.Fatalf("poller kept fetching after Stop: %d -> %d", after, later)
	}
}
