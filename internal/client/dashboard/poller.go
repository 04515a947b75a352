// Package dashboard keeps an operator-side view of the monitoring state
// fresh by polling the backing service.
package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/safetrail/safetrail/internal/client/gateway"
	"github.com/safetrail/safetrail/internal/model"
)

// DefaultInterval is the refresh cadence when the caller does not choose one.
const DefaultInterval = 30 * time.Second

// Fetcher retrieves the operator view from the backend.
type Fetcher interface {
	Dashboard(ctx context.Context) (model.DashboardSnapshot, error)
	Alerts(ctx context.Context) ([]model.Alert, error)
}

// GatewayFetcher reads the operator endpoints through the gateway.
type GatewayFetcher struct {
	gw *gateway.Gateway
}

// NewGatewayFetcher wraps gw as a Fetcher.
func NewGatewayFetcher(gw *gateway.Gateway) *GatewayFetcher {
	return &GatewayFetcher{gw: gw}
}

// Dashboard fetches GET /authority/dashboard.
func (f *GatewayFetcher) Dashboard(ctx context.Context) (model.DashboardSnapshot, error) {
	var snap model.DashboardSnapshot
	err := f.gw.Get(ctx, "/authority/dashboard", &snap)
	return snap, err
}

// Alerts fetches GET /authority/alerts.
func (f *GatewayFetcher) Alerts(ctx context.Context) ([]model.Alert, error) {
	var alerts []model.Alert
	err := f.gw.Get(ctx, "/authority/alerts", &alerts)
	return alerts, err
}

// View is one applied refresh.
type View struct {
	Snapshot  model.DashboardSnapshot
	Alerts    []model.Alert
	FetchedAt time.Time
}

// Poller refreshes the operator view on a ticker. Refreshes are numbered when
// they are issued and a result is applied only if no later-issued result has
// been applied yet, so a slow early response can never clobber a newer view.
type Poller struct {
	fetcher Fetcher
	logger  *slog.Logger

	mu      sync.Mutex
	view    *View
	issued  uint64
	applied uint64
	cancel  context.CancelFunc
	done    chan struct{}
}

// New builds an idle poller.
func New(fetcher Fetcher, logger *slog.Logger) *Poller {
	return &Poller{fetcher: fetcher, logger: logger}
}

// Current returns the latest applied view, if any refresh has succeeded.
func (p *Poller) Current() (View, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.view == nil {
		return View{}, false
	}
	return *p.view, true
}

// RefreshNow performs one refresh synchronously, outside the ticker cadence.
func (p *Poller) RefreshNow(ctx context.Context) error {
	return p.refresh(ctx, p.nextSeq())
}

// Start begins periodic refreshing, with an immediate first refresh. It is a
// no-op when already running.
func (p *Poller) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	done := p.done
	p.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		if err := p.refresh(pollCtx, p.nextSeq()); err != nil && p.logger != nil {
			p.logger.Warn("dashboard refresh failed", "error", err)
		}
		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.C:
				if err := p.refresh(pollCtx, p.nextSeq()); err != nil && p.logger != nil {
					p.logger.Warn("dashboard refresh failed", "error", err)
				}
			}
		}
	}()
}

// Stop halts polling and waits for the loop to exit. The last applied view is
// retained.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	done := p.done
	p.cancel = nil
	p.done = nil
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *Poller) nextSeq() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.issued++
	return p.issued
}

func (p *Poller) refresh(ctx context.Context, seq uint64) error {
	snap, err := p.fetcher.Dashboard(ctx)
	if err != nil {
		return err
	}
	alerts, err := p.fetcher.Alerts(ctx)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if seq <= p.applied {
		// A later-issued refresh already landed.
		return nil
	}
	p.applied = seq
	p.view = &View{Snapshot: snap, Alerts: alerts, FetchedAt: time.Now().UTC()}
	return nil
}
