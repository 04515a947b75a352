// Package alerts drives the panic button and the operator's alert list.
package alerts

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/safetrail/safetrail/internal/client/gateway"
	"github.com/safetrail/safetrail/internal/model"
	"github.com/safetrail/safetrail/internal/notification"
)

// ErrNoLocation is returned by RaisePanic when no coordinate has been
// acquired yet. No request is sent in that case.
var ErrNoLocation = errors.New("no location available")

const (
	panicSentNotice     = "🚨 PANIC ALERT SENT! Authorities have been notified."
	panicFollowupNotice = "Emergency services are on their way. Stay calm and stay visible."
)

// Locator is the tracker's read side: the latest coordinate, if any.
type Locator interface {
	Current() (model.Coordinate, bool)
}

// panicResponse is the body of POST /tourist/panic.
type panicResponse struct {
	Message string `json:"message"`
	AlertID string `json:"alert_id"`
}

// Client raises panic alerts and mirrors the server's alert list.
type Client struct {
	gw            *gateway.Gateway
	locator       Locator
	notifier      notification.Notifier
	followupDelay time.Duration

	mu    sync.Mutex
	local []model.Alert
}

// New builds an alert client. locator may be nil when the caller never raises
// panic alerts.
func New(gw *gateway.Gateway, locator Locator, notifier notification.Notifier) *Client {
	return &Client{
		gw:            gw,
		locator:       locator,
		notifier:      notifier,
		followupDelay: 2 * time.Second,
	}
}

// SetFollowupDelay overrides the pause before the reassurance notice.
func (c *Client) SetFollowupDelay(d time.Duration) {
	c.followupDelay = d
}

// RaisePanic fires a panic alert for the signed-in tourist. A coordinate must
// already be known locally; without one it fails fast with ErrNoLocation and
// never touches the network.
func (c *Client) RaisePanic(ctx context.Context) (string, error) {
	if c.locator == nil {
		return "", ErrNoLocation
	}
	if _, ok := c.locator.Current(); !ok {
		return "", ErrNoLocation
	}

	var resp panicResponse
	if err := c.gw.Post(ctx, "/tourist/panic", nil, &resp); err != nil {
		return "", err
	}

	c.notify(ctx, notification.KindPanicAlert, panicSentNotice)
	go func() {
		select {
		case <-time.After(c.followupDelay):
			c.notify(context.Background(), notification.KindPanicAlert, panicFollowupNotice)
		case <-ctx.Done():
		}
	}()
	return resp.AlertID, nil
}

// List fetches the server's alert list and replaces the local copy with it.
func (c *Client) List(ctx context.Context) ([]model.Alert, error) {
	var fetched []model.Alert
	if err := c.gw.Get(ctx, "/authority/alerts", &fetched); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.local = fetched
	c.mu.Unlock()
	return fetched, nil
}

// Local returns the last successfully fetched alert list.
func (c *Client) Local() []model.Alert {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Alert(nil), c.local...)
}

// Resolve marks an alert resolved on the server, then refreshes the local
// list so it reflects whatever the server now holds. A failed resolve leaves
// the local list untouched.
func (c *Client) Resolve(ctx context.Context, alertID string) error {
	if err := c.gw.Put(ctx, "/authority/alerts/"+alertID+"/resolve", nil, nil); err != nil {
		return err
	}
	_, err := c.List(ctx)
	return err
}

func (c *Client) notify(ctx context.Context, kind, body string) {
	if c.notifier == nil {
		return
	}
	_ = c.notifier.Send(ctx, notification.Message{Kind: kind, Body: body})
}

// Filter returns the alerts matching the named view while preserving input
// order. Views are "all", "active", "resolved", or an exact alert type.
func Filter(alerts []model.Alert, view string) []model.Alert {
	out := make([]model.Alert, 0, len(alerts))
	for _, a := range alerts {
		switch view {
		case "all":
			out = append(out, a)
		case "active":
			if a.Status == model.AlertStatusActive {
				out = append(out, a)
			}
		case "resolved":
			if a.Status == model.AlertStatusResolved {
				out = append(out, a)
			}
		default:
			if a.AlertType == view {
				out = append(out, a)
			}
		}
	}
	return out
}

// Priority ranks an alert type for display ordering.
func Priority(alertType string) string {
	switch alertType {
	case model.AlertPanic:
		return model.RiskCritical
	case model.AlertMissing:
		return model.RiskHigh
	case model.AlertGeoFence:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}
