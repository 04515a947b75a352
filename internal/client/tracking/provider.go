package tracking

import (
	"context"
	"math/rand"
	"time"

	"github.com/safetrail/safetrail/internal/model"
)

// Options are passed through to the positioning capability, which enforces
// them itself.
type Options struct {
	HighAccuracy   bool
	MaxStaleness   time.Duration
	AcquireTimeout time.Duration
}

// DefaultOptions mirrors the tracking policy of the dashboard UI.
func DefaultOptions() Options {
	return Options{
		HighAccuracy:   true,
		MaxStaleness:   30 * time.Second,
		AcquireTimeout: 10 * time.Second,
	}
}

// Event is a single delivery from a continuous position subscription: either
// a coordinate or a positioning error, never both.
type Event struct {
	Coordinate *model.Coordinate
	Err        error
}

// Provider is the device positioning capability.
type Provider interface {
	// Current acquires a one-shot position fix.
	Current(ctx context.Context, opts Options) (model.Coordinate, error)
	// Watch starts a continuous subscription. The channel closes when ctx is
	// cancelled.
	Watch(ctx context.Context, opts Options) (<-chan Event, error)
}

// SimulatedProvider produces a random walk around a fixed origin. It stands in
// for real device positioning in the CLI and in development.
type SimulatedProvider struct {
	Origin   model.Coordinate
	Interval time.Duration
}

// NewSimulatedProvider builds a provider wandering around lat/lng.
func NewSimulatedProvider(lat, lng float64, interval time.Duration) *SimulatedProvider {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &SimulatedProvider{
		Origin:   model.Coordinate{Latitude: lat, Longitude: lng},
		Interval: interval,
	}
}

// Current returns a fix near the origin.
func (p *SimulatedProvider) Current(_ context.Context, _ Options) (model.Coordinate, error) {
	return p.sample(), nil
}

// Watch emits a wandering fix on every interval tick.
func (p *SimulatedProvider) Watch(ctx context.Context, _ Options) (<-chan Event, error) {
	events := make(chan Event)
	go func() {
		defer close(events)
		ticker := time.NewTicker(p.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				coord := p.sample()
				select {
				case events <- Event{Coordinate: &coord}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return events, nil
}

// sample jitters the origin by up to ~100m in each axis.
func (p *SimulatedProvider) sample() model.Coordinate {
	return model.Coordinate{
		Latitude:  p.Origin.Latitude + (rand.Float64()-0.5)*0.002,
		Longitude: p.Origin.Longitude + (rand.Float64()-0.5)*0.002,
		Timestamp: time.Now().UTC(),
	}
}
