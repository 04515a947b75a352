package safety

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/safetrail/safetrail/internal/model"
)

type memoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]model.TouristProfile // keyed by user id
	alerts   map[string]model.Alert
	zones    []model.Zone
}

// NewMemoryRepository builds an in-memory safety store. Used in development
// mode and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		profiles: make(map[string]model.TouristProfile),
		alerts:   make(map[string]model.Alert),
	}
}

func (r *memoryRepository) SaveProfile(_ context.Context, profile model.TouristProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[profile.UserID] = profile
	return nil
}

func (r *memoryRepository) ProfileByUser(_ context.Context, userID string) (model.TouristProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	profile, ok := r.profiles[userID]
	if !ok {
		return model.TouristProfile{}, ErrProfileNotFound
	}
	return profile, nil
}

func (r *memoryRepository) ProfilesWithLocation(_ context.Context) ([]model.TouristProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var profiles []model.TouristProfile
	for _, profile := range r.profiles {
		if profile.CurrentLocation != nil {
			profiles = append(profiles, profile)
		}
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].UserID < profiles[j].UserID })
	return profiles, nil
}

func (r *memoryRepository) InsertAlert(_ context.Context, alert model.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts[alert.ID] = alert
	return nil
}

func (r *memoryRepository) ListAlerts(_ context.Context, limit int) ([]model.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(limit, func(model.Alert) bool { return true }), nil
}

func (r *memoryRepository) ListActiveAlerts(_ context.Context, limit int) ([]model.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(limit, func(a model.Alert) bool { return a.Status == model.AlertStatusActive }), nil
}

// collect returns matching alerts newest first. Callers hold the lock.
func (r *memoryRepository) collect(limit int, match func(model.Alert) bool) []model.Alert {
	var alerts []model.Alert
	for _, alert := range r.alerts {
		if match(alert) {
			alerts = append(alerts, alert)
		}
	}
	sort.Slice(alerts, func(i, j int) bool {
		if !alerts[i].CreatedAt.Equal(alerts[j].CreatedAt) {
			return alerts[i].CreatedAt.After(alerts[j].CreatedAt)
		}
		return alerts[i].ID < alerts[j].ID
	})
	if limit > 0 && len(alerts) > limit {
		alerts = alerts[:limit]
	}
	return alerts
}

func (r *memoryRepository) ResolveAlert(_ context.Context, alertID, authorityID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	alert, ok := r.alerts[alertID]
	if !ok {
		return ErrAlertNotFound
	}
	resolved := at.UTC()
	alert.Status = model.AlertStatusResolved
	alert.ResolvedAt = &resolved
	alert.AuthorityID = authorityID
	r.alerts[alertID] = alert
	return nil
}

func (r *memoryRepository) InsertZone(_ context.Context, zone model.Zone) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.zones = append(r.zones, zone)
	return nil
}

func (r *memoryRepository) ListZones(_ context.Context) ([]model.Zone, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	zones := make([]model.Zone, len(r.zones))
	copy(zones, r.zones)
	return zones, nil
}
