package safety

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/safetrail/safetrail/internal/model"
	"github.com/safetrail/safetrail/internal/notification"
)

const (
	defaultSafetyScore = 85
	alertListLimit     = 100
	recentAlertLimit   = 50
)

// ErrNoLocation is returned when an operation needs a reported location and
// none exists.
var ErrNoLocation = errors.New("location not available")

// Service owns tourist profiles, alerts and zones on the server side.
type Service struct {
	repo     Repository
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService builds a safety service instance.
func NewService(repo Repository, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

// EnsureProfile creates a tourist profile if one does not already exist.
func (s *Service) EnsureProfile(ctx context.Context, userID string, contacts []model.EmergencyContact) (model.TouristProfile, error) {
	if existing, err := s.repo.ProfileByUser(ctx, userID); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrProfileNotFound) {
		return model.TouristProfile{}, err
	}

	hash := sha256.Sum256([]byte(uuid.New().String()))
	profile := model.TouristProfile{
		ID:                uuid.New().String(),
		UserID:            userID,
		DigitalID:         fmt.Sprintf("DT%06d", 100000+rand.Intn(900000)),
		SafetyScore:       defaultSafetyScore,
		EmergencyContacts: contacts,
		BlockchainHash:    hex.EncodeToString(hash[:]),
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.repo.SaveProfile(ctx, profile); err != nil {
		return model.TouristProfile{}, err
	}
	return profile, nil
}

// Profile fetches the safety profile for a tourist.
func (s *Service) Profile(ctx context.Context, userID string) (model.TouristProfile, error) {
	return s.repo.ProfileByUser(ctx, userID)
}

// UpdateLocation records the tourist's latest position and raises a geo_fence
// alert for every high-risk zone the position falls inside.
func (s *Service) UpdateLocation(ctx context.Context, userID string, lat, lng float64) error {
	profile, err := s.repo.ProfileByUser(ctx, userID)
	if err != nil {
		return err
	}
	profile.CurrentLocation = &model.Coordinate{Latitude: lat, Longitude: lng, Timestamp: time.Now().UTC()}
	if err := s.repo.SaveProfile(ctx, profile); err != nil {
		return err
	}

	zones, err := s.repo.ListZones(ctx)
	if err != nil {
		return err
	}
	for _, zone := range zones {
		if distanceMeters(lat, lng, zone.CenterLat, zone.CenterLng) > zone.Radius {
			continue
		}
		alert := model.Alert{
			ID:        uuid.New().String(),
			TouristID: userID,
			AlertType: model.AlertGeoFence,
			Message:   fmt.Sprintf("Tourist entered high-risk zone: %s", zone.Name),
			Location:  &model.Coordinate{Latitude: lat, Longitude: lng},
			Status:    model.AlertStatusActive,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.repo.InsertAlert(ctx, alert); err != nil {
			return err
		}
		s.logger.Warn("geo-fence violation",
			slog.String("tourist_id", userID),
			slog.String("zone", zone.Name),
			slog.String("risk_level", zone.RiskLevel),
		)
	}
	return nil
}

// Panic raises a panic alert at the tourist's last reported location. It fails
// with ErrNoLocation when no location has been reported.
func (s *Service) Panic(ctx context.Context, userID, fullName string) (model.Alert, error) {
	profile, err := s.repo.ProfileByUser(ctx, userID)
	if err != nil {
		return model.Alert{}, err
	}
	if profile.CurrentLocation == nil {
		return model.Alert{}, ErrNoLocation
	}

	alert := model.Alert{
		ID:        uuid.New().String(),
		TouristID: userID,
		AlertType: model.AlertPanic,
		Message:   fmt.Sprintf("PANIC BUTTON pressed by %s", fullName),
		Location:  profile.CurrentLocation,
		Status:    model.AlertStatusActive,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.InsertAlert(ctx, alert); err != nil {
		return model.Alert{}, err
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{Kind: notification.KindPanicAlert, Body: alert.Message})
	}
	s.logger.Warn("panic alert raised", slog.String("tourist_id", userID), slog.String("alert_id", alert.ID))

	return alert, nil
}

// Alerts returns the most recent alerts, newest first.
func (s *Service) Alerts(ctx context.Context) ([]model.Alert, error) {
	return s.repo.ListAlerts(ctx, alertListLimit)
}

// Resolve marks an alert resolved on behalf of an authority. Resolving an
// already-resolved alert simply rewrites the same terminal state.
func (s *Service) Resolve(ctx context.Context, alertID, authorityID string) error {
	return s.repo.ResolveAlert(ctx, alertID, authorityID, time.Now())
}

// Dashboard aggregates the operator-facing snapshot.
func (s *Service) Dashboard(ctx context.Context) (model.DashboardSnapshot, error) {
	tourists, err := s.repo.ProfilesWithLocation(ctx)
	if err != nil {
		return model.DashboardSnapshot{}, err
	}
	active, err := s.repo.ListActiveAlerts(ctx, recentAlertLimit)
	if err != nil {
		return model.DashboardSnapshot{}, err
	}
	zones, err := s.repo.ListZones(ctx)
	if err != nil {
		return model.DashboardSnapshot{}, err
	}
	return model.DashboardSnapshot{
		Tourists:         len(tourists),
		ActiveAlerts:     len(active),
		TouristLocations: tourists,
		RecentAlerts:     active,
		HighRiskZones:    zones,
	}, nil
}

// Zones lists every high-risk zone.
func (s *Service) Zones(ctx context.Context) ([]model.Zone, error) {
	return s.repo.ListZones(ctx)
}

// CreateZone registers a new high-risk zone.
func (s *Service) CreateZone(ctx context.Context, zone model.Zone) (model.Zone, error) {
	if zone.ID == "" {
		zone.ID = uuid.New().String()
	}
	if zone.Name == "" || zone.Radius <= 0 {
		return model.Zone{}, errors.New("zone name and a positive radius are required")
	}
	if err := s.repo.InsertZone(ctx, zone); err != nil {
		return model.Zone{}, err
	}
	return zone, nil
}

// SeedDemoZones loads the demo high-risk zones for Delhi. No-op when zones
// already exist.
func (s *Service) SeedDemoZones(ctx context.Context) error {
	existing, err := s.repo.ListZones(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	demo := []model.Zone{
		{
			ID:          uuid.New().String(),
			Name:        "Old Delhi Railway Station Area",
			CenterLat:   28.6644,
			CenterLng:   77.2198,
			Radius:      500,
			RiskLevel:   model.RiskHigh,
			Description: "High crime rate area near railway station",
		},
		{
			ID:          uuid.New().String(),
			Name:        "Chandni Chowk Narrow Lanes",
			CenterLat:   28.6507,
			CenterLng:   77.2334,
			Radius:      300,
			RiskLevel:   model.RiskMedium,
			Description: "Crowded area with risk of pickpocketing",
		},
		{
			ID:          uuid.New().String(),
			Name:        "Yamuna River Bank",
			CenterLat:   28.6562,
			CenterLng:   77.2410,
			Radius:      800,
			RiskLevel:   model.RiskCritical,
			Description: "Unsafe area especially during night hours",
		},
	}
	for _, zone := range demo {
		if err := s.repo.InsertZone(ctx, zone); err != nil {
			return err
		}
	}
	s.logger.Info("demo zones seeded", slog.Int("count", len(demo)))
	return nil
}
