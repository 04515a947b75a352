package safety

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/safetrail/safetrail/internal/logging"
	"github.com/safetrail/safetrail/internal/model"
	"github.com/safetrail/safetrail/internal/notification"
)

func newTestService(t *testing.T) (*Service, *notification.Recorder) {
	t.Helper()
	recorder := notification.NewRecorder()
	return NewService(NewMemoryRepository(), recorder, logging.Discard()), recorder
}

func TestEnsureProfileIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.NewString()

	first, err := svc.EnsureProfile(ctx, userID, nil)
	if err != nil {
		t.Fatalf("ensure profile: %v", err)
	}
	if first.SafetyScore != defaultSafetyScore {
		t.Fatalf("expected default safety score, got %d", first.SafetyScore)
	}
	if len(first.DigitalID) != 8 || first.DigitalID[:2] != "DT" {
		t.Fatalf("unexpected digital id %q", first.DigitalID)
	}

	second, err := svc.EnsureProfile(ctx, userID, nil)
	if err != nil {
		t.Fatalf("ensure profile again: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same profile, got %s and %s", first.ID, second.ID)
	}
}

func TestPanicRequiresLocation(t *testing.T) {
	svc, recorder := newTestService(t)
	ctx := context.Background()
	userID := uuid.NewString()

	if _, err := svc.EnsureProfile(ctx, userID, nil); err != nil {
		t.Fatalf("ensure profile: %v", err)
	}

	if _, err := svc.Panic(ctx, userID, "Demo Tourist"); !errors.Is(err, ErrNoLocation) {
		t.Fatalf("expected ErrNoLocation, got %v", err)
	}

	if err := svc.UpdateLocation(ctx, userID, 28.61, 77.20); err != nil {
		t.Fatalf("update location: %v", err)
	}
	alert, err := svc.Panic(ctx, userID, "Demo Tourist")
	if err != nil {
		t.Fatalf("panic: %v", err)
	}
	if alert.AlertType != model.AlertPanic || alert.Status != model.AlertStatusActive {
		t.Fatalf("unexpected alert %+v", alert)
	}
	if alert.Location == nil {
		t.Fatal("panic alert missing location")
	}
	if got := recorder.Messages(); len(got) != 1 || got[0].Kind != notification.KindPanicAlert {
		t.Fatalf("expected one panic notification, got %v", got)
	}
}

func TestUpdateLocationRaisesGeoFenceAlert(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.NewString()

	if _, err := svc.EnsureProfile(ctx, userID, nil); err != nil {
		t.Fatalf("ensure profile: %v", err)
	}
	if err := svc.SeedDemoZones(ctx); err != nil {
		t.Fatalf("seed zones: %v", err)
	}

	// Inside the Old Delhi Railway Station zone.
	if err := svc.UpdateLocation(ctx, userID, 28.6644, 77.2198); err != nil {
		t.Fatalf("update location: %v", err)
	}
	alerts, err := svc.Alerts(ctx)
	if err != nil {
		t.Fatalf("alerts: %v", err)
	}
	if len(alerts) != 1 || alerts[0].AlertType != model.AlertGeoFence {
		t.Fatalf("expected one geo_fence alert, got %v", alerts)
	}

	// Well outside every zone: no new alert.
	if err := svc.UpdateLocation(ctx, userID, 48.8566, 2.3522); err != nil {
		t.Fatalf("update location: %v", err)
	}
	alerts, err = svc.Alerts(ctx)
	if err != nil {
		t.Fatalf("alerts: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected alert count unchanged, got %d", len(alerts))
	}
}

func TestResolveIsOneWay(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.NewString()
	authorityID := uuid.NewString()

	if _, err := svc.EnsureProfile(ctx, userID, nil); err != nil {
		t.Fatalf("ensure profile: %v", err)
	}
	if err := svc.UpdateLocation(ctx, userID, 10, 10); err != nil {
		t.Fatalf("update location: %v", err)
	}
	alert, err := svc.Panic(ctx, userID, "Demo Tourist")
	if err != nil {
		t.Fatalf("panic: %v", err)
	}

	if err := svc.Resolve(ctx, alert.ID, authorityID); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	alerts, err := svc.Alerts(ctx)
	if err != nil {
		t.Fatalf("alerts: %v", err)
	}
	for _, a := range alerts {
		if a.ID == alert.ID && a.Status == model.AlertStatusActive {
			t.Fatal("resolved alert still listed as active")
		}
		if a.ID == alert.ID && a.AuthorityID != authorityID {
			t.Fatalf("expected authority %s on resolved alert, got %s", authorityID, a.AuthorityID)
		}
	}

	if err := svc.Resolve(ctx, uuid.NewString(), authorityID); !errors.Is(err, ErrAlertNotFound) {
		t.Fatalf("expected ErrAlertNotFound, got %v", err)
	}
}

func TestDashboardAggregation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	located := uuid.NewString()
	unlocated := uuid.NewString()
	for _, id := range []string{located, unlocated} {
		if _, err := svc.EnsureProfile(ctx, id, nil); err != nil {
			t.Fatalf("ensure profile: %v", err)
		}
	}
	if err := svc.UpdateLocation(ctx, located, 10, 10); err != nil {
		t.Fatalf("update location: %v", err)
	}
	if _, err := svc.Panic(ctx, located, "Demo Tourist"); err != nil {
		t.Fatalf("panic: %v", err)
	}

	snap, err := svc.Dashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if snap.Tourists != 1 {
		t.Fatalf("expected 1 located tourist, got %d", snap.Tourists)
	}
	if snap.ActiveAlerts != 1 || len(snap.RecentAlerts) != 1 {
		t.Fatalf("expected 1 active alert, got %+v", snap)
	}
}

func TestDistanceMeters(t *testing.T) {
	// Connaught Place to India Gate is roughly 2.5 km.
	d := distanceMeters(28.6315, 77.2167, 28.6129, 77.2295)
	if d < 2000 || d > 3000 {
		t.Fatalf("implausible distance %f", d)
	}
	if distanceMeters(10, 10, 10, 10) != 0 {
		t.Fatal("identical points should be zero distance")
	}
}
