package safety

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/safetrail/safetrail/internal/model"
)

// ErrProfileNotFound is returned when a tourist has no safety profile.
var ErrProfileNotFound = errors.New("tourist profile not found")

// ErrAlertNotFound is returned when no alert matches the identifier.
var ErrAlertNotFound = errors.New("alert not found")

// Repository persists tourist profiles, alerts and high-risk zones.
type Repository interface {
	SaveProfile(ctx context.Context, profile model.TouristProfile) error
	ProfileByUser(ctx context.Context, userID string) (model.TouristProfile, error)
	ProfilesWithLocation(ctx context.Context) ([]model.TouristProfile, error)

	InsertAlert(ctx context.Context, alert model.Alert) error
	ListAlerts(ctx context.Context, limit int) ([]model.Alert, error)
	ListActiveAlerts(ctx context.Context, limit int) ([]model.Alert, error)
	ResolveAlert(ctx context.Context, alertID, authorityID string, at time.Time) error

	InsertZone(ctx context.Context, zone model.Zone) error
	ListZones(ctx context.Context) ([]model.Zone, error)
}

// PostgresRepository implements Repository using PostgreSQL. Profiles and
// alert locations are stored as JSONB documents, mirroring their wire shape.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed safety repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// SaveProfile upserts the profile document keyed by user id.
func (r *PostgresRepository) SaveProfile(ctx context.Context, profile model.TouristProfile) error {
	doc, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO tourist_profiles (user_id, doc)
        VALUES ($1, $2)
        ON CONFLICT (user_id) DO UPDATE SET doc = EXCLUDED.doc`, profile.UserID, doc)
	return err
}

// ProfileByUser fetches a profile by owning user id.
func (r *PostgresRepository) ProfileByUser(ctx context.Context, userID string) (model.TouristProfile, error) {
	var doc []byte
	err := r.db.QueryRow(ctx, `SELECT doc FROM tourist_profiles WHERE user_id = $1`, userID).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.TouristProfile{}, ErrProfileNotFound
		}
		return model.TouristProfile{}, err
	}
	var profile model.TouristProfile
	if err := json.Unmarshal(doc, &profile); err != nil {
		return model.TouristProfile{}, err
	}
	return profile, nil
}

// ProfilesWithLocation lists profiles that have reported a location.
func (r *PostgresRepository) ProfilesWithLocation(ctx context.Context) ([]model.TouristProfile, error) {
	rows, err := r.db.Query(ctx, `SELECT doc FROM tourist_profiles WHERE doc ? 'current_location'`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []model.TouristProfile
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var profile model.TouristProfile
		if err := json.Unmarshal(doc, &profile); err != nil {
			return nil, err
		}
		if profile.CurrentLocation != nil {
			profiles = append(profiles, profile)
		}
	}
	return profiles, rows.Err()
}

// InsertAlert stores a new alert.
func (r *PostgresRepository) InsertAlert(ctx context.Context, alert model.Alert) error {
	var loc []byte
	if alert.Location != nil {
		var err error
		loc, err = json.Marshal(alert.Location)
		if err != nil {
			return err
		}
	}
	_, err := r.db.Exec(ctx, `INSERT INTO alerts (id, tourist_id, alert_type, message, location, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		alert.ID, alert.TouristID, alert.AlertType, alert.Message, loc, alert.Status, alert.CreatedAt.UTC())
	return err
}

// ListAlerts returns the most recent alerts, newest first.
func (r *PostgresRepository) ListAlerts(ctx context.Context, limit int) ([]model.Alert, error) {
	rows, err := r.db.Query(ctx, `SELECT id, tourist_id, alert_type, message, location, status, created_at, resolved_at, COALESCE(authority_id, '')
        FROM alerts ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAlerts(rows)
}

// ListActiveAlerts returns the most recent unresolved alerts, newest first.
func (r *PostgresRepository) ListActiveAlerts(ctx context.Context, limit int) ([]model.Alert, error) {
	rows, err := r.db.Query(ctx, `SELECT id, tourist_id, alert_type, message, location, status, created_at, resolved_at, COALESCE(authority_id, '')
        FROM alerts WHERE status = $1 ORDER BY created_at DESC LIMIT $2`, model.AlertStatusActive, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAlerts(rows)
}

// ResolveAlert marks an alert resolved. The transition is one-way.
func (r *PostgresRepository) ResolveAlert(ctx context.Context, alertID, authorityID string, at time.Time) error {
	cmd, err := r.db.Exec(ctx, `UPDATE alerts SET status = $1, resolved_at = $2, authority_id = $3 WHERE id = $4`,
		model.AlertStatusResolved, at.UTC(), authorityID, alertID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAlertNotFound
	}
	return nil
}

// InsertZone stores a high-risk zone.
func (r *PostgresRepository) InsertZone(ctx context.Context, zone model.Zone) error {
	_, err := r.db.Exec(ctx, `INSERT INTO high_risk_zones (id, name, center_lat, center_lng, radius, risk_level, description)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		zone.ID, zone.Name, zone.CenterLat, zone.CenterLng, zone.Radius, zone.RiskLevel, zone.Description)
	return err
}

// ListZones returns every high-risk zone.
func (r *PostgresRepository) ListZones(ctx context.Context) ([]model.Zone, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, center_lat, center_lng, radius, risk_level, description FROM high_risk_zones`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var zones []model.Zone
	for rows.Next() {
		var zone model.Zone
		if err := rows.Scan(&zone.ID, &zone.Name, &zone.CenterLat, &zone.CenterLng, &zone.Radius, &zone.RiskLevel, &zone.Description); err != nil {
			return nil, err
		}
		zones = append(zones, zone)
	}
	return zones, rows.Err()
}

func scanAlerts(rows pgx.Rows) ([]model.Alert, error) {
	var alerts []model.Alert
	for rows.Next() {
		var (
			alert      model.Alert
			loc        []byte
			createdAt  time.Time
			resolvedAt *time.Time
		)
		if err := rows.Scan(&alert.ID, &alert.TouristID, &alert.AlertType, &alert.Message, &loc, &alert.Status, &createdAt, &resolvedAt, &alert.AuthorityID); err != nil {
			return nil, err
		}
		if len(loc) > 0 {
			var coord model.Coordinate
			if err := json.Unmarshal(loc, &coord); err != nil {
				return nil, err
			}
			alert.Location = &coord
		}
		alert.CreatedAt = createdAt.UTC()
		alert.ResolvedAt = resolvedAt
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}
