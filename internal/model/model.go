// Package model defines the wire-level domain types shared by the SafeTrail
// client core and the backing service.
package model

import "time"

// User roles.
const (
	RoleTourist   = "tourist"
	RoleAuthority = "authority"
)

// Alert types.
const (
	AlertPanic    = "panic"
	AlertGeoFence = "geo_fence"
	AlertAnomaly  = "anomaly"
	AlertMissing  = "missing"
)

// Alert statuses. Resolution is one-way: active → resolved.
const (
	AlertStatusActive   = "active"
	AlertStatusResolved = "resolved"
)

// Zone risk levels.
const (
	RiskLow      = "low"
	RiskMedium   = "medium"
	RiskHigh     = "high"
	RiskCritical = "critical"
)

// Identity is the authenticated user record.
type Identity struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	IsActive  bool      `json:"is_active"`
}

// Coordinate is a single device position sample.
type Coordinate struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

// Alert is a server-owned safety event with a lifecycle status.
type Alert struct {
	ID          string      `json:"id"`
	TouristID   string      `json:"tourist_id"`
	AlertType   string      `json:"alert_type"`
	Message     string      `json:"message"`
	Location    *Coordinate `json:"location,omitempty"`
	Status      string      `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	ResolvedAt  *time.Time  `json:"resolved_at,omitempty"`
	AuthorityID string      `json:"authority_id,omitempty"`
}

// Zone is a geofenced reference area with an associated risk level.
type Zone struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	CenterLat   float64 `json:"center_lat"`
	CenterLng   float64 `json:"center_lng"`
	Radius      float64 `json:"radius"` // meters
	RiskLevel   string  `json:"risk_level"`
	Description string  `json:"description"`
}

// EmergencyContact is a person reachable on behalf of a tourist.
type EmergencyContact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

// TouristProfile holds the safety record kept per tourist identity.
type TouristProfile struct {
	ID                    string             `json:"id"`
	UserID                string             `json:"user_id"`
	DigitalID             string             `json:"digital_id"`
	SafetyScore           int                `json:"safety_score"`
	CurrentLocation       *Coordinate        `json:"current_location,omitempty"`
	FamilyTrackingEnabled bool               `json:"family_tracking_enabled"`
	EmergencyContacts     []EmergencyContact `json:"emergency_contacts"`
	BlockchainHash        string             `json:"blockchain_hash"`
	TripEndDate           *time.Time         `json:"trip_end_date,omitempty"`
	CreatedAt             time.Time          `json:"created_at"`
}

// DashboardSnapshot aggregates the operator-facing view of the system.
type DashboardSnapshot struct {
	Tourists         int              `json:"tourists"`
	ActiveAlerts     int              `json:"active_alerts"`
	TouristLocations []TouristProfile `json:"tourist_locations"`
	RecentAlerts     []Alert          `json:"recent_alerts"`
	HighRiskZones    []Zone           `json:"high_risk_zones"`
}

// LoginRequest is the credential payload sent to POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the payload sent to POST /auth/register.
type RegisterRequest struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	FullName         string `json:"full_name"`
	Role             string `json:"role"`
	Phone            string `json:"phone,omitempty"`
	EmergencyContact string `json:"emergency_contact,omitempty"`
	EmergencyPhone   string `json:"emergency_phone,omitempty"`
	IDProofNumber    string `json:"id_proof_number,omitempty"`
}

// TokenResponse is returned by both login and register.
type TokenResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	User        Identity `json:"user"`
}

// LocationUpdate is the payload sent to PUT /tourist/location.
type LocationUpdate struct {
	TouristID string  `json:"tourist_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
