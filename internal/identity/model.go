package identity

import (
	"time"

	"github.com/safetrail/safetrail/internal/model"
)

// User represents a registered platform account, tourist or authority.
type User struct {
	ID           string
	Email        string
	FullName     string
	Role         string
	Phone        string
	PasswordHash []byte
	CreatedAt    time.Time
	IsActive     bool
}

// Identity strips the credential material for wire exposure.
func (u User) Identity() model.Identity {
	return model.Identity{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		IsActive:  u.IsActive,
	}
}

// Registration carries the fields accepted at account creation.
type Registration struct {
	Email            string
	Password         string
	FullName         string
	Role             string
	Phone            string
	EmergencyContact string
	EmergencyPhone   string
	IDProofNumber    string
}

// Credentials is an email/password pair presented at login.
type Credentials struct {
	Email    string
	Password string
}
