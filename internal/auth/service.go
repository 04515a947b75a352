package auth

import (
	"github.com/safetrail/safetrail/internal/config"
	"github.com/safetrail/safetrail/internal/identity"
)

// Service issues and verifies bearer tokens for authenticated users.
type Service struct {
	cfg config.Config
}

// NewService builds a token service from configuration.
func NewService(cfg config.Config) *Service {
	return &Service{cfg: cfg}
}

// Issue signs an access token for the user.
func (s *Service) Issue(user identity.User) (string, error) {
	return SignHS256(user.ID, s.cfg.TokenTTL, []byte(s.cfg.JWTSecret))
}

// Verify validates a bearer token and returns the subject user id.
func (s *Service) Verify(token string) (string, error) {
	return VerifyHS256(token, []byte(s.cfg.JWTSecret))
}
