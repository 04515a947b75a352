// Package auth owns the client-side session lifecycle: login, registration,
// logout and restore. It is the only component allowed to mutate the
// identity/credential pair.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/safetrail/safetrail/internal/client/gateway"
	"github.com/safetrail/safetrail/internal/client/session"
	"github.com/safetrail/safetrail/internal/model"
	"github.com/safetrail/safetrail/internal/notification"
)

// State is the session lifecycle state.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
)

// String names the state.
func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

const minPasswordLength = 6

// Session tracks the authenticated identity and credential.
type Session struct {
	gw       *gateway.Gateway
	store    session.Store
	notifier notification.Notifier
	logger   *slog.Logger

	mu       sync.Mutex
	state    State
	identity model.Identity
	token    string
}

// New builds a session and registers it with the gateway as both credential
// source and unauthorized-teardown hook.
func New(gw *gateway.Gateway, store session.Store, notifier notification.Notifier, logger *slog.Logger) *Session {
	s := &Session{gw: gw, store: store, notifier: notifier, logger: logger}
	gw.SetTokenSource(s.Token)
	gw.SetUnauthorizedHook(s.forceLogout)
	return s
}

// RegisterInput carries the registration form fields. ConfirmPassword is
// validated locally and never sent over the wire.
type RegisterInput struct {
	Email            string
	Password         string
	ConfirmPassword  string
	FullName         string
	Role             string
	Phone            string
	EmergencyContact string
	EmergencyPhone   string
	IDProofNumber    string
}

// Login authenticates against the backing service and commits the returned
// identity and credential. On failure the session stays anonymous.
func (s *Session) Login(ctx context.Context, email, password string) (model.Identity, error) {
	s.setState(StateAuthenticating)

	var resp model.TokenResponse
	err := s.gw.Post(ctx, "/auth/login", model.LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		s.setState(StateAnonymous)
		return model.Identity{}, err
	}
	return s.commit(ctx, resp)
}

// Register validates the form locally, then creates the account and behaves
// like a successful login. Validation failures never reach the network.
func (s *Session) Register(ctx context.Context, input RegisterInput) (model.Identity, error) {
	if err := validateRegistration(input); err != nil {
		if s.notifier != nil {
			_ = s.notifier.Send(ctx, notification.Message{Kind: notification.KindError, Body: err.Error()})
		}
		return model.Identity{}, err
	}

	s.setState(StateAuthenticating)

	var resp model.TokenResponse
	err := s.gw.Post(ctx, "/auth/register", model.RegisterRequest{
		Email:            input.Email,
		Password:         input.Password,
		FullName:         input.FullName,
		Role:             input.Role,
		Phone:            input.Phone,
		EmergencyContact: input.EmergencyContact,
		EmergencyPhone:   input.EmergencyPhone,
		IDProofNumber:    input.IDProofNumber,
	}, &resp)
	if err != nil {
		s.setState(StateAnonymous)
		return model.Identity{}, err
	}
	return s.commit(ctx, resp)
}

// Logout clears the stored session unconditionally. Local-only: it always
// succeeds from the caller's perspective.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	s.state = StateAnonymous
	s.identity = model.Identity{}
	s.token = ""
	s.mu.Unlock()

	if err := s.store.Clear(); err != nil {
		s.logger.Warn("session store clear failed", slog.Any("error", err))
	}
	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{Kind: notification.KindSession, Body: "Logged out successfully."})
	}
}

// Restore loads a persisted session at process start. The credential is
// accepted optimistically; a stale one fails on the first authenticated call
// and tears the session down through the unauthorized hook.
func (s *Session) Restore() bool {
	identity, token, ok, err := s.store.Load()
	if err != nil {
		s.logger.Warn("session restore failed", slog.Any("error", err))
		return false
	}
	if !ok {
		return false
	}

	s.mu.Lock()
	s.state = StateAuthenticated
	s.identity = identity
	s.token = token
	s.mu.Unlock()
	return true
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Identity returns the authenticated identity, if any.
func (s *Session) Identity() (model.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity, s.state == StateAuthenticated
}

// Token returns the current bearer credential, or "" when anonymous.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// commit persists the identity/credential pair atomically and transitions to
// authenticated.
func (s *Session) commit(ctx context.Context, resp model.TokenResponse) (model.Identity, error) {
	if err := s.store.Save(resp.User, resp.AccessToken); err != nil {
		s.setState(StateAnonymous)
		return model.Identity{}, fmt.Errorf("persist session: %w", err)
	}

	s.mu.Lock()
	s.state = StateAuthenticated
	s.identity = resp.User
	s.token = resp.AccessToken
	s.mu.Unlock()

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind: notification.KindSession,
			Body: fmt.Sprintf("Welcome back, %s!", resp.User.FullName),
		})
	}
	s.logger.Info("session established", slog.String("role", resp.User.Role))
	return resp.User, nil
}

// forceLogout is invoked by the gateway on an Unauthorized classification.
// The stale credential is dropped before any caller can retry with it.
func (s *Session) forceLogout(context.Context) {
	s.mu.Lock()
	wasAuthenticated := s.state == StateAuthenticated
	s.state = StateAnonymous
	s.identity = model.Identity{}
	s.token = ""
	s.mu.Unlock()

	if err := s.store.Clear(); err != nil {
		s.logger.Warn("session store clear failed", slog.Any("error", err))
	}
	if wasAuthenticated {
		s.logger.Info("session torn down after unauthorized response")
	}
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
