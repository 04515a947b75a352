package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/safetrail/safetrail/internal/model"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)

	ctx := context.Background()
	user, err := svc.Register(ctx, Registration{
		Email:    "tourist@demo.com",
		Password: "demo123",
		FullName: "Demo Tourist",
		Role:     model.RoleTourist,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != model.RoleTourist {
		t.Fatalf("expected tourist role, got %s", user.Role)
	}
	if string(user.PasswordHash) == "demo123" {
		t.Fatal("password stored in clear")
	}

	authed, err := svc.Authenticate(ctx, Credentials{Email: "tourist@demo.com", Password: "demo123"})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if authed.ID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, authed.ID)
	}
}

func TestAuthenticateWrongPassword(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, Registration{Email: "a@b.com", Password: "secret1", FullName: "A", Role: model.RoleAuthority})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Authenticate(ctx, Credentials{Email: "a@b.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	reg := Registration{Email: "dup@demo.com", Password: "secret1", FullName: "Dup", Role: model.RoleTourist}
	if _, err := svc.Register(ctx, reg); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, reg); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc := NewService(NewMemoryRepository())

	_, err := svc.Register(context.Background(), Registration{Email: "x@y.com", Password: "secret1", FullName: "X", Role: "admin"})
	if err == nil {
		t.Fatal("expected role validation error")
	}
}
