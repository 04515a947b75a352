package auth

import (
	"errors"
	"testing"
	"time"
)

func TestSignAndVerifyRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	token, err := SignHS256("user-1", time.Hour, secret)
	if err != nil {
		t.Fatalf("SignHS256: %v", err)
	}
	subject, err := VerifyHS256(token, secret)
	if err != nil {
		t.Fatalf("VerifyHS256: %v", err)
	}
	if subject != "user-1" {
		t.Fatalf("got subject %q, want user-1", subject)
	}
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	secret := []byte("test-secret")
	good, err := SignHS256("user-1", time.Hour, secret)
	if err != nil {
		t.Fatalf("SignHS256: %v", err)
	}
	expired, err := SignHS256("user-1", -time.Minute, secret)
	if err != nil {
		t.Fatalf("SignHS256: %v", err)
	}
	forged, err := SignHS256("user-1", time.Hour, []byte("other-secret"))
	if err != nil {
		t.Fatalf("SignHS256: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"two segments", "aaaa.bbbb"},
		{"garbage", "not a token at all"},
		{"tampered signature", good + "x"},
		{"wrong secret", forged},
		{"expired", expired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := VerifyHS256(tt.token, secret); !errors.Is(err, ErrTokenInvalid) {
				t.Fatalf("got %v, want ErrTokenInvalid", err)
			}
		})
	}
}
