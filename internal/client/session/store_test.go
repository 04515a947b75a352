package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/safetrail/safetrail/internal/model"
)

func demoIdentity() model.Identity {
	return model.Identity{
		ID:        "b7a1f6a0-1111-4222-8333-444455556666",
		Email:     "tourist@demo.com",
		FullName:  "Demo Tourist",
		Role:      model.RoleTourist,
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		IsActive:  true,
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)

	want := demoIdentity()
	if err := store.Save(want, "token-abc"); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, token, ok, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok {
		t.Fatal("expected a stored session")
	}
	if token != "token-abc" {
		t.Fatalf("expected token-abc, got %q", token)
	}
	if got != want {
		t.Fatalf("identity mismatch: %+v vs %+v", got, want)
	}
}

func TestFileStoreLoadEmptyWhenMissing(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
	_, _, ok, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ok {
		t.Fatal("expected empty load for missing file")
	}
}

func TestFileStoreSelfHealsCorruptData(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"garbage", "not json at all"},
		{"truncated", `{"token":"abc","user":{"id":`},
		{"wrong types", `{"token":42,"user":"nope"}`},
		{"empty file", ""},
		{"missing token", `{"user":{"id":"x","email":"a@b.c"}}`},
		{"missing identity", `{"token":"abc","user":{}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "session.json")
			if err := os.WriteFile(path, []byte(tc.data), 0o600); err != nil {
				t.Fatalf("write fixture: %v", err)
			}

			store := NewFileStore(path)
			_, _, ok, err := store.Load()
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if ok {
				t.Fatal("corrupt data should load as empty")
			}
			if _, err := os.Stat(path); !os.IsNotExist(err) {
				t.Fatal("corrupt session file should be cleared")
			}
		})
	}
}

func TestFileStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)

	if err := store.Save(demoIdentity(), "tok"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, _, ok, _ := store.Load(); ok {
		t.Fatal("expected empty load after clear")
	}
	// Clearing an already-empty store is not an error.
	if err := store.Clear(); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	want := demoIdentity()

	if err := store.Save(want, "tok"); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, token, ok, err := store.Load()
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got != want || token != "tok" {
		t.Fatalf("round trip mismatch: %+v %q", got, token)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, _, ok, _ := store.Load(); ok {
		t.Fatal("expected empty after clear")
	}
}
