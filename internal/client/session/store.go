// Package session persists the authenticated identity and its bearer token
// across process restarts.
package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/safetrail/safetrail/internal/model"
)

// Store persists the identity/credential pair. The two values are written and
// removed together, never independently.
type Store interface {
	Save(identity model.Identity, token string) error
	// Load returns the stored pair, or ok=false when nothing (valid) is
	// stored. Corrupt data behaves as empty and is cleared.
	Load() (identity model.Identity, token string, ok bool, err error)
	Clear() error
}

// envelope is the serialized form: the token string and the identity record,
// persisted atomically as one document.
type envelope struct {
	Token string         `json:"token"`
	User  model.Identity `json:"user"`
}

func (e envelope) valid() bool {
	return e.Token != "" && e.User.ID != ""
}

// MemoryStore keeps the session in process memory. Used in tests.
type MemoryStore struct {
	mu   sync.Mutex
	data *envelope
}

// NewMemoryStore builds an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save stores the pair.
func (s *MemoryStore) Save(identity model.Identity, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = &envelope{Token: token, User: identity}
	return nil
}

// Load returns the stored pair if present.
func (s *MemoryStore) Load() (model.Identity, string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil || !s.data.valid() {
		s.data = nil
		return model.Identity{}, "", false, nil
	}
	return s.data.User, s.data.Token, true, nil
}

// Clear removes the stored pair.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	return nil
}

// FileStore persists the session as a JSON file. Writes go through a rename
// so the identity and token can never be observed half-written.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore builds a file-backed session store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save writes the pair atomically.
func (s *FileStore) Save(identity model.Identity, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(envelope{Token: token, User: identity})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Load reads the stored pair. Unparseable or incomplete data is treated as
// empty and the file is removed so the next start is clean.
func (s *FileStore) Load() (model.Identity, string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.Identity{}, "", false, nil
		}
		return model.Identity{}, "", false, err
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil || !env.valid() {
		_ = os.Remove(s.path)
		return model.Identity{}, "", false, nil
	}
	return env.User, env.Token, true, nil
}

// Clear removes the session file.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
