// Package authstore persists the bearer token and the cached profile
// between runs. It is the only shared mutable state in the product:
// written by the sign-in and profile-fetch flows, read when the API
// client is constructed.
package authstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/psiclinic/clinic-cli/internal/model"
)

const credentialsFile = "credentials.json"

// State is what survives a restart.
type State struct {
	Token   string              `json:"token,omitempty"`
	Profile *model.Psychologist `json:"profile,omitempty"`
}

type Store struct {
	path string
	mu   sync.Mutex
}

// New creates a store rooted at dir. An empty dir resolves to the
// user's config directory.
func New(dir string) (*Store, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config dir: %w", err)
		}
		dir = filepath.Join(base, "clinic-cli")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create state dir: %w", err)
	}
	return &Store{path: filepath.Join(dir, credentialsFile)}, nil
}

// Dir returns the directory holding the store's files.
func (s *Store) Dir() string {
	return filepath.Dir(s.path)
}

// Load reads the persisted state. A missing file yields an empty state.
func (s *Store) Load() (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (*State, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("corrupt credentials file: %w", err)
	}
	return &st, nil
}

func (s *Store) save(st *State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

// SaveToken persists a fresh token, keeping any cached profile.
func (s *Store) SaveToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		st = &State{}
	}
	st.Token = token
	return s.save(st)
}

// SaveProfile caches the signed-in profile next to the token.
func (s *Store) SaveProfile(p *model.Psychologist) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		st = &State{}
	}
	st.Profile = p
	return s.save(st)
}

// Clear removes persisted credentials, e.g. after a 401.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// TokenExpired inspects the token's exp claim without verifying the
// signature (only the backend can do that) so the CLI can prompt for
// sign-in instead of burning a request on a guaranteed 401.
func TokenExpired(token string, now time.Time) bool {
	if token == "" {
		return true
	}

	var claims jwt.RegisteredClaims
	_, _, err := jwt.NewParser().ParseUnverified(token, &claims)
	if err != nil || claims.ExpiresAt == nil {
		// Opaque tokens pass through; the backend decides.
		return false
	}
	return claims.ExpiresAt.Before(now)
}
