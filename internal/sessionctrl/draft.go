package sessionctrl

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileDraftStore keeps one draft file per appointment under dir, so
// unfinished notes survive a restart. Purely local; nothing is sent to
// the server until the session is finished.
type FileDraftStore struct {
	dir string
}

func NewFileDraftStore(dir string) (*FileDraftStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create drafts dir: %w", err)
	}
	return &FileDraftStore{dir: dir}, nil
}

func (s *FileDraftStore) path(appointmentID uuid.UUID) string {
	return filepath.Join(s.dir, appointmentID.String()+".draft")
}

func (s *FileDraftStore) Save(appointmentID uuid.UUID, notes string) error {
	return os.WriteFile(s.path(appointmentID), []byte(notes), 0o600)
}

func (s *FileDraftStore) Load(appointmentID uuid.UUID) (string, error) {
	data, err := os.ReadFile(s.path(appointmentID))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *FileDraftStore) Delete(appointmentID uuid.UUID) error {
	err := os.Remove(s.path(appointmentID))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
