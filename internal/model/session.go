package model

import (
	"time"

	"github.com/google/uuid"
)

// MaxSessionNotesLen is the upper bound on session notes, in characters.
// Longer input is truncated client-side and rejected server-side.
const MaxSessionNotesLen = 8000

type Session struct {
	Base
	AppointmentID uuid.UUID  `json:"appointment_id"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	Notes         string     `json:"notes,omitempty"`
}

// Active reports whether the session has been started but not finished.
func (s *Session) Active() bool {
	return s.FinishedAt == nil
}

type StartSessionResponse struct {
	SessionID     uuid.UUID `json:"session_id"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	StartedAt     time.Time `json:"started_at"`
}

type FinishSessionRequest struct {
	Notes string `json:"notes" validate:"max=8000"`
}
