// Package sessionctrl owns the appointment-session lifecycle: selecting
// a patient, starting the session, accumulating notes and finishing.
package sessionctrl

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/psiclinic/clinic-cli/internal/model"
)

// State of the controller.
type State string

const (
	StateIdle            State = "idle"
	StatePatientSelected State = "patient_selected"
	StateActive          State = "active"
)

var (
	// ErrSessionActive rejects patient selection while a session runs.
	ErrSessionActive = errors.New("a session is already active")
	// ErrNoAppointment rejects Start before a pending appointment resolved.
	ErrNoAppointment = errors.New("no pending appointment resolved for the selected patient")
	// ErrNoActiveSession rejects Finish when no session id is held. The
	// caller must surface it; finishing never silently no-ops.
	ErrNoActiveSession = errors.New("no active session to finish")
	// ErrNoPatientSelected rejects Start from the idle state.
	ErrNoPatientSelected = errors.New("no patient selected")
)

// AppointmentAPI is the slice of the remote client the controller needs
// for appointments.
type AppointmentAPI interface {
	Pending(ctx context.Context, patientID uuid.UUID) (*model.Appointment, error)
	Start(ctx context.Context, id uuid.UUID) (*model.StartSessionResponse, error)
}

// SessionAPI finishes sessions remotely.
type SessionAPI interface {
	Finish(ctx context.Context, id uuid.UUID, notes string) (*model.Session, error)
}

// Invalidator drops cached lists after lifecycle mutations.
type Invalidator interface {
	InvalidatePrefix(prefix string)
}

// DraftStore persists note drafts locally between runs. Drafts never
// reach the server; finishing a session discards its draft.
type DraftStore interface {
	Save(appointmentID uuid.UUID, notes string) error
	Load(appointmentID uuid.UUID) (string, error)
	Delete(appointmentID uuid.UUID) error
}

// Snapshot is an atomic view of the controller for rendering.
type Snapshot struct {
	State             State
	SelectedPatientID uuid.UUID
	Appointment       *model.Appointment
	SessionID         uuid.UUID
	IsSessionActive   bool
	Notes             string
}

// Controller is the session-room state machine. All methods are safe
// for concurrent use; dependents always observe whole transitions.
type Controller struct {
	appointments AppointmentAPI
	sessions     SessionAPI
	cache        Invalidator
	drafts       DraftStore

	mu          sync.Mutex
	state       State
	patientID   uuid.UUID
	appointment *model.Appointment
	sessionID   uuid.UUID
	notes       string
}

func New(appointments AppointmentAPI, sessions SessionAPI, cache Invalidator, drafts DraftStore) *Controller {
	return &Controller{
		appointments: appointments,
		sessions:     sessions,
		cache:        cache,
		drafts:       drafts,
		state:        StateIdle,
	}
}

// SelectPatient chooses the patient for the session room and resolves
// their pending appointment. Disabled while a session is active.
func (c *Controller) SelectPatient(ctx context.Context, patientID uuid.UUID) error {
	c.mu.Lock()
	if c.state == StateActive {
		c.mu.Unlock()
		return ErrSessionActive
	}
	c.state = StatePatientSelected
	c.patientID = patientID
	c.appointment = nil
	c.mu.Unlock()

	appointment, err := c.appointments.Pending(ctx, patientID)
	if err != nil {
		return fmt.Errorf("failed to resolve pending appointment: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// A competing selection or reset may have happened while resolving.
	if c.state != StatePatientSelected || c.patientID != patientID {
		return nil
	}
	c.appointment = appointment

	if c.drafts != nil {
		if draft, err := c.drafts.Load(appointment.ID); err == nil && draft != "" {
			c.notes = truncateNotes(draft)
		}
	}
	return nil
}

// ClearSelection returns to idle without touching the server. Refused
// while a session is active.
func (c *Controller) ClearSelection() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateActive {
		return ErrSessionActive
	}
	c.reset()
	return nil
}

// Start begins the session for the resolved appointment. On failure the
// controller stays in PatientSelected and the error is surfaced.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.state == StateActive:
		c.mu.Unlock()
		return ErrSessionActive
	case c.state == StateIdle:
		c.mu.Unlock()
		return ErrNoPatientSelected
	case c.appointment == nil:
		c.mu.Unlock()
		return ErrNoAppointment
	}
	appointmentID := c.appointment.ID
	c.mu.Unlock()

	res, err := c.appointments.Start(ctx, appointmentID)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	c.mu.Lock()
	c.state = StateActive
	c.sessionID = res.SessionID
	c.mu.Unlock()

	if c.cache != nil {
		c.cache.InvalidatePrefix("appointments")
	}
	return nil
}

// WriteNotes replaces the notes buffer, silently truncating anything
// beyond the maximum length.
func (c *Controller) WriteNotes(notes string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notes = truncateNotes(notes)
}

// AppendNotes appends to the notes buffer under the same cap.
func (c *Controller) AppendNotes(notes string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notes = truncateNotes(c.notes + notes)
}

// SaveDraft writes the current notes buffer to the local draft store.
func (c *Controller) SaveDraft() error {
	c.mu.Lock()
	appointment := c.appointment
	notes := c.notes
	c.mu.Unlock()

	if c.drafts == nil {
		return errors.New("draft storage not configured")
	}
	if appointment == nil {
		return ErrNoAppointment
	}
	return c.drafts.Save(appointment.ID, notes)
}

// Finish submits the accumulated notes and closes the session. With no
// session id it refuses immediately and no network call is issued. On
// failure the session stays active; on success every field resets
// atomically.
func (c *Controller) Finish(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateActive || c.sessionID == uuid.Nil {
		c.mu.Unlock()
		return ErrNoActiveSession
	}
	sessionID := c.sessionID
	appointment := c.appointment
	notes := c.notes
	c.mu.Unlock()

	if _, err := c.sessions.Finish(ctx, sessionID, notes); err != nil {
		return fmt.Errorf("failed to finish session: %w", err)
	}

	c.mu.Lock()
	c.reset()
	c.mu.Unlock()

	if c.drafts != nil && appointment != nil {
		_ = c.drafts.Delete(appointment.ID)
	}
	if c.cache != nil {
		c.cache.InvalidatePrefix("appointments")
	}
	return nil
}

// reset clears all lifecycle fields. Callers hold the lock.
func (c *Controller) reset() {
	c.state = StateIdle
	c.patientID = uuid.Nil
	c.appointment = nil
	c.sessionID = uuid.Nil
	c.notes = ""
}

// Snapshot returns an atomic copy of the controller state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:             c.state,
		SelectedPatientID: c.patientID,
		Appointment:       c.appointment,
		SessionID:         c.sessionID,
		IsSessionActive:   c.state == StateActive,
		Notes:             c.notes,
	}
}

func truncateNotes(notes string) string {
	runes := []rune(notes)
	if len(runes) <= model.MaxSessionNotesLen {
		return notes
	}
	return string(runes[:model.MaxSessionNotesLen])
}
