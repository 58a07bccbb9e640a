package sessionctrl

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psiclinic/clinic-cli/internal/model"
)

type fakeAppointments struct {
	pending    *model.Appointment
	pendingErr error
	startRes   *model.StartSessionResponse
	startErr   error
	startCalls int
}

func (f *fakeAppointments) Pending(ctx context.Context, patientID uuid.UUID) (*model.Appointment, error) {
	if f.pendingErr != nil {
		return nil, f.pendingErr
	}
	return f.pending, nil
}

func (f *fakeAppointments) Start(ctx context.Context, id uuid.UUID) (*model.StartSessionResponse, error) {
	f.startCalls++
	if f.startErr != nil {
		return nil, f.startErr
	}
	return f.startRes, nil
}

type fakeSessions struct {
	finishErr   error
	finishCalls int
	notes       string
}

func (f *fakeSessions) Finish(ctx context.Context, id uuid.UUID, notes string) (*model.Session, error) {
	f.finishCalls++
	f.notes = notes
	if f.finishErr != nil {
		return nil, f.finishErr
	}
	now := time.Now()
	return &model.Session{Notes: notes, FinishedAt: &now}, nil
}

type fakeInvalidator struct {
	prefixes []string
}

func (f *fakeInvalidator) InvalidatePrefix(prefix string) {
	f.prefixes = append(f.prefixes, prefix)
}

func newAppointment() *model.Appointment {
	return &model.Appointment{
		Base:   model.Base{ID: uuid.New()},
		Status: model.AppointmentStatusScheduled,
	}
}

func newActiveController(t *testing.T) (*Controller, *fakeAppointments, *fakeSessions, *fakeInvalidator) {
	t.Helper()
	appointments := &fakeAppointments{
		pending:  newAppointment(),
		startRes: &model.StartSessionResponse{SessionID: uuid.New()},
	}
	sessions := &fakeSessions{}
	cache := &fakeInvalidator{}
	c := New(appointments, sessions, cache, nil)

	require.NoError(t, c.SelectPatient(context.Background(), uuid.New()))
	require.NoError(t, c.Start(context.Background()))
	return c, appointments, sessions, cache
}

func TestSelectPatientResolvesPendingAppointment(t *testing.T) {
	appointments := &fakeAppointments{pending: newAppointment()}
	c := New(appointments, &fakeSessions{}, nil, nil)

	patientID := uuid.New()
	require.NoError(t, c.SelectPatient(context.Background(), patientID))

	snap := c.Snapshot()
	assert.Equal(t, StatePatientSelected, snap.State)
	assert.Equal(t, patientID, snap.SelectedPatientID)
	require.NotNil(t, snap.Appointment)
	assert.Equal(t, appointments.pending.ID, snap.Appointment.ID)
	assert.False(t, snap.IsSessionActive)
}

func TestSelectPatientRefusedWhileSessionActive(t *testing.T) {
	c, _, _, _ := newActiveController(t)

	err := c.SelectPatient(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrSessionActive)
	assert.Equal(t, StateActive, c.Snapshot().State)
}

func TestStartRequiresResolvedAppointment(t *testing.T) {
	appointments := &fakeAppointments{pendingErr: errors.New("network down")}
	c := New(appointments, &fakeSessions{}, nil, nil)

	require.Error(t, c.SelectPatient(context.Background(), uuid.New()))
	err := c.Start(context.Background())
	assert.ErrorIs(t, err, ErrNoAppointment)
	assert.Zero(t, appointments.startCalls)
}

func TestStartFromIdleRefused(t *testing.T) {
	c := New(&fakeAppointments{}, &fakeSessions{}, nil, nil)
	assert.ErrorIs(t, c.Start(context.Background()), ErrNoPatientSelected)
}

func TestStartFailureStaysPatientSelected(t *testing.T) {
	appointments := &fakeAppointments{
		pending:  newAppointment(),
		startErr: errors.New("backend rejected"),
	}
	c := New(appointments, &fakeSessions{}, nil, nil)

	require.NoError(t, c.SelectPatient(context.Background(), uuid.New()))
	require.Error(t, c.Start(context.Background()))

	snap := c.Snapshot()
	assert.Equal(t, StatePatientSelected, snap.State)
	assert.False(t, snap.IsSessionActive)
	assert.Equal(t, uuid.Nil, snap.SessionID)
}

func TestStartInvalidatesAppointmentLists(t *testing.T) {
	_, _, _, cache := newActiveController(t)
	assert.Contains(t, cache.prefixes, "appointments")
}

func TestWriteNotesTruncatesSilently(t *testing.T) {
	c := New(&fakeAppointments{}, &fakeSessions{}, nil, nil)

	c.WriteNotes(strings.Repeat("a", model.MaxSessionNotesLen+500))
	assert.Len(t, []rune(c.Snapshot().Notes), model.MaxSessionNotesLen)

	// Multi-byte characters count as characters, not bytes.
	c.WriteNotes(strings.Repeat("ã", model.MaxSessionNotesLen+1))
	assert.Len(t, []rune(c.Snapshot().Notes), model.MaxSessionNotesLen)

	c.WriteNotes("short note")
	assert.Equal(t, "short note", c.Snapshot().Notes)
}

func TestAppendNotesRespectsCap(t *testing.T) {
	c := New(&fakeAppointments{}, &fakeSessions{}, nil, nil)

	c.WriteNotes(strings.Repeat("a", model.MaxSessionNotesLen-3))
	c.AppendNotes("xxxxxxxx")
	assert.Len(t, []rune(c.Snapshot().Notes), model.MaxSessionNotesLen)
}

func TestFinishWithoutSessionRefusesWithoutNetworkCall(t *testing.T) {
	sessions := &fakeSessions{}
	c := New(&fakeAppointments{pending: newAppointment()}, sessions, nil, nil)

	assert.ErrorIs(t, c.Finish(context.Background()), ErrNoActiveSession)

	require.NoError(t, c.SelectPatient(context.Background(), uuid.New()))
	assert.ErrorIs(t, c.Finish(context.Background()), ErrNoActiveSession)

	assert.Zero(t, sessions.finishCalls)
}

func TestFinishSubmitsNotesAndResetsAtomically(t *testing.T) {
	c, _, sessions, cache := newActiveController(t)

	c.WriteNotes("patient made progress")
	require.NoError(t, c.Finish(context.Background()))

	assert.Equal(t, "patient made progress", sessions.notes)

	snap := c.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Equal(t, uuid.Nil, snap.SelectedPatientID)
	assert.Equal(t, uuid.Nil, snap.SessionID)
	assert.Nil(t, snap.Appointment)
	assert.False(t, snap.IsSessionActive)
	assert.Empty(t, snap.Notes)

	// Start and finish each invalidate the cached appointment lists.
	assert.Len(t, cache.prefixes, 2)
}

func TestFinishFailureStaysActive(t *testing.T) {
	c, _, sessions, _ := newActiveController(t)
	sessions.finishErr = errors.New("timeout")

	c.WriteNotes("notes to keep")
	require.Error(t, c.Finish(context.Background()))

	snap := c.Snapshot()
	assert.Equal(t, StateActive, snap.State)
	assert.True(t, snap.IsSessionActive)
	assert.Equal(t, "notes to keep", snap.Notes)

	// Retry succeeds once the backend recovers.
	sessions.finishErr = nil
	require.NoError(t, c.Finish(context.Background()))
	assert.Equal(t, StateIdle, c.Snapshot().State)
}

func TestDraftLifecycle(t *testing.T) {
	drafts, err := NewFileDraftStore(t.TempDir())
	require.NoError(t, err)

	appointment := newAppointment()
	appointments := &fakeAppointments{
		pending:  appointment,
		startRes: &model.StartSessionResponse{SessionID: uuid.New()},
	}
	c := New(appointments, &fakeSessions{}, nil, drafts)

	require.NoError(t, c.SelectPatient(context.Background(), uuid.New()))
	c.WriteNotes("draft in progress")
	require.NoError(t, c.SaveDraft())

	// A fresh controller for the same appointment picks the draft up.
	c2 := New(appointments, &fakeSessions{}, nil, drafts)
	require.NoError(t, c2.SelectPatient(context.Background(), uuid.New()))
	assert.Equal(t, "draft in progress", c2.Snapshot().Notes)

	// Finishing discards the draft.
	require.NoError(t, c2.Start(context.Background()))
	require.NoError(t, c2.Finish(context.Background()))

	saved, err := drafts.Load(appointment.ID)
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestSaveDraftWithoutAppointment(t *testing.T) {
	drafts, err := NewFileDraftStore(t.TempDir())
	require.NoError(t, err)

	c := New(&fakeAppointments{}, &fakeSessions{}, nil, drafts)
	assert.ErrorIs(t, c.SaveDraft(), ErrNoAppointment)
}
