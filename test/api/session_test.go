package api_test

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psiclinic/clinic-cli/internal/apiclient"
	"github.com/psiclinic/clinic-cli/internal/model"
	"github.com/psiclinic/clinic-cli/internal/querycache"
	"github.com/psiclinic/clinic-cli/internal/sessionctrl"
	"github.com/psiclinic/clinic-cli/pkg/errors"
	"github.com/psiclinic/clinic-cli/pkg/metrics"
)

func seededPatientID(t *testing.T, client *apiclient.Client, name string) uuid.UUID {
	t.Helper()
	page, err := client.Patients().List(context.Background(), url.Values{"name": {name}})
	require.NoError(t, err)
	require.NotEmpty(t, page.Items)
	return page.Items[0].ID
}

func TestSessionLifecycle(t *testing.T) {
	client := bootAPI(t)
	ctx := context.Background()
	patientID := seededPatientID(t, client, "Maria")

	cache := querycache.New(time.Minute, time.Minute, metrics.New("test_session", nil))
	drafts, err := sessionctrl.NewFileDraftStore(t.TempDir())
	require.NoError(t, err)
	ctrl := sessionctrl.New(client.Appointments(), client.Sessions(), cache, drafts)

	require.NoError(t, ctrl.SelectPatient(ctx, patientID))
	snap := ctrl.Snapshot()
	require.NotNil(t, snap.Appointment)
	assert.Equal(t, sessionctrl.StatePatientSelected, snap.State)

	require.NoError(t, ctrl.Start(ctx))
	assert.True(t, ctrl.Snapshot().IsSessionActive)

	// Server marks the appointment as in progress once the session starts.
	appts, err := client.Appointments().List(ctx, &model.AppointmentFilters{PatientID: patientID})
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, model.AppointmentStatusAttending, appts[0].Status)

	// Starting twice is a conflict server-side.
	_, err = client.Appointments().Start(ctx, appts[0].ID)
	assert.Equal(t, errors.ErrConflict, errors.CodeOf(err))

	ctrl.WriteNotes("Paciente relatou melhora no quadro de ansiedade.")
	require.NoError(t, ctrl.Finish(ctx))

	final := ctrl.Snapshot()
	assert.Equal(t, sessionctrl.StateIdle, final.State)
	assert.False(t, final.IsSessionActive)
	assert.Empty(t, final.Notes)

	appts, err = client.Appointments().List(ctx, &model.AppointmentFilters{PatientID: patientID})
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, model.AppointmentStatusFinished, appts[0].Status)
}

func TestSessionNotesTruncatedAtLimit(t *testing.T) {
	client := bootAPI(t)
	ctx := context.Background()
	patientID := seededPatientID(t, client, "João")

	cache := querycache.New(time.Minute, time.Minute, metrics.New("test_notes", nil))
	drafts, err := sessionctrl.NewFileDraftStore(t.TempDir())
	require.NoError(t, err)
	ctrl := sessionctrl.New(client.Appointments(), client.Sessions(), cache, drafts)

	require.NoError(t, ctrl.SelectPatient(ctx, patientID))
	require.NoError(t, ctrl.Start(ctx))

	// The controller caps notes client-side, so even pathological input
	// finishes cleanly against the server's own limit.
	ctrl.WriteNotes(strings.Repeat("ã", model.MaxSessionNotesLen+500))
	assert.Len(t, []rune(ctrl.Snapshot().Notes), model.MaxSessionNotesLen)

	require.NoError(t, ctrl.Finish(ctx))
}

func TestFinishWithoutActiveSessionIsRefused(t *testing.T) {
	client := bootAPI(t)
	ctx := context.Background()
	patientID := seededPatientID(t, client, "Carla")

	cache := querycache.New(time.Minute, time.Minute, metrics.New("test_refuse", nil))
	drafts, err := sessionctrl.NewFileDraftStore(t.TempDir())
	require.NoError(t, err)
	ctrl := sessionctrl.New(client.Appointments(), client.Sessions(), cache, drafts)

	require.NoError(t, ctrl.SelectPatient(ctx, patientID))
	err = ctrl.Finish(ctx)
	require.ErrorIs(t, err, sessionctrl.ErrNoActiveSession)

	// Nothing reached the server: the appointment is still pending.
	appts, lerr := client.Appointments().List(ctx, &model.AppointmentFilters{PatientID: patientID})
	require.NoError(t, lerr)
	require.Len(t, appts, 1)
	assert.True(t, appts[0].Pending())
}
