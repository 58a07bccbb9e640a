package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psiclinic/clinic-cli/internal/model"
	"github.com/psiclinic/clinic-cli/pkg/errors"
)

func envelopeJSON(data interface{}) []byte {
	b, _ := json.Marshal(map[string]interface{}{"success": true, "data": data})
	return b
}

func errorJSON(status int, message string) []byte {
	b, _ := json.Marshal(map[string]interface{}{
		"success": false,
		"error":   map[string]interface{}{"code": status, "message": message},
	})
	return b
}

func TestRequestCarriesTokenAndRequestID(t *testing.T) {
	var gotAuth, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Write(envelopeJSON(model.Psychologist{Name: "Dra. Ana"}))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, nil, nil)
	c.SetToken("tok-abc")

	_, err := c.Auth().Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-abc", gotAuth)
	assert.NotEmpty(t, gotRequestID)
	_, err = uuid.Parse(gotRequestID)
	assert.NoError(t, err)
}

func TestSetTokenReplacesStaleToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write(envelopeJSON([]model.Suggestion{}))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, nil, nil)
	c.SetToken("old")
	c.SetToken("fresh")

	_, err := c.Suggestions().List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer fresh", gotAuth)
}

func TestLoginInstallsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/session", r.URL.Path)
		w.Write(envelopeJSON(model.TokenResponse{AccessToken: "issued-token"}))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, nil, nil)
	res, err := c.Auth().Login(context.Background(), &model.LoginRequest{
		Email:    "dra.ana@psiclinic.com.br",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "issued-token", res.AccessToken)
	assert.Equal(t, "issued-token", c.Token())
}

func TestUnauthorizedClearsTokenAndNotifies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write(errorJSON(http.StatusUnauthorized, "invalid token"))
	}))
	defer srv.Close()

	notified := 0
	c := New(Config{BaseURL: srv.URL, OnUnauthorized: func() { notified++ }}, nil, nil)
	c.SetToken("expired")

	_, err := c.Auth().Me(context.Background())
	assert.True(t, errors.IsUnauthorized(err))
	assert.Empty(t, c.Token())
	assert.Equal(t, 1, notified)
}

func TestErrorMappingFromStatus(t *testing.T) {
	cases := []struct {
		status int
		code   errors.ErrorCode
	}{
		{http.StatusNotFound, errors.ErrNotFound},
		{http.StatusConflict, errors.ErrConflict},
		{http.StatusUnprocessableEntity, errors.ErrValidation},
		{http.StatusBadRequest, errors.ErrBadRequest},
		{http.StatusInternalServerError, errors.ErrInternal},
	}

	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			w.Write(errorJSON(tc.status, "nope"))
		}))

		c := New(Config{BaseURL: srv.URL}, nil, nil)
		_, err := c.Patients().Get(context.Background(), uuid.New())
		assert.Equal(t, tc.code, errors.CodeOf(err), "status %d", tc.status)
		srv.Close()
	}
}

func TestShapeMismatchFailsFast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A bare entity without the response envelope.
		json.NewEncoder(w).Encode(model.Patient{Name: "Maria"})
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, nil, nil)
	_, err := c.Patients().Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, errors.ErrInternal, errors.CodeOf(err))
}

func TestPendingPicksFirstStartableAppointment(t *testing.T) {
	patientID := uuid.New()
	scheduled := model.Appointment{
		Base:        model.Base{ID: uuid.New()},
		PatientID:   patientID,
		Status:      model.AppointmentStatusScheduled,
		ScheduledAt: time.Now().Add(time.Hour),
	}
	finished := model.Appointment{
		Base:      model.Base{ID: uuid.New()},
		PatientID: patientID,
		Status:    model.AppointmentStatusFinished,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, patientID.String(), r.URL.Query().Get("patientId"))
		w.Write(envelopeJSON([]model.Appointment{finished, scheduled}))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, nil, nil)
	got, err := c.Appointments().Pending(context.Background(), patientID)
	require.NoError(t, err)
	assert.Equal(t, scheduled.ID, got.ID)
}

func TestPendingNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(envelopeJSON([]model.Appointment{}))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, nil, nil)
	_, err := c.Appointments().Pending(context.Background(), uuid.New())
	assert.True(t, errors.IsNotFound(err))
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(envelopeJSON([]model.Suggestion{}))
	}))
	srv.Close() // every request now fails at the transport level

	c := New(Config{BaseURL: srv.URL, BreakerMax: 2, BreakerTimeout: time.Minute}, nil, nil)

	_, err := c.Suggestions().List(context.Background())
	require.Error(t, err)
	_, err = c.Suggestions().List(context.Background())
	require.Error(t, err)

	// Third call is rejected by the open breaker, not the transport.
	_, err = c.Suggestions().List(context.Background())
	assert.Equal(t, errors.ErrUnavailable, errors.CodeOf(err))
}
