package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/psiclinic/clinic-cli/internal/model"
	"github.com/psiclinic/clinic-cli/pkg/errors"
)

// AppointmentClient covers appointment listing, updates and the session
// start/finish lifecycle. Status transitions stay server-authoritative;
// these calls only request them.
type AppointmentClient struct {
	c *Client
}

func (c *Client) Appointments() *AppointmentClient {
	return &AppointmentClient{c: c}
}

func (a *AppointmentClient) List(ctx context.Context, filters *model.AppointmentFilters) ([]model.Appointment, error) {
	params := url.Values{}
	if filters != nil {
		if filters.PatientID != uuid.Nil {
			params.Set("patientId", filters.PatientID.String())
		}
		if filters.Status != "" {
			params.Set("status", string(filters.Status))
		}
	}

	var res []model.Appointment
	if err := a.c.do(ctx, "appointments", http.MethodGet, "/appointments", params, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// Pending resolves the patient's next startable appointment, or a
// not-found error when there is none.
func (a *AppointmentClient) Pending(ctx context.Context, patientID uuid.UUID) (*model.Appointment, error) {
	appointments, err := a.List(ctx, &model.AppointmentFilters{PatientID: patientID})
	if err != nil {
		return nil, err
	}
	for i := range appointments {
		if appointments[i].Pending() {
			return &appointments[i], nil
		}
	}
	return nil, errors.NewNotFound(fmt.Sprintf("pending appointment for patient %s", patientID), nil)
}

func (a *AppointmentClient) Update(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	var res model.Appointment
	path := fmt.Sprintf("/appointments/%s", id)
	if err := a.c.do(ctx, "appointments", http.MethodPut, path, nil, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Start begins the session for an appointment. The backend flips the
// appointment to ATTENDING and returns the new session id.
func (a *AppointmentClient) Start(ctx context.Context, id uuid.UUID) (*model.StartSessionResponse, error) {
	var res model.StartSessionResponse
	path := fmt.Sprintf("/appointments/%s/start", id)
	if err := a.c.do(ctx, "appointments", http.MethodPost, path, nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
