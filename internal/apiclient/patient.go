package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/psiclinic/clinic-cli/internal/model"
)

// PatientClient covers patient CRUD and paginated search.
type PatientClient struct {
	c *Client
}

func (c *Client) Patients() *PatientClient {
	return &PatientClient{c: c}
}

// List runs the paginated patient search. params is the projection
// produced by filterstore.QueryParams.
func (p *PatientClient) List(ctx context.Context, params url.Values) (*model.Page[model.Patient], error) {
	var res model.Page[model.Patient]
	if err := p.c.do(ctx, "patients", http.MethodGet, "/patients", params, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (p *PatientClient) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	var res model.Patient
	path := fmt.Sprintf("/patient/%s", id)
	if err := p.c.do(ctx, "patient", http.MethodGet, path, nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (p *PatientClient) Create(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	var res model.Patient
	if err := p.c.do(ctx, "patient", http.MethodPost, "/patient", nil, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (p *PatientClient) Update(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	var res model.Patient
	path := fmt.Sprintf("/patient/%s", id)
	if err := p.c.do(ctx, "patient", http.MethodPut, path, nil, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (p *PatientClient) Delete(ctx context.Context, id uuid.UUID) error {
	path := fmt.Sprintf("/patient/%s", id)
	return p.c.do(ctx, "patient", http.MethodDelete, path, nil, nil, nil)
}
