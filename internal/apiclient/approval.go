package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/psiclinic/clinic-cli/internal/model"
)

// ApprovalClient covers the pending-practitioner approval board.
type ApprovalClient struct {
	c *Client
}

func (c *Client) Approvals() *ApprovalClient {
	return &ApprovalClient{c: c}
}

func (a *ApprovalClient) List(ctx context.Context) ([]model.Approval, error) {
	var res []model.Approval
	if err := a.c.do(ctx, "approvals", http.MethodGet, "/approvals", nil, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (a *ApprovalClient) Approve(ctx context.Context, id uuid.UUID) error {
	path := fmt.Sprintf("/approvals/%s/approve", id)
	return a.c.do(ctx, "approvals", http.MethodPatch, path, nil, nil, nil)
}
