package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/psiclinic/clinic-cli/internal/model"
)

// SessionClient finishes active sessions.
type SessionClient struct {
	c *Client
}

func (c *Client) Sessions() *SessionClient {
	return &SessionClient{c: c}
}

// Finish persists the accumulated notes and marks the appointment
// FINISHED server-side.
func (s *SessionClient) Finish(ctx context.Context, id uuid.UUID, notes string) (*model.Session, error) {
	var res model.Session
	path := fmt.Sprintf("/sessions/%s/finish", id)
	req := &model.FinishSessionRequest{Notes: notes}
	if err := s.c.do(ctx, "sessions", http.MethodPost, path, nil, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
