package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/psiclinic/clinic-cli/internal/model"
)

// SuggestionClient covers the community suggestions board.
type SuggestionClient struct {
	c *Client
}

func (c *Client) Suggestions() *SuggestionClient {
	return &SuggestionClient{c: c}
}

func (s *SuggestionClient) List(ctx context.Context) ([]model.Suggestion, error) {
	var res []model.Suggestion
	if err := s.c.do(ctx, "suggestions", http.MethodGet, "/suggestions", nil, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *SuggestionClient) Create(ctx context.Context, req *model.CreateSuggestionRequest) (*model.Suggestion, error) {
	var res model.Suggestion
	if err := s.c.do(ctx, "suggestions", http.MethodPost, "/suggestions", nil, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *SuggestionClient) Like(ctx context.Context, id uuid.UUID) (*model.Suggestion, error) {
	var res model.Suggestion
	path := fmt.Sprintf("/suggestions/%s/like", id)
	if err := s.c.do(ctx, "suggestions", http.MethodPatch, path, nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
