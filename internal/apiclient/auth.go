package apiclient

import (
	"context"
	"net/http"

	"github.com/psiclinic/clinic-cli/internal/model"
)

// AuthClient handles authentication and the signed-in profile.
type AuthClient struct {
	c *Client
}

func (c *Client) Auth() *AuthClient {
	return &AuthClient{c: c}
}

// Login authenticates and installs the returned token on the client so
// every subsequent request carries it.
func (a *AuthClient) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	var res model.TokenResponse
	if err := a.c.do(ctx, "session", http.MethodPost, "/session", nil, req, &res); err != nil {
		return nil, err
	}
	a.c.SetToken(res.AccessToken)
	return &res, nil
}

// Me fetches the signed-in psychologist's profile.
func (a *AuthClient) Me(ctx context.Context) (*model.Psychologist, error) {
	var res model.Psychologist
	if err := a.c.do(ctx, "psychologist", http.MethodGet, "/psychologist/me", nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
