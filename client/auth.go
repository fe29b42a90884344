package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/radarhq/compass"
)

// AuthService wraps the authentication endpoints.
type AuthService struct {
	client *Client
}

// Login exchanges credentials for a token. The endpoint takes a
// form-encoded body and returns a bare (non-enveloped) payload.
func (s *AuthService) Login(ctx context.Context, username, password string) (*compass.LoginResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	out := &compass.LoginResponse{}
	err := s.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/login",
		form:   form,
	}, out)
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Me fetches the identity bound to the current token.
func (s *AuthService) Me(ctx context.Context) (*compass.User, error) {
	var env compass.Response[*compass.User]
	err := s.client.do(ctx, request{
		method: http.MethodGet,
		path:   "/users/me",
	}, &env)
	if err != nil {
		return nil, err
	}

	return env.Data, nil
}
