package upstream

import (
	"context"
	"net/http"

	"github.com/iliyamo/tourism-booking-gateway/internal/model"
)

// LoginResult carries the bearer token issued by the upstream.  Older
// deployments name the field "token", newer ones "access_token".
type LoginResult struct {
	AccessToken string     `json:"access_token"`
	Token       string     `json:"token"`
	TokenType   string     `json:"token_type"`
	ExpiresIn   int        `json:"expires_in"`
	User        model.User `json:"user"`
}

// Bearer returns whichever token field was populated.
func (r LoginResult) Bearer() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.Token
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var env model.Envelope[LoginResult]
	if err := c.do(ctx, http.MethodPost, "/login", nil, "", loginReq{Email: email, Password: password}, &env); err != nil {
		return LoginResult{}, err
	}
	if env.Data.Bearer() == "" {
		return LoginResult{}, &APIError{Message: msgFailed, Status: http.StatusBadGateway}
	}
	return env.Data, nil
}

// Logout revokes token upstream.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/logout", nil, token, nil, nil)
}

// Me returns the account that owns token.
func (c *Client) Me(ctx context.Context, token string) (model.User, error) {
	var env model.Envelope[model.OneOrMany[model.User]]
	if err := c.get(ctx, "/profile", nil, token, &env); err != nil {
		return model.User{}, err
	}
	u, ok := env.Data.First()
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}
