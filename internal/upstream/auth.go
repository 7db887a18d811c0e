package upstream

import (
	"bytes"
	"context"
	"net/http"

	"github.com/learnflow/learnflow/internal/identity"
)

type sessionResponse struct {
	User *identity.User `json:"user"`
}

// CurrentUser resolves a session token with the auth service. A 401, a null
// body or a null user is identity.ErrUnauthenticated.
func (c *Client) CurrentUser(ctx context.Context, token string) (identity.User, error) {
	const op = "get session"
	if token == "" {
		return identity.User{}, identity.ErrUnauthenticated
	}

	body, status, err := c.do(ctx, call{
		op:     op,
		method: http.MethodGet,
		url:    c.endpoints.Auth + "/api/auth/get-session",
		schema: "session",
		cookie: token,
	})
	if status == http.StatusUnauthorized {
		return identity.User{}, identity.ErrUnauthenticated
	}
	if err != nil {
		return identity.User{}, err
	}
	if bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		return identity.User{}, identity.ErrUnauthenticated
	}

	var resp sessionResponse
	if err := decode(op, body, &resp); err != nil {
		return identity.User{}, err
	}
	if resp.User == nil || resp.User.ID == "" {
		return identity.User{}, identity.ErrUnauthenticated
	}
	return *resp.User, nil
}
