package backend

import (
	"context"
	"net/http"

	"github.com/spec-kit/logistics-console/internal/domain"
)

type createDriverRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// ListDrivers returns the driver roster.
func (c *Client) ListDrivers(ctx context.Context, token string) ([]domain.User, error) {
	var out []domain.User
	if err := c.do(ctx, http.MethodGet, "/users/driver", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateDriver creates a driver account; the backend mails a temporary
// password.
func (c *Client) CreateDriver(ctx context.Context, token, email, fullName string) (*domain.User, error) {
	var out domain.User
	if err := c.do(ctx, http.MethodPost, "/users/driver", token, createDriverRequest{Email: email, FullName: fullName}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
