package backend

import (
	"context"
	"net/http"

	"github.com/spec-kit/logistics-console/internal/domain"
	"github.com/spec-kit/logistics-console/pkg/util/errorutil"
)

// RegisterRequest is the POST /auth/register body.
type RegisterRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	FullName string      `json:"full_name"`
	Role     domain.Role `json:"role"`
}

// MessageResponse is the generic acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// LoginUser is the user block of a login response.
type LoginUser struct {
	ID                     string      `json:"id"`
	Email                  string      `json:"email"`
	Role                   domain.Role `json:"role"`
	IsVerified             *bool       `json:"isVerified,omitempty"`
	RequiresPasswordChange bool        `json:"requiresPasswordChange"`
}

// LoginResult is the outcome of POST /auth/login.
type LoginResult struct {
	Status  domain.LoginStatus `json:"status"`
	Message string             `json:"message"`
	Token   string             `json:"token"`
	User    *LoginUser         `json:"user"`
}

// SetInitialPasswordRequest is the POST /auth/set-initial-password body.
type SetInitialPasswordRequest struct {
	UserID          string `json:"userId"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ForgotPasswordResult is the POST /auth/forgot-password response.
type ForgotPasswordResult struct {
	Message    string `json:"message"`
	UserExists bool   `json:"userExists"`
}

// ResetPasswordRequest is the POST /auth/reset-password body.
type ResetPasswordRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Register creates a customer account. The role is always user.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*MessageResponse, error) {
	req.Role = domain.RoleUser
	var out MessageResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfirmEmail redeems an email confirmation token.
func (c *Client) ConfirmEmail(ctx context.Context, token string) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.do(ctx, http.MethodPost, "/auth/confirm-email", "", map[string]string{"token": token}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates credentials. Rejections the backend reports as a login
// status (bad credentials, unverified email, pending password change) are
// returned as a result, not an error.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var out LoginResult
	err := c.do(ctx, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		statusErr, ok := statusOf(err)
		if !ok {
			return nil, err
		}
		switch {
		case statusErr.Status != "":
			return &LoginResult{Status: domain.LoginStatus(statusErr.Status), Message: statusErr.Message}, nil
		case statusErr.Code == http.StatusUnauthorized:
			return &LoginResult{Status: domain.LoginStatusInvalidCredentials, Message: statusErr.Message}, nil
		}
		return nil, err
	}

	if out.Status == "" {
		out.Status = domain.LoginStatusSuccess
		switch {
		case out.User == nil:
		case out.User.IsVerified != nil && !*out.User.IsVerified:
			out.Status = domain.LoginStatusEmailNotVerified
		case out.User.RequiresPasswordChange:
			out.Status = domain.LoginStatusRequiredPasswordChange
		}
	}
	if (out.Status == domain.LoginStatusSuccess || out.Status == domain.LoginStatusRequiredPasswordChange) && out.Token == "" {
		return nil, errorutil.NewUpstreamError("login succeeded without a token", nil)
	}
	return &out, nil
}

// SetInitialPassword replaces the temporary password of a new account.
func (c *Client) SetInitialPassword(ctx context.Context, token string, req SetInitialPasswordRequest) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.do(ctx, http.MethodPost, "/auth/set-initial-password", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ForgotPassword requests a reset email.
func (c *Client) ForgotPassword(ctx context.Context, email string) (*ForgotPasswordResult, error) {
	var out ForgotPasswordResult
	if err := c.do(ctx, http.MethodPost, "/auth/forgot-password", "", map[string]string{"email": email}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetPassword redeems a reset token.
func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.do(ctx, http.MethodPost, "/auth/reset-password", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the account behind token.
func (c *Client) Me(ctx context.Context, token string) (*domain.User, error) {
	var out domain.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
