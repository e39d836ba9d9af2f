package service

import (
	"context"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/logistics-console/internal/auth"
	"github.com/spec-kit/logistics-console/internal/backend"
	"github.com/spec-kit/logistics-console/internal/config"
	"github.com/spec-kit/logistics-console/internal/domain"
	"github.com/spec-kit/logistics-console/internal/repository"
	apperrors "github.com/spec-kit/logistics-console/pkg/util/errorutil"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func backendToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

func newAuthService(fb *fakeBackend) (*AuthService, repository.SessionRepository) {
	sessions := repository.NewMemorySessionRepository()
	svc := NewAuthService(config.SessionConfig{TTLMinutes: 60}, AuthDependencies{
		Backend:  fb,
		Sessions: sessions,
		Now:      func() time.Time { return fixedNow },
	})
	return svc, sessions
}

func TestLoginSuccessCreatesFullSession(t *testing.T) {
	token := backendToken(t, jwt.MapClaims{
		"id": "u-1", "email": "ana@example.com", "role": "admin",
		"exp": fixedNow.Add(30 * time.Minute).Unix(),
	})
	fb := &fakeBackend{loginResult: &backend.LoginResult{Status: domain.LoginStatusSuccess, Token: token}}
	svc, sessions := newAuthService(fb)

	outcome, err := svc.Login(context.Background(), "ana@example.com", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, outcome.SessionID)
	assert.Equal(t, domain.LoginStatusSuccess, outcome.Status)
	assert.True(t, outcome.ExpiresAt.Equal(fixedNow.Add(30*time.Minute)), "token expiry caps the session")

	stored, err := sessions.GetByKeyHash(context.Background(), auth.HashSessionID(outcome.SessionID))
	require.NoError(t, err)
	assert.Equal(t, domain.SessionKindFull, stored.Kind)
	assert.Equal(t, domain.RoleAdmin, stored.Role)
	assert.Equal(t, token, stored.BackendJWT)
}

func TestLoginPendingPasswordChange(t *testing.T) {
	fb := &fakeBackend{loginResult: &backend.LoginResult{
		Status: domain.LoginStatusRequiredPasswordChange,
		Token:  "opaque-temporary-token",
		User:   &backend.LoginUser{ID: "d-1", Email: "luis@example.com", Role: domain.RoleDriver},
	}}
	svc, sessions := newAuthService(fb)

	outcome, err := svc.Login(context.Background(), "luis@example.com", "temp")
	require.NoError(t, err)
	assert.True(t, outcome.ExpiresAt.Equal(fixedNow.Add(time.Hour)))

	stored, err := sessions.GetByKeyHash(context.Background(), auth.HashSessionID(outcome.SessionID))
	require.NoError(t, err)
	assert.Equal(t, domain.SessionKindPendingPasswordChange, stored.Kind)
	assert.Equal(t, "d-1", stored.UserID)
}

func TestLoginRejectionsCreateNoSession(t *testing.T) {
	for _, status := range []domain.LoginStatus{domain.LoginStatusInvalidCredentials, domain.LoginStatusEmailNotVerified} {
		fb := &fakeBackend{loginResult: &backend.LoginResult{Status: status, Message: "nope"}}
		svc, _ := newAuthService(fb)

		outcome, err := svc.Login(context.Background(), "ana@example.com", "pw")
		require.NoError(t, err)
		assert.Equal(t, status, outcome.Status)
		assert.Empty(t, outcome.SessionID)
		assert.Nil(t, outcome.Session)
	}
}

func TestLoginUnreadableToken(t *testing.T) {
	fb := &fakeBackend{loginResult: &backend.LoginResult{Status: domain.LoginStatusSuccess, Token: "opaque"}}
	svc, _ := newAuthService(fb)

	_, err := svc.Login(context.Background(), "ana@example.com", "pw")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUpstreamUnavailable))
}

func TestLoginRequiresCredentials(t *testing.T) {
	fb := &fakeBackend{}
	svc, _ := newAuthService(fb)

	_, err := svc.Login(context.Background(), "", "")
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeValidation, domainErr.Code)
	assert.Contains(t, domainErr.Details, "email")
	assert.Contains(t, domainErr.Details, "password")
	assert.Empty(t, fb.called())
}

func TestSetInitialPasswordValidation(t *testing.T) {
	cases := []struct {
		name  string
		input SetInitialPasswordInput
		field string
	}{
		{"missing current", SetInitialPasswordInput{NewPassword: "longenough", ConfirmPassword: "longenough"}, "current_password"},
		{"too short", SetInitialPasswordInput{CurrentPassword: "temp", NewPassword: "short", ConfirmPassword: "short"}, "new_password"},
		{"mismatch", SetInitialPasswordInput{CurrentPassword: "temp", NewPassword: "longenough", ConfirmPassword: "different"}, "confirm_password"},
		{"unchanged", SetInitialPasswordInput{CurrentPassword: "samesame1", NewPassword: "samesame1", ConfirmPassword: "samesame1"}, "new_password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fb := &fakeBackend{}
			svc, _ := newAuthService(fb)
			_, err := svc.SetInitialPassword(context.Background(), session(domain.RoleDriver), tc.input)
			domainErr := apperrors.ToDomainError(err)
			require.NotNil(t, domainErr)
			assert.Equal(t, apperrors.CodeValidation, domainErr.Code)
			assert.Contains(t, domainErr.Details, tc.field)
			assert.Empty(t, fb.called())
		})
	}
}

func TestSetInitialPasswordEndsPendingSession(t *testing.T) {
	fb := &fakeBackend{}
	svc, sessions := newAuthService(fb)
	pending := session(domain.RoleDriver)
	pending.Kind = domain.SessionKindPendingPasswordChange
	require.NoError(t, sessions.Create(context.Background(), pending))

	msg, err := svc.SetInitialPassword(context.Background(), pending, SetInitialPasswordInput{
		CurrentPassword: "temp1234",
		NewPassword:     "brandnew99",
		ConfirmPassword: "brandnew99",
	})
	require.NoError(t, err)
	assert.Equal(t, "password updated", msg)
	assert.Equal(t, "u-1", fb.lastInitial.UserID)
	assert.Equal(t, "jwt-driver", fb.lastToken)

	_, err = sessions.GetByKeyHash(context.Background(), pending.KeyHash)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestRegisterAndPasswordResetValidation(t *testing.T) {
	fb := &fakeBackend{}
	svc, _ := newAuthService(fb)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "not-an-email", Password: "pw", FullName: "Ana"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	msg, err := svc.Register(ctx, RegisterInput{Email: "ana@example.com", Password: "secret123", ConfirmPassword: "secret123", FullName: "Ana Ruiz"})
	require.NoError(t, err)
	assert.Equal(t, "registered ana@example.com", msg)

	_, err = svc.ForgotPassword(ctx, "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	out, err := svc.ForgotPassword(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.True(t, out.UserExists)

	_, err = svc.ResetPassword(ctx, "tok", "secret123", "secret124")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	msg, err = svc.ResetPassword(ctx, "tok", "secret123", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "reset", msg)

	_, err = svc.ConfirmEmail(ctx, " ")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestLogoutDeletesSession(t *testing.T) {
	fb := &fakeBackend{}
	svc, sessions := newAuthService(fb)
	s := session(domain.RoleUser)
	require.NoError(t, sessions.Create(context.Background(), s))

	require.NoError(t, svc.Logout(context.Background(), s))
	_, err := sessions.GetByKeyHash(context.Background(), s.KeyHash)
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	assert.NoError(t, svc.Logout(context.Background(), nil))
}

func TestMeUsesSessionToken(t *testing.T) {
	fb := &fakeBackend{}
	svc, _ := newAuthService(fb)

	user, err := svc.Me(context.Background(), session(domain.RoleUser))
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, "jwt-user", fb.lastToken)
}
