package services

import (
	"context"
	"testing"
	"time"

	"pinshare-backend/internal/models"
	"pinshare-backend/internal/testutil"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func validSignup() SignupRequest {
	return SignupRequest{
		Email:     "a@example.com",
		Password:  "secret123",
		Username:  "alice",
		FirstName: "Alice",
		LastName:  "Doe",
	}
}

func TestAuthService_SignupAndLogin(t *testing.T) {
	svc := NewAuthService(testutil.NewStore().Users(), testSecret)
	ctx := context.Background()

	resp, err := svc.Signup(ctx, validSignup())
	require.NoError(t, err)
	require.NotNil(t, resp.User)
	assert.NotEmpty(t, resp.Token)
	assert.NotEqual(t, "secret123", resp.User.PasswordHash)

	userID, err := svc.ValidateJWT(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, userID)

	loginResp, err := svc.Login(ctx, "a@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, loginResp.User.ID)
}

func TestAuthService_LoginGenericFailure(t *testing.T) {
	svc := NewAuthService(testutil.NewStore().Users(), testSecret)
	ctx := context.Background()

	_, err := svc.Signup(ctx, validSignup())
	require.NoError(t, err)

	// Wrong password and unknown email must produce the same message.
	_, wrongPw := svc.Login(ctx, "a@example.com", "wrong-password")
	_, unknown := svc.Login(ctx, "nobody@example.com", "secret123")

	var appErr1, appErr2 *models.AppError
	require.ErrorAs(t, wrongPw, &appErr1)
	require.ErrorAs(t, unknown, &appErr2)
	assert.Equal(t, models.CodeUnauthorized, appErr1.Code)
	assert.Equal(t, models.CodeUnauthorized, appErr2.Code)
	assert.Equal(t, appErr1.Message, appErr2.Message)
}

func TestAuthService_SignupValidation(t *testing.T) {
	svc := NewAuthService(testutil.NewStore().Users(), testSecret)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*SignupRequest)
	}{
		{"missing email", func(r *SignupRequest) { r.Email = "" }},
		{"malformed email", func(r *SignupRequest) { r.Email = "not-an-email" }},
		{"short password", func(r *SignupRequest) { r.Password = "short" }},
		{"short username", func(r *SignupRequest) { r.Username = "ab" }},
		{"invalid username", func(r *SignupRequest) { r.Username = "has spaces" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validSignup()
			tc.mutate(&req)
			_, err := svc.Signup(ctx, req)
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, models.CodeValidation, appErr.Code)
		})
	}
}

func TestAuthService_SignupDuplicate(t *testing.T) {
	svc := NewAuthService(testutil.NewStore().Users(), testSecret)
	ctx := context.Background()

	_, err := svc.Signup(ctx, validSignup())
	require.NoError(t, err)

	dup := validSignup()
	dup.Username = "other"
	_, err = svc.Signup(ctx, dup)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeConflict, appErr.Code)
}

func TestAuthService_ValidateJWT(t *testing.T) {
	svc := NewAuthService(testutil.NewStore().Users(), testSecret)

	token, err := svc.GenerateJWT("user-1")
	require.NoError(t, err)

	userID, err := svc.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	_, err = svc.ValidateJWT("garbage")
	assert.Error(t, err)

	// Token signed with a different secret must be rejected.
	other := NewAuthService(testutil.NewStore().Users(), "other-secret")
	otherToken, err := other.GenerateJWT("user-1")
	require.NoError(t, err)
	_, err = svc.ValidateJWT(otherToken)
	assert.Error(t, err)
}

func TestAuthService_ExpiredTokenRejected(t *testing.T) {
	svc := NewAuthService(testutil.NewStore().Users(), testSecret)

	claims := jwt.MapClaims{
		"user_id": "user-1",
		"exp":     time.Now().Add(-time.Hour).Unix(),
		"iat":     time.Now().Add(-2 * time.Hour).Unix(),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.ValidateJWT(expired)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}
