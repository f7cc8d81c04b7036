package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"pinshare-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenExpDays      = 7
	minPasswordLength = 8
)

var (
	emailRegexp    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	usernameRegexp = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
)

// AuthService handles signup, login and token verification.
type AuthService struct {
	users     UserStore
	jwtSecret string
}

// NewAuthService creates a new auth service
func NewAuthService(users UserStore, jwtSecret string) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: jwtSecret,
	}
}

// SignupRequest represents the signup payload.
type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Signup registers a new account and returns a signed token for it.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*models.AuthResponse, error) {
	if !emailRegexp.MatchString(req.Email) {
		return nil, models.NewValidationError("a valid email is required")
	}
	if !usernameRegexp.MatchString(req.Username) {
		return nil, models.NewValidationError("username must be 3-30 characters (letters, digits, underscore)")
	}
	if len(req.Password) < minPasswordLength {
		return nil, models.NewValidationError(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &models.AuthResponse{Token: token, User: user}, nil
}

// Login verifies credentials and returns a signed token. The failure
// message never distinguishes an unknown email from a wrong password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	if email == "" || password == "" {
		return nil, models.NewValidationError("email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeNotFound {
			return nil, models.NewUnauthorizedError("invalid email or password")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("invalid email or password")
	}

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &models.AuthResponse{Token: token, User: user}, nil
}

// Me returns the identity record for a verified token subject.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// GenerateJWT generates a signed token for a user
func (s *AuthService) GenerateJWT(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().AddDate(0, 0, tokenExpDays).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a token and returns the user ID it binds.
func (s *AuthService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", fmt.Errorf("user_id not found in token")
	}

	return userID, nil
}
