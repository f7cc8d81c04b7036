package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pinshare-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// constraintName extracts the violated constraint name, if any.
func constraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, username, first_name, last_name, password_hash, avatar_url, bio, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Email, user.Username, user.FirstName, user.LastName,
		user.PasswordHash, user.AvatarURL, user.Bio, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			if strings.Contains(constraintName(err), "username") {
				return models.NewConflictError("username already in use")
			}
			return models.NewConflictError("email already in use")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, email, username, first_name, last_name, password_hash, avatar_url, bio, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	var user models.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.Username, &user.FirstName, &user.LastName,
		&user.PasswordHash, &user.AvatarURL, &user.Bio, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NewNotFoundError("user")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, username, first_name, last_name, password_hash, avatar_url, bio, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	var user models.User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.Username, &user.FirstName, &user.LastName,
		&user.PasswordHash, &user.AvatarURL, &user.Bio, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NewNotFoundError("user")
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// GetProfile retrieves a user's public profile with read-time aggregates.
func (r *UserRepository) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	query := `
		SELECT u.id, u.username, u.first_name, u.last_name, u.avatar_url, u.bio, u.created_at,
			(SELECT COUNT(*) FROM pins p WHERE p.user_id = u.id),
			(SELECT COUNT(*) FROM user_follows f WHERE f.following_id = u.id),
			(SELECT COUNT(*) FROM user_follows f WHERE f.follower_id = u.id)
		FROM users u
		WHERE u.id = $1
	`
	var profile models.Profile
	err := r.db.QueryRow(ctx, query, id).Scan(
		&profile.ID, &profile.Username, &profile.FirstName, &profile.LastName,
		&profile.AvatarURL, &profile.Bio, &profile.CreatedAt,
		&profile.PinsCount, &profile.FollowersCount, &profile.FollowingCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NewNotFoundError("user")
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}
