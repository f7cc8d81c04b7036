package services

import (
	"context"

	"pinshare-backend/internal/models"
)

// UserService handles profile and follow business logic.
type UserService struct {
	users     UserStore
	relations RelationStore
}

// NewUserService creates a new user service
func NewUserService(users UserStore, relations RelationStore) *UserService {
	return &UserService{
		users:     users,
		relations: relations,
	}
}

// GetProfile returns a user's public profile with fresh aggregates.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	return s.users.GetProfile(ctx, userID)
}

// ToggleFollow flips the follow relationship from follower to target.
func (s *UserService) ToggleFollow(ctx context.Context, targetID, followerID string) (bool, error) {
	if targetID == followerID {
		return false, models.NewValidationError("cannot follow yourself")
	}

	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return false, err
	}

	return s.relations.ToggleFollow(ctx, targetID, followerID)
}
