package services

import (
	"context"
	"io"

	"pinshare-backend/internal/models"
	"pinshare-backend/internal/repository"
)

// UserStore is the persistence surface the user-facing services need.
// Implemented by repository.UserRepository.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
}

// PinStore is implemented by repository.PinRepository.
type PinStore interface {
	Create(ctx context.Context, pin *models.Pin) error
	GetByID(ctx context.Context, id string) (*models.Pin, error)
	GetDetail(ctx context.Context, id, viewerID string) (*models.PinDetail, error)
	List(ctx context.Context, f repository.PinFilter) ([]*models.PinDetail, error)
	ListSavedBy(ctx context.Context, userID string, limit, offset int) ([]*models.PinDetail, error)
	Delete(ctx context.Context, id string) error
}

// RelationStore is implemented by repository.RelationRepository.
type RelationStore interface {
	ToggleLike(ctx context.Context, pinID, userID string) (bool, error)
	ToggleSave(ctx context.Context, pinID, userID string) (bool, error)
	ToggleFollow(ctx context.Context, followingID, followerID string) (bool, error)
}

// Uploader stores image bytes and returns their public URL.
// Implemented by storage.S3Storage.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}
