package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"pinshare-backend/internal/models"
	"pinshare-backend/internal/repository"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PinService handles pin-related business logic.
type PinService struct {
	pins      PinStore
	relations RelationStore
	uploader  Uploader
}

// NewPinService creates a new pin service
func NewPinService(pins PinStore, relations RelationStore, uploader Uploader) *PinService {
	return &PinService{
		pins:      pins,
		relations: relations,
		uploader:  uploader,
	}
}

// CreatePinInput carries the multipart fields of a pin creation request.
type CreatePinInput struct {
	Title       string
	Description string
	Link        string
	Category    string
	ContentType string
	Image       io.Reader
}

// Create uploads the image and inserts the pin row. The upload happens
// first; if the insert fails afterwards the uploaded object is orphaned
// and left for out-of-band cleanup.
func (s *PinService) Create(ctx context.Context, userID string, in CreatePinInput) (*models.PinDetail, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, models.NewValidationError("title is required")
	}
	if in.Image == nil {
		return nil, models.NewValidationError("image is required")
	}

	pinID := uuid.New().String()
	key := fmt.Sprintf("pins/%s%s", pinID, extensionFor(in.ContentType))

	imageURL, err := s.uploader.Upload(ctx, key, in.ContentType, in.Image)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	now := time.Now()
	pin := &models.Pin{
		ID:          pinID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		ImageURL:    imageURL,
		Link:        in.Link,
		Category:    in.Category,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.pins.Create(ctx, pin); err != nil {
		return nil, err
	}

	return s.pins.GetDetail(ctx, pinID, userID)
}

// Get returns a single enriched pin.
func (s *PinService) Get(ctx context.Context, pinID, viewerID string) (*models.PinDetail, error) {
	return s.pins.GetDetail(ctx, pinID, viewerID)
}

// Feed returns one page of the pin feed, newest first. has_more is the
// returned-count-equals-limit heuristic: an exact multiple of the page
// size costs the client one trailing empty fetch.
func (s *PinService) Feed(ctx context.Context, page, limit int, search, category, viewerID string) (*models.PinPage, error) {
	page, limit = normalizePage(page, limit)

	pins, err := s.pins.List(ctx, repository.PinFilter{
		Search:   search,
		Category: category,
		ViewerID: viewerID,
		Limit:    limit,
		Offset:   (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}

	return &models.PinPage{
		Pins:    pins,
		Page:    page,
		Limit:   limit,
		HasMore: len(pins) == limit,
	}, nil
}

// ListByUser returns one page of a user's created pins.
func (s *PinService) ListByUser(ctx context.Context, ownerID string, page, limit int, viewerID string) (*models.PinPage, error) {
	page, limit = normalizePage(page, limit)

	pins, err := s.pins.List(ctx, repository.PinFilter{
		OwnerID:  ownerID,
		ViewerID: viewerID,
		Limit:    limit,
		Offset:   (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}

	return &models.PinPage{
		Pins:    pins,
		Page:    page,
		Limit:   limit,
		HasMore: len(pins) == limit,
	}, nil
}

// ListSaved returns one page of the pins a user has saved.
func (s *PinService) ListSaved(ctx context.Context, userID string, page, limit int) (*models.PinPage, error) {
	page, limit = normalizePage(page, limit)

	pins, err := s.pins.ListSavedBy(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	return &models.PinPage{
		Pins:    pins,
		Page:    page,
		Limit:   limit,
		HasMore: len(pins) == limit,
	}, nil
}

// Delete removes a pin owned by the caller. The stored image is left in
// place, consistent with the orphaned-blob policy.
func (s *PinService) Delete(ctx context.Context, pinID, userID string) error {
	pin, err := s.pins.GetByID(ctx, pinID)
	if err != nil {
		return err
	}
	if pin.UserID != userID {
		return models.NewForbiddenError("only the owner can delete a pin")
	}
	return s.pins.Delete(ctx, pinID)
}

// ToggleLike flips the caller's like on a pin. Returns the new state and
// the pin owner's ID so callers can notify them.
func (s *PinService) ToggleLike(ctx context.Context, pinID, userID string) (bool, string, error) {
	pin, err := s.pins.GetByID(ctx, pinID)
	if err != nil {
		return false, "", err
	}

	liked, err := s.relations.ToggleLike(ctx, pinID, userID)
	if err != nil {
		return false, "", err
	}
	return liked, pin.UserID, nil
}

// ToggleSave flips the caller's save on a pin.
func (s *PinService) ToggleSave(ctx context.Context, pinID, userID string) (bool, error) {
	if _, err := s.pins.GetByID(ctx, pinID); err != nil {
		return false, err
	}
	return s.relations.ToggleSave(ctx, pinID, userID)
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
