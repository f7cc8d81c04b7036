package repository

import (
	"context"
	"errors"
	"fmt"

	"pinshare-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PinRepository handles database operations for pins
type PinRepository struct {
	db *pgxpool.Pool
}

// NewPinRepository creates a new pin repository
func NewPinRepository(db *pgxpool.Pool) *PinRepository {
	return &PinRepository{db: db}
}

// PinFilter narrows the feed query. Empty fields are ignored.
type PinFilter struct {
	Search   string
	Category string
	OwnerID  string
	ViewerID string
	Limit    int
	Offset   int
}

// Create creates a new pin
func (r *PinRepository) Create(ctx context.Context, pin *models.Pin) error {
	query := `
		INSERT INTO pins (id, title, description, image_url, link, category, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		pin.ID, pin.Title, pin.Description, pin.ImageURL, pin.Link, pin.Category,
		pin.UserID, pin.CreatedAt, pin.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create pin: %w", err)
	}
	return nil
}

// GetByID retrieves a bare pin row, used for ownership and existence checks.
func (r *PinRepository) GetByID(ctx context.Context, id string) (*models.Pin, error) {
	query := `
		SELECT id, title, description, image_url, link, category, user_id, created_at, updated_at
		FROM pins
		WHERE id = $1
	`
	var pin models.Pin
	err := r.db.QueryRow(ctx, query, id).Scan(
		&pin.ID, &pin.Title, &pin.Description, &pin.ImageURL, &pin.Link,
		&pin.Category, &pin.UserID, &pin.CreatedAt, &pin.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NewNotFoundError("pin")
		}
		return nil, fmt.Errorf("failed to get pin: %w", err)
	}
	return &pin, nil
}

// GetDetail retrieves a pin enriched with its owner, counts and the
// viewer's liked/saved flags. viewerID may be empty for anonymous reads.
func (r *PinRepository) GetDetail(ctx context.Context, id, viewerID string) (*models.PinDetail, error) {
	query := `
		SELECT p.id, p.title, p.description, p.image_url, p.link, p.category, p.user_id, p.created_at, p.updated_at,
			u.id, u.username, u.first_name, u.last_name, u.avatar_url,
			(SELECT COUNT(*) FROM pin_likes l WHERE l.pin_id = p.id),
			(SELECT COUNT(*) FROM pin_saves s WHERE s.pin_id = p.id),
			EXISTS(SELECT 1 FROM pin_likes l WHERE l.pin_id = p.id AND l.user_id = NULLIF($2, '')::uuid),
			EXISTS(SELECT 1 FROM pin_saves s WHERE s.pin_id = p.id AND s.user_id = NULLIF($2, '')::uuid)
		FROM pins p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = $1
	`
	var d models.PinDetail
	err := r.db.QueryRow(ctx, query, id, viewerID).Scan(
		&d.ID, &d.Title, &d.Description, &d.ImageURL, &d.Link, &d.Category,
		&d.UserID, &d.CreatedAt, &d.UpdatedAt,
		&d.Owner.ID, &d.Owner.Username, &d.Owner.FirstName, &d.Owner.LastName, &d.Owner.AvatarURL,
		&d.LikesCount, &d.SavesCount, &d.Liked, &d.Saved,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NewNotFoundError("pin")
		}
		return nil, fmt.Errorf("failed to get pin detail: %w", err)
	}
	return &d, nil
}

// List retrieves a page of enriched pins, newest first.
func (r *PinRepository) List(ctx context.Context, f PinFilter) ([]*models.PinDetail, error) {
	query := `
		SELECT p.id, p.title, p.description, p.image_url, p.link, p.category, p.user_id, p.created_at, p.updated_at,
			u.id, u.username, u.first_name, u.last_name, u.avatar_url,
			(SELECT COUNT(*) FROM pin_likes l WHERE l.pin_id = p.id),
			(SELECT COUNT(*) FROM pin_saves s WHERE s.pin_id = p.id),
			EXISTS(SELECT 1 FROM pin_likes l WHERE l.pin_id = p.id AND l.user_id = NULLIF($4, '')::uuid),
			EXISTS(SELECT 1 FROM pin_saves s WHERE s.pin_id = p.id AND s.user_id = NULLIF($4, '')::uuid)
		FROM pins p
		JOIN users u ON u.id = p.user_id
		WHERE ($1 = '' OR p.title ILIKE '%' || $1 || '%' OR p.description ILIKE '%' || $1 || '%')
			AND ($2 = '' OR p.category = $2)
			AND ($3 = '' OR p.user_id = NULLIF($3, '')::uuid)
		ORDER BY p.created_at DESC, p.id
		LIMIT $5 OFFSET $6
	`
	rows, err := r.db.Query(ctx, query,
		f.Search, f.Category, f.OwnerID, f.ViewerID, f.Limit, f.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pins: %w", err)
	}
	defer rows.Close()

	return scanPinDetails(rows)
}

// ListSavedBy retrieves the pins a user has saved, newest save first.
func (r *PinRepository) ListSavedBy(ctx context.Context, userID string, limit, offset int) ([]*models.PinDetail, error) {
	query := `
		SELECT p.id, p.title, p.description, p.image_url, p.link, p.category, p.user_id, p.created_at, p.updated_at,
			u.id, u.username, u.first_name, u.last_name, u.avatar_url,
			(SELECT COUNT(*) FROM pin_likes l WHERE l.pin_id = p.id),
			(SELECT COUNT(*) FROM pin_saves s WHERE s.pin_id = p.id),
			EXISTS(SELECT 1 FROM pin_likes l WHERE l.pin_id = p.id AND l.user_id = ps.user_id),
			TRUE
		FROM pin_saves ps
		JOIN pins p ON p.id = ps.pin_id
		JOIN users u ON u.id = p.user_id
		WHERE ps.user_id = $1
		ORDER BY ps.created_at DESC, ps.id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved pins: %w", err)
	}
	defer rows.Close()

	return scanPinDetails(rows)
}

// Delete deletes a pin by ID
func (r *PinRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM pins WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete pin: %w", err)
	}
	if result.RowsAffected() == 0 {
		return models.NewNotFoundError("pin")
	}
	return nil
}

func scanPinDetails(rows pgx.Rows) ([]*models.PinDetail, error) {
	var pins []*models.PinDetail
	for rows.Next() {
		var d models.PinDetail
		err := rows.Scan(
			&d.ID, &d.Title, &d.Description, &d.ImageURL, &d.Link, &d.Category,
			&d.UserID, &d.CreatedAt, &d.UpdatedAt,
			&d.Owner.ID, &d.Owner.Username, &d.Owner.FirstName, &d.Owner.LastName, &d.Owner.AvatarURL,
			&d.LikesCount, &d.SavesCount, &d.Liked, &d.Saved,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pin: %w", err)
		}
		pins = append(pins, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pins: %w", err)
	}

	return pins, nil
}
