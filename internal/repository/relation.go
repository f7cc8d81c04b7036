package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RelationRepository handles the like, save and follow toggle tables.
type RelationRepository struct {
	db *pgxpool.Pool
}

// NewRelationRepository creates a new relation repository
func NewRelationRepository(db *pgxpool.Pool) *RelationRepository {
	return &RelationRepository{db: db}
}

// toggle deletes the relationship row if present, otherwise inserts it.
// Returns the resulting active state. A concurrent insert racing ours is
// treated as already active rather than an error; the unique constraint
// on the pair is the backstop.
func (r *RelationRepository) toggle(ctx context.Context, deleteQuery, insertQuery, objectID, actorID string) (bool, error) {
	result, err := r.db.Exec(ctx, deleteQuery, objectID, actorID)
	if err != nil {
		return false, fmt.Errorf("failed to delete relation: %w", err)
	}
	if result.RowsAffected() > 0 {
		return false, nil
	}

	_, err = r.db.Exec(ctx, insertQuery, uuid.New().String(), objectID, actorID, time.Now())
	if err != nil {
		if isUniqueViolation(err) {
			return true, nil
		}
		return false, fmt.Errorf("failed to insert relation: %w", err)
	}
	// ON CONFLICT DO NOTHING: zero rows affected still means the
	// relationship exists.
	return true, nil
}

// ToggleLike flips the like relationship between a user and a pin.
func (r *RelationRepository) ToggleLike(ctx context.Context, pinID, userID string) (bool, error) {
	return r.toggle(ctx,
		`DELETE FROM pin_likes WHERE pin_id = $1 AND user_id = $2`,
		`INSERT INTO pin_likes (id, pin_id, user_id, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (pin_id, user_id) DO NOTHING`,
		pinID, userID,
	)
}

// ToggleSave flips the save relationship between a user and a pin.
func (r *RelationRepository) ToggleSave(ctx context.Context, pinID, userID string) (bool, error) {
	return r.toggle(ctx,
		`DELETE FROM pin_saves WHERE pin_id = $1 AND user_id = $2`,
		`INSERT INTO pin_saves (id, pin_id, user_id, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (pin_id, user_id) DO NOTHING`,
		pinID, userID,
	)
}

// ToggleFollow flips the follow relationship between two users.
func (r *RelationRepository) ToggleFollow(ctx context.Context, followingID, followerID string) (bool, error) {
	return r.toggle(ctx,
		`DELETE FROM user_follows WHERE following_id = $1 AND follower_id = $2`,
		`INSERT INTO user_follows (id, following_id, follower_id, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (follower_id, following_id) DO NOTHING`,
		followingID, followerID,
	)
}
