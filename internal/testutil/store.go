// Package testutil provides in-memory implementations of the service
// store interfaces for tests that run without Postgres or S3.
package testutil

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"pinshare-backend/internal/models"
	"pinshare-backend/internal/repository"
)

type relation struct {
	ObjectID  string
	ActorID   string
	CreatedAt time.Time
}

// Store holds the shared in-memory state. Its Users, Pins and Relations
// views implement services.UserStore, services.PinStore and
// services.RelationStore with the same observable semantics as the SQL
// repositories.
type Store struct {
	mu      sync.Mutex
	users   map[string]*models.User
	pins    []*models.Pin
	likes   []relation
	saves   []relation
	follows []relation
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{users: make(map[string]*models.User)}
}

// Users returns the user-store view.
func (s *Store) Users() *Users { return &Users{s} }

// Pins returns the pin-store view.
func (s *Store) Pins() *Pins { return &Pins{s} }

// Relations returns the relation-store view.
func (s *Store) Relations() *Relations { return &Relations{s} }

// Users implements services.UserStore.
type Users struct{ s *Store }

func (v *Users) Create(_ context.Context, user *models.User) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, u := range v.s.users {
		if u.Email == user.Email {
			return models.NewConflictError("email already in use")
		}
		if u.Username == user.Username {
			return models.NewConflictError("username already in use")
		}
	}
	clone := *user
	v.s.users[user.ID] = &clone
	return nil
}

func (v *Users) GetByID(_ context.Context, id string) (*models.User, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	user, ok := v.s.users[id]
	if !ok {
		return nil, models.NewNotFoundError("user")
	}
	clone := *user
	return &clone, nil
}

func (v *Users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, u := range v.s.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, models.NewNotFoundError("user")
}

func (v *Users) GetProfile(_ context.Context, id string) (*models.Profile, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	user, ok := v.s.users[id]
	if !ok {
		return nil, models.NewNotFoundError("user")
	}

	profile := &models.Profile{
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		AvatarURL: user.AvatarURL,
		Bio:       user.Bio,
		CreatedAt: user.CreatedAt,
	}
	for _, p := range v.s.pins {
		if p.UserID == id {
			profile.PinsCount++
		}
	}
	for _, f := range v.s.follows {
		if f.ObjectID == id {
			profile.FollowersCount++
		}
		if f.ActorID == id {
			profile.FollowingCount++
		}
	}
	return profile, nil
}

// Pins implements services.PinStore.
type Pins struct{ s *Store }

func (v *Pins) Create(_ context.Context, pin *models.Pin) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	clone := *pin
	v.s.pins = append(v.s.pins, &clone)
	return nil
}

func (v *Pins) GetByID(_ context.Context, id string) (*models.Pin, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, p := range v.s.pins {
		if p.ID == id {
			clone := *p
			return &clone, nil
		}
	}
	return nil, models.NewNotFoundError("pin")
}

func (v *Pins) GetDetail(_ context.Context, id, viewerID string) (*models.PinDetail, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, p := range v.s.pins {
		if p.ID == id {
			return v.s.enrich(p, viewerID), nil
		}
	}
	return nil, models.NewNotFoundError("pin")
}

func (v *Pins) List(_ context.Context, f repository.PinFilter) ([]*models.PinDetail, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var matched []*models.Pin
	for _, p := range v.s.pins {
		if f.Search != "" {
			needle := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(p.Title), needle) &&
				!strings.Contains(strings.ToLower(p.Description), needle) {
				continue
			}
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.OwnerID != "" && p.UserID != f.OwnerID {
			continue
		}
		matched = append(matched, p)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	matched = pageSlice(matched, f.Limit, f.Offset)

	details := make([]*models.PinDetail, 0, len(matched))
	for _, p := range matched {
		details = append(details, v.s.enrich(p, f.ViewerID))
	}
	return details, nil
}

func (v *Pins) ListSavedBy(_ context.Context, userID string, limit, offset int) ([]*models.PinDetail, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var saved []relation
	for _, r := range v.s.saves {
		if r.ActorID == userID {
			saved = append(saved, r)
		}
	}
	sort.SliceStable(saved, func(i, j int) bool {
		return saved[i].CreatedAt.After(saved[j].CreatedAt)
	})
	saved = pageSlice(saved, limit, offset)

	var details []*models.PinDetail
	for _, r := range saved {
		for _, p := range v.s.pins {
			if p.ID == r.ObjectID {
				details = append(details, v.s.enrich(p, userID))
			}
		}
	}
	return details, nil
}

func (v *Pins) Delete(_ context.Context, id string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for i, p := range v.s.pins {
		if p.ID == id {
			v.s.pins = append(v.s.pins[:i], v.s.pins[i+1:]...)
			v.s.likes = dropRelations(v.s.likes, id)
			v.s.saves = dropRelations(v.s.saves, id)
			return nil
		}
	}
	return models.NewNotFoundError("pin")
}

// Relations implements services.RelationStore.
type Relations struct{ s *Store }

func (v *Relations) ToggleLike(_ context.Context, pinID, userID string) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	v.s.likes = toggleRelation(v.s.likes, pinID, userID)
	return hasRelation(v.s.likes, pinID, userID), nil
}

func (v *Relations) ToggleSave(_ context.Context, pinID, userID string) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	v.s.saves = toggleRelation(v.s.saves, pinID, userID)
	return hasRelation(v.s.saves, pinID, userID), nil
}

func (v *Relations) ToggleFollow(_ context.Context, followingID, followerID string) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	v.s.follows = toggleRelation(v.s.follows, followingID, followerID)
	return hasRelation(v.s.follows, followingID, followerID), nil
}

func (s *Store) enrich(p *models.Pin, viewerID string) *models.PinDetail {
	d := &models.PinDetail{Pin: *p}
	if owner, ok := s.users[p.UserID]; ok {
		d.Owner = models.Owner{
			ID:        owner.ID,
			Username:  owner.Username,
			FirstName: owner.FirstName,
			LastName:  owner.LastName,
			AvatarURL: owner.AvatarURL,
		}
	}
	for _, r := range s.likes {
		if r.ObjectID == p.ID {
			d.LikesCount++
			if viewerID != "" && r.ActorID == viewerID {
				d.Liked = true
			}
		}
	}
	for _, r := range s.saves {
		if r.ObjectID == p.ID {
			d.SavesCount++
			if viewerID != "" && r.ActorID == viewerID {
				d.Saved = true
			}
		}
	}
	return d
}

func toggleRelation(rels []relation, objectID, actorID string) []relation {
	for i, r := range rels {
		if r.ObjectID == objectID && r.ActorID == actorID {
			return append(rels[:i], rels[i+1:]...)
		}
	}
	return append(rels, relation{ObjectID: objectID, ActorID: actorID, CreatedAt: time.Now()})
}

func hasRelation(rels []relation, objectID, actorID string) bool {
	for _, r := range rels {
		if r.ObjectID == objectID && r.ActorID == actorID {
			return true
		}
	}
	return false
}

func dropRelations(rels []relation, objectID string) []relation {
	kept := rels[:0]
	for _, r := range rels {
		if r.ObjectID != objectID {
			kept = append(kept, r)
		}
	}
	return kept
}

func pageSlice[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// Uploader records uploads and returns deterministic URLs. It implements
// services.Uploader.
type Uploader struct {
	mu      sync.Mutex
	Keys    []string
	Fail    bool
	baseURL string
}

// NewUploader creates a fake uploader serving from the given base URL.
func NewUploader(baseURL string) *Uploader {
	return &Uploader{baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (u *Uploader) Upload(_ context.Context, key, _ string, body io.Reader) (string, error) {
	if u.Fail {
		return "", fmt.Errorf("upload failed")
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	u.mu.Lock()
	u.Keys = append(u.Keys, key)
	u.mu.Unlock()
	return u.baseURL + "/" + key, nil
}
