package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"pinshare-backend/internal/models"
	"pinshare-backend/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPinService(store *testutil.Store) (*PinService, *testutil.Uploader) {
	uploader := testutil.NewUploader("https://cdn.test")
	return NewPinService(store.Pins(), store.Relations(), uploader), uploader
}

func seedUser(t *testing.T, store *testutil.Store, username string) *models.User {
	t.Helper()
	user := &models.User{
		ID:        uuid.New().String(),
		Email:     username + "@example.com",
		Username:  username,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, store.Users().Create(context.Background(), user))
	return user
}

func seedPin(t *testing.T, store *testutil.Store, ownerID, title string, createdAt time.Time) *models.Pin {
	t.Helper()
	pin := &models.Pin{
		ID:        uuid.New().String(),
		Title:     title,
		ImageURL:  "https://cdn.test/pins/x.jpg",
		UserID:    ownerID,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, store.Pins().Create(context.Background(), pin))
	return pin
}

func TestPinService_Create(t *testing.T) {
	store := testutil.NewStore()
	svc, uploader := newTestPinService(store)
	owner := seedUser(t, store, "alice")
	ctx := context.Background()

	pin, err := svc.Create(ctx, owner.ID, CreatePinInput{
		Title:       "Sunset",
		Description: "over the bay",
		Category:    "travel",
		ContentType: "image/png",
		Image:       strings.NewReader("not-really-a-png"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Sunset", pin.Title)
	assert.Equal(t, owner.ID, pin.UserID)
	assert.Equal(t, owner.Username, pin.Owner.Username)
	assert.Zero(t, pin.LikesCount)
	assert.Zero(t, pin.SavesCount)

	require.Len(t, uploader.Keys, 1)
	assert.True(t, strings.HasPrefix(uploader.Keys[0], "pins/"))
	assert.True(t, strings.HasSuffix(uploader.Keys[0], ".png"))
	assert.Equal(t, "https://cdn.test/"+uploader.Keys[0], pin.ImageURL)
}

func TestPinService_CreateValidation(t *testing.T) {
	store := testutil.NewStore()
	svc, uploader := newTestPinService(store)
	owner := seedUser(t, store, "alice")
	ctx := context.Background()

	_, err := svc.Create(ctx, owner.ID, CreatePinInput{
		Title: "  ",
		Image: strings.NewReader("img"),
	})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)

	_, err = svc.Create(ctx, owner.ID, CreatePinInput{Title: "No image"})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)

	// Nothing may reach the blob store on validation failure.
	assert.Empty(t, uploader.Keys)
}

func TestPinService_CreateUploadFailure(t *testing.T) {
	store := testutil.NewStore()
	svc, uploader := newTestPinService(store)
	owner := seedUser(t, store, "alice")
	uploader.Fail = true

	_, err := svc.Create(context.Background(), owner.ID, CreatePinInput{
		Title: "Sunset",
		Image: strings.NewReader("img"),
	})
	require.Error(t, err)

	// The pin row must not exist when the upload failed.
	feed, ferr := svc.Feed(context.Background(), 1, 20, "", "", "")
	require.NoError(t, ferr)
	assert.Empty(t, feed.Pins)
}

func TestPinService_FeedPagination(t *testing.T) {
	store := testutil.NewStore()
	svc, _ := newTestPinService(store)
	owner := seedUser(t, store, "alice")
	ctx := context.Background()

	base := time.Now()
	for i := 0; i < 25; i++ {
		seedPin(t, store, owner.ID, fmt.Sprintf("pin %02d", i), base.Add(time.Duration(i)*time.Second))
	}

	page1, err := svc.Feed(ctx, 1, 20, "", "", "")
	require.NoError(t, err)
	assert.Len(t, page1.Pins, 20)
	assert.True(t, page1.HasMore)
	// Newest first.
	assert.Equal(t, "pin 24", page1.Pins[0].Title)

	page2, err := svc.Feed(ctx, 2, 20, "", "", "")
	require.NoError(t, err)
	assert.Len(t, page2.Pins, 5)
	assert.False(t, page2.HasMore)
	assert.Equal(t, "pin 00", page2.Pins[4].Title)

	// Exactly limit rows on the last page keeps has_more true; the
	// trailing fetch comes back empty. Preserved behavior.
	pageExact, err := svc.Feed(ctx, 1, 25, "", "", "")
	require.NoError(t, err)
	assert.Len(t, pageExact.Pins, 25)
	assert.True(t, pageExact.HasMore)

	empty, err := svc.Feed(ctx, 2, 25, "", "", "")
	require.NoError(t, err)
	assert.Empty(t, empty.Pins)
	assert.False(t, empty.HasMore)
}

func TestPinService_FeedNormalizesPaging(t *testing.T) {
	store := testutil.NewStore()
	svc, _ := newTestPinService(store)
	owner := seedUser(t, store, "alice")
	seedPin(t, store, owner.ID, "only", time.Now())

	feed, err := svc.Feed(context.Background(), 0, -5, "", "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, feed.Page)
	assert.Equal(t, defaultPageSize, feed.Limit)

	feed, err = svc.Feed(context.Background(), 1, 10_000, "", "", "")
	require.NoError(t, err)
	assert.Equal(t, maxPageSize, feed.Limit)
}

func TestPinService_FeedSearch(t *testing.T) {
	store := testutil.NewStore()
	svc, _ := newTestPinService(store)
	owner := seedUser(t, store, "alice")
	ctx := context.Background()

	seedPin(t, store, owner.ID, "Mountain Sunrise", time.Now())
	pin := seedPin(t, store, owner.ID, "City lights", time.Now())
	pin2 := &models.Pin{
		ID:          uuid.New().String(),
		Title:       "Plain",
		Description: "sunrise over the ridge",
		ImageURL:    "https://cdn.test/p.jpg",
		UserID:      owner.ID,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, store.Pins().Create(ctx, pin2))

	feed, err := svc.Feed(ctx, 1, 20, "SUNRISE", "", "")
	require.NoError(t, err)
	require.Len(t, feed.Pins, 2)
	for _, p := range feed.Pins {
		assert.NotEqual(t, pin.ID, p.ID)
	}
}

func TestPinService_ToggleLikePair(t *testing.T) {
	store := testutil.NewStore()
	svc, _ := newTestPinService(store)
	owner := seedUser(t, store, "alice")
	liker := seedUser(t, store, "bob")
	pin := seedPin(t, store, owner.ID, "Sunset", time.Now())
	ctx := context.Background()

	liked, ownerID, err := svc.ToggleLike(ctx, pin.ID, liker.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, owner.ID, ownerID)

	detail, err := svc.Get(ctx, pin.ID, liker.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.LikesCount)
	assert.True(t, detail.Liked)

	// Second toggle returns to the original state.
	liked, _, err = svc.ToggleLike(ctx, pin.ID, liker.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	detail, err = svc.Get(ctx, pin.ID, liker.ID)
	require.NoError(t, err)
	assert.Zero(t, detail.LikesCount)
	assert.False(t, detail.Liked)
}

func TestPinService_ToggleLikeUnknownPin(t *testing.T) {
	store := testutil.NewStore()
	svc, _ := newTestPinService(store)
	liker := seedUser(t, store, "bob")

	_, _, err := svc.ToggleLike(context.Background(), uuid.New().String(), liker.ID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestPinService_ToggleSaveAndList(t *testing.T) {
	store := testutil.NewStore()
	svc, _ := newTestPinService(store)
	owner := seedUser(t, store, "alice")
	saver := seedUser(t, store, "bob")
	first := seedPin(t, store, owner.ID, "First", time.Now().Add(-time.Minute))
	second := seedPin(t, store, owner.ID, "Second", time.Now())
	ctx := context.Background()

	saved, err := svc.ToggleSave(ctx, first.ID, saver.ID)
	require.NoError(t, err)
	assert.True(t, saved)
	saved, err = svc.ToggleSave(ctx, second.ID, saver.ID)
	require.NoError(t, err)
	assert.True(t, saved)

	page, err := svc.ListSaved(ctx, saver.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Pins, 2)
	for _, p := range page.Pins {
		assert.True(t, p.Saved)
	}

	saved, err = svc.ToggleSave(ctx, first.ID, saver.ID)
	require.NoError(t, err)
	assert.False(t, saved)

	page, err = svc.ListSaved(ctx, saver.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Pins, 1)
	assert.Equal(t, second.ID, page.Pins[0].ID)
}

func TestPinService_DeleteOwnerOnly(t *testing.T) {
	store := testutil.NewStore()
	svc, _ := newTestPinService(store)
	owner := seedUser(t, store, "alice")
	other := seedUser(t, store, "bob")
	pin := seedPin(t, store, owner.ID, "Sunset", time.Now())
	ctx := context.Background()

	err := svc.Delete(ctx, pin.ID, other.ID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeForbidden, appErr.Code)

	require.NoError(t, svc.Delete(ctx, pin.ID, owner.ID))

	err = svc.Delete(ctx, pin.ID, owner.ID)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}
