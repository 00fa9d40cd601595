package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polkabooks/polka-server/internal/domain"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCreateAndGetUser(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	user := &domain.User{
		Username:     "anna",
		Email:        "anna@example.com",
		PasswordHash: "hashed",
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, s.CreateUser(ctx, user))

	got, err := s.GetUser(ctx, "anna")
	require.NoError(t, err)
	assert.Equal(t, "anna", got.Username)
	assert.Equal(t, "anna@example.com", got.Email)
	assert.Equal(t, "hashed", got.PasswordHash)
}

func TestCreateUser_Duplicates(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &domain.User{Username: "anna", Email: "anna@example.com"}))

	err := s.CreateUser(ctx, &domain.User{Username: "anna", Email: "other@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateUser)

	// Email comparison is case-insensitive.
	err = s.CreateUser(ctx, &domain.User{Username: "boris", Email: "Anna@Example.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestGetUserByEmail(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &domain.User{Username: "anna", Email: "Anna@Example.com"}))

	got, err := s.GetUserByEmail(ctx, "anna@example.COM")
	require.NoError(t, err)
	assert.Equal(t, "anna", got.Username)

	_, err = s.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateUser_ReindexesEmail(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &domain.User{Username: "anna", Email: "anna@example.com"}))

	require.NoError(t, s.UpdateUser(ctx, &domain.User{Username: "anna", Email: "new@example.com"}))

	got, err := s.GetUserByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "anna", got.Username)

	_, err = s.GetUserByEmail(ctx, "anna@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserExists(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	ok, err := s.UserExists(ctx, "anna")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.CreateUser(ctx, &domain.User{Username: "anna", Email: "anna@example.com"}))

	ok, err = s.UserExists(ctx, "anna")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAddAndListReviews(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	older := domain.Review{
		ID: "rev_1", BookID: 9, Username: "anna", Rating: 5,
		Text: "Любимая книга детства", CreatedAt: time.Now().Add(-time.Hour),
	}
	newer := domain.Review{
		ID: "rev_2", BookID: 9, Username: "boris", Rating: 4,
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.AddReview(ctx, &older))
	require.NoError(t, s.AddReview(ctx, &newer))

	got, err := s.ListReviews(ctx, 9)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Newest first.
	assert.Equal(t, "rev_2", got[0].ID)
	assert.Equal(t, "rev_1", got[1].ID)

	// Other books are untouched.
	got, err = s.ListReviews(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAddReview_OnePerUserPerBook(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddReview(ctx, &domain.Review{ID: "rev_1", BookID: 9, Username: "anna", Rating: 5}))

	err := s.AddReview(ctx, &domain.Review{ID: "rev_2", BookID: 9, Username: "anna", Rating: 3})
	assert.ErrorIs(t, err, ErrDuplicateReview)

	// Same user, different book is fine.
	require.NoError(t, s.AddReview(ctx, &domain.Review{ID: "rev_3", BookID: 10, Username: "anna", Rating: 4}))
}

func TestReviewsByUser(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddReview(ctx, &domain.Review{ID: "rev_1", BookID: 9, Username: "anna", Rating: 5}))
	require.NoError(t, s.AddReview(ctx, &domain.Review{ID: "rev_2", BookID: 3, Username: "anna", Rating: 4}))
	require.NoError(t, s.AddReview(ctx, &domain.Review{ID: "rev_3", BookID: 9, Username: "boris", Rating: 2}))

	got, err := s.ReviewsByUser(ctx, "anna")
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, r := range got {
		assert.Equal(t, "anna", r.Username)
	}

	got, err = s.ReviewsByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLikeReview(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddReview(ctx, &domain.Review{ID: "rev_1", BookID: 9, Username: "anna", Rating: 5}))

	liked, err := s.LikeReview(ctx, 9, "rev_1")
	require.NoError(t, err)
	assert.Equal(t, 1, liked.Likes)

	liked, err = s.LikeReview(ctx, 9, "rev_1")
	require.NoError(t, err)
	assert.Equal(t, 2, liked.Likes)

	_, err = s.LikeReview(ctx, 9, "missing")
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestDeleteReview(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddReview(ctx, &domain.Review{ID: "rev_1", BookID: 9, Username: "anna", Rating: 5}))
	require.NoError(t, s.DeleteReview(ctx, 9, "rev_1"))

	_, err := s.GetReview(ctx, 9, "rev_1")
	assert.ErrorIs(t, err, ErrReviewNotFound)

	// Index entry is gone too.
	got, err := s.ReviewsByUser(ctx, "anna")
	require.NoError(t, err)
	assert.Empty(t, got)

	// Deleting again fails cleanly.
	assert.ErrorIs(t, s.DeleteReview(ctx, 9, "rev_1"), ErrReviewNotFound)
}

func TestSeedReviews(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	has, err := s.HasReviews(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	seed := []domain.Review{
		{ID: "rev_1", BookID: 1, Username: "Читатель_2024", Rating: 5},
		{ID: "rev_2", BookID: 1, Username: "Книголюб", Rating: 4},
		{ID: "rev_3", BookID: 9, Username: "Книголюб", Rating: 5},
	}
	require.NoError(t, s.SeedReviews(ctx, seed))

	has, err = s.HasReviews(ctx)
	require.NoError(t, err)
	assert.True(t, has)

	got, err := s.ListReviews(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSeedDemoReviews(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SeedDemoReviews(ctx, []int64{1, 2}))

	got, err := s.ListReviews(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Читатель_1", got[1].Username)
	assert.Equal(t, 12, got[1].Likes)

	// Second run is a no-op once reviews exist.
	require.NoError(t, s.SeedDemoReviews(ctx, []int64{3}))
	got, err = s.ListReviews(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetLists_DefaultsForNewUser(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	lists, err := s.GetLists(ctx, "anna")
	require.NoError(t, err)
	assert.Equal(t, "anna", lists.Username)
	require.Len(t, lists.Lists, len(domain.ListNames))
	for _, name := range domain.ListNames {
		require.NotNil(t, lists.Lists[name])
		assert.Empty(t, lists.Lists[name].BookIDs)
	}
}

func TestAddToList(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	added, err := s.AddToList(ctx, "anna", domain.ListReading, 9)
	require.NoError(t, err)
	assert.True(t, added)

	// Adding twice is a no-op.
	added, err = s.AddToList(ctx, "anna", domain.ListReading, 9)
	require.NoError(t, err)
	assert.False(t, added)

	lists, err := s.GetLists(ctx, "anna")
	require.NoError(t, err)
	assert.Equal(t, []int64{9}, lists.Lists[domain.ListReading].BookIDs)

	_, err = s.AddToList(ctx, "anna", domain.ListName("wishlist"), 9)
	assert.ErrorIs(t, err, ErrListNotFound)
}

func TestRemoveFromList(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.AddToList(ctx, "anna", domain.ListPlanned, 3)
	require.NoError(t, err)

	removed, err := s.RemoveFromList(ctx, "anna", domain.ListPlanned, 3)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.RemoveFromList(ctx, "anna", domain.ListPlanned, 3)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestMoveBetweenLists(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.AddToList(ctx, "anna", domain.ListReading, 9)
	require.NoError(t, err)

	require.NoError(t, s.MoveBetweenLists(ctx, "anna", domain.ListReading, domain.ListRead, 9))

	lists, err := s.GetLists(ctx, "anna")
	require.NoError(t, err)
	assert.Empty(t, lists.Lists[domain.ListReading].BookIDs)
	assert.Equal(t, []int64{9}, lists.Lists[domain.ListRead].BookIDs)

	// Moving a book that is not on the source list still lands it on the
	// destination.
	require.NoError(t, s.MoveBetweenLists(ctx, "anna", domain.ListPlanned, domain.ListFavorites, 4))
	lists, err = s.GetLists(ctx, "anna")
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, lists.Lists[domain.ListFavorites].BookIDs)
}

func TestSessionLifecycle(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	session := &domain.Session{
		RefreshTokenHash: "abc123",
		Username:         "anna",
		CreatedAt:        time.Now().UTC(),
		ExpiresAt:        time.Now().Add(time.Hour),
	}
	require.NoError(t, s.CreateSession(ctx, session))

	got, err := s.GetSessionByToken(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "anna", got.Username)

	require.NoError(t, s.DeleteSession(ctx, "abc123"))

	_, err = s.GetSessionByToken(ctx, "abc123")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Deleting twice is a no-op.
	require.NoError(t, s.DeleteSession(ctx, "abc123"))
}

func TestGetSessionByToken_Expired(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateSession(ctx, &domain.Session{
		RefreshTokenHash: "stale",
		Username:         "anna",
		ExpiresAt:        time.Now().Add(-time.Minute),
	}))

	got, err := s.GetSessionByToken(ctx, "stale")
	assert.ErrorIs(t, err, ErrSessionExpired)
	require.NotNil(t, got)
	assert.Equal(t, "anna", got.Username)
}

func TestDeleteUserSessions(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, hash := range []string{"h1", "h2", "h3"} {
		require.NoError(t, s.CreateSession(ctx, &domain.Session{
			RefreshTokenHash: hash,
			Username:         "anna",
			ExpiresAt:        time.Now().Add(time.Hour),
		}))
	}
	require.NoError(t, s.CreateSession(ctx, &domain.Session{
		RefreshTokenHash: "other",
		Username:         "boris",
		ExpiresAt:        time.Now().Add(time.Hour),
	}))

	deleted, err := s.DeleteUserSessions(ctx, "anna")
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)

	_, err = s.GetSessionByToken(ctx, "h1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Other users are untouched.
	_, err = s.GetSessionByToken(ctx, "other")
	assert.NoError(t, err)
}
