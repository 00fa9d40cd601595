package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadingList_AddBook_NoDuplicates(t *testing.T) {
	list := &ReadingList{Name: "Читаю"}

	assert.True(t, list.AddBook(1))
	assert.True(t, list.AddBook(2))
	assert.False(t, list.AddBook(1), "duplicate add should be a no-op")

	assert.Equal(t, []int64{1, 2}, list.BookIDs)
}

func TestReadingList_RemoveBook(t *testing.T) {
	list := &ReadingList{BookIDs: []int64{1, 2, 3}}

	assert.True(t, list.RemoveBook(2))
	assert.Equal(t, []int64{1, 3}, list.BookIDs)

	assert.False(t, list.RemoveBook(42), "removing an absent book returns false")
}

func TestListName_Valid(t *testing.T) {
	for _, name := range ListNames {
		assert.True(t, name.Valid())
	}
	assert.False(t, ListName("wishlist").Valid())
}

func TestDefaultUserLists_HasAllFiveLists(t *testing.T) {
	lists := DefaultUserLists("reader")

	require.Len(t, lists.Lists, 5)
	for _, name := range ListNames {
		list, ok := lists.Lists[name]
		require.True(t, ok, "missing list %s", name)
		assert.NotEmpty(t, list.Name)
		assert.Empty(t, list.BookIDs)
	}
}

func TestUserLists_AllBookIDs_Deduplicates(t *testing.T) {
	lists := DefaultUserLists("reader")
	lists.Lists[ListReading].AddBook(1)
	lists.Lists[ListReading].AddBook(2)
	lists.Lists[ListFavorites].AddBook(2)
	lists.Lists[ListFavorites].AddBook(3)

	assert.Equal(t, []int64{1, 2, 3}, lists.AllBookIDs())
}

func TestComputeReviewStats(t *testing.T) {
	reviews := []Review{
		{Rating: 5}, {Rating: 4}, {Rating: 5},
	}

	stats := ComputeReviewStats(reviews)
	assert.Equal(t, 3, stats.TotalReviews)
	assert.InDelta(t, 4.7, stats.AverageRating, 0.001)
	assert.Equal(t, 2, stats.Distribution[5])
	assert.Equal(t, 1, stats.Distribution[4])
	assert.Equal(t, 0, stats.Distribution[3])
}

func TestComputeReviewStats_Empty(t *testing.T) {
	stats := ComputeReviewStats(nil)
	assert.Equal(t, 0, stats.TotalReviews)
	assert.Zero(t, stats.AverageRating)
}
