package domain

import "slices"

// ListName identifies one of the fixed per-user reading lists.
type ListName string

// The closed set of reading list names. Users cannot create additional lists.
const (
	ListReading   ListName = "reading"
	ListRead      ListName = "read"
	ListPlanned   ListName = "planned"
	ListDropped   ListName = "dropped"
	ListFavorites ListName = "favorites"
)

// ListNames is the canonical ordering of the reading lists.
var ListNames = []ListName{ListReading, ListRead, ListPlanned, ListDropped, ListFavorites}

// Valid checks if the list name is one of the known lists.
func (n ListName) Valid() bool {
	return slices.Contains(ListNames, n)
}

// ReadingList is one named list of books belonging to a user.
type ReadingList struct {
	Name        string  `json:"name"`        // Display name, e.g. "Читаю"
	BookIDs     []int64 `json:"book_ids"`    // Ordered, duplicates forbidden
	Description string  `json:"description"` // Optional description
}

// AddBook appends a book ID unless it is already present.
// Returns false if the book was already in the list.
func (l *ReadingList) AddBook(bookID int64) bool {
	if slices.Contains(l.BookIDs, bookID) {
		return false
	}
	l.BookIDs = append(l.BookIDs, bookID)
	return true
}

// RemoveBook removes a book ID. Returns false if it was not present.
func (l *ReadingList) RemoveBook(bookID int64) bool {
	for i, id := range l.BookIDs {
		if id == bookID {
			l.BookIDs = append(l.BookIDs[:i], l.BookIDs[i+1:]...)
			return true
		}
	}
	return false
}

// ContainsBook checks if a book ID is in this list.
func (l *ReadingList) ContainsBook(bookID int64) bool {
	return slices.Contains(l.BookIDs, bookID)
}

// UserLists holds all reading lists of one user, keyed by ListName.
type UserLists struct {
	Username string                    `json:"username"`
	Lists    map[ListName]*ReadingList `json:"lists"`
}

// DefaultUserLists builds the five empty lists a user starts with.
func DefaultUserLists(username string) *UserLists {
	return &UserLists{
		Username: username,
		Lists: map[ListName]*ReadingList{
			ListReading:   {Name: "Читаю", BookIDs: []int64{}, Description: "Книги, которые читаю сейчас"},
			ListRead:      {Name: "Прочитано", BookIDs: []int64{}, Description: "Прочитанные книги"},
			ListPlanned:   {Name: "Планирую", BookIDs: []int64{}, Description: "Книги, которые планирую прочитать"},
			ListDropped:   {Name: "Брошено", BookIDs: []int64{}, Description: "Книги, которые бросил читать"},
			ListFavorites: {Name: "Любимые", BookIDs: []int64{}, Description: "Мои любимые книги"},
		},
	}
}

// AllBookIDs returns every book ID across all lists, deduplicated,
// in canonical list order. Used by the recommendation layer to exclude
// books the user already shelved.
func (u *UserLists) AllBookIDs() []int64 {
	var ids []int64
	seen := make(map[int64]bool)
	for _, name := range ListNames {
		list, ok := u.Lists[name]
		if !ok {
			continue
		}
		for _, id := range list.BookIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}
