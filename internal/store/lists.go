package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/polkabooks/polka-server/internal/domain"
)

// listsPrefix keys the whole reading-list document of one user. Lists are
// small and always read together, so they live in a single record instead
// of per-list keys.
const listsPrefix = "lists:" // lists:{username}

func listsKey(username string) []byte {
	return []byte(listsPrefix + username)
}

// GetLists returns a user's reading lists. A user who never touched their
// lists gets the default empty set; it is not persisted until first write.
func (s *Store) GetLists(_ context.Context, username string) (*domain.UserLists, error) {
	var lists *domain.UserLists
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		lists, err = loadListsInTxn(txn, username)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get lists: %w", err)
	}
	return lists, nil
}

// SaveLists persists a user's full reading-list document.
func (s *Store) SaveLists(_ context.Context, lists *domain.UserLists) error {
	if err := s.set(listsKey(lists.Username), lists); err != nil {
		return fmt.Errorf("save lists: %w", err)
	}
	return nil
}

// AddToList puts a book on one of the user's lists. Returns false when the
// book was already there.
func (s *Store) AddToList(_ context.Context, username string, name domain.ListName, bookID int64) (bool, error) {
	if !name.Valid() {
		return false, ErrListNotFound
	}

	added := false
	err := s.db.Update(func(txn *badger.Txn) error {
		lists, err := loadListsInTxn(txn, username)
		if err != nil {
			return err
		}
		added = lists.Lists[name].AddBook(bookID)
		if !added {
			return nil
		}
		return setInTxn(txn, listsKey(username), lists)
	})
	if err != nil {
		return false, fmt.Errorf("add to list: %w", err)
	}

	if added && s.logger != nil {
		s.logger.Info("book added to list",
			"username", username, "list", name, "book_id", bookID)
	}
	return added, nil
}

// RemoveFromList takes a book off one of the user's lists. Returns false
// when the book was not there.
func (s *Store) RemoveFromList(_ context.Context, username string, name domain.ListName, bookID int64) (bool, error) {
	if !name.Valid() {
		return false, ErrListNotFound
	}

	removed := false
	err := s.db.Update(func(txn *badger.Txn) error {
		lists, err := loadListsInTxn(txn, username)
		if err != nil {
			return err
		}
		removed = lists.Lists[name].RemoveBook(bookID)
		if !removed {
			return nil
		}
		return setInTxn(txn, listsKey(username), lists)
	})
	if err != nil {
		return false, fmt.Errorf("remove from list: %w", err)
	}
	return removed, nil
}

// MoveBetweenLists moves a book from one list to another in a single
// transaction. Typical flow: planned -> reading -> read. The move happens
// even when the book was missing from the source list.
func (s *Store) MoveBetweenLists(_ context.Context, username string, from, to domain.ListName, bookID int64) error {
	if !from.Valid() || !to.Valid() {
		return ErrListNotFound
	}
	if from == to {
		return nil
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		lists, err := loadListsInTxn(txn, username)
		if err != nil {
			return err
		}
		lists.Lists[from].RemoveBook(bookID)
		lists.Lists[to].AddBook(bookID)
		return setInTxn(txn, listsKey(username), lists)
	})
	if err != nil {
		return fmt.Errorf("move between lists: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("book moved between lists",
			"username", username, "from", from, "to", to, "book_id", bookID)
	}
	return nil
}

// loadListsInTxn reads the lists document inside an open transaction,
// falling back to the defaults for first-time users. Stored documents from
// before a list was introduced get the missing lists backfilled.
func loadListsInTxn(txn *badger.Txn, username string) (*domain.UserLists, error) {
	var lists domain.UserLists
	err := getInTxn(txn, listsKey(username), &lists)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.DefaultUserLists(username), nil
	}
	if err != nil {
		return nil, err
	}

	if lists.Lists == nil {
		lists.Lists = make(map[domain.ListName]*domain.ReadingList)
	}
	defaults := domain.DefaultUserLists(username)
	for name, list := range defaults.Lists {
		if lists.Lists[name] == nil {
			lists.Lists[name] = list
		}
	}
	return &lists, nil
}
