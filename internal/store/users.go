package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/polkabooks/polka-server/internal/domain"
)

// Key prefixes for user storage.
const (
	userPrefix      = "user:"           // user:{username}
	userEmailPrefix = "idx:users:email:" // idx:users:email:{email} -> username
)

// normalizeEmail lowercases and trims an email for case-insensitive lookup.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser creates a new user account. The username is the primary key;
// the email index enforces one account per address.
func (s *Store) CreateUser(_ context.Context, user *domain.User) error {
	key := []byte(userPrefix + user.Username)
	emailKey := []byte(userEmailPrefix + normalizeEmail(user.Email))

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return ErrDuplicateUser
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if _, err := txn.Get(emailKey); err == nil {
			return ErrDuplicateEmail
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := setInTxn(txn, key, user); err != nil {
			return err
		}
		return txn.Set(emailKey, []byte(user.Username))
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateUser) || errors.Is(err, ErrDuplicateEmail) {
			return err
		}
		return fmt.Errorf("create user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("user created", "username", user.Username)
	}
	return nil
}

// GetUser retrieves a user by username.
func (s *Store) GetUser(_ context.Context, username string) (*domain.User, error) {
	key := []byte(userPrefix + username)

	var user domain.User
	if err := s.get(key, &user); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// GetUserByEmail resolves an email to a user via the email index.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	emailKey := []byte(userEmailPrefix + normalizeEmail(email))

	var username string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(emailKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			username = string(val)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup email index: %w", err)
	}

	return s.GetUser(ctx, username)
}

// UpdateUser replaces a stored user record and keeps the email index in
// sync when the address changed.
func (s *Store) UpdateUser(_ context.Context, user *domain.User) error {
	key := []byte(userPrefix + user.Username)

	err := s.db.Update(func(txn *badger.Txn) error {
		var old domain.User
		if err := getInTxn(txn, key, &old); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		oldEmail := normalizeEmail(old.Email)
		newEmail := normalizeEmail(user.Email)
		if oldEmail != newEmail {
			if _, err := txn.Get([]byte(userEmailPrefix + newEmail)); err == nil {
				return ErrDuplicateEmail
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			if err := txn.Delete([]byte(userEmailPrefix + oldEmail)); err != nil {
				return err
			}
			if err := txn.Set([]byte(userEmailPrefix+newEmail), []byte(user.Username)); err != nil {
				return err
			}
		}

		return setInTxn(txn, key, user)
	})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrDuplicateEmail) {
			return err
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// UserExists reports whether a username is taken.
func (s *Store) UserExists(_ context.Context, username string) (bool, error) {
	return s.exists([]byte(userPrefix + username))
}
