package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/polkabooks/polka-server/internal/domain"
)

// Key prefixes for session storage. Sessions are keyed by the refresh
// token hash directly; the user index exists so logout-all can revoke
// every session a user holds.
const (
	sessionPrefix     = "session:"           // session:{tokenHash}
	sessionUserPrefix = "idx:sessions:user:" // idx:sessions:user:{username}:{tokenHash}
)

func sessionKey(tokenHash string) []byte {
	return []byte(sessionPrefix + tokenHash)
}

func sessionUserKey(username, tokenHash string) []byte {
	return fmt.Appendf(nil, "%s%s:%s", sessionUserPrefix, username, tokenHash)
}

// CreateSession persists a new refresh session.
func (s *Store) CreateSession(_ context.Context, session *domain.Session) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := setInTxn(txn, sessionKey(session.RefreshTokenHash), session); err != nil {
			return err
		}
		return txn.Set(sessionUserKey(session.Username, session.RefreshTokenHash), nil)
	})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	if s.logger != nil {
		s.logger.Debug("session created", "username", session.Username)
	}
	return nil
}

// GetSessionByToken resolves a refresh token hash to its session. An
// expired session is reported as ErrSessionExpired; callers should then
// delete it.
func (s *Store) GetSessionByToken(_ context.Context, tokenHash string) (*domain.Session, error) {
	var session domain.Session
	if err := s.get(sessionKey(tokenHash), &session); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.IsExpired() {
		return &session, ErrSessionExpired
	}
	return &session, nil
}

// DeleteSession removes a single session and its user index entry.
// Deleting a session that does not exist is not an error.
func (s *Store) DeleteSession(_ context.Context, tokenHash string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		var session domain.Session
		if err := getInTxn(txn, sessionKey(tokenHash), &session); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}

		if err := txn.Delete(sessionKey(tokenHash)); err != nil {
			return err
		}
		return txn.Delete(sessionUserKey(session.Username, tokenHash))
	})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteUserSessions revokes every session the user holds and returns
// how many were removed.
func (s *Store) DeleteUserSessions(_ context.Context, username string) (int, error) {
	prefix := fmt.Appendf(nil, "%s%s:", sessionUserPrefix, username)

	deleted := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		var hashes []string
		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			hashes = append(hashes, key[len(prefix):])
		}

		for _, hash := range hashes {
			if err := txn.Delete(sessionKey(hash)); err != nil {
				return err
			}
			if err := txn.Delete(sessionUserKey(username, hash)); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete user sessions: %w", err)
	}

	if deleted > 0 && s.logger != nil {
		s.logger.Info("sessions revoked", "username", username, "count", deleted)
	}
	return deleted, nil
}
