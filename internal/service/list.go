package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/polkabooks/polka-server/internal/domain"
	domainerrors "github.com/polkabooks/polka-server/internal/errors"
	"github.com/polkabooks/polka-server/internal/store"
)

// ListService manages the fixed per-user reading lists.
type ListService struct {
	store     *store.Store
	discovery *DiscoveryService
	logger    *slog.Logger
}

// NewListService creates a new reading list service.
func NewListService(st *store.Store, discovery *DiscoveryService, logger *slog.Logger) *ListService {
	return &ListService{
		store:     st,
		discovery: discovery,
		logger:    logger,
	}
}

// ResolvedList is one reading list with its book ids resolved to catalog
// records, in list order.
type ResolvedList struct {
	Key         domain.ListName `json:"key"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Books       []*domain.Book  `json:"books"`
}

// ListsResponse holds all of a user's lists in canonical order.
type ListsResponse struct {
	Lists []ResolvedList `json:"lists"`
}

// GetLists returns the user's reading lists with books resolved against
// the current catalog. Ids that no longer resolve are skipped.
func (s *ListService) GetLists(ctx context.Context, username string) (*ListsResponse, error) {
	lists, err := s.store.GetLists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get lists: %w", err)
	}

	cat := s.discovery.Catalog()
	resp := &ListsResponse{Lists: make([]ResolvedList, 0, len(domain.ListNames))}
	for _, name := range domain.ListNames {
		list, ok := lists.Lists[name]
		if !ok {
			continue
		}
		resolved := ResolvedList{
			Key:         name,
			Name:        list.Name,
			Description: list.Description,
			Books:       make([]*domain.Book, 0, len(list.BookIDs)),
		}
		for _, bookID := range list.BookIDs {
			if book := cat.Get(bookID); book != nil {
				resolved.Books = append(resolved.Books, book)
			}
		}
		resp.Lists = append(resp.Lists, resolved)
	}
	return resp, nil
}

// AddToList puts a book on one of the user's lists. Adding a book that is
// already on the list is a no-op.
func (s *ListService) AddToList(ctx context.Context, username string, name domain.ListName, bookID int64) error {
	if _, err := s.discovery.Book(bookID); err != nil {
		return err
	}

	added, err := s.store.AddToList(ctx, username, name, bookID)
	if err != nil {
		if errors.Is(err, store.ErrListNotFound) {
			return domainerrors.NotFoundf("unknown list %q", name)
		}
		return fmt.Errorf("add to list: %w", err)
	}

	if added {
		s.logger.Info("book added to list", "username", username, "list", name, "book_id", bookID)
	}
	return nil
}

// RemoveFromList takes a book off one of the user's lists.
func (s *ListService) RemoveFromList(ctx context.Context, username string, name domain.ListName, bookID int64) error {
	_, err := s.store.RemoveFromList(ctx, username, name, bookID)
	if err != nil {
		if errors.Is(err, store.ErrListNotFound) {
			return domainerrors.NotFoundf("unknown list %q", name)
		}
		return fmt.Errorf("remove from list: %w", err)
	}
	return nil
}

// MoveBetweenLists moves a book from one list to another in one step.
func (s *ListService) MoveBetweenLists(ctx context.Context, username string, from, to domain.ListName, bookID int64) error {
	if _, err := s.discovery.Book(bookID); err != nil {
		return err
	}

	if err := s.store.MoveBetweenLists(ctx, username, from, to, bookID); err != nil {
		if errors.Is(err, store.ErrListNotFound) {
			return domainerrors.NotFound("unknown list")
		}
		return fmt.Errorf("move between lists: %w", err)
	}

	s.logger.Info("book moved between lists",
		"username", username,
		"from", from,
		"to", to,
		"book_id", bookID,
	)
	return nil
}
