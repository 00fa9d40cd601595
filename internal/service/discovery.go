package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/polkabooks/polka-server/internal/catalog"
	"github.com/polkabooks/polka-server/internal/domain"
	domainerrors "github.com/polkabooks/polka-server/internal/errors"
	"github.com/polkabooks/polka-server/internal/filter"
	"github.com/polkabooks/polka-server/internal/search"
)

// DiscoveryService serves catalog browsing: the hierarchical filter tree,
// filtered book queries, and full-text search.
//
// The filter engine recomputes its option sets in place, so every entry
// point that touches it holds the mutex. Catalog reloads swap the engine
// wholesale under the same lock.
type DiscoveryService struct {
	mu      sync.Mutex
	catalog *catalog.Catalog
	engine  *filter.Engine

	index  *search.Index
	logger *slog.Logger
}

// NewDiscoveryService builds the filter engine and search index for the
// given catalog.
func NewDiscoveryService(cat *catalog.Catalog, index *search.Index, logger *slog.Logger) (*DiscoveryService, error) {
	s := &DiscoveryService{
		catalog: cat,
		engine:  filter.New(cat.List()),
		index:   index,
		logger:  logger,
	}
	if err := index.Rebuild(cat.List()); err != nil {
		return nil, fmt.Errorf("build search index: %w", err)
	}
	return s, nil
}

// Reload swaps in a freshly loaded catalog. Called by the catalog watcher.
func (s *DiscoveryService) Reload(cat *catalog.Catalog) error {
	if err := s.index.Rebuild(cat.List()); err != nil {
		return fmt.Errorf("rebuild search index: %w", err)
	}

	s.mu.Lock()
	s.catalog = cat
	s.engine = filter.New(cat.List())
	s.mu.Unlock()

	s.logger.Info("catalog reloaded", "books", cat.Len())
	return nil
}

// Catalog returns the current catalog snapshot.
func (s *DiscoveryService) Catalog() *catalog.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog
}

// Book returns one book by id.
func (s *DiscoveryService) Book(id int64) (*domain.Book, error) {
	book := s.Catalog().Get(id)
	if book == nil {
		return nil, domainerrors.NotFoundf("book %d not found", id)
	}
	return book, nil
}

// BrowseResult is a filtered catalog slice with its human-readable
// description.
type BrowseResult struct {
	Books       []*domain.Book `json:"books"`
	Total       int            `json:"total"`
	Description string         `json:"description,omitempty"`
}

// Browse applies the selections and returns matching books.
func (s *DiscoveryService) Browse(sel filter.Selections) *BrowseResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	books := s.engine.Apply(sel)
	return &BrowseResult{
		Books:       books,
		Total:       len(books),
		Description: s.engine.Describe(sel),
	}
}

// Options refines the filter tree for the active selections and returns it.
func (s *DiscoveryService) Options(sel filter.Selections) []*filter.FilterNode {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.engine.Refine(sel)
	return s.engine.Tree()
}

// Search runs a full-text query and resolves hits back to catalog books.
// Hits whose book vanished from the catalog since the last index rebuild
// are dropped.
func (s *DiscoveryService) Search(ctx context.Context, params search.Params) (*search.Result, []*domain.Book, error) {
	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, nil, fmt.Errorf("search: %w", err)
	}

	cat := s.Catalog()
	books := make([]*domain.Book, 0, len(result.Hits))
	for _, hit := range result.Hits {
		if book := cat.Get(hit.BookID); book != nil {
			books = append(books, book)
		}
	}
	return result, books, nil
}
