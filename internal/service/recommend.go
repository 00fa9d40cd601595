package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/polkabooks/polka-server/internal/catalog"
	"github.com/polkabooks/polka-server/internal/domain"
	"github.com/polkabooks/polka-server/internal/recommend"
	"github.com/polkabooks/polka-server/internal/store"
)

// RecommendationService wraps the recommender with the per-user exclusion
// policy: books the user already shelved on any reading list are never
// recommended, on top of the books they already reviewed.
type RecommendationService struct {
	mu          sync.Mutex
	recommender *recommend.Recommender

	store  *store.Store
	logger *slog.Logger
}

// NewRecommendationService creates a new recommendation service.
func NewRecommendationService(cat *catalog.Catalog, st *store.Store, logger *slog.Logger) *RecommendationService {
	return &RecommendationService{
		recommender: recommend.New(cat, st, logger),
		store:       st,
		logger:      logger,
	}
}

// Reload rebinds the recommender to a freshly loaded catalog.
func (s *RecommendationService) Reload(cat *catalog.Catalog) {
	s.mu.Lock()
	s.recommender = recommend.New(cat, s.store, s.logger)
	s.mu.Unlock()
}

// Recommend returns up to limit personalized candidates for the user.
func (s *RecommendationService) Recommend(ctx context.Context, username string, limit int) ([]domain.Candidate, error) {
	lists, err := s.store.GetLists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get lists: %w", err)
	}

	s.mu.Lock()
	rec := s.recommender
	s.mu.Unlock()

	return rec.Recommend(ctx, username, limit, lists.AllBookIDs())
}
