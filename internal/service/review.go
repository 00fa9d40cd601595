package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/polkabooks/polka-server/internal/domain"
	domainerrors "github.com/polkabooks/polka-server/internal/errors"
	"github.com/polkabooks/polka-server/internal/id"
	"github.com/polkabooks/polka-server/internal/store"
)

// ReviewService manages book reviews and their aggregates.
type ReviewService struct {
	store     *store.Store
	discovery *DiscoveryService
	logger    *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(st *store.Store, discovery *DiscoveryService, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		store:     st,
		discovery: discovery,
		logger:    logger,
	}
}

// AddReviewRequest contains a new review submission.
type AddReviewRequest struct {
	BookID int64  `json:"book_id" validate:"required,gt=0"`
	Rating int    `json:"rating" validate:"required,gte=1,lte=5"`
	Text   string `json:"text" validate:"max=5000"`
}

// ReviewsResponse bundles a book's reviews with their aggregate stats.
type ReviewsResponse struct {
	BookID  int64              `json:"book_id"`
	Reviews []domain.Review    `json:"reviews"`
	Stats   domain.ReviewStats `json:"stats"`
}

// AddReview submits a review. One review per user per book.
func (s *ReviewService) AddReview(ctx context.Context, username string, req AddReviewRequest) (*domain.Review, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.discovery.Book(req.BookID); err != nil {
		return nil, err
	}

	reviewID, err := id.Generate("rev")
	if err != nil {
		return nil, fmt.Errorf("generate review id: %w", err)
	}

	review := &domain.Review{
		ID:        reviewID,
		BookID:    req.BookID,
		Username:  username,
		Rating:    req.Rating,
		Text:      req.Text,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.AddReview(ctx, review); err != nil {
		if errors.Is(err, store.ErrDuplicateReview) {
			return nil, domainerrors.AlreadyExists("you already reviewed this book")
		}
		return nil, fmt.Errorf("add review: %w", err)
	}

	s.logger.Info("review added", "username", username, "book_id", req.BookID, "rating", req.Rating)
	return review, nil
}

// ListReviews returns a book's reviews, newest first, with aggregates.
func (s *ReviewService) ListReviews(ctx context.Context, bookID int64) (*ReviewsResponse, error) {
	if _, err := s.discovery.Book(bookID); err != nil {
		return nil, err
	}

	reviews, err := s.store.ListReviews(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	return &ReviewsResponse{
		BookID:  bookID,
		Reviews: reviews,
		Stats:   domain.ComputeReviewStats(reviews),
	}, nil
}

// LikeReview increments a review's like counter and returns the updated
// review.
func (s *ReviewService) LikeReview(ctx context.Context, bookID int64, reviewID string) (*domain.Review, error) {
	review, err := s.store.LikeReview(ctx, bookID, reviewID)
	if err != nil {
		if errors.Is(err, store.ErrReviewNotFound) {
			return nil, domainerrors.NotFound("review not found")
		}
		return nil, fmt.Errorf("like review: %w", err)
	}
	return review, nil
}

// DeleteReview removes a review. Only the author may delete it.
func (s *ReviewService) DeleteReview(ctx context.Context, username string, bookID int64, reviewID string) error {
	review, err := s.store.GetReview(ctx, bookID, reviewID)
	if err != nil {
		if errors.Is(err, store.ErrReviewNotFound) {
			return domainerrors.NotFound("review not found")
		}
		return fmt.Errorf("get review: %w", err)
	}

	if review.Username != username {
		return domainerrors.Forbidden("you can only delete your own reviews")
	}

	if err := s.store.DeleteReview(ctx, bookID, reviewID); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	s.logger.Info("review deleted", "username", username, "book_id", bookID)
	return nil
}
