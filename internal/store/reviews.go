package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/polkabooks/polka-server/internal/domain"
)

// Key prefixes for review storage.
const (
	reviewPrefix     = "review:"           // review:{bookID}:{reviewID}
	reviewUserPrefix = "idx:reviews:user:" // idx:reviews:user:{username}:{bookID}:{reviewID}
)

func reviewKey(bookID int64, reviewID string) []byte {
	return fmt.Appendf(nil, "%s%d:%s", reviewPrefix, bookID, reviewID)
}

func reviewUserKey(username string, bookID int64, reviewID string) []byte {
	return fmt.Appendf(nil, "%s%s:%d:%s", reviewUserPrefix, username, bookID, reviewID)
}

// AddReview stores a new review. One review per user per book: a second
// review for the same book fails with ErrDuplicateReview.
func (s *Store) AddReview(_ context.Context, review *domain.Review) error {
	key := reviewKey(review.BookID, review.ID)
	indexKey := reviewUserKey(review.Username, review.BookID, review.ID)

	// Prefix covering every review the user wrote for this book.
	dupPrefix := fmt.Appendf(nil, "%s%s:%d:", reviewUserPrefix, review.Username, review.BookID)

	err := s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = dupPrefix

		it := txn.NewIterator(opts)
		it.Seek(dupPrefix)
		taken := it.ValidForPrefix(dupPrefix)
		it.Close()
		if taken {
			return ErrDuplicateReview
		}

		if err := setInTxn(txn, key, review); err != nil {
			return err
		}
		return txn.Set(indexKey, []byte{})
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateReview) {
			return err
		}
		return fmt.Errorf("add review: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("review added",
			"id", review.ID,
			"book_id", review.BookID,
			"username", review.Username,
			"rating", review.Rating,
		)
	}
	return nil
}

// GetReview retrieves one review.
func (s *Store) GetReview(_ context.Context, bookID int64, reviewID string) (*domain.Review, error) {
	var review domain.Review
	if err := s.get(reviewKey(bookID, reviewID), &review); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	return &review, nil
}

// ListReviews returns all reviews of a book, newest first.
func (s *Store) ListReviews(ctx context.Context, bookID int64) ([]domain.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := fmt.Appendf(nil, "%s%d:", reviewPrefix, bookID)

	var reviews []domain.Review
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var review domain.Review
				if err := json.Unmarshal(val, &review); err != nil {
					return err
				}
				reviews = append(reviews, review)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	slices.SortStableFunc(reviews, func(a, b domain.Review) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return reviews, nil
}

// ReviewsByUser returns every review a user wrote, across all books.
// This feeds the recommender's seed set.
func (s *Store) ReviewsByUser(ctx context.Context, username string) ([]domain.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := fmt.Appendf(nil, "%s%s:", reviewUserPrefix, username)

	// Collect (bookID, reviewID) pairs from the index, then load.
	type ref struct {
		bookID   int64
		reviewID string
	}
	var refs []ref

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			// Key format: idx:reviews:user:{username}:{bookID}:{reviewID}
			rest := string(it.Item().Key()[len(prefix):])
			bookStr, reviewID, ok := strings.Cut(rest, ":")
			if !ok {
				continue
			}
			bookID, err := strconv.ParseInt(bookStr, 10, 64)
			if err != nil {
				continue
			}
			refs = append(refs, ref{bookID: bookID, reviewID: reviewID})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan user review index: %w", err)
	}

	reviews := make([]domain.Review, 0, len(refs))
	for _, r := range refs {
		review, err := s.GetReview(ctx, r.bookID, r.reviewID)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("dangling review index entry",
					"book_id", r.bookID, "review_id", r.reviewID, "error", err)
			}
			continue
		}
		reviews = append(reviews, *review)
	}
	return reviews, nil
}

// LikeReview increments a review's like counter atomically.
func (s *Store) LikeReview(_ context.Context, bookID int64, reviewID string) (*domain.Review, error) {
	key := reviewKey(bookID, reviewID)

	var review domain.Review
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := getInTxn(txn, key, &review); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrReviewNotFound
			}
			return err
		}
		review.Likes++
		return setInTxn(txn, key, &review)
	})
	if err != nil {
		if errors.Is(err, ErrReviewNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("like review: %w", err)
	}
	return &review, nil
}

// DeleteReview removes a review and its user index entry.
func (s *Store) DeleteReview(ctx context.Context, bookID int64, reviewID string) error {
	review, err := s.GetReview(ctx, bookID, reviewID)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(reviewKey(bookID, reviewID)); err != nil {
			return err
		}
		return txn.Delete(reviewUserKey(review.Username, bookID, reviewID))
	})
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	return nil
}

// HasReviews reports whether any review exists at all. Used to decide
// whether the demo seed should run.
func (s *Store) HasReviews(_ context.Context) (bool, error) {
	prefix := []byte(reviewPrefix)

	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		it.Seek(prefix)
		found = it.ValidForPrefix(prefix)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("check reviews: %w", err)
	}
	return found, nil
}

// SeedReviews inserts a batch of reviews in one transaction, skipping the
// duplicate check. Only run against an empty review space.
func (s *Store) SeedReviews(ctx context.Context, reviews []domain.Review) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		for i := range reviews {
			review := &reviews[i]
			if err := setInTxn(txn, reviewKey(review.BookID, review.ID), review); err != nil {
				return err
			}
			if err := txn.Set(reviewUserKey(review.Username, review.BookID, review.ID), []byte{}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seed reviews: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("reviews seeded", "count", len(reviews))
	}
	return nil
}

// Canned reviews attached to every catalog book on first start so book pages
// are not empty before real users show up.
var demoReviewTemplates = []struct {
	username string
	rating   int
	text     string
	date     string
	likes    int
}{
	{"Читатель_1", 5, "Отличная книга! Очень понравилось сочетание магии и повседневности.", "2023-10-15", 12},
	{"Критик_Профи", 4, "Интересная концепция, но некоторые моменты можно было раскрыть лучше.", "2023-09-20", 8},
	{"Любитель_фэнтези", 5, "Идеально для вечернего чтения! Уютная атмосфера и интересные персонажи.", "2023-11-05", 15},
}

// SeedDemoReviews populates each given book with the canned demo reviews.
// No-op when any review already exists, so real data is never mixed with
// demo data on restart.
func (s *Store) SeedDemoReviews(ctx context.Context, bookIDs []int64) error {
	has, err := s.HasReviews(ctx)
	if err != nil {
		return err
	}
	if has {
		return nil
	}

	reviews := make([]domain.Review, 0, len(bookIDs)*len(demoReviewTemplates))
	for _, bookID := range bookIDs {
		for i, tpl := range demoReviewTemplates {
			createdAt, err := time.Parse(time.DateOnly, tpl.date)
			if err != nil {
				return fmt.Errorf("parse demo review date: %w", err)
			}
			reviews = append(reviews, domain.Review{
				ID:        fmt.Sprintf("rev_demo_%d_%d", bookID, i+1),
				BookID:    bookID,
				Username:  tpl.username,
				Rating:    tpl.rating,
				Text:      tpl.text,
				CreatedAt: createdAt,
				Likes:     tpl.likes,
			})
		}
	}

	return s.SeedReviews(ctx, reviews)
}
