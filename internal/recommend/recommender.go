// Package recommend implements the content-based book recommender: heuristic
// similarity scoring over shared catalog attributes, seeded by the user's
// positively-rated books, with a popularity fallback when no signal exists.
package recommend

import (
	"context"
	"log/slog"
	"slices"

	"github.com/polkabooks/polka-server/internal/catalog"
	"github.com/polkabooks/polka-server/internal/domain"
)

// ReviewSource is the read-only view of the review store the recommender
// needs. It never writes reviews.
type ReviewSource interface {
	ReviewsByUser(ctx context.Context, username string) ([]domain.Review, error)
}

// Weights is the similarity weight table. It is deliberately a single,
// documented configuration point: earlier iterations of the scorer carried
// two divergent magnitude schemes, and silently mixing them made scores
// incomparable. Per-element weights multiply the size of the shared set.
type Weights struct {
	MainGenre  float64 // same main genre
	SubGenre   float64 // same sub genre
	SameAuthor float64 // same author (kept small to avoid single-author floods)
	Tag        float64 // per shared tag
	Trope      float64 // per shared plot trope
	Mood       float64 // per shared mood
}

// DefaultWeights is the production weight table.
var DefaultWeights = Weights{
	MainGenre:  3,
	SubGenre:   2,
	SameAuthor: 1,
	Tag:        0.5,
	Trope:      0.3,
	Mood:       0.5,
}

const (
	// seedScanLimit bounds how many seed books drive the per-seed scoring
	// pass; similarity scoring is quadratic-ish in catalog size.
	seedScanLimit = 3
	// perSeedLimit keeps only the best candidates of each seed book.
	perSeedLimit = 5
	// broadenSeedLimit bounds the seeds whose attributes feed the
	// broadening pass.
	broadenSeedLimit = 5
	// broadenMinimum triggers the broadening pass when fewer candidates
	// accumulated across all seeds.
	broadenMinimum = 5
	// broadenCap is the overall candidate ceiling after broadening.
	broadenCap = 10
	// broadenScore is the flat score for broadened candidates.
	broadenScore = 1.0
)

// Recommender computes ranked recommendation candidates. Stateless between
// calls; every Recommend runs fresh against the current catalog snapshot.
type Recommender struct {
	catalog *catalog.Catalog
	reviews ReviewSource
	weights Weights
	logger  *slog.Logger
}

// New creates a recommender with the default weight table.
func New(cat *catalog.Catalog, reviews ReviewSource, logger *slog.Logger) *Recommender {
	return NewWithWeights(cat, reviews, DefaultWeights, logger)
}

// NewWithWeights creates a recommender with a custom weight table.
func NewWithWeights(cat *catalog.Catalog, reviews ReviewSource, w Weights, logger *slog.Logger) *Recommender {
	return &Recommender{catalog: cat, reviews: reviews, weights: w, logger: logger}
}

// Recommend returns up to limit scored candidates for the user, best first.
// Books in exclude (typically the user's reading-list memberships, a policy
// owned by the calling layer) and the user's own seed books never appear.
// A user with no qualifying reviews gets the popularity fallback.
func (r *Recommender) Recommend(ctx context.Context, username string, limit int, exclude []int64) ([]domain.Candidate, error) {
	if limit <= 0 {
		return []domain.Candidate{}, nil
	}

	seeds, err := r.seedSet(ctx, username)
	if err != nil {
		return nil, err
	}

	if len(seeds) == 0 {
		if r.logger != nil {
			r.logger.Debug("no positive reviews, using popularity fallback", "username", username)
		}
		return r.popular(limit, exclude), nil
	}

	excluded := make(map[int64]bool, len(seeds)+len(exclude))
	for _, id := range seeds {
		excluded[id] = true
	}
	for _, id := range exclude {
		excluded[id] = true
	}

	var candidates []domain.Candidate
	for _, seedID := range seeds[:min(seedScanLimit, len(seeds))] {
		seed := r.catalog.Get(seedID)
		if seed == nil {
			continue
		}
		for _, c := range r.similarTo(seed, excluded, perSeedLimit) {
			// First occurrence wins; selected ids join the exclusion
			// set so later seeds neither re-score nor duplicate them.
			excluded[c.Book.ID] = true
			candidates = append(candidates, c)
		}
	}

	if len(candidates) < broadenMinimum {
		candidates = r.broaden(seeds, excluded, candidates)
	}

	sortCandidates(candidates)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// seedSet collects the ids of books the user rated positively, sorted
// ascending so the scoring order is deterministic across calls.
func (r *Recommender) seedSet(ctx context.Context, username string) ([]int64, error) {
	reviews, err := r.reviews.ReviewsByUser(ctx, username)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool)
	var seeds []int64
	for _, review := range reviews {
		if review.IsPositive() && !seen[review.BookID] {
			seen[review.BookID] = true
			seeds = append(seeds, review.BookID)
		}
	}
	slices.Sort(seeds)
	return seeds, nil
}

// similarTo scores every non-excluded catalog book against the seed book and
// returns the top limit candidates. Zero-score books are dropped: a candidate
// must share at least one positive signal with the seed.
func (r *Recommender) similarTo(seed *domain.Book, excluded map[int64]bool, limit int) []domain.Candidate {
	var scored []domain.Candidate
	for _, book := range r.catalog.List() {
		if excluded[book.ID] {
			continue
		}

		score := 0.0
		if book.MainGenre != "" && book.MainGenre == seed.MainGenre {
			score += r.weights.MainGenre
		}
		if book.SubGenre != "" && book.SubGenre == seed.SubGenre {
			score += r.weights.SubGenre
		}
		if book.Author != "" && book.Author == seed.Author {
			score += r.weights.SameAuthor
		}

		tags := domain.Intersection(book.Tags, seed.Tags)
		tropes := domain.Intersection(book.PlotTropes, seed.PlotTropes)
		moods := domain.Intersection(book.Mood, seed.Mood)
		score += r.weights.Tag * float64(len(tags))
		score += r.weights.Trope * float64(len(tropes))
		score += r.weights.Mood * float64(len(moods))

		if score <= 0 {
			continue
		}
		scored = append(scored, domain.Candidate{
			Book:          book,
			Score:         score,
			MatchedTags:   tags,
			MatchedTropes: tropes,
			MatchedMoods:  moods,
		})
	}

	sortCandidates(scored)
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// broaden runs the second pass when the per-seed pass accumulated too few
// candidates: any not-yet-excluded book sharing at least one tag, trope, or
// mood with any seed book joins with a flat score.
func (r *Recommender) broaden(seeds []int64, excluded map[int64]bool, candidates []domain.Candidate) []domain.Candidate {
	var tags, tropes, moods []string
	for _, seedID := range seeds[:min(broadenSeedLimit, len(seeds))] {
		seed := r.catalog.Get(seedID)
		if seed == nil {
			continue
		}
		tags = append(tags, seed.Tags...)
		tropes = append(tropes, seed.PlotTropes...)
		moods = append(moods, seed.Mood...)
	}

	for _, book := range r.catalog.List() {
		if len(candidates) >= broadenCap {
			break
		}
		if excluded[book.ID] {
			continue
		}

		matchedTags := domain.Intersection(book.Tags, tags)
		matchedTropes := domain.Intersection(book.PlotTropes, tropes)
		matchedMoods := domain.Intersection(book.Mood, moods)
		if len(matchedTags)+len(matchedTropes)+len(matchedMoods) == 0 {
			continue
		}

		excluded[book.ID] = true
		candidates = append(candidates, domain.Candidate{
			Book:          book,
			Score:         broadenScore,
			MatchedTags:   matchedTags,
			MatchedTropes: matchedTropes,
			MatchedMoods:  matchedMoods,
		})
	}
	return candidates
}

// popular is the fallback ranking for users without recommendation signal:
// catalog order by rating desc, year desc, id asc. Candidate scores carry
// the book rating so the ranking stays transparent to clients.
func (r *Recommender) popular(limit int, exclude []int64) []domain.Candidate {
	excluded := make(map[int64]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}

	books := slices.Clone(r.catalog.List())
	slices.SortStableFunc(books, func(a, b *domain.Book) int {
		switch {
		case a.Rating != b.Rating:
			if a.Rating > b.Rating {
				return -1
			}
			return 1
		case a.Year != b.Year:
			return b.Year - a.Year
		default:
			return int(a.ID - b.ID)
		}
	})

	candidates := make([]domain.Candidate, 0, limit)
	for _, book := range books {
		if excluded[book.ID] {
			continue
		}
		candidates = append(candidates, domain.Candidate{Book: book, Score: book.Rating})
		if len(candidates) == limit {
			break
		}
	}
	return candidates
}

// sortCandidates orders candidates by score desc, then book rating desc,
// then id asc. The explicit secondary keys make equal-score ordering
// deterministic instead of leaning on sort stability.
func sortCandidates(candidates []domain.Candidate) {
	slices.SortStableFunc(candidates, func(a, b domain.Candidate) int {
		switch {
		case a.Score != b.Score:
			if a.Score > b.Score {
				return -1
			}
			return 1
		case a.Book.Rating != b.Book.Rating:
			if a.Book.Rating > b.Book.Rating {
				return -1
			}
			return 1
		default:
			return int(a.Book.ID - b.Book.ID)
		}
	})
}
