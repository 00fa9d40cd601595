package domain

import "time"

// Review is a user's rating and write-up for one book.
// Reviews are owned by the review store; the recommender only reads them.
type Review struct {
	ID        string    `json:"id"`
	BookID    int64     `json:"book_id"`
	Username  string    `json:"username"`
	Rating    int       `json:"rating"` // 1-5
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Likes     int       `json:"likes"` // never decreases outside moderation
}

// GoodRatingThreshold is the minimum review rating that marks a book as a
// positive recommendation signal (the "seed set").
const GoodRatingThreshold = 4

// IsPositive reports whether this review qualifies the book for the
// reviewer's recommendation seed set.
func (r *Review) IsPositive() bool {
	return r.Rating >= GoodRatingThreshold
}

// ReviewStats aggregates the reviews of one book.
type ReviewStats struct {
	AverageRating float64     `json:"average_rating"`
	TotalReviews  int         `json:"total_reviews"`
	Distribution  map[int]int `json:"rating_distribution"` // star (1-5) -> count
}

// ComputeReviewStats builds aggregate stats for a set of reviews.
// Ratings outside 1-5 are counted in the average but not the distribution.
func ComputeReviewStats(reviews []Review) ReviewStats {
	stats := ReviewStats{
		Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}
	if len(reviews) == 0 {
		return stats
	}

	total := 0
	for _, r := range reviews {
		total += r.Rating
		if r.Rating >= 1 && r.Rating <= 5 {
			stats.Distribution[r.Rating]++
		}
	}
	stats.TotalReviews = len(reviews)
	// One decimal place, matching what clients display.
	stats.AverageRating = float64(int(float64(total)/float64(len(reviews))*10+0.5)) / 10
	return stats
}
