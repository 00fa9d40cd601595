package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/polkabooks/polka-server/internal/http/response"
	"github.com/polkabooks/polka-server/internal/service"
)

// handleListReviews returns a book's reviews with their aggregates.
func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	bookID, ok := parseBookID(r)
	if !ok {
		response.BadRequest(w, "Invalid book ID", s.logger)
		return
	}

	resp, err := s.reviewService.ListReviews(r.Context(), bookID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, resp, s.logger)
}

// handleAddReview submits a review for a book.
func (s *Server) handleAddReview(w http.ResponseWriter, r *http.Request) {
	bookID, ok := parseBookID(r)
	if !ok {
		response.BadRequest(w, "Invalid book ID", s.logger)
		return
	}

	var req service.AddReviewRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	// The URL owns the book id.
	req.BookID = bookID

	review, err := s.reviewService.AddReview(r.Context(), getUsername(r.Context()), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, review, s.logger)
}

// handleLikeReview increments a review's like counter.
func (s *Server) handleLikeReview(w http.ResponseWriter, r *http.Request) {
	bookID, ok := parseBookID(r)
	if !ok {
		response.BadRequest(w, "Invalid book ID", s.logger)
		return
	}
	reviewID := chi.URLParam(r, "reviewID")

	review, err := s.reviewService.LikeReview(r.Context(), bookID, reviewID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, review, s.logger)
}

// handleDeleteReview removes the caller's own review.
func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	bookID, ok := parseBookID(r)
	if !ok {
		response.BadRequest(w, "Invalid book ID", s.logger)
		return
	}
	reviewID := chi.URLParam(r, "reviewID")

	err := s.reviewService.DeleteReview(r.Context(), getUsername(r.Context()), bookID, reviewID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}
