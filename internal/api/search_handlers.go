package api

import (
	"net/http"
	"strconv"

	"github.com/polkabooks/polka-server/internal/domain"
	"github.com/polkabooks/polka-server/internal/http/response"
	"github.com/polkabooks/polka-server/internal/search"
)

// searchResponse pairs the raw search hits with resolved catalog books.
type searchResponse struct {
	Result *search.Result `json:"result"`
	Books  []*domain.Book `json:"books"`
}

// handleSearch runs a full-text catalog query.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	params := search.DefaultParams()
	params.Query = query.Get("q")
	params.MainGenre = query.Get("main_genre")
	params.Tags = query["tags"]

	if v, err := strconv.Atoi(query.Get("min_year")); err == nil {
		params.MinYear = v
	}
	if v, err := strconv.Atoi(query.Get("max_year")); err == nil {
		params.MaxYear = v
	}
	if v, err := strconv.Atoi(query.Get("limit")); err == nil && v > 0 && v <= 100 {
		params.Limit = v
	}
	if v, err := strconv.Atoi(query.Get("offset")); err == nil && v >= 0 {
		params.Offset = v
	}

	result, books, err := s.discoveryService.Search(r.Context(), params)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, searchResponse{Result: result, Books: books}, s.logger)
}

// handleRecommendations returns personalized picks for the caller.
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	username := getUsername(r.Context())

	limit := 5
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 50 {
		limit = v
	}

	candidates, err := s.recommendService.Recommend(r.Context(), username, limit)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, candidates, s.logger)
}
