package api

import (
	"encoding/json/v2"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/polkabooks/polka-server/internal/domain"
	"github.com/polkabooks/polka-server/internal/http/response"
)

// parseListParams extracts the {list} and {bookID} URL parameters.
func parseListParams(r *http.Request) (domain.ListName, int64, bool) {
	name := domain.ListName(chi.URLParam(r, "list"))
	bookID, err := strconv.ParseInt(chi.URLParam(r, "bookID"), 10, 64)
	return name, bookID, err == nil && bookID > 0
}

// handleGetLists returns the caller's reading lists with resolved books.
func (s *Server) handleGetLists(w http.ResponseWriter, r *http.Request) {
	resp, err := s.listService.GetLists(r.Context(), getUsername(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, resp, s.logger)
}

// handleAddToList puts a book on one of the caller's lists.
func (s *Server) handleAddToList(w http.ResponseWriter, r *http.Request) {
	name, bookID, ok := parseListParams(r)
	if !ok {
		response.BadRequest(w, "Invalid book ID", s.logger)
		return
	}

	if err := s.listService.AddToList(r.Context(), getUsername(r.Context()), name, bookID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleRemoveFromList takes a book off one of the caller's lists.
func (s *Server) handleRemoveFromList(w http.ResponseWriter, r *http.Request) {
	name, bookID, ok := parseListParams(r)
	if !ok {
		response.BadRequest(w, "Invalid book ID", s.logger)
		return
	}

	if err := s.listService.RemoveFromList(r.Context(), getUsername(r.Context()), name, bookID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// moveRequest is the body of a list-to-list move.
type moveRequest struct {
	From   domain.ListName `json:"from"`
	To     domain.ListName `json:"to"`
	BookID int64           `json:"book_id"`
}

// handleMoveBetweenLists moves a book between two lists in one step.
func (s *Server) handleMoveBetweenLists(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if req.BookID <= 0 {
		response.BadRequest(w, "Invalid book ID", s.logger)
		return
	}

	err := s.listService.MoveBetweenLists(r.Context(), getUsername(r.Context()), req.From, req.To, req.BookID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}
