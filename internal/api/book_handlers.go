package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/polkabooks/polka-server/internal/filter"
	"github.com/polkabooks/polka-server/internal/http/response"
)

// scalarParams maps query parameter names to scalar filter keys.
var scalarParams = map[string]filter.Key{
	"main_genre":           filter.KeyMainGenre,
	"sub_genre":            filter.KeySubGenre,
	"character_age":        filter.KeyCharacterAge,
	"character_gender":     filter.KeyCharacterGender,
	"character_profession": filter.KeyCharacterProfession,
	"setting_location":     filter.KeySettingLocation,
	"setting_time_period":  filter.KeySettingTimePeriod,
	"setting_type":         filter.KeySettingType,
	"pacing":               filter.KeyPacing,
}

// multiParams maps query parameter names to multi-value filter keys.
// Repeated parameters select multiple values (OR within the key).
var multiParams = map[string]filter.Key{
	"tags":        filter.KeyTags,
	"plot_tropes": filter.KeyPlotTropes,
	"mood":        filter.KeyMood,
	"themes":      filter.KeyThemes,
	"style":       filter.KeyStyle,
}

// parseSelections builds filter selections from query parameters.
// Unknown parameters are ignored.
func parseSelections(r *http.Request) filter.Selections {
	sel := filter.NewSelections()
	query := r.URL.Query()

	for param, key := range scalarParams {
		if v := query.Get(param); v != "" {
			sel.Scalar[key] = v
		}
	}
	for param, key := range multiParams {
		if vs := query[param]; len(vs) > 0 {
			sel.Multi[key] = vs
		}
	}

	if v := query.Get("min_rating"); v != "" {
		if rating, err := strconv.ParseFloat(v, 64); err == nil {
			sel.MinRating = rating
		}
	}

	ageMin, errMin := strconv.Atoi(query.Get("age_min"))
	ageMax, errMax := strconv.Atoi(query.Get("age_max"))
	if errMin == nil && errMax == nil {
		sel.AgeRange = &filter.AgeRange{Min: ageMin, Max: ageMax}
	}

	return sel
}

// parseBookID extracts the {id} URL parameter.
func parseBookID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// handleListBooks returns books matching the filter query parameters.
// With no parameters it returns the whole catalog.
func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	result := s.discoveryService.Browse(parseSelections(r))
	response.Success(w, result, s.logger)
}

// handleFilterOptions returns the filter tree refined for the active
// selections.
func (s *Server) handleFilterOptions(w http.ResponseWriter, r *http.Request) {
	tree := s.discoveryService.Options(parseSelections(r))
	response.Success(w, tree, s.logger)
}

// handleGetBook returns a single book by ID.
func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id, ok := parseBookID(r)
	if !ok {
		response.BadRequest(w, "Invalid book ID", s.logger)
		return
	}

	book, err := s.discoveryService.Book(id)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, book, s.logger)
}

// handleGetCover serves the book's cover image. Missing covers are a 404,
// never an error.
func (s *Server) handleGetCover(w http.ResponseWriter, r *http.Request) {
	id, ok := parseBookID(r)
	if !ok {
		response.BadRequest(w, "Invalid book ID", s.logger)
		return
	}

	book, err := s.discoveryService.Book(id)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	path, ok := s.covers.Resolve(book.Cover)
	if !ok {
		response.NotFound(w, "Cover not available", s.logger)
		return
	}

	http.ServeFile(w, r, path)
}
