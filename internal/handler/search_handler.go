package handler

import (
	"net/http"
	"strconv"

	"scan-station/internal/domain"
	"scan-station/internal/service"
)

// SearchHandler answers semantic queries over indexed OCR text.
type SearchHandler struct {
	searchService *service.SearchService
	logger        domain.Logger
}

// NewSearchHandler creates a new search handler. searchService may be nil
// when search is not configured.
func NewSearchHandler(searchService *service.SearchService, logger domain.Logger) *SearchHandler {
	return &SearchHandler{searchService: searchService, logger: logger}
}

// Search runs a semantic query: GET /search?q=...&limit=10.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	if h.searchService == nil {
		writeError(w, http.StatusNotImplemented, "semantic search is not configured")
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q parameter is required")
		return
	}
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	matches, err := h.searchService.Search(r.Context(), query, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if matches == nil {
		matches = make([]domain.PageMatch, 0)
	}
	writeJSON(w, http.StatusOK, matches)
}
