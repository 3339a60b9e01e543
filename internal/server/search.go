package server

import (
	"log/slog"
	"net/http"

	"github.com/franckalain/winelens/internal/auth"
	"github.com/franckalain/winelens/internal/models"
	"github.com/franckalain/winelens/internal/search"
)

// handleSearchWineImage handles POST /searchWineImage
func (s *Server) handleSearchWineImage(w http.ResponseWriter, r *http.Request, principal *auth.Principal) {
	logger := slog.With("requestID", requestID(r.Context()), "uid", principal.UID)

	// the client falls back to the user's own photo
	if !s.searcher.Configured() {
		respondJSON(w, http.StatusOK, models.ImageSearchResult{
			Success: true,
			Message: "Google Image Search not configured",
		})
		return
	}

	var req models.ImageSearchRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Query == "" {
		rejectRequest(w, r, http.StatusBadRequest, "No search query provided")
		return
	}

	query := search.BuildQuery(req.Query, req.Type)
	link, err := s.searcher.FirstImage(r.Context(), query)
	if err != nil {
		upstreamRequests.WithLabelValues(serviceSearch, outcomeError).Inc()
		logger.Error("error searching images", "query", query, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to search images", err.Error())
		return
	}

	if link == "" {
		upstreamRequests.WithLabelValues(serviceSearch, outcomeNoResults).Inc()
		respondJSON(w, http.StatusOK, models.ImageSearchResult{
			Success: true,
			Message: "No images found",
		})
		return
	}

	upstreamRequests.WithLabelValues(serviceSearch, outcomeSuccess).Inc()
	respondJSON(w, http.StatusOK, models.ImageSearchResult{Success: true, ImageURL: &link})
}
