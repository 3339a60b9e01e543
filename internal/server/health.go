package server

import (
	"log/slog"
	"net/http"

	"github.com/franckalain/winelens/internal/models"
)

// handleHealth handles /health. It never authenticates and never calls
// upstream; the flags only reflect which credentials are present.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		setCORSHeaders(w, corsReadMethods)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Access-Control-Allow-Origin", corsAllowOrigin)
	respondJSON(w, http.StatusOK, models.HealthResponse{
		Status:           "ok",
		OpenAIConfigured: s.model.Configured(),
		GoogleConfigured: s.searcher.Configured(),
	})
}

// handleClientConfig handles GET /clientConfig. The record only holds
// public client identifiers. Pass ?format=yaml for a YAML document.
func (s *Server) handleClientConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", corsAllowOrigin)

	switch r.Method {
	case http.MethodOptions:
		setCORSHeaders(w, corsReadMethods)
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodGet:
	default:
		rejectRequest(w, r, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if s.client == nil {
		writeError(w, http.StatusNotFound, "Client configuration not available", "")
		return
	}

	if r.URL.Query().Get("format") == "yaml" {
		out, err := s.client.YAML()
		if err != nil {
			slog.Error("failed to render client config", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to render client configuration", "")
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(out)
		return
	}

	respondJSON(w, http.StatusOK, s.client)
}
