package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/franckalain/winelens/internal/auth"
	"github.com/franckalain/winelens/internal/ml"
	"github.com/franckalain/winelens/internal/models"
)

// handleAnalyzeWineLabel handles POST /analyzeWineLabel
func (s *Server) handleAnalyzeWineLabel(w http.ResponseWriter, r *http.Request, principal *auth.Principal) {
	logger := slog.With("requestID", requestID(r.Context()), "uid", principal.UID)

	if !s.model.Configured() {
		logger.Error("vision model not configured")
		writeError(w, http.StatusInternalServerError, "OpenAI API not configured", "")
		return
	}

	var req models.WineAnalysisRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.ImageBase64 == "" {
		rejectRequest(w, r, http.StatusBadRequest, "No image provided")
		return
	}

	text, err := s.model.ProcessImage(r.Context(), ml.NormalizeImage(req.ImageBase64))
	if err != nil {
		upstreamRequests.WithLabelValues(serviceVision, outcomeError).Inc()
		logger.Error("error analyzing wine label", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to analyze image", err.Error())
		return
	}

	data, err := ml.ExtractJSONObject(text)
	if err != nil {
		upstreamRequests.WithLabelValues(serviceVision, outcomeParseError).Inc()
		logger.Error("failed to parse model reply", "error", err)
		respondJSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Error: "Failed to parse wine data",
			Raw:   text,
		})
		return
	}

	upstreamRequests.WithLabelValues(serviceVision, outcomeSuccess).Inc()
	logger.Info("wine label analyzed", "wine", ml.DecodeWineRecord(data).DisplayName())
	respondJSON(w, http.StatusOK, models.WineAnalysisResponse{Success: true, Data: data})
}

// decodeBody reads a JSON request body into v. A body that is not valid JSON
// leaves v zeroed so the caller reports the missing field. It returns false
// when a reply was already written.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	err := json.NewDecoder(body).Decode(v)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		rejectRequest(w, r, http.StatusRequestEntityTooLarge, "Request body too large")
		return false
	}

	slog.Debug("ignoring malformed request body", "requestID", requestID(r.Context()), "error", err)
	return true
}
