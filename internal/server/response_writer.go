package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/franckalain/winelens/internal/models"
)

// responseWriter records the status code written by a handler
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

// WriteHeader only forwards the first call
func (rw *responseWriter) WriteHeader(statusCode int) {
	if rw.written {
		return
	}
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
	rw.written = true
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Status returns the HTTP status code that was written
func (rw *responseWriter) Status() int {
	return rw.statusCode
}

func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, statusCode int, msg, detail string) {
	respondJSON(w, statusCode, models.ErrorResponse{Error: msg, Message: detail})
}

// rejectRequest logs a client error and writes it
func rejectRequest(w http.ResponseWriter, r *http.Request, statusCode int, msg string) {
	slog.Warn("request rejected",
		"requestID", requestID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"status", statusCode,
		"reason", msg,
	)
	writeError(w, statusCode, msg, "")
}
