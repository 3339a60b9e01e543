package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/franckalain/winelens/internal/auth"
	"github.com/google/uuid"
)

type contextKey string

const contextKeyRequestID contextKey = "requestID"

const (
	headerRequestID = "X-Request-Id"

	corsAllowOrigin  = "*"
	corsAllowMethods = "POST, OPTIONS"
	corsReadMethods  = "GET, OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization"
)

// withMiddleware wraps handlers with common middleware
func (s *Server) withMiddleware(handler http.HandlerFunc) http.HandlerFunc {
	return s.metricsMiddleware(
		s.requestIDMiddleware(
			s.panicRecoveryMiddleware(
				s.loggingMiddleware(handler),
			),
		),
	)
}

// protectedHandler is an endpoint that only runs for an authenticated caller
type protectedHandler func(w http.ResponseWriter, r *http.Request, principal *auth.Principal)

// protected applies the CORS, method and bearer token checks shared by the
// endpoints that call paid upstream APIs
func (s *Server) protected(next protectedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w, corsAllowMethods)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if r.Method != http.MethodPost {
			rejectRequest(w, r, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		res := auth.Authenticate(r, s.verifier)
		if !res.OK() {
			slog.Warn("request rejected",
				"requestID", requestID(r.Context()),
				"path", r.URL.Path,
				"error", res.Err,
			)
			writeError(w, res.Status, res.Message, "")
			return
		}

		next(w, r, res.Principal)
	}
}

func setCORSHeaders(w http.ResponseWriter, methods string) {
	w.Header().Set("Access-Control-Allow-Origin", corsAllowOrigin)
	w.Header().Set("Access-Control-Allow-Methods", methods)
	w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
}

// requestIDMiddleware extracts or generates request IDs
func (s *Server) requestIDMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), contextKeyRequestID, id)
		w.Header().Set(headerRequestID, id)

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// panicRecoveryMiddleware recovers from panics
func (s *Server) panicRecoveryMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				panicRecoveries.Inc()
				slog.Error("panic recovered",
					"error", fmt.Sprintf("%v", err),
					"requestID", requestID(r.Context()),
					"path", r.URL.Path,
					"method", r.Method,
				)
				writeError(w, http.StatusInternalServerError, "Internal server error", "")
			}
		}()
		next.ServeHTTP(w, r)
	}
}

// loggingMiddleware logs requests
func (s *Server) loggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := newResponseWriter(w)

		next.ServeHTTP(rw, r)

		slog.Debug("request completed",
			"requestID", requestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.Status(),
			"duration", time.Since(start).String(),
		)
	}
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID).(string)
	return id
}
