package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shakespeare-advisor/advisor-engine/internal/scoring"
	"github.com/shakespeare-advisor/advisor-engine/internal/worker"
)

// ─── CONTEXT KEYS ─────────────────────────────────────────────────────────────

type contextKey string

const ctxKeyInquiryID contextKey = "inquiry_id"

// inquiryID returns the id stored by requireInquiry.
func inquiryID(r *http.Request) int64 {
	id, _ := r.Context().Value(ctxKeyInquiryID).(int64)
	return id
}

// ─── INQUIRY CODES ────────────────────────────────────────────────────────────

// requireInquiry is chi middleware that decodes the {code} URL param into an
// inquiry id. A code with the wrong length or a foreign symbol is a 404, the
// same answer an unknown resource gets.
func (s *Server) requireInquiry(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := s.codes.Decode(chi.URLParam(r, "code"))
		if err != nil {
			respondErr(w, http.StatusNotFound, "unknown inquiry code")
			return
		}
		ctx := context.WithValue(r.Context(), ctxKeyInquiryID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ─── CORS ─────────────────────────────────────────────────────────────────────

// corsMiddleware handles preflight OPTIONS requests and sets CORS headers.
// Outside production any origin is echoed back.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		allowed := "*"
		if s.cfg.Env != "production" {
			allowed = origin
		}

		w.Header().Set("Access-Control-Allow-Origin", allowed)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ─── LOGGER MIDDLEWARE ────────────────────────────────────────────────────────

// loggerMiddleware logs each request with method, path, status, and duration.
func (s *Server) loggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.Info("http",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// ─── RESPONSE HELPERS ─────────────────────────────────────────────────────────

// respond writes a JSON body with the given status code.
func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// respondErr writes a standard JSON error envelope.
func respondErr(w http.ResponseWriter, status int, message string) {
	respond(w, status, map[string]string{"error": message})
}

// respondInternalErr logs an unexpected error and returns a 500 to the client
// without leaking internal details.
func (s *Server) respondInternalErr(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("internal error",
		"error", err,
		"path", r.URL.Path,
		logField(r),
	)
	respondErr(w, http.StatusInternalServerError, "internal server error")
}

// respondEngineErr maps an engine error to a status code. Client mistakes
// carry the error text; anything else is a logged 500.
func (s *Server) respondEngineErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, scoring.ErrUnknownQuestion),
		errors.Is(err, scoring.ErrUnknownPage),
		errors.Is(err, scoring.ErrUnknownTechnology),
		errors.Is(err, scoring.ErrUnknownDeclaration):
		respondErr(w, http.StatusNotFound, err.Error())
	case errors.Is(err, scoring.ErrStaleProcessedAnswer):
		respondErr(w, http.StatusConflict, err.Error())
	case errors.Is(err, scoring.ErrInvalidAnswer),
		errors.Is(err, scoring.ErrUnknownAnswerOption):
		respondErr(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, worker.ErrStopped):
		respondErr(w, http.StatusServiceUnavailable, "engine is shutting down")
	case errors.Is(err, context.DeadlineExceeded):
		s.logger.Warn("engine timeout", "path", r.URL.Path, logField(r))
		respondErr(w, http.StatusGatewayTimeout, "request timed out")
	default:
		s.respondInternalErr(w, r, err)
	}
}

// ─── REQUEST PARSING HELPERS ─────────────────────────────────────────────────

// decode JSON-decodes r.Body into dst. Returns false and writes 400 if the
// body is missing, malformed, or too large. Callers should return immediately
// on false.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB max
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// urlID parses a numeric URL param. Returns false and writes 400 when it is
// not an integer.
func urlID(w http.ResponseWriter, r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil {
		respondErr(w, http.StatusBadRequest, "invalid "+key)
		return 0, false
	}
	return id, true
}

// queryInt parses an integer query param.
func queryInt(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		respondErr(w, http.StatusBadRequest, key+" must be an integer")
		return 0, false
	}
	return n, true
}

// logField returns a slog.Attr using the request ID for correlation.
func logField(r *http.Request) slog.Attr {
	return slog.String("request_id", middleware.GetReqID(r.Context()))
}
