// Package api implements the HTTP layer of the advisor engine. Handlers are
// methods on *Server. Each handler file is responsible for one resource group
// and only imports the dependencies it actually uses.
//
// Inquiries are addressed by their share code, never by raw id. The
// requireInquiry middleware decodes the code once and stores the id in the
// request context.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shakespeare-advisor/advisor-engine/internal/codes"
	"github.com/shakespeare-advisor/advisor-engine/internal/scoring"
)

// Engine is the subset of *scoring.Engine the handlers call.
type Engine interface {
	RecordAnswer(ctx context.Context, inquiryID, questionID int64, raw string) error
	ClearAnswer(ctx context.Context, inquiryID, questionID int64) error
	Advance(ctx context.Context, inquiryID, questionID int64) error
	Retreat(ctx context.Context, inquiryID, questionID int64) error
	ReadableAnswer(ctx context.Context, inquiryID, questionID int64) (text, contextCode string, found bool, err error)

	AdvancePage(ctx context.Context, inquiryID, pageID int64) error
	RetreatPage(ctx context.Context, inquiryID, pageID int64) error
	IsPageVisible(ctx context.Context, inquiryID, pageID int64) (bool, error)
	NextPage(ctx context.Context, inquiryID int64, after int) (*scoring.Page, error)
	PreviousPage(ctx context.Context, inquiryID int64, before int) (*scoring.Page, error)

	TechnologyResult(ctx context.Context, inquiryID, technologyID int64) (scoring.TechnologyResult, error)
	TechnologyResults(ctx context.Context, inquiryID int64) ([]scoring.TechnologyResult, error)
	Scores(ctx context.Context, inquiryID int64) ([]scoring.ScoreEntry, error)

	ResetInquiry(ctx context.Context, inquiryID int64) error
}

var _ Engine = (*scoring.Engine)(nil)

// Config holds values read from environment variables at startup.
type Config struct {
	// Env is "production", "staging", or "development".
	Env string

	// RequestTimeout bounds every request. Zero means 30s.
	RequestTimeout time.Duration
}

// Server holds all shared dependencies. Each handler file attaches methods to
// this type and uses only the fields it needs.
type Server struct {
	// engine runs every answer mutation and read-out.
	engine Engine

	// codes maps share codes to inquiry ids and back.
	codes *codes.Encoder

	cfg    Config
	logger *slog.Logger
}

// NewServer constructs the Server and wires the chi router. The returned
// http.Handler is ready to pass to http.Server.
func NewServer(engine Engine, encoder *codes.Encoder, cfg Config, logger *slog.Logger) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	s := &Server{
		engine: engine,
		codes:  encoder,
		cfg:    cfg,
		logger: logger,
	}
	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// ── Global middleware ─────────────────────────────────────────────────────
	r.Use(seedRequestID)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	// ── Health ────────────────────────────────────────────────────────────────
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// ── API ───────────────────────────────────────────────────────────────────
	r.Route("/api", func(r chi.Router) {
		r.Get("/codes/{id}", s.handleEncodeID)

		// Inquiry-scoped routes. The share code is the only credential.
		r.Route("/inquiries/{code}", func(r chi.Router) {
			r.Use(s.requireInquiry)
			r.Get("/", s.handleGetInquiry)
			r.Post("/reset", s.handleResetInquiry)

			r.Route("/answers/{questionID}", func(r chi.Router) {
				r.Get("/", s.handleGetAnswer)
				r.Put("/", s.handleRecordAnswer)
				r.Delete("/", s.handleClearAnswer)
				r.Post("/advance", s.handleAdvanceAnswer)
				r.Post("/retreat", s.handleRetreatAnswer)
			})

			r.Route("/pages", func(r chi.Router) {
				r.Get("/next", s.handleNextPage)
				r.Get("/previous", s.handlePreviousPage)
				r.Get("/{pageID}/visibility", s.handlePageVisibility)
				r.Post("/{pageID}/advance", s.handleAdvancePage)
				r.Post("/{pageID}/retreat", s.handleRetreatPage)
			})

			r.Get("/technologies", s.handleListTechnologies)
			r.Get("/technologies/{techID}", s.handleGetTechnology)
			r.Get("/scores", s.handleListScores)
		})
	})

	return r
}
