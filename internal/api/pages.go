package api

import (
	"net/http"

	"github.com/shakespeare-advisor/advisor-engine/internal/scoring"
)

// pageResponse is the navigation answer. Page is null past either end of
// the questionnaire.
type pageResponse struct {
	Page *scoring.Page `json:"page"`
}

// ─── GET /api/inquiries/:code/pages/next?after=N ─────────────────────────────

func (s *Server) handleNextPage(w http.ResponseWriter, r *http.Request) {
	after, ok := queryInt(w, r, "after")
	if !ok {
		return
	}
	p, err := s.engine.NextPage(r.Context(), inquiryID(r), after)
	if err != nil {
		s.respondEngineErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, pageResponse{Page: p})
}

// ─── GET /api/inquiries/:code/pages/previous?before=N ────────────────────────

func (s *Server) handlePreviousPage(w http.ResponseWriter, r *http.Request) {
	before, ok := queryInt(w, r, "before")
	if !ok {
		return
	}
	p, err := s.engine.PreviousPage(r.Context(), inquiryID(r), before)
	if err != nil {
		s.respondEngineErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, pageResponse{Page: p})
}

// ─── GET /api/inquiries/:code/pages/:pageID/visibility ───────────────────────

type visibilityResponse struct {
	PageID  int64 `json:"page_id"`
	Visible bool  `json:"visible"`
}

func (s *Server) handlePageVisibility(w http.ResponseWriter, r *http.Request) {
	pid, ok := urlID(w, r, "pageID")
	if !ok {
		return
	}
	visible, err := s.engine.IsPageVisible(r.Context(), inquiryID(r), pid)
	if err != nil {
		s.respondEngineErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, visibilityResponse{PageID: pid, Visible: visible})
}

// ─── POST /api/inquiries/:code/pages/:pageID/advance|retreat ─────────────────
//
// Processes every question of the page in one unit of work. Unanswered
// questions are skipped.

func (s *Server) handleAdvancePage(w http.ResponseWriter, r *http.Request) {
	pid, ok := urlID(w, r, "pageID")
	if !ok {
		return
	}
	if err := s.engine.AdvancePage(r.Context(), inquiryID(r), pid); err != nil {
		s.respondEngineErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRetreatPage(w http.ResponseWriter, r *http.Request) {
	pid, ok := urlID(w, r, "pageID")
	if !ok {
		return
	}
	if err := s.engine.RetreatPage(r.Context(), inquiryID(r), pid); err != nil {
		s.respondEngineErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
