package api

import (
	"net/http"

	"github.com/shakespeare-advisor/advisor-engine/internal/scoring"
)

// ─── GET /api/inquiries/:code/technologies ───────────────────────────────────
//
// Verdicts and rendered notes of every technology, ordered by id. Computed on
// every call from the current scores; nothing is cached.

type technologiesResponse struct {
	Technologies []scoring.TechnologyResult `json:"technologies"`
}

func (s *Server) handleListTechnologies(w http.ResponseWriter, r *http.Request) {
	results, err := s.engine.TechnologyResults(r.Context(), inquiryID(r))
	if err != nil {
		s.respondEngineErr(w, r, err)
		return
	}
	if results == nil {
		results = []scoring.TechnologyResult{}
	}
	respond(w, http.StatusOK, technologiesResponse{Technologies: results})
}

// ─── GET /api/inquiries/:code/technologies/:techID ───────────────────────────

func (s *Server) handleGetTechnology(w http.ResponseWriter, r *http.Request) {
	tid, ok := urlID(w, r, "techID")
	if !ok {
		return
	}
	res, err := s.engine.TechnologyResult(r.Context(), inquiryID(r), tid)
	if err != nil {
		s.respondEngineErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, res)
}

// ─── GET /api/inquiries/:code/scores ─────────────────────────────────────────

type scoresResponse struct {
	Scores []scoring.ScoreEntry `json:"scores"`
}

func (s *Server) handleListScores(w http.ResponseWriter, r *http.Request) {
	scores, err := s.engine.Scores(r.Context(), inquiryID(r))
	if err != nil {
		s.respondEngineErr(w, r, err)
		return
	}
	if scores == nil {
		scores = []scoring.ScoreEntry{}
	}
	respond(w, http.StatusOK, scoresResponse{Scores: scores})
}
