package api

import "net/http"

// answerResponse is the stored answer as the user sees it.
type answerResponse struct {
	QuestionID  int64  `json:"question_id"`
	Answer      string `json:"answer"`
	ContextCode string `json:"context_code,omitempty"`
}

// ─── GET /api/inquiries/:code/answers/:questionID ────────────────────────────

func (s *Server) handleGetAnswer(w http.ResponseWriter, r *http.Request) {
	qid, ok := urlID(w, r, "questionID")
	if !ok {
		return
	}
	s.writeAnswer(w, r, qid, http.StatusOK)
}

// ─── PUT /api/inquiries/:code/answers/:questionID ────────────────────────────
//
// Records a raw answer without touching scores. The answer only counts once
// it is advanced. Re-recording a processed answer is a 409: retreat first.

type recordAnswerRequest struct {
	Answer string `json:"answer"`
}

func (s *Server) handleRecordAnswer(w http.ResponseWriter, r *http.Request) {
	qid, ok := urlID(w, r, "questionID")
	if !ok {
		return
	}

	var req recordAnswerRequest
	if !decode(w, r, &req) {
		return
	}

	if err := s.engine.RecordAnswer(r.Context(), inquiryID(r), qid, req.Answer); err != nil {
		s.respondEngineErr(w, r, err)
		return
	}
	s.writeAnswer(w, r, qid, http.StatusOK)
}

// ─── DELETE /api/inquiries/:code/answers/:questionID ─────────────────────────

func (s *Server) handleClearAnswer(w http.ResponseWriter, r *http.Request) {
	qid, ok := urlID(w, r, "questionID")
	if !ok {
		return
	}
	if err := s.engine.ClearAnswer(r.Context(), inquiryID(r), qid); err != nil {
		s.respondEngineErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─── POST /api/inquiries/:code/answers/:questionID/advance|retreat ───────────
//
// Both are idempotent: advancing a processed answer or retreating an
// unprocessed one changes nothing and still returns 204.

func (s *Server) handleAdvanceAnswer(w http.ResponseWriter, r *http.Request) {
	qid, ok := urlID(w, r, "questionID")
	if !ok {
		return
	}
	if err := s.engine.Advance(r.Context(), inquiryID(r), qid); err != nil {
		s.respondEngineErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRetreatAnswer(w http.ResponseWriter, r *http.Request) {
	qid, ok := urlID(w, r, "questionID")
	if !ok {
		return
	}
	if err := s.engine.Retreat(r.Context(), inquiryID(r), qid); err != nil {
		s.respondEngineErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeAnswer(w http.ResponseWriter, r *http.Request, qid int64, status int) {
	text, contextCode, found, err := s.engine.ReadableAnswer(r.Context(), inquiryID(r), qid)
	if err != nil {
		s.respondEngineErr(w, r, err)
		return
	}
	if !found {
		respondErr(w, http.StatusNotFound, "question not answered")
		return
	}
	respond(w, status, answerResponse{QuestionID: qid, Answer: text, ContextCode: contextCode})
}
