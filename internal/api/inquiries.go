package api

import "net/http"

type inquiryResponse struct {
	InquiryID int64  `json:"inquiry_id"`
	Code      string `json:"code"`
}

// ─── GET /api/codes/:id ──────────────────────────────────────────────────────
//
// Returns the share code of an inquiry id. Ids outside the code space are
// reduced modulo its size, so the caller sees the canonical id back.

func (s *Server) handleEncodeID(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if id < 0 {
		respondErr(w, http.StatusBadRequest, "id must not be negative")
		return
	}
	code := s.codes.Encode(id)
	canonical, err := s.codes.Decode(code)
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, inquiryResponse{InquiryID: canonical, Code: code})
}

// ─── GET /api/inquiries/:code ────────────────────────────────────────────────

func (s *Server) handleGetInquiry(w http.ResponseWriter, r *http.Request) {
	id := inquiryID(r)
	respond(w, http.StatusOK, inquiryResponse{InquiryID: id, Code: s.codes.Encode(id)})
}

// ─── POST /api/inquiries/:code/reset ─────────────────────────────────────────
//
// Drops every score of the inquiry and marks all answers unprocessed. Raw
// answers are kept so the user can walk the questionnaire again.

func (s *Server) handleResetInquiry(w http.ResponseWriter, r *http.Request) {
	id := inquiryID(r)
	if err := s.engine.ResetInquiry(r.Context(), id); err != nil {
		s.respondEngineErr(w, r, err)
		return
	}
	s.logger.Info("inquiry reset", "inquiry_id", id, logField(r))
	w.WriteHeader(http.StatusNoContent)
}
