package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/mimic/internal/replies"
)

// createReply handles POST /api/v1/replies.
func (s *Server) createReply(w http.ResponseWriter, r *http.Request) {
	var req replies.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.RequestID = middleware.GetReqID(r.Context())

	reply, err := s.replies.Reply(r.Context(), req)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}
