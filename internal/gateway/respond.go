package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/soyeahso/agentdeck/internal/domain"
)

// envelope is the common response shape: {"success": bool, ...}.
type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, payload envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, status int, fields envelope) {
	body := envelope{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, status, body)
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{"success": false, "error": message})
}

// writeError maps the domain error taxonomy onto HTTP status codes.
// Storage failures get a generic message; internals stay in the logs.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeFailure(w, http.StatusNotFound, "not found")
	case domain.IsValidation(err):
		writeFailure(w, http.StatusBadRequest, err.Error())
	case domain.IsConflict(err):
		writeFailure(w, http.StatusConflict, err.Error())
	default:
		s.log.Error().Err(err).Msg("request failed")
		writeFailure(w, http.StatusInternalServerError, "internal error")
	}
}
