package schedule

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kilianp07/docksched/core/edit"
	"github.com/kilianp07/docksched/core/planner"
	"github.com/kilianp07/docksched/core/source"
)

// ErrorDetail is the body of every error response.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type errorResponse struct {
	Error ErrorDetail `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: ErrorDetail{Code: code, Message: msg}})
}

// writeDomainError maps planner errors to status codes.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var fe edit.FieldErrors
	switch {
	case errors.As(err, &fe):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: ErrorDetail{
			Code: "validation_error", Message: "request has invalid fields", Fields: fe,
		}})
	case errors.Is(err, planner.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "appointment not found")
	case errors.Is(err, planner.ErrRefreshInProgress):
		writeError(w, http.StatusConflict, "refresh_in_progress", err.Error())
	case errors.Is(err, source.ErrTransient):
		writeError(w, http.StatusServiceUnavailable, "upstream_unavailable", err.Error())
	default:
		var fetchErr *source.FetchError
		if errors.As(err, &fetchErr) {
			writeError(w, http.StatusBadGateway, "upstream_error", err.Error())
			return
		}
		s.log.Errorf("request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
