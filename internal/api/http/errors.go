package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mind-engage/history-contest/internal/exam"
)

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// statusOf maps an exam failure to its HTTP status.
func statusOf(err error) int {
	switch exam.KindOf(err) {
	case exam.KindIntegrity, exam.KindConfiguration:
		return http.StatusBadRequest
	case exam.KindInvalidState:
		return http.StatusConflict
	case exam.KindNotFound:
		return http.StatusNotFound
	case exam.KindNotCompleted:
		return http.StatusForbidden
	}
	if errors.Is(err, errNoIdentity) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	body := errorBody{Error: exam.KindOf(err).String(), Detail: exam.DetailOf(err)}
	if errors.Is(err, errNoIdentity) {
		body.Error = "bad_request"
	}
	if status == http.StatusInternalServerError {
		body.Detail = "" // never leak store errors
	}
	respondJSON(w, status, body)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}
