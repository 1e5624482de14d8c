package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/schederr"
)

type errorBody struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	ConflictIDs []string `json:"conflicting_interview_ids,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeDomainError renders a schederr failure with its stable code; anything
// else is an opaque 500.
func writeDomainError(w http.ResponseWriter, err error) {
	e, ok := schederr.As(err)
	if !ok {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, schederr.HTTPStatus(err), errorResponse{Error: errorBody{
		Code:        e.Code,
		Message:     e.Message,
		ConflictIDs: e.ConflictIDs,
	}})
}

func marshalDomainError(err error) (int, []byte, bool) {
	e, ok := schederr.As(err)
	if !ok {
		return 0, nil, false
	}
	body, mErr := json.Marshal(errorResponse{Error: errorBody{
		Code:        e.Code,
		Message:     e.Message,
		ConflictIDs: e.ConflictIDs,
	}})
	if mErr != nil {
		return 0, nil, false
	}
	return schederr.HTTPStatus(err), body, true
}

// parseDay parses a YYYY-MM-DD date and returns midnight UTC.
func parseDay(s string) (time.Time, bool) {
	day, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

// dayBounds returns [midnight, next midnight) for the date holding t.
func dayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}
