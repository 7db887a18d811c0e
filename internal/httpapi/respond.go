package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/learnflow/learnflow/internal/curriculum"
	"github.com/learnflow/learnflow/internal/identity"
	"github.com/learnflow/learnflow/internal/quiz"
	"github.com/learnflow/learnflow/internal/upstream"
)

const maxRequestBytes = 1 << 20

var errForbidden = errors.New("forbidden")

type errorResponse struct {
	Error   string         `json:"error"`
	Session *quiz.Snapshot `json:"session,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

// statusFor maps the error taxonomy to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, quiz.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, identity.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, errForbidden):
		return http.StatusForbidden
	case errors.Is(err, quiz.ErrInvalidState),
		errors.Is(err, quiz.ErrSubmitInFlight),
		errors.Is(err, quiz.ErrStaleResponse):
		return http.StatusConflict
	case errors.Is(err, curriculum.ErrNotFound):
		return http.StatusNotFound
	case upstream.IsUpstream(err), errors.Is(err, quiz.ErrMalformed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeErrorWithSession(w, err, nil)
}

// writeErrorWithSession reports err and, for quiz routes, the session state
// it left behind so the page can render the failure inline.
func writeErrorWithSession(w http.ResponseWriter, err error, snap *quiz.Snapshot) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg, Session: snap})
}

type badRequestError struct{ err error }

func (e *badRequestError) Error() string { return "invalid request body: " + e.err.Error() }

func decodeJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxRequestBytes)
	err := json.NewDecoder(body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return &badRequestError{err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

func writeDecodeError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
}
