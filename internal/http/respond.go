package http

import (
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/robertarktes/airline-booking-bff/internal/backend"
	"github.com/robertarktes/airline-booking-bff/internal/booking"
	"github.com/robertarktes/airline-booking-bff/internal/domain"
	"github.com/robertarktes/airline-booking-bff/internal/forms"
	"github.com/robertarktes/airline-booking-bff/internal/observability"
	"github.com/robertarktes/airline-booking-bff/internal/passenger"
	"github.com/robertarktes/airline-booking-bff/internal/session"
)

type errorBody struct {
	Error     string            `json:"error"`
	Fields    map[string]string `json:"fields,omitempty"`
	AttemptID string            `json:"attempt_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
	return data
}

// writeError turns err into a user-visible message. Backend statuses and
// messages are passed through as-is.
func writeError(w http.ResponseWriter, r *http.Request, logger observability.Logger, err error) {
	status, body := classify(err)
	logFailure(r, logger, err, status)
	writeJSON(w, status, body)
}

// writeAttemptError reports a failure that left a FAILED attempt behind, so
// the caller can inspect or abandon it.
func writeAttemptError(w http.ResponseWriter, r *http.Request, logger observability.Logger, err error, id uuid.UUID) {
	status, body := classify(err)
	body.AttemptID = id.String()
	logFailure(r, logger, err, status)
	writeJSON(w, status, body)
}

func logFailure(r *http.Request, logger observability.Logger, err error, status int) {
	l := observability.LoggerFrom(r.Context(), logger).WithError(err).WithField("status", status)
	if status >= http.StatusInternalServerError {
		l.Error("request failed")
	} else {
		l.Debug("request rejected")
	}
}

func classify(err error) (int, errorBody) {
	var verr *forms.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, errorBody{Error: "validation failed", Fields: verr.Fields}
	}

	if errors.Is(err, passenger.ErrCreationFailed) {
		status := http.StatusBadGateway
		if code, ok := backend.StatusCode(err); ok && code < http.StatusInternalServerError {
			status = code
		}
		return status, errorBody{Error: passenger.ErrCreationFailed.Error()}
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(apiErr.StatusCode)
		}
		return apiErr.StatusCode, errorBody{Error: msg}
	}

	switch {
	case errors.Is(err, backend.ErrTransport):
		return http.StatusBadGateway, errorBody{Error: "booking service is unreachable, please try again"}
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnknownSeat):
		return http.StatusBadRequest, errorBody{Error: err.Error()}
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, errorBody{Error: "not found"}
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrNoSelection),
		errors.Is(err, domain.ErrConflict), errors.Is(err, booking.ErrStale):
		return http.StatusConflict, errorBody{Error: err.Error()}
	default:
		return http.StatusInternalServerError, errorBody{Error: "internal error"}
	}
}
