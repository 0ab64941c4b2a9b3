package billing

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/contractly/contractly/internal/billing"
)

// envelope is the standard JSON response shape.
type envelope struct {
	Data  any          `json:"data,omitempty"`
	Error *errorDetail `json:"error,omitempty"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Data: data})
}

// respondErr maps the billing error taxonomy onto HTTP statuses: validation
// and conflict rejections are client errors, lock contention is a retryable
// 503, anything else is a 500 with the detail kept out of the response body.
func respondErr(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status := http.StatusInternalServerError
	code := "internal_error"
	message := "internal error"

	switch {
	case billing.IsValidation(err):
		status = http.StatusBadRequest
		code = "validation_error"
		message = err.Error()
	case billing.IsConflict(err):
		status = http.StatusBadRequest
		code = "conflict"
		message = err.Error()
	case billing.IsRetryable(err):
		status = http.StatusServiceUnavailable
		code = "contention"
		message = "concurrent update in progress, retry"
		w.Header().Set("Retry-After", "1")
	default:
		log.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Error: &errorDetail{Code: code, Message: message}})
}

func respondBadRequest(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(envelope{Error: &errorDetail{Code: "bad_request", Message: message}})
}
