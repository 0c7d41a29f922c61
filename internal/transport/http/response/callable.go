package response

import (
	"errors"
	"net/http"

	"github.com/raknago/parking-backend/internal/domain"
)

// Callable function status strings.
const (
	StatusInvalidArgument   = "INVALID_ARGUMENT"
	StatusResourceExhausted = "RESOURCE_EXHAUSTED"
	StatusInternal          = "INTERNAL"
)

type CallableErrorBody struct {
	Error CallableError `json:"error"`
}

type CallableError struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// WriteCallableError renders err in the callable-function error shape.
// Only validation and rate-limit errors keep their own status; every
// other failure is INTERNAL.
func WriteCallableError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := http.StatusInternalServerError, StatusInternal, "internal"

	var de *domain.Error
	if errors.As(err, &de) {
		msg = de.Message
		switch de.Kind {
		case domain.KindValidation:
			status, code = http.StatusBadRequest, StatusInvalidArgument
		case domain.KindRateLimited:
			status, code = http.StatusTooManyRequests, StatusResourceExhausted
		}
	}
	WriteJSON(w, status, CallableErrorBody{Error: CallableError{Status: code, Message: msg}})
}
