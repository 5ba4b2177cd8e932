package httperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when an entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned on duplicate unique fields.
	ErrConflict = errors.New("already exists")
	// ErrBadCreds is the single failure for login, regardless of whether
	// the email was unknown or the password wrong.
	ErrBadCreds = errors.New("invalid credentials")
	// ErrUnauthorized is returned when no valid session is present.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when the session lacks the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrTooLarge is returned when an uploaded file exceeds the size cap.
	ErrTooLarge = errors.New("file too large")
	// ErrUnsupportedMedia is returned for disallowed upload MIME types.
	ErrUnsupportedMedia = errors.New("unsupported media type")
)

// ValidationError carries a descriptive client-facing message for
// malformed or missing input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validation builds a ValidationError.
func Validation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ErrorResponse is the standard JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Status maps a domain error to an HTTP status. Unknown errors map to
// 500; their message is not exposed to the client.
func Status(err error) int {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, ErrBadCreds), errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

// Body returns the JSON body for an error, hiding internals on 500.
func Body(err error) ErrorResponse {
	if Status(err) == http.StatusInternalServerError {
		return ErrorResponse{Error: "internal server error"}
	}
	return ErrorResponse{Error: err.Error()}
}
