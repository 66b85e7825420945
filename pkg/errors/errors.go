package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for common cases.
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrInternal      = errors.New("internal error")
)

// Token and session sentinel errors. The auth service translates every
// signing-library failure into one of these before it crosses the service
// boundary.
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenWrongKind = errors.New("token kind mismatch")
	ErrRefreshMissing = errors.New("refresh token missing")
	ErrRefreshInvalid = errors.New("refresh token invalid or revoked")
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// AlreadyExists creates a 409 error.
func AlreadyExists(resource, field, value string) *AppError {
	return &AppError{
		Code:    "ALREADY_EXISTS",
		Message: fmt.Sprintf("%s with %s %q already exists", resource, field, value),
		Status:  http.StatusConflict,
		Err:     ErrAlreadyExists,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// Forbidden creates a 403 error.
func Forbidden(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     ErrForbidden,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// AuthenticationFailed creates the deliberately undifferentiated 401 returned
// for any credential mismatch. The same message is used whether the username
// is unknown or the password is wrong, to resist username enumeration.
func AuthenticationFailed() *AppError {
	return &AppError{
		Code:    "AUTHENTICATION_FAILED",
		Message: "could not validate credentials",
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// TokenExpired creates a 401 error for an access or refresh token whose
// signature is valid but whose expiry has passed.
func TokenExpired() *AppError {
	return &AppError{
		Code:    "TOKEN_EXPIRED",
		Message: "token has expired",
		Status:  http.StatusUnauthorized,
		Err:     ErrTokenExpired,
	}
}

// TokenMalformed creates a 401 error for a token with a bad signature or structure.
func TokenMalformed() *AppError {
	return &AppError{
		Code:    "TOKEN_MALFORMED",
		Message: "token is malformed",
		Status:  http.StatusUnauthorized,
		Err:     ErrTokenMalformed,
	}
}

// TokenWrongKind creates a 403 error for a token presented to an operation
// that requires the other kind (access vs refresh).
func TokenWrongKind() *AppError {
	return &AppError{
		Code:    "TOKEN_WRONG_KIND",
		Message: "invalid token type",
		Status:  http.StatusForbidden,
		Err:     ErrTokenWrongKind,
	}
}

// RefreshMissing creates a 401 error for a refresh call without a token.
func RefreshMissing() *AppError {
	return &AppError{
		Code:    "REFRESH_MISSING",
		Message: "refresh token missing",
		Status:  http.StatusUnauthorized,
		Err:     ErrRefreshMissing,
	}
}

// RefreshInvalid creates a 403 error for a refresh token with no live
// registry entry (revoked, rotated away, or never issued).
func RefreshInvalid() *AppError {
	return &AppError{
		Code:    "REFRESH_INVALID",
		Message: "refresh token expired or revoked",
		Status:  http.StatusForbidden,
		Err:     ErrRefreshInvalid,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrTokenMalformed), errors.Is(err, ErrRefreshMissing):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrTokenWrongKind),
		errors.Is(err, ErrRefreshInvalid):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
