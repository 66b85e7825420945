package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Sentinel error identity ---

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrAlreadyExists, ErrInvalidInput, ErrUnauthorized,
		ErrForbidden, ErrInternal, ErrTokenExpired, ErrTokenMalformed,
		ErrTokenWrongKind, ErrRefreshMissing, ErrRefreshInvalid,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j],
				"sentinels %d and %d should be distinct", i, j)
		}
	}
}

// --- AppError behavior ---

func TestAppError_ErrorString_WithWrappedError(t *testing.T) {
	inner := fmt.Errorf("db connection lost")
	appErr := &AppError{Code: "INTERNAL_ERROR", Message: "something broke", Err: inner}
	assert.Contains(t, appErr.Error(), "INTERNAL_ERROR")
	assert.Contains(t, appErr.Error(), "something broke")
	assert.Contains(t, appErr.Error(), "db connection lost")
}

func TestAppError_ErrorString_WithoutWrappedError(t *testing.T) {
	appErr := &AppError{Code: "NOT_FOUND", Message: "user not found"}
	assert.Equal(t, "NOT_FOUND: user not found", appErr.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	appErr := &AppError{Code: "NOT_FOUND", Message: "nope", Err: ErrNotFound}
	assert.True(t, errors.Is(appErr, ErrNotFound))
}

// --- Constructor functions ---

func TestNotFound(t *testing.T) {
	err := NotFound("book", "abc-123")
	require.NotNil(t, err)
	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.Contains(t, err.Message, "book")
	assert.Contains(t, err.Message, "abc-123")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAlreadyExists(t *testing.T) {
	err := AlreadyExists("user", "username", "alice")
	require.NotNil(t, err)
	assert.Equal(t, "ALREADY_EXISTS", err.Code)
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.Contains(t, err.Message, `username "alice"`)
	assert.True(t, errors.Is(err, ErrAlreadyExists))
}

func TestAuthenticationFailed_IsUndifferentiated(t *testing.T) {
	// The message must never leak whether the username or the password
	// was wrong.
	err := AuthenticationFailed()
	assert.Equal(t, http.StatusUnauthorized, err.Status)
	assert.NotContains(t, err.Message, "username")
	assert.NotContains(t, err.Message, "password")
}

func TestTokenConstructors_StatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, TokenExpired().Status)
	assert.Equal(t, http.StatusUnauthorized, TokenMalformed().Status)
	assert.Equal(t, http.StatusForbidden, TokenWrongKind().Status)
	assert.Equal(t, http.StatusUnauthorized, RefreshMissing().Status)
	assert.Equal(t, http.StatusForbidden, RefreshInvalid().Status)
}

// --- HTTPStatus mapping ---

func TestHTTPStatus_AppError(t *testing.T) {
	err := Forbidden("no")
	assert.Equal(t, http.StatusForbidden, HTTPStatus(err))
}

func TestHTTPStatus_WrappedSentinels(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("load user: %w", ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("create role: %w", ErrAlreadyExists), http.StatusConflict},
		{fmt.Errorf("decode: %w", ErrTokenExpired), http.StatusUnauthorized},
		{fmt.Errorf("decode: %w", ErrTokenMalformed), http.StatusUnauthorized},
		{fmt.Errorf("refresh: %w", ErrTokenWrongKind), http.StatusForbidden},
		{fmt.Errorf("refresh: %w", ErrRefreshInvalid), http.StatusForbidden},
		{fmt.Errorf("refresh: %w", ErrRefreshMissing), http.StatusUnauthorized},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, HTTPStatus(tc.err), "error: %v", tc.err)
	}
}
