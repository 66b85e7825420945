package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/shelfable/bookstore/pkg/errors"
)

// TokenKind discriminates access tokens from refresh tokens. Every token
// carries its kind in the "type" claim so one kind can never be used in
// place of the other.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Claims represents the JWT claims carried by bookstore tokens. Roles and
// Permissions are populated only on access tokens; they are a snapshot taken
// at issuance, so permission changes apply on the next login or refresh.
type Claims struct {
	Kind        TokenKind `json:"type"`
	Roles       []string  `json:"roles,omitempty"`
	Permissions []string  `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager handles JWT token generation and validation with a single
// shared HMAC secret.
type TokenManager struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

// NewTokenManager creates a new token manager with the given secret and expiry durations.
func NewTokenManager(secret string, accessExpiry, refreshExpiry time.Duration) *TokenManager {
	return &TokenManager{
		secret:        []byte(secret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// RefreshExpiry returns the refresh token lifetime. The refresh-token
// registry uses it as the TTL for stored entries.
func (m *TokenManager) RefreshExpiry() time.Duration {
	return m.refreshExpiry
}

// IssueAccessToken creates a signed access token embedding the user's role
// and permission snapshot. It returns the signed token and its jti.
func (m *TokenManager) IssueAccessToken(userID string, roles, permissions []string) (string, string, error) {
	return m.issue(KindAccess, userID, roles, permissions, m.accessExpiry)
}

// IssueRefreshToken creates a signed refresh token carrying only identity
// claims. It returns the signed token and its jti.
func (m *TokenManager) IssueRefreshToken(userID string) (string, string, error) {
	return m.issue(KindRefresh, userID, nil, nil, m.refreshExpiry)
}

func (m *TokenManager) issue(kind TokenKind, userID string, roles, permissions []string, expiry time.Duration) (string, string, error) {
	now := time.Now().UTC()
	jti := uuid.New().String()
	claims := &Claims{
		Kind:        kind,
		Roles:       roles,
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			Issuer:    "bookstore",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", "", fmt.Errorf("sign %s token: %w", kind, err)
	}

	return signed, jti, nil
}

// Parse validates a token's signature and expiry and returns its claims.
// Expired tokens and tokens that fail signature or structural checks map to
// distinct error codes so callers can report them separately.
func (m *TokenManager) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.TokenExpired()
		}
		return nil, apperrors.TokenMalformed()
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.TokenMalformed()
	}

	return claims, nil
}

// ParseKind validates a token and additionally checks that it is of the
// expected kind. A valid token of the wrong kind is rejected outright.
func (m *TokenManager) ParseKind(tokenString string, kind TokenKind) (*Claims, error) {
	claims, err := m.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Kind != kind {
		return nil, apperrors.TokenWrongKind()
	}
	return claims, nil
}
