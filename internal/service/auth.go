package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shelfable/bookstore/internal/auth"
	"github.com/shelfable/bookstore/internal/domain"
	"github.com/shelfable/bookstore/internal/repository"
	apperrors "github.com/shelfable/bookstore/pkg/errors"
)

// minPasswordLength is the minimum password length required.
const minPasswordLength = 8

// AuthService implements registration, login, token verification, refresh,
// and logout. Refresh tokens are tracked server side in a jti-keyed registry,
// so each session can be revoked on its own.
type AuthService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	tokens   *auth.TokenManager
	logger   *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	tokens *auth.TokenManager,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		logger:   logger,
	}
}

// RegisterInput holds the parameters for registering a new user.
type RegisterInput struct {
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// LoginInput holds the parameters for user login.
type LoginInput struct {
	Username string
	Password string
}

// ChangePasswordInput holds the parameters for changing a password.
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// Register creates a new user account with a hashed password. New accounts
// start with no roles; an administrator assigns them afterwards.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if input.Username == "" {
		return nil, apperrors.InvalidInput("username is required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     input.Username,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user, nil); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Authenticate verifies a username/password pair. An unknown username and a
// wrong password produce the same error, so callers cannot probe which
// usernames exist.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperrors.AuthenticationFailed()
	}

	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, apperrors.AuthenticationFailed()
	}

	return user, nil
}

// Login authenticates a user and issues a token pair. The access token
// embeds the user's roles and effective permissions as a snapshot; the
// refresh token's jti is registered server side with the token's own TTL.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*domain.User, *domain.TokenPair, error) {
	if input.Username == "" || input.Password == "" {
		return nil, nil, apperrors.AuthenticationFailed()
	}

	user, err := s.Authenticate(ctx, input.Username, input.Password)
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, pair, nil
}

// VerifyAccess validates an access token and returns its claims. A refresh
// token presented here is rejected regardless of validity.
func (s *AuthService) VerifyAccess(token string) (*auth.Claims, error) {
	return s.tokens.ParseKind(token, auth.KindAccess)
}

// Refresh exchanges a valid, registered refresh token for a new access token.
// The refresh token itself stays valid and registered; only access tokens are
// re-issued, with a fresh role and permission snapshot.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", apperrors.RefreshMissing()
	}

	claims, err := s.tokens.ParseKind(refreshToken, auth.KindRefresh)
	if err != nil {
		return "", err
	}

	// The token must still be in the registry: logout or expiry removes it.
	registeredUserID, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		return "", apperrors.RefreshInvalid()
	}
	if registeredUserID != claims.Subject {
		return "", apperrors.RefreshInvalid()
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		return "", apperrors.RefreshInvalid()
	}

	accessToken, _, err := s.tokens.IssueAccessToken(user.ID, user.RoleNames(), user.EffectivePermissions())
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}

	s.logger.InfoContext(ctx, "access token refreshed",
		slog.String("user_id", user.ID),
	)

	return accessToken, nil
}

// Logout revokes the session behind the given refresh token by removing its
// registry entry. A missing, malformed, or already revoked token is a no-op:
// logout always succeeds from the caller's point of view.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	claims, err := s.tokens.ParseKind(refreshToken, auth.KindRefresh)
	if err != nil {
		return nil
	}

	if err := s.sessions.Delete(ctx, claims.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to remove session on logout",
			slog.String("jti", claims.ID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("remove session: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged out",
		slog.String("user_id", claims.Subject),
	)

	return nil
}

// ChangePassword verifies the user's current password and replaces it.
// Existing sessions stay valid; only the credential changes.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, input ChangePasswordInput) error {
	if input.CurrentPassword == "" {
		return apperrors.InvalidInput("current password is required")
	}
	if len(input.NewPassword) < minPasswordLength {
		return apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if input.NewPassword != input.ConfirmPassword {
		return apperrors.InvalidInput("password confirmation does not match")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user for password change: %w", err)
	}

	if !auth.VerifyPassword(user.PasswordHash, input.CurrentPassword) {
		return apperrors.Unauthorized("current password is incorrect")
	}

	hash, err := auth.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.InfoContext(ctx, "password changed",
		slog.String("user_id", user.ID),
	)

	return nil
}

// Me returns the authenticated user's profile with roles and permissions.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get current user: %w", err)
	}
	return user, nil
}

// issueTokenPair creates an access/refresh token pair and registers the
// refresh token's jti.
func (s *AuthService) issueTokenPair(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	accessToken, _, err := s.tokens.IssueAccessToken(user.ID, user.RoleNames(), user.EffectivePermissions())
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	refreshToken, jti, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	if err := s.sessions.Save(ctx, jti, user.ID, s.tokens.RefreshExpiry()); err != nil {
		return nil, fmt.Errorf("register session: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}
