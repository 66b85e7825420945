package service

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shelfable/bookstore/internal/auth"
	"github.com/shelfable/bookstore/internal/domain"
	apperrors "github.com/shelfable/bookstore/pkg/errors"
)

// --- Mock User Repository ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User, roleIDs []string) error {
	args := m.Called(ctx, user, roleIDs)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *mockUserRepository) SetRoles(ctx context.Context, userID string, roleIDs []string) error {
	args := m.Called(ctx, userID, roleIDs)
	return args.Error(0)
}

func (m *mockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Mock Session Repository ---

type mockSessionRepository struct {
	mock.Mock
}

func (m *mockSessionRepository) Save(ctx context.Context, jti, userID string, ttl time.Duration) error {
	args := m.Called(ctx, jti, userID, ttl)
	return args.Error(0)
}

func (m *mockSessionRepository) Get(ctx context.Context, jti string) (string, error) {
	args := m.Called(ctx, jti)
	return args.String(0), args.Error(1)
}

func (m *mockSessionRepository) Delete(ctx context.Context, jti string) error {
	args := m.Called(ctx, jti)
	return args.Error(0)
}

// --- Mock Role Repository ---

type mockRoleRepository struct {
	mock.Mock
}

func (m *mockRoleRepository) Create(ctx context.Context, role *domain.Role, permissionIDs []string) error {
	args := m.Called(ctx, role, permissionIDs)
	return args.Error(0)
}

func (m *mockRoleRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Role), args.Error(1)
}

func (m *mockRoleRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Role), args.Error(1)
}

func (m *mockRoleRepository) List(ctx context.Context) ([]domain.Role, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Role), args.Error(1)
}

func (m *mockRoleRepository) Update(ctx context.Context, role *domain.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *mockRoleRepository) SetPermissions(ctx context.Context, roleID string, permissionIDs []string) error {
	args := m.Called(ctx, roleID, permissionIDs)
	return args.Error(0)
}

func (m *mockRoleRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestTokenManager() *auth.TokenManager {
	return auth.NewTokenManager("test-secret-key-for-testing-1234", 30*time.Minute, 7*24*time.Hour)
}

func newTestAuthService(users *mockUserRepository, sessions *mockSessionRepository) *AuthService {
	return NewAuthService(users, sessions, newTestTokenManager(), newTestLogger())
}

func librarianUser(t *testing.T) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword("Sup3r-secret")
	require.NoError(t, err)
	return &domain.User{
		ID:           "user-1",
		Username:     "alice",
		FirstName:    "Alice",
		LastName:     "Smith",
		PasswordHash: hash,
		Roles: []domain.Role{
			{
				ID:   "role-1",
				Name: "librarian",
				Permissions: []domain.Permission{
					{ID: "perm-1", Name: "books:read"},
					{ID: "perm-2", Name: "books:write"},
				},
			},
			{
				ID:   "role-2",
				Name: "auditor",
				Permissions: []domain.Permission{
					{ID: "perm-1", Name: "books:read"},
				},
			},
		},
	}
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func TestRegister_Success(t *testing.T) {
	users := new(mockUserRepository)
	sessions := new(mockSessionRepository)
	svc := newTestAuthService(users, sessions)

	users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User"), []string(nil)).Return(nil)

	user, err := svc.Register(context.Background(), RegisterInput{
		Username:  "bob",
		FirstName: "Bob",
		LastName:  "Jones",
		Password:  "Sup3r-secret",
	})

	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "Sup3r-secret", user.PasswordHash)
	assert.True(t, auth.VerifyPassword(user.PasswordHash, "Sup3r-secret"))
	users.AssertExpectations(t)
}

func TestRegister_ShortPassword(t *testing.T) {
	svc := newTestAuthService(new(mockUserRepository), new(mockSessionRepository))

	_, err := svc.Register(context.Background(), RegisterInput{Username: "bob", Password: "short"})

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	users := new(mockUserRepository)
	svc := newTestAuthService(users, new(mockSessionRepository))

	users.On("Create", mock.Anything, mock.Anything, []string(nil)).
		Return(apperrors.AlreadyExists("user", "username", "bob"))

	_, err := svc.Register(context.Background(), RegisterInput{Username: "bob", Password: "Sup3r-secret"})

	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

// ---------------------------------------------------------------------------
// Authenticate
// ---------------------------------------------------------------------------

func TestAuthenticate_UnknownUserAndWrongPasswordLookAlike(t *testing.T) {
	users := new(mockUserRepository)
	svc := newTestAuthService(users, new(mockSessionRepository))

	user := librarianUser(t)
	users.On("GetByUsername", mock.Anything, "ghost").Return(nil, apperrors.ErrNotFound)
	users.On("GetByUsername", mock.Anything, "alice").Return(user, nil)

	_, errUnknown := svc.Authenticate(context.Background(), "ghost", "whatever")
	_, errWrongPass := svc.Authenticate(context.Background(), "alice", "wrong-password")

	require.Error(t, errUnknown)
	require.Error(t, errWrongPass)
	assert.Equal(t, errUnknown.Error(), errWrongPass.Error())
	assert.ErrorIs(t, errUnknown, apperrors.ErrUnauthorized)
	assert.ErrorIs(t, errWrongPass, apperrors.ErrUnauthorized)
}

func TestAuthenticate_Success(t *testing.T) {
	users := new(mockUserRepository)
	svc := newTestAuthService(users, new(mockSessionRepository))

	user := librarianUser(t)
	users.On("GetByUsername", mock.Anything, "alice").Return(user, nil)

	got, err := svc.Authenticate(context.Background(), "alice", "Sup3r-secret")

	require.NoError(t, err)
	assert.Equal(t, "user-1", got.ID)
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestLogin_IssuesTokensAndRegistersSession(t *testing.T) {
	users := new(mockUserRepository)
	sessions := new(mockSessionRepository)
	svc := newTestAuthService(users, sessions)

	user := librarianUser(t)
	users.On("GetByUsername", mock.Anything, "alice").Return(user, nil)
	sessions.On("Save", mock.Anything, mock.AnythingOfType("string"), "user-1", 7*24*time.Hour).Return(nil)

	got, pair, err := svc.Login(context.Background(), LoginInput{Username: "alice", Password: "Sup3r-secret"})

	require.NoError(t, err)
	assert.Equal(t, "user-1", got.ID)
	assert.Equal(t, "bearer", pair.TokenType)

	// Access token carries the role and deduplicated permission snapshot.
	claims, err := newTestTokenManager().Parse(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, auth.KindAccess, claims.Kind)
	assert.Equal(t, []string{"librarian", "auditor"}, claims.Roles)
	assert.Equal(t, []string{"books:read", "books:write"}, claims.Permissions)

	// Refresh token carries identity only, and its jti is what got registered.
	refreshClaims, err := newTestTokenManager().Parse(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, auth.KindRefresh, refreshClaims.Kind)
	assert.Empty(t, refreshClaims.Permissions)
	sessions.AssertCalled(t, "Save", mock.Anything, refreshClaims.ID, "user-1", 7*24*time.Hour)
}

func TestLogin_BadCredentials(t *testing.T) {
	users := new(mockUserRepository)
	sessions := new(mockSessionRepository)
	svc := newTestAuthService(users, sessions)

	users.On("GetByUsername", mock.Anything, "alice").Return(nil, apperrors.ErrNotFound)

	_, _, err := svc.Login(context.Background(), LoginInput{Username: "alice", Password: "nope"})

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	sessions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_EmptyCredentials(t *testing.T) {
	svc := newTestAuthService(new(mockUserRepository), new(mockSessionRepository))

	_, _, err := svc.Login(context.Background(), LoginInput{})

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

// ---------------------------------------------------------------------------
// VerifyAccess
// ---------------------------------------------------------------------------

func TestVerifyAccess_RejectsRefreshToken(t *testing.T) {
	svc := newTestAuthService(new(mockUserRepository), new(mockSessionRepository))

	refresh, _, err := newTestTokenManager().IssueRefreshToken("user-1")
	require.NoError(t, err)

	_, err = svc.VerifyAccess(refresh)
	assert.ErrorIs(t, err, apperrors.ErrTokenWrongKind)
}

func TestVerifyAccess_ValidToken(t *testing.T) {
	svc := newTestAuthService(new(mockUserRepository), new(mockSessionRepository))

	access, _, err := newTestTokenManager().IssueAccessToken("user-1", []string{"librarian"}, []string{"books:read"})
	require.NoError(t, err)

	claims, err := svc.VerifyAccess(access)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, []string{"books:read"}, claims.Permissions)
}

// ---------------------------------------------------------------------------
// Refresh
// ---------------------------------------------------------------------------

func TestRefresh_IssuesNewAccessTokenOnly(t *testing.T) {
	users := new(mockUserRepository)
	sessions := new(mockSessionRepository)
	svc := newTestAuthService(users, sessions)

	user := librarianUser(t)
	refresh, jti, err := newTestTokenManager().IssueRefreshToken("user-1")
	require.NoError(t, err)

	sessions.On("Get", mock.Anything, jti).Return("user-1", nil)
	users.On("GetByID", mock.Anything, "user-1").Return(user, nil)

	accessToken, err := svc.Refresh(context.Background(), refresh)

	require.NoError(t, err)
	claims, err := newTestTokenManager().Parse(accessToken)
	require.NoError(t, err)
	assert.Equal(t, auth.KindAccess, claims.Kind)
	assert.Equal(t, []string{"books:read", "books:write"}, claims.Permissions)

	// The stored refresh session is untouched: no new Save, no Delete.
	sessions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	sessions.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestRefresh_ReusableUntilRevoked(t *testing.T) {
	users := new(mockUserRepository)
	sessions := new(mockSessionRepository)
	svc := newTestAuthService(users, sessions)

	user := librarianUser(t)
	refresh, jti, err := newTestTokenManager().IssueRefreshToken("user-1")
	require.NoError(t, err)

	sessions.On("Get", mock.Anything, jti).Return("user-1", nil)
	users.On("GetByID", mock.Anything, "user-1").Return(user, nil)

	_, err = svc.Refresh(context.Background(), refresh)
	require.NoError(t, err)
	_, err = svc.Refresh(context.Background(), refresh)
	require.NoError(t, err)
}

func TestRefresh_MissingToken(t *testing.T) {
	svc := newTestAuthService(new(mockUserRepository), new(mockSessionRepository))

	_, err := svc.Refresh(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrRefreshMissing)
}

func TestRefresh_AccessTokenRejected(t *testing.T) {
	svc := newTestAuthService(new(mockUserRepository), new(mockSessionRepository))

	access, _, err := newTestTokenManager().IssueAccessToken("user-1", nil, nil)
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), access)
	assert.ErrorIs(t, err, apperrors.ErrTokenWrongKind)
}

func TestRefresh_UnregisteredSession(t *testing.T) {
	users := new(mockUserRepository)
	sessions := new(mockSessionRepository)
	svc := newTestAuthService(users, sessions)

	refresh, jti, err := newTestTokenManager().IssueRefreshToken("user-1")
	require.NoError(t, err)

	sessions.On("Get", mock.Anything, jti).Return("", apperrors.ErrNotFound)

	_, err = svc.Refresh(context.Background(), refresh)
	assert.ErrorIs(t, err, apperrors.ErrRefreshInvalid)
}

func TestRefresh_RegistryUserMismatch(t *testing.T) {
	users := new(mockUserRepository)
	sessions := new(mockSessionRepository)
	svc := newTestAuthService(users, sessions)

	refresh, jti, err := newTestTokenManager().IssueRefreshToken("user-1")
	require.NoError(t, err)

	sessions.On("Get", mock.Anything, jti).Return("someone-else", nil)

	_, err = svc.Refresh(context.Background(), refresh)
	assert.ErrorIs(t, err, apperrors.ErrRefreshInvalid)
}

func TestRefresh_ExpiredToken(t *testing.T) {
	users := new(mockUserRepository)
	sessions := new(mockSessionRepository)
	svc := newTestAuthService(users, sessions)

	expiredManager := auth.NewTokenManager("test-secret-key-for-testing-1234", 30*time.Minute, -time.Minute)
	refresh, _, err := expiredManager.IssueRefreshToken("user-1")
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), refresh)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

// ---------------------------------------------------------------------------
// Logout
// ---------------------------------------------------------------------------

func TestLogout_RemovesSession(t *testing.T) {
	users := new(mockUserRepository)
	sessions := new(mockSessionRepository)
	svc := newTestAuthService(users, sessions)

	refresh, jti, err := newTestTokenManager().IssueRefreshToken("user-1")
	require.NoError(t, err)

	sessions.On("Delete", mock.Anything, jti).Return(nil)

	err = svc.Logout(context.Background(), refresh)
	require.NoError(t, err)
	sessions.AssertCalled(t, "Delete", mock.Anything, jti)
}

func TestLogout_MalformedTokenIsNoop(t *testing.T) {
	sessions := new(mockSessionRepository)
	svc := newTestAuthService(new(mockUserRepository), sessions)

	err := svc.Logout(context.Background(), "garbage-token")

	assert.NoError(t, err)
	sessions.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestLogout_EmptyTokenIsNoop(t *testing.T) {
	sessions := new(mockSessionRepository)
	svc := newTestAuthService(new(mockUserRepository), sessions)

	assert.NoError(t, svc.Logout(context.Background(), ""))
	sessions.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestLogout_RevokedSessionBlocksRefresh(t *testing.T) {
	users := new(mockUserRepository)
	sessions := new(mockSessionRepository)
	svc := newTestAuthService(users, sessions)

	refresh, jti, err := newTestTokenManager().IssueRefreshToken("user-1")
	require.NoError(t, err)

	sessions.On("Delete", mock.Anything, jti).Return(nil)
	sessions.On("Get", mock.Anything, jti).Return("", apperrors.ErrNotFound)

	require.NoError(t, svc.Logout(context.Background(), refresh))

	_, err = svc.Refresh(context.Background(), refresh)
	assert.ErrorIs(t, err, apperrors.ErrRefreshInvalid)
}

// ---------------------------------------------------------------------------
// ChangePassword
// ---------------------------------------------------------------------------

func TestChangePassword_Success(t *testing.T) {
	users := new(mockUserRepository)
	sessions := new(mockSessionRepository)
	svc := newTestAuthService(users, sessions)

	user := librarianUser(t)
	users.On("GetByID", mock.Anything, "user-1").Return(user, nil)
	users.On("UpdatePassword", mock.Anything, "user-1", mock.AnythingOfType("string")).Return(nil)

	err := svc.ChangePassword(context.Background(), "user-1", ChangePasswordInput{
		CurrentPassword: "Sup3r-secret",
		NewPassword:     "N3w-password!",
		ConfirmPassword: "N3w-password!",
	})

	require.NoError(t, err)
	users.AssertExpectations(t)

	// Sessions are left alone: a password change does not log anyone out.
	sessions.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	users := new(mockUserRepository)
	svc := newTestAuthService(users, new(mockSessionRepository))

	users.On("GetByID", mock.Anything, "user-1").Return(librarianUser(t), nil)

	err := svc.ChangePassword(context.Background(), "user-1", ChangePasswordInput{
		CurrentPassword: "not-my-password",
		NewPassword:     "N3w-password!",
		ConfirmPassword: "N3w-password!",
	})

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestChangePassword_ConfirmationMismatch(t *testing.T) {
	svc := newTestAuthService(new(mockUserRepository), new(mockSessionRepository))

	err := svc.ChangePassword(context.Background(), "user-1", ChangePasswordInput{
		CurrentPassword: "Sup3r-secret",
		NewPassword:     "N3w-password!",
		ConfirmPassword: "different",
	})

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
