package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/shelfable/bookstore/pkg/errors"
)

func setupTestRedis(t *testing.T) (*SessionRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewSessionRepository(client), mr
}

func TestSessionRepository_SaveAndGet(t *testing.T) {
	repo, _ := setupTestRedis(t)

	err := repo.Save(context.Background(), "jti-001", "user-001", 7*24*time.Hour)
	require.NoError(t, err)

	userID, err := repo.Get(context.Background(), "jti-001")
	require.NoError(t, err)
	assert.Equal(t, "user-001", userID)
}

func TestSessionRepository_Save_SetsTTL(t *testing.T) {
	repo, mr := setupTestRedis(t)

	err := repo.Save(context.Background(), "jti-ttl", "user-001", 7*24*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 7*24*time.Hour, mr.TTL("refresh:jti-ttl"))
}

func TestSessionRepository_Get_NotFound(t *testing.T) {
	repo, _ := setupTestRedis(t)

	_, err := repo.Get(context.Background(), "missing-jti")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSessionRepository_Get_Expired(t *testing.T) {
	repo, mr := setupTestRedis(t)

	err := repo.Save(context.Background(), "jti-exp", "user-001", time.Minute)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = repo.Get(context.Background(), "jti-exp")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSessionRepository_Delete(t *testing.T) {
	repo, _ := setupTestRedis(t)

	err := repo.Save(context.Background(), "jti-del", "user-001", time.Hour)
	require.NoError(t, err)

	err = repo.Delete(context.Background(), "jti-del")
	require.NoError(t, err)

	_, err = repo.Get(context.Background(), "jti-del")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSessionRepository_Delete_MissingIsNoop(t *testing.T) {
	repo, _ := setupTestRedis(t)

	assert.NoError(t, repo.Delete(context.Background(), "never-existed"))
}

func TestSessionRepository_SessionsAreIndependent(t *testing.T) {
	repo, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "jti-a", "user-001", time.Hour))
	require.NoError(t, repo.Save(ctx, "jti-b", "user-001", time.Hour))

	// Revoking one session leaves the other intact.
	require.NoError(t, repo.Delete(ctx, "jti-a"))

	userID, err := repo.Get(ctx, "jti-b")
	require.NoError(t, err)
	assert.Equal(t, "user-001", userID)
}
