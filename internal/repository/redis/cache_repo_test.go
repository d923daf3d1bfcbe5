package redis

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yourusername/redweb-api/internal/pkg/errors"
)

func newTestCacheRepo(t *testing.T) (*CacheRepo, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo, err := NewCacheRepo(client)
	require.NoError(t, err)
	return repo, srv
}

func TestNewCacheRepo_NilClient(t *testing.T) {
	_, err := NewCacheRepo(nil)

	assert.Error(t, err)
}

func TestCacheRepo_IncrementWindow(t *testing.T) {
	// Arrange
	repo, srv := newTestCacheRepo(t)

	// Act
	first, firstTTL, err := repo.IncrementWindow("ratelimit:ip", time.Minute)
	require.NoError(t, err)
	second, _, err := repo.IncrementWindow("ratelimit:ip", time.Minute)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
	assert.Equal(t, time.Minute, firstTTL)
	assert.Equal(t, time.Minute, srv.TTL("ratelimit:ip"), "Окно ставится на первом запросе")

	srv.FastForward(time.Minute)
	count, _, err := repo.IncrementWindow("ratelimit:ip", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "После окна счетчик начинается заново")
}

func TestCacheRepo_IncrementWindow_RestoresMissingTTL(t *testing.T) {
	// Arrange: счетчик остался без срока жизни после неудачного EXPIRE
	repo, srv := newTestCacheRepo(t)
	require.NoError(t, srv.Set("ratelimit:ip", "20"))
	require.Zero(t, srv.TTL("ratelimit:ip"))

	// Act
	count, ttl, err := repo.IncrementWindow("ratelimit:ip", time.Minute)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(21), count)
	assert.Equal(t, time.Minute, ttl)
	assert.Equal(t, time.Minute, srv.TTL("ratelimit:ip"), "Ключ снова истекает")

	srv.FastForward(time.Minute)
	assert.False(t, srv.Exists("ratelimit:ip"), "Блокировка не вечная")
}

func TestCacheRepo_IncrementWindow_KeepsRunningWindow(t *testing.T) {
	repo, srv := newTestCacheRepo(t)
	_, _, err := repo.IncrementWindow("ratelimit:ip", time.Minute)
	require.NoError(t, err)

	srv.FastForward(20 * time.Second)
	_, ttl, err := repo.IncrementWindow("ratelimit:ip", time.Minute)

	require.NoError(t, err)
	assert.Equal(t, 40*time.Second, ttl, "Повторный запрос не продлевает окно")
}

func TestCacheRepo_SetNXAndGet(t *testing.T) {
	repo, srv := newTestCacheRepo(t)

	ok, err := repo.SetNX("verify:cooldown:register:a@b.com", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.SetNX("verify:cooldown:register:a@b.com", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "Пауза уже активна")

	srv.FastForward(time.Minute)
	ok, err = repo.SetNX("verify:cooldown:register:a@b.com", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "После паузы ключ свободен")

	_, err = repo.Get("missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCacheRepo_SetExistsDelete(t *testing.T) {
	repo, _ := newTestCacheRepo(t)

	require.NoError(t, repo.Set("session:revoked:jti", "1", time.Hour))
	exists, err := repo.Exists("session:revoked:jti")
	require.NoError(t, err)
	assert.True(t, exists)

	val, err := repo.Get("session:revoked:jti")
	require.NoError(t, err)
	assert.Equal(t, "1", val)

	require.NoError(t, repo.Delete("session:revoked:jti"))
	exists, err = repo.Exists("session:revoked:jti")
	require.NoError(t, err)
	assert.False(t, exists)
}
