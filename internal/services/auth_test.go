package services

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkarpov/studysync/internal/common"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func TestCacheSessionAndOfflineLogin(t *testing.T) {
	st := openStore(t)
	svc := NewAuthService(st, discardLog(), clock.NewMock(), 0)
	ctx := context.Background()

	token := signedToken(t, jwt.MapClaims{"sub": "u1", "name": "amara", "role": "student"})
	require.NoError(t, svc.CacheSession(ctx, token, []byte("s3cret")))

	cache, err := svc.OfflineLogin(ctx, "amara", []byte("s3cret"))
	require.NoError(t, err)
	assert.Equal(t, "u1", cache.UserID)
	assert.Equal(t, "amara", cache.UserName)
	assert.Equal(t, "student", cache.UserRole)
}

func TestOfflineLogin_WrongPassword(t *testing.T) {
	st := openStore(t)
	svc := NewAuthService(st, discardLog(), clock.NewMock(), 0)
	ctx := context.Background()

	token := signedToken(t, jwt.MapClaims{"sub": "u1", "name": "amara", "role": "student"})
	require.NoError(t, svc.CacheSession(ctx, token, []byte("s3cret")))

	_, err := svc.OfflineLogin(ctx, "amara", []byte("wrong"))
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestOfflineLogin_UnknownUser(t *testing.T) {
	st := openStore(t)
	svc := NewAuthService(st, discardLog(), clock.NewMock(), 0)

	_, err := svc.OfflineLogin(context.Background(), "nobody", []byte("s3cret"))
	assert.ErrorIs(t, err, common.ErrLocalDataNotAvailable)
}

func TestOfflineLogin_ExpiredCache(t *testing.T) {
	st := openStore(t)
	mock := clock.NewMock()
	svc := NewAuthService(st, discardLog(), mock, 0)
	ctx := context.Background()

	token := signedToken(t, jwt.MapClaims{"sub": "u1", "name": "amara", "role": "student"})
	require.NoError(t, svc.CacheSession(ctx, token, []byte("s3cret")))

	mock.Add(DefaultAuthCacheTTL + time.Hour)

	_, err := svc.OfflineLogin(ctx, "amara", []byte("s3cret"))
	assert.ErrorIs(t, err, common.ErrLocalDataNotAvailable)
}

func TestCacheSession_RejectsMalformedToken(t *testing.T) {
	st := openStore(t)
	svc := NewAuthService(st, discardLog(), clock.NewMock(), 0)

	err := svc.CacheSession(context.Background(), "not-a-jwt", []byte("s3cret"))
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestCacheSession_RejectsTokenWithoutSubject(t *testing.T) {
	st := openStore(t)
	svc := NewAuthService(st, discardLog(), clock.NewMock(), 0)

	token := signedToken(t, jwt.MapClaims{"name": "amara", "role": "student"})
	err := svc.CacheSession(context.Background(), token, []byte("s3cret"))
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestCacheSession_OverwritesPreviousSession(t *testing.T) {
	st := openStore(t)
	svc := NewAuthService(st, discardLog(), clock.NewMock(), 0)
	ctx := context.Background()

	token := signedToken(t, jwt.MapClaims{"sub": "u1", "name": "amara", "role": "student"})
	require.NoError(t, svc.CacheSession(ctx, token, []byte("old-pass")))
	require.NoError(t, svc.CacheSession(ctx, token, []byte("new-pass")))

	_, err := svc.OfflineLogin(ctx, "amara", []byte("old-pass"))
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	_, err = svc.OfflineLogin(ctx, "amara", []byte("new-pass"))
	assert.NoError(t, err)
}

func TestClearOfflineData(t *testing.T) {
	st := openStore(t)
	svc := NewAuthService(st, discardLog(), clock.NewMock(), 0)
	ctx := context.Background()

	token := signedToken(t, jwt.MapClaims{"sub": "u1", "name": "amara", "role": "student"})
	require.NoError(t, svc.CacheSession(ctx, token, []byte("s3cret")))

	require.NoError(t, svc.ClearOfflineData(ctx))

	_, err := svc.OfflineLogin(ctx, "amara", []byte("s3cret"))
	assert.ErrorIs(t, err, common.ErrLocalDataNotAvailable)
}
