package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/dkarpov/studysync/internal/common"
	"github.com/dkarpov/studysync/internal/logging"
	"github.com/dkarpov/studysync/internal/models"
	"github.com/dkarpov/studysync/internal/store"
)

// DefaultAuthCacheTTL is how long a cached session remains usable for
// offline login.
const DefaultAuthCacheTTL = 7 * 24 * time.Hour

// sessionClaims are the portal token claims the engine cares about. The token
// is issued and verified by the backend; the client only extracts identity.
type sessionClaims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService caches session data after a successful online login so the
// host can fall back to offline login while disconnected.
type AuthService struct {
	store *store.Store
	log   logging.Logger
	clk   clock.Clock
	ttl   time.Duration
}

func NewAuthService(st *store.Store, log logging.Logger, clk clock.Clock, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = DefaultAuthCacheTTL
	}
	return &AuthService{store: st, log: log, clk: clk, ttl: ttl}
}

// CacheSession stores identity claims from the portal access token plus a
// bcrypt verifier of the password, enabling offline login for the TTL window.
// Called once per successful online authentication.
func (s *AuthService) CacheSession(ctx context.Context, accessToken string, password []byte) error {
	claims := &sessionClaims{}
	// The backend already verified this token during login; the client has no
	// signing key, so parse without signature verification.
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return fmt.Errorf("failed to parse access token: %w", errors.Join(common.ErrValidation, err))
	}
	if claims.Subject == "" {
		return fmt.Errorf("access token has no subject: %w", common.ErrValidation)
	}

	verifier, err := bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.clk.Now().UTC()
	cache := &models.AuthCache{
		UserID:    claims.Subject,
		UserName:  claims.Name,
		UserRole:  claims.Role,
		Verifier:  verifier,
		CachedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.AuthCache().Set(ctx, cache); err != nil {
		return fmt.Errorf("failed to cache session: %w", err)
	}
	return nil
}

// OfflineLogin validates credentials against the cached session. Returns
// common.ErrLocalDataNotAvailable when nothing usable is cached (absent or
// expired) and common.ErrUnauthorized when the password does not match.
func (s *AuthService) OfflineLogin(ctx context.Context, userName string, password []byte) (*models.AuthCache, error) {
	cache, err := s.store.AuthCache().GetByUserName(ctx, userName)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrLocalDataNotAvailable
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read auth cache: %w", err)
	}

	if cache.Expired(s.clk.Now().UTC()) {
		return nil, common.ErrLocalDataNotAvailable
	}

	if err := bcrypt.CompareHashAndPassword(cache.Verifier, password); err != nil {
		return nil, common.ErrUnauthorized
	}
	return cache, nil
}

// ClearOfflineData wipes all cached sessions (e.g., on logout).
func (s *AuthService) ClearOfflineData(ctx context.Context) error {
	return s.store.AuthCache().Clear(ctx)
}
