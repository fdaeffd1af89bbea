package session

import (
	"context"
	"fmt"
	"time"

	"github.com/campushaiti/campushaiti/internal/authz"
	"github.com/campushaiti/campushaiti/internal/id"
)

// Service manages session lifecycle: creation on sign-in, verification on
// every authenticated request, revocation on sign-out.
type Service struct {
	repo        Repository
	codec       *TokenCodec
	lifetime    time.Duration
	idleTimeout time.Duration
}

// NewService creates a session service.
func NewService(repo Repository, codec *TokenCodec, lifetime, idleTimeout time.Duration) *Service {
	return &Service{
		repo:        repo,
		codec:       codec,
		lifetime:    lifetime,
		idleTimeout: idleTimeout,
	}
}

// Create opens a session for a signed-in user and returns the session
// record plus the signed token that goes into the cookie.
func (s *Service) Create(ctx context.Context, userID, email string, role authz.Role, schoolID, ipAddr, userAgent string) (*Session, string, error) {
	now := time.Now()
	sess := &Session{
		ID:         id.NewUUIDv7(),
		UserID:     userID,
		IPAddress:  ipAddr,
		UserAgent:  userAgent,
		ExpiresAt:  now.Add(s.lifetime),
		CreatedAt:  now,
		LastSeenAt: now,
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}

	token, err := s.codec.Issue(sess.ID, userID, email, role, schoolID, sess.ExpiresAt)
	if err != nil {
		return nil, "", err
	}
	return sess, token, nil
}

// Verify turns a raw cookie token into a Principal. The token signature
// proves the claims; the session record proves the session is still live
// (not revoked, not expired, not idle). Any failure yields an error the
// caller treats as "no authenticated user".
func (s *Service) Verify(ctx context.Context, token string) (*Principal, error) {
	principal, err := s.codec.Verify(token)
	if err != nil {
		return nil, err
	}

	sess, err := s.repo.Get(ctx, principal.SessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	now := time.Now()
	if sess.RevokedAt != nil {
		return nil, ErrSessionRevoked
	}
	if sess.IsExpired(now) || sess.IsIdle(now, s.idleTimeout) {
		return nil, ErrSessionExpired
	}

	// Sliding idle window; failure here must not fail the request.
	_ = s.repo.Touch(ctx, sess.ID, now)

	return principal, nil
}

// Destroy revokes a single session.
func (s *Service) Destroy(ctx context.Context, sessionID string) error {
	return s.repo.Revoke(ctx, sessionID, time.Now())
}

// DestroyAllForUser revokes every session of a user, e.g. after a role
// change or password reset.
func (s *Service) DestroyAllForUser(ctx context.Context, userID string) error {
	return s.repo.RevokeByUserID(ctx, userID, time.Now())
}

// CleanupExpired removes expired session records.
func (s *Service) CleanupExpired(ctx context.Context) error {
	_, err := s.repo.DeleteExpired(ctx, time.Now())
	return err
}
