package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/unalone/unalone-api/internal/domain"
)

type Service interface {
	// Refresh exchanges a valid session id for a fresh access token.
	// The session row itself is not rotated or extended.
	Refresh(ctx context.Context, sessionID string) (bearer string, err error)
	// Logout deletes the session row. Unknown ids are not an error.
	Logout(ctx context.Context, sessionID string) error
	// CurrentUser resolves an authenticated user id to its public fields.
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
}

type sessionStore interface {
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Delete(ctx context.Context, sessionID string) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type jwtSigner interface {
	Sign(userID string) (string, error)
}

// avatarResolver turns a stored avatar object key into a fetchable URL.
type avatarResolver interface {
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type service struct {
	sessionRepo sessionStore
	userRepo    userStore
	jwtProvider jwtSigner
	avatars     avatarResolver
}

func NewService(sessionRepo sessionStore, userRepo userStore, jwtProvider jwtSigner, avatars avatarResolver) Service {
	return &service{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		jwtProvider: jwtProvider,
		avatars:     avatars,
	}
}

func (s *service) Refresh(ctx context.Context, sessionID string) (string, error) {
	sess, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("invalid session: %w", domain.ErrForbidden)
		}
		return "", err
	}
	if sess.Expired(time.Now()) {
		// Reclaim the dead row on read; a crashed logout or an abandoned
		// client would otherwise leave it forever.
		if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
			slog.Warn("failed to delete expired session", "session_id", sessionID, "err", err)
		}
		return "", fmt.Errorf("session expired: %w", domain.ErrForbidden)
	}
	return s.jwtProvider.Sign(sess.UserID)
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	return s.sessionRepo.Delete(ctx, sessionID)
}

func (s *service) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.AvatarKey != "" && s.avatars != nil {
		url, err := s.avatars.PresignedURL(ctx, u.AvatarKey, 15*time.Minute)
		if err != nil {
			slog.Warn("failed to presign avatar URL", "user_id", userID, "err", err)
		} else {
			u.AvatarURL = url
		}
	}
	return u, nil
}
