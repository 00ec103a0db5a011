package user

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/unalone/unalone-api/internal/domain"
	s3infra "github.com/unalone/unalone-api/internal/infrastructure/s3"
)

type Service interface {
	// UploadAvatar stores the image in object storage, records its key on
	// the user row and returns a presigned URL for immediate display.
	UploadAvatar(ctx context.Context, userID, filename string, r io.Reader) (string, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	UpdateAvatar(ctx context.Context, userID, avatarKey string) error
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type service struct {
	repo  userStore
	store objectStore
}

func NewService(repo userStore, store objectStore) Service {
	return &service{repo: repo, store: store}
}

func (s *service) UploadAvatar(ctx context.Context, userID, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(path.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return "", fmt.Errorf("unsupported image type %q: %w", ext, domain.ErrBadRequest)
	}

	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return "", err
	}

	key := "avatars/" + userID + ext
	if err := s.store.Upload(ctx, key, r, s3infra.ContentTypeForFilename(filename)); err != nil {
		return "", err
	}
	if err := s.repo.UpdateAvatar(ctx, userID, key); err != nil {
		return "", err
	}
	// A previous avatar with a different extension would be orphaned.
	if u.AvatarKey != "" && u.AvatarKey != key {
		if err := s.store.Delete(ctx, u.AvatarKey); err != nil {
			slog.Warn("failed to delete previous avatar", "user_id", userID, "key", u.AvatarKey, "err", err)
		}
	}
	return s.store.PresignedURL(ctx, key, 15*time.Minute)
}
