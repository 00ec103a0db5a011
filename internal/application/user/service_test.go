package user

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/unalone/unalone-api/internal/domain"
)

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserStore) UpdateAvatar(ctx context.Context, userID, avatarKey string) error {
	return m.Called(ctx, userID, avatarKey).Error(0)
}

type mockObjectStore struct{ mock.Mock }

func (m *mockObjectStore) Upload(ctx context.Context, key string, r io.Reader, contentType string) error {
	return m.Called(ctx, key, r, contentType).Error(0)
}

func (m *mockObjectStore) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

func (m *mockObjectStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func TestUploadAvatar_RejectsUnsupportedExtension(t *testing.T) {
	repo := &mockUserStore{}
	store := &mockObjectStore{}
	svc := NewService(repo, store)

	_, err := svc.UploadAvatar(context.Background(), "u1", "me.gif", strings.NewReader("x"))
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	store.AssertNotCalled(t, "Upload")
}

func TestUploadAvatar_StoresAndPresigns(t *testing.T) {
	repo := &mockUserStore{}
	store := &mockObjectStore{}
	svc := NewService(repo, store)

	repo.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)
	store.On("Upload", mock.Anything, "avatars/u1.png", mock.Anything, "image/png").Return(nil)
	repo.On("UpdateAvatar", mock.Anything, "u1", "avatars/u1.png").Return(nil)
	store.On("PresignedURL", mock.Anything, "avatars/u1.png", 15*time.Minute).
		Return("https://bucket/avatars/u1.png?sig=abc", nil)

	url, err := svc.UploadAvatar(context.Background(), "u1", "me.png", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "https://bucket/avatars/u1.png?sig=abc", url)
	store.AssertNotCalled(t, "Delete")
	repo.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestUploadAvatar_DeletesOldKeyOnExtensionChange(t *testing.T) {
	repo := &mockUserStore{}
	store := &mockObjectStore{}
	svc := NewService(repo, store)

	repo.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", AvatarKey: "avatars/u1.jpg"}, nil)
	store.On("Upload", mock.Anything, "avatars/u1.png", mock.Anything, "image/png").Return(nil)
	repo.On("UpdateAvatar", mock.Anything, "u1", "avatars/u1.png").Return(nil)
	store.On("Delete", mock.Anything, "avatars/u1.jpg").Return(nil)
	store.On("PresignedURL", mock.Anything, "avatars/u1.png", 15*time.Minute).
		Return("https://bucket/avatars/u1.png?sig=abc", nil)

	_, err := svc.UploadAvatar(context.Background(), "u1", "me.png", strings.NewReader("x"))
	require.NoError(t, err)
	store.AssertExpectations(t)
}
