package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/unalone/unalone-api/internal/domain"
)

// --- mocks ---

type mockSessionStore struct{ mock.Mock }

func (m *mockSessionStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSessionStore) Delete(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockJWTSigner struct{ mock.Mock }

func (m *mockJWTSigner) Sign(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

type mockAvatarResolver struct{ mock.Mock }

func (m *mockAvatarResolver) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

// --- Refresh ---

func TestRefresh_UnknownSession(t *testing.T) {
	ss, us, jwt := &mockSessionStore{}, &mockUserStore{}, &mockJWTSigner{}
	ss.On("Get", mock.Anything, "gone").Return(nil, domain.ErrNotFound)
	svc := NewService(ss, us, jwt, nil)

	_, err := svc.Refresh(context.Background(), "gone")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestRefresh_ExpiredSessionIsDeleted(t *testing.T) {
	ss, us, jwt := &mockSessionStore{}, &mockUserStore{}, &mockJWTSigner{}
	ss.On("Get", mock.Anything, "s1").Return(&domain.Session{
		SessionID: "s1",
		UserID:    "u1",
		ExpiresAt: time.Now().Add(-time.Minute),
	}, nil)
	ss.On("Delete", mock.Anything, "s1").Return(nil)
	svc := NewService(ss, us, jwt, nil)

	_, err := svc.Refresh(context.Background(), "s1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	ss.AssertCalled(t, "Delete", mock.Anything, "s1")
	jwt.AssertNotCalled(t, "Sign", mock.Anything)
}

func TestRefresh_ValidSessionMintsAccessToken(t *testing.T) {
	ss, us, jwt := &mockSessionStore{}, &mockUserStore{}, &mockJWTSigner{}
	expiresAt := time.Now().Add(24 * time.Hour)
	ss.On("Get", mock.Anything, "s1").Return(&domain.Session{
		SessionID: "s1",
		UserID:    "u1",
		ExpiresAt: expiresAt,
	}, nil)
	jwt.On("Sign", "u1").Return("fresh-bearer", nil)
	svc := NewService(ss, us, jwt, nil)

	bearer, err := svc.Refresh(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "fresh-bearer", bearer)
	// The session row is not rotated or extended.
	ss.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

// --- Logout ---

func TestLogout_Idempotent(t *testing.T) {
	ss, us, jwt := &mockSessionStore{}, &mockUserStore{}, &mockJWTSigner{}
	ss.On("Delete", mock.Anything, "s1").Return(nil)
	svc := NewService(ss, us, jwt, nil)

	require.NoError(t, svc.Logout(context.Background(), "s1"))
	require.NoError(t, svc.Logout(context.Background(), "s1"))
	ss.AssertNumberOfCalls(t, "Delete", 2)
}

// --- CurrentUser ---

func TestCurrentUser_Gone(t *testing.T) {
	ss, us, jwt := &mockSessionStore{}, &mockUserStore{}, &mockJWTSigner{}
	us.On("Get", mock.Anything, "u1").Return(nil, domain.ErrNotFound)
	svc := NewService(ss, us, jwt, nil)

	_, err := svc.CurrentUser(context.Background(), "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCurrentUser_ResolvesAvatarURL(t *testing.T) {
	ss, us, jwt, av := &mockSessionStore{}, &mockUserStore{}, &mockJWTSigner{}, &mockAvatarResolver{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{
		UserID:    "u1",
		Name:      "A",
		AvatarKey: "avatars/u1.png",
	}, nil)
	av.On("PresignedURL", mock.Anything, "avatars/u1.png", mock.Anything).
		Return("https://cdn.example.com/avatars/u1.png", nil)
	svc := NewService(ss, us, jwt, av)

	u, err := svc.CurrentUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/avatars/u1.png", u.AvatarURL)
}
