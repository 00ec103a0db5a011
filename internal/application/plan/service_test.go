package plan

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/unalone/unalone-api/internal/domain"
)

type mockPlanStore struct{ mock.Mock }

func (m *mockPlanStore) Nearby(ctx context.Context, q domain.NearbyQuery) ([]domain.Plan, error) {
	args := m.Called(ctx, q)
	if p, _ := args.Get(0).([]domain.Plan); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockPlanStore) Create(ctx context.Context, planID, userID string, req domain.CreatePlanRequest, startsAt time.Time) (*domain.Plan, error) {
	args := m.Called(ctx, planID, userID, req, startsAt)
	if p, _ := args.Get(0).(*domain.Plan); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockPlanStore) Owner(ctx context.Context, planID string) (string, error) {
	args := m.Called(ctx, planID)
	return args.String(0), args.Error(1)
}
func (m *mockPlanStore) Join(ctx context.Context, planID, userID string) error {
	return m.Called(ctx, planID, userID).Error(0)
}

func validCreateReq() domain.CreatePlanRequest {
	return domain.CreatePlanRequest{
		Title:           "Coffee & chess",
		Lat:             52.52,
		Lng:             13.405,
		PlaceName:       "Alexanderplatz",
		Datetime:        time.Now().Add(2 * time.Hour).Format(time.RFC3339),
		MaxParticipants: 4,
	}
}

func TestNearby_FormatsDistanceToOneDecimal(t *testing.T) {
	repo := &mockPlanStore{}
	repo.On("Nearby", mock.Anything, mock.Anything).Return([]domain.Plan{
		{PlanID: "p1", DistanceMeters: 1234},
		{PlanID: "p2", DistanceMeters: 250},
		{PlanID: "p3", DistanceMeters: 9960},
	}, nil)
	svc := NewService(repo)

	plans, err := svc.Nearby(context.Background(), domain.NearbyQuery{Lat: 52, Lng: 13, Radius: 10000, Filter: domain.FilterAll})
	require.NoError(t, err)
	require.Len(t, plans, 3)
	assert.Equal(t, "1.2", plans[0].Distance)
	assert.Equal(t, "0.3", plans[1].Distance)
	assert.Equal(t, "10.0", plans[2].Distance)
}

func TestCreate_RejectsPastAndMalformedDatetime(t *testing.T) {
	svc := NewService(&mockPlanStore{})

	req := validCreateReq()
	req.Datetime = time.Now().Add(-time.Hour).Format(time.RFC3339)
	_, err := svc.Create(context.Background(), "u1", req)
	assert.ErrorIs(t, err, domain.ErrBadRequest)

	req.Datetime = "next tuesday"
	_, err = svc.Create(context.Background(), "u1", req)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestCreate_Success(t *testing.T) {
	repo := &mockPlanStore{}
	repo.On("Create", mock.Anything, mock.Anything, "u1", mock.Anything, mock.Anything).
		Return(&domain.Plan{PlanID: "p1", Title: "Coffee & chess", Participants: 1}, nil)
	svc := NewService(repo)

	p, err := svc.Create(context.Background(), "u1", validCreateReq())
	require.NoError(t, err)
	assert.Equal(t, "0.0", p.Distance)
	assert.Equal(t, 1, p.Participants)
}

func TestJoin_OwnPlanRejected(t *testing.T) {
	repo := &mockPlanStore{}
	repo.On("Owner", mock.Anything, "p1").Return("u1", nil)
	svc := NewService(repo)

	err := svc.Join(context.Background(), "p1", "u1")
	assert.ErrorIs(t, err, domain.ErrConflict)
	repo.AssertNotCalled(t, "Join", mock.Anything, mock.Anything, mock.Anything)
}

func TestJoin_UnknownPlan(t *testing.T) {
	repo := &mockPlanStore{}
	repo.On("Owner", mock.Anything, "nope").Return("", domain.ErrNotFound)
	svc := NewService(repo)

	err := svc.Join(context.Background(), "nope", "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJoin_Success(t *testing.T) {
	repo := &mockPlanStore{}
	repo.On("Owner", mock.Anything, "p1").Return("creator", nil)
	repo.On("Join", mock.Anything, "p1", "u1").Return(nil)
	svc := NewService(repo)

	require.NoError(t, svc.Join(context.Background(), "p1", "u1"))
	repo.AssertExpectations(t)
}
