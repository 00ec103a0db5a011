package plan

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/unalone/unalone-api/internal/domain"
	"github.com/unalone/unalone-api/internal/pkg/id"
)

type Service interface {
	Nearby(ctx context.Context, q domain.NearbyQuery) ([]domain.Plan, error)
	Create(ctx context.Context, userID string, req domain.CreatePlanRequest) (*domain.Plan, error)
	Join(ctx context.Context, planID, userID string) error
}

type planStore interface {
	Nearby(ctx context.Context, q domain.NearbyQuery) ([]domain.Plan, error)
	Create(ctx context.Context, planID, userID string, req domain.CreatePlanRequest, startsAt time.Time) (*domain.Plan, error)
	Owner(ctx context.Context, planID string) (string, error)
	Join(ctx context.Context, planID, userID string) error
}

type service struct {
	repo planStore
}

func NewService(repo planStore) Service {
	return &service{repo: repo}
}

// Nearby passes the query through to PostGIS and normalizes the result
// shape: the store's meter distances become kilometers with one decimal.
func (s *service) Nearby(ctx context.Context, q domain.NearbyQuery) ([]domain.Plan, error) {
	plans, err := s.repo.Nearby(ctx, q)
	if err != nil {
		return nil, err
	}
	for i := range plans {
		plans[i].Distance = formatKm(plans[i].DistanceMeters)
	}
	return plans, nil
}

func (s *service) Create(ctx context.Context, userID string, req domain.CreatePlanRequest) (*domain.Plan, error) {
	startsAt, err := time.Parse(time.RFC3339, req.Datetime)
	if err != nil {
		return nil, fmt.Errorf("datetime must be RFC 3339: %w", domain.ErrBadRequest)
	}
	if !startsAt.After(time.Now()) {
		return nil, fmt.Errorf("date must be in the future: %w", domain.ErrBadRequest)
	}
	p, err := s.repo.Create(ctx, id.New(), userID, req, startsAt)
	if err != nil {
		return nil, err
	}
	p.Distance = formatKm(0)
	return p, nil
}

// Join adds the caller to a plan. Creators are already counted as the
// first participant and cannot join their own plan.
func (s *service) Join(ctx context.Context, planID, userID string) error {
	ownerID, err := s.repo.Owner(ctx, planID)
	if err != nil {
		return err
	}
	if ownerID == userID {
		return fmt.Errorf("cannot join own plan: %w", domain.ErrConflict)
	}
	return s.repo.Join(ctx, planID, userID)
}

func formatKm(meters float64) string {
	return strconv.FormatFloat(meters/1000, 'f', 1, 64)
}
