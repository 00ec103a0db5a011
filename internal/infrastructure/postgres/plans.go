package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/unalone/unalone-api/internal/domain"
)

// PlanRepo provides typed Postgres operations for the plans table.
// Distance computation and spatial containment are delegated to PostGIS;
// this repo only marshals parameters and flattens geometry columns.
type PlanRepo struct {
	db *sql.DB
}

func NewPlanRepo(db *sql.DB) *PlanRepo {
	return &PlanRepo{db: db}
}

// nearbyLimit caps a single nearby result set.
const nearbyLimit = 50

// Nearby returns plans within q.Radius meters of (q.Lat, q.Lng), joined
// with their creator, ordered by ascending distance. The time filter is
// chosen from a fixed set of SQL fragments, never interpolated from user
// input.
func (r *PlanRepo) Nearby(ctx context.Context, q domain.NearbyQuery) ([]domain.Plan, error) {
	var timeFilter string
	switch q.Filter {
	case domain.FilterToday:
		timeFilter = "AND p.time < now() + INTERVAL '24 hours'"
	case domain.FilterSoon:
		timeFilter = "AND p.time < now() + INTERVAL '3 hours'"
	}

	query := fmt.Sprintf(`
		SELECT
			p.plan_id,
			p.title,
			p.description,
			p.category,
			p.location_name,
			p.time,
			p.max_people,
			p.current_people,
			p.created_at,
			u.name AS creator_name,
			u.verification_status,
			ST_Y(p.location::geometry) AS lat,
			ST_X(p.location::geometry) AS lng,
			ST_Distance(
				p.location,
				ST_SetSRID(ST_MakePoint($2, $1), 4326)::geography
			) AS distance
		FROM plans p
		JOIN users u ON u.user_id = p.user_id
		WHERE ST_DWithin(
			p.location,
			ST_SetSRID(ST_MakePoint($2, $1), 4326)::geography,
			$3
		)
		%s
		ORDER BY distance ASC
		LIMIT %d`, timeFilter, nearbyLimit)

	rows, err := r.db.QueryContext(ctx, query, q.Lat, q.Lng, q.Radius)
	if err != nil {
		return nil, fmt.Errorf("query nearby plans: %w", err)
	}
	defer rows.Close()

	plans := []domain.Plan{}
	for rows.Next() {
		var p domain.Plan
		var creatorName, verificationStatus string
		if err := rows.Scan(
			&p.PlanID, &p.Title, &p.Description, &p.Category,
			&p.Location.PlaceName, &p.Datetime, &p.MaxParticipants, &p.Participants,
			&p.CreatedAt, &creatorName, &verificationStatus,
			&p.Location.Lat, &p.Location.Lng, &p.DistanceMeters,
		); err != nil {
			return nil, fmt.Errorf("scan nearby plan: %w", err)
		}
		p.Creator = domain.Creator{
			Name:     creatorName,
			Verified: verificationStatus == domain.VerificationEmailVerified,
			Initials: domain.Initials(creatorName),
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nearby plans: %w", err)
	}
	return plans, nil
}

// Create inserts a plan row, building the geography point from the
// request's lat/lng, and returns the stored plan joined with its creator.
func (r *PlanRepo) Create(ctx context.Context, planID, userID string, req domain.CreatePlanRequest, startsAt time.Time) (*domain.Plan, error) {
	query := `
		INSERT INTO plans (plan_id, user_id, title, description, category, location, location_name, time, max_people, current_people)
		VALUES ($1, $2, $3, $4, $5, ST_SetSRID(ST_MakePoint($7, $6), 4326)::geography, $8, $9, $10, 1)
		RETURNING plan_id, title, description, category, location_name, time, max_people, current_people, created_at
	`
	var p domain.Plan
	err := r.db.QueryRowContext(ctx, query,
		planID, userID, req.Title, req.Description, req.Category,
		req.Lat, req.Lng, req.PlaceName, startsAt, req.MaxParticipants,
	).Scan(&p.PlanID, &p.Title, &p.Description, &p.Category,
		&p.Location.PlaceName, &p.Datetime, &p.MaxParticipants, &p.Participants, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert plan: %w", err)
	}
	p.Location.Lat = req.Lat
	p.Location.Lng = req.Lng

	var creatorName, verificationStatus string
	err = r.db.QueryRowContext(ctx,
		`SELECT name, verification_status FROM users WHERE user_id = $1`, userID,
	).Scan(&creatorName, &verificationStatus)
	if err != nil {
		return nil, fmt.Errorf("load plan creator: %w", err)
	}
	p.Creator = domain.Creator{
		Name:     creatorName,
		Verified: verificationStatus == domain.VerificationEmailVerified,
		Initials: domain.Initials(creatorName),
	}
	return &p, nil
}

// Owner returns the creator's user id for a plan.
func (r *PlanRepo) Owner(ctx context.Context, planID string) (string, error) {
	var ownerID string
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM plans WHERE plan_id = $1`, planID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("plan: %w", domain.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get plan owner: %w", err)
	}
	return ownerID, nil
}

// Join records userID as a participant of planID and bumps the
// participant count, all in one transaction. The capacity guard and the
// plan_members primary key make double joins and overfills impossible
// under concurrent requests.
func (r *PlanRepo) Join(ctx context.Context, planID, userID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin join tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO plan_members (plan_id, user_id) VALUES ($1, $2)`, planID, userID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("already joined: %w", domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert plan member: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE plans SET current_people = current_people + 1
		WHERE plan_id = $1 AND current_people < max_people`, planID)
	if err != nil {
		return fmt.Errorf("increment participants: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("plan is full: %w", domain.ErrConflict)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit join tx: %w", err)
	}
	return nil
}
