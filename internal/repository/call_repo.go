package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mijwad7/elevateHub/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CallRepository struct {
	db *pgxpool.Pool
}

func NewCallRepository(db *pgxpool.Pool) *CallRepository {
	return &CallRepository{db: db}
}

func (r *CallRepository) Create(ctx context.Context, c *domain.VideoCall) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO video_calls (help_request_id, mentorship_id, requester_id, helper_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, started_at, is_active`,
		c.HelpRequestID, c.MentorshipID, c.RequesterID, c.HelperID,
	).Scan(&c.ID, &c.StartedAt, &c.IsActive)
}

func (r *CallRepository) GetByID(ctx context.Context, id int64) (*domain.VideoCall, error) {
	var c domain.VideoCall
	err := r.db.QueryRow(ctx,
		`SELECT id, help_request_id, mentorship_id, requester_id, helper_id, started_at, ended_at, is_active
		 FROM video_calls WHERE id = $1`, id,
	).Scan(&c.ID, &c.HelpRequestID, &c.MentorshipID, &c.RequesterID, &c.HelperID, &c.StartedAt, &c.EndedAt, &c.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// End transitions the call to ended. Returns false when the call was already
// ended, which callers treat as an error to prevent a second settlement.
func (r *CallRepository) End(ctx context.Context, id int64, endedAt time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE video_calls SET is_active = false, ended_at = $2 WHERE id = $1 AND is_active`,
		id, endedAt,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
