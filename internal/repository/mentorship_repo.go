package repository

import (
	"context"
	"errors"

	"github.com/mijwad7/elevateHub/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MentorshipRepository struct {
	db *pgxpool.Pool
}

func NewMentorshipRepository(db *pgxpool.Pool) *MentorshipRepository {
	return &MentorshipRepository{db: db}
}

func (r *MentorshipRepository) Create(ctx context.Context, m *domain.Mentorship) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO mentorships (learner_id, mentor_id, skill, status, chat_room_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		m.LearnerID, m.MentorID, m.Skill, m.Status, m.ChatRoomID,
	).Scan(&m.ID, &m.CreatedAt)
}

func (r *MentorshipRepository) GetByID(ctx context.Context, id int64) (*domain.Mentorship, error) {
	return r.scanOne(r.db.QueryRow(ctx, selectMentorship+` WHERE id = $1`, id))
}

// GetByChatRoomID resolves a mentorship from its chat room identifier.
func (r *MentorshipRepository) GetByChatRoomID(ctx context.Context, roomID string) (*domain.Mentorship, error) {
	return r.scanOne(r.db.QueryRow(ctx, selectMentorship+` WHERE chat_room_id = $1`, roomID))
}

// HasPendingOrActive reports whether the learner already has an open
// mentorship with this mentor for this skill.
func (r *MentorshipRepository) HasPendingOrActive(ctx context.Context, learnerID, mentorID int64, skill string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM mentorships
			WHERE learner_id = $1 AND mentor_id = $2 AND skill = $3
			  AND status IN ('pending', 'active'))`,
		learnerID, mentorID, skill,
	).Scan(&exists)
	return exists, err
}

// Transition moves the mentorship between lifecycle states; the status guard
// makes each transition single-shot.
func (r *MentorshipRepository) Transition(ctx context.Context, id int64, from, to string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE mentorships SET status = $3 WHERE id = $1 AND status = $2`,
		id, from, to,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *MentorshipRepository) SetAutoComplete(ctx context.Context, id int64, m *domain.Mentorship) error {
	return r.db.QueryRow(ctx,
		`UPDATE mentorships SET auto_complete_at = now() + interval '30 days'
		 WHERE id = $1
		 RETURNING auto_complete_at`,
		id,
	).Scan(&m.AutoCompleteAt)
}

func (r *MentorshipRepository) SetFeedback(ctx context.Context, id int64, feedback *string, rating *int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE mentorships SET feedback = $2, rating = $3 WHERE id = $1`,
		id, feedback, rating,
	)
	return err
}

// Delete removes a rejected request entirely, mirroring the lifecycle where
// a rejection leaves no record behind.
func (r *MentorshipRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM mentorships WHERE id = $1`, id)
	return err
}

const selectMentorship = `SELECT id, learner_id, mentor_id, skill, status, rating, feedback, chat_room_id, auto_complete_at, created_at
	 FROM mentorships`

func (r *MentorshipRepository) scanOne(row pgx.Row) (*domain.Mentorship, error) {
	var m domain.Mentorship
	err := row.Scan(
		&m.ID,
		&m.LearnerID,
		&m.MentorID,
		&m.Skill,
		&m.Status,
		&m.Rating,
		&m.Feedback,
		&m.ChatRoomID,
		&m.AutoCompleteAt,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}
