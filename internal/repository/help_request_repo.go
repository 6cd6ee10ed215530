package repository

import (
	"context"
	"errors"

	"github.com/mijwad7/elevateHub/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type HelpRequestRepository struct {
	db *pgxpool.Pool
}

func NewHelpRequestRepository(db *pgxpool.Pool) *HelpRequestRepository {
	return &HelpRequestRepository{db: db}
}

func (r *HelpRequestRepository) Create(ctx context.Context, hr *domain.HelpRequest) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO help_requests (title, description, created_by, credit_offer_chat, credit_offer_video)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, status, created_at`,
		hr.Title, hr.Description, hr.CreatedBy, hr.CreditOfferChat, hr.CreditOfferVideo,
	).Scan(&hr.ID, &hr.Status, &hr.CreatedAt)
}

func (r *HelpRequestRepository) GetByID(ctx context.Context, id int64) (*domain.HelpRequest, error) {
	var hr domain.HelpRequest
	err := r.db.QueryRow(ctx,
		`SELECT id, title, description, created_by, status, credit_offer_chat, credit_offer_video, created_at
		 FROM help_requests WHERE id = $1`, id,
	).Scan(&hr.ID, &hr.Title, &hr.Description, &hr.CreatedBy, &hr.Status, &hr.CreditOfferChat, &hr.CreditOfferVideo, &hr.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &hr, nil
}
