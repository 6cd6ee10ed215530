package repository

import (
	"context"

	"github.com/mijwad7/elevateHub/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CreditRepository holds the ledger primitives. Balance mutation and the
// transaction append always run inside a caller-supplied pgx transaction so
// that both commit or neither does.
type CreditRepository struct {
	db *pgxpool.Pool
}

func NewCreditRepository(db *pgxpool.Pool) *CreditRepository {
	return &CreditRepository{db: db}
}

// ClaimCause durably records the (user, cause) pair. Returns true exactly
// once per pair; the unique constraint makes concurrent duplicate claims
// lose without an application-level read.
func (r *CreditRepository) ClaimCause(ctx context.Context, tx pgx.Tx, userID int64, causeKey string) (bool, error) {
	tag, err := tx.Exec(ctx,
		`INSERT INTO credit_claims (user_id, cause_key)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, cause_key) DO NOTHING`,
		userID, causeKey,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// AppendTx inserts a ledger entry within an existing transaction.
func (r *CreditRepository) AppendTx(ctx context.Context, tx pgx.Tx, entry *domain.CreditTransaction) error {
	return tx.QueryRow(ctx,
		`INSERT INTO credit_transactions (user_id, amount, description, cause_key)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		entry.UserID, entry.Amount, entry.Description, entry.CauseKey,
	).Scan(&entry.ID, &entry.CreatedAt)
}

// GetBalance returns a user's cached balance.
func (r *CreditRepository) GetBalance(ctx context.Context, userID int64) (int64, error) {
	var balance int64
	err := r.db.QueryRow(ctx, `SELECT credits FROM users WHERE id = $1`, userID).Scan(&balance)
	return balance, err
}

// SumTransactions recomputes the balance from the ledger, for consistency checks.
func (r *CreditRepository) SumTransactions(ctx context.Context, userID int64) (int64, error) {
	var sum int64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM credit_transactions WHERE user_id = $1`,
		userID,
	).Scan(&sum)
	return sum, err
}

// ListByUser returns recent ledger entries, newest first.
func (r *CreditRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*domain.CreditTransaction, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, amount, description, cause_key, created_at
		 FROM credit_transactions
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.CreditTransaction
	for rows.Next() {
		var e domain.CreditTransaction
		if err := rows.Scan(&e.ID, &e.UserID, &e.Amount, &e.Description, &e.CauseKey, &e.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &e)
	}
	return result, rows.Err()
}
