package domain

import "time"

// CreditTransaction is one immutable entry in the credit ledger. The sum of
// all entries for a user equals the cached users.credits balance. CauseKey is
// set for first-time rewards only; a partial unique index on
// (user_id, cause_key) backs the idempotency guarantee.
type CreditTransaction struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	Amount      int64     `db:"amount" json:"amount"`
	Description string    `db:"description" json:"description"`
	CauseKey    *string   `db:"cause_key" json:"cause_key,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
