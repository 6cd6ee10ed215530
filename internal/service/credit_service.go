package service

import (
	"context"
	"errors"

	"github.com/mijwad7/elevateHub/internal/domain"
	"github.com/mijwad7/elevateHub/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidAmount     = errors.New("invalid amount")
)

// CreditService is the ledger façade: every balance change goes through it
// as an append to credit_transactions plus an update of the cached balance,
// inside one database transaction.
type CreditService struct {
	db      *pgxpool.Pool
	credits *repository.CreditRepository
}

func NewCreditService(db *pgxpool.Pool) *CreditService {
	return &CreditService{
		db:      db,
		credits: repository.NewCreditRepository(db),
	}
}

// Balance returns the user's current balance.
func (s *CreditService) Balance(ctx context.Context, userID int64) (int64, error) {
	var balance int64
	err := s.db.QueryRow(ctx, `SELECT credits FROM users WHERE id = $1`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return balance, nil
}

// History returns recent ledger entries, newest first.
func (s *CreditService) History(ctx context.Context, userID int64, limit int) ([]*domain.CreditTransaction, error) {
	return s.credits.ListByUser(ctx, userID, limit)
}

// Credit adds amount to the user's balance.
func (s *CreditService) Credit(ctx context.Context, userID, amount int64, description string) (newBalance int64, err error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	newBalance, err = s.creditInTx(ctx, tx, userID, amount, description, nil)
	if err != nil {
		return 0, err
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, err
	}

	creditsGranted.WithLabelValues(description).Add(float64(amount))
	return newBalance, nil
}

// CreditOnce adds amount at most once per (user, cause). Returns granted=false
// without side effects when the cause was already claimed. The claim insert
// and the ledger append share one transaction, so concurrent duplicates race
// on the claim table's unique constraint and exactly one wins.
func (s *CreditService) CreditOnce(ctx context.Context, userID, amount int64, description, causeKey string) (granted bool, err error) {
	if amount <= 0 {
		return false, ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	claimed, err := s.credits.ClaimCause(ctx, tx, userID, causeKey)
	if err != nil {
		return false, err
	}
	if !claimed {
		duplicateClaims.Inc()
		return false, nil
	}

	if _, err = s.creditInTx(ctx, tx, userID, amount, description, &causeKey); err != nil {
		return false, err
	}

	if err = tx.Commit(ctx); err != nil {
		return false, err
	}

	creditsGranted.WithLabelValues(description).Add(float64(amount))
	return true, nil
}

// Debit deducts amount from the user's balance. Fails atomically with
// ErrInsufficientFunds when the balance is too low; the row lock serializes
// concurrent mutations of the same account.
func (s *CreditService) Debit(ctx context.Context, userID, amount int64, description string) (newBalance int64, err error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var balance int64
	err = tx.QueryRow(ctx, `SELECT credits FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}

	if balance < amount {
		return 0, ErrInsufficientFunds
	}

	err = tx.QueryRow(ctx,
		`UPDATE users SET credits = credits - $1 WHERE id = $2 RETURNING credits`,
		amount, userID,
	).Scan(&newBalance)
	if err != nil {
		return 0, err
	}

	entry := &domain.CreditTransaction{
		UserID:      userID,
		Amount:      -amount,
		Description: description,
	}
	if err = s.credits.AppendTx(ctx, tx, entry); err != nil {
		return 0, err
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, err
	}

	creditsSpent.WithLabelValues(description).Add(float64(amount))
	return newBalance, nil
}

// Transfer moves amount from one user to another, locking both rows in id
// order to avoid deadlocks between opposing transfers.
func (s *CreditService) Transfer(ctx context.Context, fromUserID, toUserID, amount int64, fromDesc, toDesc string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	firstID, secondID := fromUserID, toUserID
	if firstID > secondID {
		firstID, secondID = secondID, firstID
	}

	var balance1, balance2 int64
	if err = tx.QueryRow(ctx, `SELECT credits FROM users WHERE id = $1 FOR UPDATE`, firstID).Scan(&balance1); err != nil {
		return err
	}
	if err = tx.QueryRow(ctx, `SELECT credits FROM users WHERE id = $1 FOR UPDATE`, secondID).Scan(&balance2); err != nil {
		return err
	}

	senderBalance := balance1
	if fromUserID != firstID {
		senderBalance = balance2
	}
	if senderBalance < amount {
		return ErrInsufficientFunds
	}

	if _, err = tx.Exec(ctx, `UPDATE users SET credits = credits - $1 WHERE id = $2`, amount, fromUserID); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `UPDATE users SET credits = credits + $1 WHERE id = $2`, amount, toUserID); err != nil {
		return err
	}

	fromEntry := &domain.CreditTransaction{UserID: fromUserID, Amount: -amount, Description: fromDesc}
	if err = s.credits.AppendTx(ctx, tx, fromEntry); err != nil {
		return err
	}
	toEntry := &domain.CreditTransaction{UserID: toUserID, Amount: amount, Description: toDesc}
	if err = s.credits.AppendTx(ctx, tx, toEntry); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}

	creditsSpent.WithLabelValues(fromDesc).Add(float64(amount))
	creditsGranted.WithLabelValues(toDesc).Add(float64(amount))
	return nil
}

func (s *CreditService) creditInTx(ctx context.Context, tx pgx.Tx, userID, amount int64, description string, causeKey *string) (int64, error) {
	var newBalance int64
	err := tx.QueryRow(ctx,
		`UPDATE users SET credits = credits + $1 WHERE id = $2 RETURNING credits`,
		amount, userID,
	).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}

	entry := &domain.CreditTransaction{
		UserID:      userID,
		Amount:      amount,
		Description: description,
		CauseKey:    causeKey,
	}
	if err = s.credits.AppendTx(ctx, tx, entry); err != nil {
		return 0, err
	}
	return newBalance, nil
}
