package integration

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mijwad7/elevateHub/internal/domain"
	"github.com/mijwad7/elevateHub/internal/repository"
	"github.com/mijwad7/elevateHub/internal/service"
)

func createLedgerUser(t *testing.T, pool *pgxpool.Pool, credits int64) *domain.User {
	t.Helper()
	name := "ledger" + uuid.NewString()[:8]
	u := &domain.User{Username: name, Email: name + "@example.com", PasswordHash: "x", Credits: credits}
	require.NoError(t, repository.NewUserRepository(pool).Create(context.Background(), u))
	return u
}

func TestBalanceAlwaysEqualsTransactionSum(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()

	credits := service.NewCreditService(pool)
	repo := repository.NewCreditRepository(pool)

	alice := createLedgerUser(t, pool, 0)
	bob := createLedgerUser(t, pool, 0)

	_, err := credits.Credit(ctx, alice.ID, 30, "seed")
	require.NoError(t, err)
	_, err = credits.Debit(ctx, alice.ID, 4, "spend")
	require.NoError(t, err)
	require.NoError(t, credits.Transfer(ctx, alice.ID, bob.ID, 11, "sent", "received"))

	for _, u := range []*domain.User{alice, bob} {
		balance, err := credits.Balance(ctx, u.ID)
		require.NoError(t, err)
		sum, err := repo.SumTransactions(ctx, u.ID)
		require.NoError(t, err)
		assert.Equalf(t, sum, balance, "user %d: cached balance diverged from ledger", u.ID)
	}

	aliceBalance, _ := credits.Balance(ctx, alice.ID)
	bobBalance, _ := credits.Balance(ctx, bob.ID)
	assert.Equal(t, int64(15), aliceBalance)
	assert.Equal(t, int64(11), bobBalance)
}

func TestCreditOnceConcurrentClaims(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()

	credits := service.NewCreditService(pool)
	user := createLedgerUser(t, pool, 0)
	causeKey := fmt.Sprintf("upvote:post:%d", uniqueTargetID())

	const workers = 10
	granted := make([]bool, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			granted[i], errs[i] = credits.CreditOnce(ctx, user.ID, 5, "first upvote", causeKey)
		}(i)
	}
	wg.Wait()

	grantCount := 0
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		if granted[i] {
			grantCount++
		}
	}
	assert.Equal(t, 1, grantCount, "exactly one concurrent claim must win")

	balance, err := credits.Balance(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), balance)
}

func TestDebitInsufficientFundsIsAtomic(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()

	credits := service.NewCreditService(pool)
	repo := repository.NewCreditRepository(pool)
	user := createLedgerUser(t, pool, 3)

	_, err := credits.Debit(ctx, user.ID, 10, "too much")
	require.ErrorIs(t, err, service.ErrInsufficientFunds)

	balance, err := credits.Balance(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), balance)

	sum, err := repo.SumTransactions(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), sum, "failed debit must not leave a ledger entry")
}

func TestTransferInsufficientFundsChangesNothing(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()

	credits := service.NewCreditService(pool)
	alice := createLedgerUser(t, pool, 2)
	bob := createLedgerUser(t, pool, 0)

	err := credits.Transfer(ctx, alice.ID, bob.ID, 5, "sent", "received")
	require.ErrorIs(t, err, service.ErrInsufficientFunds)

	aliceBalance, _ := credits.Balance(ctx, alice.ID)
	bobBalance, _ := credits.Balance(ctx, bob.ID)
	assert.Equal(t, int64(2), aliceBalance)
	assert.Equal(t, int64(0), bobBalance)
}

func TestCreditRejectsNonPositiveAmounts(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()

	credits := service.NewCreditService(pool)
	user := createLedgerUser(t, pool, 0)

	_, err := credits.Credit(ctx, user.ID, 0, "zero")
	assert.ErrorIs(t, err, service.ErrInvalidAmount)
	_, err = credits.Debit(ctx, user.ID, -1, "negative")
	assert.ErrorIs(t, err, service.ErrInvalidAmount)
}
