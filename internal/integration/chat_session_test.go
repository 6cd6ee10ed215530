package integration

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mijwad7/elevateHub/internal/domain"
	"github.com/mijwad7/elevateHub/internal/repository"
)

func TestConcurrentSessionStartCreatesOneRow(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()

	owner := createLedgerUser(t, pool, 0)
	helper := createLedgerUser(t, pool, 0)

	requests := repository.NewHelpRequestRepository(pool)
	hr := &domain.HelpRequest{Title: "concurrent start", Description: "x", CreatedBy: owner.ID, CreditOfferChat: 2}
	require.NoError(t, requests.Create(ctx, hr))

	chats := repository.NewChatRepository(pool)

	const workers = 8
	created := make([]bool, workers)
	ids := make([]int64, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := &domain.ChatSession{
				RoomKey:       uuid.NewString(),
				HelpRequestID: &hr.ID,
				RequesterID:   owner.ID,
				HelperID:      helper.ID,
			}
			created[i], errs[i] = chats.GetOrCreateSession(ctx, s)
			ids[i] = s.ID
		}(i)
	}
	wg.Wait()

	wins := 0
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		if created[i] {
			wins++
		}
		assert.Equal(t, ids[0], ids[i], "every caller must land on the same session")
	}
	assert.Equal(t, 1, wins, "exactly one caller creates the session")
}

func TestEndedSessionIsNotReused(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()

	owner := createLedgerUser(t, pool, 0)
	helper := createLedgerUser(t, pool, 0)

	requests := repository.NewHelpRequestRepository(pool)
	hr := &domain.HelpRequest{Title: "reuse", Description: "x", CreatedBy: owner.ID, CreditOfferChat: 2}
	require.NoError(t, requests.Create(ctx, hr))

	chats := repository.NewChatRepository(pool)
	first := &domain.ChatSession{
		RoomKey:       uuid.NewString(),
		HelpRequestID: &hr.ID,
		RequesterID:   owner.ID,
		HelperID:      helper.ID,
	}
	created, err := chats.GetOrCreateSession(ctx, first)
	require.NoError(t, err)
	require.True(t, created)

	ended, err := chats.EndSession(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, ended)

	second := &domain.ChatSession{
		RoomKey:       uuid.NewString(),
		HelpRequestID: &hr.ID,
		RequesterID:   owner.ID,
		HelperID:      helper.ID,
	}
	created, err = chats.GetOrCreateSession(ctx, second)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, second.ID)
}
