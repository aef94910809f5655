package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sportsbook/models"
	"sportsbook/repository/testutil"
	"sportsbook/service"
)

func TestEventRepository_Close(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewEventRepository(testDB.DB)
	ctx := context.Background()

	t.Run("closes an open event and stores the result", func(t *testing.T) {
		event := testutil.CreateTestEvent("Arsenal vs Chelsea")
		require.NoError(t, repo.Create(ctx, event))

		closed, err := repo.Close(ctx, event.ID, models.OutcomeHomeWin)
		require.NoError(t, err)
		require.NotNil(t, closed)

		assert.Equal(t, models.EventStatusClosed, closed.Status)
		require.NotNil(t, closed.FinalResult)
		assert.Equal(t, models.OutcomeHomeWin, *closed.FinalResult)
	})

	t.Run("second close is rejected", func(t *testing.T) {
		event := testutil.CreateTestEvent("Liverpool vs Spurs")
		require.NoError(t, repo.Create(ctx, event))

		_, err := repo.Close(ctx, event.ID, models.OutcomeDraw)
		require.NoError(t, err)

		// Even with a different result the first close stands
		_, err = repo.Close(ctx, event.ID, models.OutcomeAwayWin)
		assert.ErrorIs(t, err, service.ErrEventAlreadyClosed)

		found, err := repo.GetByID(ctx, event.ID)
		require.NoError(t, err)
		require.NotNil(t, found.FinalResult)
		assert.Equal(t, models.OutcomeDraw, *found.FinalResult)
	})

	t.Run("missing event", func(t *testing.T) {
		_, err := repo.Close(ctx, uuid.New(), models.OutcomeHomeWin)
		assert.ErrorIs(t, err, service.ErrEventNotFound)
	})
}

func TestEventRepository_GetOpen(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewEventRepository(testDB.DB)
	ctx := context.Background()

	open := testutil.CreateTestEvent("Open Match")
	require.NoError(t, repo.Create(ctx, open))

	toClose := testutil.CreateTestEvent("Finished Match")
	require.NoError(t, repo.Create(ctx, toClose))
	_, err := repo.Close(ctx, toClose.ID, models.OutcomeAwayWin)
	require.NoError(t, err)

	events, err := repo.GetOpen(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, open.ID, events[0].ID)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
