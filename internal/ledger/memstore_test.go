package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore_CreateSeedsFromLatestRecord(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()
	userID := uuid.New()
	day1 := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	err := store.Mutate(ctx, userID, day1, func(rec *DailyUsage) (bool, error) {
		rec.EverPages.Add(1)
		rec.EverPages.Add(4)
		rec.ChargedCount = 20
		return true, nil
	})
	require.NoError(t, err)

	err = store.Mutate(ctx, userID, day2, func(rec *DailyUsage) (bool, error) {
		assert.Equal(t, 0, rec.ChargedCount)
		assert.Equal(t, []int{1, 4}, rec.EverPages.Sorted())
		assert.Equal(t, 0, rec.WindowPages.Len())
		return false, nil
	})
	require.NoError(t, err)
}

func TestMemStore_DiscardsWithoutWrite(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()
	userID := uuid.New()
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Mutate(ctx, userID, day, func(rec *DailyUsage) (bool, error) {
		rec.ChargedCount = 10
		return true, nil
	}))

	require.NoError(t, store.Mutate(ctx, userID, day, func(rec *DailyUsage) (bool, error) {
		rec.ChargedCount = 999
		return false, nil
	}))

	rec, err := store.Get(ctx, userID, day)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 10, rec.ChargedCount)
}

func TestMemStore_ErrorRollsBackCreation(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()
	userID := uuid.New()
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	boom := errors.New("boom")
	err := store.Mutate(ctx, userID, day, func(rec *DailyUsage) (bool, error) {
		return false, boom
	})
	assert.ErrorIs(t, err, boom)

	rec, err := store.Get(ctx, userID, day)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestMemStore_GetUnknownDay(t *testing.T) {
	store := NewMemStore()
	rec, err := store.Get(context.Background(), uuid.New(), time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Nil(t, rec)
}
