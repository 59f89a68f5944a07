package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestProgressStore(t *testing.T) ProgressStore {
	t.Helper()

	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	return NewRedisProgressStore(client, time.Hour)
}

func TestProgressStoreCounts(t *testing.T) {
	store := newTestProgressStore(t)
	ctx := context.Background()

	require.NoError(t, store.Start(ctx, "batch-1", 3))

	progress, err := store.Get(ctx, "batch-1")
	require.NoError(t, err)
	require.Equal(t, Progress{Total: 3, Attempted: 0, Completed: 0}, progress)

	require.NoError(t, store.MarkAttempted(ctx, "batch-1"))
	require.NoError(t, store.MarkCompleted(ctx, "batch-1"))
	require.NoError(t, store.MarkAttempted(ctx, "batch-1"))

	progress, err = store.Get(ctx, "batch-1")
	require.NoError(t, err)
	require.Equal(t, Progress{Total: 3, Attempted: 2, Completed: 1}, progress)
}

func TestProgressStoreUnknownBatch(t *testing.T) {
	store := newTestProgressStore(t)

	_, err := store.Get(context.Background(), "no-such-batch")
	require.ErrorIs(t, err, ErrBatchNotFound)
}
