package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrBatchNotFound indicates no progress is recorded for the batch id.
var ErrBatchNotFound = errors.New("grading batch not found")

// Progress is a batch's monotonically increasing counters. Attempted advances
// for every processed submission, Completed only for successful ones; callers
// distinguish "still running" from "stuck" by comparing Attempted and Total.
type Progress struct {
	Total     int
	Attempted int
	Completed int
}

// ProgressStore records and reports grading batch progress.
type ProgressStore interface {
	Start(ctx context.Context, batchID string, total int) error
	MarkAttempted(ctx context.Context, batchID string) error
	MarkCompleted(ctx context.Context, batchID string) error
	Get(ctx context.Context, batchID string) (Progress, error)
}

type redisProgressStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisProgressStore backs batch progress with Redis so any API instance
// can answer polling requests. Keys expire after ttl.
func NewRedisProgressStore(client *redis.Client, ttl time.Duration) ProgressStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &redisProgressStore{client: client, ttl: ttl}
}

func progressKey(batchID, field string) string {
	return fmt.Sprintf("grading:batch:%s:%s", batchID, field)
}

func (s *redisProgressStore) Start(ctx context.Context, batchID string, total int) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, progressKey(batchID, "total"), total, s.ttl)
	pipe.Set(ctx, progressKey(batchID, "attempted"), 0, s.ttl)
	pipe.Set(ctx, progressKey(batchID, "completed"), 0, s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *redisProgressStore) MarkAttempted(ctx context.Context, batchID string) error {
	return s.client.Incr(ctx, progressKey(batchID, "attempted")).Err()
}

func (s *redisProgressStore) MarkCompleted(ctx context.Context, batchID string) error {
	return s.client.Incr(ctx, progressKey(batchID, "completed")).Err()
}

func (s *redisProgressStore) Get(ctx context.Context, batchID string) (Progress, error) {
	values, err := s.client.MGet(ctx,
		progressKey(batchID, "total"),
		progressKey(batchID, "attempted"),
		progressKey(batchID, "completed"),
	).Result()
	if err != nil {
		return Progress{}, err
	}

	if values[0] == nil {
		return Progress{}, ErrBatchNotFound
	}

	counters := make([]int, 3)
	for i, value := range values {
		if value == nil {
			continue
		}
		text, ok := value.(string)
		if !ok {
			return Progress{}, fmt.Errorf("unexpected progress value for batch %s", batchID)
		}
		if _, err := fmt.Sscanf(text, "%d", &counters[i]); err != nil {
			return Progress{}, fmt.Errorf("corrupt progress counter for batch %s: %w", batchID, err)
		}
	}

	return Progress{Total: counters[0], Attempted: counters[1], Completed: counters[2]}, nil
}
