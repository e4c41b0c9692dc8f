package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) *Queue {
	t.Helper()

	q, err := NewQueue("redis://localhost:6379/9", "test_jobs")
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}

	cleanup := func() {
		ctx := context.Background()
		q.client.Del(ctx, q.queueName, q.processing, q.failed, q.queueName+":delayed")
	}
	cleanup()
	t.Cleanup(func() {
		cleanup()
		q.Close()
	})

	return q
}

func TestFailJobClearsProcessingEntry(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, JobTypeVerifyPayment, map[string]interface{}{
		"reference": "TXN-RETRY-1",
	}))

	job, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, job)

	require.NoError(t, q.FailJob(ctx, job, errors.New("gateway unreachable")))

	processing, err := q.client.LLen(ctx, q.processing).Result()
	require.NoError(t, err)
	assert.Zero(t, processing, "failed job must not linger on the processing list")

	delayed, err := q.client.ZCard(ctx, q.queueName+":delayed").Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, delayed, "failed job should be scheduled for retry")
}

func TestCompleteJobClearsProcessingEntry(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, JobTypeChargeSubscription, map[string]interface{}{
		"subscription_id": "sub-1",
	}))

	job, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, job)

	require.NoError(t, q.CompleteJob(ctx, job))

	processing, err := q.client.LLen(ctx, q.processing).Result()
	require.NoError(t, err)
	assert.Zero(t, processing)
}
