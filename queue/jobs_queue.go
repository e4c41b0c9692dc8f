package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

type JobType string

const (
	JobTypeVerifyPayment      JobType = "verify_payment"
	JobTypeChargeSubscription JobType = "charge_subscription"
	JobTypeReconcilePending   JobType = "reconcile_pending"
	JobTypeBillingSweep       JobType = "billing_sweep"
)

type Job struct {
	ID         string                 `json:"id"`
	Type       JobType                `json:"type"`
	Data       map[string]interface{} `json:"data"`
	CreatedAt  time.Time              `json:"created_at"`
	RetryCount int                    `json:"retry_count"`

	// raw is the exact payload BLPOP returned, kept so LREM against the
	// processing list matches byte for byte even after the job is mutated.
	raw []byte
}

type Queue struct {
	client     *redis.Client
	queueName  string
	processing string
	failed     string
}

const maxRetries = 5

func NewQueue(redisURL, queueName string) (*Queue, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %v", err)
	}

	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return &Queue{
		client:     client,
		queueName:  queueName,
		processing: queueName + ":processing",
		failed:     queueName + ":failed",
	}, nil
}

func (q *Queue) Enqueue(ctx context.Context, jobType JobType, data map[string]interface{}) error {
	job := Job{
		ID:        fmt.Sprintf("%d", time.Now().UnixNano()),
		Type:      jobType,
		Data:      data,
		CreatedAt: time.Now(),
	}

	jobJSON, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %v", err)
	}

	err = q.client.RPush(ctx, q.queueName, jobJSON).Err()
	if err != nil {
		return fmt.Errorf("failed to push job to queue: %v", err)
	}

	log.Printf("Enqueued job %s of type %s", job.ID, job.Type)
	return nil
}

// EnqueueDelayed schedules a job on the delayed sorted set, scored by its
// execution time.
func (q *Queue) EnqueueDelayed(ctx context.Context, jobType JobType, data map[string]interface{}, delay time.Duration) error {
	job := Job{
		ID:        fmt.Sprintf("%d", time.Now().UnixNano()),
		Type:      jobType,
		Data:      data,
		CreatedAt: time.Now(),
	}

	jobJSON, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %v", err)
	}

	executeAt := time.Now().Add(delay)
	err = q.client.ZAdd(ctx, q.queueName+":delayed", &redis.Z{
		Score:  float64(executeAt.Unix()),
		Member: jobJSON,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to push delayed job to queue: %v", err)
	}

	log.Printf("Enqueued delayed job %s of type %s to execute at %s",
		job.ID, job.Type, executeAt.Format("2006-01-02 15:04:05"))
	return nil
}

func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*Job, error) {
	result, err := q.client.BLPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job from queue: %v", err)
	}

	if len(result) < 2 {
		return nil, fmt.Errorf("unexpected BLPOP result format")
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %v", err)
	}
	job.raw = []byte(result[1])

	err = q.client.RPush(ctx, q.processing, result[1]).Err()
	if err != nil {
		log.Printf("Warning: Failed to move job %s to processing queue: %v", job.ID, err)
	}

	return &job, nil
}

// removeFromProcessing drops the job's processing-list entry using the raw
// payload captured at dequeue time.
func (q *Queue) removeFromProcessing(ctx context.Context, job *Job) error {
	payload := job.raw
	if payload == nil {
		var err error
		payload, err = json.Marshal(job)
		if err != nil {
			return fmt.Errorf("failed to marshal job: %v", err)
		}
	}
	return q.client.LRem(ctx, q.processing, 1, payload).Err()
}

func (q *Queue) CompleteJob(ctx context.Context, job *Job) error {
	if err := q.removeFromProcessing(ctx, job); err != nil {
		return fmt.Errorf("failed to remove job from processing queue: %v", err)
	}

	log.Printf("Completed job %s of type %s", job.ID, job.Type)
	return nil
}

// FailJob reschedules the job with exponential backoff, or parks it on the
// failed list once the retry budget is spent.
func (q *Queue) FailJob(ctx context.Context, job *Job, err error) error {
	// Clear the processing entry before touching the job, so the payload
	// still matches what Dequeue pushed.
	if remErr := q.removeFromProcessing(ctx, job); remErr != nil {
		log.Printf("Warning: Failed to remove job %s from processing queue: %v", job.ID, remErr)
	}

	job.RetryCount++

	job.Data["last_error"] = err.Error()
	job.Data["failed_at"] = time.Now()

	if job.RetryCount <= maxRetries {
		delaySeconds := 15 * (1 << (job.RetryCount - 1))
		retryTime := time.Now().Add(time.Duration(delaySeconds) * time.Second)

		job.Data["next_retry_at"] = retryTime
		job.Data["is_last_attempt"] = job.RetryCount == maxRetries

		updatedJobJSON, _ := json.Marshal(job)

		if err := q.client.ZAdd(ctx, q.queueName+":delayed", &redis.Z{
			Score:  float64(retryTime.Unix()),
			Member: updatedJobJSON,
		}).Err(); err != nil {
			log.Printf("Warning: Failed to add job to delayed queue, adding to failed queue: %v", err)
			if err := q.client.RPush(ctx, q.failed, updatedJobJSON).Err(); err != nil {
				return fmt.Errorf("failed to push job to failed queue: %v", err)
			}
		}

		log.Printf("Job %s of type %s scheduled for retry %d/%d in %d seconds",
			job.ID, job.Type, job.RetryCount, maxRetries, delaySeconds)
		return nil
	}

	job.Data["all_retries_exhausted"] = true
	finalJobJSON, _ := json.Marshal(job)

	if err := q.client.RPush(ctx, q.failed, finalJobJSON).Err(); err != nil {
		return fmt.Errorf("failed to push job to failed queue: %v", err)
	}

	log.Printf("Job %s of type %s moved to failed queue after %d retries", job.ID, job.Type, job.RetryCount)
	return nil
}

// ProcessDelayedJobs moves due jobs from the delayed set onto the main list.
// The worker's scheduler calls this every tick.
func (q *Queue) ProcessDelayedJobs(ctx context.Context) error {
	delayedQueueName := q.queueName + ":delayed"
	now := float64(time.Now().Unix())

	jobs, err := q.client.ZRangeByScore(ctx, delayedQueueName, &redis.ZRangeBy{
		Min: "0",
		Max: fmt.Sprintf("%f", now),
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to get delayed jobs: %v", err)
	}

	for _, jobJSON := range jobs {
		if err := q.client.RPush(ctx, q.queueName, jobJSON).Err(); err != nil {
			log.Printf("Warning: Failed to move delayed job to main queue: %v", err)
			continue
		}

		if err := q.client.ZRem(ctx, delayedQueueName, jobJSON).Err(); err != nil {
			log.Printf("Warning: Failed to remove job from delayed queue: %v", err)
			continue
		}

		var job Job
		if err := json.Unmarshal([]byte(jobJSON), &job); err != nil {
			log.Printf("Warning: Failed to unmarshal job: %v", err)
			continue
		}

		log.Printf("Moved delayed job %s of type %s to main queue (retry %d)",
			job.ID, job.Type, job.RetryCount)
	}

	return nil
}

// IsLastAttempt reports whether the job has no retries left after this run.
func (q *Queue) IsLastAttempt(job *Job) bool {
	if isLast, exists := job.Data["is_last_attempt"]; exists {
		if lastAttempt, ok := isLast.(bool); ok {
			return lastAttempt
		}
	}
	return job.RetryCount >= maxRetries
}

func (q *Queue) Client() *redis.Client {
	return q.client
}

func (q *Queue) Close() error {
	return q.client.Close()
}
