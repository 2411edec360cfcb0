package queue

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Noah-Everett/phiacta-verify/internal/model"
)

// RedisQueue implements Queue on top of go-redis/v9, grounded on the
// teacher's GoRedisAdapter construction pattern (ParseURL + NewClient +
// Ping).
type RedisQueue struct {
	client *redis.Client
}

// NewRedisQueue parses redisURL and returns a queue backed by it.
func NewRedisQueue(ctx context.Context, redisURL string) (*RedisQueue, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisQueue{client: client}, nil
}

// Enqueue persists the job, indexes it, appends it to the stream, and
// marks it QUEUED. All four writes must land for enqueue to be considered
// done (spec.md §4.6); a caller that sees a partial failure retries with
// the same job id.
func (q *RedisQueue) Enqueue(ctx context.Context, job *model.VerificationJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	if err := q.client.Set(ctx, dataKey(job.ID), data, 0).Err(); err != nil {
		return err
	}
	if err := q.client.ZAdd(ctx, indexKey, redis.Z{
		Score:  float64(job.CreatedAt.Unix()),
		Member: job.ID.String(),
	}).Err(); err != nil {
		return err
	}
	if err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: streamKey,
		Values: map[string]interface{}{
			"job_id": job.ID.String(),
			"data":   string(data),
		},
	}).Err(); err != nil {
		return err
	}
	return q.SetStatus(ctx, job.ID, model.Queued)
}

// Dequeue ensures the consumer group exists, then reads up to count new
// entries blocking up to blockMs milliseconds.
func (q *RedisQueue) Dequeue(ctx context.Context, group, consumer string, count int64, blockMs int) ([]Delivery, error) {
	err := q.client.XGroupCreateMkStream(ctx, streamKey, group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return nil, err
	}

	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{streamKey, ">"},
		Count:    count,
		Block:    msToDuration(blockMs),
	}).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out []Delivery
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			raw, ok := msg.Values["data"].(string)
			if !ok {
				continue
			}
			var job model.VerificationJob
			if err := json.Unmarshal([]byte(raw), &job); err != nil {
				continue
			}
			out = append(out, Delivery{MessageID: msg.ID, Job: &job})
		}
	}
	return out, nil
}

// Acknowledge marks messageID as processed so it is not redelivered.
func (q *RedisQueue) Acknowledge(ctx context.Context, group, messageID string) error {
	return q.client.XAck(ctx, streamKey, group, messageID).Err()
}

func (q *RedisQueue) SetStatus(ctx context.Context, jobID uuid.UUID, status model.JobStatus) error {
	return q.client.Set(ctx, statusKey(jobID), string(status), 0).Err()
}

func (q *RedisQueue) GetStatus(ctx context.Context, jobID uuid.UUID) (model.JobStatus, error) {
	v, err := q.client.Get(ctx, statusKey(jobID)).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return model.JobStatus(v), nil
}

// StoreResult persists result and advances status to COMPLETED.
func (q *RedisQueue) StoreResult(ctx context.Context, result *model.VerificationResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	if err := q.client.Set(ctx, resultKey(result.JobID), data, 0).Err(); err != nil {
		return err
	}
	return q.SetStatus(ctx, result.JobID, model.Completed)
}

func (q *RedisQueue) GetResult(ctx context.Context, jobID uuid.UUID) (*model.VerificationResult, error) {
	v, err := q.client.Get(ctx, resultKey(jobID)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var result model.VerificationResult
	if err := json.Unmarshal([]byte(v), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (q *RedisQueue) GetJob(ctx context.Context, jobID uuid.UUID) (*model.VerificationJob, error) {
	v, err := q.client.Get(ctx, dataKey(jobID)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var job model.VerificationJob
	if err := json.Unmarshal([]byte(v), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// ListRecentJobs reads the top limit ids from the recency index (newest
// first) and joins each with its current status, defaulting to "UNKNOWN"
// when a status key is missing.
func (q *RedisQueue) ListRecentJobs(ctx context.Context, limit int64) ([]JobSummary, error) {
	if limit <= 0 {
		limit = 1
	}
	ids, err := q.client.ZRevRange(ctx, indexKey, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}

	out := make([]JobSummary, 0, len(ids))
	for _, idStr := range ids {
		id, err := uuid.Parse(idStr)
		if err != nil {
			continue
		}
		status, err := q.GetStatus(ctx, id)
		if err != nil {
			status = model.JobStatus("UNKNOWN")
		}
		out = append(out, JobSummary{JobID: id, Status: status})
	}
	return out, nil
}

// HealthCheck pings the Redis backend.
func (q *RedisQueue) HealthCheck(ctx context.Context) bool {
	return q.client.Ping(ctx).Err() == nil
}

func msToDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
