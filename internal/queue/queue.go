// Package queue is the durable FIFO job queue: a Redis stream with
// consumer-group delivery plus auxiliary status/result/index key spaces
// (spec.md §4.6).
package queue

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Noah-Everett/phiacta-verify/internal/model"
)

// ErrNotFound is returned when a job, status, or result key doesn't exist.
var ErrNotFound = errors.New("queue: not found")

// Delivery is one message read off the stream: its delivery id (needed to
// acknowledge it) and the deserialized job.
type Delivery struct {
	MessageID string
	Job       *model.VerificationJob
}

// JobSummary is one entry of ListRecentJobs: an id joined with its
// current status.
type JobSummary struct {
	JobID  uuid.UUID
	Status model.JobStatus
}

// Queue is the durable job queue contract the worker and HTTP layer both
// depend on.
type Queue interface {
	Enqueue(ctx context.Context, job *model.VerificationJob) error
	Dequeue(ctx context.Context, group, consumer string, count int64, blockMs int) ([]Delivery, error)
	Acknowledge(ctx context.Context, group, messageID string) error
	SetStatus(ctx context.Context, jobID uuid.UUID, status model.JobStatus) error
	GetStatus(ctx context.Context, jobID uuid.UUID) (model.JobStatus, error)
	StoreResult(ctx context.Context, result *model.VerificationResult) error
	GetResult(ctx context.Context, jobID uuid.UUID) (*model.VerificationResult, error)
	GetJob(ctx context.Context, jobID uuid.UUID) (*model.VerificationJob, error)
	ListRecentJobs(ctx context.Context, limit int64) ([]JobSummary, error)
	HealthCheck(ctx context.Context) bool
}

const (
	streamKey = "jobs:stream"
	indexKey  = "jobs:index"
	// ConsumerGroup is the single consumer group every worker joins.
	ConsumerGroup = "verify-workers"
)

func dataKey(id uuid.UUID) string   { return "jobs:data:" + id.String() }
func statusKey(id uuid.UUID) string { return "jobs:status:" + id.String() }
func resultKey(id uuid.UUID) string { return "jobs:result:" + id.String() }
