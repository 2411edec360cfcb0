package queue

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Noah-Everett/phiacta-verify/internal/model"
)

// Memory is an in-process Queue used by unit tests so they don't need a
// live Redis instance. It preserves enqueue order within a single
// consumer (it doesn't model consumer-group fan-out) and never redelivers
// acknowledged messages.
type Memory struct {
	mu          sync.Mutex
	jobs        map[uuid.UUID]*model.VerificationJob
	statuses    map[uuid.UUID]model.JobStatus
	results     map[uuid.UUID]*model.VerificationResult
	pending     []pendingMessage
	nextMsgID   int
	acked       map[string]bool
}

type pendingMessage struct {
	id  string
	job *model.VerificationJob
}

// NewMemory returns an empty in-memory queue.
func NewMemory() *Memory {
	return &Memory{
		jobs:     make(map[uuid.UUID]*model.VerificationJob),
		statuses: make(map[uuid.UUID]model.JobStatus),
		results:  make(map[uuid.UUID]*model.VerificationResult),
		acked:    make(map[string]bool),
	}
}

func (m *Memory) Enqueue(_ context.Context, job *model.VerificationJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.jobs[job.ID] = job
	m.statuses[job.ID] = model.Queued
	m.nextMsgID++
	m.pending = append(m.pending, pendingMessage{id: uuid.NewString(), job: job})
	return nil
}

func (m *Memory) Dequeue(_ context.Context, _, _ string, count int64, _ int) ([]Delivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.pending) == 0 {
		return nil, nil
	}
	n := int(count)
	if n > len(m.pending) || n <= 0 {
		n = len(m.pending)
	}
	batch := m.pending[:n]
	m.pending = m.pending[n:]

	out := make([]Delivery, 0, len(batch))
	for _, p := range batch {
		out = append(out, Delivery{MessageID: p.id, Job: p.job})
	}
	return out, nil
}

func (m *Memory) Acknowledge(_ context.Context, _, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acked[messageID] = true
	return nil
}

func (m *Memory) SetStatus(_ context.Context, jobID uuid.UUID, status model.JobStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[jobID] = status
	return nil
}

func (m *Memory) GetStatus(_ context.Context, jobID uuid.UUID) (model.JobStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.statuses[jobID]
	if !ok {
		return "", ErrNotFound
	}
	return s, nil
}

func (m *Memory) StoreResult(_ context.Context, result *model.VerificationResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[result.JobID] = result
	m.statuses[result.JobID] = model.Completed
	return nil
}

func (m *Memory) GetResult(_ context.Context, jobID uuid.UUID) (*model.VerificationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.results[jobID]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

func (m *Memory) GetJob(_ context.Context, jobID uuid.UUID) (*model.VerificationJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[jobID]
	if !ok {
		return nil, ErrNotFound
	}
	return j, nil
}

func (m *Memory) ListRecentJobs(_ context.Context, limit int64) ([]JobSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]uuid.UUID, 0, len(m.jobs))
	for id := range m.jobs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return m.jobs[ids[i]].CreatedAt.After(m.jobs[ids[j]].CreatedAt)
	})
	if int64(len(ids)) > limit {
		ids = ids[:limit]
	}

	out := make([]JobSummary, 0, len(ids))
	for _, id := range ids {
		status := m.statuses[id]
		if status == "" {
			status = "UNKNOWN"
		}
		out = append(out, JobSummary{JobID: id, Status: status})
	}
	return out, nil
}

func (m *Memory) HealthCheck(_ context.Context) bool {
	return true
}
