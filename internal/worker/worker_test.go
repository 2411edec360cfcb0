package worker

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Noah-Everett/phiacta-verify/internal/model"
	"github.com/Noah-Everett/phiacta-verify/internal/queue"
	"github.com/Noah-Everett/phiacta-verify/internal/runner"
	"github.com/Noah-Everett/phiacta-verify/internal/sandbox"
	"github.com/Noah-Everett/phiacta-verify/internal/signer"
	"github.com/Noah-Everett/phiacta-verify/internal/upstream"
)

// fakeSandbox is a scripted SandboxRunner: each call returns the next
// canned result/error, and it counts how many times Run was invoked so
// tests can assert the sandbox was actually exercised.
type fakeSandbox struct {
	results []*sandbox.Result
	err     error
	calls   int
}

func (f *fakeSandbox) Run(_ context.Context, _ runner.PreparedExecution, _ sandbox.Policy) (*sandbox.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) == 0 {
		return &sandbox.Result{ExitCode: 0}, nil
	}
	r := f.results[0]
	f.results = f.results[1:]
	return r, nil
}

func newTestWorker(t *testing.T, q queue.Queue, sb SandboxRunner) *Worker {
	t.Helper()
	s, err := signer.Load("")
	require.NoError(t, err)
	return &Worker{
		Queue:        q,
		Sandbox:      sb,
		Signer:       s,
		Upstream:     upstream.NoOp{},
		ConsumerName: "test-worker",
	}
}

func newPythonJob() *model.VerificationJob {
	return &model.VerificationJob{
		ID:             uuid.New(),
		ClaimID:        uuid.New(),
		RunnerKind:     model.PythonScript,
		CodeContent:    "print('hi')",
		ResourceLimits: model.DefaultResourceLimits(),
		Status:         model.Pending,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
}

func TestProcessJobHappyPathReachesExecutionVerified(t *testing.T) {
	ctx := context.Background()
	q := queue.NewMemory()
	job := newPythonJob()
	require.NoError(t, q.Enqueue(ctx, job))

	sb := &fakeSandbox{results: []*sandbox.Result{{ExitCode: 0, Stdout: "hi\n"}}}
	w := newTestWorker(t, q, sb)

	require.NoError(t, w.processJob(ctx, job))
	assert.Equal(t, 1, sb.calls)

	result, err := q.GetResult(ctx, job.ID)
	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Equal(t, model.L2ExecutionVerified, result.Level)
	assert.NotEmpty(t, result.Signature)

	status, err := q.GetStatus(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Completed, status)
}

func TestProcessJobNumericalMatchWithinTolerance(t *testing.T) {
	ctx := context.Background()
	q := queue.NewMemory()
	job := newPythonJob()
	job.ExpectedOutputs = []model.ExpectedOutput{{
		Name:             "result.txt",
		Content:          []byte("3.14159"),
		ComparisonMethod: model.NumericalTolerance,
	}}
	require.NoError(t, q.Enqueue(ctx, job))

	sb := &fakeSandbox{results: []*sandbox.Result{{
		ExitCode: 0,
		Files:    map[string][]byte{"result.txt": []byte("3.14159000001")},
	}}}
	w := newTestWorker(t, q, sb)

	require.NoError(t, w.processJob(ctx, job))
	result, err := q.GetResult(ctx, job.ID)
	require.NoError(t, err)
	assert.True(t, result.Passed)
	require.Len(t, result.Comparisons, 1)
	assert.True(t, result.Comparisons[0].Matched)
}

func TestProcessJobNumericalMismatchFailsAtExecutionVerified(t *testing.T) {
	ctx := context.Background()
	q := queue.NewMemory()
	job := newPythonJob()
	job.ExpectedOutputs = []model.ExpectedOutput{{
		Name:             "result.txt",
		Content:          []byte("3.14159"),
		ComparisonMethod: model.NumericalTolerance,
	}}
	require.NoError(t, q.Enqueue(ctx, job))

	sb := &fakeSandbox{results: []*sandbox.Result{{
		ExitCode: 0,
		Files:    map[string][]byte{"result.txt": []byte("2.71828")},
	}}}
	w := newTestWorker(t, q, sb)

	require.NoError(t, w.processJob(ctx, job))
	result, err := q.GetResult(ctx, job.ID)
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.Equal(t, model.L2ExecutionVerified, result.Level)
}

func TestProcessJobLeanSuccessReachesFormallyProven(t *testing.T) {
	ctx := context.Background()
	q := queue.NewMemory()
	job := newPythonJob()
	job.RunnerKind = model.Lean4
	job.CodeContent = "theorem t : 1 = 1 := rfl"
	require.NoError(t, q.Enqueue(ctx, job))

	sb := &fakeSandbox{results: []*sandbox.Result{{ExitCode: 0}}}
	w := newTestWorker(t, q, sb)

	require.NoError(t, w.processJob(ctx, job))
	result, err := q.GetResult(ctx, job.ID)
	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Equal(t, model.L6FormallyProven, result.Level)
}

func TestProcessJobTimeoutIsUnverified(t *testing.T) {
	ctx := context.Background()
	q := queue.NewMemory()
	job := newPythonJob()
	require.NoError(t, q.Enqueue(ctx, job))

	sb := &fakeSandbox{results: []*sandbox.Result{{ExitCode: -1, TimedOut: true}}}
	w := newTestWorker(t, q, sb)

	require.NoError(t, w.processJob(ctx, job))
	result, err := q.GetResult(ctx, job.ID)
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.Equal(t, model.L0Unverified, result.Level)
	assert.Contains(t, result.ErrorMessage, "timeout")
}

func TestProcessJobReturnsSandboxError(t *testing.T) {
	ctx := context.Background()
	q := queue.NewMemory()
	job := newPythonJob()
	require.NoError(t, q.Enqueue(ctx, job))

	sb := &fakeSandbox{err: assert.AnError}
	w := newTestWorker(t, q, sb)

	err := w.processJob(ctx, job)
	assert.Error(t, err)
}

func TestHandleAcknowledgesEvenWhenProcessJobFails(t *testing.T) {
	ctx := context.Background()
	q := queue.NewMemory()
	job := newPythonJob()
	require.NoError(t, q.Enqueue(ctx, job))

	deliveries, err := q.Dequeue(ctx, queue.ConsumerGroup, "c1", 1, 0)
	require.NoError(t, err)
	require.Len(t, deliveries, 1)

	sb := &fakeSandbox{err: assert.AnError}
	rq := &ackRecordingQueue{Queue: q}
	w := newTestWorker(t, rq, sb)

	w.handle(ctx, deliveries[0])

	assert.Equal(t, 1, sb.calls)
	assert.Equal(t, []string{deliveries[0].MessageID}, rq.acked)

	status, err := q.GetStatus(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Failed, status)
}

// ackRecordingQueue wraps a queue.Queue and records every acknowledged
// message id.
type ackRecordingQueue struct {
	queue.Queue
	acked []string
}

func (a *ackRecordingQueue) Acknowledge(ctx context.Context, group, messageID string) error {
	a.acked = append(a.acked, messageID)
	return a.Queue.Acknowledge(ctx, group, messageID)
}
