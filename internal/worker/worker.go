// Package worker drains the job queue and runs the verification pipeline:
// dequeue, prepare, run, parse, compare, classify, sign, store (spec.md
// §4.7).
package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Noah-Everett/phiacta-verify/internal/comparator"
	"github.com/Noah-Everett/phiacta-verify/internal/logging"
	"github.com/Noah-Everett/phiacta-verify/internal/metrics"
	"github.com/Noah-Everett/phiacta-verify/internal/model"
	"github.com/Noah-Everett/phiacta-verify/internal/queue"
	"github.com/Noah-Everett/phiacta-verify/internal/runner"
	"github.com/Noah-Everett/phiacta-verify/internal/sandbox"
	"github.com/Noah-Everett/phiacta-verify/internal/signer"
	"github.com/Noah-Everett/phiacta-verify/internal/upstream"
)

// dequeueBlock bounds every Dequeue call so cancellation latency is
// bounded (spec.md §5).
const dequeueBlock = 5000

// outerErrorBackoff is how long the loop sleeps after an unexpected
// dequeue error before trying again.
const outerErrorBackoff = 1 * time.Second

// SandboxRunner is the subset of sandbox.Docker the worker depends on;
// tests substitute a scripted fake satisfying this interface.
type SandboxRunner interface {
	Run(ctx context.Context, exec runner.PreparedExecution, policy sandbox.Policy) (*sandbox.Result, error)
}

// Worker is a long-running task that joins queue.ConsumerGroup under a
// unique consumer name and processes one message at a time.
type Worker struct {
	Queue        queue.Queue
	Sandbox      SandboxRunner
	Signer       *signer.Signer
	Upstream     upstream.Client
	ConsumerName string
}

// Run drains the queue until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		deliveries, err := w.Queue.Dequeue(ctx, queue.ConsumerGroup, w.ConsumerName, 1, dequeueBlock)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logging.L().Error("worker: dequeue failed", zap.Error(err))
			time.Sleep(outerErrorBackoff)
			continue
		}

		for _, delivery := range deliveries {
			w.handle(ctx, delivery)
		}
	}
}

// handle runs processJob for one delivery and always acknowledges it
// afterward, even if processJob fails or panics, so a poisoned message
// never loops forever (spec.md §4.7 step 2).
func (w *Worker) handle(ctx context.Context, delivery queue.Delivery) {
	defer func() {
		if r := recover(); r != nil {
			logging.L().Error("worker: panic in process_job", zap.Any("recovered", r))
			_ = w.Queue.SetStatus(ctx, delivery.Job.ID, model.Failed)
			metrics.JobsTotal.WithLabelValues(string(model.Failed)).Inc()
		}
		if err := w.Queue.Acknowledge(ctx, queue.ConsumerGroup, delivery.MessageID); err != nil {
			logging.L().Error("worker: acknowledge failed", zap.Error(err))
		}
	}()

	if err := w.processJob(ctx, delivery.Job); err != nil {
		logging.L().Error("worker: process_job failed", append(logging.JobFields(delivery.Job.ID, delivery.Job.ClaimID), zap.Error(err))...)
		_ = w.Queue.SetStatus(ctx, delivery.Job.ID, model.Failed)
		metrics.JobsTotal.WithLabelValues(string(model.Failed)).Inc()
	}
}

func (w *Worker) processJob(ctx context.Context, job *model.VerificationJob) error {
	if err := w.Queue.SetStatus(ctx, job.ID, model.Running); err != nil {
		return err
	}

	rn, err := runner.For(job.RunnerKind)
	if err != nil {
		return err
	}

	prepared, err := rn.Prepare(job)
	if err != nil {
		return err
	}

	policy := sandbox.FromResourceLimits(
		job.ResourceLimits.CPUSeconds,
		job.ResourceLimits.MemoryMB,
		job.ResourceLimits.DiskMB,
		job.ResourceLimits.WallClockSeconds,
		job.ResourceLimits.MaxPIDs,
	)

	sandboxResult, err := w.Sandbox.Run(ctx, prepared, policy)
	if err != nil {
		return err
	}
	metrics.SandboxDuration.WithLabelValues(string(job.RunnerKind)).Observe(sandboxResult.Elapsed.Seconds())

	output := rn.ParseOutput(sandboxResult.ExitCode, sandboxResult.Stdout, sandboxResult.Stderr, sandboxResult.Files)

	comparisons := compareOutputs(job, output, sandboxResult)

	level, passed := classify(sandboxResult.ExitCode, sandboxResult.TimedOut, output, comparisons)

	result := &model.VerificationResult{
		ID:             uuid.New(),
		JobID:          job.ID,
		ClaimID:        job.ClaimID,
		Level:          level,
		Passed:         passed,
		CodeHash:       job.CodeHash,
		ExecutionTime:  sandboxResult.Elapsed,
		ExecutionTimeS: sandboxResult.Elapsed.Seconds(),
		Comparisons:    comparisons,
		Stdout:         model.TruncateResultText(sandboxResult.Stdout),
		Stderr:         model.TruncateResultText(sandboxResult.Stderr),
		RunnerImage:    prepared.Image,
		CreatedAt:      time.Now().UTC(),
	}
	if sandboxResult.TimedOut {
		result.ErrorMessage = "execution exceeded wall-clock timeout"
	}

	signature, err := w.Signer.Sign(result)
	if err != nil {
		return err
	}
	result.Signature = signature

	if err := w.Queue.StoreResult(ctx, result); err != nil {
		return err
	}

	metrics.JobsTotal.WithLabelValues(string(model.Completed)).Inc()
	metrics.VerificationLevel.WithLabelValues(string(level)).Inc()

	logging.L().Info("worker: job completed",
		append(logging.JobFields(job.ID, job.ClaimID),
			zap.String("level", string(level)),
			zap.Bool("passed", passed))...)

	if w.Upstream != nil {
		if err := w.Upstream.NotifyResult(ctx, *result); err != nil {
			logging.L().Warn("worker: upstream notify failed", zap.Error(err))
		}
	}

	return nil
}

// compareOutputs runs the comparator for each expected artifact when the
// runner reported success and the job named any (spec.md §4.7 step 6).
func compareOutputs(job *model.VerificationJob, output runner.RunnerOutput, sandboxResult *sandbox.Result) []model.OutputComparison {
	if !output.Success || len(job.ExpectedOutputs) == 0 {
		return nil
	}

	comparisons := make([]model.OutputComparison, 0, len(job.ExpectedOutputs))
	for _, expected := range job.ExpectedOutputs {
		actual, ok := sandboxResult.Files[expected.Name]
		if !ok {
			comparisons = append(comparisons, model.OutputComparison{
				Name:    expected.Name,
				Matched: false,
				Method:  expected.ComparisonMethod,
				Score:   0,
				Details: map[string]interface{}{"error": "output not found"},
			})
			continue
		}

		cmp := comparator.Get(expected.ComparisonMethod)
		opts := comparator.OptionsFromTolerance(expected.ComparisonMethod, expected.Tolerance)
		cmpResult := cmp.Compare(expected.Content, actual, opts)
		comparisons = append(comparisons, model.OutputComparison{
			Name:    expected.Name,
			Matched: cmpResult.Matched,
			Method:  cmpResult.Method,
			Score:   cmpResult.Score,
			Details: cmpResult.Details,
		})
	}
	return comparisons
}

// classify implements spec.md §4.7 step 7's classification rule: the
// first matching case wins.
func classify(exitCode int, timedOut bool, output runner.RunnerOutput, comparisons []model.OutputComparison) (model.VerificationLevel, bool) {
	if timedOut {
		return model.L0Unverified, false
	}
	if !output.Success {
		if exitCode != 0 {
			return model.L1SyntaxVerified, false
		}
		return model.L0Unverified, false
	}
	if len(comparisons) > 0 {
		for _, c := range comparisons {
			if !c.Matched {
				return model.L2ExecutionVerified, false
			}
		}
		return output.Level, true
	}
	return output.Level, output.Success
}
