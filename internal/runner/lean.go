package runner

import "github.com/Noah-Everett/phiacta-verify/internal/model"

const leanImage = "lean-runner"

// leanRunner invokes the Lean 4 kernel as an opaque subprocess. It is the
// only runner whose zero exit claims above L2: the kernel itself checked
// the proof, so a clean exit is a formal verification, not merely a
// successful execution.
type leanRunner struct{}

func (leanRunner) Prepare(job *model.VerificationJob) (PreparedExecution, error) {
	return PreparedExecution{
		Image:     leanImage,
		Command:   []string{"lean", "/code/proof.lean"},
		CodeFiles: map[string]string{"proof.lean": job.CodeContent},
		Env:       envFrom(job),
	}, nil
}

func (leanRunner) ParseOutput(exitCode int, stdout, stderr string, files map[string][]byte) RunnerOutput {
	level, success := classifyExit(exitCode, model.L6FormallyProven)
	return RunnerOutput{Files: files, Logs: stdout, Errors: errorsFromStderr(stderr), Level: level, Success: success}
}
