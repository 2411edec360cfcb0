package runner

import "github.com/Noah-Everett/phiacta-verify/internal/model"

// symbolicRunner runs a Sympy or Sage script. Both kinds share the
// python-runner image and symbolic.py file layout (spec.md §4.3 runner
// table) — Sage's dialect differences are the image's concern, not this
// runner's.
type symbolicRunner struct{}

func (symbolicRunner) Prepare(job *model.VerificationJob) (PreparedExecution, error) {
	return PreparedExecution{
		Image:     pythonImage,
		Command:   []string{"python", "/code/symbolic.py"},
		CodeFiles: map[string]string{"symbolic.py": job.CodeContent},
		Env:       envFrom(job),
	}, nil
}

func (symbolicRunner) ParseOutput(exitCode int, stdout, stderr string, files map[string][]byte) RunnerOutput {
	level, success := classifyExit(exitCode, model.L2ExecutionVerified)
	return RunnerOutput{Files: files, Logs: stdout, Errors: errorsFromStderr(stderr), Level: level, Success: success}
}
