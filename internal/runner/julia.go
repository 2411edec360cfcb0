package runner

import "github.com/Noah-Everett/phiacta-verify/internal/model"

const juliaImage = "julia-runner"

// juliaRunner runs a plain Julia script.
type juliaRunner struct{}

func (juliaRunner) Prepare(job *model.VerificationJob) (PreparedExecution, error) {
	return PreparedExecution{
		Image:     juliaImage,
		Command:   []string{"julia", "/code/script.jl"},
		CodeFiles: map[string]string{"script.jl": job.CodeContent},
		Env:       envFrom(job),
	}, nil
}

func (juliaRunner) ParseOutput(exitCode int, stdout, stderr string, files map[string][]byte) RunnerOutput {
	level, success := classifyExit(exitCode, model.L2ExecutionVerified)
	return RunnerOutput{Files: files, Logs: stdout, Errors: errorsFromStderr(stderr), Level: level, Success: success}
}
