// Package runner maps a VerificationJob onto a concrete container
// invocation (image, command, file layout) and classifies the sandbox's
// exit into a verification level (spec.md §4.3).
package runner

import "github.com/Noah-Everett/phiacta-verify/internal/model"

// PreparedExecution is everything the sandbox needs to run one job: the
// image to launch, the command to execute, the files to materialize into
// /code (and optionally /data), and the process environment to pass
// through (already restricted to job.environment_spec.env).
type PreparedExecution struct {
	Image     string
	Command   []string
	CodeFiles map[string]string
	DataFiles map[string]string
	Env       map[string]string
}

// RunnerOutput is a runner's interpretation of one sandbox execution.
type RunnerOutput struct {
	Files   map[string][]byte
	Logs    string
	Errors  []string
	Level   model.VerificationLevel
	Success bool
}

// Runner turns a job into a sandbox invocation and classifies its result.
// Both methods are pure: no I/O, no shared state.
type Runner interface {
	Prepare(job *model.VerificationJob) (PreparedExecution, error)
	ParseOutput(exitCode int, stdout, stderr string, files map[string][]byte) RunnerOutput
}

// classifyExit implements the uniform exit-classification rule shared by
// every runner: a zero exit claims successLevel, any other exit is L0 and
// unsuccessful. Lean4 is the only runner whose successLevel is above L2,
// because a zero exit from the Lean kernel already encodes a checked proof.
func classifyExit(exitCode int, successLevel model.VerificationLevel) (model.VerificationLevel, bool) {
	if exitCode == 0 {
		return successLevel, true
	}
	return model.L0Unverified, false
}

// envFrom extracts the process-environment sub-mapping a job may request;
// every other field of a submitted EnvironmentSpec is ignored (spec.md §9).
func envFrom(job *model.VerificationJob) map[string]string {
	if job.EnvironmentSpec == nil {
		return nil
	}
	return job.EnvironmentSpec.Env
}
