package runner

import "github.com/Noah-Everett/phiacta-verify/internal/model"

const rImage = "r-runner"

// scriptRRunner runs a plain R script.
type scriptRRunner struct{}

func (scriptRRunner) Prepare(job *model.VerificationJob) (PreparedExecution, error) {
	return PreparedExecution{
		Image:     rImage,
		Command:   []string{"Rscript", "/code/script.R"},
		CodeFiles: map[string]string{"script.R": job.CodeContent},
		Env:       envFrom(job),
	}, nil
}

func (scriptRRunner) ParseOutput(exitCode int, stdout, stderr string, files map[string][]byte) RunnerOutput {
	level, success := classifyExit(exitCode, model.L2ExecutionVerified)
	return RunnerOutput{Files: files, Logs: stdout, Errors: errorsFromStderr(stderr), Level: level, Success: success}
}

// rmarkdownRunner renders an R Markdown document to /output via knitr.
type rmarkdownRunner struct{}

func (rmarkdownRunner) Prepare(job *model.VerificationJob) (PreparedExecution, error) {
	return PreparedExecution{
		Image:   rImage,
		Command: []string{"Rscript", "-e", "rmarkdown::render('/code/input.Rmd', output_dir='/output/')"},
		CodeFiles: map[string]string{
			"input.Rmd": job.CodeContent,
		},
		Env: envFrom(job),
	}, nil
}

func (rmarkdownRunner) ParseOutput(exitCode int, stdout, stderr string, files map[string][]byte) RunnerOutput {
	level, success := classifyExit(exitCode, model.L2ExecutionVerified)
	return RunnerOutput{Files: files, Logs: stdout, Errors: errorsFromStderr(stderr), Level: level, Success: success}
}
