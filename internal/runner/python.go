package runner

import "github.com/Noah-Everett/phiacta-verify/internal/model"

const pythonImage = "python-runner"

// scriptPythonRunner runs a plain Python script.
type scriptPythonRunner struct{}

func (scriptPythonRunner) Prepare(job *model.VerificationJob) (PreparedExecution, error) {
	return PreparedExecution{
		Image:     pythonImage,
		Command:   []string{"python", "/code/run.py"},
		CodeFiles: map[string]string{"run.py": job.CodeContent},
		Env:       envFrom(job),
	}, nil
}

func (scriptPythonRunner) ParseOutput(exitCode int, stdout, stderr string, files map[string][]byte) RunnerOutput {
	level, success := classifyExit(exitCode, model.L2ExecutionVerified)
	return RunnerOutput{Files: files, Logs: stdout, Errors: errorsFromStderr(stderr), Level: level, Success: success}
}

// notebookWrapperTemplate converts notebook.ipynb to a runnable script
// before executing it, so a notebook submission is driven through the
// same single-process invocation as a script submission.
const notebookWrapperTemplate = `import nbformat
from nbconvert import PythonExporter

notebook = nbformat.read("/code/notebook.ipynb", as_version=4)
source, _ = PythonExporter().from_notebook_node(notebook)
with open("/tmp/notebook_converted.py", "w") as f:
    f.write(source)

exec(compile(source, "/code/notebook.ipynb", "exec"), {"__name__": "__main__"})
`

// notebookPythonRunner runs a Jupyter notebook by converting it to a
// script and executing the result in the same process.
type notebookPythonRunner struct{}

func (notebookPythonRunner) Prepare(job *model.VerificationJob) (PreparedExecution, error) {
	return PreparedExecution{
		Image:   pythonImage,
		Command: []string{"python", "/code/run.py"},
		CodeFiles: map[string]string{
			"notebook.ipynb": job.CodeContent,
			"run.py":         notebookWrapperTemplate,
		},
		Env: envFrom(job),
	}, nil
}

func (notebookPythonRunner) ParseOutput(exitCode int, stdout, stderr string, files map[string][]byte) RunnerOutput {
	level, success := classifyExit(exitCode, model.L2ExecutionVerified)
	return RunnerOutput{Files: files, Logs: stdout, Errors: errorsFromStderr(stderr), Level: level, Success: success}
}

func errorsFromStderr(stderr string) []string {
	if stderr == "" {
		return nil
	}
	return []string{stderr}
}
