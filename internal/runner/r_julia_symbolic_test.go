package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Noah-Everett/phiacta-verify/internal/model"
)

func TestScriptRRunnerPrepareAndParse(t *testing.T) {
	job := &model.VerificationJob{CodeContent: "print(1+1)"}
	exec, err := scriptRRunner{}.Prepare(job)
	require.NoError(t, err)
	assert.Equal(t, rImage, exec.Image)
	assert.Equal(t, "print(1+1)", exec.CodeFiles["script.R"])

	out := scriptRRunner{}.ParseOutput(0, "2\n", "", nil)
	assert.True(t, out.Success)
	assert.Equal(t, model.L2ExecutionVerified, out.Level)
}

func TestRMarkdownRunnerRendersToOutputDir(t *testing.T) {
	job := &model.VerificationJob{CodeContent: "---\ntitle: x\n---\n"}
	exec, err := rmarkdownRunner{}.Prepare(job)
	require.NoError(t, err)
	assert.Equal(t, rImage, exec.Image)
	assert.Contains(t, exec.Command, "rmarkdown::render('/code/input.Rmd', output_dir='/output/')")
}

func TestJuliaRunnerPrepareAndParse(t *testing.T) {
	job := &model.VerificationJob{CodeContent: "println(1)"}
	exec, err := juliaRunner{}.Prepare(job)
	require.NoError(t, err)
	assert.Equal(t, juliaImage, exec.Image)

	out := juliaRunner{}.ParseOutput(1, "", "ERROR: boom", nil)
	assert.False(t, out.Success)
	assert.Equal(t, model.L0Unverified, out.Level)
}

func TestSymbolicRunnerSharesPythonImage(t *testing.T) {
	job := &model.VerificationJob{CodeContent: "from sympy import symbols"}
	exec, err := symbolicRunner{}.Prepare(job)
	require.NoError(t, err)
	assert.Equal(t, pythonImage, exec.Image)
	assert.Equal(t, job.CodeContent, exec.CodeFiles["symbolic.py"])
}
