package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Noah-Everett/phiacta-verify/internal/model"
)

func TestForReturnsARunnerForEveryKind(t *testing.T) {
	kinds := []model.RunnerKind{
		model.PythonScript, model.PythonNotebook, model.RScript,
		model.RMarkdown, model.Julia, model.Lean4, model.Sympy, model.Sage,
	}
	for _, k := range kinds {
		r, err := For(k)
		require.NoError(t, err)
		assert.NotNil(t, r)
	}
}

func TestForUnknownKindErrors(t *testing.T) {
	_, err := For(model.RunnerKind("NOT_A_KIND"))
	assert.Error(t, err)
}

func TestDefaultTimeoutLeanIsLongerThanScripts(t *testing.T) {
	assert.Greater(t, DefaultTimeout(model.Lean4), DefaultTimeout(model.PythonScript))
}
