package runner

import (
	"fmt"
	"time"

	"github.com/Noah-Everett/phiacta-verify/internal/model"
)

// registry is the static enum-to-handler dispatch table (spec.md §9),
// mirroring the teacher's package-level runners map.
var registry = map[model.RunnerKind]Runner{
	model.PythonScript:   scriptPythonRunner{},
	model.PythonNotebook: notebookPythonRunner{},
	model.RScript:        scriptRRunner{},
	model.RMarkdown:      rmarkdownRunner{},
	model.Julia:          juliaRunner{},
	model.Lean4:          leanRunner{},
	model.Sympy:          symbolicRunner{},
	model.Sage:           symbolicRunner{},
}

// defaultTimeouts are hints only; the effective sandbox timeout always
// comes from the job's own resource limits (spec.md §4.3).
var defaultTimeouts = map[model.RunnerKind]time.Duration{
	model.PythonScript:   120 * time.Second,
	model.PythonNotebook: 120 * time.Second,
	model.RScript:        120 * time.Second,
	model.RMarkdown:      120 * time.Second,
	model.Julia:          120 * time.Second,
	model.Lean4:          300 * time.Second,
	model.Sympy:          60 * time.Second,
	model.Sage:           60 * time.Second,
}

// For returns the runner registered for kind.
func For(kind model.RunnerKind) (Runner, error) {
	r, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("runner: unknown runner kind %q", kind)
	}
	return r, nil
}

// DefaultTimeout returns the documented timeout hint for kind.
func DefaultTimeout(kind model.RunnerKind) time.Duration {
	return defaultTimeouts[kind]
}
