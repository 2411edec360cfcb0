// Package comparator implements the four output-comparison strategies
// named in spec.md §4.4: EXACT, NUMERICAL_TOLERANCE, STATISTICAL, and
// PERCEPTUAL_HASH (byte-similarity).
package comparator

import "github.com/Noah-Everett/phiacta-verify/internal/model"

// Options carries the optional per-comparison parameters a caller may
// forward (tolerance, significance level, threshold). A nil or zero value
// for a field means "use the comparator's default".
type Options struct {
	RTol          *float64
	ATol          *float64
	Significance  *float64
	Threshold     *float64
}

// OptionsFromTolerance builds Options from the single generic tolerance
// value carried on an ExpectedOutput, applying it to whichever parameter
// the target method actually uses.
func OptionsFromTolerance(method model.ComparisonMethod, tolerance *float64) Options {
	if tolerance == nil {
		return Options{}
	}
	switch method {
	case model.NumericalTolerance:
		return Options{RTol: tolerance}
	case model.Statistical:
		return Options{Significance: tolerance}
	case model.PerceptualHash:
		return Options{Threshold: tolerance}
	default:
		return Options{}
	}
}

// Result is the outcome of comparing one expected payload against one
// actual payload.
type Result struct {
	Matched bool
	Method  model.ComparisonMethod
	Score   float64
	Details map[string]interface{}
}

// Comparator compares an expected payload against an actual payload.
type Comparator interface {
	Compare(expected, actual []byte, opts Options) Result
}

// registry is the static enum-to-handler dispatch table (spec.md §9:
// "tagged union keyed by enum, dispatch via a static map, no vtable
// hierarchy"). Each entry is a small stateless value.
var registry = map[model.ComparisonMethod]Comparator{
	model.Exact:              exactComparator{},
	model.NumericalTolerance: numericalComparator{},
	model.Statistical:        statisticalComparator{},
	model.PerceptualHash:     perceptualComparator{},
}

// Get returns the comparator registered for method. Requesting an unknown
// method is a programming error, not a runtime data error (spec.md §4.4),
// so Get panics rather than returning an error.
func Get(method model.ComparisonMethod) Comparator {
	c, ok := registry[method]
	if !ok {
		panic("comparator: unknown comparison method " + string(method))
	}
	return c
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
