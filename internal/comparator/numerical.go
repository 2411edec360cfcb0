package comparator

import (
	"encoding/json"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Noah-Everett/phiacta-verify/internal/model"
)

const (
	defaultRTol = 1e-10
	defaultATol = 1e-12
)

// numberRE matches an optionally-signed number token: the special tokens
// inf/infinity/nan (case-insensitive), or a decimal mantissa with an
// optional scientific exponent whose letter may be e/E/d/D (Fortran
// style).
var numberRE = regexp.MustCompile(`(?i)[+-]?(?:inf(?:inity)?|nan|(?:\d+\.?\d*|\.\d+)(?:[edED][+-]?\d+)?)`)

// numericalComparator implements NUMERICAL_TOLERANCE: pairwise comparison
// of numbers extracted from expected/actual payloads within rtol/atol,
// mirroring numpy.allclose semantics plus NaN==NaN.
type numericalComparator struct{}

func (numericalComparator) Compare(expected, actual []byte, opts Options) Result {
	rtol := defaultRTol
	if opts.RTol != nil {
		rtol = *opts.RTol
	}
	atol := defaultATol
	if opts.ATol != nil {
		atol = *opts.ATol
	}

	expectedValues := parseNumbers(expected)
	actualValues := parseNumbers(actual)

	count := len(expectedValues)
	if len(actualValues) > count {
		count = len(actualValues)
	}
	if count == 0 {
		return Result{
			Matched: true,
			Method:  model.NumericalTolerance,
			Score:   1.0,
			Details: map[string]interface{}{
				"max_relative_error": 0.0,
				"max_absolute_error": 0.0,
				"values_compared":    0,
				"mismatches":         []interface{}{},
			},
		}
	}

	var mismatches []map[string]interface{}
	maxRelErr := 0.0
	maxAbsErr := 0.0

	pairs := len(expectedValues)
	if len(actualValues) < pairs {
		pairs = len(actualValues)
	}
	lengthMismatch := len(expectedValues) != len(actualValues)

	for i := 0; i < pairs; i++ {
		exp := expectedValues[i]
		act := actualValues[i]
		absErr, relErr, ok := valuesClose(exp, act, rtol, atol)
		if absErr > maxAbsErr {
			maxAbsErr = absErr
		}
		if relErr > maxRelErr {
			maxRelErr = relErr
		}
		if !ok {
			mismatches = append(mismatches, map[string]interface{}{
				"index":           i,
				"expected":        formatValue(exp),
				"actual":          formatValue(act),
				"absolute_error":  absErr,
				"relative_error":  relErr,
			})
		}
	}

	if lengthMismatch {
		longer := expectedValues
		source := "expected"
		if len(actualValues) > len(expectedValues) {
			longer = actualValues
			source = "actual"
		}
		for i := pairs; i < len(longer); i++ {
			m := map[string]interface{}{
				"index":          i,
				"absolute_error": math.Inf(1),
				"relative_error": math.Inf(1),
				"note":           "value only present in " + source,
			}
			if i < len(expectedValues) {
				m["expected"] = formatValue(expectedValues[i])
			} else {
				m["expected"] = "<missing>"
			}
			if i < len(actualValues) {
				m["actual"] = formatValue(actualValues[i])
			} else {
				m["actual"] = "<missing>"
			}
			mismatches = append(mismatches, m)
		}
		maxAbsErr = math.Inf(1)
		maxRelErr = math.Inf(1)
	}

	matched := len(mismatches) == 0

	score := 0.0
	if !math.IsInf(maxRelErr, 0) && !math.IsNaN(maxRelErr) {
		score = clamp01(1.0 - maxRelErr)
	}

	if mismatches == nil {
		mismatches = []map[string]interface{}{}
	}

	return Result{
		Matched: matched,
		Method:  model.NumericalTolerance,
		Score:   score,
		Details: map[string]interface{}{
			"max_relative_error": maxRelErr,
			"max_absolute_error": maxAbsErr,
			"values_compared":    count,
			"mismatches":         mismatches,
		},
	}
}

// parseNumbers extracts an ordered list of numbers from data: JSON first
// (recursively collecting every numeric leaf), falling back to a regex
// scan of the decoded text.
func parseNumbers(data []byte) []float64 {
	var obj interface{}
	if err := json.Unmarshal(data, &obj); err == nil {
		var values []float64
		collectJSONNumbers(obj, &values)
		if len(values) > 0 {
			return values
		}
	}

	text := string(data)
	matches := numberRE.FindAllString(text, -1)
	values := make([]float64, 0, len(matches))
	for _, m := range matches {
		values = append(values, toFloat(m))
	}
	return values
}

func collectJSONNumbers(obj interface{}, acc *[]float64) {
	switch v := obj.(type) {
	case float64:
		*acc = append(*acc, v)
	case []interface{}:
		for _, item := range v {
			collectJSONNumbers(item, acc)
		}
	case map[string]interface{}:
		// Visit object members in sorted key order so the extracted list
		// is deterministic.
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			collectJSONNumbers(v[k], acc)
		}
	}
}

// toFloat converts a token to float64, translating Fortran-style D/d
// exponent markers to e before parsing.
func toFloat(token string) float64 {
	normalized := strings.NewReplacer("d", "e", "D", "e").Replace(token)
	lower := strings.ToLower(normalized)
	switch {
	case lower == "inf" || lower == "infinity" || lower == "+inf" || lower == "+infinity":
		return math.Inf(1)
	case lower == "-inf" || lower == "-infinity":
		return math.Inf(-1)
	case lower == "nan" || lower == "+nan" || lower == "-nan":
		return math.NaN()
	}
	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func valuesClose(expected, actual, rtol, atol float64) (absErr, relErr float64, ok bool) {
	if math.IsNaN(expected) && math.IsNaN(actual) {
		return 0, 0, true
	}
	if math.IsNaN(expected) || math.IsNaN(actual) {
		return math.Inf(1), math.Inf(1), false
	}
	if expected == actual {
		return 0, 0, true
	}
	if math.IsInf(expected, 0) || math.IsInf(actual, 0) {
		return math.Inf(1), math.Inf(1), false
	}

	absErr = math.Abs(expected - actual)
	if expected == 0.0 {
		relErr = absErr
	} else {
		relErr = absErr / math.Abs(expected)
	}
	ok = absErr <= atol+rtol*math.Abs(expected)
	return absErr, relErr, ok
}

func formatValue(v float64) interface{} {
	if math.IsNaN(v) {
		return "NaN"
	}
	if math.IsInf(v, 1) {
		return "Infinity"
	}
	if math.IsInf(v, -1) {
		return "-Infinity"
	}
	return v
}
