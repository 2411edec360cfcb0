package comparator

import (
	"math"
	"sort"

	"github.com/Noah-Everett/phiacta-verify/internal/model"
)

// defaultSignificance is the maximum allowed normalized deviation between
// any one of the five summary statistics before a mismatch is reported.
const defaultSignificance = 0.05

// summary holds the five descriptive statistics statisticalComparator
// compares: mean, population standard deviation, min, max, median.
type summary struct {
	mean, stddev, min, max, median float64
}

// statisticalComparator implements STATISTICAL: both sides are reduced to
// summary statistics over their extracted numeric values, and the
// statistics are compared pairwise within a normalized-deviation
// threshold. A two-sample Kolmogorov-Smirnov statistic is reported
// alongside as informational context; it does not affect the verdict.
type statisticalComparator struct{}

func (statisticalComparator) Compare(expected, actual []byte, opts Options) Result {
	significance := defaultSignificance
	if opts.Significance != nil {
		significance = *opts.Significance
	}

	expectedValues := dropNonFinite(parseNumbers(expected))
	actualValues := dropNonFinite(parseNumbers(actual))

	if len(expectedValues) == 0 || len(actualValues) == 0 {
		return Result{
			Matched: len(expectedValues) == len(actualValues),
			Method:  model.Statistical,
			Score:   0,
			Details: map[string]interface{}{
				"reason": "no numeric values extracted from one or both payloads",
			},
		}
	}

	expSummary := summarize(expectedValues)
	actSummary := summarize(actualValues)

	deviations := map[string]float64{
		"mean":   normalizedDeviation(expSummary.mean, actSummary.mean),
		"stddev": normalizedDeviation(expSummary.stddev, actSummary.stddev),
		"min":    normalizedDeviation(expSummary.min, actSummary.min),
		"max":    normalizedDeviation(expSummary.max, actSummary.max),
		"median": normalizedDeviation(expSummary.median, actSummary.median),
	}

	maxDeviation := 0.0
	var failing []string
	for name, d := range deviations {
		if d > maxDeviation {
			maxDeviation = d
		}
		if d > significance {
			failing = append(failing, name)
		}
	}
	sort.Strings(failing)
	if failing == nil {
		failing = []string{}
	}

	matched := len(failing) == 0
	score := clamp01(1.0 - maxDeviation)

	ks := kolmogorovSmirnov(expectedValues, actualValues)

	return Result{
		Matched: matched,
		Method:  model.Statistical,
		Score:   score,
		Details: map[string]interface{}{
			"expected_summary":        summaryMap(expSummary),
			"actual_summary":          summaryMap(actSummary),
			"deviations":              deviations,
			"significance_threshold":  significance,
			"failing_statistics":      failing,
			"ks_statistic":            ks,
			"ks_statistic_is_advisory": true,
		},
	}
}

// dropNonFinite removes NaN and +/-Inf values (spec.md §4.4: "drop NaN
// and infinite values") before they reach summarize/kolmogorovSmirnov —
// both would otherwise propagate a NaN into every derived statistic,
// which then fails JSON-encoding when the result is persisted.
func dropNonFinite(values []float64) []float64 {
	out := values[:0]
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

func summarize(values []float64) summary {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	n := float64(len(sorted))
	mean := sum / n

	variance := 0.0
	for _, v := range sorted {
		d := v - mean
		variance += d * d
	}
	variance /= n

	return summary{
		mean:   mean,
		stddev: math.Sqrt(variance),
		min:    sorted[0],
		max:    sorted[len(sorted)-1],
		median: median(sorted),
	}
}

// median assumes values is already sorted.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2.0
}

func summaryMap(s summary) map[string]interface{} {
	return map[string]interface{}{
		"mean":   s.mean,
		"stddev": s.stddev,
		"min":    s.min,
		"max":    s.max,
		"median": s.median,
	}
}

// normalizedDeviation scales |expected-actual| by the larger magnitude of
// the two (floored at 1) so that deviations on large-magnitude statistics
// aren't dominated by absolute scale.
func normalizedDeviation(expected, actual float64) float64 {
	denom := math.Max(math.Max(math.Abs(expected), math.Abs(actual)), 1.0)
	return math.Abs(expected-actual) / denom
}

// kolmogorovSmirnov computes the two-sample KS statistic: the maximum
// absolute difference between the two empirical CDFs, via a sorted-merge
// two-pointer walk over the combined sample space. Tied values are
// consumed from both samples in the same step.
func kolmogorovSmirnov(a, b []float64) float64 {
	as := append([]float64(nil), a...)
	bs := append([]float64(nil), b...)
	sort.Float64s(as)
	sort.Float64s(bs)

	na, nb := float64(len(as)), float64(len(bs))
	i, j := 0, 0
	cdfA, cdfB := 0.0, 0.0
	maxDiff := 0.0

	for i < len(as) && j < len(bs) {
		x := math.Min(as[i], bs[j])
		for i < len(as) && as[i] <= x {
			i++
		}
		for j < len(bs) && bs[j] <= x {
			j++
		}
		cdfA = float64(i) / na
		cdfB = float64(j) / nb
		if d := math.Abs(cdfA - cdfB); d > maxDiff {
			maxDiff = d
		}
	}
	for i < len(as) {
		i++
		cdfA = float64(i) / na
		if d := math.Abs(cdfA - cdfB); d > maxDiff {
			maxDiff = d
		}
	}
	for j < len(bs) {
		j++
		cdfB = float64(j) / nb
		if d := math.Abs(cdfA - cdfB); d > maxDiff {
			maxDiff = d
		}
	}
	return maxDiff
}
