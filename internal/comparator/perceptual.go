package comparator

import (
	"crypto/sha256"
	"crypto/subtle"

	"github.com/Noah-Everett/phiacta-verify/internal/model"
)

// perceptualChunkSize is the window used for the byte-similarity fallback
// when the two payloads aren't byte-identical.
const perceptualChunkSize = 65536

// perceptualComparator implements PERCEPTUAL_HASH: a SHA-256 equality fast
// path, falling back to a per-byte similarity score when the hashes
// differ. Despite the name this isn't a true perceptual hash (no DCT/pHash
// decoding) — it's a byte-level similarity measure for binary blobs like
// rendered plots, matching the reference comparator's scope.
type perceptualComparator struct{}

func (perceptualComparator) Compare(expected, actual []byte, opts Options) Result {
	threshold := 0.95
	if opts.Threshold != nil {
		threshold = *opts.Threshold
	}

	expHash := sha256.Sum256(expected)
	actHash := sha256.Sum256(actual)
	if subtle.ConstantTimeCompare(expHash[:], actHash[:]) == 1 {
		return Result{
			Matched: true,
			Method:  model.PerceptualHash,
			Score:   1.0,
			Details: map[string]interface{}{
				"mode":           "sha256_identical",
				"expected_sha256": hex(expHash[:]),
				"actual_sha256":   hex(actHash[:]),
			},
		}
	}

	score := chunkSimilarity(expected, actual)
	matched := score >= threshold

	return Result{
		Matched: matched,
		Method:  model.PerceptualHash,
		Score:   score,
		Details: map[string]interface{}{
			"mode":            "byte_similarity",
			"expected_sha256": hex(expHash[:]),
			"actual_sha256":   hex(actHash[:]),
			"threshold":       threshold,
			"byte_length_expected": len(expected),
			"byte_length_actual":   len(actual),
		},
	}
}

// chunkSimilarity walks both payloads perceptualChunkSize bytes at a
// time and counts individual matching byte positions over their
// overlapping prefix, normalized by the longer payload's length — a
// single differing byte inside an otherwise-identical payload costs
// only that one byte, not its whole chunk. perceptualChunkSize bounds
// the loop's working set rather than defining an equality granularity.
// Returns 1.0 for two empty payloads.
func chunkSimilarity(expected, actual []byte) float64 {
	total := len(expected)
	if len(actual) > total {
		total = len(actual)
	}
	if total == 0 {
		return 1.0
	}

	overlap := len(expected)
	if len(actual) < overlap {
		overlap = len(actual)
	}

	matches := 0
	for start := 0; start < overlap; start += perceptualChunkSize {
		end := start + perceptualChunkSize
		if end > overlap {
			end = overlap
		}
		for i := start; i < end; i++ {
			if expected[i] == actual[i] {
				matches++
			}
		}
	}
	return float64(matches) / float64(total)
}

func hex(b []byte) string {
	const digits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = digits[v>>4]
		out[i*2+1] = digits[v&0x0f]
	}
	return string(out)
}
