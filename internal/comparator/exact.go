package comparator

import (
	"strings"
	"unicode/utf8"

	"github.com/Noah-Everett/phiacta-verify/internal/model"
)

// exactComparator implements EXACT: UTF-8 text comparison with trailing
// whitespace/empty-line normalization, falling back to byte-for-byte
// comparison when either side is not valid UTF-8.
type exactComparator struct{}

func (exactComparator) Compare(expected, actual []byte, _ Options) Result {
	details := map[string]interface{}{
		"byte_length_expected": len(expected),
		"byte_length_actual":   len(actual),
	}

	var matched bool
	if utf8.Valid(expected) && utf8.Valid(actual) {
		matched = normalizeText(string(expected)) == normalizeText(string(actual))
		details["mode"] = "text"
	} else {
		matched = string(expected) == string(actual)
		details["mode"] = "binary"
	}

	score := 0.0
	if matched {
		score = 1.0
	}
	return Result{Matched: matched, Method: model.Exact, Score: score, Details: details}
}

// normalizeText rstrips every line, drops trailing empty lines, and
// rejoins with \n. It does not canonicalize CRLF beyond what splitting on
// line boundaries already does (spec.md §9 Design Notes).
func normalizeText(text string) string {
	lines := splitLines(text)
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// splitLines splits on \n and \r\n, matching Python's str.splitlines for
// the cases that matter here (it does not special-case \r alone, \v, \f,
// or Unicode line separators, which never appear in comparator payloads).
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}
