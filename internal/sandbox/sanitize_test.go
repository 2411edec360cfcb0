package sandbox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeEnvDropsBlockedKeysOnly(t *testing.T) {
	in := map[string]string{
		"PATH":      "/usr/bin",
		"LD_PRELOAD": "/evil.so",
		"FOO":       "bar",
	}
	out := sanitizeEnv(in)
	assert.Len(t, out, 1)
	assert.Equal(t, "FOO=bar", out[0])
}

func TestSanitizeTextStripsAnsiAndControlChars(t *testing.T) {
	s := "\x1b[31mred\x1b[0m text\x07\x00 done\n"
	out := sanitizeText(s)
	assert.Equal(t, "red text done\n", out)
}

func TestSanitizeTextPreservesNewlinesTabsAndCarriageReturns(t *testing.T) {
	s := "a\tb\nc\rd"
	assert.Equal(t, s, sanitizeText(s))
}

func TestTruncateCaptureLeavesShortOutputUntouched(t *testing.T) {
	s := "short output"
	assert.Equal(t, s, truncateCapture(s))
}

func TestTruncateCaptureCutsAndMarksLongOutput(t *testing.T) {
	s := strings.Repeat("a", captureTruncateLen+100)
	out := truncateCapture(s)
	assert.True(t, strings.HasPrefix(out, strings.Repeat("a", captureTruncateLen)))
	assert.Contains(t, out, "truncated")
	assert.Less(t, len(out)-len(truncationMarker), len(s))
}
