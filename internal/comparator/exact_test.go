package comparator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Noah-Everett/phiacta-verify/internal/model"
)

func TestExactIdentityMatches(t *testing.T) {
	samples := [][]byte{
		[]byte(""),
		[]byte("hello world\n"),
		[]byte("line one\nline two\nline three"),
		{0x00, 0x01, 0xff, 0xfe},
	}
	for _, s := range samples {
		r := Get(model.Exact).Compare(s, s, Options{})
		assert.True(t, r.Matched)
		assert.Equal(t, 1.0, r.Score)
	}
}

func TestExactIgnoresTrailingWhitespaceAndBlankLines(t *testing.T) {
	expected := []byte("result: 42\n")
	actual := []byte("result: 42   \n\n\n")
	r := Get(model.Exact).Compare(expected, actual, Options{})
	assert.True(t, r.Matched)
}

func TestExactRejectsContentDifference(t *testing.T) {
	r := Get(model.Exact).Compare([]byte("42"), []byte("43"), Options{})
	assert.False(t, r.Matched)
	assert.Equal(t, 0.0, r.Score)
}

func TestExactFallsBackToByteCompareForInvalidUTF8(t *testing.T) {
	expected := []byte{0xff, 0xfe, 0x00}
	actual := []byte{0xff, 0xfe, 0x00}
	r := Get(model.Exact).Compare(expected, actual, Options{})
	assert.True(t, r.Matched)
	assert.Equal(t, "binary", r.Details["mode"])
}
