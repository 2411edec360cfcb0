package comparator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Noah-Everett/phiacta-verify/internal/model"
)

func TestNumericalIdentityMatchesForVariousTexts(t *testing.T) {
	samples := [][]byte{
		[]byte("3.14159"),
		[]byte(`{"result": 42, "error": 0.001}`),
		[]byte("1.0d+10 2.5D-3"),
		[]byte("no numbers here"),
	}
	for _, s := range samples {
		r := Get(model.NumericalTolerance).Compare(s, s, Options{})
		assert.True(t, r.Matched, "expected %q to match itself", s)
	}
}

func TestNumericalWithinDefaultTolerance(t *testing.T) {
	r := Get(model.NumericalTolerance).Compare([]byte("1.0000000000"), []byte("1.0000000001"), Options{})
	assert.True(t, r.Matched)
}

func TestNumericalOutsideTolerance(t *testing.T) {
	r := Get(model.NumericalTolerance).Compare([]byte("1.0"), []byte("2.0"), Options{})
	assert.False(t, r.Matched)
	mismatches, ok := r.Details["mismatches"].([]map[string]interface{})
	assert.True(t, ok)
	assert.Len(t, mismatches, 1)
}

func TestNumericalCustomRTolWidensMatch(t *testing.T) {
	loose := 0.5
	r := Get(model.NumericalTolerance).Compare([]byte("1.0"), []byte("1.3"), Options{RTol: &loose})
	assert.True(t, r.Matched)
}

func TestNumericalNaNEqualsNaN(t *testing.T) {
	r := Get(model.NumericalTolerance).Compare([]byte("nan"), []byte("NaN"), Options{})
	assert.True(t, r.Matched)
}

func TestNumericalInfOnlyEqualsItself(t *testing.T) {
	r := Get(model.NumericalTolerance).Compare([]byte("inf"), []byte("inf"), Options{})
	assert.True(t, r.Matched)

	r = Get(model.NumericalTolerance).Compare([]byte("inf"), []byte("-inf"), Options{})
	assert.False(t, r.Matched)
}

func TestNumericalFortranExponent(t *testing.T) {
	r := Get(model.NumericalTolerance).Compare([]byte("1.5d0"), []byte("1.5"), Options{})
	assert.True(t, r.Matched)
}

func TestNumericalLengthMismatchFails(t *testing.T) {
	r := Get(model.NumericalTolerance).Compare([]byte("1 2 3"), []byte("1 2"), Options{})
	assert.False(t, r.Matched)
}
