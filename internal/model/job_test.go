package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultResourceLimitsValidate(t *testing.T) {
	assert.NoError(t, DefaultResourceLimits().Validate())
}

func TestResourceLimitsValidateRejectsEachNonPositiveField(t *testing.T) {
	base := DefaultResourceLimits()

	mutators := []func(*ResourceLimits){
		func(r *ResourceLimits) { r.CPUSeconds = 0 },
		func(r *ResourceLimits) { r.MemoryMB = -1 },
		func(r *ResourceLimits) { r.DiskMB = 0 },
		func(r *ResourceLimits) { r.WallClockSeconds = 0 },
		func(r *ResourceLimits) { r.MaxPIDs = 0 },
	}
	for _, mutate := range mutators {
		limits := base
		mutate(&limits)
		assert.Error(t, limits.Validate())
	}
}

func TestTruncateResultTextLeavesShortTextUntouched(t *testing.T) {
	s := "short"
	assert.Equal(t, s, TruncateResultText(s))
}

func TestTruncateResultTextCutsAtRuneBoundary(t *testing.T) {
	runes := make([]rune, ResultTextTruncateLen+50)
	for i := range runes {
		runes[i] = 'x'
	}
	s := string(runes)
	truncated := TruncateResultText(s)
	assert.Len(t, []rune(truncated), ResultTextTruncateLen)
}
