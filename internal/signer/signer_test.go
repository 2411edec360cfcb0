package signer

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Noah-Everett/phiacta-verify/internal/model"
)

func sampleResult() *model.VerificationResult {
	return &model.VerificationResult{
		ID:             uuid.New(),
		JobID:          uuid.New(),
		ClaimID:        uuid.New(),
		Level:          model.L3OutputVerifiedDeterministic,
		Passed:         true,
		CodeHash:       "abc123",
		ExecutionTimeS: 1.5,
		CreatedAt:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func newTestSigner(t *testing.T) *Signer {
	t.Helper()
	s, err := Load("")
	require.NoError(t, err)
	return s
}

func TestSignThenVerifyRoundTrips(t *testing.T) {
	s := newTestSigner(t)
	r := sampleResult()

	sig, err := s.Sign(r)
	require.NoError(t, err)
	assert.NotEmpty(t, sig)
	assert.True(t, s.Verify(r, sig))
}

func TestVerifyFailsAfterMutatingCanonicalField(t *testing.T) {
	s := newTestSigner(t)
	r := sampleResult()

	sig, err := s.Sign(r)
	require.NoError(t, err)

	r.Passed = false
	assert.False(t, s.Verify(r, sig))
}

func TestVerifyFailsForWrongSignature(t *testing.T) {
	s := newTestSigner(t)
	r := sampleResult()

	other := newTestSigner(t)
	sig, err := other.Sign(r)
	require.NoError(t, err)

	assert.False(t, s.Verify(r, sig))
}

func TestVerifyFailsForGarbageSignature(t *testing.T) {
	s := newTestSigner(t)
	r := sampleResult()
	assert.False(t, s.Verify(r, "not-base64!!"))
}

func TestCanonicalPayloadIgnoresNonCanonicalFields(t *testing.T) {
	r := sampleResult()
	before, err := CanonicalPayload(r)
	require.NoError(t, err)

	r.Stdout = "this should not affect the signed payload"
	r.RunnerImage = "python-runner"
	after, err := CanonicalPayload(r)
	require.NoError(t, err)

	assert.Equal(t, before, after)
}
