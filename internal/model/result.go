package model

import (
	"time"

	"github.com/google/uuid"
)

// OutputComparison is the result of comparing one actual artifact against
// its expected value.
type OutputComparison struct {
	Name    string                 `json:"name"`
	Matched bool                   `json:"matched"`
	Method  ComparisonMethod       `json:"method"`
	Score   float64                `json:"score"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// VerificationResult is the immutable record produced once a job reaches
// a terminal state that has diagnostic output worth keeping.
type VerificationResult struct {
	ID              uuid.UUID           `json:"id"`
	JobID           uuid.UUID           `json:"job_id"`
	ClaimID         uuid.UUID           `json:"claim_id"`
	Level           VerificationLevel   `json:"verification_level"`
	Passed          bool                `json:"passed"`
	CodeHash        string              `json:"code_hash"`
	Signature       string              `json:"signature"`
	ExecutionTime   time.Duration       `json:"-"`
	ExecutionTimeS  float64             `json:"execution_time_seconds"`
	Comparisons     []OutputComparison  `json:"outputs_matched,omitempty"`
	Stdout          string              `json:"stdout,omitempty"`
	Stderr          string              `json:"stderr,omitempty"`
	ErrorMessage    string              `json:"error_message,omitempty"`
	RunnerImage     string              `json:"runner_image"`
	CreatedAt       time.Time           `json:"created_at"`
}

// ResultTextTruncateLen is the maximum number of characters of stdout/stderr
// kept in a stored VerificationResult (spec Open Question #1: distinct from
// the sandbox's own 64 KiB capture truncation, and never larger than it).
const ResultTextTruncateLen = 1000

// TruncateResultText shortens s to ResultTextTruncateLen runes for storage
// in a VerificationResult, without adding a marker (the sandbox capture
// already carries its own truncation marker when it cuts output).
func TruncateResultText(s string) string {
	r := []rune(s)
	if len(r) <= ResultTextTruncateLen {
		return s
	}
	return string(r[:ResultTextTruncateLen])
}
