package model

import (
	"time"

	"github.com/google/uuid"
)

// ResourceLimits are the hard caps the sandbox enforces for one job.
// Every field must be strictly positive; Validate checks that.
type ResourceLimits struct {
	CPUSeconds       int `json:"cpu_seconds"`
	MemoryMB         int `json:"memory_mb"`
	DiskMB           int `json:"disk_mb"`
	WallClockSeconds int `json:"wall_clock_seconds"`
	MaxPIDs          int `json:"max_pids"`
}

// DefaultResourceLimits mirrors the reference implementation's defaults.
func DefaultResourceLimits() ResourceLimits {
	return ResourceLimits{
		CPUSeconds:       120,
		MemoryMB:         2048,
		DiskMB:           256,
		WallClockSeconds: 120,
		MaxPIDs:          64,
	}
}

// Validate returns an error naming the first non-positive field.
func (r ResourceLimits) Validate() error {
	switch {
	case r.CPUSeconds <= 0:
		return errInvalidLimit("cpu_seconds")
	case r.MemoryMB <= 0:
		return errInvalidLimit("memory_mb")
	case r.DiskMB <= 0:
		return errInvalidLimit("disk_mb")
	case r.WallClockSeconds <= 0:
		return errInvalidLimit("wall_clock_seconds")
	case r.MaxPIDs <= 0:
		return errInvalidLimit("max_pids")
	}
	return nil
}

// EnvironmentSpec carries only the process environment sub-mapping a job
// may request; any other field present in a submitted spec is ignored.
type EnvironmentSpec struct {
	Env map[string]string `json:"env,omitempty"`
}

// ExpectedOutput describes one artifact the worker should compare against
// the runner's actual output after execution.
type ExpectedOutput struct {
	Name             string           `json:"name"`
	Content          []byte           `json:"content,omitempty"`
	ContentHash      string           `json:"content_hash,omitempty"`
	ComparisonMethod ComparisonMethod `json:"comparison_method"`
	Tolerance        *float64         `json:"tolerance,omitempty"`
}

// VerificationJob is an immutable submission record.
type VerificationJob struct {
	ID              uuid.UUID        `json:"id"`
	ClaimID         uuid.UUID        `json:"claim_id"`
	SubmitterID     string           `json:"submitted_by"`
	RunnerKind      RunnerKind       `json:"runner_type"`
	CodeContent     string           `json:"code_content"`
	CodeHash        string           `json:"code_hash"`
	EnvironmentSpec *EnvironmentSpec `json:"environment_spec,omitempty"`
	ExpectedOutputs []ExpectedOutput `json:"expected_outputs,omitempty"`
	ResourceLimits  ResourceLimits   `json:"resource_limits"`
	Status          JobStatus        `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type invalidLimitError string

func (e invalidLimitError) Error() string { return string(e) + " must be a positive integer" }

func errInvalidLimit(field string) error { return invalidLimitError(field) }
