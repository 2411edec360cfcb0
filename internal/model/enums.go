// Package model holds the data types shared across the verification
// pipeline: jobs, results, and the enumerations that classify them.
package model

// VerificationLevel is a hierarchical verification level for a scientific
// claim. Levels form a total order: L0 < L1 < ... < L6.
type VerificationLevel string

const (
	L0Unverified               VerificationLevel = "L0_UNVERIFIED"
	L1SyntaxVerified           VerificationLevel = "L1_SYNTAX_VERIFIED"
	L2ExecutionVerified        VerificationLevel = "L2_EXECUTION_VERIFIED"
	L3OutputVerifiedDeterministic VerificationLevel = "L3_OUTPUT_VERIFIED_DETERMINISTIC"
	L4OutputVerifiedStatistical   VerificationLevel = "L4_OUTPUT_VERIFIED_STATISTICAL"
	L5IndependentlyReplicated  VerificationLevel = "L5_INDEPENDENTLY_REPLICATED"
	L6FormallyProven           VerificationLevel = "L6_FORMALLY_PROVEN"
)

// rank gives the total order over verification levels.
var rank = map[VerificationLevel]int{
	L0Unverified:                  0,
	L1SyntaxVerified:              1,
	L2ExecutionVerified:           2,
	L3OutputVerifiedDeterministic: 3,
	L4OutputVerifiedStatistical:   4,
	L5IndependentlyReplicated:     5,
	L6FormallyProven:              6,
}

// Less reports whether l is strictly below other in the verification ladder.
func (l VerificationLevel) Less(other VerificationLevel) bool {
	return rank[l] < rank[other]
}

// RunnerKind identifies the execution environment a job requires.
type RunnerKind string

const (
	PythonScript   RunnerKind = "PYTHON_SCRIPT"
	PythonNotebook RunnerKind = "PYTHON_NOTEBOOK"
	RScript        RunnerKind = "R_SCRIPT"
	RMarkdown      RunnerKind = "R_MARKDOWN"
	Julia          RunnerKind = "JULIA"
	Lean4          RunnerKind = "LEAN4"
	Sympy          RunnerKind = "SYMPY"
	Sage           RunnerKind = "SAGE"
)

// Valid reports whether k is one of the known runner kinds.
func (k RunnerKind) Valid() bool {
	switch k {
	case PythonScript, PythonNotebook, RScript, RMarkdown, Julia, Lean4, Sympy, Sage:
		return true
	default:
		return false
	}
}

// JobStatus is a state in the verification job lifecycle. Transitions only
// move forward; COMPLETED, FAILED, TIMED_OUT, and CANCELLED are absorbing.
type JobStatus string

const (
	Pending   JobStatus = "PENDING"
	Queued    JobStatus = "QUEUED"
	Running   JobStatus = "RUNNING"
	Completed JobStatus = "COMPLETED"
	Failed    JobStatus = "FAILED"
	TimedOut  JobStatus = "TIMED_OUT"
	Cancelled JobStatus = "CANCELLED"
)

var terminal = map[JobStatus]bool{
	Completed: true,
	Failed:    true,
	TimedOut:  true,
	Cancelled: true,
}

// IsTerminal reports whether s is an absorbing state.
func (s JobStatus) IsTerminal() bool {
	return terminal[s]
}

var forward = map[JobStatus][]JobStatus{
	Pending: {Queued},
	Queued:  {Running},
	Running: {Completed, Failed, TimedOut, Cancelled},
}

// CanTransitionTo reports whether moving from s to next is a legal
// forward transition in the job state machine.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	if s.IsTerminal() {
		return false
	}
	for _, allowed := range forward[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ComparisonMethod names a comparator strategy for an expected output.
type ComparisonMethod string

const (
	Exact               ComparisonMethod = "EXACT"
	NumericalTolerance  ComparisonMethod = "NUMERICAL_TOLERANCE"
	Statistical         ComparisonMethod = "STATISTICAL"
	PerceptualHash      ComparisonMethod = "PERCEPTUAL_HASH"
)
