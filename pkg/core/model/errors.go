package model

import "errors"

// Error taxonomy for the allocation engine. Callers classify wrapped
// errors with errors.Is against these sentinels.
var (
	// ErrValidation covers malformed input: unknown shift types, empty
	// rejection reasons, bad date ranges.
	ErrValidation = errors.New("careshift: validation error")

	// ErrNotFound covers unknown staff, slot, or request IDs.
	ErrNotFound = errors.New("careshift: not found")

	// ErrConflict covers double assignment, transitions from a terminal
	// request state, and lost concurrent commits.
	ErrConflict = errors.New("careshift: conflict")

	// ErrNoEligibleCandidate signals an empty exchange proposal result.
	// This is an expected, user-facing outcome, not a system failure.
	ErrNoEligibleCandidate = errors.New("careshift: no eligible candidate")

	// ErrTimeout signals that schedule generation hit its deadline
	// before producing any complete pattern.
	ErrTimeout = errors.New("careshift: generation timed out")

	// ErrInvariant signals a defect in the engine itself: a score outside
	// 0-100, a negative headcount, a slot with more than one assignment.
	// It is asserted before any commit; the write is aborted rather than
	// persisting inconsistent state.
	ErrInvariant = errors.New("careshift: invariant violation")
)
