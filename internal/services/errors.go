package services

import "errors"

var (
	// ErrInvalidDate marks unparseable or out-of-range calendar date input.
	// Surfaced to the caller, never retried.
	ErrInvalidDate = errors.New("invalid calendar date")

	// ErrInvalidCycleParameters marks a cycle length or period duration
	// outside the allowed domain.
	ErrInvalidCycleParameters = errors.New("invalid cycle parameters")

	// ErrIncompleteCycleData marks missing required fields before a
	// prediction or classification can run.
	ErrIncompleteCycleData = errors.New("cycle data incomplete")

	// ErrScheduling marks a reminder regeneration that could not proceed
	// because no next-period date was derivable. No partial reminders are
	// created when it is returned.
	ErrScheduling = errors.New("reminder scheduling failed")
)
