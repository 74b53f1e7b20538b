// Package domain provides the job, submission and fold record models and domain level errors.
package domain

import "errors"

var (
	// ErrInvalidDescriptor is returned when a job descriptor fails validation
	ErrInvalidDescriptor = errors.New("invalid job descriptor")
	// ErrNoEntries is returned for an input file without sequences
	ErrNoEntries = errors.New("input file has no entries")
	// ErrAlreadySubmitted is returned when the ledger already holds the input file
	ErrAlreadySubmitted = errors.New("input file already submitted")
	// ErrJobIDNotFound is returned when the scheduler output carries no job id
	ErrJobIDNotFound = errors.New("job id not found in scheduler output")
	// ErrSubmissionNotFound is returned by repositories for unknown ids
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrMalformedRecord is returned for a fold record that cannot be decoded
	ErrMalformedRecord = errors.New("malformed fold record")
	// ErrUnknownProfile is returned when the active profile is not configured
	ErrUnknownProfile = errors.New("unknown profile")
)
