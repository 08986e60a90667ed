package domain

import (
	"errors"
)

var (
	// ErrJobNotFound is returned when no job exists for the given id
	ErrJobNotFound = errors.New("job not found")

	// ErrBidNotFound is returned when no bid exists for the given id
	ErrBidNotFound = errors.New("bid not found")

	// ErrDuplicateBid is returned when a worker already has a bid on a job
	ErrDuplicateBid = errors.New("worker already bid on this job")

	// ErrInvalidTransition is returned when a status update violates the
	// forward-only transition graph
	ErrInvalidTransition = errors.New("illegal bid status transition")
)
