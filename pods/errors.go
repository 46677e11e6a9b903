package pods

import "errors"

var (
	// ErrValidation covers bad names, limits, paths, and unknown
	// references.
	ErrValidation = errors.New("invalid pod input")

	// ErrCapacity is returned when a bounded table is full.
	ErrCapacity = errors.New("pod table capacity reached")

	// ErrState is returned for a transition or mutation that is
	// illegal in the pod's current state.
	ErrState = errors.New("illegal pod state transition")
)
