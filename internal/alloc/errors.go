package alloc

import "errors"

var (
	// ErrAlreadyAllocated is returned when a student self-applies while
	// already holding a room. The admin override path does not raise it.
	ErrAlreadyAllocated = errors.New("alloc: student already has a room allocated")
	// ErrValidation is returned for bad or missing input.
	ErrValidation = errors.New("alloc: invalid input")
)
