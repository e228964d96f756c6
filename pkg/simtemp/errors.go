package simtemp

import "errors"

var (
	// ErrInvalidRate is returned when a sampling rate outside [1,100] Hz
	// is requested. State is left unchanged.
	ErrInvalidRate = errors.New("sampling rate out of range")
)
