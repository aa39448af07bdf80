package bep15

import "errors"

var (
	// ErrTooShort is returned when a datagram is shorter than the
	// minimum size of the frame being parsed.
	ErrTooShort = errors.New("bep15: datagram too short")
	// ErrBadMagic is returned when a connect request's protocol magic
	// does not match the BEP-15 constant.
	ErrBadMagic = errors.New("bep15: bad protocol magic")
	// ErrBadAction is returned when an action field names a value this
	// package does not recognize.
	ErrBadAction = errors.New("bep15: bad action")
)
