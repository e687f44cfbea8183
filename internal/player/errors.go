package player

import "errors"

// Error definitions shared by the coordinator and its collaborators.
var (
	// ErrWouldBlock means no data is available right now; the caller
	// is responsible for retrying.
	ErrWouldBlock = errors.New("operation would block")
	// ErrEndOfStream is the terminal result of a drained stream.
	ErrEndOfStream = errors.New("end of stream")
	// InfoDiscontinuity is informational, not a failure: the stream
	// hit a format or time discontinuity, or the request raced a
	// flush or teardown and should wind down.
	InfoDiscontinuity = errors.New("discontinuity")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrAlreadyConnected = errors.New("already connected")
	ErrDRMNoLicense     = errors.New("no DRM license")
	ErrUnknown          = errors.New("unknown error")
)
