package alicat

import "errors"

// Sentinel errors for the Alicat protocol layer.
//
// ErrNoReply is the only transient one: the device did not answer within the
// transport timeout, and the caller may retry the whole logical operation.
// The rest indicate protocol violations, device rejections, or caller bugs
// and are not retried by this package.
var (
	// ErrNotOpen is returned by any operation on a closed session.
	ErrNotOpen = errors.New("alicat: session is not open")

	// ErrNoReply means the device did not answer the command.
	ErrNoReply = errors.New("alicat: no reply from device")

	// ErrUnitMismatch means a response echoed a unit identifier other than
	// the session's, indicating a wiring or addressing error.
	ErrUnitMismatch = errors.New("alicat: unit identifier mismatch")

	// ErrRejected means the device answered a command with the reserved
	// rejection token.
	ErrRejected = errors.New("alicat: command rejected by device")

	// ErrVerify means a write's read-back did not match the requested value
	// within tolerance.
	ErrVerify = errors.New("alicat: write verification failed")

	// ErrInvalid means caller-supplied arguments failed local validation
	// before any command was sent.
	ErrInvalid = errors.New("alicat: invalid argument")

	// ErrUnsupported means the device firmware lacks the requested feature.
	ErrUnsupported = errors.New("alicat: not supported by device firmware")
)
