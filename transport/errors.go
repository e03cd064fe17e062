package transport

import "errors"

// Sentinel errors for the transport layer.
var (
	ErrConfigNil = errors.New("transport: config is nil")
)
