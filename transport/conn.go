package transport

import (
	"context"
	"io"
	"time"
)

// lineConn is the byte stream a Session exchanges lines over. Reads are
// bounded by the most recent setReadTimeout call.
type lineConn interface {
	io.ReadWriteCloser

	setReadTimeout(d time.Duration) error
}

// dialer opens the physical endpoint. It is the single capability an
// endpoint implementation must provide; everything else (locking, timeout
// accounting, draining, the exchange protocol) is shared Session behavior.
type dialer interface {
	dial(ctx context.Context) (lineConn, error)
}
