package transport

import (
	"context"
	"net"
	"time"
)

// tcpDialer connects to a serial-to-TCP gateway.
type tcpDialer struct {
	host    string
	port    string
	timeout time.Duration
}

func (d *tcpDialer) dial(ctx context.Context) (lineConn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var nd net.Dialer
	conn, err := nd.DialContext(dialCtx, "tcp", net.JoinHostPort(d.host, d.port))
	if err != nil {
		return nil, err
	}

	return &tcpConn{Conn: conn}, nil
}

type tcpConn struct {
	net.Conn
}

func (c *tcpConn) setReadTimeout(d time.Duration) error {
	return c.SetReadDeadline(time.Now().Add(d))
}
