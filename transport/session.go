// Package transport manages the physical connection to an Alicat device:
// a local serial port or a serial-to-TCP gateway.
//
// A Session owns one connection and serializes every open/exchange/close
// path under a single lock, so two concurrent callers can never interleave
// one caller's write with another caller's read. The wire protocol carries
// no request IDs; this atomicity is the only thing keeping command/response
// pairs matched.
//
// Industrial devices are routinely unplugged. A Session therefore never
// treats a failed exchange as fatal to the caller: it reconnects on the next
// use, counts consecutive timeouts, and only after MaxTimeouts consecutive
// failures forces the connection closed.
package transport

import (
	"bufio"
	"context"
	"strings"
	"sync"

	"github.com/arloliu/go-alicat/logger"
)

// eol terminates every command and response line on the wire.
const eol = '\r'

// Session performs atomic "send one line, await one line" exchanges over a
// single physical connection, reconnecting automatically between uses.
//
// Create a Session with NewSession; the zero value is not usable.
type Session struct {
	cfg    *Config
	dialer dialer
	logger logger.Logger

	mu           sync.Mutex
	conn         lineConn
	reader       *bufio.Reader
	open         bool
	timeouts     int
	reconnecting bool
}

// NewSession creates a Session for the endpoint described by cfg.
//
// The connection is not established here; it is opened lazily by the first
// Exchange, or explicitly via Open.
func NewSession(cfg *Config) (*Session, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	s := &Session{
		cfg:    cfg,
		logger: cfg.logger,
	}

	if cfg.serial {
		s.dialer = newSerialDialer(cfg)
	} else {
		s.dialer = &tcpDialer{host: cfg.host, port: cfg.port, timeout: cfg.timeout}
	}

	return s, nil
}

// Address returns the endpoint address of the session.
func (s *Session) Address() string {
	return s.cfg.address
}

// Opened reports whether the session currently holds an open connection.
func (s *Session) Opened() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.open
}

// Open establishes the connection if it is not already open.
//
// A failed attempt leaves the session closed and is logged once per
// failure-to-recovery cycle rather than on every attempt; the next Exchange
// retries automatically. Open never returns a connection error for that
// reason; callers observe connectivity through Exchange results.
func (s *Session) Open(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.openLocked(ctx)
}

func (s *Session) openLocked(ctx context.Context) {
	if s.open {
		return
	}

	conn, err := s.dialer.dial(ctx)
	if err != nil {
		if !s.reconnecting {
			s.logger.Error("transport: connecting timed out",
				"address", s.cfg.address,
				"error", err)
		}
		s.reconnecting = true

		return
	}

	s.conn = conn
	s.reader = bufio.NewReader(conn)
	s.open = true
	s.timeouts = 0

	// A prior unmanaged consumer may have left bytes on the link.
	s.drainLocked()

	if s.reconnecting {
		s.logger.Info("transport: connection restored", "address", s.cfg.address)
	}
	s.reconnecting = false
}

// Exchange writes command followed by the line terminator and awaits one
// terminated response line, as a single atomic operation.
//
// The returned line has the terminator stripped, embedded NUL bytes removed,
// and surrounding whitespace trimmed. The boolean is false when the device
// did not answer: the session is closed and could not reconnect, the write
// failed, or the read timed out. Each failure increments the consecutive
// timeout count; at MaxTimeouts the connection is forcibly closed and must
// be reopened by a later call.
func (s *Session) Exchange(ctx context.Context, command string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.openLocked(ctx)
	if !s.open {
		return "", false
	}

	line, err := s.exchangeLocked(ctx, command)
	if err != nil {
		s.timeouts++
		if s.timeouts >= MaxTimeouts {
			s.logger.Error("transport: exchange failed repeatedly, closing connection",
				"address", s.cfg.address,
				"timeouts", s.timeouts,
				"error", err)
			_ = s.closeLocked()
		}

		return "", false
	}

	s.timeouts = 0

	return line, true
}

func (s *Session) exchangeLocked(ctx context.Context, command string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if _, err := s.conn.Write(append([]byte(command), eol)); err != nil {
		return "", err
	}

	if err := s.conn.setReadTimeout(s.cfg.timeout); err != nil {
		return "", err
	}

	line, err := s.reader.ReadString(eol)
	if err != nil {
		return "", err
	}

	line = strings.TrimSuffix(line, string(eol))
	line = strings.ReplaceAll(line, "\x00", "")

	return strings.TrimSpace(line), nil
}

// Drain discards any buffered unread bytes left by concurrent or duplicate
// consumers of the same physical link. It is best-effort: read failures and
// timeouts are swallowed.
func (s *Session) Drain(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return
	}

	s.drainLocked()
}

func (s *Session) drainLocked() {
	if !s.open {
		return
	}

	discarded, _ := s.reader.Discard(s.reader.Buffered())

	if err := s.conn.setReadTimeout(DrainTimeout); err == nil {
		buf := make([]byte, 256)
		n, _ := s.conn.Read(buf)
		discarded += n
	}

	if discarded > 0 {
		s.logger.Warn("transport: discarded stale bytes, is the link shared?",
			"address", s.cfg.address,
			"bytes", discarded)
	}
}

// Close gracefully shuts down the connection. It is idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closeLocked()
}

func (s *Session) closeLocked() error {
	if !s.open {
		return nil
	}

	s.open = false
	err := s.conn.Close()
	s.conn = nil
	s.reader = nil

	return err
}
