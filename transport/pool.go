package transport

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

// Pool shares one Session per endpoint address between multiple logical
// device sessions, reference-counted so the physical link is closed exactly
// when its last user releases it.
//
// Sharing matters on RS-485 buses where several devices with distinct unit
// identifiers hang off one serial port: each device session still performs
// atomic exchanges under the shared Session's lock, so commands from
// different units never interleave.
type Pool struct {
	entries *xsync.MapOf[string, *poolEntry]
}

type poolEntry struct {
	mu      sync.Mutex
	session *Session
	refs    int // -1 marks an entry being removed
}

// NewPool creates an empty connection pool.
func NewPool() *Pool {
	return &Pool{entries: xsync.NewMapOf[string, *poolEntry]()}
}

// DefaultPool is the package-level pool used by callers that don't manage
// their own.
var DefaultPool = NewPool()

// Acquire returns the shared Session for cfg's address, creating it on first
// use. Every Acquire must be paired with a Release of the same address.
//
// The first acquirer's cfg determines the link parameters; later acquirers
// of the same address share the existing connection as-is.
func (p *Pool) Acquire(cfg *Config) (*Session, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	for {
		entry, _ := p.entries.LoadOrCompute(cfg.address, func() *poolEntry {
			return &poolEntry{}
		})

		entry.mu.Lock()
		if entry.refs < 0 {
			// Entry is being torn down by a concurrent Release; retry with
			// a fresh entry.
			entry.mu.Unlock()
			continue
		}

		if entry.session == nil {
			session, err := NewSession(cfg)
			if err != nil {
				entry.mu.Unlock()
				return nil, err
			}
			entry.session = session
		}

		entry.refs++
		entry.mu.Unlock()

		return entry.session, nil
	}
}

// Release drops one reference to the shared Session for address. The last
// release closes the underlying connection and removes the entry.
func (p *Pool) Release(address string) {
	entry, ok := p.entries.Load(address)
	if !ok {
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.refs <= 0 {
		return
	}

	entry.refs--
	if entry.refs == 0 {
		entry.refs = -1
		_ = entry.session.Close()
		entry.session = nil
		p.entries.Delete(address)
	}
}

// Size returns the number of endpoints currently held by the pool.
func (p *Pool) Size() int {
	return p.entries.Size()
}
