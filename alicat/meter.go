package alicat

import (
	"context"
	"fmt"
	"sync"

	"github.com/arloliu/go-alicat/transport"
)

// exchanger is the slice of transport.Session the protocol layer depends on.
type exchanger interface {
	Exchange(ctx context.Context, command string) (string, bool)
	Drain(ctx context.Context)
	Close() error
	Address() string
}

// Meter is a session with an Alicat device in the read-only meter role.
//
// The connection is established lazily by the first operation and recovered
// automatically between operations; a Meter is safe for concurrent use.
type Meter struct {
	session exchanger
	release func() error
	unit    string

	mu         sync.Mutex
	open       bool
	shape      shape
	buttonLock bool
	firmware   string
}

// NewMeter creates a meter session for the device with the given unit
// identifier behind address, owning its own physical connection.
func NewMeter(address string, opts ...Option) (*Meter, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}

	cfg, err := transport.NewConfig(address, o.transportOpts...)
	if err != nil {
		return nil, err
	}

	session, err := transport.NewSession(cfg)
	if err != nil {
		return nil, err
	}

	return newMeter(session, session.Close, o.unit), nil
}

// NewSharedMeter creates a meter session sharing the physical connection for
// address with other sessions through the transport default pool. Use it
// when several devices with distinct unit identifiers hang off one link.
func NewSharedMeter(address string, opts ...Option) (*Meter, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}

	cfg, err := transport.NewConfig(address, o.transportOpts...)
	if err != nil {
		return nil, err
	}

	session, err := transport.DefaultPool.Acquire(cfg)
	if err != nil {
		return nil, err
	}

	release := func() error {
		transport.DefaultPool.Release(address)
		return nil
	}

	return newMeter(session, release, o.unit), nil
}

func newMeter(session exchanger, release func() error, unit string) *Meter {
	return &Meter{
		session: session,
		release: release,
		unit:    unit,
		open:    true,
	}
}

// Unit returns the session's unit identifier.
func (m *Meter) Unit() string { return m.unit }

// Address returns the endpoint address of the underlying connection.
func (m *Meter) Address() string { return m.session.Address() }

// Get queries and decodes the current device state.
//
// The number of fields depends on the device: meters lack the setpoint,
// models with the totalizer option report total flow. The schema adapts to
// the observed response shape; trailing overrange markers are dropped and
// the button-lock flag is captured for IsLocked. Lines matching no known
// shape map onto the leading baseline fields, returning the partial state
// the device reported.
func (m *Meter) Get(ctx context.Context) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.getLocked(ctx)
}

func (m *Meter) getLocked(ctx context.Context) (State, error) {
	if err := m.checkOpenLocked(); err != nil {
		return nil, err
	}

	line, ok := m.session.Exchange(ctx, cmdRead(m.unit))
	if !ok {
		return nil, fmt.Errorf("%w: state query", ErrNoReply)
	}

	unit, tokens := decode(line)
	tokens = stripOverrange(tokens)

	if unit != m.unit {
		return nil, fmt.Errorf("%w: response addressed %q, session unit is %q",
			ErrUnitMismatch, unit, m.unit)
	}

	tokens, locked := extractLock(tokens)
	m.buttonLock = locked

	sh, fields := layoutForCount(len(tokens))
	if sh != shapeUnknown {
		m.shape = sh
	}

	state := make(State, len(fields))
	for i, field := range fields {
		state[field] = coerce(tokens[i])
	}

	return state, nil
}

// Firmware returns the device firmware version, queried once and cached for
// the life of the session.
func (m *Meter) Firmware(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkOpenLocked(); err != nil {
		return "", err
	}

	if m.firmware != "" {
		return m.firmware, nil
	}

	line, ok := m.session.Exchange(ctx, cmdFirmware(m.unit))
	if !ok {
		return "", fmt.Errorf("%w: firmware query", ErrNoReply)
	}
	m.firmware = line

	return line, nil
}

// IsLocked reports whether the device's front-panel buttons are locked,
// refreshing the state with one read.
func (m *Meter) IsLocked(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.getLocked(ctx); err != nil {
		return false, err
	}

	return m.buttonLock, nil
}

// Lock disables the device's front-panel buttons.
func (m *Meter) Lock(ctx context.Context) error {
	return m.run(ctx, cmdLock(m.unit), "lock buttons")
}

// Unlock re-enables the device's front-panel buttons.
func (m *Meter) Unlock(ctx context.Context) error {
	return m.run(ctx, cmdUnlock(m.unit), "unlock buttons")
}

// TarePressure tares the pressure reading.
func (m *Meter) TarePressure(ctx context.Context) error {
	return m.run(ctx, cmdTarePressure(m.unit), "tare pressure")
}

// TareVolumetric tares the volumetric flow reading.
func (m *Meter) TareVolumetric(ctx context.Context) error {
	return m.run(ctx, cmdTareVolumetric(m.unit), "tare volumetric flow")
}

// ResetTotalizer resets the accumulated flow counter on models with the
// totalizer option.
func (m *Meter) ResetTotalizer(ctx context.Context) error {
	return m.run(ctx, cmdResetTotalizer(m.unit), "reset totalizer")
}

// Flush discards any buffered unread bytes on the link.
func (m *Meter) Flush(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkOpenLocked(); err != nil {
		return err
	}

	m.session.Drain(ctx)

	return nil
}

// Close releases the session. A closed session rejects all further
// operations with ErrNotOpen. Close is idempotent.
func (m *Meter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.open {
		return nil
	}
	m.open = false

	return m.release()
}

func (m *Meter) currentShape() shape {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.shape
}

func (m *Meter) checkOpenLocked() error {
	if !m.open {
		return fmt.Errorf("%w: unit %s at %s", ErrNotOpen, m.unit, m.session.Address())
	}

	return nil
}

// query performs one command/response exchange, mapping a missing reply to
// ErrNoReply tagged with the operation's intent.
func (m *Meter) query(ctx context.Context, command, intent string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkOpenLocked(); err != nil {
		return "", err
	}

	line, ok := m.session.Exchange(ctx, command)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoReply, intent)
	}

	return line, nil
}

// run performs a command whose only structured failure is the rejection
// token.
func (m *Meter) run(ctx context.Context, command, intent string) error {
	line, err := m.query(ctx, command, intent)
	if err != nil {
		return err
	}

	if line == rejectToken {
		return fmt.Errorf("%w: %s", ErrRejected, intent)
	}

	return nil
}
