package transport

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/arloliu/go-alicat/logger"
)

// Default serial line parameters and protocol timeouts.
//
// Alicat devices ship configured for 19200 8N1; the exchange timeout matches
// the device's worst-case response latency with margin.
const (
	DefaultBaudRate = 19200
	DefaultDataBits = 8
	DefaultStopBits = 1

	// DefaultTimeout bounds both connection establishment and the wait for a
	// single response line.
	DefaultTimeout = 750 * time.Millisecond

	// DrainTimeout bounds the best-effort read that discards bytes left on
	// the link by concurrent or stale consumers.
	DrainTimeout = 500 * time.Millisecond

	// MaxTimeouts is the number of consecutive failed exchanges after which
	// the session is forcibly closed.
	MaxTimeouts = 10
)

// Parity selects the serial parity mode.
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
)

// Config holds the endpoint address and link parameters for a Session.
//
// The address determines the transport: a path starting with "/dev" or "COM"
// selects a local serial device; anything else must be a "host:port" pair
// for a serial-to-TCP gateway.
type Config struct {
	address string

	// TCP endpoint, populated when the address is host:port.
	host string
	port string

	// Serial line parameters, only relevant for serial endpoints.
	serial   bool
	baudRate int
	dataBits int
	stopBits int
	parity   Parity

	timeout time.Duration
	logger  logger.Logger
}

// NewConfig creates a session configuration for the given endpoint address
// and applies the provided functional options in order.
func NewConfig(address string, opts ...Option) (*Config, error) {
	cfg := &Config{
		address:  address,
		baudRate: DefaultBaudRate,
		dataBits: DefaultDataBits,
		stopBits: DefaultStopBits,
		parity:   ParityNone,
		timeout:  DefaultTimeout,
		logger:   logger.GetLogger(),
	}

	if err := cfg.setAddress(address); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (cfg *Config) setAddress(address string) error {
	if address == "" {
		return errors.New("transport: address is empty")
	}

	if strings.HasPrefix(address, "/dev") || strings.HasPrefix(address, "COM") {
		cfg.serial = true
		return nil
	}

	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("transport: address must be a device path or host:port: %w", err)
	}

	cfg.host = host
	cfg.port = port

	return nil
}

// Address returns the endpoint address the configuration was created with.
func (cfg *Config) Address() string { return cfg.address }

// Serial reports whether the endpoint is a local serial device.
func (cfg *Config) Serial() bool { return cfg.serial }

// Timeout returns the connect/exchange timeout.
func (cfg *Config) Timeout() time.Duration { return cfg.timeout }

// Option represents a functional option for configuring a Config.
type Option interface {
	apply(*Config) error
}

type optFunc func(*Config) error

func (f optFunc) apply(cfg *Config) error { return f(cfg) }

// WithBaudRate sets the serial baud rate. Defaults to 19200.
func WithBaudRate(baud int) Option {
	return optFunc(func(cfg *Config) error {
		if baud <= 0 {
			return fmt.Errorf("transport: invalid baud rate: %d", baud)
		}
		cfg.baudRate = baud

		return nil
	})
}

// WithDataBits sets the serial data bits, 5 through 8. Defaults to 8.
func WithDataBits(bits int) Option {
	return optFunc(func(cfg *Config) error {
		if bits < 5 || bits > 8 {
			return fmt.Errorf("transport: invalid data bits: %d", bits)
		}
		cfg.dataBits = bits

		return nil
	})
}

// WithStopBits sets the serial stop bits, 1 or 2. Defaults to 1.
func WithStopBits(bits int) Option {
	return optFunc(func(cfg *Config) error {
		if bits != 1 && bits != 2 {
			return fmt.Errorf("transport: invalid stop bits: %d", bits)
		}
		cfg.stopBits = bits

		return nil
	})
}

// WithParity sets the serial parity mode. Defaults to ParityNone.
func WithParity(parity Parity) Option {
	return optFunc(func(cfg *Config) error {
		switch parity {
		case ParityNone, ParityOdd, ParityEven:
			cfg.parity = parity
			return nil
		default:
			return fmt.Errorf("transport: invalid parity: %d", parity)
		}
	})
}

// WithTimeout overrides the connect/exchange timeout. Defaults to 750ms.
func WithTimeout(timeout time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if timeout <= 0 {
			return fmt.Errorf("transport: invalid timeout: %v", timeout)
		}
		cfg.timeout = timeout

		return nil
	})
}

// WithLogger sets the logger for the session.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(cfg *Config) error {
		if l == nil {
			return errors.New("transport: logger is nil")
		}
		cfg.logger = l

		return nil
	})
}
