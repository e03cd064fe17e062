package alicat

import (
	"fmt"
	"time"

	"github.com/arloliu/go-alicat/logger"
	"github.com/arloliu/go-alicat/transport"
)

// DefaultUnit is the factory-default unit identifier.
const DefaultUnit = "A"

type options struct {
	unit          string
	transportOpts []transport.Option
}

// Option represents a functional option for configuring a device session.
type Option interface {
	apply(*options) error
}

type optFunc func(*options) error

func (f optFunc) apply(o *options) error { return f(o) }

func buildOptions(opts []Option) (*options, error) {
	o := &options{unit: DefaultUnit}

	for _, opt := range opts {
		if err := opt.apply(o); err != nil {
			return nil, err
		}
	}

	return o, nil
}

// WithUnit sets the unit identifier addressing one device on a shared bus,
// a single letter A-Z. Defaults to "A".
func WithUnit(unit string) Option {
	return optFunc(func(o *options) error {
		if len(unit) != 1 || unit[0] < 'A' || unit[0] > 'Z' {
			return fmt.Errorf("%w: unit %q must be a single letter A-Z", ErrInvalid, unit)
		}
		o.unit = unit

		return nil
	})
}

// WithTimeout overrides the transport connect/exchange timeout.
func WithTimeout(timeout time.Duration) Option {
	return transportOpt(transport.WithTimeout(timeout))
}

// WithBaudRate sets the serial baud rate.
func WithBaudRate(baud int) Option {
	return transportOpt(transport.WithBaudRate(baud))
}

// WithDataBits sets the serial data bits.
func WithDataBits(bits int) Option {
	return transportOpt(transport.WithDataBits(bits))
}

// WithStopBits sets the serial stop bits.
func WithStopBits(bits int) Option {
	return transportOpt(transport.WithStopBits(bits))
}

// WithParity sets the serial parity mode.
func WithParity(parity transport.Parity) Option {
	return transportOpt(transport.WithParity(parity))
}

// WithLogger sets the logger used by the underlying transport session.
func WithLogger(l logger.Logger) Option {
	return transportOpt(transport.WithLogger(l))
}

func transportOpt(opt transport.Option) Option {
	return optFunc(func(o *options) error {
		o.transportOpts = append(o.transportOpts, opt)
		return nil
	})
}
