package alicat

import (
	"context"
)

// Kind classifies what answered a connectivity probe.
type Kind int

const (
	// KindNone means no recognizable device answered.
	KindNone Kind = iota
	// KindMeter is a read-only device: its state line has no setpoint.
	KindMeter
	// KindController is a writable device: its state line has a setpoint.
	KindController
)

func (k Kind) String() string {
	switch k {
	case KindMeter:
		return "meter"
	case KindController:
		return "controller"
	default:
		return "none"
	}
}

// Detect is a stateless connectivity probe: it opens a session to address,
// issues one state read, classifies the device by whether the response
// shape carries a setpoint field, and closes the session regardless of
// outcome.
//
// Iterate Detect over candidate ports to identify where devices are
// connected.
func Detect(ctx context.Context, address string, opts ...Option) (Kind, error) {
	m, err := NewMeter(address, opts...)
	if err != nil {
		return KindNone, err
	}
	defer m.Close()

	if _, err := m.Get(ctx); err != nil {
		return KindNone, err
	}

	if m.currentShape().hasSetpoint() {
		return KindController, nil
	}

	return KindMeter, nil
}
