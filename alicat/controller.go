package alicat

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/arloliu/go-alicat/transport"
)

// ControlPoint is the physical quantity a controller's setpoint targets.
type ControlPoint int

const (
	ControlPointUnset ControlPoint = iota
	ControlPointMassFlow
	ControlPointVolumetricFlow
	ControlPointAbsPressure
	ControlPointGaugePressure
	ControlPointDiffPressure
)

// controlRegister selects the control point on the device.
const controlRegister = 122

// controlPointRegisters maps each control point to its register code.
var controlPointRegisters = map[ControlPoint]int{
	ControlPointMassFlow:       0b00100101,
	ControlPointVolumetricFlow: 0b00100100,
	ControlPointAbsPressure:    0b00100010,
	ControlPointGaugePressure:  0b00100110,
	ControlPointDiffPressure:   0b00100111,
}

func controlPointForRegister(value int) (ControlPoint, bool) {
	for cp, code := range controlPointRegisters {
		if code == value {
			return cp, true
		}
	}

	return ControlPointUnset, false
}

func (cp ControlPoint) String() string {
	switch cp {
	case ControlPointMassFlow:
		return "mass flow"
	case ControlPointVolumetricFlow:
		return "volumetric flow"
	case ControlPointAbsPressure:
		return "absolute pressure"
	case ControlPointGaugePressure:
		return "gauge pressure"
	case ControlPointDiffPressure:
		return "differential pressure"
	default:
		return "unset"
	}
}

// IsFlow reports whether the control point is a flow category.
func (cp ControlPoint) IsFlow() bool {
	return cp == ControlPointMassFlow || cp == ControlPointVolumetricFlow
}

// IsPressure reports whether the control point is a pressure category.
func (cp ControlPoint) IsPressure() bool {
	return cp == ControlPointAbsPressure ||
		cp == ControlPointGaugePressure ||
		cp == ControlPointDiffPressure
}

// Setpoint write verification: the device echoes the accepted value at a
// fixed token position of the full response line.
const (
	setpointEchoIndex = 5
	setpointTolerance = 0.01
)

// Controller is a session with an Alicat device in the controller role,
// extending Meter with the writable control surface.
//
// The cached control point tracks which quantity the setpoint register
// currently targets. A flow setpoint is never written while a pressure
// control point is active (and vice versa): SetFlowRate and SetPressure
// first zero the setpoint and switch the control register.
type Controller struct {
	*Meter

	cpMu         sync.Mutex
	controlPoint ControlPoint
}

// NewController creates a controller session for the device with the given
// unit identifier behind address, owning its own physical connection.
func NewController(address string, opts ...Option) (*Controller, error) {
	m, err := NewMeter(address, opts...)
	if err != nil {
		return nil, err
	}

	return &Controller{Meter: m}, nil
}

// NewSharedController creates a controller session sharing the physical
// connection for address through the transport default pool.
func NewSharedController(address string, opts ...Option) (*Controller, error) {
	m, err := NewSharedMeter(address, opts...)
	if err != nil {
		return nil, err
	}

	return &Controller{Meter: m}, nil
}

// CurrentControlPoint returns the client-side cached control point. It is
// ControlPointUnset until the first read or write of the control register.
func (c *Controller) CurrentControlPoint() ControlPoint {
	c.cpMu.Lock()
	defer c.cpMu.Unlock()

	return c.controlPoint
}

// SetFlowRate sets the target flow rate, in the units configured at time of
// purchase.
//
// If the control point is currently a pressure category, the setpoint is
// first zeroed and the control register switched to mass flow, so the new
// setpoint is never interpreted against the pressure register.
func (c *Controller) SetFlowRate(ctx context.Context, value float64) error {
	c.cpMu.Lock()
	defer c.cpMu.Unlock()

	cp, err := c.ensureControlPointLocked(ctx)
	if err != nil {
		return err
	}

	if cp.IsPressure() {
		if err := c.writeSetpoint(ctx, 0); err != nil {
			return err
		}
		if err := c.writeControlPointLocked(ctx, ControlPointMassFlow); err != nil {
			return err
		}
	}

	return c.writeSetpoint(ctx, value)
}

// SetPressure sets the target pressure, switching the control register to
// absolute pressure first when the control point is currently a flow
// category. The counterpart of SetFlowRate.
func (c *Controller) SetPressure(ctx context.Context, value float64) error {
	c.cpMu.Lock()
	defer c.cpMu.Unlock()

	cp, err := c.ensureControlPointLocked(ctx)
	if err != nil {
		return err
	}

	if cp.IsFlow() {
		if err := c.writeSetpoint(ctx, 0); err != nil {
			return err
		}
		if err := c.writeControlPointLocked(ctx, ControlPointAbsPressure); err != nil {
			return err
		}
	}

	return c.writeSetpoint(ctx, value)
}

// ensureControlPointLocked lazily populates the cached control point from
// the device on first use.
func (c *Controller) ensureControlPointLocked(ctx context.Context) (ControlPoint, error) {
	if c.controlPoint != ControlPointUnset {
		return c.controlPoint, nil
	}

	return c.readControlPointLocked(ctx)
}

// ReadControlPoint reads the control register and refreshes the cached
// control point.
func (c *Controller) ReadControlPoint(ctx context.Context) (ControlPoint, error) {
	c.cpMu.Lock()
	defer c.cpMu.Unlock()

	return c.readControlPointLocked(ctx)
}

func (c *Controller) readControlPointLocked(ctx context.Context) (ControlPoint, error) {
	command := cmdReadControlRegister(c.unit, controlRegister)
	line, err := c.query(ctx, command, "control point read")
	if err != nil {
		return ControlPointUnset, err
	}

	value, err := parseEqualsValue(line)
	if err != nil {
		return ControlPointUnset, err
	}

	cp, ok := controlPointForRegister(value)
	if !ok {
		return ControlPointUnset, fmt.Errorf("alicat: unexpected control register value %d", value)
	}
	c.controlPoint = cp

	return cp, nil
}

// WriteControlPoint writes the control register, verifies the echoed code,
// and only then updates the cached control point.
func (c *Controller) WriteControlPoint(ctx context.Context, cp ControlPoint) error {
	c.cpMu.Lock()
	defer c.cpMu.Unlock()

	return c.writeControlPointLocked(ctx, cp)
}

func (c *Controller) writeControlPointLocked(ctx context.Context, cp ControlPoint) error {
	code, ok := controlPointRegisters[cp]
	if !ok {
		return fmt.Errorf("%w: control point %v is not writable", ErrInvalid, cp)
	}

	command := cmdWriteControlRegister(c.unit, controlRegister, code)
	line, err := c.query(ctx, command, "control point write")
	if err != nil {
		return err
	}

	value, err := parseEqualsValue(line)
	if err != nil {
		return err
	}
	if value != code {
		return fmt.Errorf("%w: control register echoed %d, want %d", ErrVerify, value, code)
	}
	c.controlPoint = cp

	return nil
}

// writeSetpoint sends the setpoint command and verifies the echoed current
// value against the requested one within the absolute tolerance. Called by
// SetFlowRate and SetPressure, which share the setpoint command once the
// control register targets the right quantity.
func (c *Controller) writeSetpoint(ctx context.Context, value float64) error {
	line, err := c.query(ctx, cmdSetpoint(c.unit, value), "setpoint write")
	if err != nil {
		return err
	}

	tokens := strings.Fields(line)
	if len(tokens) <= setpointEchoIndex {
		// Short echo, nothing to verify against.
		return nil
	}

	current, err := strconv.ParseFloat(tokens[setpointEchoIndex], 64)
	if err != nil {
		return fmt.Errorf("alicat: setpoint echo %q: %w", line, err)
	}

	if math.Abs(current-value) > setpointTolerance {
		return fmt.Errorf("%w: setpoint echoed %.3f, requested %.2f", ErrVerify, current, value)
	}

	return nil
}

// Hold issues a valve hold. A single valve controller holds the valve at
// its present value; a dual valve pressure controller closes both valves.
func (c *Controller) Hold(ctx context.Context) error {
	return c.run(ctx, cmdHold(c.unit), "valve hold")
}

// CancelHold cancels a valve hold.
func (c *Controller) CancelHold(ctx context.Context) error {
	return c.run(ctx, cmdCancelHold(c.unit), "cancel valve hold")
}

// compile-time check that transport.Session satisfies the protocol layer's
// session dependency.
var _ exchanger = (*transport.Session)(nil)
