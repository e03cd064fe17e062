package alicat

import (
	"context"
	"fmt"
)

// PID loop registers.
const (
	pidLoopRegister = 85
	pidPRegister    = 21
	pidDRegister    = 22
	pidIRegister    = 23
)

// Recognized PID loop algorithms. The loop register maps values 0 and 1 to
// PD/PDF and value 2 to PD2I.
const (
	LoopPDPDF = "PD/PDF"
	LoopPD2I  = "PD2I"
)

var pidLoopTypes = []string{LoopPDPDF, LoopPDPDF, LoopPD2I}

// PID holds the controller's loop algorithm and gains. The integral gain is
// only used by the PD2I loop type.
type PID struct {
	LoopType string
	P        int
	D        int
	I        int
}

// PIDSettings selects which PID parameters WritePID writes. Nil gain fields
// and an empty LoopType leave the corresponding register untouched.
type PIDSettings struct {
	LoopType string
	P        *int
	I        *int
	D        *int
}

// ReadPID reads the loop type and the P, D, and I gain registers.
func (c *Controller) ReadPID(ctx context.Context) (*PID, error) {
	line, err := c.query(ctx, cmdReadPIDRegister(c.unit, pidLoopRegister), "PID loop read")
	if err != nil {
		return nil, err
	}

	loopNum, err := parseTokenValue(line, 3)
	if err != nil {
		return nil, err
	}
	if loopNum < 0 || loopNum >= len(pidLoopTypes) {
		return nil, fmt.Errorf("alicat: unexpected loop register value %d", loopNum)
	}

	pid := &PID{LoopType: pidLoopTypes[loopNum]}

	if pid.P, err = c.readPIDRegister(ctx, pidPRegister, "P gain read"); err != nil {
		return nil, err
	}
	if pid.D, err = c.readPIDRegister(ctx, pidDRegister, "D gain read"); err != nil {
		return nil, err
	}
	if pid.I, err = c.readPIDRegister(ctx, pidIRegister, "I gain read"); err != nil {
		return nil, err
	}

	return pid, nil
}

func (c *Controller) readPIDRegister(ctx context.Context, register int, intent string) (int, error) {
	line, err := c.query(ctx, cmdReadPIDRegister(c.unit, register), intent)
	if err != nil {
		return 0, err
	}

	return parseTokenValue(line, 3)
}

// WritePID writes the supplied subset of PID parameters as individual
// register writes, loop type first, then P, I, and D.
func (c *Controller) WritePID(ctx context.Context, settings PIDSettings) error {
	if settings.LoopType != "" {
		var loopNum int
		switch settings.LoopType {
		case LoopPDPDF:
			loopNum = 1
		case LoopPD2I:
			loopNum = 2
		default:
			return fmt.Errorf("%w: loop type must be %s or %s",
				ErrInvalid, LoopPDPDF, LoopPD2I)
		}

		command := cmdWritePIDRegister(c.unit, pidLoopRegister, loopNum)
		if _, err := c.query(ctx, command, "PID loop write"); err != nil {
			return err
		}
	}

	if settings.P != nil {
		command := cmdWritePIDRegister(c.unit, pidPRegister, *settings.P)
		if _, err := c.query(ctx, command, "P gain write"); err != nil {
			return err
		}
	}
	if settings.I != nil {
		command := cmdWritePIDRegister(c.unit, pidIRegister, *settings.I)
		if _, err := c.query(ctx, command, "I gain write"); err != nil {
			return err
		}
	}
	if settings.D != nil {
		command := cmdWritePIDRegister(c.unit, pidDRegister, *settings.D)
		if _, err := c.query(ctx, command, "D gain write"); err != nil {
			return err
		}
	}

	return nil
}
