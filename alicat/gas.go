package alicat

import (
	"context"
	"fmt"
)

// Gases is the fixed table of gases supported by the device firmware. A gas
// is addressed on the wire by its index in this table; COMPOSER mixes are
// addressed by their mix slot number instead.
var Gases = []string{
	"Air", "Ar", "CH4", "CO", "CO2", "C2H6", "H2", "He",
	"N2", "N2O", "Ne", "O2", "C3H8", "n-C4H10", "C2H2",
	"C2H4", "i-C2H10", "Kr", "Xe", "SF6", "C-25", "C-10",
	"C-8", "C-2", "C-75", "A-75", "A-25", "A1025", "Star29",
	"P-5",
}

const (
	// gasRegister holds the selected gas index.
	gasRegister = 46

	// gasIndexMask isolates the gas index bits of the gas register; the
	// upper bits carry unrelated flags.
	gasIndexMask = 0b0000000111111111
)

// GasIndex resolves a gas name to its table index.
func GasIndex(name string) (int, bool) {
	for i, gas := range Gases {
		if gas == name {
			return i, true
		}
	}

	return 0, false
}

// SetGas selects the gas by name from the Gases table. Mixes must be
// selected by slot number via SetGasIndex.
func (c *Controller) SetGas(ctx context.Context, gas string) error {
	index, ok := GasIndex(gas)
	if !ok {
		return fmt.Errorf("%w: gas %q is not supported", ErrInvalid, gas)
	}

	return c.SetGasIndex(ctx, index)
}

// SetGasIndex selects the gas by raw table index or mix slot number, writes
// the gas register, and verifies the masked read-back.
func (c *Controller) SetGasIndex(ctx context.Context, index int) error {
	if index < 0 || index > gasIndexMask {
		return fmt.Errorf("%w: gas index %d out of range", ErrInvalid, index)
	}

	command := cmdWriteGasRegister(c.unit, gasRegister, index)
	if _, err := c.query(ctx, command, "gas write"); err != nil {
		return err
	}

	line, err := c.query(ctx, cmdReadGasRegister(c.unit, gasRegister), "gas read-back")
	if err != nil {
		return err
	}

	value, err := parseLastTokenValue(line)
	if err != nil {
		return err
	}

	if value&gasIndexMask != index {
		return fmt.Errorf("%w: gas register echoed %d, want %d",
			ErrVerify, value&gasIndexMask, index)
	}

	return nil
}
