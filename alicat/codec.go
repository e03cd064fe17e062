package alicat

import (
	"fmt"
	"strconv"
	"strings"
)

// rejectToken is the device's reserved reply for a rejected command.
const rejectToken = "?"

// overrangeTokens are the transient markers a device appends when a
// measurement exceeds its valid range: mass, volumetric, and pressure
// overrange. They are informational and never reach callers as field values.
var overrangeTokens = map[string]struct{}{
	"MOV": {},
	"VOV": {},
	"POV": {},
}

// lockToken reports that the device's front-panel buttons are locked.
const lockToken = "LCK"

// Value holds one decoded response token: numeric for measurements, a raw
// string for the gas name field.
type Value struct {
	num     float64
	raw     string
	numeric bool
}

// IsNumeric reports whether the token parsed as a number.
func (v Value) IsNumeric() bool { return v.numeric }

// Float returns the numeric value, or 0 for non-numeric tokens.
func (v Value) Float() float64 { return v.num }

// Raw returns the original token text.
func (v Value) Raw() string { return v.raw }

func (v Value) String() string { return v.raw }

// coerce converts a token to a numeric Value when it parses as a float,
// otherwise keeps it as a string Value.
func coerce(token string) Value {
	if num, err := strconv.ParseFloat(token, 64); err == nil {
		return Value{num: num, raw: token, numeric: true}
	}

	return Value{raw: token}
}

// decode splits a response line into the echoed unit identifier and the
// remaining value tokens.
func decode(line string) (string, []string) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return "", nil
	}

	return tokens[0], tokens[1:]
}

// stripOverrange drops trailing overrange markers, which may be stacked.
func stripOverrange(tokens []string) []string {
	for len(tokens) > 0 {
		if _, ok := overrangeTokens[strings.ToUpper(tokens[len(tokens)-1])]; !ok {
			break
		}
		tokens = tokens[:len(tokens)-1]
	}

	return tokens
}

// extractLock removes a trailing button-lock token and reports whether it
// was present.
func extractLock(tokens []string) ([]string, bool) {
	if len(tokens) == 0 {
		return tokens, false
	}

	if strings.ToUpper(tokens[len(tokens)-1]) != lockToken {
		return tokens, false
	}

	return tokens[:len(tokens)-1], true
}

// --- Command builders ---
//
// The dialect is positional: unit identifier, operation mnemonic, arguments,
// concatenated without separators except where the device requires spaces
// (gas mix creation).

func cmdRead(unit string) string { return unit }

func cmdFirmware(unit string) string { return unit + "VE" }

func cmdSetpoint(unit string, value float64) string {
	return fmt.Sprintf("%sS%.2f", unit, value)
}

func cmdReadControlRegister(unit string, register int) string {
	return fmt.Sprintf("%sR%d", unit, register)
}

func cmdWriteControlRegister(unit string, register, value int) string {
	return fmt.Sprintf("%sW%d=%d", unit, register, value)
}

func cmdReadGasRegister(unit string, register int) string {
	return fmt.Sprintf("%s$$R%d", unit, register)
}

func cmdWriteGasRegister(unit string, register, value int) string {
	return fmt.Sprintf("%s$$W%d=%d", unit, register, value)
}

func cmdReadPIDRegister(unit string, register int) string {
	return fmt.Sprintf("%s$$r%d", unit, register)
}

func cmdWritePIDRegister(unit string, register, value int) string {
	return fmt.Sprintf("%s$$w%d=%d", unit, register, value)
}

func cmdDeleteMix(unit string, slot int) string {
	return fmt.Sprintf("%sGD%d", unit, slot)
}

func cmdLock(unit string) string   { return unit + "$$L" }
func cmdUnlock(unit string) string { return unit + "$$U" }

func cmdTarePressure(unit string) string   { return unit + "$$PC" }
func cmdTareVolumetric(unit string) string { return unit + "$$V" }

func cmdResetTotalizer(unit string) string { return unit + "T" }

func cmdHold(unit string) string       { return unit + "$$H" }
func cmdCancelHold(unit string) string { return unit + "$$C" }

// --- Register response parsers ---

// parseEqualsValue extracts the integer after the last '=' in a register
// read/write echo like "A 122 = 37" or "A122=37".
func parseEqualsValue(line string) (int, error) {
	idx := strings.LastIndex(line, "=")
	if idx < 0 {
		return 0, fmt.Errorf("alicat: register response %q has no value", line)
	}

	value, err := strconv.Atoi(strings.TrimSpace(line[idx+1:]))
	if err != nil {
		return 0, fmt.Errorf("alicat: register response %q: %w", line, err)
	}

	return value, nil
}

// parseLastTokenValue extracts the integer in the final whitespace-delimited
// token, the format of $$R register reads.
func parseLastTokenValue(line string) (int, error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return 0, fmt.Errorf("alicat: empty register response")
	}

	value, err := strconv.Atoi(tokens[len(tokens)-1])
	if err != nil {
		return 0, fmt.Errorf("alicat: register response %q: %w", line, err)
	}

	return value, nil
}

// parseTokenValue extracts the integer at a fixed token position, the format
// of $$r register reads ("A   085 = 2" puts the value at index 3).
func parseTokenValue(line string, index int) (int, error) {
	tokens := strings.Fields(line)
	if len(tokens) <= index {
		return 0, fmt.Errorf("alicat: register response %q too short", line)
	}

	value, err := strconv.Atoi(tokens[index])
	if err != nil {
		return 0, fmt.Errorf("alicat: register response %q: %w", line, err)
	}

	return value, nil
}
