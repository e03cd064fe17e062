package alicat

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// COMPOSER gas mixes are stored in a reserved slot range.
const (
	MinMixSlot = 236
	MaxMixSlot = 255
)

// unsupportedMixFirmware lists firmware version substrings that predate
// COMPOSER mix support.
var unsupportedMixFirmware = []string{"2v", "3v", "4v", "GP"}

// CreateMix stores a COMPOSER gas mix in the given slot.
//
// name appears on the device's front panel; names longer than six letters
// are cut off by the device. gases maps gas names from the Gases table to
// their percentage of the mix and must sum to exactly 100. Components are
// written in gas table order.
//
// The mix becomes selectable as a virtual gas via SetGasIndex(slot).
func (c *Controller) CreateMix(ctx context.Context, slot int, name string, gases map[string]float64) error {
	firmware, err := c.Firmware(ctx)
	if err != nil {
		return err
	}
	for _, version := range unsupportedMixFirmware {
		if strings.Contains(firmware, version) {
			return fmt.Errorf("%w: firmware %q predates COMPOSER gas mixes",
				ErrUnsupported, firmware)
		}
	}

	if slot < MinMixSlot || slot > MaxMixSlot {
		return fmt.Errorf("%w: mix slot %d outside [%d, %d]",
			ErrInvalid, slot, MinMixSlot, MaxMixSlot)
	}

	var total float64
	for _, percent := range gases {
		total += percent
	}
	if total != 100 {
		return fmt.Errorf("%w: mix percentages sum to %s, want 100",
			ErrInvalid, formatPercent(total))
	}

	type component struct {
		index   int
		percent float64
	}
	components := make([]component, 0, len(gases))
	for gas, percent := range gases {
		index, ok := GasIndex(gas)
		if !ok {
			return fmt.Errorf("%w: gas %q is not supported", ErrInvalid, gas)
		}
		components = append(components, component{index: index, percent: percent})
	}
	sort.Slice(components, func(i, j int) bool {
		return components[i].index < components[j].index
	})

	parts := []string{c.unit, "GM", name, strconv.Itoa(slot)}
	for _, comp := range components {
		parts = append(parts, formatPercent(comp.percent), strconv.Itoa(comp.index))
	}

	return c.run(ctx, strings.Join(parts, " "), fmt.Sprintf("create mix %d", slot))
}

// DeleteMix deletes the COMPOSER mix in the given slot.
func (c *Controller) DeleteMix(ctx context.Context, slot int) error {
	return c.run(ctx, cmdDeleteMix(c.unit, slot), fmt.Sprintf("delete mix %d", slot))
}

func formatPercent(percent float64) string {
	return strconv.FormatFloat(percent, 'g', -1, 64)
}
