package alicat

import (
	"github.com/arloliu/go-alicat/internal/util"
)

// Field names a decoded state value.
type Field string

// Fields of the device state line, in wire order.
const (
	FieldPressure       Field = "pressure"
	FieldTemperature    Field = "temperature"
	FieldVolumetricFlow Field = "volumetric_flow"
	FieldMassFlow       Field = "mass_flow"
	FieldSetpoint       Field = "setpoint"
	FieldTotalFlow      Field = "total_flow"
	FieldGas            Field = "gas"
)

// shape identifies one of the known response layouts. Firmware variants
// include or omit the setpoint and totalizer fields, so the layout is
// selected by the number of value tokens observed after control markers are
// stripped, and kept until a response of a different known shape arrives.
type shape int

const (
	// shapeUnknown is the initial state before the first successful read.
	shapeUnknown shape = iota
	// shapeController is the 6-field baseline with a setpoint.
	shapeController
	// shapeMeter omits the setpoint (5 fields).
	shapeMeter
	// shapeTotalizer adds the accumulated total flow (7 fields).
	shapeTotalizer
	// shapeMinimal is the 2-field pressure-controller response.
	shapeMinimal
)

var shapeLayouts = map[shape][]Field{
	shapeController: {
		FieldPressure, FieldTemperature, FieldVolumetricFlow,
		FieldMassFlow, FieldSetpoint, FieldGas,
	},
	shapeMeter: {
		FieldPressure, FieldTemperature, FieldVolumetricFlow,
		FieldMassFlow, FieldGas,
	},
	shapeTotalizer: {
		FieldPressure, FieldTemperature, FieldVolumetricFlow,
		FieldMassFlow, FieldSetpoint, FieldTotalFlow, FieldGas,
	},
	shapeMinimal: {
		FieldPressure, FieldSetpoint,
	},
}

// shapeForCount selects the layout matching an observed value-token count.
func shapeForCount(count int) (shape, bool) {
	switch count {
	case 6:
		return shapeController, true
	case 5:
		return shapeMeter, true
	case 7:
		return shapeTotalizer, true
	case 2:
		return shapeMinimal, true
	default:
		return shapeUnknown, false
	}
}

// fields returns a copy of the layout's ordered field names.
func (s shape) fields() []Field {
	return util.CloneSlice(shapeLayouts[s], 0)
}

// layoutForCount resolves the field layout for an observed value-token
// count. Counts with no tagged shape fall back to the leading fields of the
// controller baseline, so devices reporting partial lines still yield the
// fields they sent; the returned shape is shapeUnknown in that case.
func layoutForCount(count int) (shape, []Field) {
	if sh, ok := shapeForCount(count); ok {
		return sh, sh.fields()
	}

	base := shapeLayouts[shapeController]
	if count > len(base) {
		count = len(base)
	}

	return shapeUnknown, util.CloneSlice(base[:count], 0)
}

// hasSetpoint reports whether the layout carries a setpoint field, which
// distinguishes controllers from read-only meters.
func (s shape) hasSetpoint() bool {
	for _, f := range shapeLayouts[s] {
		if f == FieldSetpoint {
			return true
		}
	}

	return false
}

// State is the decoded device state, one Value per schema field.
type State map[Field]Value

// Pressure returns the pressure measurement.
func (s State) Pressure() float64 { return s[FieldPressure].Float() }

// Temperature returns the temperature measurement.
func (s State) Temperature() float64 { return s[FieldTemperature].Float() }

// VolumetricFlow returns the volumetric flow measurement.
func (s State) VolumetricFlow() float64 { return s[FieldVolumetricFlow].Float() }

// MassFlow returns the mass flow measurement.
func (s State) MassFlow() float64 { return s[FieldMassFlow].Float() }

// Gas returns the currently selected gas name.
func (s State) Gas() string { return s[FieldGas].Raw() }

// Setpoint returns the setpoint and whether the device reports one.
func (s State) Setpoint() (float64, bool) {
	v, ok := s[FieldSetpoint]
	return v.Float(), ok
}

// TotalFlow returns the totalizer reading and whether the device has the
// totalizer option.
func (s State) TotalFlow() (float64, bool) {
	v, ok := s[FieldTotalFlow]
	return v.Float(), ok
}
