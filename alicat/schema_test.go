package alicat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShapeForCount(t *testing.T) {
	tests := []struct {
		count int
		want  shape
		known bool
	}{
		{6, shapeController, true},
		{5, shapeMeter, true},
		{7, shapeTotalizer, true},
		{2, shapeMinimal, true},
		{0, shapeUnknown, false},
		{4, shapeUnknown, false},
		{8, shapeUnknown, false},
	}

	for _, tt := range tests {
		sh, known := shapeForCount(tt.count)
		require.Equal(t, tt.known, known, "count %d", tt.count)
		require.Equal(t, tt.want, sh, "count %d", tt.count)
	}
}

func TestLayoutForCountFallback(t *testing.T) {
	sh, fields := layoutForCount(4)
	require.Equal(t, shapeUnknown, sh)
	require.Equal(t, []Field{
		FieldPressure, FieldTemperature, FieldVolumetricFlow, FieldMassFlow,
	}, fields)

	sh, fields = layoutForCount(9)
	require.Equal(t, shapeUnknown, sh)
	require.Len(t, fields, 6)

	sh, fields = layoutForCount(5)
	require.Equal(t, shapeMeter, sh)
	require.Len(t, fields, 5)
}

func TestShapeHasSetpoint(t *testing.T) {
	require.True(t, shapeController.hasSetpoint())
	require.True(t, shapeTotalizer.hasSetpoint())
	require.True(t, shapeMinimal.hasSetpoint())
	require.False(t, shapeMeter.hasSetpoint())
	require.False(t, shapeUnknown.hasSetpoint())
}

func TestShapeFieldsIsCopy(t *testing.T) {
	fields := shapeController.fields()
	require.Len(t, fields, 6)

	fields[0] = FieldGas
	require.Equal(t, FieldPressure, shapeController.fields()[0])
}

func TestStateAccessors(t *testing.T) {
	state := State{
		FieldPressure:       coerce("14.70"),
		FieldTemperature:    coerce("25.00"),
		FieldVolumetricFlow: coerce("2.502"),
		FieldMassFlow:       coerce("2.499"),
		FieldSetpoint:       coerce("2.500"),
		FieldGas:            coerce("N2"),
	}

	require.InDelta(t, 14.70, state.Pressure(), 1e-9)
	require.InDelta(t, 25.00, state.Temperature(), 1e-9)
	require.InDelta(t, 2.502, state.VolumetricFlow(), 1e-9)
	require.InDelta(t, 2.499, state.MassFlow(), 1e-9)
	require.Equal(t, "N2", state.Gas())

	setpoint, ok := state.Setpoint()
	require.True(t, ok)
	require.InDelta(t, 2.500, setpoint, 1e-9)

	_, ok = state.TotalFlow()
	require.False(t, ok)
}

func TestStateWithoutSetpoint(t *testing.T) {
	state := State{
		FieldPressure: coerce("14.70"),
		FieldGas:      coerce("Air"),
	}

	_, ok := state.Setpoint()
	require.False(t, ok)
}
