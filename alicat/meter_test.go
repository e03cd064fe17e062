package alicat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMeter_GetMeterShape(t *testing.T) {
	m, _ := newTestMeter(replyTo(map[string]string{
		"A": "A 14.2 25.1 2.502 2.499 A",
	}))

	state, err := m.Get(context.Background())
	require.NoError(t, err)
	require.Len(t, state, 5)

	require.InDelta(t, 14.2, state.Pressure(), 1e-9)
	require.InDelta(t, 25.1, state.Temperature(), 1e-9)
	require.InDelta(t, 2.502, state.VolumetricFlow(), 1e-9)
	require.InDelta(t, 2.499, state.MassFlow(), 1e-9)
	require.Equal(t, "A", state.Gas())

	_, ok := state.Setpoint()
	require.False(t, ok)
}

func TestMeter_GetControllerShape(t *testing.T) {
	m, _ := newTestMeter(replyTo(map[string]string{
		"A": "A +14.70 +025.00 +2.502 +2.499 +2.500 N2",
	}))

	state, err := m.Get(context.Background())
	require.NoError(t, err)
	require.Len(t, state, 6)

	setpoint, ok := state.Setpoint()
	require.True(t, ok)
	require.InDelta(t, 2.500, setpoint, 1e-9)
	require.Equal(t, "N2", state.Gas())
}

func TestMeter_GetTotalizerShape(t *testing.T) {
	m, _ := newTestMeter(replyTo(map[string]string{
		"A": "A +14.70 +025.00 +2.502 +2.499 +2.500 +1234.5 N2",
	}))

	state, err := m.Get(context.Background())
	require.NoError(t, err)
	require.Len(t, state, 7)

	total, ok := state.TotalFlow()
	require.True(t, ok)
	require.InDelta(t, 1234.5, total, 1e-9)
	require.Equal(t, "N2", state.Gas())
}

func TestMeter_GetMinimalShape(t *testing.T) {
	m, _ := newTestMeter(replyTo(map[string]string{
		"A": "A +100.0 +150.0",
	}))

	state, err := m.Get(context.Background())
	require.NoError(t, err)
	require.Len(t, state, 2)

	require.InDelta(t, 100.0, state.Pressure(), 1e-9)
	setpoint, ok := state.Setpoint()
	require.True(t, ok)
	require.InDelta(t, 150.0, setpoint, 1e-9)
}

func TestMeter_GetStripsOverrange(t *testing.T) {
	m, _ := newTestMeter(replyTo(map[string]string{
		"A": "A 14.2 25.1 2.502 2.499 N2 MOV POV",
	}))

	state, err := m.Get(context.Background())
	require.NoError(t, err)
	require.Len(t, state, 5)
	require.Equal(t, "N2", state.Gas())
}

func TestMeter_GetCapturesButtonLock(t *testing.T) {
	m, _ := newTestMeter(replyTo(map[string]string{
		"A": "A 14.2 25.1 2.502 2.499 2.500 N2 LCK",
	}))

	locked, err := m.IsLocked(context.Background())
	require.NoError(t, err)
	require.True(t, locked)

	// Lock token is stripped before schema resolution.
	state, err := m.Get(context.Background())
	require.NoError(t, err)
	require.Len(t, state, 6)
}

func TestMeter_GetUnitMismatch(t *testing.T) {
	m, _ := newTestMeter(replyTo(map[string]string{
		"A": "B 14.2 25.1 2.502 2.499 N2",
	}))

	_, err := m.Get(context.Background())
	require.ErrorIs(t, err, ErrUnitMismatch)
}

func TestMeter_GetPartialLine(t *testing.T) {
	m, _ := newTestMeter(replyTo(map[string]string{
		"A": "A 14.2 25.1 2.502",
	}))

	state, err := m.Get(context.Background())
	require.NoError(t, err)
	require.Len(t, state, 3)
	require.InDelta(t, 14.2, state.Pressure(), 1e-9)
	require.InDelta(t, 25.1, state.Temperature(), 1e-9)
	require.InDelta(t, 2.502, state.VolumetricFlow(), 1e-9)
}

func TestMeter_GetButtonLockPartialLine(t *testing.T) {
	// A locked device whose line carries only the four leading measurements.
	m, _ := newTestMeter(replyTo(map[string]string{
		"A": "A 14.2 25.1 2.502 2.499 LCK",
	}))

	state, err := m.Get(context.Background())
	require.NoError(t, err)
	require.Len(t, state, 4)
	require.InDelta(t, 14.2, state.Pressure(), 1e-9)
	require.InDelta(t, 25.1, state.Temperature(), 1e-9)
	require.InDelta(t, 2.502, state.VolumetricFlow(), 1e-9)
	require.InDelta(t, 2.499, state.MassFlow(), 1e-9)

	_, ok := state.Setpoint()
	require.False(t, ok)

	locked, err := m.IsLocked(context.Background())
	require.NoError(t, err)
	require.True(t, locked)
}

func TestMeter_GetNoReply(t *testing.T) {
	m, _ := newTestMeter(func(string) (string, bool) { return "", false })

	_, err := m.Get(context.Background())
	require.ErrorIs(t, err, ErrNoReply)
}

func TestMeter_FirmwareCached(t *testing.T) {
	m, s := newTestMeter(replyTo(map[string]string{
		"AVE": "10v05.0 2024-01-01",
	}))

	firmware, err := m.Firmware(context.Background())
	require.NoError(t, err)
	require.Equal(t, "10v05.0 2024-01-01", firmware)

	firmware, err = m.Firmware(context.Background())
	require.NoError(t, err)
	require.Equal(t, "10v05.0 2024-01-01", firmware)

	require.Len(t, s.commands(), 1)
}

func TestMeter_Flush(t *testing.T) {
	m, s := newTestMeter(replyTo(nil))

	require.NoError(t, m.Flush(context.Background()))
	require.Equal(t, 1, s.drained)
}

func TestMeter_CloseRejectsOperations(t *testing.T) {
	m, s := newTestMeter(replyTo(map[string]string{
		"A": "A 14.2 25.1 2.502 2.499 N2",
	}))

	require.NoError(t, m.Close())
	require.True(t, s.closed)

	_, err := m.Get(context.Background())
	require.ErrorIs(t, err, ErrNotOpen)

	_, err = m.Firmware(context.Background())
	require.ErrorIs(t, err, ErrNotOpen)

	require.ErrorIs(t, m.Flush(context.Background()), ErrNotOpen)
}

func TestMeter_CloseIdempotent(t *testing.T) {
	m, _ := newTestMeter(replyTo(nil))

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
}

func TestMeter_CustomUnit(t *testing.T) {
	s := &fakeSession{handler: replyTo(map[string]string{
		"B": "B 14.2 25.1 2.502 2.499 N2",
	})}
	m := newMeter(s, s.Close, "B")

	state, err := m.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "N2", state.Gas())
	require.Equal(t, "B", m.Unit())
}
