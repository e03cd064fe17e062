package alicat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestController_ReadPID(t *testing.T) {
	c, s := newTestController(replyTo(map[string]string{
		"A$$r85": "A   085 = 2",
		"A$$r21": "A   021 = 200",
		"A$$r22": "A   022 = 30",
		"A$$r23": "A   023 = 500",
	}))

	pid, err := c.ReadPID(context.Background())
	require.NoError(t, err)
	require.Equal(t, &PID{LoopType: LoopPD2I, P: 200, D: 30, I: 500}, pid)
	require.Equal(t, []string{"A$$r85", "A$$r21", "A$$r22", "A$$r23"}, s.commands())
}

func TestController_ReadPIDLoopAliases(t *testing.T) {
	for _, loopNum := range []string{"0", "1"} {
		c, _ := newTestController(replyTo(map[string]string{
			"A$$r85": "A   085 = " + loopNum,
			"A$$r21": "A   021 = 200",
			"A$$r22": "A   022 = 30",
			"A$$r23": "A   023 = 0",
		}))

		pid, err := c.ReadPID(context.Background())
		require.NoError(t, err)
		require.Equal(t, LoopPDPDF, pid.LoopType)
	}
}

func TestController_ReadPIDUnknownLoop(t *testing.T) {
	c, _ := newTestController(replyTo(map[string]string{
		"A$$r85": "A   085 = 7",
	}))

	_, err := c.ReadPID(context.Background())
	require.Error(t, err)
}

func TestController_WritePIDFull(t *testing.T) {
	c, s := newTestController(func(cmd string) (string, bool) {
		return cmd, true
	})

	p, i, d := 200, 500, 30
	err := c.WritePID(context.Background(), PIDSettings{
		LoopType: LoopPD2I,
		P:        &p,
		I:        &i,
		D:        &d,
	})
	require.NoError(t, err)

	// Loop type first, then gains in P, I, D order.
	require.Equal(t,
		[]string{"A$$w85=2", "A$$w21=200", "A$$w23=500", "A$$w22=30"},
		s.commands())
}

func TestController_WritePIDSubset(t *testing.T) {
	c, s := newTestController(func(cmd string) (string, bool) {
		return cmd, true
	})

	p := 150
	require.NoError(t, c.WritePID(context.Background(), PIDSettings{P: &p}))
	require.Equal(t, []string{"A$$w21=150"}, s.commands())
}

func TestController_WritePIDLoopOnly(t *testing.T) {
	c, s := newTestController(func(cmd string) (string, bool) {
		return cmd, true
	})

	require.NoError(t, c.WritePID(context.Background(), PIDSettings{LoopType: LoopPDPDF}))
	require.Equal(t, []string{"A$$w85=1"}, s.commands())
}

func TestController_WritePIDInvalidLoop(t *testing.T) {
	c, s := newTestController(replyTo(nil))

	err := c.WritePID(context.Background(), PIDSettings{LoopType: "PI"})
	require.ErrorIs(t, err, ErrInvalid)
	require.Empty(t, s.commands())
}

func TestController_WritePIDEmpty(t *testing.T) {
	c, s := newTestController(replyTo(nil))

	require.NoError(t, c.WritePID(context.Background(), PIDSettings{}))
	require.Empty(t, s.commands())
}
