package alicat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

const mixFirmware = "10v05.0 2024-01-01"

func mixReplies(extra map[string]string) map[string]string {
	table := map[string]string{"AVE": mixFirmware}
	for k, v := range extra {
		table[k] = v
	}

	return table
}

func TestController_CreateMix(t *testing.T) {
	c, s := newTestController(replyTo(mixReplies(map[string]string{
		"A GM EPA 250 50 8 50 11": "A 250",
	})))

	err := c.CreateMix(context.Background(), 250, "EPA", map[string]float64{
		"O2": 50,
		"N2": 50,
	})
	require.NoError(t, err)

	// Components are emitted in gas table order: N2 (8) before O2 (11).
	commands := s.commands()
	require.Equal(t, []string{"AVE", "A GM EPA 250 50 8 50 11"}, commands)
}

func TestController_CreateMixFractionalPercentages(t *testing.T) {
	c, s := newTestController(replyTo(mixReplies(map[string]string{
		"A GM HeOx 236 21.5 7 78.5 11": "A 236",
	})))

	err := c.CreateMix(context.Background(), 236, "HeOx", map[string]float64{
		"He": 21.5,
		"O2": 78.5,
	})
	require.NoError(t, err)
	require.Equal(t, "A GM HeOx 236 21.5 7 78.5 11", s.commands()[1])
}

func TestController_CreateMixPercentageSum(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestController(replyTo(mixReplies(nil)))

	err := c.CreateMix(ctx, 250, "Bad", map[string]float64{"N2": 50, "O2": 49})
	require.ErrorIs(t, err, ErrInvalid)

	err = c.CreateMix(ctx, 250, "Bad", map[string]float64{"N2": 50, "O2": 51})
	require.ErrorIs(t, err, ErrInvalid)
}

func TestController_CreateMixSlotBounds(t *testing.T) {
	ctx := context.Background()
	gases := map[string]float64{"N2": 100}

	c, _ := newTestController(replyTo(mixReplies(map[string]string{
		"A GM Edge 236 100 8": "A 236",
		"A GM Edge 255 100 8": "A 255",
	})))

	require.ErrorIs(t, c.CreateMix(ctx, 235, "Edge", gases), ErrInvalid)
	require.ErrorIs(t, c.CreateMix(ctx, 256, "Edge", gases), ErrInvalid)
	require.NoError(t, c.CreateMix(ctx, 236, "Edge", gases))
	require.NoError(t, c.CreateMix(ctx, 255, "Edge", gases))
}

func TestController_CreateMixUnknownGas(t *testing.T) {
	c, _ := newTestController(replyTo(mixReplies(nil)))

	err := c.CreateMix(context.Background(), 250, "Bad", map[string]float64{"Unobtainium": 100})
	require.ErrorIs(t, err, ErrInvalid)
}

func TestController_CreateMixOldFirmware(t *testing.T) {
	for _, firmware := range []string{"2v03", "3v11", "4v22", "GP07"} {
		c, s := newTestController(replyTo(map[string]string{"AVE": firmware}))

		err := c.CreateMix(context.Background(), 250, "Mix", map[string]float64{"N2": 100})
		require.ErrorIs(t, err, ErrUnsupported, "firmware %q", firmware)
		require.Equal(t, []string{"AVE"}, s.commands(), "firmware %q", firmware)
	}
}

func TestController_CreateMixRejected(t *testing.T) {
	c, _ := newTestController(replyTo(mixReplies(nil)))

	err := c.CreateMix(context.Background(), 250, "Mix", map[string]float64{"N2": 100})
	require.ErrorIs(t, err, ErrRejected)
}

func TestController_DeleteMix(t *testing.T) {
	c, s := newTestController(replyTo(map[string]string{
		"AGD250": "A 250",
	}))

	require.NoError(t, c.DeleteMix(context.Background(), 250))
	require.Equal(t, []string{"AGD250"}, s.commands())
}
