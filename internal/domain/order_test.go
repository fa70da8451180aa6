package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	statuses := []OrderStatus{OrderStatusPlaced, OrderStatusProcessing, OrderStatusCancelled, OrderStatusClosed}

	legal := map[[2]OrderStatus]bool{
		{OrderStatusPlaced, OrderStatusProcessing}: true,
		{OrderStatusPlaced, OrderStatusCancelled}:  true,
		{OrderStatusProcessing, OrderStatusClosed}: true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			got := CanTransition(from, to)
			want := legal[[2]OrderStatus{from, to}]
			require.Equal(t, want, got, "transition %s -> %s", from, to)
		}
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"placed", "processing", "cancelled", "closed"} {
		status, err := ParseStatus(s)
		require.NoError(t, err)
		require.Equal(t, OrderStatus(s), status)
	}

	_, err := ParseStatus("shipped")
	require.Error(t, err)

	_, err = ParseStatus("")
	require.Error(t, err)
}

func TestValidateFill(t *testing.T) {
	line := Line{Qty: 4}

	require.NoError(t, line.ValidateFill(0))
	require.NoError(t, line.ValidateFill(2))
	require.NoError(t, line.ValidateFill(4))

	require.ErrorIs(t, line.ValidateFill(-1), ErrInvalidFilledQty)
	require.ErrorIs(t, line.ValidateFill(5), ErrInvalidFilledQty)
}

func TestFullyFulfilled(t *testing.T) {
	order := Order{
		Lines: []Line{
			{Qty: 4, FilledQty: 4},
			{Qty: 2, FilledQty: 2},
		},
	}
	require.True(t, order.FullyFulfilled())

	order.Lines[1].FilledQty = 1
	require.False(t, order.FullyFulfilled())

	// An order with no lines has nothing left to fill.
	require.True(t, (&Order{}).FullyFulfilled())
}
