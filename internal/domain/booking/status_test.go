package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/townbook-za/townbook/internal/httperr"
	"github.com/townbook-za/townbook/internal/models"
)

func TestTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusPending, StatusNoShow, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusNoShow, true},
		{StatusConfirmed, StatusRescheduled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusNoShow, StatusConfirmed, false},
		{StatusRescheduled, StatusConfirmed, false},
	}

	for _, tc := range cases {
		assert.Equalf(t, tc.ok, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.False(t, IsTerminal(StatusPending))
	assert.False(t, IsTerminal(StatusConfirmed))
	assert.True(t, IsTerminal(StatusCancelled))
	assert.True(t, IsTerminal(StatusCompleted))
	assert.True(t, IsTerminal(StatusNoShow))
	assert.True(t, IsTerminal(StatusRescheduled))
}

func TestBlocks(t *testing.T) {
	assert.True(t, Blocks(StatusPending))
	assert.True(t, Blocks(StatusConfirmed))
	assert.False(t, Blocks(StatusCancelled))
	assert.False(t, Blocks(StatusRescheduled))
}

func TestConfirmThenComplete(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	bk := &models.Booking{Status: string(StatusPending)}

	require.NoError(t, Confirm(bk, now))
	assert.Equal(t, string(StatusConfirmed), bk.Status)
	require.NotNil(t, bk.ConfirmedAt)

	later := now.Add(time.Hour)
	require.NoError(t, Complete(bk, later))
	assert.Equal(t, string(StatusCompleted), bk.Status)
	require.NotNil(t, bk.CompletedAt)

	// Completed is terminal.
	err := Cancel(bk, later)
	assert.True(t, httperr.IsBusiness(err, "invalid_state"))
}

func TestCompleteRequiresConfirmed(t *testing.T) {
	bk := &models.Booking{Status: string(StatusPending)}
	err := Complete(bk, time.Now())
	assert.True(t, httperr.IsBusiness(err, "invalid_state"))
	assert.Equal(t, string(StatusPending), bk.Status)
}

func TestMarkRescheduled(t *testing.T) {
	bk := &models.Booking{Status: string(StatusConfirmed)}
	require.NoError(t, MarkRescheduled(bk, 99))
	assert.Equal(t, string(StatusRescheduled), bk.Status)
	require.NotNil(t, bk.RescheduledTo)
	assert.Equal(t, uint(99), *bk.RescheduledTo)

	err := MarkRescheduled(bk, 100)
	assert.True(t, httperr.IsBusiness(err, "invalid_state"))
}
