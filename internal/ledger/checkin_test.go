package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsrlabs/trust_ledger/internal/errors"
)

func TestCheckInFirst(t *testing.T) {
	tl := newTestLedger(t)
	tl.mustInit(t, "u1")

	result, err := tl.svc.CheckIn(context.Background(), "u1")
	require.NoError(t, err)

	assert.InDelta(t, 3.0, result.Reward, 1e-9)
	assert.Equal(t, 1, result.Streak)
	assert.InDelta(t, 5.0, result.NextReward, 1e-9)

	acct, err := tl.svc.GetAccount(context.Background(), "u1")
	require.NoError(t, err)
	assert.InDelta(t, 3.0, acct.TrustPoints, 1e-9)
	assert.InDelta(t, 3.0, acct.TotalEarned, 1e-9)
}

func TestCheckInSameDay(t *testing.T) {
	tl := newTestLedger(t)
	tl.mustInit(t, "u1")

	_, err := tl.svc.CheckIn(context.Background(), "u1")
	require.NoError(t, err)

	tl.advance(5 * time.Hour) // still the same calendar date

	_, err = tl.svc.CheckIn(context.Background(), "u1")
	var conflict *errors.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, errors.RuleAlreadyCheckedIn, conflict.Rule)
}

func TestCheckInAcrossMidnight(t *testing.T) {
	tl := newTestLedger(t)
	tl.mustInit(t, "u1")

	tl.now = time.Date(2024, 5, 1, 23, 59, 0, 0, time.UTC)
	first, err := tl.svc.CheckIn(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Streak)

	// Two minutes later but a new calendar date: allowed, streak continues.
	tl.now = time.Date(2024, 5, 2, 0, 1, 0, 0, time.UTC)
	second, err := tl.svc.CheckIn(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, second.Streak)
	assert.InDelta(t, 5.0, second.Reward, 1e-9)
}

func TestCheckInRewardCycle(t *testing.T) {
	tl := newTestLedger(t)
	tl.mustInit(t, "u1")

	expected := []float64{3, 5, 7, 10, 13, 16, 20, 3, 5}
	for day, want := range expected {
		result, err := tl.svc.CheckIn(context.Background(), "u1")
		require.NoError(t, err, "day %d", day+1)
		assert.InDelta(t, want, result.Reward, 1e-9, "day %d", day+1)
		assert.Equal(t, day+1, result.Streak, "day %d", day+1)
		tl.advance(24 * time.Hour)
	}
}

func TestCheckInGapResetsStreak(t *testing.T) {
	tl := newTestLedger(t)
	tl.mustInit(t, "u1")

	for i := 0; i < 3; i++ {
		_, err := tl.svc.CheckIn(context.Background(), "u1")
		require.NoError(t, err)
		tl.advance(24 * time.Hour)
	}

	tl.advance(24 * time.Hour) // one missed day

	result, err := tl.svc.CheckIn(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Streak)
	assert.InDelta(t, 3.0, result.Reward, 1e-9)
	assert.InDelta(t, 5.0, result.NextReward, 1e-9)
}
