package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsrlabs/trust_ledger/internal/errors"
)

func TestRedeemUnknownCode(t *testing.T) {
	tl := newTestLedger(t)
	tl.mustInit(t, "u1")

	err := tl.svc.RedeemReferral(context.Background(), "u1", "TSRNOPE99")
	var notFound *errors.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "referral code", notFound.Resource)
}

func TestRedeemOwnCode(t *testing.T) {
	tl := newTestLedger(t)
	acct := tl.mustInit(t, "u1")

	err := tl.svc.RedeemReferral(context.Background(), "u1", acct.ReferralCode)
	var invalid *errors.InvalidInputError
	require.ErrorAs(t, err, &invalid)

	reloaded, err := tl.svc.GetAccount(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.Referrals)
	assert.InDelta(t, 1.0, reloaded.MiningRate, 1e-9)
}

func TestRedeemGrantsOwnerBonus(t *testing.T) {
	tl := newTestLedger(t)
	owner := tl.mustInit(t, "u1")
	redeemerBefore := tl.mustInit(t, "u2")

	require.NoError(t, tl.svc.RedeemReferral(context.Background(), "u2", owner.ReferralCode))

	ownerAfter, err := tl.svc.GetAccount(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, ownerAfter.Referrals)
	assert.InDelta(t, 1.5, ownerAfter.MiningRate, 1e-9)

	// The redeemer's own record is untouched by redemption.
	redeemerAfter, err := tl.svc.GetAccount(context.Background(), "u2")
	require.NoError(t, err)
	assert.Equal(t, redeemerBefore, redeemerAfter)
}

func TestRedeemTwice(t *testing.T) {
	tl := newTestLedger(t)
	owner := tl.mustInit(t, "u1")
	other := tl.mustInit(t, "u2")
	tl.mustInit(t, "u3")

	require.NoError(t, tl.svc.RedeemReferral(context.Background(), "u3", owner.ReferralCode))

	// Neither the same code nor a different one may be applied again.
	err := tl.svc.RedeemReferral(context.Background(), "u3", owner.ReferralCode)
	var conflict *errors.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, errors.RuleAlreadyRedeemed, conflict.Rule)

	err = tl.svc.RedeemReferral(context.Background(), "u3", other.ReferralCode)
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, errors.RuleAlreadyRedeemed, conflict.Rule)

	ownerAfter, err := tl.svc.GetAccount(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, ownerAfter.Referrals)
	assert.InDelta(t, 1.5, ownerAfter.MiningRate, 1e-9)
}

func TestGetTeamOrderedByJoinDate(t *testing.T) {
	tl := newTestLedger(t)
	owner := tl.mustInit(t, "u1")

	tl.advance(time.Hour)
	tl.mustInit(t, "u2")
	tl.advance(time.Hour)
	tl.mustInit(t, "u3")

	require.NoError(t, tl.svc.RedeemReferral(context.Background(), "u3", owner.ReferralCode))
	require.NoError(t, tl.svc.RedeemReferral(context.Background(), "u2", owner.ReferralCode))

	_, err := tl.svc.CheckIn(context.Background(), "u2")
	require.NoError(t, err)
	_, err = tl.svc.StartMining(context.Background(), "u3")
	require.NoError(t, err)

	team, err := tl.svc.GetTeam(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, team, 2)

	assert.Equal(t, "user-u2", team[0].Username)
	assert.InDelta(t, 3.0, team[0].TotalEarned, 1e-9)
	assert.False(t, team[0].IsMining)

	assert.Equal(t, "user-u3", team[1].Username)
	assert.True(t, team[1].IsMining)
	assert.True(t, team[0].JoinDate.Before(team[1].JoinDate))
}

func TestGetTeamEmpty(t *testing.T) {
	tl := newTestLedger(t)
	tl.mustInit(t, "u1")

	team, err := tl.svc.GetTeam(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, team)
}
