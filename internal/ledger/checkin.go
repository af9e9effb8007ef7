package ledger

import (
	"context"
	"time"

	"github.com/tsrlabs/trust_ledger/internal/errors"
	"github.com/tsrlabs/trust_ledger/pkg/logger"
)

// CheckIn records today's check-in. Gating is by calendar date, not elapsed
// hours: 23:59 and 00:01 the next day are two distinct check-ins. A streak
// continues only if the last check-in was exactly yesterday; any gap resets
// it, and the check-in that breaks the gap counts as day one again.
func (s *LedgerServiceImpl) CheckIn(ctx context.Context, userID string) (CheckInResult, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	acct, version, err := s.loadAccount(ctx, userID)
	if err != nil {
		return CheckInResult{}, err
	}

	now := s.now()
	if acct.LastCheckIn != nil && sameCalendarDay(*acct.LastCheckIn, now) {
		return CheckInResult{}, &errors.ConflictError{Rule: errors.RuleAlreadyCheckedIn, Detail: "already checked in today"}
	}

	streak := acct.CheckInStreak
	if acct.LastCheckIn != nil && !sameCalendarDay(*acct.LastCheckIn, now.AddDate(0, 0, -1)) {
		streak = 0
	}

	reward := checkInRewards[streak%7]
	creditTrust(&acct, reward, "checkin")
	acct.LastCheckIn = &now
	acct.CheckInStreak = streak + 1

	if err := s.saveAccount(ctx, acct, version); err != nil {
		return CheckInResult{}, err
	}

	logger.Info("Check-in for %s: reward %.0f, streak %d", userID, reward, acct.CheckInStreak)
	return CheckInResult{
		Reward:     reward,
		Streak:     acct.CheckInStreak,
		NextReward: checkInRewards[acct.CheckInStreak%7],
	}, nil
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
