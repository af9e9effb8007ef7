package ledger

import (
	"context"

	"github.com/tsrlabs/trust_ledger/internal/errors"
	"github.com/tsrlabs/trust_ledger/pkg/logger"
)

// StartMining opens a 24-hour mining session. A second start while one is
// running fails and leaves the session untouched.
func (s *LedgerServiceImpl) StartMining(ctx context.Context, userID string) (Account, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	acct, version, err := s.loadAccount(ctx, userID)
	if err != nil {
		return Account{}, err
	}

	if acct.IsMining {
		return Account{}, &errors.ConflictError{Rule: errors.RuleAlreadyMining, Detail: "a mining session is already running"}
	}

	start := s.now()
	end := start.Add(MiningSessionDuration)
	acct.IsMining = true
	acct.MiningStartTime = &start
	acct.MiningEndTime = &end

	if err := s.saveAccount(ctx, acct, version); err != nil {
		return Account{}, err
	}

	logger.Info("Mining session started for %s, ends %s", userID, end.Format("2006-01-02 15:04:05"))
	return acct, nil
}

// ClaimMining pays out a finished session. The reward uses the mining rate
// at claim time, so a referral gained mid-session raises the payout.
// Clearing the fields on success means a second claim fails as not mining.
func (s *LedgerServiceImpl) ClaimMining(ctx context.Context, userID string) (ClaimResult, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	acct, version, err := s.loadAccount(ctx, userID)
	if err != nil {
		return ClaimResult{}, err
	}

	if !acct.IsMining || acct.MiningEndTime == nil {
		return ClaimResult{}, &errors.ConflictError{Rule: errors.RuleNotMining, Detail: "no mining session to claim"}
	}
	if s.now().Before(*acct.MiningEndTime) {
		return ClaimResult{}, &errors.ConflictError{Rule: errors.RuleNotReady, Detail: "mining session has not finished"}
	}

	reward := acct.MiningRate * MiningSessionHours
	creditTrust(&acct, reward, "mining")
	acct.IsMining = false
	acct.MiningStartTime = nil
	acct.MiningEndTime = nil

	if err := s.saveAccount(ctx, acct, version); err != nil {
		return ClaimResult{}, err
	}

	logger.Info("Mining claim for %s paid %.2f trust", userID, reward)
	return ClaimResult{Reward: reward, Account: acct}, nil
}
