package ledger

import (
	"context"
	"math"

	"github.com/tsrlabs/trust_ledger/internal/errors"
	"github.com/tsrlabs/trust_ledger/pkg/logger"
)

// InitUser creates the account plus its wallet and referral index entries.
// Idempotent: if the account already exists it is returned unchanged.
func (s *LedgerServiceImpl) InitUser(ctx context.Context, userID, email, username string) (Account, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	if acct, _, err := s.loadAccount(ctx, userID); err == nil {
		return acct, nil
	} else if _, ok := err.(*errors.NotFoundError); !ok {
		return Account{}, err
	}

	address, privateKey, err := newWalletKeypair()
	if err != nil {
		return Account{}, &errors.StorageError{Operation: "generate wallet", Err: err}
	}

	code, err := s.issueReferralCode(ctx, userID)
	if err != nil {
		return Account{}, err
	}

	acct := Account{
		UserID:        userID,
		Email:         email,
		Username:      username,
		TrustPoints:   0,
		TSRBalance:    SignupBonusTSR,
		MiningRate:    BaseMiningRate,
		ReferralCode:  code,
		Referrals:     0,
		TotalEarned:   0,
		JoinDate:      s.now(),
		WalletAddress: address,
		PrivateKey:    privateKey,
	}

	if err := s.createIndex(ctx, walletKey(address), userID); err != nil {
		return Account{}, &errors.StorageError{Operation: "create wallet index", Err: err}
	}
	if err := s.saveAccount(ctx, acct, 0); err != nil {
		return Account{}, err
	}

	logger.Info("Initialized account %s (wallet %s, referral code %s)", userID, address, code)
	return acct, nil
}

// GetAccount returns the current account state. A lapsed mining session is
// cleared here without crediting anything: the claim must be explicit, so
// letting the timer run out forfeits the session.
func (s *LedgerServiceImpl) GetAccount(ctx context.Context, userID string) (Account, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	acct, version, err := s.loadAccount(ctx, userID)
	if err != nil {
		return Account{}, err
	}

	if acct.IsMining && acct.MiningEndTime != nil && !s.now().Before(*acct.MiningEndTime) {
		acct.IsMining = false
		acct.MiningStartTime = nil
		acct.MiningEndTime = nil
		if err := s.saveAccount(ctx, acct, version); err != nil {
			return Account{}, err
		}
		logger.Info("Cleared expired mining session for %s (unclaimed, forfeited)", userID)
	}

	return acct, nil
}

// CompleteKYC marks the account verified and stores the submitted details.
func (s *LedgerServiceImpl) CompleteKYC(ctx context.Context, userID string, req KYCRequest) (Account, error) {
	if req.FullName == "" || req.DateOfBirth == "" || req.Address == "" || req.IDNumber == "" {
		return Account{}, &errors.InvalidInputError{Field: "kyc", Reason: "all fields are required"}
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	acct, version, err := s.loadAccount(ctx, userID)
	if err != nil {
		return Account{}, err
	}

	acct.KYCCompleted = true
	acct.KYCData = &KYCData{
		FullName:    req.FullName,
		DateOfBirth: req.DateOfBirth,
		Address:     req.Address,
		IDNumber:    req.IDNumber,
		VerifiedAt:  s.now(),
	}

	if err := s.saveAccount(ctx, acct, version); err != nil {
		return Account{}, err
	}
	return acct, nil
}

// creditTrust adds earned Trust to the account and applies the conversion
// rule. totalEarned only ever grows; conversion never touches it.
func creditTrust(acct *Account, amount float64, source string) {
	acct.TrustPoints += amount
	acct.TotalEarned += amount
	applyConversion(acct)
	logger.Debug("Credited %.2f trust to %s (%s)", amount, acct.UserID, source)
}

// applyConversion converts every 20 Trust into 1 TSR, leaving the
// remainder. Closed form of the repeated-subtraction rule.
func applyConversion(acct *Account) {
	whole := math.Floor(acct.TrustPoints / ConversionThreshold)
	if whole < 1 {
		return
	}
	acct.TSRBalance += whole
	acct.TrustPoints = math.Mod(acct.TrustPoints, ConversionThreshold)
}
