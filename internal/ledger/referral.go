package ledger

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/tsrlabs/trust_ledger/internal/errors"
	"github.com/tsrlabs/trust_ledger/internal/kvstore"
	"github.com/tsrlabs/trust_ledger/pkg/logger"
)

const (
	referralCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	referralCodeLength  = 6
	referralCodeRetries = 5
)

// issueReferralCode generates a unique code and reserves it in the
// referral index with a create-only write, retrying on collision.
func (s *LedgerServiceImpl) issueReferralCode(ctx context.Context, userID string) (string, error) {
	for attempt := 0; attempt < referralCodeRetries; attempt++ {
		code, err := randomReferralCode()
		if err != nil {
			return "", &errors.StorageError{Operation: "generate referral code", Err: err}
		}

		err = s.createIndex(ctx, referralKey(code), userID)
		if err == kvstore.ErrVersionConflict {
			logger.Warn("Referral code collision on %s, retrying", code)
			continue
		}
		if err != nil {
			return "", &errors.StorageError{Operation: "reserve referral code", Err: err}
		}
		return code, nil
	}
	return "", &errors.StorageError{Operation: "issue referral code", Err: fmt.Errorf("exhausted %d attempts", referralCodeRetries)}
}

func randomReferralCode() (string, error) {
	buf := make([]byte, referralCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("TSR")
	for _, c := range buf {
		b.WriteByte(referralCodeCharset[int(c)%len(referralCodeCharset)])
	}
	return b.String(), nil
}

// RedeemReferral applies a referral code once on behalf of the redeemer.
// The code's owner gains one referral and +0.5 mining rate; the redeemer's
// own account is not modified. A user can never redeem twice, nor redeem
// their own code.
func (s *LedgerServiceImpl) RedeemReferral(ctx context.Context, userID, code string) error {
	if code == "" {
		return &errors.InvalidInputError{Field: "referralCode", Reason: "must not be empty"}
	}

	ownerID, err := s.loadIndex(ctx, referralKey(code))
	if err == kvstore.ErrNotFound {
		return &errors.NotFoundError{Resource: "referral code", Identifier: code}
	}
	if err != nil {
		return &errors.StorageError{Operation: "resolve referral code", Err: err}
	}
	if ownerID == userID {
		return &errors.InvalidInputError{Field: "referralCode", Reason: "cannot redeem your own code"}
	}

	unlock := s.locks.lockPair(userID, ownerID)
	defer unlock()

	if _, err := s.loadIndex(ctx, referrerKey(userID)); err == nil {
		return &errors.ConflictError{Rule: errors.RuleAlreadyRedeemed, Detail: "a referral code was already applied"}
	} else if err != kvstore.ErrNotFound {
		return &errors.StorageError{Operation: "check redeemer entry", Err: err}
	}

	// The redeemer must have an account even though it is not modified.
	if _, _, err := s.loadAccount(ctx, userID); err != nil {
		return err
	}

	owner, ownerVersion, err := s.loadAccount(ctx, ownerID)
	if err != nil {
		return err
	}

	owner.Referrals++
	owner.MiningRate += ReferralRateBonus
	if err := s.saveAccount(ctx, owner, ownerVersion); err != nil {
		return err
	}

	if err := s.createIndex(ctx, referrerKey(userID), ownerID); err != nil {
		if err == kvstore.ErrVersionConflict {
			return &errors.ConflictError{Rule: errors.RuleAlreadyRedeemed, Detail: "a referral code was already applied"}
		}
		return &errors.StorageError{Operation: "create redeemer entry", Err: err}
	}

	logger.Info("Referral %s redeemed by %s, owner %s now at rate %.1f", code, userID, ownerID, owner.MiningRate)
	return nil
}

// GetTeam lists every account whose redeemer entry points at userID,
// ordered by join date (ties broken by userId) for a stable listing.
func (s *LedgerServiceImpl) GetTeam(ctx context.Context, userID string) ([]TeamMember, error) {
	recs, err := s.store.GetByPrefix(ctx, referralKeyPrefix)
	if err != nil {
		return nil, &errors.StorageError{Operation: "scan referral index", Err: err}
	}

	type member struct {
		id   string
		acct Account
	}
	var members []member
	for _, rec := range recs {
		if !strings.HasSuffix(rec.Key, referrerKeySuffix) {
			continue
		}
		var referrerID string
		if err := json.Unmarshal(rec.Value, &referrerID); err != nil || referrerID != userID {
			continue
		}
		memberID := strings.TrimSuffix(strings.TrimPrefix(rec.Key, referralKeyPrefix), referrerKeySuffix)
		acct, _, err := s.loadAccount(ctx, memberID)
		if err != nil {
			logger.Warn("Team member %s has a redeemer entry but no account", memberID)
			continue
		}
		members = append(members, member{id: memberID, acct: acct})
	}

	sort.Slice(members, func(i, j int) bool {
		if !members[i].acct.JoinDate.Equal(members[j].acct.JoinDate) {
			return members[i].acct.JoinDate.Before(members[j].acct.JoinDate)
		}
		return members[i].id < members[j].id
	})

	team := make([]TeamMember, 0, len(members))
	for _, m := range members {
		team = append(team, TeamMember{
			Username:    m.acct.Username,
			TotalEarned: m.acct.TotalEarned,
			JoinDate:    m.acct.JoinDate,
			IsMining:    m.acct.IsMining,
		})
	}
	return team, nil
}
