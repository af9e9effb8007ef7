// Package ledger implements the account ledger and timer engine: per-user
// economic state (balances, mining timer, check-in streak, referral
// linkage) and every rule that mutates it. It is the only writer of
// account, wallet-index, referral-index and transaction records.
package ledger

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tsrlabs/trust_ledger/internal/errors"
	"github.com/tsrlabs/trust_ledger/internal/kvstore"
)

// LedgerService is the operation surface consumed by the transport layer.
// Every method takes an already-authenticated userId and trusts it.
type LedgerService interface {
	InitUser(ctx context.Context, userID, email, username string) (Account, error)
	GetAccount(ctx context.Context, userID string) (Account, error)
	CheckIn(ctx context.Context, userID string) (CheckInResult, error)
	StartMining(ctx context.Context, userID string) (Account, error)
	ClaimMining(ctx context.Context, userID string) (ClaimResult, error)
	RedeemReferral(ctx context.Context, userID, code string) error
	GetTeam(ctx context.Context, userID string) ([]TeamMember, error)
	SendTSR(ctx context.Context, userID, toAddress string, amount float64) (Transaction, error)
	GetTransactions(ctx context.Context, userID string) ([]Transaction, error)
	CompleteKYC(ctx context.Context, userID string, req KYCRequest) (Account, error)
}

// LedgerServiceImpl implements LedgerService over a kvstore.Store. Each
// logical operation holds the affected accounts' locks for its whole span;
// underneath, writes are versioned so an out-of-process writer surfaces as
// a conflict instead of a lost update.
type LedgerServiceImpl struct {
	store kvstore.Store
	locks *accountLocks
	now   func() time.Time
}

// NewLedgerService creates a ledger over the given store.
func NewLedgerService(store kvstore.Store) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		store: store,
		locks: newAccountLocks(),
		now:   time.Now,
	}
}

// loadAccount reads and decodes one account record with its store version.
func (s *LedgerServiceImpl) loadAccount(ctx context.Context, userID string) (Account, int64, error) {
	rec, err := s.store.Get(ctx, userKey(userID))
	if err == kvstore.ErrNotFound {
		return Account{}, 0, &errors.NotFoundError{Resource: "account", Identifier: userID}
	}
	if err != nil {
		return Account{}, 0, &errors.StorageError{Operation: "load account", Err: err}
	}

	var acct Account
	if err := json.Unmarshal(rec.Value, &acct); err != nil {
		return Account{}, 0, &errors.StorageError{Operation: "decode account", Err: err}
	}
	return acct, rec.Version, nil
}

// saveAccount writes one account record against the version it was read at.
func (s *LedgerServiceImpl) saveAccount(ctx context.Context, acct Account, version int64) error {
	buf, err := json.Marshal(acct)
	if err != nil {
		return &errors.StorageError{Operation: "encode account", Err: err}
	}

	_, err = s.store.Put(ctx, userKey(acct.UserID), buf, version)
	if err == kvstore.ErrVersionConflict {
		return &errors.ConflictError{Rule: errors.RuleVersionConflict, Detail: "account " + acct.UserID + " was modified concurrently"}
	}
	if err != nil {
		return &errors.StorageError{Operation: "save account", Err: err}
	}
	return nil
}

// loadIndex reads a string-valued index record (wallet or referral entry).
func (s *LedgerServiceImpl) loadIndex(ctx context.Context, key string) (string, error) {
	rec, err := s.store.Get(ctx, key)
	if err != nil {
		return "", err
	}
	var value string
	if err := json.Unmarshal(rec.Value, &value); err != nil {
		return "", &errors.StorageError{Operation: "decode index " + key, Err: err}
	}
	return value, nil
}

// createIndex writes a string-valued index record that must not yet exist.
func (s *LedgerServiceImpl) createIndex(ctx context.Context, key, value string) error {
	buf, err := json.Marshal(value)
	if err != nil {
		return &errors.StorageError{Operation: "encode index " + key, Err: err}
	}
	_, err = s.store.Put(ctx, key, buf, 0)
	return err
}
