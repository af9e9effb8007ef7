package ledger

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/tsrlabs/trust_ledger/internal/errors"
	"github.com/tsrlabs/trust_ledger/internal/kvstore"
	"github.com/tsrlabs/trust_ledger/pkg/logger"
)

const txStatusCompleted = "completed"

// SendTSR moves TSR from the caller to the wallet address's owner. Both
// accounts are locked in userId order for the whole operation. Sending to
// one's own wallet is allowed and nets to zero while still producing a
// transaction record.
func (s *LedgerServiceImpl) SendTSR(ctx context.Context, userID, toAddress string, amount float64) (Transaction, error) {
	if amount <= 0 {
		return Transaction{}, &errors.InvalidInputError{Field: "amount", Reason: "must be greater than zero"}
	}
	if toAddress == "" {
		return Transaction{}, &errors.InvalidInputError{Field: "toAddress", Reason: "must not be empty"}
	}

	recipientID, err := s.loadIndex(ctx, walletKey(toAddress))
	if err == kvstore.ErrNotFound {
		return Transaction{}, &errors.NotFoundError{Resource: "wallet", Identifier: toAddress}
	}
	if err != nil {
		return Transaction{}, &errors.StorageError{Operation: "resolve wallet", Err: err}
	}

	unlock := s.locks.lockPair(userID, recipientID)
	defer unlock()

	sender, senderVersion, err := s.loadAccount(ctx, userID)
	if err != nil {
		return Transaction{}, err
	}
	if sender.TSRBalance < amount {
		return Transaction{}, &errors.InvalidInputError{Field: "amount", Reason: "insufficient balance"}
	}

	if userID == recipientID {
		// Net zero, but the transfer still happened and is recorded.
		return s.recordTransaction(ctx, userID, recipientID, amount)
	}

	recipient, recipientVersion, err := s.loadAccount(ctx, recipientID)
	if err != nil {
		return Transaction{}, err
	}

	sender.TSRBalance -= amount
	recipient.TSRBalance += amount

	if err := s.saveAccount(ctx, sender, senderVersion); err != nil {
		return Transaction{}, err
	}
	if err := s.saveAccount(ctx, recipient, recipientVersion); err != nil {
		return Transaction{}, err
	}

	return s.recordTransaction(ctx, userID, recipientID, amount)
}

// recordTransaction writes the immutable transaction record under the
// global key and both participants' indexes.
func (s *LedgerServiceImpl) recordTransaction(ctx context.Context, fromID, toID string, amount float64) (Transaction, error) {
	tx := Transaction{
		ID:        uuid.New().String(),
		From:      fromID,
		To:        toID,
		Amount:    amount,
		Timestamp: s.now(),
		Status:    txStatusCompleted,
	}

	buf, err := json.Marshal(tx)
	if err != nil {
		return Transaction{}, &errors.StorageError{Operation: "encode transaction", Err: err}
	}

	keys := []string{txKey(tx.ID), userTxKey(fromID, tx.ID)}
	if toID != fromID {
		keys = append(keys, userTxKey(toID, tx.ID))
	}
	for _, key := range keys {
		if _, err := s.store.Put(ctx, key, buf, 0); err != nil {
			return Transaction{}, &errors.StorageError{Operation: "write transaction " + key, Err: err}
		}
	}

	logger.Info("Transfer %s: %.2f TSR from %s to %s", tx.ID, amount, fromID, toID)
	return tx, nil
}

// GetTransactions returns every transaction the user participated in,
// sender or recipient side, in key order.
func (s *LedgerServiceImpl) GetTransactions(ctx context.Context, userID string) ([]Transaction, error) {
	recs, err := s.store.GetByPrefix(ctx, userTxPrefix(userID))
	if err != nil {
		return nil, &errors.StorageError{Operation: "scan transactions", Err: err}
	}

	txs := make([]Transaction, 0, len(recs))
	for _, rec := range recs {
		var tx Transaction
		if err := json.Unmarshal(rec.Value, &tx); err != nil {
			return nil, &errors.StorageError{Operation: "decode transaction " + rec.Key, Err: err}
		}
		txs = append(txs, tx)
	}
	return txs, nil
}
