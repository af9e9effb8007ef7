package types

import "time"

// Ledger events pushed to websocket clients.

type TransferEvent struct {
	TransactionID string    `json:"transactionId"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	Amount        float64   `json:"amount"`
	Timestamp     time.Time `json:"timestamp"`
}

type MiningClaimEvent struct {
	UserID string  `json:"userId"`
	Reward float64 `json:"reward"`
}

type CheckInEvent struct {
	UserID string  `json:"userId"`
	Reward float64 `json:"reward"`
	Streak int     `json:"streak"`
}
