package errors

import "fmt"

// Conflict rules reported by the ledger. Each names the state-machine rule
// that rejected the operation.
const (
	RuleAlreadyMining    = "already_mining"
	RuleNotMining        = "not_mining"
	RuleNotReady         = "not_ready"
	RuleAlreadyCheckedIn = "already_checked_in"
	RuleAlreadyRedeemed  = "already_redeemed"
	RuleVersionConflict  = "version_conflict"
)

type StorageError struct {
	Operation string
	Err       error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Operation, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

type NotFoundError struct {
	Resource   string
	Identifier string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Identifier)
}

// ConflictError rejects an operation that would violate a ledger rule
// given the account's current state.
type ConflictError struct {
	Rule   string
	Detail string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict (%s): %s", e.Rule, e.Detail)
}

type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s - %v", e.StatusCode, e.Message, e.Err)
}

type WebSocketError struct {
	Operation string
	Err       error
}

func (e *WebSocketError) Error() string {
	return fmt.Sprintf("WebSocket error during %s: %v", e.Operation, e.Err)
}
