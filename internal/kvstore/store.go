// Package kvstore provides the key-value storage abstraction the ledger
// is built on: point get, versioned put and prefix scan. Every value is an
// opaque JSON blob; the version counter supports compare-and-swap writes.
package kvstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a key has no record.
	ErrNotFound = errors.New("kvstore: key not found")
	// ErrVersionConflict is returned when a Put loses a compare-and-swap.
	ErrVersionConflict = errors.New("kvstore: version conflict")
)

// Record is one stored entry together with its CAS version.
type Record struct {
	Key     string
	Value   []byte
	Version int64
}

// Store is the storage interface consumed by the ledger.
//
// Put semantics: version 0 creates the key and fails with
// ErrVersionConflict if it already exists; any other version requires the
// stored version to match and bumps it by one. The new version is returned.
type Store interface {
	Get(ctx context.Context, key string) (Record, error)
	Put(ctx context.Context, key string, value []byte, version int64) (int64, error)
	GetByPrefix(ctx context.Context, prefix string) ([]Record, error)
	Close() error
}
