package kvstore

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-process Store used in tests and in the dev backend.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) Put(ctx context.Context, key string, value []byte, version int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.records[key]
	if version == 0 {
		if exists {
			return 0, ErrVersionConflict
		}
	} else if !exists || current.Version != version {
		return 0, ErrVersionConflict
	}

	next := version + 1
	buf := make([]byte, len(value))
	copy(buf, value)
	s.records[key] = Record{Key: key, Value: buf, Version: next}
	return next, nil
}

func (s *MemoryStore) GetByPrefix(ctx context.Context, prefix string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	for key, rec := range s.records {
		if strings.HasPrefix(key, prefix) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
