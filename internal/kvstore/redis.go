package kvstore

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each record in a hash with "value" and "version" fields.
// CAS is done with WATCH/MULTI so a concurrent writer fails the transaction
// instead of overwriting.
type RedisStore struct {
	rdb *redis.Client
}

// OpenRedis connects to Redis and verifies the connection.
func OpenRedis(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,

		PoolSize:     10,
		MinIdleConns: 2,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{rdb: rdb}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (Record, error) {
	fields, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return Record{}, fmt.Errorf("failed to get record: %w", err)
	}
	if len(fields) == 0 {
		return Record{}, ErrNotFound
	}
	return recordFromFields(key, fields)
}

func (s *RedisStore) Put(ctx context.Context, key string, value []byte, version int64) (int64, error) {
	next := version + 1

	txf := func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, key, "version").Int64()
		switch {
		case err == redis.Nil:
			if version != 0 {
				return ErrVersionConflict
			}
		case err != nil:
			return err
		case current != version:
			return ErrVersionConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, "value", value, "version", next)
			return nil
		})
		return err
	}

	err := s.rdb.Watch(ctx, txf, key)
	if err == ErrVersionConflict || err == redis.TxFailedErr {
		return 0, ErrVersionConflict
	}
	if err != nil {
		return 0, fmt.Errorf("failed to put record: %w", err)
	}
	return next, nil
}

func (s *RedisStore) GetByPrefix(ctx context.Context, prefix string) ([]Record, error) {
	var out []Record

	iter := s.rdb.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		rec, err := s.Get(ctx, iter.Val())
		if err == ErrNotFound {
			continue // expired between scan and read
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan prefix: %w", err)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func recordFromFields(key string, fields map[string]string) (Record, error) {
	version, err := strconv.ParseInt(fields["version"], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("malformed version for key %s: %w", key, err)
	}
	return Record{Key: key, Value: []byte(fields["value"]), Version: version}, nil
}
