package kvstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/tsrlabs/trust_ledger/pkg/logger"
)

// PostgresStore keeps every record in a single kv_records table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an already-open database handle. Used directly by
// tests; production code goes through OpenPostgres.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres connects to PostgreSQL, verifies the connection and runs the
// schema migrations before handing back a store.
func OpenPostgres(dsn, migrationsPath string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(db, migrationsPath); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return NewPostgresStore(db), nil
}

func runMigrations(db *sql.DB, migrationsPath string) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create the postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(migrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("an error occurred while syncing the database: %w", err)
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (Record, error) {
	rec := Record{Key: key}
	err := s.db.QueryRowContext(ctx,
		"SELECT value, version FROM kv_records WHERE key = $1", key).
		Scan(&rec.Value, &rec.Version)
	if err == sql.ErrNoRows {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to get record: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) Put(ctx context.Context, key string, value []byte, version int64) (int64, error) {
	var res sql.Result
	var err error
	if version == 0 {
		res, err = s.db.ExecContext(ctx, `
			INSERT INTO kv_records (key, value, version)
			VALUES ($1, $2, 1)
			ON CONFLICT (key) DO NOTHING`, key, value)
	} else {
		res, err = s.db.ExecContext(ctx, `
			UPDATE kv_records
			SET value = $2, version = version + 1
			WHERE key = $1 AND version = $3`, key, value, version)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to put record: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return 0, ErrVersionConflict
	}
	return version + 1, nil
}

func (s *PostgresStore) GetByPrefix(ctx context.Context, prefix string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, value, version
		FROM kv_records
		WHERE key LIKE $1 || '%'
		ORDER BY key`, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to scan prefix: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.Key, &rec.Value, &rec.Version); err != nil {
			return nil, fmt.Errorf("failed to scan record row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate record rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
