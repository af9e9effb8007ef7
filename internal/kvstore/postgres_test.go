package kvstore

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPostgresStore holds the common test dependencies
type testPostgresStore struct {
	mock sqlmock.Sqlmock
	db   *sql.DB
	svc  *PostgresStore
}

func setupTestStore(t *testing.T) *testPostgresStore {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	return &testPostgresStore{
		mock: mock,
		db:   db,
		svc:  NewPostgresStore(db),
	}
}

func (ts *testPostgresStore) close() {
	ts.db.Close()
}

func TestPostgresGet(t *testing.T) {
	ts := setupTestStore(t)
	defer ts.close()

	ts.mock.ExpectQuery("SELECT value, version FROM kv_records").
		WithArgs("user:abc").
		WillReturnRows(sqlmock.NewRows([]string{"value", "version"}).
			AddRow([]byte(`{"a":1}`), int64(3)))

	rec, err := ts.svc.Get(context.Background(), "user:abc")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), rec.Value)
	assert.Equal(t, int64(3), rec.Version)
	assert.NoError(t, ts.mock.ExpectationsWereMet())
}

func TestPostgresGetMissing(t *testing.T) {
	ts := setupTestStore(t)
	defer ts.close()

	ts.mock.ExpectQuery("SELECT value, version FROM kv_records").
		WithArgs("user:missing").
		WillReturnError(sql.ErrNoRows)

	_, err := ts.svc.Get(context.Background(), "user:missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresPut(t *testing.T) {
	ts := setupTestStore(t)
	defer ts.close()

	testCases := []struct {
		name        string
		version     int64
		mockSetup   func()
		expectedVer int64
		expectedErr error
	}{
		{
			name:    "Create new key",
			version: 0,
			mockSetup: func() {
				ts.mock.ExpectExec("INSERT INTO kv_records").
					WithArgs("user:abc", []byte("v")).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			expectedVer: 1,
		},
		{
			name:    "Create existing key",
			version: 0,
			mockSetup: func() {
				ts.mock.ExpectExec("INSERT INTO kv_records").
					WithArgs("user:abc", []byte("v")).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			expectedErr: ErrVersionConflict,
		},
		{
			name:    "Update with matching version",
			version: 4,
			mockSetup: func() {
				ts.mock.ExpectExec("UPDATE kv_records").
					WithArgs("user:abc", []byte("v"), int64(4)).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			expectedVer: 5,
		},
		{
			name:    "Update with stale version",
			version: 4,
			mockSetup: func() {
				ts.mock.ExpectExec("UPDATE kv_records").
					WithArgs("user:abc", []byte("v"), int64(4)).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			expectedErr: ErrVersionConflict,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.mockSetup()

			version, err := ts.svc.Put(context.Background(), "user:abc", []byte("v"), tc.version)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expectedVer, version)
			}
			assert.NoError(t, ts.mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresGetByPrefix(t *testing.T) {
	ts := setupTestStore(t)
	defer ts.close()

	ts.mock.ExpectQuery("SELECT key, value, version").
		WithArgs("tx:user:u1:").
		WillReturnRows(sqlmock.NewRows([]string{"key", "value", "version"}).
			AddRow("tx:user:u1:a", []byte("1"), int64(1)).
			AddRow("tx:user:u1:b", []byte("2"), int64(1)))

	recs, err := ts.svc.GetByPrefix(context.Background(), "tx:user:u1:")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "tx:user:u1:a", recs[0].Key)
	assert.NoError(t, ts.mock.ExpectationsWereMet())
}
