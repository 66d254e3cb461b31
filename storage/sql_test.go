package storage

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockSQL(t *testing.T, driver string) (*SQL, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQL(db, driver, time.Second, nil), mock
}

func TestSQL_Get(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		query   string
		rows    *sqlmock.Rows
		err     error
		want    string
		wantOK  bool
		wantErr bool
	}{
		{
			name:   "sqlite hit",
			driver: DriverSQLite,
			query:  "SELECT value FROM kv WHERE key = ?",
			rows:   sqlmock.NewRows([]string{"value"}).AddRow(`["Work"]`),
			want:   `["Work"]`,
			wantOK: true,
		},
		{
			name:   "postgres hit",
			driver: DriverPostgres,
			query:  "SELECT value FROM kv WHERE key = $1",
			rows:   sqlmock.NewRows([]string{"value"}).AddRow(`[]`),
			want:   `[]`,
			wantOK: true,
		},
		{
			name:   "missing key",
			driver: DriverSQLite,
			query:  "SELECT value FROM kv WHERE key = ?",
			err:    sql.ErrNoRows,
		},
		{
			name:    "db error",
			driver:  DriverSQLite,
			query:   "SELECT value FROM kv WHERE key = ?",
			err:     errors.New("disk I/O error"),
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, mock := newMockSQL(t, tc.driver)
			exp := mock.ExpectQuery(regexp.QuoteMeta(tc.query)).WithArgs("customCategories")
			if tc.err != nil {
				exp.WillReturnError(tc.err)
			} else {
				exp.WillReturnRows(tc.rows)
			}

			got, ok, err := s.Get("customCategories")
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.wantOK, ok)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSQL_Set(t *testing.T) {
	s, mock := newMockSQL(t, DriverPostgres)
	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO kv (key,value) VALUES ($1,$2) ON CONFLICT (key) DO UPDATE SET value = excluded.value",
	)).WithArgs("notes", "[]").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Set("notes", "[]"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQL_SetError(t *testing.T) {
	s, mock := newMockSQL(t, DriverSQLite)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO kv")).
		WillReturnError(errors.New("database is locked"))

	err := s.Set("notes", "[]")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `set "notes"`)
}
