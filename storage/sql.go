package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/electr1fy0/bluenotes/logger"
	"github.com/electr1fy0/bluenotes/storage/migrations"
)

const kvTable = "kv"

// Supported SQL drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// SQL is a KV backed by a single two-column table.
type SQL struct {
	db      *sql.DB
	builder sq.StatementBuilderType
	timeout time.Duration
	log     *logger.Logger
}

// NewSQL wraps an open database. The kv table must already exist.
func NewSQL(db *sql.DB, driver string, timeout time.Duration, log *logger.Logger) *SQL {
	if log == nil {
		log = logger.Nop()
	}
	var ph sq.PlaceholderFormat = sq.Question
	if driver == DriverPostgres {
		ph = sq.Dollar
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SQL{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(ph),
		timeout: timeout,
		log:     log.Child("sql"),
	}
}

// OpenSQL connects to dsn, runs migrations and returns the store.
func OpenSQL(ctx context.Context, driver, dsn string, timeout time.Duration, log *logger.Logger) (*SQL, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if err := migrations.Migrate(db, driver); err != nil {
		db.Close()
		return nil, err
	}

	s := NewSQL(db, driver, timeout, log)
	s.log.Debug().Str("driver", driver).Msg("connected to database")
	return s, nil
}

func (s *SQL) Get(key string) (string, bool, error) {
	query, args, err := s.builder.
		Select("value").
		From(kvTable).
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return "", false, fmt.Errorf("build get query: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var value string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SQL) Set(key, value string) error {
	query, args, err := s.builder.
		Insert(kvTable).
		Columns("key", "value").
		Values(key, value).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = excluded.value").
		ToSql()
	if err != nil {
		return fmt.Errorf("build set query: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Close closes the database.
func (s *SQL) Close() error {
	return s.db.Close()
}
