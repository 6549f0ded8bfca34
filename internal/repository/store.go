package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/cockroachdb/cockroach-go/v2/crdb"
	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/rongwang/stonks/internal/utils"
)

// Dialect selects the SQL engine behind the store.
type Dialect string

const (
	DialectPostgres  Dialect = "postgres"
	DialectCockroach Dialect = "cockroach"
	DialectSQLite    Dialect = "sqlite3"
)

// DriverName returns the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	if d == DialectSQLite {
		return "sqlite3"
	}
	return "postgres"
}

// Valid reports whether d is a known dialect
func (d Dialect) Valid() bool {
	switch d {
	case DialectPostgres, DialectCockroach, DialectSQLite:
		return true
	}
	return false
}

// TxFunc is a unit of work. It may run several times and must not keep
// state between attempts.
type TxFunc func(ctx context.Context, repo Repository) error

// Options bound the retry loop of RunInTx.
type Options struct {
	MaxAttempts    int
	AttemptTimeout time.Duration
	// InitialBackoff is the delay before the second attempt.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultOptions returns the retry bounds used when none are configured
func DefaultOptions() Options {
	return Options{
		MaxAttempts:    10,
		AttemptTimeout: 5 * time.Second,
		InitialBackoff: 10 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
	}
}

// Store runs units of work inside serializable transactions.
type Store struct {
	db      *sqlx.DB
	dialect Dialect
	opts    Options
	logger  *utils.Logger
}

// NewStore creates a store over an open database
func NewStore(db *sqlx.DB, dialect Dialect, opts Options, logger *utils.Logger) *Store {
	def := DefaultOptions()
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = def.MaxAttempts
	}
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = def.AttemptTimeout
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = def.InitialBackoff
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = def.MaxBackoff
	}
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Store{db: db, dialect: dialect, opts: opts, logger: logger}
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// Dialect returns the engine the store talks to
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// RunInTx runs fn in one serializable read-write transaction. A failed
// attempt is rolled back and, when the failure is transient, fn is run again
// from scratch in a new transaction. op names the unit of work in logs.
//
// The returned error is nil or carries exactly one kind mark (see Kind).
func (s *Store) RunInTx(ctx context.Context, op string, fn TxFunc) error {
	start := time.Now()
	attempts := 0

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = s.opts.InitialBackoff
	eb.MaxInterval = s.opts.MaxBackoff

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempts++
		err := s.attempt(ctx, fn)
		if err == nil {
			return struct{}{}, nil
		}
		if isRetryable(err) {
			s.logger.Debug("tx %s attempt %d failed, retrying: %v", op, attempts, err)
			return struct{}{}, err
		}
		return struct{}{}, backoff.Permanent(err)
	},
		backoff.WithBackOff(eb),
		backoff.WithMaxTries(uint(s.opts.MaxAttempts)),
	)

	elapsed := time.Since(start)
	if err != nil {
		err = classify(err)
		if errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrInternal) {
			s.logger.Error("tx %s failed after %d attempt(s) in %s: %v", op, attempts, elapsed, err)
		}
		return errors.Wrapf(err, "%s", op)
	}

	s.logger.Info("tx %s committed after %d attempt(s) in %s", op, attempts, elapsed)
	return nil
}

func (s *Store) attempt(ctx context.Context, fn TxFunc) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.AttemptTimeout)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, s.txOptions())
	if err != nil {
		return err
	}
	repo := newSQLRepository(tx)

	if s.dialect == DialectCockroach {
		return crdb.ExecuteInTx(ctx, crdbTx{tx}, func() error { return fn(ctx, repo) })
	}

	if err := fn(ctx, repo); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.WithSecondaryError(err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

func (s *Store) txOptions() *sql.TxOptions {
	// SQLite write transactions are serialized by the database lock.
	if s.dialect == DialectSQLite {
		return nil
	}
	return &sql.TxOptions{Isolation: sql.LevelSerializable}
}

// crdbTx adapts sqlx.Tx to crdb.Tx.
type crdbTx struct {
	tx *sqlx.Tx
}

var _ crdb.Tx = crdbTx{}

func (t crdbTx) Exec(ctx context.Context, q string, args ...interface{}) error {
	_, err := t.tx.ExecContext(ctx, q, args...)
	return err
}

func (t crdbTx) Commit(context.Context) error {
	return t.tx.Commit()
}

func (t crdbTx) Rollback(context.Context) error {
	return t.tx.Rollback()
}
