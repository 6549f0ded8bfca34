package repository

import (
	"context"
	"database/sql/driver"

	"github.com/cockroachdb/errors"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Error kinds. Every error returned by Store.RunInTx carries exactly one of
// the first five as a mark; test with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidReference = errors.New("invalid reference")
	ErrConflict         = errors.New("conflict")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInternal         = errors.New("internal store error")

	// ErrInvalidArgument is used for input rejected before a transaction starts.
	ErrInvalidArgument = errors.New("invalid argument")
)

var kinds = []error{ErrNotFound, ErrInvalidReference, ErrConflict, ErrStoreUnavailable, ErrInternal}

// Precondition failures returned from transaction bodies.
var (
	ErrBankNotFound        = errors.Mark(errors.New("bank does not exist"), ErrInvalidReference)
	ErrTransactionNotFound = errors.Mark(errors.New("transaction not found"), ErrNotFound)
	ErrAccountNotFound     = errors.Mark(errors.New("account not found"), ErrNotFound)
	ErrAccountRefNotFound  = errors.Mark(errors.New("account does not exist"), ErrInvalidReference)
	ErrAssetRefNotFound    = errors.Mark(errors.New("asset does not exist"), ErrInvalidReference)
	ErrDeltaTypeNotFound   = errors.Mark(errors.New("delta type does not exist"), ErrInvalidReference)
	ErrBankInUse           = errors.Mark(errors.New("bank is referenced by accounts"), ErrConflict)
	ErrAccountInUse        = errors.Mark(errors.New("account is referenced by deltas"), ErrConflict)
)

// InvalidArgument builds an input validation error.
func InvalidArgument(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidArgument)
}

// Kind returns the kind mark carried by err, or nil.
func Kind(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	if errors.Is(err, ErrInvalidArgument) {
		return ErrInvalidArgument
	}
	return nil
}

// classify marks a failed transaction outcome with its kind. Errors that
// already carry a kind (precondition failures from the body) pass through.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if Kind(err) != nil {
		return err
	}
	if isUniqueViolation(err) {
		return errors.Mark(err, ErrConflict)
	}
	if isRetryable(err) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return errors.Mark(err, ErrStoreUnavailable)
	}
	return errors.Mark(err, ErrInternal)
}

// isRetryable reports whether a whole transaction attempt may be re-run.
func isRetryable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01":
			return true
		}
		return pqErr.Code.Class() == "08"
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}

	return false
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
