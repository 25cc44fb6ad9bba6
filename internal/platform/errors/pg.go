package errors

import (
	"context"
	stderrs "errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the store layer reacts to
const (
	pgUniqueViolation       = "23505"
	pgForeignKeyViolation   = "23503"
	pgNotNullViolation      = "23502"
	pgCheckViolation        = "23514"
	pgStringTooLong         = "22001"
	pgInvalidText           = "22P02"
	pgSerializationFailure  = "40001"
	pgDeadlockDetected      = "40P01"
	pgLockNotAvailable      = "55P03"
	pgCannotConnectNow      = "57P03"
	pgAdminShutdown         = "57P01"
	pgTooManyConnections    = "53300"
	pgQueryCanceled         = "57014"
	pgUndefinedTable        = "42P01"
	pgInsufficientPrivilege = "42501"
)

// ExtractPgError returns the *pgconn.PgError at the root of err
func ExtractPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if stderrs.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// IsSQLState reports whether err is a Postgres error with the given SQLSTATE
func IsSQLState(err error, state string) bool {
	pgErr, ok := ExtractPgError(err)
	return ok && pgErr.Code == state
}

// IsDuplicateKey reports a unique violation
func IsDuplicateKey(err error) bool { return IsSQLState(err, pgUniqueViolation) }

// IsRetryablePG reports Postgres failures worth another attempt
func IsRetryablePG(err error) bool {
	if err == nil {
		return false
	}
	if stderrs.Is(err, context.DeadlineExceeded) {
		return true
	}
	pgErr, ok := ExtractPgError(err)
	if !ok {
		return false
	}
	switch pgErr.Code {
	case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable,
		pgCannotConnectNow, pgAdminShutdown, pgTooManyConnections:
		return true
	}
	return false
}

// FromPG maps a Postgres error onto an *Error with a fitting code, keeping the cause.
// Non Postgres errors become ErrorCodeDB; nil stays nil.
func FromPG(err error, op string) error {
	if err == nil {
		return nil
	}
	if _, ours := As(err); ours {
		return WithOp(err, op)
	}
	code := ErrorCodeDB
	msg := "database error"
	field := ""
	if pgErr, ok := ExtractPgError(err); ok {
		field = pgErr.ColumnName
		switch pgErr.Code {
		case pgUniqueViolation:
			code, msg = ErrorCodeDuplicateKey, "duplicate key"
			if field == "" {
				field = pgErr.ConstraintName
			}
		case pgForeignKeyViolation, pgCheckViolation:
			code, msg = ErrorCodeConflict, "constraint violation"
			if field == "" {
				field = pgErr.ConstraintName
			}
		case pgNotNullViolation, pgStringTooLong, pgInvalidText:
			code, msg = ErrorCodeInvalidArgument, "invalid value"
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable,
			pgCannotConnectNow, pgAdminShutdown, pgTooManyConnections:
			code, msg = ErrorCodeUnavailable, "database busy"
		case pgQueryCanceled:
			code, msg = ErrorCodeTimeout, "query canceled"
		case pgUndefinedTable, pgInsufficientPrivilege:
			msg = "schema or permission error"
		}
	} else if stderrs.Is(err, context.DeadlineExceeded) {
		code, msg = ErrorCodeTimeout, "database deadline exceeded"
	}
	return &Error{orig: err, code: code, msg: msg, field: field, op: op}
}
