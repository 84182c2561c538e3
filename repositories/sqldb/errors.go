package sqldb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/fsnd/coffee-shop/repositories"
)

// PostgreSQL SQLSTATE codes
const (
	pqUniqueViolation     = "23505"
	pqNotNullViolation    = "23502"
	pqCheckViolation      = "23514"
	pqForeignKeyViolation = "23503"
	pqStringTooLong       = "22001"
	pqConnectionClass     = "08"
	pqAdminShutdown       = "57P01"
	pqCannotConnectNow    = "57P03"
)

// classify attaches a repositories error kind to driver errors. Errors with no matching
// kind are returned unchanged.
func classify(err error) error {
	kind := kindOf(err)
	if kind == nil {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}

func kindOf(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return repositories.ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == pqUniqueViolation:
			return repositories.ErrDuplicate
		case pqErr.Code == pqNotNullViolation,
			pqErr.Code == pqCheckViolation,
			pqErr.Code == pqForeignKeyViolation,
			pqErr.Code == pqStringTooLong:
			return repositories.ErrConstraint
		case pqErr.Code.Class() == pqConnectionClass,
			pqErr.Code == pqAdminShutdown,
			pqErr.Code == pqCannotConnectNow:
			return repositories.ErrUnavailable
		}
		return nil
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch {
		case sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique,
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey:
			return repositories.ErrDuplicate
		case sqliteErr.Code == sqlite3.ErrConstraint:
			return repositories.ErrConstraint
		case sqliteErr.Code == sqlite3.ErrBusy,
			sqliteErr.Code == sqlite3.ErrLocked,
			sqliteErr.Code == sqlite3.ErrCantOpen:
			return repositories.ErrUnavailable
		}
		return nil
	}

	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return repositories.ErrUnavailable
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return repositories.ErrUnavailable
	}

	return nil
}
