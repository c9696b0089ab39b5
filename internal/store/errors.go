package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/starford/giftcert/internal/apperr"
)

// classify wraps a database error with the apperr kind it belongs to so the
// service and API layers can branch on errors.Is. Already classified errors
// pass through unchanged.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{
		apperr.ErrInvalidArgument,
		apperr.ErrNotFound,
		apperr.ErrStoreUnavailable,
		apperr.ErrStore,
		apperr.ErrAlreadyExists,
		apperr.ErrConflict,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("store: %s: %w: %w", op, kindOf(err), err)
}

func kindOf(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return apperr.ErrNotFound
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone):
		return apperr.ErrStoreUnavailable
	}

	var se sqlite3.Error
	if !errors.As(err, &se) {
		return apperr.ErrStore
	}
	if se.ExtendedCode == sqlite3.ErrBusySnapshot {
		// A read transaction tried to write after another writer committed.
		return apperr.ErrConflict
	}
	switch se.Code {
	case sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrCantOpen, sqlite3.ErrIoErr, sqlite3.ErrProtocol:
		return apperr.ErrStoreUnavailable
	case sqlite3.ErrConstraint:
		switch se.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return apperr.ErrAlreadyExists
		case sqlite3.ErrConstraintForeignKey:
			return apperr.ErrConflict
		case sqlite3.ErrConstraintCheck, sqlite3.ErrConstraintNotNull:
			return apperr.ErrInvalidArgument
		}
	}
	return apperr.ErrStore
}
