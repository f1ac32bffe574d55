// Package txnerrors defines the error kinds a transaction can surface, per
// the error-handling table: conflicts and lock contention are expected and
// retryable, storage and usage errors are not.
package txnerrors

import (
	"fmt"

	"github.com/pingcap/errors"
)

var (
	// ErrConflict is returned when commit validation finds that a read's
	// observed version was overwritten before commit. The caller should
	// retry the transaction.
	ErrConflict = errors.New("tictocdb: transaction aborted: read conflict")

	// ErrLocked is returned when commit validation finds a validated row
	// locked by another committing transaction. The caller should retry.
	ErrLocked = errors.New("tictocdb: transaction aborted: row locked by concurrent writer")

	// ErrStorage wraps a nonzero/failing result from the underlying KV
	// engine during commit install. The reference implementation treats
	// this as fatal to the transaction; this module does the same and
	// does not attempt partial-install rollback (see spec §7).
	ErrStorage = errors.New("tictocdb: storage engine error during commit")

	// ErrResourceExhausted is returned when the read/write set bound is
	// exceeded or the timestamp cache is full with no evictable entry.
	ErrResourceExhausted = errors.New("tictocdb: resource exhausted")

	// ErrClosed is returned by Store.Begin after the store is closed, and
	// by any operation on a transaction that has already committed or
	// aborted.
	ErrClosed = errors.New("tictocdb: store is closed")

	// ErrUnregisteredThread is returned by Store.Begin while no
	// Store.RegisterThread call is outstanding.
	ErrUnregisteredThread = errors.New("tictocdb: thread not registered")

	// ErrUpdateAfterDelete is returned when a transaction attempts to
	// Update a key it has already locally Deleted.
	ErrUpdateAfterDelete = errors.New("tictocdb: cannot update a key already deleted in this transaction")
)

// Wrap attaches a stack trace to an underlying engine error and marks it
// as a storage error, mirroring engine_util's use of errors.WithStack.
// errors.Is(Wrap(err), ErrStorage) reports true.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrStorage, errors.WithStack(err))
}
