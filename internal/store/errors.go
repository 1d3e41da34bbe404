package store

import "errors"

// Typed failures returned by store operations. Callers match with errors.Is;
// anything else is a storage-level failure (database unreachable, bad SQL)
// and should be treated as internal.
var (
	// ErrNotFound means a referenced book, friend, loan, or contact does
	// not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyOnLoan means the book is not available for borrowing.
	ErrAlreadyOnLoan = errors.New("book is already on loan")

	// ErrCapacityExceeded means the friend has no remaining loan capacity.
	ErrCapacityExceeded = errors.New("friend has no remaining loan capacity")

	// ErrConstraintViolation covers duplicate ISBNs and deletions or
	// updates that would break referential integrity or an invariant.
	ErrConstraintViolation = errors.New("constraint violation")
)
