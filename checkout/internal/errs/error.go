package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Failure kinds surfaced by the checkout coordinator. Every error it returns
// matches exactly one of them with errors.Is, or is an unexpected store error.
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrUnprocessable = errors.New("unprocessable state")
	ErrTransaction   = errors.New("transaction failure")
)

var (
	ErrBookNotFound = fmt.Errorf("book %w", ErrNotFound)
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)

	ErrAlreadyCheckedOut = fmt.Errorf("%w: book is already checked out", ErrConflict)
	ErrReturnMismatch    = fmt.Errorf("%w: checkout does not match the active loan", ErrConflict)
	ErrAlreadyReturned   = fmt.Errorf("%w: checkout is already returned", ErrConflict)
	ErrBookHasHistory    = fmt.Errorf("%w: book has checkout history", ErrConflict)

	ErrCheckoutNotCreated = fmt.Errorf("%w: no checkout record has been created", ErrUnprocessable)
	ErrReturnNotRecorded  = fmt.Errorf("%w: no returned checkout record has been created", ErrUnprocessable)
	ErrCheckoutNotDeleted = fmt.Errorf("%w: no checkout record has been deleted", ErrUnprocessable)

	ErrUserID = errors.New("user id is required")
)

type txError struct {
	err       error
	retryable bool
}

func (e *txError) Error() string {
	return fmt.Sprintf("%s: %s", ErrTransaction, e.err)
}

func (e *txError) Unwrap() []error {
	return []error{ErrTransaction, e.err}
}

// Transaction marks err as a transaction-level failure. Retryable failures are
// the ones the store raises to abort one side of a conflicting interleaving
// (serialization failures, deadlocks).
func Transaction(err error, retryable bool) error {
	if err == nil {
		return nil
	}
	return &txError{err: err, retryable: retryable}
}

// IsRetryable reports whether err is a transaction failure that may succeed
// when the whole operation is attempted again.
func IsRetryable(err error) bool {
	var te *txError
	return errors.As(err, &te) && te.retryable
}

// HTTPStatus maps an error to the status the API reports for it.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict), IsRetryable(err):
		return http.StatusConflict
	case errors.Is(err, ErrUnprocessable):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
