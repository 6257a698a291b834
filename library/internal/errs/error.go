package errs

import (
	"errors"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrBookNotFound        = errors.New("book not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrInventoryExhausted  = errors.New("no copies available for borrowing")
	ErrDuplicateActiveLoan = errors.New("user already has an active loan for this book")
	ErrNoActiveLoan        = errors.New("no active loan found")
	// ErrConcurrencyConflict is the only retryable failure: the atomic unit
	// could not be acquired and no state was changed.
	ErrConcurrencyConflict = errors.New("circulation conflict, retry the request")
	ErrDuplicateISBN       = errors.New("book with this isbn already exists")
	ErrDuplicateUser       = errors.New("username or email already taken")
	ErrBookInUse           = errors.New("book has circulation history")
)

type ValidationErrorResponse struct {
	Message string `json:"message"`
	Errors  struct {
		AdditionalProperties string `json:"additionalProperties"`
	} `json:"errors"`
}
