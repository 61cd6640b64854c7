package services

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfStock    = errors.New("not enough stock")
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("invalid input")
	ErrStoreConflict = errors.New("cart was modified concurrently, please try again")
)

// Result is what the presentation layer shows the user for a cart action.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func success(format string, args ...interface{}) Result {
	return Result{Success: true, Message: fmt.Sprintf(format, args...)}
}

// ResultFromError turns a service error into a failure Result. Errors outside
// the cart taxonomy get a generic message so internals do not leak.
func ResultFromError(err error) Result {
	switch {
	case err == nil:
		return Result{Success: true}
	case errors.Is(err, ErrOutOfStock),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrValidation),
		errors.Is(err, ErrStoreConflict):
		return Result{Success: false, Message: err.Error()}
	default:
		return Result{Success: false, Message: "Something went wrong, please try again"}
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrOutOfStock):
		return "out_of_stock"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrValidation):
		return "invalid"
	case errors.Is(err, ErrStoreConflict):
		return "conflict"
	default:
		return "error"
	}
}

// CartError carries a user-facing message and one of the sentinel kinds above.
type CartError struct {
	Kind    error
	Message string
}

func (e *CartError) Error() string {
	return e.Message
}

func (e *CartError) Unwrap() error {
	return e.Kind
}

func cartError(kind error, format string, args ...interface{}) error {
	return &CartError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
