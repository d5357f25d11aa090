package helper

import "fmt"

// wrappedError carries the operation that failed alongside the underlying error
type wrappedError struct {
	op  string
	err error
}

// NewError wraps err with the operation that produced it.
// The resulting error supports errors.Is/As through Unwrap.
func NewError(op string, err error) error {
	return &wrappedError{op: op, err: err}
}

func (e *wrappedError) Error() string {
	return fmt.Sprintf("error in %s: %v", e.op, e.err)
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
