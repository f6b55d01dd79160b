package provider

// Result is the tagged outcome of a provider call: either a value or an
// *Error, never both. Callers must check OK before using the value.
type Result[T any] struct {
	value T
	err   *Error
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Fail wraps a provider failure. A nil err is normalized to an internal error
// so a failed Result can never look successful.
func Fail[T any](err *Error) Result[T] {
	if err == nil {
		err = NewError(ErrorInternal, "", "failure without error detail", nil)
	}
	return Result[T]{err: err}
}

// OK reports whether the call succeeded.
func (r Result[T]) OK() bool {
	return r.err == nil
}

// Value returns the payload and whether the call succeeded.
func (r Result[T]) Value() (T, bool) {
	return r.value, r.err == nil
}

// Err returns the failure, or nil on success.
func (r Result[T]) Err() *Error {
	return r.err
}

// Unwrap converts the Result into Go's (value, error) convention.
func (r Result[T]) Unwrap() (T, error) {
	if r.err != nil {
		var zero T
		return zero, r.err
	}
	return r.value, nil
}
