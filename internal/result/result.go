// Package result carries a value or an error for operations whose callers
// always fall back to a default instead of failing.
package result

// Result holds either a value or the error that prevented producing it.
type Result[T any] struct {
	value T
	err   error
}

func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

func Err[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// Err returns the failure, if any.
func (r Result[T]) Err() error {
	return r.err
}

// UnwrapOr returns the value, or def when r holds an error. onErr, when not
// nil, is called with the error before def is returned.
func (r Result[T]) UnwrapOr(def T, onErr func(error)) T {
	if r.err != nil {
		if onErr != nil {
			onErr(r.err)
		}
		return def
	}
	return r.value
}
