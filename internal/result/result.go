// Package result provides the fallible-outcome container every pipeline
// step returns. A Result is either a success carrying a payload or a
// failure carrying a user-readable message, never both.
package result

import "fmt"

// Result holds the outcome of a fallible operation.
type Result[T any] struct {
	ok   bool
	data T
	err  string
}

// Ok returns a success Result carrying data.
func Ok[T any](data T) Result[T] {
	return Result[T]{ok: true, data: data}
}

// Fail returns a failure Result carrying a user-readable message.
// The payload is always the zero value.
func Fail[T any](msg string) Result[T] {
	return Result[T]{err: msg}
}

// Failf returns a failure Result with a formatted message.
func Failf[T any](format string, args ...any) Result[T] {
	return Result[T]{err: fmt.Sprintf(format, args...)}
}

// Wrap converts a Go error into a failure Result prefixed with msg.
// Used at the boundary where collaborator errors enter the pipeline.
func Wrap[T any](msg string, err error) Result[T] {
	return Result[T]{err: fmt.Sprintf("%s: %v", msg, err)}
}

// Success reports whether the operation succeeded.
func (r Result[T]) Success() bool { return r.ok }

// Data returns the payload. Only meaningful when Success is true.
func (r Result[T]) Data() T { return r.data }

// Err returns the failure message, empty on success.
func (r Result[T]) Err() string { return r.err }
