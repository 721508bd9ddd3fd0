package contextx

import (
	"context"
	"fmt"
)

// valueFromContext reads a typed value stored under key; name labels the error.
func valueFromContext[T any](ctx context.Context, key any, name string) (T, error) {
	v, ok := ctx.Value(key).(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s: %w", name, ErrNoValue)
	}

	return v, nil
}
