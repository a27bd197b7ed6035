package source

import (
	"context"
	"strings"
)

// Provider is one lookup strategy. The bool is false when the strategy found nothing.
type Provider[T any] func(ctx context.Context) (T, bool)

// First runs providers in order and returns the first hit.
func First[T any](ctx context.Context, providers ...Provider[T]) (T, bool) {
	for _, p := range providers {
		if p == nil {
			continue
		}
		if v, ok := p(ctx); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Text adapts a string lookup into a Provider that misses on blank results.
// The returned value is trimmed.
func Text(fn func(ctx context.Context) string) Provider[string] {
	return func(ctx context.Context) (string, bool) {
		s := strings.TrimSpace(fn(ctx))
		return s, s != ""
	}
}

// TextOrError is Text for lookups that can fail; an error counts as a miss.
func TextOrError(fn func(ctx context.Context) (string, error)) Provider[string] {
	return func(ctx context.Context) (string, bool) {
		s, err := fn(ctx)
		if err != nil {
			return "", false
		}
		s = strings.TrimSpace(s)
		return s, s != ""
	}
}

// Static returns a Provider for a fixed value, missing when it is blank.
func Static(value string) Provider[string] {
	return Text(func(context.Context) string { return value })
}
