package tagcache

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrKeyEmpty rejects empty (or unresolvable) cache keys before any IO.
	ErrKeyEmpty = errors.New("tagcache: empty key")

	// ErrTTLNonPositive rejects ttl <= 0 when no DefaultTTL is configured.
	// An accidental "never expire" is worse than a loud failure.
	ErrTTLNonPositive = errors.New("tagcache: non-positive ttl")
)

// StoreError reports that a value was computed successfully but could not be
// made durable: either the backend write failed or the tag registration did.
// GetOrCompute returns the computed value alongside a *StoreError so callers
// can proceed uncached.
type StoreError struct {
	Key    string
	PutErr error
	TagErr error
}

func (e *StoreError) Error() string {
	switch {
	case e.PutErr != nil && e.TagErr != nil:
		return fmt.Sprintf("store %q failed: put=%v; tag register=%v", e.Key, e.PutErr, e.TagErr)
	case e.PutErr != nil:
		return fmt.Sprintf("store %q: put failed: %v", e.Key, e.PutErr)
	case e.TagErr != nil:
		return fmt.Sprintf("store %q: tag register failed: %v", e.Key, e.TagErr)
	default:
		return fmt.Sprintf("store %q: unknown error", e.Key)
	}
}

func (e *StoreError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.PutErr != nil {
		errs = append(errs, e.PutErr)
	}
	if e.TagErr != nil {
		errs = append(errs, e.TagErr)
	}
	return errs
}

// InvalidateError aggregates per-tag failures from Invalidate. Tags that
// swept cleanly are not listed; the sweep keeps going past failures so one
// broken tag cannot shield the others from invalidation.
type InvalidateError struct {
	Tags []string
	Errs []error
}

func (e *InvalidateError) Error() string {
	parts := make([]string, 0, len(e.Tags))
	for i, tag := range e.Tags {
		parts = append(parts, fmt.Sprintf("%q: %v", tag, e.Errs[i]))
	}
	return "invalidate failed for tags: " + strings.Join(parts, "; ")
}

func (e *InvalidateError) Unwrap() []error { return e.Errs }
