package cache

import (
	"errors"
	"fmt"
)

// ErrUnavailable marks a cache provider failure (connectivity, timeout,
// closed client). Callers treat it as a forced miss.
var ErrUnavailable = errors.New("cache unavailable")

type CacheError struct {
	Operation string
	Err       error
	Retryable bool
}

func NewCacheError(operation string, err error, retryable bool) *CacheError {
	return &CacheError{
		Operation: operation,
		Err:       err,
		Retryable: retryable,
	}
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache operation %s failed: %v", e.Operation, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}

// Is reports every CacheError as ErrUnavailable so callers can test with
// errors.Is without knowing the provider.
func (e *CacheError) Is(target error) bool {
	return target == ErrUnavailable
}
