package services

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/diftofficial/systemAplikaciaGYM/internal/docstore"
)

const DefaultMaxAttempts = 3

// errStale marks an attempt whose conditional commit lost to a concurrent
// writer; the whole read-check-write sequence runs again.
var errStale = errors.New("stale read")

func staleOrStoreError(op string, err error) error {
	if errors.Is(err, docstore.ErrConflict) {
		return fmt.Errorf("%w: %w", errStale, err)
	}
	return storeError(op, err)
}

// retryOptimistic runs attempt until it succeeds, fails with anything other
// than errStale, or maxAttempts is reached.
func retryOptimistic[T any](
	log zerolog.Logger,
	op string,
	maxAttempts int,
	attempt func() (T, error),
) (T, int, error) {
	var zero T
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	var lastErr error
	for n := 1; n <= maxAttempts; n++ {
		result, err := attempt()
		if err == nil {
			return result, n, nil
		}
		if !errors.Is(err, errStale) {
			return zero, n, err
		}
		lastErr = err
		log.Debug().Err(err).Str("op", op).Int("attempt", n).Msg("conditional commit lost, retrying")
	}

	log.Warn().Err(lastErr).Str("op", op).Int("attempts", maxAttempts).Msg("optimistic retries exhausted")
	return zero, maxAttempts, fmt.Errorf("%w: %s gave up after %d attempts", ErrConflict, op, maxAttempts)
}
