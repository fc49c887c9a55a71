package html2png

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Rasterizer retry defaults: one attempt plus two retries, waiting N seconds
// before retry N.
const (
	DefaultMaxAttempts = 3
	DefaultBackoffStep = time.Second
)

// DefaultTransientErrors are rasterizer stderr fragments worth retrying.
var DefaultTransientErrors = []string{"Error opening", "unknown error"}

// IsTransientRasterError reports whether err matches DefaultTransientErrors.
var IsTransientRasterError = TransientMatcher(DefaultTransientErrors...)

// RetryPolicy bounds how often a failing operation is re-run.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     func(retry int) time.Duration
	IsTransient func(err error) bool
	Sleep       Sleeper
}

// LinearBackoff waits retry*step before retry number retry (1-based).
func LinearBackoff(step time.Duration) func(int) time.Duration {
	return func(retry int) time.Duration {
		return time.Duration(retry) * step
	}
}

// DefaultRetryPolicy returns the rasterizer retry policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		Backoff:     LinearBackoff(DefaultBackoffStep),
		IsTransient: IsTransientRasterError,
		Sleep:       Sleep,
	}
}

// Do runs op until it succeeds, fails permanently, or the attempt budget
// is spent. onRetry, if set, is called before each backoff with the
// 1-based retry number.
func (p RetryPolicy) Do(ctx context.Context, op func(ctx context.Context) error, onRetry func(retry int, err error)) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		err = op(ctx)
		if err == nil {
			return nil
		}
		if attempt == attempts || p.IsTransient == nil || !p.IsTransient(err) {
			return err
		}

		if onRetry != nil {
			onRetry(attempt, err)
		}
		var wait time.Duration
		if p.Backoff != nil {
			wait = p.Backoff(attempt)
		}
		if sleepErr := sleep(ctx, wait); sleepErr != nil {
			return sleepErr
		}
	}
	return err
}

// TransientMatcher returns a predicate matching errors whose captured
// stderr (or message, for other errors) contains one of the fragments.
func TransientMatcher(fragments ...string) func(error) bool {
	return func(err error) bool {
		if err == nil {
			return false
		}
		text := err.Error()
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) {
			text = cmdErr.Stderr
		}
		for _, f := range fragments {
			if f != "" && strings.Contains(text, f) {
				return true
			}
		}
		return false
	}
}
