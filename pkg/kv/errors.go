package kv

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a requested item does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable marks transient backend failures. Only errors matching
	// it are retried by [Retry.Do].
	ErrUnavailable = errors.New("backend unavailable")
)

// Unavailable marks err as transient. The result matches both
// [ErrUnavailable] and err.
func Unavailable(err error) error {
	if err == nil || errors.Is(err, ErrUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

// Retry is a backoff policy for backend calls.
type Retry struct {
	Attempts int
	Delay    time.Duration // first wait; doubled after every failure
}

// DefaultRetry is used by the stores.
var DefaultRetry = Retry{Attempts: 3, Delay: 200 * time.Millisecond}

// Do calls fn until it succeeds, fails permanently or runs out of attempts.
// Cancelling ctx during a wait returns ctx.Err().
func (r Retry) Do(ctx context.Context, fn func() error) error {
	delay := r.Delay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !errors.Is(err, ErrUnavailable) || attempt >= r.Attempts {
			return err
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}
