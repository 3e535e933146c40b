// Package async provides a minimal future abstraction for fire-and-forget
// work whose only result is an error. It backs the optimistic mutation
// coordinator, letting callers apply local state immediately and observe the
// remote outcome later without blocking.
package async

import (
	"context"
	"time"
)

// Future represents the pending result of an asynchronous function.
type Future struct {
	err  error
	done chan struct{}
}

// Await blocks until the function completes and returns its error.
func (f *Future) Await() error {
	<-f.done
	return f.err
}

// AwaitWithTimeout waits for completion up to the given timeout.
// Returns ErrTimeout if the function has not finished in time; the function
// itself keeps running and its result remains observable via Await.
func (f *Future) AwaitWithTimeout(timeout time.Duration) error {
	select {
	case <-f.done:
		return f.err
	case <-time.After(timeout):
		return ErrTimeout
	}
}

// IsComplete reports whether the function has finished, without blocking.
func (f *Future) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Exec runs fn on its own goroutine and returns a Future for its result.
// A pre-canceled context short-circuits without invoking fn.
func Exec(ctx context.Context, fn func(context.Context) error) *Future {
	f := &Future{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		select {
		case <-ctx.Done():
			f.err = ctx.Err()
			return
		default:
		}

		f.err = fn(ctx)
	}()

	return f
}
