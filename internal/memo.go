package internal

import (
	"context"
	"sync"
)

// Memo runs a computation exactly once and hands every caller the same
// result, including a failure. Callers arriving while the computation is in
// flight wait for it or for their own context, whichever comes first.
type Memo[T any] struct {
	once  sync.Once
	val   T
	err   error
	ready chan struct{}
}

// NewMemo creates a new Memo instance ready for use.
func NewMemo[T any]() *Memo[T] {
	return &Memo[T]{
		ready: make(chan struct{}),
	}
}

// Do starts fn on the first call and returns its result to every caller.
// fn runs detached from the first caller's cancellation, so a canceled
// caller never leaves its context error behind for later ones. Each caller
// waits only until its own ctx is done.
func (m *Memo[T]) Do(ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	m.once.Do(func() {
		go func() {
			m.val, m.err = fn(context.WithoutCancel(ctx))
			close(m.ready)
		}()
	})

	select {
	case <-m.ready:
		return m.val, m.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done returns true once the computation has finished.
func (m *Memo[T]) Done() bool {
	select {
	case <-m.ready:
		return true
	default:
		return false
	}
}
