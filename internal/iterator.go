package internal

import (
	"context"
	"errors"
)

// PageIterator flattens successive pages into a stream of items.
// fetch returns the next page, or an error matching done once the source is
// exhausted.
type PageIterator[T any] struct {
	ctx       context.Context
	fetch     func(context.Context) ([]T, error)
	done      error
	buffer    []T
	bufferIdx int
	hasMore   bool
	err       error
}

// NewPageIterator creates a new page iterator.
func NewPageIterator[T any](ctx context.Context, done error, fetch func(context.Context) ([]T, error)) *PageIterator[T] {
	return &PageIterator[T]{
		ctx:     ctx,
		fetch:   fetch,
		done:    done,
		hasMore: true,
	}
}

// HasNext returns true if more items may be available. A true result can
// still be followed by Next returning the done error when the final page
// turns out to be empty.
func (it *PageIterator[T]) HasNext() bool {
	if it.err != nil {
		return false
	}
	return it.bufferIdx < len(it.buffer) || it.hasMore
}

// Next returns the next item, fetching a new page when the buffer is drained.
func (it *PageIterator[T]) Next() (T, error) {
	var zero T
	if it.err != nil {
		return zero, it.err
	}

	for it.bufferIdx >= len(it.buffer) {
		if !it.hasMore {
			return zero, it.done
		}

		page, err := it.fetch(it.ctx)
		if err != nil {
			if errors.Is(err, it.done) {
				it.hasMore = false
				continue
			}
			it.err = err
			return zero, err
		}

		it.buffer = page
		it.bufferIdx = 0
	}

	item := it.buffer[it.bufferIdx]
	it.bufferIdx++
	return item, nil
}

// Err returns the error that stopped iteration, if any. Exhaustion is not an error.
func (it *PageIterator[T]) Err() error {
	return it.err
}
