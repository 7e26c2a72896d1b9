package gostreams

import (
	"context"
	"errors"
)

// MapperFunc maps element elem to type U.
// The index is the 0-based index of elem, in the order produced by the upstream stream.
type MapperFunc[T any, U any] func(ctx context.Context, elem T, index uint64) (U, error)

// ErrLimitReached is the cause an upstream consumed queue is canceled with when Limit has
// received the maximum number of elements.
var ErrLimitReached = errors.New("limit reached")

// Map returns a stream that calls mapp for each element produced by s, mapping it to type U.
// If mapp returns an error, the collection fails with it.
func Map[T any, U any](s Stream[T], mapp MapperFunc[T, U]) Stream[U] {
	return StreamFunc[U](func(ctx context.Context, sink Sink[U]) error {
		index := uint64(0)

		return s.Collect(ctx, SinkFunc[T](func(ctx context.Context, elem T) error {
			outElem, err := mapp(ctx, elem, index)
			if err != nil {
				return err
			}

			index++

			return sink.Emit(ctx, outElem)
		}))
	})
}

// Filter returns a stream that only produces the elements produced by s for which filter returns true.
func Filter[T any](s Stream[T], filter func(elem T) bool) Stream[T] {
	return StreamFunc[T](func(ctx context.Context, sink Sink[T]) error {
		return s.Collect(ctx, SinkFunc[T](func(ctx context.Context, elem T) error {
			if !filter(elem) {
				return nil
			}

			return sink.Emit(ctx, elem)
		}))
	})
}

// Peek returns a stream that calls peek for each element produced by s, in order, and produces the same elements.
func Peek[T any](s Stream[T], peek func(elem T)) Stream[T] {
	return StreamFunc[T](func(ctx context.Context, sink Sink[T]) error {
		return s.Collect(ctx, SinkFunc[T](func(ctx context.Context, elem T) error {
			peek(elem)
			return sink.Emit(ctx, elem)
		}))
	})
}

// Limit returns a stream that produces the same elements as s, in order, up to max elements.
// Once max elements have been produced, the collection of s is aborted using ErrLimitReached.
func Limit[T any](s Stream[T], max uint64) Stream[T] {
	return StreamFunc[T](func(ctx context.Context, sink Sink[T]) error {
		if max == 0 {
			return nil
		}

		done := uint64(0)

		err := s.Collect(ctx, SinkFunc[T](func(ctx context.Context, elem T) error {
			if err := sink.Emit(ctx, elem); err != nil {
				return err
			}

			done++
			if done == max {
				return ErrLimitReached
			}

			return nil
		}))

		if errors.Is(err, ErrLimitReached) && done == max {
			err = nil
		}

		return err
	})
}
