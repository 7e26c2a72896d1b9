package gostreams

import (
	"context"
	"errors"
)

// ConsumerFunc consumes element elem.
// The index is the 0-based index of elem, in the order produced by the stream.
type ConsumerFunc[T any] func(ctx context.Context, cancel context.CancelCauseFunc, elem T, index uint64)

// AccumulatorFunc folds element elem into the accumulator acc, returning acc, or a new accumulator.
// The index is the 0-based index of elem, in the order produced by the stream.
type AccumulatorFunc[T any, A any] func(ctx context.Context, cancel context.CancelCauseFunc, elem T, index uint64, acc A) A

// PredicateFunc returns true elem matches a predicate.
// The index is the 0-based index of elem, in the order produced by the stream.
type PredicateFunc[T any] func(ctx context.Context, cancel context.CancelCauseFunc, elem T, index uint64) bool

// ErrShortCircuit is a generic error used to short-circuit a stream by canceling its context.
var ErrShortCircuit = errors.New("short circuit")

// CollectSlice returns an accumulator that collects elements into a slice.
func CollectSlice[T any]() AccumulatorFunc[T, []T] {
	return func(_ context.Context, _ context.CancelCauseFunc, elem T, _ uint64, acc []T) []T {
		return append(acc, elem)
	}
}

// Reduce calls reduce for each element produced by s, folding it into accumulator acc, returning the final accumulator.
// If s or reduce cancel the stream's context, it returns the accumulator so far, and the cause of the cancelation.
func Reduce[T any, A any](ctx context.Context, s Stream[T], acc A, reduce AccumulatorFunc[T, A]) (A, error) {
	err := Each(ctx, s, func(ctx context.Context, cancel context.CancelCauseFunc, elem T, index uint64) {
		acc = reduce(ctx, cancel, elem, index, acc)
	})

	return acc, err
}

// ReduceSlice collects the elements produced by s into a slice.
func ReduceSlice[T any](ctx context.Context, s Stream[T]) ([]T, error) {
	return Reduce(ctx, s, []T{}, CollectSlice[T]())
}

// Each calls each for each element produced by s.
// If s fails, or each cancels the stream's context, it returns the cause.
// A cancelation using ErrShortCircuit is not an error.
func Each[T any](ctx context.Context, s Stream[T], each ConsumerFunc[T]) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	index := uint64(0)

	err := s.Collect(ctx, SinkFunc[T](func(ctx context.Context, elem T) error {
		each(ctx, cancel, elem, index)

		if contextDone(ctx) {
			return context.Cause(ctx)
		}

		index++

		return nil
	}))

	if errors.Is(err, ErrShortCircuit) {
		err = nil
	}

	return err
}

// AnyMatch returns true as soon as pred returns true for an element produced by s, that is, an element matches.
// If an element matches, it cancels the stream's context using ErrShortCircuit.
// If s or pred cancel the stream's context, it returns an undefined result, and the cause of the cancelation.
func AnyMatch[T any](ctx context.Context, s Stream[T], pred PredicateFunc[T]) (bool, error) {
	anyMatch := false

	err := Each(ctx, s, func(ctx context.Context, cancel context.CancelCauseFunc, elem T, index uint64) {
		if !pred(ctx, cancel, elem, index) {
			return
		}

		anyMatch = true

		cancel(ErrShortCircuit)
	})

	return anyMatch, err
}

// Count returns the number of elements produced by s.
// If s fails, it returns an undefined result, and the cause.
func Count[T any](ctx context.Context, s Stream[T]) (uint64, error) {
	count := uint64(0)

	err := Each(ctx, s, func(_ context.Context, _ context.CancelCauseFunc, _ T, _ uint64) {
		count++
	})

	return count, err
}
