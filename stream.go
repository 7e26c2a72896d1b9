package gostreams

import "context"

// Sink accepts the elements of a stream, one at a time.
type Sink[T any] interface {
	// Emit accepts elem. It may block to apply backpressure.
	// Returning an error aborts the collection of the stream with that error.
	Emit(ctx context.Context, elem T) error
}

// SinkFunc is a function that implements Sink.
type SinkFunc[T any] func(ctx context.Context, elem T) error

// Stream is a cold sequence of elements. Every call to Collect produces the elements anew
// and passes them to sink, in order, returning once all elements have been emitted or the collection failed.
type Stream[T any] interface {
	Collect(ctx context.Context, sink Sink[T]) error
}

// StreamFunc is a function that implements Stream.
type StreamFunc[T any] func(ctx context.Context, sink Sink[T]) error

// Scope runs the producer goroutines of materialized streams.
// A producer's error is returned from the function passed to Go. *errgroup.Group implements Scope.
type Scope interface {
	Go(fn func() error)
}

// Emit implements Sink.
func (f SinkFunc[T]) Emit(ctx context.Context, elem T) error {
	return f(ctx, elem)
}

// Collect implements Stream.
func (f StreamFunc[T]) Collect(ctx context.Context, sink Sink[T]) error {
	return f(ctx, sink)
}
