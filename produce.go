package gostreams

import "context"

// ProducerFunc returns a channel of elements for a stream.
// The producer must close the channel when it is done, and must stop producing when ctx is canceled.
// It may cancel the stream using cancel.
type ProducerFunc[T any] func(ctx context.Context, cancel context.CancelCauseFunc) <-chan T

// Produce returns a stream that produces the elements of the given slices, in order.
func Produce[T any](slices ...[]T) Stream[T] {
	return StreamFunc[T](func(ctx context.Context, sink Sink[T]) error {
		for _, slice := range slices {
			for _, elem := range slice {
				if contextDone(ctx) {
					return context.Cause(ctx)
				}

				if err := sink.Emit(ctx, elem); err != nil {
					return err
				}
			}
		}

		return nil
	})
}

// ProduceChannel returns a stream that produces the elements received through the given channels, in order.
// Each channel is received from until it is closed. Unlike a queue stream, collecting the stream
// more than once shares the channels between the collections.
func ProduceChannel[T any](channels ...<-chan T) Stream[T] {
	return StreamFunc[T](func(ctx context.Context, sink Sink[T]) error {
		for _, ch := range channels {
			for {
				var (
					elem T
					ok   bool
				)

				select {
				case elem, ok = <-ch:

				case <-ctx.Done():
					return context.Cause(ctx)
				}

				if !ok {
					break
				}

				if err := sink.Emit(ctx, elem); err != nil {
					return err
				}
			}
		}

		return nil
	})
}

// FromProducer returns a stream that produces the elements produced by prod.
// Every collection calls prod anew. If prod cancels the stream, the collection fails with the cause.
func FromProducer[T any](prod ProducerFunc[T]) Stream[T] {
	return StreamFunc[T](func(ctx context.Context, sink Sink[T]) error {
		ctx, cancel := context.WithCancelCause(ctx)
		defer cancel(nil)

		for elem := range prod(ctx, cancel) {
			if err := sink.Emit(ctx, elem); err != nil {
				cancel(err)
				return err
			}
		}

		if contextDone(ctx) {
			return context.Cause(ctx)
		}

		return nil
	})
}

// Producer returns a producer that collects s in a new goroutine, and produces its elements.
// If the collection fails, the stream is canceled with the failure.
func Producer[T any](s Stream[T]) ProducerFunc[T] {
	return func(ctx context.Context, cancel context.CancelCauseFunc) <-chan T {
		outCh := make(chan T)

		go func() {
			defer close(outCh)

			err := s.Collect(ctx, SinkFunc[T](func(ctx context.Context, elem T) error {
				select {
				case outCh <- elem:
					return nil

				case <-ctx.Done():
					return context.Cause(ctx)
				}
			}))

			if err != nil {
				cancel(err)
			}
		}()

		return outCh
	}
}
