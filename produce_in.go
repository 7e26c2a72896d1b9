package gostreams

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/deadlyengineer/queue-streams-with-go/queue"
)

// collectFunc collects a stream's elements into sink.
type collectFunc[T any] func(ctx context.Context, sink Sink[T]) error

// produceInFunc materializes a stream into a queue.
type produceInFunc[T any] func(ctx context.Context, scope Scope) (queue.Queue[T], error)

// materializer is implemented by streams that control how they are turned into a queue.
type materializer[T any] interface {
	ProduceIn(ctx context.Context, scope Scope) (queue.Queue[T], error)
}

// bufferedStream is the Fusible stream that buffering operators wrap non-Fusible streams in.
type bufferedStream[T any] struct {
	upstream Stream[T]
	params   Params
}

var _ Fusible[int] = (*bufferedStream[int])(nil)

// ProduceIn starts a producer goroutine in scope that collects s, and returns a queue that
// receives the elements. ctx must be the context of scope, canceling it cancels the producer.
//
// The producer and the returned queue are linked: when s fails, the queue is closed with the failure;
// when the queue is canceled, the producer is canceled with the queue's close cause.
// Failures of the producer, other than those caused by canceling the queue, are returned to scope.
//
// If s is a *QueueStream, or the result of a buffering operator, the buffering parameters of s apply.
// A *QueueStream without buffering parameters returns its own queue.
func ProduceIn[T any](ctx context.Context, scope Scope, s Stream[T]) (queue.Queue[T], error) {
	if m, ok := s.(materializer[T]); ok {
		return m.ProduceIn(ctx, scope)
	}

	return produce(ctx, scope, directParams(), s.Collect), nil
}

// produce starts a producer goroutine in scope that runs collect, sending elements to
// a new queue configured by p.
func produce[T any](ctx context.Context, scope Scope, p Params, collect collectFunc[T]) queue.Queue[T] {
	prodCtx, cancelProd := context.WithCancelCause(p.producerContext(ctx))

	outCancelled := atomic.Bool{}

	out := queue.New[T](p.produceCapacity(),
		queue.WithOverflow(p.Overflow),
		queue.WithOnCancel(func(cause error) {
			outCancelled.Store(true)
			cancelProd(cause)
		}),
	)

	scope.Go(func() error {
		defer cancelProd(nil)

		err := collect(prodCtx, SinkFunc[T](out.Send))

		out.Close(err)

		if err != nil && outCancelled.Load() && !contextDone(ctx) {
			return nil
		}

		return err
	})

	return out
}

// collectProduced materializes a stream using produceIn, and emits the elements of the resulting queue to sink.
// The producer runs in a group bound to this call. A producer failure reaches sink only through the closed
// queue, after the elements buffered before it.
func collectProduced[T any](ctx context.Context, sink Sink[T], produceIn produceInFunc[T]) error {
	var grp errgroup.Group

	out, err := produceIn(ctx, &grp)
	if err != nil {
		return err
	}

	err = EmitAll(ctx, sink, out)

	if grpErr := grp.Wait(); grpErr != nil {
		return grpErr
	}

	return err
}

// Params implements Fusible.
func (s *bufferedStream[T]) Params() Params {
	return s.params
}

// Create implements Fusible.
func (s *bufferedStream[T]) Create(p Params) Stream[T] {
	return &bufferedStream[T]{
		upstream: s.upstream,
		params:   p,
	}
}

// Collect implements Stream.
func (s *bufferedStream[T]) Collect(ctx context.Context, sink Sink[T]) error {
	if s.params.Capacity == Direct && s.params.Context == nil {
		return s.upstream.Collect(ctx, sink)
	}

	return collectProduced(ctx, sink, s.ProduceIn)
}

// ProduceIn implements materializer.
func (s *bufferedStream[T]) ProduceIn(ctx context.Context, scope Scope) (queue.Queue[T], error) {
	return produce(ctx, scope, s.params, s.upstream.Collect), nil
}
