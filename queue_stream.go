package gostreams

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/deadlyengineer/queue-streams-with-go/queue"
)

// ErrConsumed is returned when a stream created by ConsumeAsStream is collected or materialized more than once.
var ErrConsumed = errors.New("ConsumeAsStream can be collected just once")

// A QueueStream is a Stream that receives the elements of a queue.
//
// QueueStream values are immutable. Create and DropAdapterParams return new values over
// the same queue, which share the consumed flag of the receiver.
type QueueStream[T any] struct {
	q       queue.Queue[T]
	consume bool
	params  Params

	// consumed is shared by all streams derived from the same call to ConsumeAsStream.
	consumed *atomic.Bool
}

var _ Fusible[int] = (*QueueStream[int])(nil)

// ReceiveAsStream returns a stream that receives elements from q. The stream can be collected
// any number of times, concurrently: every element is received by exactly one collector.
// The stream never closes or cancels q, and it produces elements until q is closed.
func ReceiveAsStream[T any](q queue.Queue[T]) *QueueStream[T] {
	return newQueueStream(q, false)
}

// ConsumeAsStream returns a stream that receives elements from q. The stream can be collected,
// or materialized using ProduceIn, only once; subsequent attempts fail with ErrConsumed.
// When the collection ends, q is canceled with the cause of the failure, if any.
func ConsumeAsStream[T any](q queue.Queue[T]) *QueueStream[T] {
	return newQueueStream(q, true)
}

func newQueueStream[T any](q queue.Queue[T], consume bool) *QueueStream[T] {
	if q == nil {
		panic("gostreams: queue stream requires non-nil queue")
	}

	return &QueueStream[T]{
		q:        q,
		consume:  consume,
		params:   directParams(),
		consumed: &atomic.Bool{},
	}
}

// Params implements Fusible.
func (s *QueueStream[T]) Params() Params {
	return s.params
}

// Create implements Fusible. The returned stream is a *QueueStream with parameters p.
func (s *QueueStream[T]) Create(p Params) Stream[T] {
	return s.create(p)
}

// DropAdapterParams returns a stream over the same queue without buffering parameters.
func (s *QueueStream[T]) DropAdapterParams() *QueueStream[T] {
	return s.create(directParams())
}

// Collect implements Stream.
// Without buffering parameters, elements are transferred from the queue to sink in the calling goroutine.
// Otherwise, they are transferred by a producer goroutine through a new queue.
func (s *QueueStream[T]) Collect(ctx context.Context, sink Sink[T]) error {
	if s.params.Capacity != Direct {
		return collectProduced(ctx, sink, s.ProduceIn)
	}

	if err := s.markConsumed(); err != nil {
		return err
	}

	return s.collectTo(ctx, sink)
}

// ProduceIn returns a queue that receives the elements of the stream.
// Without buffering parameters, the stream's own queue is returned.
// Otherwise, a producer goroutine is started in scope, sending elements to a new queue.
// For a stream created by ConsumeAsStream, ProduceIn counts as its single collection.
func (s *QueueStream[T]) ProduceIn(ctx context.Context, scope Scope) (queue.Queue[T], error) {
	if err := s.markConsumed(); err != nil {
		return nil, err
	}

	if s.params.Capacity == Direct {
		return s.q, nil
	}

	return produce(ctx, scope, s.params, s.collectTo), nil
}

// String implements fmt.Stringer.
func (s *QueueStream[T]) String() string {
	return fmt.Sprintf("QueueStream(queue=%p, consume=%t, capacity=%d, overflow=%v)",
		s.q, s.consume, s.params.Capacity, s.params.Overflow)
}

func (s *QueueStream[T]) create(p Params) *QueueStream[T] {
	return &QueueStream[T]{
		q:        s.q,
		consume:  s.consume,
		params:   p,
		consumed: s.consumed,
	}
}

func (s *QueueStream[T]) collectTo(ctx context.Context, sink Sink[T]) error {
	return emitAll(ctx, sink, s.q, s.consume)
}

func (s *QueueStream[T]) markConsumed() error {
	if s.consume && s.consumed.Swap(true) {
		return ErrConsumed
	}

	return nil
}
