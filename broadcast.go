package gostreams

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/deadlyengineer/queue-streams-with-go/queue"
)

// Broadcaster opens an independent subscription queue on every call to Subscribe.
// *queue.Broadcast implements Broadcaster.
type Broadcaster[T any] interface {
	Subscribe() queue.Queue[T]
}

// BroadcastAsStream returns a stream that opens a new subscription of b on every collection,
// and receives its elements. The subscription is canceled when the collection ends.
func BroadcastAsStream[T any](b Broadcaster[T]) Stream[T] {
	return StreamFunc[T](func(ctx context.Context, sink Sink[T]) error {
		return EmitAll(ctx, sink, b.Subscribe())
	})
}

// BroadcastIn returns a broadcast queue that receives the elements of s. The producer goroutine collecting s
// is started in scope when the first subscription is opened. ctx must be the context of scope.
//
// The buffering parameters of s, if any, configure the subscription queues: queue.DropOldest results in
// conflated subscriptions. queue.DropLatest cannot be expressed by a broadcast queue and yields
// queue.ErrUnsupportedOverflow, Rendezvous and Unlimited capacities yield queue.ErrUnsupportedCapacity,
// before anything is started. A stream created by ConsumeAsStream is marked as collected immediately.
//
// When s fails, the broadcast queue is closed with the failure. Canceling the broadcast queue cancels the producer.
func BroadcastIn[T any](ctx context.Context, scope Scope, s Stream[T]) (*queue.Broadcast[T], error) {
	params := directParams()
	collect := s.Collect

	qs, isQueueStream := s.(*QueueStream[T])

	switch {
	case isQueueStream:
		params = qs.Params()
		collect = qs.collectTo

	default:
		if f, ok := s.(Fusible[T]); ok {
			params = f.Params()
			collect = f.Create(directParams()).Collect
		}
	}

	capacity := params.produceCapacity()

	switch params.Overflow {
	case queue.Suspend:

	case queue.DropOldest:
		capacity = queue.Conflated

	default:
		return nil, fmt.Errorf("%w: broadcast does not support %v", queue.ErrUnsupportedOverflow, params.Overflow)
	}

	if capacity == queue.Rendezvous || capacity == queue.Unlimited {
		return nil, fmt.Errorf("%w: broadcast does not support capacity %d", queue.ErrUnsupportedCapacity, capacity)
	}

	if isQueueStream {
		if err := qs.markConsumed(); err != nil {
			return nil, err
		}
	}

	prodCtx, cancelProd := context.WithCancelCause(params.producerContext(ctx))

	var b *queue.Broadcast[T]

	bCancelled := atomic.Bool{}

	start := sync.OnceFunc(func() {
		scope.Go(func() error {
			defer cancelProd(nil)

			err := collect(prodCtx, SinkFunc[T](b.Send))

			b.Close(err)

			if err != nil && bCancelled.Load() && !contextDone(ctx) {
				return nil
			}

			return err
		})
	})

	b, err := queue.NewBroadcast[T](capacity,
		queue.WithOnSubscribe(start),
		queue.WithOnCancel(func(cause error) {
			bCancelled.Store(true)
			cancelProd(cause)
		}),
	)
	if err != nil {
		cancelProd(nil)
		return nil, err
	}

	return b, nil
}
