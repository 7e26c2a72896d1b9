package gostreams

import (
	"context"

	"github.com/deadlyengineer/queue-streams-with-go/queue"
)

// EmitAll receives all elements from q and emits them to sink, in order, until q is closed.
// If q is closed with a cause, EmitAll returns that cause.
//
// q is consumed: when EmitAll returns, q is canceled with the error EmitAll returns,
// so that senders observe that no more elements will be received.
func EmitAll[T any](ctx context.Context, sink Sink[T], q queue.Queue[T]) error {
	return emitAll(ctx, sink, q, true)
}

// emitAll transfers elements from q to sink. If consume is true, q is canceled upon return.
func emitAll[T any](ctx context.Context, sink Sink[T], q queue.Queue[T], consume bool) (err error) {
	if consume {
		defer func() {
			if r := recover(); r != nil {
				q.Cancel(newPanicError(r))
				panic(r)
			}

			q.Cancel(err)
		}()
	}

	if contextDone(ctx) {
		return context.Cause(ctx)
	}

	for {
		res, err := q.Receive(ctx)
		if err != nil {
			return err
		}

		if res.Closed() {
			return res.Cause()
		}

		if err := sink.Emit(ctx, res.Value()); err != nil {
			return err
		}
	}
}
