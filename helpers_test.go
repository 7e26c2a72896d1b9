package gostreams

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/matryer/is"

	"github.com/deadlyengineer/queue-streams-with-go/queue"
)

var (
	errBoom = errors.New("boom")
	errStop = errors.New("stop")
)

// closedQueue returns an unlimited queue containing elems, closed with cause.
func closedQueue[T any](is *is.I, cause error, elems ...T) *queue.Chan[T] {
	is.Helper()

	q := queue.New[T](queue.Unlimited)

	for _, elem := range elems {
		is.NoErr(q.Send(context.Background(), elem))
	}

	q.Close(cause)

	return q
}

// receiveAll receives from q until it is closed, returning the elements and the close cause.
func receiveAll[T any](is *is.I, q queue.Queue[T]) ([]T, error) {
	is.Helper()

	elems := []T{}

	for {
		res, err := q.Receive(context.Background())
		is.NoErr(err)

		if res.Closed() {
			return elems, res.Cause()
		}

		elems = append(elems, res.Value())
	}
}

// collector is a Sink that records the elements it receives.
type collector[T any] struct {
	mu    sync.Mutex
	elems []T
}

func (c *collector[T]) Emit(_ context.Context, elem T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.elems = append(c.elems, elem)

	return nil
}

func (c *collector[T]) result() []T {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]T{}, c.elems...)
}

// failAt returns a sink that records elements, and fails with err when receiving elem.
func failAt[T comparable](c *collector[T], elem T, err error) Sink[T] {
	return SinkFunc[T](func(ctx context.Context, e T) error {
		if e == elem {
			return err
		}

		return c.Emit(ctx, e)
	})
}

// slowSink returns a sink that records elements into c after a short delay.
func slowSink[T any](c *collector[T]) Sink[T] {
	return SinkFunc[T](func(ctx context.Context, elem T) error {
		time.Sleep(5 * time.Millisecond)

		return c.Emit(ctx, elem)
	})
}
