package gostreams

import (
	"context"

	"github.com/deadlyengineer/queue-streams-with-go/queue"
)

// Direct is the capacity of a stream that does not request a buffer of its own.
// A queue stream with this capacity transfers elements straight from its queue.
const Direct = -3

// ContextFunc derives the context a stream's producer goroutine runs with.
type ContextFunc func(ctx context.Context) context.Context

// Params are the buffering parameters of a Fusible stream.
type Params struct {
	// Context derives the context of the producer goroutine, if non-nil.
	Context ContextFunc

	// Capacity is the capacity of the producer's queue, or Direct.
	Capacity int

	// Overflow is the overflow policy of the producer's queue.
	Overflow queue.Overflow
}

// Fusible is implemented by streams that absorb buffering operators.
// Applying an operator returns a new stream over the same source, instead of wrapping the stream.
type Fusible[T any] interface {
	Stream[T]

	// Params returns the buffering parameters of the stream.
	Params() Params

	// Create returns a stream over the same source with parameters p.
	// It must not modify the receiver.
	Create(p Params) Stream[T]
}

// Buffer returns a stream that collects s in a separate goroutine, passing elements through a
// queue with the given capacity and overflow policy.
// capacity is either a non-negative number of slots, or one of queue.Unlimited, queue.Conflated, or queue.Buffered.
// If s is Fusible, the parameters replace those of s, so that chained operators result in a single queue.
// Buffer panics if capacity is invalid, or if queue.Conflated is combined with an overflow policy other than queue.Suspend.
func Buffer[T any](s Stream[T], capacity int, overflow queue.Overflow) Stream[T] {
	switch {
	case capacity == queue.Conflated:
		if overflow != queue.Suspend {
			panic("gostreams: Conflated capacity cannot be combined with an overflow policy")
		}

		capacity = queue.Rendezvous
		overflow = queue.DropOldest

	case capacity == queue.Buffered:

	case capacity < 0:
		panic("gostreams: capacity must be non-negative")
	}

	return fuse(s, func(p Params) Params {
		p.Capacity = capacity
		p.Overflow = overflow

		return p
	})
}

// Conflate returns a stream that collects s in a separate goroutine, keeping only the latest
// element while the downstream sink is busy.
func Conflate[T any](s Stream[T]) Stream[T] {
	return Buffer(s, queue.Conflated, queue.Suspend)
}

// WithContext returns a stream whose producer goroutine runs with the context derived by fn.
// If s is Fusible, its buffering parameters are kept. A queue stream without a buffer ignores fn.
func WithContext[T any](s Stream[T], fn ContextFunc) Stream[T] {
	return fuse(s, func(p Params) Params {
		p.Context = fn
		return p
	})
}

// fuse applies update to the parameters of s if s is Fusible, or wraps s in a buffered stream otherwise.
func fuse[T any](s Stream[T], update func(p Params) Params) Stream[T] {
	if f, ok := s.(Fusible[T]); ok {
		return f.Create(update(f.Params()))
	}

	return &bufferedStream[T]{
		upstream: s,
		params:   update(directParams()),
	}
}

func directParams() Params {
	return Params{
		Capacity: Direct,
	}
}

// produceCapacity returns the capacity of the producer queue for p.
func (p Params) produceCapacity() int {
	if p.Capacity == Direct {
		return queue.Buffered
	}

	return p.Capacity
}

// producerContext derives the context of the producer goroutine from ctx.
func (p Params) producerContext(ctx context.Context) context.Context {
	if p.Context == nil {
		return ctx
	}

	return p.Context(ctx)
}
