package queue

import (
	"context"
	"errors"
	"math"
)

const (
	// Rendezvous is the capacity of a queue without a buffer. Send blocks until a receiver takes the element.
	Rendezvous = 0

	// Unlimited is the capacity of a queue whose Send never blocks.
	Unlimited = math.MaxInt

	// Conflated is the capacity of a queue that keeps only the latest element.
	// It is equivalent to a capacity of 1 with the DropOldest overflow policy.
	Conflated = -1

	// Buffered is the capacity of a queue with the default buffer size.
	Buffered = -2

	// DefaultBufferSize is the capacity used for Buffered queues with the Suspend overflow policy.
	DefaultBufferSize = 64
)

// Overflow determines what Send does when a queue is full.
type Overflow int

const (
	// Suspend blocks the sender until there is room in the queue.
	Suspend Overflow = iota

	// DropOldest evicts the oldest buffered element to admit the new one.
	DropOldest

	// DropLatest discards the new element, leaving the buffer as is.
	DropLatest
)

var (
	// ErrClosedForSend is returned by Send when the queue has been closed without a cause.
	ErrClosedForSend = errors.New("queue: send on closed queue")

	// ErrCancelled is the close cause of a queue that has been canceled without a cause.
	ErrCancelled = errors.New("queue: canceled")

	// ErrFull is returned by TrySend when the element cannot be sent without blocking.
	ErrFull = errors.New("queue: full")

	// ErrUnsupportedOverflow is returned when a queue type cannot express an overflow policy.
	ErrUnsupportedOverflow = errors.New("queue: unsupported overflow policy")

	// ErrUnsupportedCapacity is returned when a queue type cannot express a capacity.
	ErrUnsupportedCapacity = errors.New("queue: unsupported capacity")
)

// Queue is a closable FIFO of elements.
type Queue[T any] interface {
	// Send sends elem, blocking while the queue is full and its overflow policy is Suspend.
	// It returns the close cause, or ErrClosedForSend, if the queue is closed.
	// It returns the context's cause if ctx is canceled while blocked.
	Send(ctx context.Context, elem T) error

	// Receive receives the next element, blocking while the queue is empty and open.
	// A closed queue yields a closed Result instead of an error.
	// The error is non-nil only if ctx is canceled while the queue is empty and open, and is the context's cause.
	Receive(ctx context.Context) (Result[T], error)

	// Close closes the queue with an optional cause. Buffered elements are still delivered.
	// It returns false if the queue was already closed.
	Close(cause error) bool

	// Cancel closes the queue with an optional cause, and discards buffered elements.
	Cancel(cause error)
}

// Result is the outcome of receiving from a queue: either an element, or a closed indication.
type Result[T any] struct {
	value  T
	closed bool
	cause  error
}

// Element returns a Result carrying elem.
func Element[T any](elem T) Result[T] {
	return Result[T]{
		value: elem,
	}
}

// Closed returns a Result indicating a closed queue.
// A nil cause means the queue was closed normally.
func Closed[T any](cause error) Result[T] {
	return Result[T]{
		closed: true,
		cause:  cause,
	}
}

// Value returns the received element, or the zero value if the queue is closed.
func (r Result[T]) Value() T {
	return r.value
}

// Closed returns true if the queue was closed.
func (r Result[T]) Closed() bool {
	return r.closed
}

// Cause returns the close cause, or nil if the queue was closed normally or r carries an element.
func (r Result[T]) Cause() error {
	return r.cause
}

// String implements fmt.Stringer.
func (o Overflow) String() string {
	switch o {
	case Suspend:
		return "Suspend"
	case DropOldest:
		return "DropOldest"
	case DropLatest:
		return "DropLatest"
	default:
		return "Overflow(unknown)"
	}
}
