package queue

import (
	"context"
	"sync"
)

// Chan is a Queue safe for use by multiple senders and receivers.
// The zero value is not usable, use New.
type Chan[T any] struct {
	capacity int
	cfg      config

	mu  sync.Mutex
	buf []T

	// removed counts the elements that ever left buf, whether received, dropped, or discarded.
	removed uint64

	closed    bool
	cancelled bool
	cause     error

	// discardFrom is the value of removed when the queue was canceled.
	discardFrom uint64

	// signal is closed and replaced whenever the state changes.
	signal chan struct{}
}

var _ Queue[int] = (*Chan[int])(nil)

// New returns a new queue with the given capacity.
// capacity is either a positive number of slots, or one of Rendezvous, Unlimited, Conflated, or Buffered.
// A Rendezvous or Buffered queue with an overflow policy other than Suspend has a single slot.
// New panics if capacity is invalid, or if Conflated is combined with an overflow policy other than Suspend.
func New[T any](capacity int, opts ...Option) *Chan[T] {
	cfg := newConfig(opts)

	switch {
	case capacity == Conflated:
		if cfg.overflow != Suspend {
			panic("queue: Conflated capacity cannot be combined with an overflow policy")
		}

		capacity = 1
		cfg.overflow = DropOldest

	case capacity == Buffered:
		capacity = DefaultBufferSize
		if cfg.overflow != Suspend {
			capacity = 1
		}

	case capacity == Rendezvous && cfg.overflow != Suspend:
		capacity = 1

	case capacity < 0:
		panic("queue: capacity must be non-negative")
	}

	return &Chan[T]{
		capacity: capacity,
		cfg:      cfg,
		signal:   make(chan struct{}),
	}
}

// Send implements Queue.
func (c *Chan[T]) Send(ctx context.Context, elem T) error {
	c.mu.Lock()

	for {
		if c.closed {
			err := c.sendErr()
			c.mu.Unlock()

			c.undelivered(elem)

			return err
		}

		if c.capacity == Rendezvous {
			if len(c.buf) == 0 {
				return c.handOff(ctx, elem)
			}
		} else if accepted, dropped, ok := c.offer(elem); accepted {
			c.mu.Unlock()

			if ok {
				c.undelivered(dropped)
			}

			return nil
		}

		signal := c.signal
		c.mu.Unlock()

		select {
		case <-signal:

		case <-ctx.Done():
			c.undelivered(elem)
			return context.Cause(ctx)
		}

		c.mu.Lock()
	}
}

// TrySend sends elem if that is possible without blocking.
// It returns ErrFull if the queue is full and its overflow policy is Suspend, and for Rendezvous queues.
func (c *Chan[T]) TrySend(elem T) error {
	c.mu.Lock()

	if c.closed {
		err := c.sendErr()
		c.mu.Unlock()

		c.undelivered(elem)

		return err
	}

	if c.capacity == Rendezvous {
		c.mu.Unlock()
		return ErrFull
	}

	accepted, dropped, ok := c.offer(elem)
	c.mu.Unlock()

	if !accepted {
		return ErrFull
	}

	if ok {
		c.undelivered(dropped)
	}

	return nil
}

// Receive implements Queue.
// Buffered elements and the closed state are returned even if ctx is canceled.
// ctx stops Receive only when it would otherwise block.
func (c *Chan[T]) Receive(ctx context.Context) (Result[T], error) {
	c.mu.Lock()

	for {
		if len(c.buf) != 0 {
			elem := c.dequeue()
			c.mu.Unlock()

			return Element(elem), nil
		}

		if c.closed {
			res := Closed[T](c.cause)
			c.mu.Unlock()

			return res, nil
		}

		if contextDone(ctx) {
			c.mu.Unlock()
			return Result[T]{}, context.Cause(ctx)
		}

		signal := c.signal
		c.mu.Unlock()

		select {
		case <-signal:

		case <-ctx.Done():
			return Result[T]{}, context.Cause(ctx)
		}

		c.mu.Lock()
	}
}

// TryReceive receives an element if that is possible without blocking.
// It returns false if the queue is empty and open.
func (c *Chan[T]) TryReceive() (Result[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.buf) != 0 {
		return Element(c.dequeue()), true
	}

	if c.closed {
		return Closed[T](c.cause), true
	}

	return Result[T]{}, false
}

// Close implements Queue.
func (c *Chan[T]) Close(cause error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	c.closed = true
	c.cause = cause

	c.notify()

	return true
}

// Cancel implements Queue.
// If the queue is still open, it is closed with cause, or ErrCancelled if cause is nil.
// A queue that was already closed keeps its original cause.
func (c *Chan[T]) Cancel(cause error) {
	c.mu.Lock()

	if !c.closed {
		if cause == nil {
			cause = ErrCancelled
		}

		c.closed = true
		c.cause = cause
	}

	first := !c.cancelled
	if first {
		c.cancelled = true
		c.discardFrom = c.removed
	}

	discarded := c.buf
	c.buf = nil
	c.removed += uint64(len(discarded))

	c.notify()

	closeCause := c.cause

	c.mu.Unlock()

	for _, elem := range discarded {
		c.undelivered(elem)
	}

	if first && c.cfg.onCancel != nil {
		c.cfg.onCancel(closeCause)
	}
}

// Len returns the number of buffered elements.
func (c *Chan[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.buf)
}

// Cap returns the number of slots of the queue, after resolving capacity constants.
func (c *Chan[T]) Cap() int {
	return c.capacity
}

// IsClosedForSend returns true if the queue has been closed or canceled.
func (c *Chan[T]) IsClosedForSend() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed
}

// offer appends elem if there is room, or if the overflow policy makes room.
// If an element is dropped by the policy, it is returned with ok set to true.
// c.mu must be held.
func (c *Chan[T]) offer(elem T) (accepted bool, dropped T, ok bool) {
	if len(c.buf) < c.capacity {
		c.buf = append(c.buf, elem)
		c.notify()

		return true, dropped, false
	}

	switch c.cfg.overflow {
	case DropOldest:
		dropped = c.dequeue()
		c.buf = append(c.buf, elem)

		return true, dropped, true

	case DropLatest:
		return true, elem, true

	default:
		return false, dropped, false
	}
}

// handOff sends elem through a Rendezvous queue, waiting until a receiver takes it.
// c.mu must be held, and is released.
func (c *Chan[T]) handOff(ctx context.Context, elem T) error {
	seq := c.removed

	c.buf = append(c.buf, elem)
	c.notify()

	for {
		if c.removed > seq {
			var err error
			if c.cancelled && seq >= c.discardFrom {
				err = c.cause
			}

			c.mu.Unlock()

			return err
		}

		signal := c.signal
		c.mu.Unlock()

		select {
		case <-signal:
			c.mu.Lock()

		case <-ctx.Done():
			c.mu.Lock()

			if c.removed > seq {
				continue
			}

			c.dequeue()
			c.mu.Unlock()

			c.undelivered(elem)

			return context.Cause(ctx)
		}
	}
}

// dequeue removes the oldest buffered element. c.mu must be held, and buf must not be empty.
func (c *Chan[T]) dequeue() T {
	var zero T

	elem := c.buf[0]
	c.buf[0] = zero
	c.buf = c.buf[1:]

	if len(c.buf) == 0 {
		c.buf = nil
	}

	c.removed++
	c.notify()

	return elem
}

// notify wakes up all goroutines waiting for a state change. c.mu must be held.
func (c *Chan[T]) notify() {
	close(c.signal)
	c.signal = make(chan struct{})
}

// sendErr returns the error for sending on the closed queue. c.mu must be held.
func (c *Chan[T]) sendErr() error {
	if c.cause != nil {
		return c.cause
	}

	return ErrClosedForSend
}

func (c *Chan[T]) undelivered(elem T) {
	if c.cfg.onUndelivered != nil {
		c.cfg.onUndelivered(elem)
	}
}

// contextDone returns true if ctx.Err() != nil.
func contextDone(ctx context.Context) bool {
	return ctx.Err() != nil
}
