package queue

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/exp/slices"
)

// Broadcast is a legacy queue that delivers every element to all of its subscribers.
// Each call to Subscribe opens a new subscription queue that receives the elements sent afterwards.
// Elements sent while there are no subscribers are dropped.
type Broadcast[T any] struct {
	capacity int
	cfg      config

	mu     sync.Mutex
	subs   []*Chan[T]
	closed bool
	cause  error

	cancelOnce sync.Once
}

// NewBroadcast returns a new broadcast queue whose subscription queues have the given capacity.
// capacity is either a positive number of slots, or one of Conflated or Buffered.
// Rendezvous and Unlimited capacities cannot be expressed and yield ErrUnsupportedCapacity,
// the DropLatest overflow policy yields ErrUnsupportedOverflow.
func NewBroadcast[T any](capacity int, opts ...Option) (*Broadcast[T], error) {
	cfg := newConfig(opts)

	if cfg.overflow == DropLatest {
		return nil, fmt.Errorf("%w: broadcast does not support %v", ErrUnsupportedOverflow, cfg.overflow)
	}

	switch {
	case capacity == Conflated:
		if cfg.overflow != Suspend {
			return nil, fmt.Errorf("%w: conflated broadcast does not support %v", ErrUnsupportedOverflow, cfg.overflow)
		}

	case capacity == Buffered:
		capacity = DefaultBufferSize

	case capacity == Rendezvous, capacity == Unlimited, capacity < 0:
		return nil, fmt.Errorf("%w: broadcast does not support capacity %d", ErrUnsupportedCapacity, capacity)
	}

	return &Broadcast[T]{
		capacity: capacity,
		cfg:      cfg,
	}, nil
}

// Subscribe opens a new subscription queue.
// Canceling the subscription queue unsubscribes it.
// If the broadcast queue is already closed, the subscription queue is closed with the same cause.
func (b *Broadcast[T]) Subscribe() Queue[T] {
	var sub *Chan[T]

	sub = New[T](b.capacity,
		WithOverflow(b.cfg.overflow),
		WithOnCancel(func(error) {
			b.unsubscribe(sub)
		}),
	)

	b.mu.Lock()

	if b.closed {
		sub.Close(b.cause)
	} else {
		b.subs = append(b.subs, sub)
	}

	b.mu.Unlock()

	if b.cfg.onSubscribe != nil {
		b.cfg.onSubscribe()
	}

	return sub
}

// Send sends elem to all current subscribers, in the order they subscribed.
// Send blocks while any subscription queue with the Suspend overflow policy is full.
// Subscribers that canceled their subscription in the meantime are skipped.
func (b *Broadcast[T]) Send(ctx context.Context, elem T) error {
	b.mu.Lock()

	if b.closed {
		err := b.cause
		b.mu.Unlock()

		if err == nil {
			err = ErrClosedForSend
		}

		return err
	}

	subs := slices.Clone(b.subs)

	b.mu.Unlock()

	for _, sub := range subs {
		if err := sub.Send(ctx, elem); err != nil {
			if contextDone(ctx) {
				return context.Cause(ctx)
			}

			b.unsubscribe(sub)
		}
	}

	return nil
}

// Subscribers returns the number of open subscriptions.
func (b *Broadcast[T]) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.subs)
}

// Close closes the broadcast queue and all subscription queues with an optional cause.
// Subscribers still receive the elements buffered in their subscription queues.
// It returns false if the broadcast queue was already closed.
func (b *Broadcast[T]) Close(cause error) bool {
	b.mu.Lock()

	if b.closed {
		b.mu.Unlock()
		return false
	}

	b.closed = true
	b.cause = cause

	subs := b.subs
	b.subs = nil

	b.mu.Unlock()

	for _, sub := range subs {
		sub.Close(cause)
	}

	return true
}

// Cancel closes the broadcast queue with an optional cause, and cancels all subscription queues.
func (b *Broadcast[T]) Cancel(cause error) {
	b.mu.Lock()

	if !b.closed {
		if cause == nil {
			cause = ErrCancelled
		}

		b.closed = true
		b.cause = cause
	}

	subs := b.subs
	b.subs = nil

	closeCause := b.cause

	b.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel(closeCause)
	}

	b.cancelOnce.Do(func() {
		if b.cfg.onCancel != nil {
			b.cfg.onCancel(closeCause)
		}
	})
}

func (b *Broadcast[T]) unsubscribe(sub *Chan[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if i := slices.Index(b.subs, sub); i >= 0 {
		b.subs = slices.Delete(b.subs, i, i+1)
	}
}
