// Package queue provides a closable, multi-producer/multi-consumer FIFO queue.
//
// A queue has a finite or unlimited number of slots. Senders block when the queue
// is full, unless an Overflow policy other than Suspend is configured. Receivers compete
// for elements: every element is received by exactly one receiver.
//
// A queue can be closed, optionally with a cause. Elements already buffered are still
// delivered after Close; receivers then observe a closed Result carrying the cause.
// Cancel closes the queue and discards buffered elements at once.
//
// Broadcast is a legacy queue type that opens an independent subscription queue per subscriber.
package queue
