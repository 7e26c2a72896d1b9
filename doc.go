// Package gostreams bridges queues and streams.
//
// A queue (see package queue) is a closable FIFO shared by any number of senders and receivers.
// A Stream is a cold sequence of elements that is produced anew every time it is collected into a Sink.
//
// ReceiveAsStream and ConsumeAsStream represent a queue as a stream. Collecting the stream receives
// elements from the queue until it is closed. A stream returned by ReceiveAsStream may be collected
// any number of times, concurrently, each collection competing for the queue's elements. A stream
// returned by ConsumeAsStream may be collected only once, and cancels the queue when the collection ends.
//
// ProduceIn materializes a stream into a new queue, by collecting the stream in a producer goroutine
// started in a Scope. The producer and the queue are linked: canceling the queue cancels the producer,
// and a failing producer closes the queue with the failure.
//
// Buffer, Conflate, and WithContext configure the queue a stream is collected through. Applied to a queue
// stream, or to a stream that already is the result of these operators, they do not add another queue:
// the parameters of the last operator applied replace the previous ones. A queue stream without such
// parameters is collected straight from its queue, without an additional goroutine, and ProduceIn
// returns its queue unchanged.
//
// Stream operations receive a context.Context. Canceling the context aborts the collection with the
// context's cause. Collections fail with the first error returned by the stream or the sink, and
// consumed queues are canceled with that error, so that senders observe it.
package gostreams
