package queue

type config struct {
	overflow      Overflow
	onCancel      func(cause error)
	onUndelivered func(elem any)
	onSubscribe   func()
}

// Option configures a queue.
type Option func(*config)

func defaultConfig() config {
	return config{
		overflow: Suspend,
	}
}

// WithOverflow sets the overflow policy of the queue.
// It panics if o is not a known Overflow value.
func WithOverflow(o Overflow) Option {
	return func(c *config) {
		switch o {
		case Suspend, DropOldest, DropLatest:
			c.overflow = o
		default:
			panic("queue: invalid overflow policy")
		}
	}
}

// WithOnCancel registers a hook invoked once, when the queue is first canceled.
// The hook receives the queue's close cause and runs in the goroutine calling Cancel.
func WithOnCancel(fn func(cause error)) Option {
	return func(c *config) {
		c.onCancel = fn
	}
}

// WithOnUndeliveredElement registers a hook invoked for every element that was sent but
// will never be received: elements dropped by the overflow policy, discarded by Cancel,
// or rejected by a closed queue. Option is shared by queues of every element type,
// so elements are passed as any; WithOnUndelivered is the typed form.
func WithOnUndeliveredElement(fn func(elem any)) Option {
	return func(c *config) {
		c.onUndelivered = fn
	}
}

// WithOnUndelivered is WithOnUndeliveredElement for queues of element type T.
// Using it on a queue of another element type panics when an element is undelivered.
func WithOnUndelivered[T any](fn func(elem T)) Option {
	return WithOnUndeliveredElement(func(elem any) {
		fn(elem.(T))
	})
}

// WithOnSubscribe registers a hook invoked after every Broadcast.Subscribe.
// Chan ignores it.
func WithOnSubscribe(fn func()) Option {
	return func(c *config) {
		c.onSubscribe = fn
	}
}

func newConfig(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}
