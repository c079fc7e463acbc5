// Package stream implements the subscription handle shared by the client
// gateways: a producer pushes values or a terminal error, a consumer selects
// on Next and Err, and either side can release it with Close.
package stream

import "sync"

// Option configures a Stream.
type Option func(*options)

type options struct {
	coalesce bool
}

// Coalesce keeps only the most recent undelivered value. Use it for streams
// of full snapshots where intermediate states carry no information.
func Coalesce() Option {
	return func(o *options) { o.coalesce = true }
}

// Stream is a single-consumer subscription. Send never blocks the producer.
// Values are delivered in order; a failure is delivered on Err only after
// every value queued before it.
type Stream[T any] struct {
	mu       sync.Mutex
	queue    []T
	err      error
	failed   bool
	closed   bool
	coalesce bool

	wake chan struct{}
	next chan T
	errc chan error
	done chan struct{}

	closeOnce sync.Once
	release   func()
}

// New starts a stream. release, if not nil, runs once when the stream is
// closed and should free whatever feeds the stream.
func New[T any](release func(), opts ...Option) *Stream[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	s := &Stream[T]{
		coalesce: o.coalesce,
		wake:     make(chan struct{}, 1),
		next:     make(chan T),
		errc:     make(chan error, 1),
		done:     make(chan struct{}),
		release:  release,
	}
	go s.pump()
	return s
}

// Failed returns a stream that reports err immediately.
func Failed[T any](err error) *Stream[T] {
	s := New[T](nil)
	s.Fail(err)
	return s
}

// Next delivers values.
func (s *Stream[T]) Next() <-chan T { return s.next }

// Err delivers at most one terminal error.
func (s *Stream[T]) Err() <-chan error { return s.errc }

// Done is closed once the stream has been released.
func (s *Stream[T]) Done() <-chan struct{} { return s.done }

// Send queues v. It reports false if the stream is closed or failed.
func (s *Stream[T]) Send(v T) bool {
	s.mu.Lock()
	if s.closed || s.failed {
		s.mu.Unlock()
		return false
	}
	if s.coalesce {
		s.queue = append(s.queue[:0], v)
	} else {
		s.queue = append(s.queue, v)
	}
	s.mu.Unlock()
	s.signal()
	return true
}

// Fail terminates the stream with err. Only the first call has effect.
func (s *Stream[T]) Fail(err error) {
	s.mu.Lock()
	if s.closed || s.failed {
		s.mu.Unlock()
		return
	}
	s.failed = true
	s.err = err
	s.mu.Unlock()
	s.signal()
}

// Close releases the stream. Undelivered values are dropped. Safe to call
// more than once and from any goroutine.
func (s *Stream[T]) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.queue = nil
		s.mu.Unlock()
		close(s.done)
		if s.release != nil {
			s.release()
		}
	})
}

func (s *Stream[T]) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Stream[T]) pump() {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			v := s.queue[0]
			var zero T
			s.queue[0] = zero
			s.queue = s.queue[1:]
			s.mu.Unlock()

			select {
			case s.next <- v:
			case <-s.done:
				return
			}
			continue
		}
		if s.failed {
			err := s.err
			s.mu.Unlock()
			s.errc <- err
			return
		}
		s.mu.Unlock()

		select {
		case <-s.wake:
		case <-s.done:
			return
		}
	}
}
