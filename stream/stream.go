package stream

import "sync"

// Observer receives the notifications of a Stream.
type Observer[T any] interface {
	Next(v T)
	Error(err error)
	Complete()
}

// Subscription releases an observer from a Stream.
type Subscription interface {
	// Unsubscribe stops delivery and runs the producer's teardown. Idempotent.
	Unsubscribe()

	// Closed reports whether the subscription has terminated or been released.
	Closed() bool
}

// Stream is a push-based sequence of values.
type Stream[T any] interface {
	Subscribe(o Observer[T]) Subscription
}

// Funcs adapts plain functions to an Observer. Nil fields are skipped.
type Funcs[T any] struct {
	OnNext     func(T)
	OnError    func(error)
	OnComplete func()
}

func (f Funcs[T]) Next(v T) {
	if f.OnNext != nil {
		f.OnNext(v)
	}
}

func (f Funcs[T]) Error(err error) {
	if f.OnError != nil {
		f.OnError(err)
	}
}

func (f Funcs[T]) Complete() {
	if f.OnComplete != nil {
		f.OnComplete()
	}
}

// OnNext returns an Observer that only handles values.
func OnNext[T any](fn func(T)) Observer[T] {
	return Funcs[T]{OnNext: fn}
}

// funcStream is a cold stream backed by a producer function.
type funcStream[T any] struct {
	produce func(o Observer[T]) func()
}

// New creates a cold stream. produce runs once per Subscribe and may emit
// synchronously; the func it returns (may be nil) is the teardown, run once
// when the subscription terminates or is released.
func New[T any](produce func(o Observer[T]) func()) Stream[T] {
	return &funcStream[T]{produce: produce}
}

func (s *funcStream[T]) Subscribe(o Observer[T]) Subscription {
	sub := newSubscriber(o)
	sub.setTeardown(s.produce(sub))
	return sub
}

// subscriber enforces the observer contract: nothing after a terminal
// notification or after Unsubscribe, and the teardown runs exactly once.
type subscriber[T any] struct {
	dst Observer[T]

	mu       sync.Mutex
	closed   bool
	teardown func()
}

func newSubscriber[T any](dst Observer[T]) *subscriber[T] {
	if dst == nil {
		dst = Funcs[T]{}
	}
	return &subscriber[T]{dst: dst}
}

func (s *subscriber[T]) Next(v T) {
	if s.Closed() {
		return
	}
	s.dst.Next(v)
}

func (s *subscriber[T]) Error(err error) {
	if !s.close() {
		return
	}
	s.dst.Error(err)
	s.runTeardown()
}

func (s *subscriber[T]) Complete() {
	if !s.close() {
		return
	}
	s.dst.Complete()
	s.runTeardown()
}

func (s *subscriber[T]) Unsubscribe() {
	if !s.close() {
		return
	}
	s.runTeardown()
}

func (s *subscriber[T]) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// close marks the subscriber closed and reports whether this call did it.
func (s *subscriber[T]) close() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.closed = true
	return true
}

// setTeardown records the producer teardown. A producer that terminated
// synchronously while subscribing gets its teardown run immediately.
func (s *subscriber[T]) setTeardown(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		fn()
		return
	}
	s.teardown = fn
	s.mu.Unlock()
}

func (s *subscriber[T]) runTeardown() {
	s.mu.Lock()
	fn := s.teardown
	s.teardown = nil
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// isClosed reports whether o is a subscriber that no longer accepts values.
func isClosed[T any](o Observer[T]) bool {
	c, ok := o.(interface{ Closed() bool })
	return ok && c.Closed()
}

// closedSubscription is returned when subscribing to an already-terminated subject.
type closedSubscription struct{}

func (closedSubscription) Unsubscribe() {}

func (closedSubscription) Closed() bool { return true }

// subscriptions collects inner subscriptions of a combining operator.
type subscriptions struct {
	mu   sync.Mutex
	subs []Subscription
	done bool
}

func (c *subscriptions) add(sub Subscription) {
	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		sub.Unsubscribe()
		return
	}
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
}

func (c *subscriptions) unsubscribeAll() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.done = true
	c.mu.Unlock()
	for _, sub := range subs {
		sub.Unsubscribe()
	}
}
