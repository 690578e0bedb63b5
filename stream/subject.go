package stream

import "sync"

// Subject is a hot multicast stream that is also an Observer.
//
// Values pushed with Next reach every current subscriber in subscription
// order. After Error or Complete the subject is terminated: later pushes are
// ignored and new subscribers receive only the terminal notification.
type Subject[T any] struct {
	mu        sync.Mutex
	observers []subjectEntry[T]
	nextID    uint64
	done      bool
	err       error
}

type subjectEntry[T any] struct {
	id  uint64
	sub *subscriber[T]
}

// NewSubject creates a Subject with no subscribers.
func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{}
}

// Next pushes v to every current subscriber.
func (s *Subject[T]) Next(v T) {
	for _, o := range s.snapshot() {
		o.Next(v)
	}
}

// Error terminates the subject with err.
func (s *Subject[T]) Error(err error) {
	for _, o := range s.terminate(err) {
		o.Error(err)
	}
}

// Complete terminates the subject successfully.
func (s *Subject[T]) Complete() {
	for _, o := range s.terminate(nil) {
		o.Complete()
	}
}

// Closed reports whether the subject has terminated.
func (s *Subject[T]) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Subscribe registers o. A terminated subject delivers its terminal
// notification immediately and returns a closed subscription.
func (s *Subject[T]) Subscribe(o Observer[T]) Subscription {
	sub, ok := s.add(o)
	if !ok {
		return s.deliverTerminal(o)
	}
	return sub
}

// Stream returns a read-only view of the subject.
func (s *Subject[T]) Stream() Stream[T] {
	return readOnly[T]{s}
}

func (s *Subject[T]) add(o Observer[T]) (*subscriber[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil, false
	}

	s.nextID++
	id := s.nextID
	sub := newSubscriber(o)
	sub.teardown = func() { s.remove(id) }
	s.observers = append(s.observers, subjectEntry[T]{id: id, sub: sub})
	return sub, true
}

func (s *Subject[T]) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.observers {
		if e.id == id {
			s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
			return
		}
	}
}

func (s *Subject[T]) snapshot() []*subscriber[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil
	}
	out := make([]*subscriber[T], len(s.observers))
	for i, e := range s.observers {
		out[i] = e.sub
	}
	return out
}

func (s *Subject[T]) terminate(err error) []*subscriber[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil
	}
	s.done = true
	s.err = err
	out := make([]*subscriber[T], len(s.observers))
	for i, e := range s.observers {
		out[i] = e.sub
	}
	s.observers = nil
	return out
}

func (s *Subject[T]) deliverTerminal(o Observer[T]) Subscription {
	s.mu.Lock()
	err := s.err
	s.mu.Unlock()
	if o == nil {
		return closedSubscription{}
	}
	if err != nil {
		o.Error(err)
	} else {
		o.Complete()
	}
	return closedSubscription{}
}

// Behavior is a Subject that owns a latest-value cell.
//
// The holder of the *Behavior is the single writer of the cell; subscribers
// only read it. Every new subscriber first receives the current value.
type Behavior[T any] struct {
	Subject[T]

	cellMu sync.Mutex
	cell   T
}

// NewBehavior creates a Behavior seeded with initial.
func NewBehavior[T any](initial T) *Behavior[T] {
	return &Behavior[T]{cell: initial}
}

// Value returns the latest value pushed (or the seed).
func (b *Behavior[T]) Value() T {
	b.cellMu.Lock()
	defer b.cellMu.Unlock()
	return b.cell
}

// Next stores v in the cell and pushes it to every subscriber.
func (b *Behavior[T]) Next(v T) {
	if b.Closed() {
		return
	}
	b.cellMu.Lock()
	b.cell = v
	b.cellMu.Unlock()
	b.Subject.Next(v)
}

// Subscribe registers o and replays the current value to it.
func (b *Behavior[T]) Subscribe(o Observer[T]) Subscription {
	sub, ok := b.add(o)
	if !ok {
		return b.deliverTerminal(o)
	}
	sub.Next(b.Value())
	return sub
}

// Stream returns a read-only view of the behavior.
func (b *Behavior[T]) Stream() Stream[T] {
	return readOnly[T]{b}
}

// readOnly hides the writer half of a subject.
type readOnly[T any] struct {
	src Stream[T]
}

func (r readOnly[T]) Subscribe(o Observer[T]) Subscription {
	return r.src.Subscribe(o)
}
