package client

import "sync"

// Reducer computes the next state. It must not mutate its input.
type Reducer[S, A any] func(state S, action A) S

type dispatched[A any] struct {
	action A
	done   chan struct{}
}

// Store owns a state value and applies dispatched actions one at a time on
// a single goroutine. Observers read copies through Snapshot or Subscribe.
type Store[S, A any] struct {
	reduce Reducer[S, A]
	clone  func(S) S

	queue    chan dispatched[A]
	shutdown chan struct{}
	stopped  chan struct{}
	once     sync.Once

	mu     sync.RWMutex
	state  S
	subs   map[int]chan S
	next   int
	closed bool
}

// NewStore starts the update loop. clone deep-copies a state for
// observers; nil means S has no shared references.
func NewStore[S, A any](initial S, reduce Reducer[S, A], clone func(S) S) *Store[S, A] {
	if clone == nil {
		clone = func(s S) S { return s }
	}
	s := &Store[S, A]{
		reduce:   reduce,
		clone:    clone,
		queue:    make(chan dispatched[A], 16),
		shutdown: make(chan struct{}),
		stopped:  make(chan struct{}),
		state:    initial,
		subs:     make(map[int]chan S),
	}
	go s.run()
	return s
}

func (s *Store[S, A]) run() {
	defer close(s.stopped)
	for {
		select {
		case d := <-s.queue:
			s.apply(d.action)
			close(d.done)
		case <-s.shutdown:
			return
		}
	}
}

func (s *Store[S, A]) apply(action A) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.reduce(s.state, action)
	snapshot := s.clone(s.state)
	// Subscriber channels are only closed under mu, so offering here
	// never sends on a closed channel.
	for _, ch := range s.subs {
		offer(ch, snapshot)
	}
}

// offer replaces a pending snapshot so slow subscribers only see the latest.
func offer[S any](ch chan S, v S) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Dispatch queues action and returns once it has been reduced. It is a
// no-op after Close.
func (s *Store[S, A]) Dispatch(action A) {
	d := dispatched[A]{action: action, done: make(chan struct{})}
	select {
	case s.queue <- d:
	case <-s.shutdown:
		return
	}
	select {
	case <-d.done:
	case <-s.stopped:
	}
}

// Snapshot returns a copy of the current state.
func (s *Store[S, A]) Snapshot() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clone(s.state)
}

// Subscribe returns a channel receiving the state after every update and a
// function that stops the subscription. The channel is closed by that
// function or by Close, whichever runs first, so ranging over it ends.
func (s *Store[S, A]) Subscribe() (<-chan S, func()) {
	ch := make(chan S, 1)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.next
	s.next++
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
}

// Close stops the update loop and closes every subscriber channel. Pending
// dispatches return without effect.
func (s *Store[S, A]) Close() {
	s.once.Do(func() {
		close(s.shutdown)
		<-s.stopped

		s.mu.Lock()
		defer s.mu.Unlock()
		s.closed = true
		for id, ch := range s.subs {
			delete(s.subs, id)
			close(ch)
		}
	})
}
