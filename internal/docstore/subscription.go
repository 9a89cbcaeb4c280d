package docstore

import "sync"

// Subscription is a cancellable stream of snapshots. Delivery is
// latest-wins: a reader that falls behind receives the newest snapshot,
// never a stale one. The channel is closed when the subscription ends.
type Subscription struct {
	ch   chan Snapshot
	done chan struct{}
	stop func()
	once sync.Once

	mu     sync.Mutex
	closed bool
	err    error
}

// NewSubscription returns an open subscription. stop, if non-nil, runs
// once when the subscription is closed.
func NewSubscription(stop func()) *Subscription {
	return &Subscription{
		ch:   make(chan Snapshot, 1),
		done: make(chan struct{}),
		stop: stop,
	}
}

// Snapshots returns the delivery channel.
func (s *Subscription) Snapshots() <-chan Snapshot {
	return s.ch
}

// Done is closed when the subscription ends.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Deliver replaces any undelivered snapshot with snap. It returns false
// once the subscription is closed.
func (s *Subscription) Deliver(snap Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- snap:
	default:
		select {
		case <-s.ch:
		default:
		}
		s.ch <- snap
	}
	return true
}

// Fail records err and closes the subscription.
func (s *Subscription) Fail(err error) {
	s.mu.Lock()
	if !s.closed && s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
	_ = s.Close()
}

// Err returns the error that ended the subscription, if any.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close ends the subscription. Safe to call more than once.
func (s *Subscription) Close() error {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		close(s.done)
		s.mu.Unlock()
		if s.stop != nil {
			s.stop()
		}
	})
	return nil
}
