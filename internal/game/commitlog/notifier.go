package commitlog

import "sync"

// Notifier fans notifications out to channel subscribers in publish
// order. Each subscriber drains from its own goroutine, so a slow
// consumer delays only itself.
type Notifier struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]*subscriber
}

// NewNotifier returns an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[string]map[int]*subscriber)}
}

// Subscription is one subscriber's ordered view of a channel's
// notifications. Stop releases it; C is closed afterwards.
type Subscription struct {
	C    <-chan Notification
	stop func()
}

// Stop unsubscribes. Safe to call more than once.
func (s *Subscription) Stop() {
	if s != nil && s.stop != nil {
		s.stop()
	}
}

type subscriber struct {
	mu      sync.Mutex
	pending []Notification
	wake    chan struct{}
	done    chan struct{}
	out     chan Notification
}

// Subscribe registers a new subscriber on the channel.
func (n *Notifier) Subscribe(channel string) *Subscription {
	sub := &subscriber{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
		out:  make(chan Notification),
	}

	n.mu.Lock()
	key := n.next
	n.next++
	if n.subs[channel] == nil {
		n.subs[channel] = make(map[int]*subscriber)
	}
	n.subs[channel][key] = sub
	n.mu.Unlock()

	go sub.run()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs[channel], key)
			n.mu.Unlock()
			close(sub.done)
		})
	}
	return &Subscription{C: sub.out, stop: stop}
}

// Publish delivers the notification to every subscriber of the channel.
// Delivery order matches publish order per subscriber.
func (n *Notifier) Publish(channel string, note Notification) {
	n.mu.Lock()
	targets := make([]*subscriber, 0, len(n.subs[channel]))
	for _, sub := range n.subs[channel] {
		targets = append(targets, sub)
	}
	n.mu.Unlock()

	for _, sub := range targets {
		sub.enqueue(note)
	}
}

func (s *subscriber) enqueue(note Notification) {
	s.mu.Lock()
	s.pending = append(s.pending, note)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscriber) run() {
	defer close(s.out)
	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}

		for {
			s.mu.Lock()
			if len(s.pending) == 0 {
				s.mu.Unlock()
				break
			}
			note := s.pending[0]
			s.pending = s.pending[1:]
			s.mu.Unlock()

			select {
			case s.out <- note:
			case <-s.done:
				return
			}
		}
	}
}
