package session

import "sync"

type subscriber[T any] struct {
	id int
	fn func(T)
}

// observers fans a state snapshot out to subscribers in subscription order.
type observers[T any] struct {
	mu   sync.Mutex
	next int
	subs []subscriber[T]
}

func (o *observers[T]) subscribe(fn func(T)) (cancel func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := o.next
	o.next++
	o.subs = append(o.subs, subscriber[T]{id: id, fn: fn})

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		for i, s := range o.subs {
			if s.id == id {
				o.subs = append(o.subs[:i:i], o.subs[i+1:]...)
				return
			}
		}
	}
}

// notify must be called without holding the owning store's lock.
func (o *observers[T]) notify(state T) {
	o.mu.Lock()
	subs := make([]subscriber[T], len(o.subs))
	copy(subs, o.subs)
	o.mu.Unlock()

	for _, s := range subs {
		s.fn(state)
	}
}
