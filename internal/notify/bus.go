// Package notify provides a synchronous publish/subscribe bus.
package notify

import "sync"

// Bus delivers values to subscribers synchronously, in subscription order.
// The zero value is ready to use.
//
// Each Notify works on the subscriber list as it was when the call started:
// subscribing or unsubscribing from inside a callback takes effect on the
// next Notify. Panics raised by a callback are not recovered, so later
// subscribers of that pass are skipped.
type Bus[T any] struct {
	mu   sync.Mutex
	next uint64
	subs []subscription[T]
}

type subscription[T any] struct {
	id uint64
	fn func(T)
}

// Subscribe registers fn and returns a handle that removes exactly this
// registration. Calling the handle more than once is safe.
func (b *Bus[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs = append(b.subs, subscription[T]{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus[T]) Notify(v T) {
	b.mu.Lock()
	subs := make([]subscription[T], len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, s := range subs {
		s.fn(v)
	}
}

func (b *Bus[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Bus[T]) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}
