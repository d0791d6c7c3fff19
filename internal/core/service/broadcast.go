package service

import "sync"

// broadcaster fans a zero-payload change signal out to subscribers.
type broadcaster struct {
	mu        sync.Mutex
	next      int
	listeners map[int]func()
	order     []int
}

func (b *broadcaster) subscribe(fn func()) func() {
	if fn == nil {
		return func() {}
	}

	b.mu.Lock()
	if b.listeners == nil {
		b.listeners = make(map[int]func())
	}
	id := b.next
	b.next++
	b.listeners[id] = fn
	b.order = append(b.order, id)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.listeners, id)
			for i, v := range b.order {
				if v == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
		})
	}
}

// notify calls every listener in subscription order. It must not be called
// with a store lock held.
func (b *broadcaster) notify() {
	b.mu.Lock()
	fns := make([]func(), 0, len(b.order))
	for _, id := range b.order {
		fns = append(fns, b.listeners[id])
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
