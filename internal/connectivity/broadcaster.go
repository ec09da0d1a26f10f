package connectivity

import (
	"slices"
	"sync"
)

// broadcaster keeps subscriptions for providers.
type broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(bool)
}

func (b *broadcaster) subscribe(fn func(bool)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs == nil {
		b.subs = make(map[int]func(bool))
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// publish calls every subscriber in registration order, outside the lock.
func (b *broadcaster) publish(online bool) {
	b.mu.Lock()
	ids := make([]int, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	fns := make([]func(bool), 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, b.subs[id])
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(online)
	}
}
