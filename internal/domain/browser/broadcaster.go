package browser

import "sync"

// broadcaster fans snapshots out to subscribers. Each subscriber holds at
// most one pending snapshot; a newer one replaces it, so slow consumers skip
// intermediate versions but always see the latest.
type broadcaster struct {
	mu          sync.Mutex
	subscribers map[chan *Snapshot]struct{}
	closed      bool
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subscribers: make(map[chan *Snapshot]struct{})}
}

func (b *broadcaster) subscribe(initial *Snapshot) chan *Snapshot {
	ch := make(chan *Snapshot, 1)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	if initial != nil {
		ch <- initial
	}
	b.subscribers[ch] = struct{}{}
	return ch
}

func (b *broadcaster) unsubscribe(ch chan *Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[ch]; ok {
		delete(b.subscribers, ch)
		close(ch)
	}
}

func (b *broadcaster) publish(s *Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers {
		select {
		case ch <- s:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}

func (b *broadcaster) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

func (b *broadcaster) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers {
		close(ch)
	}
	b.subscribers = make(map[chan *Snapshot]struct{})
	b.closed = true
}
