// Package bus is the in-process fan-out for job lifecycle events. One Bus
// instance is injected into the use cases; live-stream handlers subscribe
// per job id. Delivery is synchronous and best-effort: no buffering, and
// publishing with zero subscribers is a no-op.
package bus

import "sync"

// Event is one job lifecycle or progress notification. Payload must be
// JSON-serializable; it is written verbatim to SSE data frames.
type Event struct {
	Type    string
	Payload map[string]any
}

type listener struct {
	id int
	fn func(Event)
}

type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string][]listener // job id -> subscribers
}

func New() *Bus {
	return &Bus{subs: make(map[string][]listener)}
}

// Publish delivers ev to every current subscriber for jobID, in subscribe
// order, on the caller's goroutine.
func (b *Bus) Publish(jobID string, ev Event) {
	b.mu.RLock()
	ls := make([]listener, len(b.subs[jobID]))
	copy(ls, b.subs[jobID])
	b.mu.RUnlock()

	for _, l := range ls {
		l.fn(ev)
	}
}

// Subscribe registers fn for jobID and returns its cancel function. Cancel
// is idempotent.
func (b *Bus) Subscribe(jobID string, fn func(Event)) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[jobID] = append(b.subs[jobID], listener{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			ls := b.subs[jobID]
			for i, l := range ls {
				if l.id == id {
					b.subs[jobID] = append(ls[:i:i], ls[i+1:]...)
					break
				}
			}
			if len(b.subs[jobID]) == 0 {
				delete(b.subs, jobID)
			}
		})
	}
}

// SubscriberCount reports current listeners for a job id.
func (b *Bus) SubscriberCount(jobID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[jobID])
}
