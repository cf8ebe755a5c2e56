// Package signal is the in-process channel between the quiz orchestrator
// and listeners such as the history refresher. Event payloads carry the
// minimal identity needed to re-query; subscribers fetch current truth
// instead of trusting a broadcast snapshot.
package signal

import "sync"

// QuizCompleted announces that a session finalized successfully.
type QuizCompleted struct {
	SessionID string
}

// Bus fans QuizCompleted events out to subscribers. Callbacks run on the
// publisher's goroutine and must hand off promptly.
type Bus struct {
	mu   sync.RWMutex
	next int
	subs map[int]func(QuizCompleted)
}

func NewBus() *Bus {
	return &Bus{subs: map[int]func(QuizCompleted){}}
}

// Subscribe registers fn and returns its unsubscribe function.
func (b *Bus) Subscribe(fn func(QuizCompleted)) func() {
	if fn == nil {
		return func() {}
	}
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Publish delivers evt to a snapshot of the current subscribers.
func (b *Bus) Publish(evt QuizCompleted) {
	b.mu.RLock()
	fns := make([]func(QuizCompleted), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(evt)
	}
}
