// Package eventbus fans values out to in-process subscribers.
package eventbus

import (
	"sync"
	"sync/atomic"
)

// DefaultBuffer is the channel capacity given to each subscriber by New.
const DefaultBuffer = 8

// Bus delivers every published value to all current subscribers. Publish
// never blocks; a subscriber whose buffer is full misses the value and the
// miss is counted in Dropped.
type Bus[T any] struct {
	buffer  int
	dropped atomic.Uint64

	mu     sync.RWMutex
	subs   map[<-chan T]chan T
	closed bool
}

func New[T any]() *Bus[T] { return NewBuffered[T](DefaultBuffer) }

// NewBuffered gives each subscriber a buffer of n values (minimum 1).
func NewBuffered[T any](n int) *Bus[T] {
	if n < 1 {
		n = 1
	}
	return &Bus[T]{buffer: n, subs: map[<-chan T]chan T{}}
}

func (b *Bus[T]) Publish(v T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- v:
		default:
			b.dropped.Add(1)
		}
	}
}

// Subscribe returns a channel receiving every later Publish. On a closed
// bus the channel is already closed.
func (b *Bus[T]) Subscribe() <-chan T {
	ch := make(chan T, b.buffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs[ch] = ch
	return ch
}

// Unsubscribe detaches sub and closes it. Unknown channels are ignored.
func (b *Bus[T]) Unsubscribe(sub <-chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[sub]; ok {
		delete(b.subs, sub)
		close(ch)
	}
}

// Close closes every subscriber channel. Later Publish calls are no-ops.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for k, ch := range b.subs {
		close(ch)
		delete(b.subs, k)
	}
}

// Dropped reports how many deliveries were skipped because a subscriber
// was full.
func (b *Bus[T]) Dropped() uint64 { return b.dropped.Load() }
