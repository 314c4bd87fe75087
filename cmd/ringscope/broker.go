package main

import (
	"sync"
)

// Broker fans stream events out to every subscriber. Slow subscribers lose
// events rather than stalling the publisher.
type Broker struct {
	mu      sync.RWMutex
	backlog int
	clients map[chan StreamEvent]struct{}
}

func NewBroker(backlog int) *Broker {
	if backlog <= 0 {
		backlog = 8
	}
	return &Broker{
		backlog: backlog,
		clients: make(map[chan StreamEvent]struct{}),
	}
}

func (b *Broker) Subscribe() (ch chan StreamEvent, unsubscribe func()) {
	ch = make(chan StreamEvent, b.backlog)
	b.mu.Lock()
	b.clients[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.clients, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}

func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Publish reports how many subscribers missed msg because their backlog was
// full.
func (b *Broker) Publish(msg StreamEvent) (dropped int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.clients {
		select {
		case ch <- msg:
		default:
			dropped++
		}
	}
	return dropped
}
