package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBrokerFansOut(t *testing.T) {
	b := NewBroker(4)
	one, unsubscribeOne := b.Subscribe()
	defer unsubscribeOne()
	two, unsubscribeTwo := b.Subscribe()
	defer unsubscribeTwo()

	assert.Equal(t, 2, b.Subscribers())
	assert.Equal(t, 0, b.Publish(StreamEvent{Stream: "s", Event: Event{Event: StateFull}}))

	expectEvent(t, one, StateFull)
	expectEvent(t, two, StateFull)
}

func TestBrokerDropsForSlowSubscribers(t *testing.T) {
	b := NewBroker(1)
	ch, unsubscribe := b.Subscribe()
	defer unsubscribe()

	assert.Equal(t, 0, b.Publish(StreamEvent{Event: Event{Event: StatePartial}}))
	assert.Equal(t, 1, b.Publish(StreamEvent{Event: Event{Event: StateFull}}))

	expectEvent(t, ch, StatePartial)
	expectNoEvent(t, ch)
}

func TestBrokerUnsubscribeClosesOnce(t *testing.T) {
	b := NewBroker(0)
	ch, unsubscribe := b.Subscribe()
	unsubscribe()
	unsubscribe()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, b.Subscribers())
	assert.Equal(t, 0, b.Publish(StreamEvent{}))
}
