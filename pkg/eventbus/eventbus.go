// Package eventbus provides an in-process publish/subscribe registry used to
// fan database change events out to realtime subscribers. Topics are
// ephemeral: they exist only while at least one subscriber is attached, and
// nothing is buffered or replayed for absent subscribers.
package eventbus

import (
	"log"
	"sync"
)

// Handler receives every payload published on the subscribed topic.
type Handler func(payload interface{})

// Publisher is the write side of the bus. Components that only emit events
// depend on this so a cross-instance bridge can stand in for the local bus.
type Publisher interface {
	Publish(topic string, payload interface{})
}

// Subscription is the handle returned by Subscribe, used to detach later.
type Subscription struct {
	topic   string
	handler Handler
}

// Bus is a topic-keyed registry of subscribers. Delivery is synchronous and
// FIFO per topic: Publish invokes every handler registered at call time, in
// subscription order, before returning. A Bus must be constructed once at
// startup and injected into the components that need it.
type Bus struct {
	mu     sync.Mutex
	topics map[string][]*Subscription
}

func New() *Bus {
	return &Bus{
		topics: make(map[string][]*Subscription),
	}
}

// Subscribe attaches handler to topic, creating the topic lazily.
func (b *Bus) Subscribe(topic string, handler Handler) *Subscription {
	sub := &Subscription{topic: topic, handler: handler}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.topics[topic] = append(b.topics[topic], sub)
	return sub
}

// Unsubscribe detaches a subscription. The topic entry is removed once its
// last subscriber detaches, so abandoned topics do not accumulate.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.topics[sub.topic]
	for i, s := range subs {
		if s == sub {
			subs = append(subs[:i], subs[i+1:]...)
			break
		}
	}

	if len(subs) == 0 {
		delete(b.topics, sub.topic)
	} else {
		b.topics[sub.topic] = subs
	}
}

// Publish delivers payload to every subscriber of topic. Publishing to a
// topic with no subscribers is a no-op. A panicking handler is logged and
// does not prevent delivery to the remaining subscribers.
func (b *Bus) Publish(topic string, payload interface{}) {
	b.mu.Lock()
	subs := make([]*Subscription, len(b.topics[topic]))
	copy(subs, b.topics[topic])
	b.mu.Unlock()

	for _, sub := range subs {
		invoke(topic, sub.handler, payload)
	}
}

// SubscriberCount reports how many handlers are attached to topic.
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.topics[topic])
}

func invoke(topic string, handler Handler, payload interface{}) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("eventbus: handler panic on topic %s: %v", topic, r)
		}
	}()
	handler(payload)
}
