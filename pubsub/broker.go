// Package pubsub implements the in-process publish/subscribe broker that
// backs GraphQL subscriptions.
//
// Topics are plain strings. Publishing fans an event out to the
// subscribers registered at that instant; there is no buffering for
// late joiners, no persistence and no delivery guarantee. A slow
// subscriber whose channel buffer is full misses the event rather than
// blocking the publisher.
package pubsub

import (
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

const defaultBufferSize = 16

// Broker is a registry of live subscriptions per topic.
type Broker struct {
	mu         sync.RWMutex
	topics     map[string]map[*Subscription]struct{}
	bufferSize int

	// Metrics (atomic operations)
	published uint64
	delivered uint64
	dropped   uint64

	// Optional Prometheus counters mirroring published/dropped
	publishedCounter prometheus.Counter
	droppedCounter   prometheus.Counter
}

// Option configures a Broker.
type Option func(*Broker)

// WithBufferSize sets the per-subscription channel buffer. Events
// published while a subscriber's buffer is full are dropped for that
// subscriber only.
func WithBufferSize(n int) Option {
	return func(b *Broker) {
		if n > 0 {
			b.bufferSize = n
		}
	}
}

// WithMetrics mirrors the publish and drop counters into Prometheus
// counters. Either may be nil.
func WithMetrics(published, dropped prometheus.Counter) Option {
	return func(b *Broker) {
		b.publishedCounter = published
		b.droppedCounter = dropped
	}
}

// NewBroker creates an empty broker.
func NewBroker(opts ...Option) *Broker {
	b := &Broker{
		topics:     make(map[string]map[*Subscription]struct{}),
		bufferSize: defaultBufferSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a new subscription on the topic. The returned
// subscription receives every event published to the topic from now
// until Cancel is called.
func (b *Broker) Subscribe(topic string) *Subscription {
	sub := &Subscription{
		topic:  topic,
		broker: b,
		events: make(chan interface{}, b.bufferSize),
	}

	b.mu.Lock()
	subs := b.topics[topic]
	if subs == nil {
		subs = make(map[*Subscription]struct{})
		b.topics[topic] = subs
	}
	subs[sub] = struct{}{}
	b.mu.Unlock()

	return sub
}

// Publish delivers payload to every current subscriber of the topic.
// Fire-and-forget: it never blocks and returns the number of
// subscribers that received the event.
func (b *Broker) Publish(topic string, payload interface{}) int {
	atomic.AddUint64(&b.published, 1)
	if b.publishedCounter != nil {
		b.publishedCounter.Inc()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for sub := range b.topics[topic] {
		select {
		case sub.events <- payload:
			atomic.AddUint64(&b.delivered, 1)
			n++
		default:
			atomic.AddUint64(&b.dropped, 1)
			if b.droppedCounter != nil {
				b.droppedCounter.Inc()
			}
		}
	}
	return n
}

// SubscriberCount reports the number of live subscriptions on a topic.
func (b *Broker) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

// Stats reports lifetime publish/delivery/drop counters.
func (b *Broker) Stats() (published, delivered, dropped uint64) {
	return atomic.LoadUint64(&b.published),
		atomic.LoadUint64(&b.delivered),
		atomic.LoadUint64(&b.dropped)
}

// remove deregisters a subscription. Called from Subscription.Cancel.
func (b *Broker) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.topics[sub.topic]
	if subs == nil {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(b.topics, sub.topic)
	}
}

// Subscription is a live, cancellable event stream for one topic.
// Cancelling one subscription does not affect the topic or its other
// subscribers.
type Subscription struct {
	topic  string
	broker *Broker
	events chan interface{}
	cancel sync.Once
}

// Topic returns the topic this subscription listens on.
func (s *Subscription) Topic() string {
	return s.topic
}

// Events returns the event channel. It is closed by Cancel.
func (s *Subscription) Events() <-chan interface{} {
	return s.events
}

// Cancel deregisters the subscription and closes its event channel.
// Safe to call more than once.
func (s *Subscription) Cancel() {
	s.cancel.Do(func() {
		s.broker.remove(s)
		close(s.events)
	})
}
