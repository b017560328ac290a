package pubsub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	b := NewBroker()

	sub1 := b.Subscribe("posts")
	sub2 := b.Subscribe("posts")
	other := b.Subscribe("comments")

	n := b.Publish("posts", "hello")
	assert.Equal(t, 2, n)

	assert.Equal(t, "hello", <-sub1.Events())
	assert.Equal(t, "hello", <-sub2.Events())

	select {
	case e := <-other.Events():
		t.Fatalf("unexpected event on comments topic: %v", e)
	default:
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	b := NewBroker()
	assert.Equal(t, 0, b.Publish("posts", "nobody home"))

	published, delivered, dropped := b.Stats()
	assert.Equal(t, uint64(1), published)
	assert.Equal(t, uint64(0), delivered)
	assert.Equal(t, uint64(0), dropped)
}

func TestCancelStopsDelivery(t *testing.T) {
	b := NewBroker()

	sub := b.Subscribe("posts")
	require.Equal(t, 1, b.SubscriberCount("posts"))

	sub.Cancel()
	assert.Equal(t, 0, b.SubscriberCount("posts"))
	assert.Equal(t, 0, b.Publish("posts", "late"))

	// Channel is closed after Cancel
	_, open := <-sub.Events()
	assert.False(t, open)

	// Cancel is idempotent
	sub.Cancel()
}

func TestSlowSubscriberDropsEvents(t *testing.T) {
	b := NewBroker(WithBufferSize(1))

	sub := b.Subscribe("posts")
	assert.Equal(t, 1, b.Publish("posts", "first"))
	assert.Equal(t, 0, b.Publish("posts", "second")) // buffer full, dropped

	_, _, dropped := b.Stats()
	assert.Equal(t, uint64(1), dropped)

	assert.Equal(t, "first", <-sub.Events())
	select {
	case e := <-sub.Events():
		t.Fatalf("expected dropped event, got %v", e)
	default:
	}
}

func TestIndependentTopics(t *testing.T) {
	b := NewBroker()

	a := b.Subscribe("comment.1")
	c := b.Subscribe("comment.2")

	b.Publish("comment.1", "on post 1")

	assert.Equal(t, "on post 1", <-a.Events())
	select {
	case e := <-c.Events():
		t.Fatalf("event leaked across topics: %v", e)
	default:
	}
}
