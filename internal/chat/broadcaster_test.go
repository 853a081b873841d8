// ABOUTME: Tests for the fan-out pub/sub broadcaster
// ABOUTME: Covers subscribe, publish, topic isolation, dedupe, cancellation, concurrency

package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeEvent(id string) *Event {
	return &Event{
		Stream:    "global",
		MessageID: id,
		From:      "user-1",
		Body:      "hello from " + id,
		CreatedAt: time.Now(),
	}
}

func TestBroadcaster_SingleSubscriberReceivesEvent(t *testing.T) {
	b := NewBroadcaster(0, nil)
	defer b.Close()

	ctx := t.Context()

	ch, _ := b.Subscribe(ctx, TopicGlobal)

	b.Publish(makeEvent("msg-1"), TopicGlobal)

	select {
	case received := <-ch:
		assert.Equal(t, "msg-1", received.MessageID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestBroadcaster_MultipleSubscribersReceiveSameEvent(t *testing.T) {
	b := NewBroadcaster(0, nil)
	defer b.Close()

	ctx := t.Context()

	ch1, _ := b.Subscribe(ctx, TopicGlobal)
	ch2, _ := b.Subscribe(ctx, TopicGlobal)
	ch3, _ := b.Subscribe(ctx, TopicGlobal)

	b.Publish(makeEvent("msg-2"), TopicGlobal)

	for i, ch := range []<-chan *Event{ch1, ch2, ch3} {
		select {
		case received := <-ch:
			assert.Equal(t, "msg-2", received.MessageID, "subscriber %d got wrong event", i)
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d timed out", i)
		}
	}
}

func TestBroadcaster_TopicsAreIsolated(t *testing.T) {
	b := NewBroadcaster(0, nil)
	defer b.Close()

	ctx := t.Context()

	chAlice, _ := b.Subscribe(ctx, "user-alice")
	chBob, _ := b.Subscribe(ctx, "user-bob")

	b.Publish(makeEvent("msg-3"), "user-alice")

	select {
	case received := <-chAlice:
		assert.Equal(t, "msg-3", received.MessageID)
	case <-time.After(time.Second):
		t.Fatal("subscriber for user-alice timed out")
	}

	// chBob should NOT receive anything
	select {
	case <-chBob:
		t.Fatal("subscriber for user-bob should not receive alice's events")
	case <-time.After(100 * time.Millisecond):
		// Expected: no event
	}
}

func TestBroadcaster_MultiTopicSubscriberReceivesOnce(t *testing.T) {
	b := NewBroadcaster(0, nil)
	defer b.Close()

	ctx := t.Context()

	// Subscribed to both participants of a private message
	ch, _ := b.Subscribe(ctx, "user-alice", "user-bob")

	b.Publish(makeEvent("msg-4"), "user-alice", "user-bob")

	select {
	case received := <-ch:
		assert.Equal(t, "msg-4", received.MessageID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}

	// No duplicate delivery
	select {
	case dup := <-ch:
		t.Fatalf("received duplicate event %s", dup.MessageID)
	case <-time.After(100 * time.Millisecond):
		// Expected: exactly one copy
	}
}

func TestBroadcaster_UnsubscribeRemovesAllTopics(t *testing.T) {
	b := NewBroadcaster(0, nil)
	defer b.Close()

	ctx := t.Context()

	ch, subID := b.Subscribe(ctx, TopicGlobal, "user-alice")
	b.Unsubscribe(subID)

	// Channel is closed after unsubscribe
	_, open := <-ch
	assert.False(t, open, "channel should be closed")

	// Publishing to either topic must not panic
	b.Publish(makeEvent("msg-5"), TopicGlobal)
	b.Publish(makeEvent("msg-6"), "user-alice")
}

func TestBroadcaster_ContextCancellationCleansUp(t *testing.T) {
	b := NewBroadcaster(0, nil)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, _ := b.Subscribe(ctx, TopicGlobal)

	cancel()

	// The cleanup goroutine closes the channel
	require.Eventually(t, func() bool {
		select {
		case _, open := <-ch:
			return !open
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond, "channel should close after context cancellation")
}

func TestBroadcaster_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	b := NewBroadcaster(2, nil)
	defer b.Close()

	ctx := t.Context()

	ch, _ := b.Subscribe(ctx, TopicGlobal)
	_ = ch // never drained

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			b.Publish(makeEvent("flood"), TopicGlobal)
		}
		close(done)
	}()

	select {
	case <-done:
		// Publish dropped events instead of blocking
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestBroadcaster_ConcurrentSubscribePublish(t *testing.T) {
	b := NewBroadcaster(64, nil)
	defer b.Close()

	ctx := t.Context()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ch, subID := b.Subscribe(ctx, TopicGlobal)
			_ = ch
			b.Unsubscribe(subID)
		}()
		go func() {
			defer wg.Done()
			b.Publish(makeEvent("concurrent"), TopicGlobal)
		}()
	}
	wg.Wait()
}
