// ABOUTME: In-memory fan-out broadcaster for realtime message delivery
// ABOUTME: Publishes persisted messages to topic subscribers (global stream or per-user)

package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TopicGlobal is the topic carrying global stream messages. Private messages
// are published to the participant user IDs as topics, so only the sender's
// and recipient's connections receive them.
const TopicGlobal = "global"

// Event is a realtime notification for a persisted message. Stream is either
// "global" or "private"; ConversationID and To are empty for global events.
type Event struct {
	Stream         string    `json:"stream"`
	MessageID      string    `json:"messageId"`
	ConversationID string    `json:"conversationId,omitempty"`
	From           string    `json:"from"`
	FromUsername   string    `json:"fromUsername,omitempty"`
	To             string    `json:"to,omitempty"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"createdAt"`
}

// subscription tracks one subscriber's channel and the topics it joined.
type subscription struct {
	ch     chan *Event
	topics []string
}

// Broadcaster provides in-memory pub/sub for persisted messages. Subscribers
// register for one or more topics and receive events as messages are saved.
// Delivery is best-effort: it exists for liveness, the store is the source of
// truth and clients recover missed events by querying it.
type Broadcaster struct {
	mu     sync.RWMutex
	topics map[string]map[string]chan *Event // topic -> subID -> ch
	subs   map[string]*subscription          // subID -> subscription
	buffer int
	logger *slog.Logger
}

// NewBroadcaster creates a broadcaster. Pass nil logger for default.
// buffer is the per-subscriber channel depth; values <= 0 get a sane default.
func NewBroadcaster(buffer int, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	if buffer <= 0 {
		buffer = 16
	}
	return &Broadcaster{
		topics: make(map[string]map[string]chan *Event),
		subs:   make(map[string]*subscription),
		buffer: buffer,
		logger: logger.With("component", "broadcaster"),
	}
}

// Subscribe registers a subscriber for events on the given topics. Returns a
// channel that receives events and a subscription ID for later unsubscription.
// The subscription is automatically cleaned up when ctx is cancelled.
func (b *Broadcaster) Subscribe(ctx context.Context, topics ...string) (<-chan *Event, string) {
	subID := uuid.New().String()
	ch := make(chan *Event, b.buffer)

	b.mu.Lock()
	b.subs[subID] = &subscription{ch: ch, topics: topics}
	for _, topic := range topics {
		if _, ok := b.topics[topic]; !ok {
			b.topics[topic] = make(map[string]chan *Event)
		}
		b.topics[topic][subID] = ch
	}
	b.mu.Unlock()

	b.logger.Debug("subscriber added", "sub_id", subID, "topics", topics)

	// Auto-cleanup on context cancellation
	go func() {
		<-ctx.Done()
		b.Unsubscribe(subID)
	}()

	return ch, subID
}

// Publish sends an event to all subscribers of the given topics. A subscriber
// joined to more than one of the topics receives the event once.
// Non-blocking: events are dropped for subscribers whose channels are full.
func (b *Broadcaster) Publish(event *Event, topics ...string) {
	b.mu.RLock()
	// Copy subscriber channels under read lock to avoid holding lock during
	// sends; dedupe by subID so multi-topic subscribers get one copy.
	targets := make(map[string]chan *Event)
	for _, topic := range topics {
		for id, ch := range b.topics[topic] {
			targets[id] = ch
		}
	}
	b.mu.RUnlock()

	for id, ch := range targets {
		select {
		case ch <- event:
			// Sent
		default:
			// Subscriber channel full — drop event for this subscriber
			b.logger.Debug("dropped event for slow subscriber",
				"sub_id", id,
				"message_id", event.MessageID)
		}
	}
}

// Unsubscribe removes a subscription from all its topics and closes its channel.
func (b *Broadcaster) Unsubscribe(subID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subs[subID]
	if !ok {
		return
	}

	for _, topic := range sub.topics {
		subs, ok := b.topics[topic]
		if !ok {
			continue
		}
		delete(subs, subID)
		if len(subs) == 0 {
			delete(b.topics, topic)
		}
	}
	delete(b.subs, subID)
	close(sub.ch)

	b.logger.Debug("subscriber removed", "sub_id", subID)
}

// Close shuts down the broadcaster and closes all subscriber channels.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for subID, sub := range b.subs {
		close(sub.ch)
		delete(b.subs, subID)
	}
	b.topics = make(map[string]map[string]chan *Event)

	b.logger.Debug("broadcaster closed")
}
