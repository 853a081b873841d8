// ABOUTME: Service is the central layer for chat message flow
// ABOUTME: Persist first, then broadcast - the store is the source of truth, delivery is best-effort

package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rajputkuldeep/chat-application/internal/store"
)

// Validation and lookup errors surfaced to the API layer
var (
	ErrEmptyBody    = errors.New("message body is empty")
	ErrSelfMessage  = errors.New("sender and recipient are the same user")
	ErrUserNotFound = errors.New("user not found")
)

// Service coordinates persistence and realtime delivery for both streams.
// Every message is persisted before it is broadcast, so a client that misses
// an event recovers the message by querying history.
type Service struct {
	store       store.Store
	broadcaster *Broadcaster
	pager       *Pager
	logger      *slog.Logger
}

// New creates a chat service.
func New(s store.Store, b *Broadcaster, pageSize int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:       s,
		broadcaster: b,
		pager:       NewPager(s, pageSize),
		logger:      logger.With("component", "chat"),
	}
}

// Pager exposes the service's pagination engine.
func (s *Service) Pager() *Pager {
	return s.pager
}

// Broadcaster exposes the realtime fan-out for transport layers to subscribe.
func (s *Service) Broadcaster() *Broadcaster {
	return s.broadcaster
}

// SendGlobal appends a message to the global stream and notifies all
// connected clients.
func (s *Service) SendGlobal(ctx context.Context, fromUserID, body string) (*store.GlobalMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyBody
	}

	// Record first, then broadcast
	msg, err := s.store.AppendGlobal(ctx, fromUserID, body)
	if err != nil {
		return nil, fmt.Errorf("recording global message: %w", err)
	}

	s.broadcaster.Publish(&Event{
		Stream:    "global",
		MessageID: msg.ID,
		From:      msg.FromUserID,
		Body:      msg.Body,
		CreatedAt: msg.CreatedAt,
	}, TopicGlobal)

	s.logger.Debug("global message sent", "message_id", msg.ID, "from", fromUserID)
	return msg, nil
}

// GlobalHistory returns the global stream oldest-first, capped at the store's
// dump limit. Clients wanting older history page for it.
func (s *Service) GlobalHistory(ctx context.Context) ([]*store.GlobalMessage, error) {
	return s.store.ListGlobal(ctx, 1000)
}

// PageOlder returns one page of global history at or before the cursor.
func (s *Service) PageOlder(ctx context.Context, cursor int64) ([]*store.GlobalMessage, int64, error) {
	return s.pager.PageOlder(ctx, cursor)
}

// PageNewer returns the newest page of global history at or after the cursor.
func (s *Service) PageNewer(ctx context.Context, cursor int64) ([]*store.GlobalMessage, error) {
	return s.pager.PageNewer(ctx, cursor)
}

// NextCursor probes where pagination from the given cursor would continue.
func (s *Service) NextCursor(ctx context.Context, cursor int64) (int64, error) {
	return s.pager.NextCursor(ctx, cursor)
}

// SendPrivate delivers a private message from one user to another. The
// conversation for the pair is found or created atomically, stamped with the
// message as its latest activity, and the message is appended to it. Only the
// two participants are notified.
func (s *Service) SendPrivate(ctx context.Context, fromUserID, toUserID, body string) (*store.Message, *store.Conversation, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, nil, ErrEmptyBody
	}
	if fromUserID == toUserID {
		return nil, nil, ErrSelfMessage
	}

	// The sender comes from a verified token; the recipient is caller input
	// and must exist before we create any rows for the pair.
	if _, err := s.store.GetUser(ctx, toUserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("resolving recipient: %w", err)
	}

	conv, err := s.store.UpsertConversation(ctx, fromUserID, toUserID, body, time.Now().UTC())
	if err != nil {
		return nil, nil, fmt.Errorf("resolving conversation: %w", err)
	}

	msg, err := s.store.AppendMessage(ctx, conv.ID, fromUserID, toUserID, body)
	if err != nil {
		return nil, nil, fmt.Errorf("recording message: %w", err)
	}

	// Targeted delivery: publish to both participants' topics only
	s.broadcaster.Publish(&Event{
		Stream:         "private",
		MessageID:      msg.ID,
		ConversationID: conv.ID,
		From:           msg.FromUserID,
		To:             msg.ToUserID,
		Body:           msg.Body,
		CreatedAt:      msg.CreatedAt,
	}, fromUserID, toUserID)

	s.logger.Debug("private message sent",
		"message_id", msg.ID,
		"conversation_id", conv.ID,
		"from", fromUserID,
		"to", toUserID,
	)
	return msg, conv, nil
}

// Conversations lists the caller's conversations, newest activity first.
func (s *Service) Conversations(ctx context.Context, userID string) ([]*store.Conversation, error) {
	return s.store.ListConversationsForUser(ctx, userID)
}

// ConversationHistory returns all messages between the caller and the other
// user, oldest first. The result is the same whichever participant asks.
func (s *Service) ConversationHistory(ctx context.Context, userID, otherUserID string) ([]*store.Message, error) {
	if otherUserID == "" {
		return nil, ErrUserNotFound
	}
	return s.store.QueryConversation(ctx, userID, otherUserID)
}
