// ABOUTME: Store interface and data types for chat-application persistence
// ABOUTME: Defines User, Conversation, Message structs and the Store interface

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicateUser is returned when trying to create a user whose username is taken
var ErrDuplicateUser = errors.New("user already exists")

// User is a directory entry used for display enrichment. The message core
// only reads users; creation happens through the useradd command.
type User struct {
	ID          string
	Username    string
	DisplayName string
	CreatedAt   time.Time
}

// GlobalMessage is a message in the single shared stream visible to all users.
// Immutable once created; the store assigns ID and CreatedAt.
type GlobalMessage struct {
	ID         string
	FromUserID string
	Body       string
	CreatedAt  time.Time

	// From is populated by queries that join against the user directory.
	From *User
}

// Conversation is the unique record for an unordered pair of participants.
// ParticipantLo/ParticipantHi hold the pair in lexicographic order so the
// key is independent of who messaged whom first.
type Conversation struct {
	ID              string
	ParticipantLo   string
	ParticipantHi   string
	LastMessageBody string
	LastActivityAt  time.Time

	// Participants carries joined user records when enrichment was requested.
	Participants []*User
}

// Message is a private message owned by exactly one conversation.
// Immutable once created; the store assigns ID and CreatedAt.
type Message struct {
	ID             string
	ConversationID string
	FromUserID     string
	ToUserID       string
	Body           string
	CreatedAt      time.Time

	// From and To are populated by queries that join against the user directory.
	From *User
	To   *User
}

// Store defines the interface for chat persistence.
//
// Message timestamps are stored as unix milliseconds in INTEGER columns and
// compared numerically; range-query cursors are unix-milli values. Ordering
// ties are broken by id so pagination stays deterministic.
type Store interface {
	// Users (display directory; read-mostly)
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// Global stream
	AppendGlobal(ctx context.Context, fromUserID, body string) (*GlobalMessage, error)
	ListGlobal(ctx context.Context, limit int) ([]*GlobalMessage, error)
	RangeBefore(ctx context.Context, cursor int64, limit int) ([]*GlobalMessage, error)
	RangeAfter(ctx context.Context, cursor int64, limit int) ([]*GlobalMessage, error)

	// Conversations
	UpsertConversation(ctx context.Context, userA, userB, lastBody string, at time.Time) (*Conversation, error)
	ListConversationsForUser(ctx context.Context, userID string) ([]*Conversation, error)

	// Private messages
	AppendMessage(ctx context.Context, conversationID, fromUserID, toUserID, body string) (*Message, error)
	QueryConversation(ctx context.Context, userA, userB string) ([]*Message, error)

	// Close releases any resources held by the store
	Close() error
}

// PairKey returns the canonical ordering of two participant ids.
// The pair {A,B} maps to the same (lo, hi) regardless of argument order.
func PairKey(a, b string) (lo, hi string) {
	if a <= b {
		return a, b
	}
	return b, a
}
