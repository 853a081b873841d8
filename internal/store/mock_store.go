// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite, with a deterministic clock

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockStore is an in-memory Store implementation for testing. Appends are
// stamped from an internal clock that advances one second per message, so
// pagination tests get distinct, deterministic timestamps.
type MockStore struct {
	mu            sync.RWMutex
	users         map[string]*User         // keyed by user ID
	usersByName   map[string]string        // username -> user ID
	global        []*GlobalMessage         // append order
	conversations map[string]*Conversation // keyed by "lo:hi"
	messages      map[string][]*Message    // keyed by conversation ID
	now           time.Time
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		users:         make(map[string]*User),
		usersByName:   make(map[string]string),
		conversations: make(map[string]*Conversation),
		messages:      make(map[string][]*Message),
		now:           time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick advances the mock clock and returns the new time. Callers hold mu.
func (m *MockStore) tick() time.Time {
	m.now = m.now.Add(time.Second)
	return m.now
}

// Now returns the mock clock's current time.
func (m *MockStore) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

// CreateUser stores a new user.
func (m *MockStore) CreateUser(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.usersByName[user.Username]; ok {
		return ErrDuplicateUser
	}

	// Copy to avoid external modification
	u := *user
	m.users[u.ID] = &u
	m.usersByName[u.Username] = u.ID
	return nil
}

// GetUser retrieves a user by ID.
func (m *MockStore) GetUser(_ context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *u
	return &copied, nil
}

// GetUserByUsername retrieves a user by username.
func (m *MockStore) GetUserByUsername(_ context.Context, username string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.usersByName[username]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *m.users[id]
	return &copied, nil
}

// AppendGlobal appends a message to the global stream.
func (m *MockStore) AppendGlobal(_ context.Context, fromUserID, body string) (*GlobalMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg := &GlobalMessage{
		ID:         uuid.New().String(),
		FromUserID: fromUserID,
		Body:       body,
		CreatedAt:  m.tick(),
	}
	msg.From = m.users[fromUserID]
	m.global = append(m.global, msg)

	copied := *msg
	return &copied, nil
}

// ListGlobal retrieves the global stream oldest-first.
func (m *MockStore) ListGlobal(_ context.Context, limit int) ([]*GlobalMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	msgs := m.sortedGlobal(false)
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

// RangeBefore retrieves up to limit messages with created_at <= cursor, newest first.
func (m *MockStore) RangeBefore(_ context.Context, cursor int64, limit int) ([]*GlobalMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*GlobalMessage
	for _, msg := range m.sortedGlobal(true) {
		if msg.CreatedAt.UnixMilli() <= cursor {
			out = append(out, msg)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// RangeAfter retrieves up to limit messages with created_at >= cursor, newest first.
func (m *MockStore) RangeAfter(_ context.Context, cursor int64, limit int) ([]*GlobalMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*GlobalMessage
	for _, msg := range m.sortedGlobal(true) {
		if msg.CreatedAt.UnixMilli() >= cursor {
			out = append(out, msg)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// sortedGlobal returns copies of the global stream sorted by (created_at, id).
// Callers hold mu.
func (m *MockStore) sortedGlobal(newestFirst bool) []*GlobalMessage {
	out := make([]*GlobalMessage, 0, len(m.global))
	for _, msg := range m.global {
		copied := *msg
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			if newestFirst {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		if newestFirst {
			return out[i].ID > out[j].ID
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// UpsertConversation finds or creates the conversation for the pair.
func (m *MockStore) UpsertConversation(_ context.Context, userA, userB, lastBody string, at time.Time) (*Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lo, hi := PairKey(userA, userB)
	key := lo + ":" + hi

	conv, ok := m.conversations[key]
	if !ok {
		conv = &Conversation{
			ID:            uuid.New().String(),
			ParticipantLo: lo,
			ParticipantHi: hi,
		}
		m.conversations[key] = conv
	}
	conv.LastMessageBody = lastBody
	conv.LastActivityAt = at

	copied := *conv
	copied.Participants = []*User{m.users[lo], m.users[hi]}
	return &copied, nil
}

// ListConversationsForUser lists conversations with the user, newest activity first.
func (m *MockStore) ListConversationsForUser(_ context.Context, userID string) ([]*Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Conversation
	for _, conv := range m.conversations {
		if conv.ParticipantLo != userID && conv.ParticipantHi != userID {
			continue
		}
		copied := *conv
		copied.Participants = []*User{m.users[conv.ParticipantLo], m.users[conv.ParticipantHi]}
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastActivityAt.Equal(out[j].LastActivityAt) {
			return out[i].LastActivityAt.After(out[j].LastActivityAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// AppendMessage appends a private message to a conversation.
func (m *MockStore) AppendMessage(_ context.Context, conversationID, fromUserID, toUserID, body string) (*Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg := &Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		FromUserID:     fromUserID,
		ToUserID:       toUserID,
		Body:           body,
		CreatedAt:      m.tick(),
	}
	msg.From = m.users[fromUserID]
	msg.To = m.users[toUserID]
	m.messages[conversationID] = append(m.messages[conversationID], msg)

	copied := *msg
	return &copied, nil
}

// QueryConversation retrieves all messages between the two users, oldest first.
func (m *MockStore) QueryConversation(_ context.Context, userA, userB string) ([]*Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lo, hi := PairKey(userA, userB)
	conv, ok := m.conversations[lo+":"+hi]
	if !ok {
		return nil, nil
	}

	msgs := m.messages[conv.ID]
	out := make([]*Message, 0, len(msgs))
	for _, msg := range msgs {
		copied := *msg
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Close is a no-op for the mock.
func (m *MockStore) Close() error {
	return nil
}

// Ensure MockStore implements Store interface
var _ Store = (*MockStore)(nil)
