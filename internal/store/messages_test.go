package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AppendMessage(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice")
	bob := createTestUser(t, store, "bob")

	conv, err := store.UpsertConversation(ctx, alice.ID, bob.ID, "hi", time.Now().UTC())
	require.NoError(t, err)

	msg, err := store.AppendMessage(ctx, conv.ID, alice.ID, bob.ID, "hi")
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, conv.ID, msg.ConversationID)
	assert.Equal(t, alice.ID, msg.FromUserID)
	assert.Equal(t, bob.ID, msg.ToUserID)
	assert.False(t, msg.CreatedAt.IsZero())
}

func TestStore_QueryConversation_BothDirections(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice")
	bob := createTestUser(t, store, "bob")

	conv, err := store.UpsertConversation(ctx, alice.ID, bob.ID, "hi", time.Now().UTC())
	require.NoError(t, err)

	// Alternate senders; controlled timestamps to fix the order
	base := time.Now().UTC().Truncate(time.Second)
	insertMessageAt(t, store, conv.ID, alice.ID, bob.ID, "one", base)
	insertMessageAt(t, store, conv.ID, bob.ID, alice.ID, "two", base.Add(time.Second))
	insertMessageAt(t, store, conv.ID, alice.ID, bob.ID, "three", base.Add(2*time.Second))

	messages, err := store.QueryConversation(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)

	// Oldest first regardless of direction
	assert.Equal(t, "one", messages[0].Body)
	assert.Equal(t, "two", messages[1].Body)
	assert.Equal(t, "three", messages[2].Body)

	// Sender and recipient joined for display
	require.NotNil(t, messages[1].From)
	require.NotNil(t, messages[1].To)
	assert.Equal(t, "bob", messages[1].From.Username)
	assert.Equal(t, "alice", messages[1].To.Username)
}

func TestStore_QueryConversation_Symmetric(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice")
	bob := createTestUser(t, store, "bob")

	conv, err := store.UpsertConversation(ctx, alice.ID, bob.ID, "hi", time.Now().UTC())
	require.NoError(t, err)

	base := time.Now().UTC().Truncate(time.Second)
	insertMessageAt(t, store, conv.ID, alice.ID, bob.ID, "one", base)
	insertMessageAt(t, store, conv.ID, bob.ID, alice.ID, "two", base.Add(time.Second))

	forward, err := store.QueryConversation(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	reverse, err := store.QueryConversation(ctx, bob.ID, alice.ID)
	require.NoError(t, err)

	require.Equal(t, len(forward), len(reverse))
	for i := range forward {
		assert.Equal(t, forward[i].ID, reverse[i].ID)
	}
}

func TestStore_QueryConversation_NoHistory(t *testing.T) {
	store := setupTestStore(t)

	alice := createTestUser(t, store, "alice")
	bob := createTestUser(t, store, "bob")

	messages, err := store.QueryConversation(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

// insertMessageAt inserts a private message with a controlled timestamp.
func insertMessageAt(t *testing.T, s *SQLiteStore, conversationID, fromUserID, toUserID, body string, at time.Time) {
	t.Helper()
	_, err := s.db.Exec(
		`INSERT INTO messages (id, conversation_id, from_user_id, to_user_id, body, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), conversationID, fromUserID, toUserID, body, at.UnixMilli(),
	)
	require.NoError(t, err)
}
