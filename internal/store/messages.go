// ABOUTME: Append-only message log for the global stream and per-conversation streams
// ABOUTME: Range queries run newest-first over the unix-milli created_at column

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AppendGlobal appends a message to the global stream. The store assigns the
// id and the creation timestamp; client-supplied time is never trusted.
func (s *SQLiteStore) AppendGlobal(ctx context.Context, fromUserID, body string) (*GlobalMessage, error) {
	msg := &GlobalMessage{
		ID:         uuid.New().String(),
		FromUserID: fromUserID,
		Body:       body,
		CreatedAt:  time.Now().UTC().Truncate(time.Millisecond),
	}

	query := `
		INSERT INTO global_messages (id, from_user_id, body, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		msg.ID,
		msg.FromUserID,
		msg.Body,
		msg.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting global message: %w", err)
	}

	s.logger.Debug("appended global message", "id", msg.ID, "from", msg.FromUserID)
	return msg, nil
}

// ListGlobal retrieves the full global stream oldest-first, joined with
// sender display data. Capped at 1000 rows; paginated reads should use
// RangeBefore/RangeAfter instead.
func (s *SQLiteStore) ListGlobal(ctx context.Context, limit int) ([]*GlobalMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}

	query := `
		SELECT m.id, m.from_user_id, m.body, m.created_at,
		       u.id, u.username, u.display_name
		FROM global_messages m
		JOIN users u ON u.id = m.from_user_id
		ORDER BY m.created_at ASC, m.id ASC
		LIMIT ?
	`

	return s.queryGlobalMessages(ctx, query, limit)
}

// RangeBefore retrieves up to limit global messages with created_at <= cursor,
// newest first. The pagination engine fetches one row beyond its page size
// here to learn the next cursor.
func (s *SQLiteStore) RangeBefore(ctx context.Context, cursor int64, limit int) ([]*GlobalMessage, error) {
	query := `
		SELECT m.id, m.from_user_id, m.body, m.created_at,
		       u.id, u.username, u.display_name
		FROM global_messages m
		JOIN users u ON u.id = m.from_user_id
		WHERE m.created_at <= ?
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT ?
	`

	return s.queryGlobalMessages(ctx, query, cursor, limit)
}

// RangeAfter retrieves up to limit global messages with created_at >= cursor,
// newest first.
func (s *SQLiteStore) RangeAfter(ctx context.Context, cursor int64, limit int) ([]*GlobalMessage, error) {
	query := `
		SELECT m.id, m.from_user_id, m.body, m.created_at,
		       u.id, u.username, u.display_name
		FROM global_messages m
		JOIN users u ON u.id = m.from_user_id
		WHERE m.created_at >= ?
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT ?
	`

	return s.queryGlobalMessages(ctx, query, cursor, limit)
}

// queryGlobalMessages is a helper that executes a query and scans global messages
func (s *SQLiteStore) queryGlobalMessages(ctx context.Context, query string, args ...any) ([]*GlobalMessage, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying global messages: %w", err)
	}
	defer rows.Close()

	var messages []*GlobalMessage
	for rows.Next() {
		var msg GlobalMessage
		var from User
		var createdMilli int64

		if err := rows.Scan(
			&msg.ID,
			&msg.FromUserID,
			&msg.Body,
			&createdMilli,
			&from.ID, &from.Username, &from.DisplayName,
		); err != nil {
			return nil, fmt.Errorf("scanning global message row: %w", err)
		}

		msg.CreatedAt = time.UnixMilli(createdMilli).UTC()
		msg.From = &from
		messages = append(messages, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating global message rows: %w", err)
	}

	return messages, nil
}

// AppendMessage appends a private message to its conversation's stream.
// The store assigns the id and the creation timestamp.
func (s *SQLiteStore) AppendMessage(ctx context.Context, conversationID, fromUserID, toUserID, body string) (*Message, error) {
	msg := &Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		FromUserID:     fromUserID,
		ToUserID:       toUserID,
		Body:           body,
		CreatedAt:      time.Now().UTC().Truncate(time.Millisecond),
	}

	query := `
		INSERT INTO messages (id, conversation_id, from_user_id, to_user_id, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		msg.ID,
		msg.ConversationID,
		msg.FromUserID,
		msg.ToUserID,
		msg.Body,
		msg.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting message: %w", err)
	}

	s.logger.Debug("appended message",
		"id", msg.ID,
		"conversation_id", msg.ConversationID,
		"from", msg.FromUserID,
		"to", msg.ToUserID,
	)
	return msg, nil
}

// QueryConversation retrieves all messages exchanged between the two users in
// either direction, oldest first, joined with sender and recipient display
// data. The result is identical for (A,B) and (B,A).
func (s *SQLiteStore) QueryConversation(ctx context.Context, userA, userB string) ([]*Message, error) {
	query := `
		SELECT m.id, m.conversation_id, m.from_user_id, m.to_user_id, m.body, m.created_at,
		       f.id, f.username, f.display_name,
		       t.id, t.username, t.display_name
		FROM messages m
		JOIN users f ON f.id = m.from_user_id
		JOIN users t ON t.id = m.to_user_id
		WHERE (m.from_user_id = ? AND m.to_user_id = ?)
		   OR (m.from_user_id = ? AND m.to_user_id = ?)
		ORDER BY m.created_at ASC, m.id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userA, userB, userB, userA)
	if err != nil {
		return nil, fmt.Errorf("querying conversation messages: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		var msg Message
		var from, to User
		var createdMilli int64

		if err := rows.Scan(
			&msg.ID,
			&msg.ConversationID,
			&msg.FromUserID,
			&msg.ToUserID,
			&msg.Body,
			&createdMilli,
			&from.ID, &from.Username, &from.DisplayName,
			&to.ID, &to.Username, &to.DisplayName,
		); err != nil {
			return nil, fmt.Errorf("scanning message row: %w", err)
		}

		msg.CreatedAt = time.UnixMilli(createdMilli).UTC()
		msg.From = &from
		msg.To = &to
		messages = append(messages, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating message rows: %w", err)
	}

	return messages, nil
}
