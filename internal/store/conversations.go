// ABOUTME: Conversation directory keyed by the canonical unordered participant pair
// ABOUTME: Find-or-create is a single atomic upsert so concurrent first contacts never fork

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UpsertConversation finds or creates the conversation for the unordered pair
// {userA, userB} and stamps it with the triggering message's body and time.
//
// The write is a single INSERT ... ON CONFLICT DO UPDATE keyed on the
// canonical (participant_lo, participant_hi) pair, so concurrent first-contact
// sends between the same two users serialize inside SQLite and at most one
// conversation row ever exists per pair.
func (s *SQLiteStore) UpsertConversation(ctx context.Context, userA, userB, lastBody string, at time.Time) (*Conversation, error) {
	lo, hi := PairKey(userA, userB)

	query := `
		INSERT INTO conversations (id, participant_lo, participant_hi, last_message_body, last_activity_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(participant_lo, participant_hi) DO UPDATE SET
			last_message_body = excluded.last_message_body,
			last_activity_at  = excluded.last_activity_at
	`

	_, err := s.db.ExecContext(ctx, query,
		uuid.New().String(),
		lo,
		hi,
		lastBody,
		at.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("upserting conversation: %w", err)
	}

	conv, err := s.getConversationByPair(ctx, lo, hi)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("upserted conversation",
		"conversation_id", conv.ID,
		"participant_lo", lo,
		"participant_hi", hi,
	)
	return conv, nil
}

// getConversationByPair retrieves a conversation by its canonical pair key.
func (s *SQLiteStore) getConversationByPair(ctx context.Context, lo, hi string) (*Conversation, error) {
	query := `
		SELECT id, participant_lo, participant_hi, last_message_body, last_activity_at
		FROM conversations
		WHERE participant_lo = ? AND participant_hi = ?
	`

	var conv Conversation
	var activityMilli int64

	err := s.db.QueryRowContext(ctx, query, lo, hi).Scan(
		&conv.ID,
		&conv.ParticipantLo,
		&conv.ParticipantHi,
		&conv.LastMessageBody,
		&activityMilli,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying conversation: %w", err)
	}

	conv.LastActivityAt = time.UnixMilli(activityMilli).UTC()
	return &conv, nil
}

// ListConversationsForUser retrieves every conversation the user participates
// in, newest activity first, with both participants joined from the user
// directory for display.
func (s *SQLiteStore) ListConversationsForUser(ctx context.Context, userID string) ([]*Conversation, error) {
	query := `
		SELECT c.id, c.participant_lo, c.participant_hi, c.last_message_body, c.last_activity_at,
		       lo.id, lo.username, lo.display_name,
		       hi.id, hi.username, hi.display_name
		FROM conversations c
		JOIN users lo ON lo.id = c.participant_lo
		JOIN users hi ON hi.id = c.participant_hi
		WHERE c.participant_lo = ? OR c.participant_hi = ?
		ORDER BY c.last_activity_at DESC, c.id DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("querying conversations: %w", err)
	}
	defer rows.Close()

	var conversations []*Conversation
	for rows.Next() {
		var conv Conversation
		var activityMilli int64
		var lo, hi User

		if err := rows.Scan(
			&conv.ID,
			&conv.ParticipantLo,
			&conv.ParticipantHi,
			&conv.LastMessageBody,
			&activityMilli,
			&lo.ID, &lo.Username, &lo.DisplayName,
			&hi.ID, &hi.Username, &hi.DisplayName,
		); err != nil {
			return nil, fmt.Errorf("scanning conversation row: %w", err)
		}

		conv.LastActivityAt = time.UnixMilli(activityMilli).UTC()
		conv.Participants = []*User{&lo, &hi}
		conversations = append(conversations, &conv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating conversation rows: %w", err)
	}

	return conversations, nil
}
