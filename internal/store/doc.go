// Package store provides persistent storage for the chat server using SQLite.
//
// # Architecture
//
// A single Store interface covers users, the global message stream,
// pairwise conversations, and per-conversation messages. SQLiteStore is the
// only implementation; tests construct it against a throwaway database file.
//
// # Data Models
//
//   - User: Registered identity with username and display name
//   - GlobalMessage: Entry in the single shared global stream
//   - Conversation: Pairwise channel keyed by the canonical (lo, hi) user pair
//   - Message: Private message belonging to exactly one conversation
//
// # Timestamps
//
// Global and private messages store created_at as unix milliseconds in an
// INTEGER column. Range queries (RangeBefore, RangeAfter) compare against
// that value directly and order by (created_at, id) so rows stamped in the
// same millisecond still page deterministically.
//
// # Conversations
//
// UpsertConversation canonicalizes the user pair with PairKey before writing,
// so (A, B) and (B, A) always resolve to the same row. The write is a single
// INSERT ... ON CONFLICT DO UPDATE, making concurrent first-contact from both
// sides converge on one conversation.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// # Error Handling
//
// Common errors:
//
//   - ErrNotFound: Requested entity does not exist
//   - ErrDuplicateUser: Username already taken
//
// All methods accept context.Context for cancellation support.
package store
