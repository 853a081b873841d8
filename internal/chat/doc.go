// Package chat implements the message core: the global stream, pairwise
// private conversations, cursor pagination, and realtime fan-out.
//
// # Message Flow
//
// All sends follow the same shape: validate, persist, then broadcast. The
// store is the source of truth; the broadcaster exists only for liveness.
// A client that misses an event (full buffer, reconnect) recovers the
// message by querying history, so dropped events never lose data.
//
// # Pagination
//
// Pager walks the global stream backwards in fixed-size pages keyed by
// unix-milli cursors. Each page query fetches one row beyond the page size;
// a full probe proves older history exists and yields the next cursor.
// Cursors are inclusive, so the probe row reappears as the newest entry of
// the following page rather than being skipped.
//
// # Realtime Delivery
//
// Broadcaster is topic-keyed in-memory pub/sub. Global messages go to the
// "global" topic every connection joins; private messages go to the two
// participant user-ID topics, so non-participants never see them. Sends are
// non-blocking: a subscriber that falls behind its buffer has events dropped
// rather than stalling the sender.
package chat
