// ABOUTME: Cursor pagination over the global message stream
// ABOUTME: Probes one row beyond the page to learn the next cursor

package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/rajputkuldeep/chat-application/internal/store"
)

// Pager walks the global stream backwards in fixed-size pages. Cursors are
// unix-milli timestamps; a cursor of 0 anchors the first page at the present.
type Pager struct {
	store    store.Store
	pageSize int
}

// NewPager creates a pager reading pageSize messages per page.
func NewPager(s store.Store, pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Pager{store: s, pageSize: pageSize}
}

// PageSize returns the configured page size.
func (p *Pager) PageSize() int {
	return p.pageSize
}

// normalizeCursor maps the zero cursor to "now" so the first page starts at
// the newest message.
func (p *Pager) normalizeCursor(cursor int64) int64 {
	if cursor <= 0 {
		return time.Now().UTC().UnixMilli()
	}
	return cursor
}

// PageOlder returns one page of messages at or before the cursor, ordered
// oldest to newest, plus the cursor for the next older page.
//
// The query fetches pageSize+1 rows newest-first: a full probe means older
// history exists, and the extra row's timestamp becomes the next cursor. The
// extra row is dropped from the page, so it reappears as the first (newest)
// entry of the following page. When the probe comes back short, the next
// cursor points just past the oldest returned row, so reusing it yields an
// empty page. A zero next cursor only accompanies an empty page and means the
// history is exhausted.
func (p *Pager) PageOlder(ctx context.Context, cursor int64) ([]*store.GlobalMessage, int64, error) {
	anchor := p.normalizeCursor(cursor)

	rows, err := p.store.RangeBefore(ctx, anchor, p.pageSize+1)
	if err != nil {
		return nil, 0, fmt.Errorf("paging messages: %w", err)
	}

	var nextCursor int64
	switch {
	case len(rows) == p.pageSize+1:
		nextCursor = rows[p.pageSize].CreatedAt.UnixMilli()
		rows = rows[:p.pageSize]
	case len(rows) > 0:
		nextCursor = rows[len(rows)-1].CreatedAt.UnixMilli() - 1
	}

	reverse(rows)
	return rows, nextCursor, nil
}

// PageNewer returns the newest page of messages at or after the cursor,
// ordered oldest to newest. Used to resync a client that knows the timestamp
// of the last message it saw.
func (p *Pager) PageNewer(ctx context.Context, cursor int64) ([]*store.GlobalMessage, error) {
	rows, err := p.store.RangeAfter(ctx, cursor, p.pageSize)
	if err != nil {
		return nil, fmt.Errorf("paging messages: %w", err)
	}

	reverse(rows)
	return rows, nil
}

// NextCursor returns the cursor PageOlder would produce for the given anchor
// without materializing the page. Zero means no rows exist at or before the
// anchor.
func (p *Pager) NextCursor(ctx context.Context, cursor int64) (int64, error) {
	anchor := p.normalizeCursor(cursor)

	rows, err := p.store.RangeBefore(ctx, anchor, p.pageSize+1)
	if err != nil {
		return 0, fmt.Errorf("probing cursor: %w", err)
	}

	switch {
	case len(rows) == p.pageSize+1:
		return rows[p.pageSize].CreatedAt.UnixMilli(), nil
	case len(rows) > 0:
		return rows[len(rows)-1].CreatedAt.UnixMilli() - 1, nil
	}
	return 0, nil
}

func reverse(msgs []*store.GlobalMessage) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}
