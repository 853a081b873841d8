// ABOUTME: Tests for identity propagation through context
// ABOUTME: Covers round-trip, absence, and MustFromContext panics

package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithIdentity_RoundTrip(t *testing.T) {
	id := &Identity{UserID: "user-1", Username: "alice", DisplayName: "Alice"}
	ctx := WithIdentity(context.Background(), id)

	got := FromContext(ctx)
	assert.Equal(t, id, got)
}

func TestFromContext_Missing(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
}

func TestMustFromContext_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustFromContext(context.Background())
	})
}
