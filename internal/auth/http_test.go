// ABOUTME: Tests for the HTTP authentication middleware
// ABOUTME: Covers header and query token extraction, unknown users, and per-request identity

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajputkuldeep/chat-application/internal/store"
)

// fakeUserStore resolves a fixed set of users.
type fakeUserStore struct {
	users map[string]*store.User
}

func (f *fakeUserStore) GetUser(_ context.Context, id string) (*store.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func TestHTTPAuthMiddleware_ValidBearerToken(t *testing.T) {
	verifier := NewJWTVerifier([]byte("test-secret"))
	users := &fakeUserStore{users: map[string]*store.User{
		"user-1": {ID: "user-1", Username: "alice", DisplayName: "Alice"},
	}}

	var seen *Identity
	handler := HTTPAuthMiddleware(users, verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	token, err := verifier.Generate("user-1", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/messages/global", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "user-1", seen.UserID)
	assert.Equal(t, "alice", seen.Username)
}

func TestHTTPAuthMiddleware_QueryToken(t *testing.T) {
	verifier := NewJWTVerifier([]byte("test-secret"))
	users := &fakeUserStore{users: map[string]*store.User{
		"user-1": {ID: "user-1", Username: "alice", DisplayName: "Alice"},
	}}

	var seen *Identity
	handler := HTTPAuthMiddleware(users, verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))

	token, err := verifier.Generate("user-1", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.NotNil(t, seen)
	assert.Equal(t, "user-1", seen.UserID)
}

func TestHTTPAuthMiddleware_Rejections(t *testing.T) {
	verifier := NewJWTVerifier([]byte("test-secret"))
	users := &fakeUserStore{users: map[string]*store.User{
		"user-1": {ID: "user-1", Username: "alice", DisplayName: "Alice"},
	}}

	handler := HTTPAuthMiddleware(users, verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	}))

	unknownToken, err := verifier.Generate("user-ghost", time.Hour)
	require.NoError(t, err)
	wrongSecret, err := NewJWTVerifier([]byte("other-secret")).Generate("user-1", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{name: "no header", header: ""},
		{name: "not bearer", header: "Basic abc"},
		{name: "empty bearer", header: "Bearer "},
		{name: "wrong secret", header: "Bearer " + wrongSecret},
		{name: "unknown subject", header: "Bearer " + unknownToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/messages/global", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), "Unauthorized")
		})
	}
}

func TestHTTPAuthMiddleware_PerRequestIdentity(t *testing.T) {
	verifier := NewJWTVerifier([]byte("test-secret"))
	users := &fakeUserStore{users: map[string]*store.User{
		"user-1": {ID: "user-1", Username: "alice", DisplayName: "Alice"},
		"user-2": {ID: "user-2", Username: "bob", DisplayName: "Bob"},
	}}

	handler := HTTPAuthMiddleware(users, verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := MustFromContext(r.Context())
		w.Write([]byte(id.Username))
	}))

	tokenA, err := verifier.Generate("user-1", time.Hour)
	require.NoError(t, err)
	tokenB, err := verifier.Generate("user-2", time.Hour)
	require.NoError(t, err)

	// Interleaved requests each see their own caller
	for i := 0; i < 3; i++ {
		reqA := httptest.NewRequest(http.MethodGet, "/messages/global", nil)
		reqA.Header.Set("Authorization", "Bearer "+tokenA)
		recA := httptest.NewRecorder()
		handler.ServeHTTP(recA, reqA)
		assert.Equal(t, "alice", recA.Body.String())

		reqB := httptest.NewRequest(http.MethodGet, "/messages/global", nil)
		reqB.Header.Set("Authorization", "Bearer "+tokenB)
		recB := httptest.NewRecorder()
		handler.ServeHTTP(recB, reqB)
		assert.Equal(t, "bob", recB.Body.String())
	}
}
