// ABOUTME: HTTP middleware for JWT authentication on API endpoints
// ABOUTME: Extracts the token, resolves the user, and attaches Identity to context

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/rajputkuldeep/chat-application/internal/store"
)

// UserStore is the subset of the store needed to resolve token subjects.
type UserStore interface {
	GetUser(ctx context.Context, id string) (*store.User, error)
}

// ExtractToken pulls the bearer token from a request. The Authorization
// header wins; a "token" query parameter is accepted as a fallback for
// websocket clients that cannot set headers.
func ExtractToken(r *http.Request) (string, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return "", "invalid authorization header format"
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			return "", "empty token"
		}
		return token, ""
	}

	if token := r.URL.Query().Get("token"); token != "" {
		return token, ""
	}

	return "", "missing authorization header"
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"message":"Unauthorized"}` + "\n"))
}

// HTTPAuthMiddleware creates an HTTP middleware that validates JWT tokens and
// resolves the subject against the user directory. Every request gets its own
// Identity on its own context; nothing is shared between concurrent callers.
func HTTPAuthMiddleware(users UserStore, verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, errMsg := ExtractToken(r)
			if errMsg != "" {
				writeUnauthorized(w)
				return
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				writeUnauthorized(w)
				return
			}

			user, err := users.GetUser(r.Context(), userID)
			if err != nil {
				writeUnauthorized(w)
				return
			}

			id := &Identity{
				UserID:      user.ID,
				Username:    user.Username,
				DisplayName: user.DisplayName,
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
