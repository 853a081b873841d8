// Package auth provides authentication for the chat server.
//
// # Authentication Method
//
// Callers authenticate with JWT tokens signed HS256 using the configured
// jwt_secret. The "sub" claim carries the user ID; tokens with an unknown
// subject are rejected even when the signature is valid.
//
// Token issuance is out of scope for the server itself: the useradd command
// mints a token when it creates a user, and any upstream identity provider
// sharing the secret can mint its own.
//
// # Request Identity
//
// HTTPAuthMiddleware verifies the token on every request and attaches an
// Identity to the request context via WithIdentity. Handlers read it back
// with FromContext (or MustFromContext below the middleware). Identity is
// strictly per-request state; concurrent requests with different tokens
// never observe each other's caller.
//
// Websocket clients that cannot set headers may pass the token as a "token"
// query parameter; ExtractToken checks the Authorization header first.
package auth
