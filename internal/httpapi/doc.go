// Package httpapi exposes the chat service over HTTP and websockets.
//
// # Routes
//
// All message routes require a bearer token (see the auth package):
//
//	GET  /messages/global               full global stream, oldest-first
//	POST /messages/global               append to the global stream
//	GET  /messages/pagination?cursor=N  one page of history plus nextCursor
//	GET  /messages/last_data?cursor=N   newest messages at or after the cursor
//	GET  /messages/date?cursor=N        probe the next pagination cursor
//	GET  /messages/conversations        the caller's conversations
//	GET  /messages/conversations/query?userId=X  history with one user
//	POST /messages/                     send a private message
//	GET  /ws                            realtime event stream (websocket)
//
// GET /health is unauthenticated for liveness probes.
//
// # Response Envelope
//
// Every JSON response carries a "message" field: "Success", "Failure", or
// "Unauthorized" (the latter written by the auth middleware). Payload fields
// sit alongside it. Timestamps and cursors are unix-milli values rendered as
// decimal strings so clients can feed them straight back as cursors.
//
// # Websocket
//
// /ws upgrades to a websocket subscribed to the global topic and the
// caller's user topic: the client sees every global message and only its own
// private messages. The socket is delivery-only; sends go through the REST
// endpoints. Clients that cannot set an Authorization header may pass the
// token as a "token" query parameter.
package httpapi
