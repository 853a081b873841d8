// ABOUTME: HTTP handlers for the message API
// ABOUTME: Global stream, pagination, conversations, and private sends

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rajputkuldeep/chat-application/internal/auth"
	"github.com/rajputkuldeep/chat-application/internal/chat"
	"github.com/rajputkuldeep/chat-application/internal/store"
)

// SendGlobalRequest is the JSON request body for POST /messages/global.
type SendGlobalRequest struct {
	Body string `json:"body" validate:"required"`
}

// SendPrivateRequest is the JSON request body for POST /messages/.
type SendPrivateRequest struct {
	To   string `json:"to" validate:"required"`
	Body string `json:"body" validate:"required"`
}

// UserResponse is the embedded sender/recipient shape.
type UserResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

// GlobalMessageResponse is the JSON shape of a global stream message.
// CreatedAt is a unix-milli value rendered as a decimal string, matching the
// cursor format clients feed back into pagination.
type GlobalMessageResponse struct {
	ID        string        `json:"id"`
	From      string        `json:"from"`
	Sender    *UserResponse `json:"sender,omitempty"`
	Body      string        `json:"body"`
	CreatedAt string        `json:"createdAt"`
}

// MessageResponse is the JSON shape of a private message.
type MessageResponse struct {
	ID             string        `json:"id"`
	ConversationID string        `json:"conversationId"`
	From           string        `json:"from"`
	To             string        `json:"to"`
	Sender         *UserResponse `json:"sender,omitempty"`
	Recipient      *UserResponse `json:"recipient,omitempty"`
	Body           string        `json:"body"`
	CreatedAt      string        `json:"createdAt"`
}

// ConversationResponse is the JSON shape of a conversation listing entry.
type ConversationResponse struct {
	ID              string          `json:"id"`
	Participants    []*UserResponse `json:"participants"`
	LastMessageBody string          `json:"lastMessageBody"`
	LastActivityAt  string          `json:"lastActivityAt"`
}

func toUserResponse(u *store.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{ID: u.ID, Username: u.Username, DisplayName: u.DisplayName}
}

func toGlobalMessageResponse(m *store.GlobalMessage) GlobalMessageResponse {
	return GlobalMessageResponse{
		ID:        m.ID,
		From:      m.FromUserID,
		Sender:    toUserResponse(m.From),
		Body:      m.Body,
		CreatedAt: strconv.FormatInt(m.CreatedAt.UnixMilli(), 10),
	}
}

func toGlobalMessageResponses(msgs []*store.GlobalMessage) []GlobalMessageResponse {
	out := make([]GlobalMessageResponse, len(msgs))
	for i, m := range msgs {
		out[i] = toGlobalMessageResponse(m)
	}
	return out
}

func toMessageResponse(m *store.Message) MessageResponse {
	return MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		From:           m.FromUserID,
		To:             m.ToUserID,
		Sender:         toUserResponse(m.From),
		Recipient:      toUserResponse(m.To),
		Body:           m.Body,
		CreatedAt:      strconv.FormatInt(m.CreatedAt.UnixMilli(), 10),
	}
}

func toConversationResponse(c *store.Conversation) ConversationResponse {
	participants := make([]*UserResponse, 0, len(c.Participants))
	for _, p := range c.Participants {
		participants = append(participants, toUserResponse(p))
	}
	return ConversationResponse{
		ID:              c.ID,
		Participants:    participants,
		LastMessageBody: c.LastMessageBody,
		LastActivityAt:  strconv.FormatInt(c.LastActivityAt.UnixMilli(), 10),
	}
}

// parseCursor reads the messageLastTimestamp query parameter, with cursor as
// an accepted alias. Absent or empty means zero, which anchors pagination at
// the newest message.
func parseCursor(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("messageLastTimestamp")
	if raw == "" {
		raw = r.URL.Query().Get("cursor")
	}
	if raw == "" {
		return 0, nil
	}
	cursor, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || cursor < 0 {
		return 0, errors.New("cursor must be a non-negative integer")
	}
	return cursor, nil
}

// handleGlobalHistory handles GET /messages/global.
// Returns the full global stream oldest-first.
func (s *Server) handleGlobalHistory(w http.ResponseWriter, r *http.Request) {
	messages, err := s.svc.GlobalHistory(r.Context())
	if err != nil {
		s.logger.Error("failed to load global history", "error", err)
		s.writeFailure(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.writeSuccess(w, http.StatusOK, map[string]any{
		"messages": toGlobalMessageResponses(messages),
	})
}

// handleSendGlobal handles POST /messages/global.
func (s *Server) handleSendGlobal(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustFromContext(r.Context())

	var req SendGlobalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeFailure(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.writeFailure(w, http.StatusBadRequest, "body is required")
		return
	}

	msg, err := s.svc.SendGlobal(r.Context(), identity.UserID, req.Body)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyBody) {
			s.writeFailure(w, http.StatusBadRequest, "body is required")
			return
		}
		s.logger.Error("failed to send global message", "error", err)
		s.writeFailure(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.writeSuccess(w, http.StatusCreated, map[string]any{
		"data": toGlobalMessageResponse(msg),
	})
}

// handlePagination handles GET /messages/pagination?messageLastTimestamp=N.
// Returns one page of global history oldest-first plus the cursor for the
// next older page; an empty page with nextCursor "0" means the history is
// exhausted.
func (s *Server) handlePagination(w http.ResponseWriter, r *http.Request) {
	cursor, err := parseCursor(r)
	if err != nil {
		s.writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	messages, nextCursor, err := s.svc.PageOlder(r.Context(), cursor)
	if err != nil {
		s.logger.Error("failed to page messages", "error", err)
		s.writeFailure(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.writeSuccess(w, http.StatusOK, map[string]any{
		"messages":   toGlobalMessageResponses(messages),
		"nextCursor": strconv.FormatInt(nextCursor, 10),
	})
}

// handleLastData handles GET /messages/last_data?messageLastTimestamp=N.
// Returns the newest page of messages at or after the cursor, oldest-first.
func (s *Server) handleLastData(w http.ResponseWriter, r *http.Request) {
	cursor, err := parseCursor(r)
	if err != nil {
		s.writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	messages, err := s.svc.PageNewer(r.Context(), cursor)
	if err != nil {
		s.logger.Error("failed to load latest messages", "error", err)
		s.writeFailure(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.writeSuccess(w, http.StatusOK, map[string]any{
		"messages": toGlobalMessageResponses(messages),
	})
}

// handleDate handles GET /messages/date?messageLastTimestamp=N.
// Probes where pagination from the cursor would continue without returning
// the page itself. When no messages exist at or before the cursor, the
// caller's cursor is echoed back so clients can hold their position.
func (s *Server) handleDate(w http.ResponseWriter, r *http.Request) {
	cursor, err := parseCursor(r)
	if err != nil {
		s.writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	next, err := s.svc.NextCursor(r.Context(), cursor)
	if err != nil {
		s.logger.Error("failed to probe cursor", "error", err)
		s.writeFailure(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if next == 0 {
		next = cursor
	}

	s.writeSuccess(w, http.StatusOK, map[string]any{
		"time": strconv.FormatInt(next, 10),
	})
}

// handleConversations handles GET /messages/conversations.
// Lists the caller's conversations, newest activity first.
func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustFromContext(r.Context())

	conversations, err := s.svc.Conversations(r.Context(), identity.UserID)
	if err != nil {
		s.logger.Error("failed to list conversations", "error", err)
		s.writeFailure(w, http.StatusInternalServerError, "internal server error")
		return
	}

	out := make([]ConversationResponse, len(conversations))
	for i, c := range conversations {
		out[i] = toConversationResponse(c)
	}

	s.writeSuccess(w, http.StatusOK, map[string]any{
		"conversations": out,
	})
}

// handleConversationQuery handles GET /messages/conversations/query?userId=X.
// Returns the full message history between the caller and the other user.
func (s *Server) handleConversationQuery(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustFromContext(r.Context())

	otherID := r.URL.Query().Get("userId")
	if otherID == "" {
		s.writeFailure(w, http.StatusBadRequest, "userId query parameter is required")
		return
	}

	messages, err := s.svc.ConversationHistory(r.Context(), identity.UserID, otherID)
	if err != nil {
		s.logger.Error("failed to query conversation", "error", err)
		s.writeFailure(w, http.StatusInternalServerError, "internal server error")
		return
	}

	out := make([]MessageResponse, len(messages))
	for i, m := range messages {
		out[i] = toMessageResponse(m)
	}

	s.writeSuccess(w, http.StatusOK, map[string]any{
		"messages": out,
	})
}

// handleSendPrivate handles POST /messages/.
// Sends a private message, creating the pair's conversation on first contact.
func (s *Server) handleSendPrivate(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustFromContext(r.Context())

	var req SendPrivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeFailure(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.writeFailure(w, http.StatusBadRequest, "to and body are required")
		return
	}

	msg, conv, err := s.svc.SendPrivate(r.Context(), identity.UserID, req.To, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrEmptyBody):
			s.writeFailure(w, http.StatusBadRequest, "body is required")
		case errors.Is(err, chat.ErrSelfMessage):
			s.writeFailure(w, http.StatusBadRequest, "cannot message yourself")
		case errors.Is(err, chat.ErrUserNotFound):
			s.writeFailure(w, http.StatusNotFound, "recipient not found")
		default:
			s.logger.Error("failed to send private message", "error", err)
			s.writeFailure(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	s.writeSuccess(w, http.StatusCreated, map[string]any{
		"data":           toMessageResponse(msg),
		"conversationId": conv.ID,
	})
}
