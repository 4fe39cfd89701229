package ws

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/quick-clinic/realtime-service/internal/domain"
)

// Message is the frame written to clients.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// inbound is the frame read from clients; payload is decoded per event.
type inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func (in inbound) decode(dst any) error {
	if len(in.Payload) == 0 || string(in.Payload) == "null" {
		return nil
	}
	return json.Unmarshal(in.Payload, dst)
}

type ConnectedPayload struct {
	Message  string      `json:"message"`
	UserID   string      `json:"userId"`
	UserName string      `json:"userName"`
	UserRole domain.Role `json:"userRole"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// flexInt accepts 2 and "2"; anything else decodes to zero.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	n, err := strconv.Atoi(s)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexInt(n)
	return nil
}

type HistoryRequest struct {
	Page  flexInt `json:"page"`
	Limit flexInt `json:"limit"`
}

type SendMessageRequest struct {
	Text string `json:"text"`
}

type MarkAsReadRequest struct {
	MessageID string `json:"messageId"`
}

type MessageView struct {
	ID         string      `json:"id"`
	Text       string      `json:"text"`
	SenderID   string      `json:"senderId"`
	SenderName string      `json:"senderName"`
	SenderRole domain.Role `json:"senderRole"`
	CreatedAt  time.Time   `json:"createdAt"`
}

func toView(m domain.ChatMessage) MessageView {
	return MessageView{
		ID:         m.ID,
		Text:       m.Text,
		SenderID:   m.SenderID,
		SenderName: m.SenderName,
		SenderRole: m.SenderRole,
		CreatedAt:  m.CreatedAt,
	}
}

type Pagination struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	HasMore bool `json:"hasMore"`
}

type InitialMessagesPayload struct {
	Messages   []MessageView `json:"messages"`
	Pagination Pagination    `json:"pagination"`
}

type NewMessagePayload struct {
	Message MessageView `json:"message"`
}

type TypingPayload struct {
	UserID   string      `json:"userId"`
	UserName string      `json:"userName"`
	UserRole domain.Role `json:"userRole"`
}

type MessageReadPayload struct {
	MessageID string `json:"messageId"`
	ReadBy    string `json:"readBy"`
}
