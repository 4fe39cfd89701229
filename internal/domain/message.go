package domain

import "time"

type ChatMessage struct {
	ID         string    `db:"id"`
	RelationID string    `db:"relation_id"`
	SenderID   string    `db:"sender_id"`
	SenderName string    `db:"sender_name"`
	SenderRole Role      `db:"sender_role"`
	Text       string    `db:"text"`
	CreatedAt  time.Time `db:"created_at"`
}

// MessagePage is one page of a relation's history, oldest first.
type MessagePage struct {
	Messages []ChatMessage
	Page     int
	Limit    int
	Total    int
	HasMore  bool
}
