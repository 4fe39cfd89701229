package service

import (
	"context"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/quick-clinic/realtime-service/internal/domain"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100

	// offset never exceeds a Postgres int4
	maxPageOffset = math.MaxInt32
)

type ChatService struct {
	gw        Gateway
	maxLength int
}

func NewChatService(gw Gateway, maxLength int) *ChatService {
	if maxLength <= 0 {
		maxLength = 4000
	}
	return &ChatService{gw: gw, maxLength: maxLength}
}

// NormalizePage clamps page/limit and returns the row offset.
// A zero value means "not supplied". Pages past the offset ceiling are
// pinned to it and come back empty.
func NormalizePage(page, limit int) (int, int, int) {
	switch {
	case limit < 1:
		limit = DefaultPageLimit
	case limit > MaxPageLimit:
		limit = MaxPageLimit
	}
	if page < 1 {
		page = 1
	}
	if maxPage := maxPageOffset/limit + 1; page > maxPage {
		page = maxPage
	}
	return page, limit, (page - 1) * limit
}

func (s *ChatService) History(ctx context.Context, relationID string, page, limit int) (*domain.MessagePage, error) {
	page, limit, skip := NormalizePage(page, limit)

	msgs, err := s.gw.ListMessages(ctx, relationID, skip, limit)
	if err != nil {
		return nil, persistErr("list messages", err)
	}
	total, err := s.gw.CountMessages(ctx, relationID)
	if err != nil {
		return nil, persistErr("count messages", err)
	}
	if msgs == nil {
		msgs = []domain.ChatMessage{}
	}

	return &domain.MessagePage{
		Messages: msgs,
		Page:     page,
		Limit:    limit,
		Total:    total,
		HasMore:  skip+limit < total,
	}, nil
}

// Send persists trimmed text as a message from the session's user.
func (s *ChatService) Send(ctx context.Context, sess domain.SessionContext, text string) (*domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > s.maxLength {
		return nil, domain.ErrMessageTooLong
	}

	msg, err := s.gw.CreateMessage(ctx, sess.RelationID(), sess.UserID(), text)
	if err != nil {
		return nil, persistErr("create message", err)
	}
	// gateway может не знать имя отправителя
	if msg.SenderName == "" {
		msg.SenderName = sess.DisplayName()
	}
	if msg.SenderRole == "" {
		msg.SenderRole = sess.Role()
	}
	return msg, nil
}
