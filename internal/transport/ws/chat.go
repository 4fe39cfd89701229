package ws

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/quick-clinic/realtime-service/internal/domain"
)

func (s *Server) serveChat(ctx context.Context, c *wsConn, sess domain.SessionContext, log *slog.Logger) {
	room := sess.Room()
	s.hub.Join(c, room)

	s.send(c, log, Message{
		Type: domain.EventConnected,
		Payload: ConnectedPayload{
			Message:  "Connected to chat",
			UserID:   sess.UserID(),
			UserName: sess.DisplayName(),
			UserRole: sess.Role(),
		},
	})

	s.readLoop(ctx, c, log, func(ctx context.Context, in inbound) {
		log.Debug("ws chat event", "type", in.Type)

		switch in.Type {
		case "":
			s.sendError(c, log, "Invalid message format")
		case domain.EventGetInitialMessages:
			s.handleHistory(ctx, c, sess, log, in)
		case domain.EventSendMessage:
			s.handleSend(ctx, c, sess, log, in)
		case domain.EventUserTyping:
			s.hub.EmitToOthers(c.ID(), room, Message{
				Type: domain.EventUserTyping,
				Payload: TypingPayload{
					UserID:   sess.UserID(),
					UserName: sess.DisplayName(),
					UserRole: sess.Role(),
				},
			})
		case domain.EventMarkAsRead:
			var req MarkAsReadRequest
			if err := in.decode(&req); err != nil || strings.TrimSpace(req.MessageID) == "" {
				s.sendError(c, log, "messageId is required")
				return
			}
			s.hub.EmitToOthers(c.ID(), room, Message{
				Type:    domain.EventMessageRead,
				Payload: MessageReadPayload{MessageID: req.MessageID, ReadBy: sess.UserID()},
			})
		default:
			s.sendError(c, log, "Unknown event: "+in.Type)
		}
	})

	s.hub.Leave(c.ID(), room)
}

func (s *Server) handleHistory(ctx context.Context, c *wsConn, sess domain.SessionContext, log *slog.Logger, in inbound) {
	var req HistoryRequest
	if err := in.decode(&req); err != nil {
		s.sendError(c, log, "Invalid pagination parameters")
		return
	}

	page, err := s.chatSvc.History(ctx, sess.RelationID(), int(req.Page), int(req.Limit))
	if err != nil {
		log.Error("ws load history failed", "err", err)
		s.sendError(c, log, "Failed to load messages")
		return
	}

	views := make([]MessageView, 0, len(page.Messages))
	for _, m := range page.Messages {
		views = append(views, toView(m))
	}
	s.send(c, log, Message{
		Type: domain.EventInitialMessages,
		Payload: InitialMessagesPayload{
			Messages: views,
			Pagination: Pagination{
				Page:    page.Page,
				Limit:   page.Limit,
				Total:   page.Total,
				HasMore: page.HasMore,
			},
		},
	})
}

func (s *Server) handleSend(ctx context.Context, c *wsConn, sess domain.SessionContext, log *slog.Logger, in inbound) {
	var req SendMessageRequest
	if err := in.decode(&req); err != nil {
		s.sendError(c, log, "Message text is required")
		return
	}

	msg, err := s.chatSvc.Send(ctx, sess, req.Text)
	switch {
	case errors.Is(err, domain.ErrEmptyMessage):
		s.sendError(c, log, "Message text is required")
		return
	case errors.Is(err, domain.ErrMessageTooLong):
		s.sendError(c, log, "Message is too long")
		return
	case err != nil:
		log.Error("ws save message failed", "err", err)
		s.sendError(c, log, "Failed to send message")
		return
	}

	// единый broadcast, отправитель тоже получает new_message
	s.hub.Broadcast(sess.Room(), Message{
		Type:    domain.EventNewMessage,
		Payload: NewMessagePayload{Message: toView(*msg)},
	})
}
