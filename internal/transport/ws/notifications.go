package ws

import (
	"context"
	"log/slog"

	"github.com/quick-clinic/realtime-service/internal/domain"
)

// Notification sessions are push-only; inbound events are dropped.
func (s *Server) serveNotifications(ctx context.Context, c *wsConn, sess domain.SessionContext, log *slog.Logger) {
	room := sess.Room()
	s.hub.Join(c, room)

	s.send(c, log, Message{
		Type: domain.EventNotificationConnected,
		Payload: ConnectedPayload{
			Message:  "Connected to notifications",
			UserID:   sess.UserID(),
			UserName: sess.DisplayName(),
			UserRole: sess.Role(),
		},
	})

	s.readLoop(ctx, c, log, func(_ context.Context, in inbound) {
		log.Debug("ws notification event ignored", "type", in.Type)
	})

	s.hub.Leave(c.ID(), room)
}
