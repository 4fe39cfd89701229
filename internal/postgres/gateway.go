package postgres

import (
	"context"

	"github.com/quick-clinic/realtime-service/internal/domain"
)

// Gateway implements service.Gateway on top of the booking database.
type Gateway struct {
	users         *UserRepository
	relations     *RelationRepository
	chat          *ChatRepository
	notifications *NotificationRepository
	appointments  *AppointmentRepository
}

func NewGateway(q querier) *Gateway {
	return &Gateway{
		users:         NewUserRepository(q),
		relations:     NewRelationRepository(q),
		chat:          NewChatRepository(q),
		notifications: NewNotificationRepository(q),
		appointments:  NewAppointmentRepository(q),
	}
}

func (g *Gateway) GetRelation(ctx context.Context, relationID string) (*domain.Relation, error) {
	return g.relations.Get(ctx, relationID)
}

func (g *Gateway) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return g.users.Get(ctx, userID)
}

func (g *Gateway) ListMessages(ctx context.Context, relationID string, skip, limit int) ([]domain.ChatMessage, error) {
	return g.chat.List(ctx, relationID, skip, limit)
}

func (g *Gateway) CountMessages(ctx context.Context, relationID string) (int, error) {
	return g.chat.Count(ctx, relationID)
}

func (g *Gateway) CreateMessage(ctx context.Context, relationID, senderID, text string) (*domain.ChatMessage, error) {
	return g.chat.Create(ctx, relationID, senderID, text)
}

func (g *Gateway) CreateNotification(ctx context.Context, userID, message string) (*domain.Notification, error) {
	return g.notifications.Create(ctx, userID, message)
}

func (g *Gateway) GetAppointment(ctx context.Context, appointmentID string) (*domain.Appointment, error) {
	return g.appointments.Get(ctx, appointmentID)
}
