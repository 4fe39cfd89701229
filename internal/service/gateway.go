package service

import (
	"context"

	"github.com/quick-clinic/realtime-service/internal/domain"
)

// Gateway is the persistence port used by the real-time core.
// Lookups return domain.ErrRelationNotFound, domain.ErrUserNotFound or
// domain.ErrAppointmentNotFound when the row is absent.
type Gateway interface {
	GetRelation(ctx context.Context, relationID string) (*domain.Relation, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)

	ListMessages(ctx context.Context, relationID string, skip, limit int) ([]domain.ChatMessage, error)
	CountMessages(ctx context.Context, relationID string) (int, error)
	CreateMessage(ctx context.Context, relationID, senderID, text string) (*domain.ChatMessage, error)

	CreateNotification(ctx context.Context, userID, message string) (*domain.Notification, error)
	GetAppointment(ctx context.Context, appointmentID string) (*domain.Appointment, error)
}

func persistErr(op string, err error) error {
	return &domain.PersistenceError{Op: op, Err: err}
}
