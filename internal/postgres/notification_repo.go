package postgres

import (
	"context"

	"github.com/quick-clinic/realtime-service/internal/domain"
)

type NotificationRepository struct {
	q querier
}

func NewNotificationRepository(q querier) *NotificationRepository {
	return &NotificationRepository{q: q}
}

func (r *NotificationRepository) Create(ctx context.Context, userID, message string) (*domain.Notification, error) {
	var n domain.Notification
	err := r.q.QueryRow(ctx, qCreateNotification, userID, message).
		Scan(&n.ID, &n.UserID, &n.Message, &n.IsRead, &n.Status, &n.CreatedAt)
	if err != nil {
		return nil, mapPgError(err, nil)
	}
	return &n, nil
}

type AppointmentRepository struct {
	q querier
}

func NewAppointmentRepository(q querier) *AppointmentRepository {
	return &AppointmentRepository{q: q}
}

func (r *AppointmentRepository) Get(ctx context.Context, id string) (*domain.Appointment, error) {
	var a domain.Appointment
	err := r.q.QueryRow(ctx, qGetAppointment, id).Scan(
		&a.ID,
		&a.DoctorID, &a.DoctorUserID, &a.DoctorName,
		&a.PatientID, &a.PatientUserID, &a.PatientName,
		&a.Date, &a.Time, &a.Status, &a.Reason,
	)
	if err != nil {
		return nil, mapPgError(err, domain.ErrAppointmentNotFound)
	}
	return &a, nil
}
