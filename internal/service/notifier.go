package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/quick-clinic/realtime-service/internal/domain"
)

// Emitter fans an event out to the members of a room and reports how many
// connections it reached.
type Emitter interface {
	Emit(room, event string, payload any) int
}

type NotificationEvent struct {
	Notification any `json:"notification"`
}

type AppointmentEvent struct {
	Appointment any `json:"appointment"`
}

// Notifier pushes server-initiated events to per-user rooms.
// Push is best-effort; the persisting entry points report storage errors only.
type Notifier struct {
	gw      Gateway
	emitter Emitter
}

func NewNotifier(gw Gateway, emitter Emitter) *Notifier {
	return &Notifier{gw: gw, emitter: emitter}
}

func (n *Notifier) SendNotificationToUser(userID string, notification any) {
	n.push(userID, domain.EventNewNotification, NotificationEvent{Notification: notification})
}

func (n *Notifier) SendAppointmentRequest(doctorUserID string, appointment any) {
	n.push(doctorUserID, domain.EventNewAppointmentRequest, AppointmentEvent{Appointment: appointment})
}

func (n *Notifier) SendAppointmentStatusUpdate(patientUserID string, appointment any) {
	n.push(patientUserID, domain.EventAppointmentStatusUpdate, AppointmentEvent{Appointment: appointment})
}

func (n *Notifier) push(userID, event string, payload any) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("notifier push panic", "event", event, "user_id", userID, "panic", r)
		}
	}()
	if userID == "" {
		slog.Warn("notifier push without user", "event", event)
		return
	}
	delivered := n.emitter.Emit(domain.UserRoom(userID), event, payload)
	slog.Debug("notifier push", "event", event, "user_id", userID, "delivered", delivered)
}

// Notify stores a notification for userID and pushes it to their open sessions.
func (n *Notifier) Notify(ctx context.Context, userID, message string) (*domain.Notification, error) {
	userID = strings.TrimSpace(userID)
	message = strings.TrimSpace(message)
	if userID == "" || message == "" {
		return nil, fmt.Errorf("%w: userId and message are required", domain.ErrInvalidArgument)
	}

	nt, err := n.gw.CreateNotification(ctx, userID, message)
	if err != nil {
		return nil, persistErr("create notification", err)
	}
	n.SendNotificationToUser(userID, nt)
	return nt, nil
}

// AppointmentRequested tells the doctor about a new booking.
func (n *Notifier) AppointmentRequested(ctx context.Context, doctorID, appointmentID string) (*domain.Appointment, error) {
	if doctorID == "" || appointmentID == "" {
		return nil, fmt.Errorf("%w: doctorId and appointmentId are required", domain.ErrInvalidArgument)
	}

	appt, err := n.gw.GetAppointment(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, domain.ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, persistErr("get appointment", err)
	}
	if appt.DoctorID != doctorID {
		return nil, domain.ErrDoctorMismatch
	}

	msg := fmt.Sprintf("New appointment request from %s for %s at %s", appt.PatientName, appt.Date, appt.Time)
	nt, err := n.gw.CreateNotification(ctx, appt.DoctorUserID, msg)
	if err != nil {
		return nil, persistErr("create notification", err)
	}

	n.SendNotificationToUser(appt.DoctorUserID, nt)
	n.SendAppointmentRequest(appt.DoctorUserID, appt)
	return appt, nil
}

// AppointmentStatusChanged tells the patient their booking moved to a new status.
func (n *Notifier) AppointmentStatusChanged(ctx context.Context, ch domain.StatusChange) error {
	if ch.PatientUserID == "" || ch.AppointmentID == "" || ch.Status == "" {
		return fmt.Errorf("%w: patientUserId, appointmentId and status are required", domain.ErrInvalidArgument)
	}

	msg := fmt.Sprintf("Your appointment with Dr. %s on %s at %s is now %s",
		ch.DoctorName, ch.AppointmentDate, ch.AppointmentTime, strings.ToLower(ch.Status))
	nt, err := n.gw.CreateNotification(ctx, ch.PatientUserID, msg)
	if err != nil {
		return persistErr("create notification", err)
	}

	n.SendNotificationToUser(ch.PatientUserID, nt)
	n.SendAppointmentStatusUpdate(ch.PatientUserID, ch)
	return nil
}
