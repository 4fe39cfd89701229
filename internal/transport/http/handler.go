package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/quick-clinic/realtime-service/internal/domain"
	httpmw "github.com/quick-clinic/realtime-service/internal/transport/http/middleware"
)

// Dispatcher is the persisting side of the notifier.
type Dispatcher interface {
	Notify(ctx context.Context, userID, message string) (*domain.Notification, error)
	AppointmentRequested(ctx context.Context, doctorID, appointmentID string) (*domain.Appointment, error)
	AppointmentStatusChanged(ctx context.Context, ch domain.StatusChange) error
}

type Handler struct {
	dispatcher Dispatcher
}

func NewHandler(d Dispatcher) *Handler {
	return &Handler{dispatcher: d}
}

type NotifyRequest struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

type AppointmentRequest struct {
	DoctorID      string `json:"doctorId"`
	AppointmentID string `json:"appointmentId"`
}

type acceptedResponse struct {
	Status string `json:"status"`
	ID     string `json:"id,omitempty"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(dst)
}

// POST /internal/notifications
func (h *Handler) Notify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req NotifyRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(ctx, w, http.StatusBadRequest, "invalid json")
		return
	}

	nt, err := h.dispatcher.Notify(ctx, req.UserID, req.Message)
	if err != nil {
		h.fail(ctx, w, "handler.Notify", err)
		return
	}
	writeData(ctx, w, http.StatusAccepted, acceptedResponse{Status: "accepted", ID: nt.ID})
}

// POST /internal/appointments/request
func (h *Handler) AppointmentRequested(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req AppointmentRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(ctx, w, http.StatusBadRequest, "invalid json")
		return
	}

	appt, err := h.dispatcher.AppointmentRequested(ctx, req.DoctorID, req.AppointmentID)
	if err != nil {
		h.fail(ctx, w, "handler.AppointmentRequested", err)
		return
	}
	writeData(ctx, w, http.StatusAccepted, acceptedResponse{Status: "accepted", ID: appt.ID})
}

// POST /internal/appointments/status
func (h *Handler) AppointmentStatusChanged(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req domain.StatusChange
	if err := decodeBody(w, r, &req); err != nil {
		writeError(ctx, w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.dispatcher.AppointmentStatusChanged(ctx, req); err != nil {
		h.fail(ctx, w, "handler.AppointmentStatusChanged", err)
		return
	}
	writeData(ctx, w, http.StatusAccepted, acceptedResponse{Status: "accepted", ID: req.AppointmentID})
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		httpmw.L(ctx).Error(op, "err", err)
		writeError(ctx, w, status, "internal error")
		return
	}
	httpmw.L(ctx).Warn(op, "err", err)
	writeError(ctx, w, status, err.Error())
}
