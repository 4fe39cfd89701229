package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quick-clinic/realtime-service/internal/domain"
	httpmw "github.com/quick-clinic/realtime-service/internal/transport/http/middleware"
)

type envelope map[string]any

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		httpmw.L(ctx).Error("write json response failed", "err", err)
	}
}

func writeData(ctx context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(ctx, w, status, envelope{"data": data})
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, msg string) {
	writeJSON(ctx, w, status, envelope{"error": envelope{"message": msg}})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAppointmentNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDoctorMismatch):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
