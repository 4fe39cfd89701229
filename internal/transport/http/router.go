package http

import (
	"context"
	"net/http"
	"time"

	httpmw "github.com/quick-clinic/realtime-service/internal/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterOptions struct {
	AllowedOrigins []string
	InternalToken  string
	Timeout        time.Duration
	// Ready reports whether dependencies are reachable; nil means always ready.
	Ready func(ctx context.Context) error
}

func NewRouter(h *Handler, ws http.HandlerFunc, opts RouterOptions) http.Handler {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middlewareChi.RequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(httpmw.WithRequestLogger)
	r.Use(httpmw.RequestLogger)
	r.Use(middlewareChi.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// долгоживущее соединение, без Timeout
	r.Get("/ws", ws)

	r.Route("/internal", func(ir chi.Router) {
		ir.Use(httpmw.InternalAuth(opts.InternalToken))
		ir.Use(middlewareChi.Timeout(opts.Timeout))

		ir.Post("/notifications", h.Notify)
		ir.Post("/appointments/request", h.AppointmentRequested)
		ir.Post("/appointments/status", h.AppointmentStatusChanged)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if opts.Ready != nil {
			if err := opts.Ready(r.Context()); err != nil {
				httpmw.L(r.Context()).Warn("readiness check failed", "err", err)
				writeError(r.Context(), w, http.StatusServiceUnavailable, "not ready")
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	return r
}
