package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/quick-clinic/realtime-service/internal/domain"
	"github.com/quick-clinic/realtime-service/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type Authenticator interface {
	Authenticate(ctx context.Context, req service.AuthRequest) (domain.SessionContext, error)
}

type ChatSvc interface {
	History(ctx context.Context, relationID string, page, limit int) (*domain.MessagePage, error)
	Send(ctx context.Context, sess domain.SessionContext, text string) (*domain.ChatMessage, error)
}

type Options struct {
	PingEvery      time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64
	AllowedOrigins []string // пусто: любой origin
}

type Server struct {
	upgrader websocket.Upgrader
	hub      *Hub
	auth     Authenticator
	chatSvc  ChatSvc
	opts     Options
}

func NewServer(hub *Hub, auth Authenticator, chat ChatSvc, opts Options) *Server {
	if opts.PingEvery <= 0 {
		opts.PingEvery = 15 * time.Second
	}
	if opts.WriteWait <= 0 {
		opts.WriteWait = 5 * time.Second
	}
	if opts.MaxMessageSize <= 0 {
		opts.MaxMessageSize = 64 << 10
	}
	s := &Server{
		hub:     hub,
		auth:    auth,
		chatSvc: chat,
		opts:    opts,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.opts.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range s.opts.AllowedOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

// HandleWS: GET /ws?user_id=...&relation_id=...&token=...
// Without relation_id the connection becomes a notification session.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	token := q.Get("token")
	if token == "" {
		token = r.Header.Get("Authorization")
	}

	sess, err := s.auth.Authenticate(r.Context(), service.AuthRequest{
		UserID:     q.Get("user_id"),
		RelationID: q.Get("relation_id"),
		Token:      token,
	})
	if err != nil {
		writeAuthError(w, r, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader already wrote the HTTP error
		slog.Warn("ws upgrade failed", "user_id", sess.UserID(), "err", err)
		return
	}

	c := newWsConn(conn, uuid.NewString(), s.opts.WriteWait)
	log := slog.With("conn_id", c.ID(), "user_id", sess.UserID(), "room", sess.Room())
	log.Info("ws connected", "role", sess.Role())

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go s.writeLoop(ctx, c)

	switch sess.Kind() {
	case domain.SessionChat:
		s.serveChat(ctx, c, sess, log)
	default:
		s.serveNotifications(ctx, c, sess, log)
	}

	s.hub.LeaveAll(c.ID())
	if err := c.Close(); err != nil {
		log.Debug("ws close failed", "err", err)
	}
	log.Info("ws disconnected")
}

// Shutdown closes all open sessions.
func (s *Server) Shutdown() {
	s.hub.CloseAll()
}

// readLoop delivers inbound events to handle one at a time until the socket fails.
func (s *Server) readLoop(ctx context.Context, c *wsConn, log *slog.Logger, handle func(context.Context, inbound)) {
	c.conn.SetReadLimit(s.opts.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * s.opts.PingEvery))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(2 * s.opts.PingEvery))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				log.Debug("ws read failed", "err", err)
			}
			return
		}

		// unparsable frames reach handle with an empty Type
		var in inbound
		if err := json.Unmarshal(data, &in); err != nil {
			in = inbound{}
		}
		s.dispatch(ctx, c, log, in, handle)
	}
}

func (s *Server) dispatch(ctx context.Context, c *wsConn, log *slog.Logger, in inbound, handle func(context.Context, inbound)) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("ws handler panic",
				"type", in.Type,
				"panic", r,
				"stack", string(debug.Stack()))
			s.sendError(c, log, "Internal server error")
		}
	}()
	handle(ctx, in)
}

func (s *Server) writeLoop(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(s.opts.PingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.ping(); err != nil {
				_ = c.Close()
				return
			}
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		}
	}
}

func (s *Server) send(c *wsConn, log *slog.Logger, msg Message) {
	if err := c.Send(msg); err != nil {
		log.Debug("ws send failed", "type", msg.Type, "err", err)
	}
}

func (s *Server) sendError(c *wsConn, log *slog.Logger, text string) {
	s.send(c, log, Message{Type: domain.EventError, Payload: ErrorPayload{Message: text}})
}

type authErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

func writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	resp := authErrorResponse{Error: "internal error", Reason: "Internal"}

	var ae *domain.AuthError
	if errors.As(err, &ae) {
		resp.Reason = string(ae.Reason)
		switch ae.Reason {
		case domain.ReasonMissingUserID:
			status, resp.Error = http.StatusBadRequest, "user_id is required"
		case domain.ReasonRelationNotFound:
			status, resp.Error = http.StatusNotFound, "relation not found"
		case domain.ReasonUserNotFound:
			status, resp.Error = http.StatusNotFound, "user not found"
		default:
			status, resp.Error = http.StatusForbidden, "not allowed to join this conversation"
		}
		slog.Warn("ws auth rejected", "reason", ae.Reason, "remote", r.RemoteAddr, "err", err)
	} else {
		slog.Error("ws auth failed", "remote", r.RemoteAddr, "err", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
