package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/quick-clinic/realtime-service/internal/domain"
	"github.com/quick-clinic/realtime-service/internal/service"
	"github.com/quick-clinic/realtime-service/internal/service/servicetest"

	"github.com/gorilla/websocket"
)

type testEnv struct {
	ts  *httptest.Server
	hub *Hub
	gw  *servicetest.Gateway
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gw := servicetest.NewGateway().Seed()
	hub := NewHub()
	srv := NewServer(hub, service.NewAuthService(gw, nil), service.NewChatService(gw, 0), Options{
		PingEvery: time.Second,
		WriteWait: time.Second,
	})
	ts := httptest.NewServer(http.HandlerFunc(srv.HandleWS))
	t.Cleanup(func() {
		srv.Shutdown()
		ts.Close()
	})
	return &testEnv{ts: ts, hub: hub, gw: gw}
}

func (e *testEnv) url(query string) string {
	return "ws" + strings.TrimPrefix(e.ts.URL, "http") + "/ws?" + query
}

func (e *testEnv) dial(t *testing.T, query string) *websocket.Conn {
	t.Helper()
	c, resp, err := websocket.DefaultDialer.Dial(e.url(query), nil)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Fatalf("dial %s: %v (status %d)", query, err, status)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func read(t *testing.T, c *websocket.Conn) frame {
	t.Helper()
	_ = c.SetReadDeadline(time.Now().Add(3 * time.Second))
	var f frame
	if err := c.ReadJSON(&f); err != nil {
		t.Fatalf("read: %v", err)
	}
	return f
}

func expect(t *testing.T, c *websocket.Conn, typ string, dst any) {
	t.Helper()
	f := read(t, c)
	if f.Type != typ {
		t.Fatalf("expected %q, got %q (%s)", typ, f.Type, f.Payload)
	}
	if dst != nil {
		if err := json.Unmarshal(f.Payload, dst); err != nil {
			t.Fatalf("decode %s: %v", typ, err)
		}
	}
}

func write(t *testing.T, c *websocket.Conn, typ string, payload any) {
	t.Helper()
	if err := c.WriteJSON(map[string]any{"type": typ, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestHandleWS_RejectsBeforeUpgrade(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		query  string
		status int
		reason domain.AuthReason
	}{
		{"relation_id=R", http.StatusBadRequest, domain.ReasonMissingUserID},
		{"user_id=D&relation_id=nope", http.StatusNotFound, domain.ReasonRelationNotFound},
		{"user_id=X&relation_id=R", http.StatusForbidden, domain.ReasonUnauthorized},
		{"user_id=ghost", http.StatusNotFound, domain.ReasonUserNotFound},
	}
	for _, c := range cases {
		_, resp, err := websocket.DefaultDialer.Dial(env.url(c.query), nil)
		if !errors.Is(err, websocket.ErrBadHandshake) || resp == nil {
			t.Fatalf("%s: expected bad handshake, got %v", c.query, err)
		}
		if resp.StatusCode != c.status {
			t.Fatalf("%s: status %d want %d", c.query, resp.StatusCode, c.status)
		}
		var body authErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()
		if body.Reason != string(c.reason) {
			t.Fatalf("%s: reason %q want %q", c.query, body.Reason, c.reason)
		}
	}
	if env.hub.Rooms() != 0 {
		t.Fatal("rejected connections must not join rooms")
	}
}

func TestChat_ConnectedAndSend(t *testing.T) {
	env := newTestEnv(t)
	doc := env.dial(t, "user_id=D&relation_id=R")
	pat := env.dial(t, "user_id=P&relation_id=R")

	var hello ConnectedPayload
	expect(t, doc, domain.EventConnected, &hello)
	if hello.UserRole != domain.RoleDoctor || hello.UserName != "Dr. House" || hello.UserID != "D" {
		t.Fatalf("connected: %+v", hello)
	}
	expect(t, pat, domain.EventConnected, &hello)
	if hello.UserRole != domain.RolePatient {
		t.Fatalf("connected: %+v", hello)
	}

	write(t, pat, domain.EventSendMessage, map[string]string{"text": "  I have a fever  "})

	for _, c := range []*websocket.Conn{doc, pat} {
		var got NewMessagePayload
		expect(t, c, domain.EventNewMessage, &got)
		if got.Message.Text != "I have a fever" || got.Message.SenderID != "P" ||
			got.Message.SenderName != "Alice" || got.Message.SenderRole != domain.RolePatient {
			t.Fatalf("new_message: %+v", got.Message)
		}
	}
	if n := len(env.gw.MessagesIn("R")); n != 1 {
		t.Fatalf("persisted %d messages", n)
	}

	// the next frame on each side is the history reply, not a second new_message
	for _, c := range []*websocket.Conn{doc, pat} {
		write(t, c, domain.EventGetInitialMessages, nil)
		expect(t, c, domain.EventInitialMessages, nil)
	}
}

func TestChat_WhitespaceRejected(t *testing.T) {
	env := newTestEnv(t)
	doc := env.dial(t, "user_id=D&relation_id=R")
	pat := env.dial(t, "user_id=P&relation_id=R")
	expect(t, doc, domain.EventConnected, nil)
	expect(t, pat, domain.EventConnected, nil)

	write(t, pat, domain.EventSendMessage, map[string]string{"text": " \n\t "})
	var e ErrorPayload
	expect(t, pat, domain.EventError, &e)
	if e.Message == "" {
		t.Fatal("error message must be set")
	}

	// the doctor must see the typing signal, not a message
	write(t, pat, domain.EventUserTyping, map[string]any{})
	var typing TypingPayload
	expect(t, doc, domain.EventUserTyping, &typing)
	if typing.UserID != "P" || typing.UserName != "Alice" {
		t.Fatalf("typing: %+v", typing)
	}
	if n := len(env.gw.MessagesIn("R")); n != 0 {
		t.Fatalf("persisted %d messages", n)
	}
}

func TestChat_TypingAndReadExcludeSender(t *testing.T) {
	env := newTestEnv(t)
	doc := env.dial(t, "user_id=D&relation_id=R")
	pat := env.dial(t, "user_id=P&relation_id=R")
	expect(t, doc, domain.EventConnected, nil)
	expect(t, pat, domain.EventConnected, nil)

	write(t, doc, domain.EventUserTyping, nil)
	write(t, doc, domain.EventMarkAsRead, map[string]string{"messageId": "m7"})
	write(t, doc, domain.EventGetInitialMessages, nil)

	expect(t, pat, domain.EventUserTyping, nil)
	var receipt MessageReadPayload
	expect(t, pat, domain.EventMessageRead, &receipt)
	if receipt.MessageID != "m7" || receipt.ReadBy != "D" {
		t.Fatalf("message_read: %+v", receipt)
	}

	// the doctor's own signals are not echoed back
	expect(t, doc, domain.EventInitialMessages, nil)

	write(t, doc, domain.EventMarkAsRead, map[string]string{})
	expect(t, doc, domain.EventError, nil)
}

func TestChat_History(t *testing.T) {
	env := newTestEnv(t)
	env.gw.AddMessages("R", "D", 45)
	pat := env.dial(t, "user_id=P&relation_id=R")
	expect(t, pat, domain.EventConnected, nil)

	write(t, pat, domain.EventGetInitialMessages, map[string]any{"page": 3, "limit": 20})
	var got InitialMessagesPayload
	expect(t, pat, domain.EventInitialMessages, &got)
	if len(got.Messages) != 5 || got.Pagination.Total != 45 || got.Pagination.HasMore || got.Pagination.Page != 3 {
		t.Fatalf("page 3: %d msgs %+v", len(got.Messages), got.Pagination)
	}
	if got.Messages[0].Text != "msg 41" || got.Messages[0].SenderName != "Dr. House" {
		t.Fatalf("first of page 3: %+v", got.Messages[0])
	}

	write(t, pat, domain.EventGetInitialMessages, map[string]any{"page": "1", "limit": 500})
	expect(t, pat, domain.EventInitialMessages, &got)
	if got.Pagination.Limit != 100 || len(got.Messages) != 45 {
		t.Fatalf("clamped: %d msgs %+v", len(got.Messages), got.Pagination)
	}

	write(t, pat, domain.EventGetInitialMessages, map[string]any{})
	expect(t, pat, domain.EventInitialMessages, &got)
	if got.Pagination.Limit != 20 || got.Pagination.Page != 1 || !got.Pagination.HasMore {
		t.Fatalf("defaults: %+v", got.Pagination)
	}
}

func TestChat_GatewayErrorsStayOnOrigin(t *testing.T) {
	env := newTestEnv(t)
	doc := env.dial(t, "user_id=D&relation_id=R")
	pat := env.dial(t, "user_id=P&relation_id=R")
	expect(t, doc, domain.EventConnected, nil)
	expect(t, pat, domain.EventConnected, nil)

	env.gw.Fail["CreateMessage"] = errors.New("db down")
	write(t, pat, domain.EventSendMessage, map[string]string{"text": "hello"})
	expect(t, pat, domain.EventError, nil)

	env.gw.Fail["ListMessages"] = errors.New("db down")
	write(t, pat, domain.EventGetInitialMessages, nil)
	expect(t, pat, domain.EventError, nil)

	write(t, pat, domain.EventUserTyping, nil)
	expect(t, doc, domain.EventUserTyping, nil)
}

func TestChat_MalformedAndUnknown(t *testing.T) {
	env := newTestEnv(t)
	pat := env.dial(t, "user_id=P&relation_id=R")
	expect(t, pat, domain.EventConnected, nil)

	if err := pat.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	expect(t, pat, domain.EventError, nil)

	write(t, pat, "", nil)
	expect(t, pat, domain.EventError, nil)

	write(t, pat, "delete_everything", nil)
	expect(t, pat, domain.EventError, nil)

	write(t, pat, domain.EventGetInitialMessages, nil)
	expect(t, pat, domain.EventInitialMessages, nil)
}

func TestChat_DisconnectLeavesRoom(t *testing.T) {
	env := newTestEnv(t)
	doc := env.dial(t, "user_id=D&relation_id=R")
	expect(t, doc, domain.EventConnected, nil)
	if env.hub.Count("relation_R") != 1 {
		t.Fatalf("count = %d", env.hub.Count("relation_R"))
	}

	_ = doc.Close()
	waitFor(t, func() bool { return env.hub.Rooms() == 0 })
}

func TestNotifications_Push(t *testing.T) {
	env := newTestEnv(t)
	pat := env.dial(t, "user_id=P")

	var hello ConnectedPayload
	expect(t, pat, domain.EventNotificationConnected, &hello)
	if hello.UserID != "P" || hello.UserRole != domain.RolePatient || hello.UserName != "Alice" {
		t.Fatalf("notification_connected: %+v", hello)
	}

	// inbound events are ignored, malformed ones included
	write(t, pat, domain.EventSendMessage, map[string]string{"text": "hi"})
	if err := pat.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	write(t, pat, "", nil)

	n := service.NewNotifier(env.gw, env.hub)
	if _, err := n.Notify(t.Context(), "P", "Your prescription is ready"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	var got struct {
		Notification domain.Notification `json:"notification"`
	}
	expect(t, pat, domain.EventNewNotification, &got)
	if got.Notification.Message != "Your prescription is ready" || got.Notification.Status != "UNREAD" {
		t.Fatalf("notification: %+v", got.Notification)
	}

	n.SendAppointmentStatusUpdate("P", map[string]string{"status": "CONFIRMED"})
	expect(t, pat, domain.EventAppointmentStatusUpdate, nil)

	// other users' rooms are untouched
	n.SendNotificationToUser("D", "nobody listening")
	if env.hub.Count("user_D") != 0 {
		t.Fatal("unexpected member")
	}
}

func TestNotifications_AppointmentRequestReachesDoctor(t *testing.T) {
	env := newTestEnv(t)
	doc := env.dial(t, "user_id=D")
	pat := env.dial(t, "user_id=P")
	expect(t, doc, domain.EventNotificationConnected, nil)
	expect(t, pat, domain.EventNotificationConnected, nil)

	appt := map[string]any{
		"id":          "A1",
		"patientName": "Alice",
		"date":        "2026-11-02",
		"time":        "10:30",
		"extra":       map[string]any{"room": 4},
	}
	n := service.NewNotifier(env.gw, env.hub)
	n.SendAppointmentRequest("D", appt)

	var got struct {
		Appointment map[string]any `json:"appointment"`
	}
	expect(t, doc, domain.EventNewAppointmentRequest, &got)
	want, _ := json.Marshal(appt)
	have, _ := json.Marshal(got.Appointment)
	if string(want) != string(have) {
		t.Fatalf("appointment payload changed: %s want %s", have, want)
	}

	// exactly one delivery to the doctor and none to the patient
	n.SendNotificationToUser("D", "second")
	n.SendNotificationToUser("P", "only")
	expect(t, doc, domain.EventNewNotification, nil)
	expect(t, pat, domain.EventNewNotification, nil)
}

func TestHandleWS_ShutdownClosesSessions(t *testing.T) {
	gw := servicetest.NewGateway().Seed()
	hub := NewHub()
	srv := NewServer(hub, service.NewAuthService(gw, nil), service.NewChatService(gw, 0), Options{})
	ts := httptest.NewServer(http.HandlerFunc(srv.HandleWS))
	defer ts.Close()

	c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"?user_id=D", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()
	expect(t, c, domain.EventNotificationConnected, nil)

	srv.Shutdown()
	_ = c.SetReadDeadline(time.Now().Add(3 * time.Second))
	if _, _, err := c.ReadMessage(); err == nil {
		t.Fatal("expected closed connection")
	}
	waitFor(t, func() bool { return hub.Rooms() == 0 })
}
