package pubsub

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quick-clinic/realtime-service/internal/domain"
	"github.com/quick-clinic/realtime-service/internal/service"
	"github.com/quick-clinic/realtime-service/internal/service/servicetest"

	"github.com/redis/go-redis/v9"
)

type countingEmitter struct{ events []string }

func (c *countingEmitter) Emit(_, event string, _ any) int {
	c.events = append(c.events, event)
	return 1
}

func newSubscriber(t *testing.T) (*Subscriber, *servicetest.Gateway, *countingEmitter) {
	t.Helper()
	gw := servicetest.NewGateway().Seed()
	gw.AddAppointment(domain.Appointment{ID: "A1", DoctorID: "doc-1", DoctorUserID: "D", PatientName: "Alice"})
	em := &countingEmitter{}
	return NewSubscriber(nil, "", service.NewNotifier(gw, em)), gw, em
}

func TestHandleMessage_Dispatches(t *testing.T) {
	s, gw, em := newSubscriber(t)
	ctx := context.Background()

	msgs := []string{
		`{"type":"notification","payload":{"userId":"P","message":"Results ready"}}`,
		`{"type":"appointment_request","payload":{"doctorId":"doc-1","appointmentId":"A1"}}`,
		`{"type":"appointment_status","payload":{"patientUserId":"P","appointmentId":"A1","status":"CONFIRMED"}}`,
	}
	for _, m := range msgs {
		if err := s.handleMessage(ctx, m); err != nil {
			t.Fatalf("%s: %v", m, err)
		}
	}

	if len(gw.NotificationsFor("P")) != 2 || len(gw.NotificationsFor("D")) != 1 {
		t.Fatalf("persisted: P=%d D=%d", len(gw.NotificationsFor("P")), len(gw.NotificationsFor("D")))
	}
	want := []string{
		domain.EventNewNotification,
		domain.EventNewNotification, domain.EventNewAppointmentRequest,
		domain.EventNewNotification, domain.EventAppointmentStatusUpdate,
	}
	if len(em.events) != len(want) {
		t.Fatalf("events: %v", em.events)
	}
	for i := range want {
		if em.events[i] != want[i] {
			t.Fatalf("event %d: %s want %s", i, em.events[i], want[i])
		}
	}
}

func TestHandleMessage_Rejects(t *testing.T) {
	s, _, em := newSubscriber(t)
	ctx := context.Background()

	if err := s.handleMessage(ctx, "not json"); err == nil {
		t.Fatal("expected decode error")
	}
	if err := s.handleMessage(ctx, `{"type":"party"}`); !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("unknown type: %v", err)
	}
	if err := s.handleMessage(ctx, `{"type":"notification","payload":{"userId":""}}`); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("validation: %v", err)
	}
	if err := s.handleMessage(ctx, `{"type":"appointment_request","payload":"oops"}`); err == nil {
		t.Fatal("expected payload decode error")
	}
	if len(em.events) != 0 {
		t.Fatalf("nothing may be pushed, got %v", em.events)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	// unreachable server: Run keeps retrying until the context is cancelled
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	s := NewSubscriber(client, "test", nil)
	s.retryAfter = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	go s.Run(ctx)
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-s.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
