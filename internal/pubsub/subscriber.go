package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/quick-clinic/realtime-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

// Event types published by the booking API.
const (
	TypeNotification       = "notification"
	TypeAppointmentRequest = "appointment_request"
	TypeAppointmentStatus  = "appointment_status"
)

var ErrUnknownEvent = errors.New("unknown event type")

// Event is the envelope published on the notifications channel.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp,omitempty"`
}

type Dispatcher interface {
	Notify(ctx context.Context, userID, message string) (*domain.Notification, error)
	AppointmentRequested(ctx context.Context, doctorID, appointmentID string) (*domain.Appointment, error)
	AppointmentStatusChanged(ctx context.Context, ch domain.StatusChange) error
}

// Subscriber feeds events from a Redis channel into the dispatcher.
type Subscriber struct {
	client     *redis.Client
	channel    string
	dispatcher Dispatcher
	retryAfter time.Duration
	doneCh     chan struct{}
}

func NewSubscriber(client *redis.Client, channel string, d Dispatcher) *Subscriber {
	if channel == "" {
		channel = "clinic:notifications"
	}
	return &Subscriber{
		client:     client,
		channel:    channel,
		dispatcher: d,
		retryAfter: 2 * time.Second,
		doneCh:     make(chan struct{}),
	}
}

// Done is closed when Run returns.
func (s *Subscriber) Done() <-chan struct{} { return s.doneCh }

// Run subscribes until ctx is done, reconnecting after receive errors.
func (s *Subscriber) Run(ctx context.Context) {
	defer close(s.doneCh)

	for {
		err := s.runSubscription(ctx)
		if ctx.Err() != nil {
			return
		}
		slog.Warn("pubsub subscription lost, reconnecting", "channel", s.channel, "err", err, "retry_in", s.retryAfter)
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.retryAfter):
		}
	}
}

func (s *Subscriber) runSubscription(ctx context.Context) error {
	ps := s.client.Subscribe(ctx, s.channel)
	defer ps.Close()

	// ждём подтверждения подписки
	if _, err := ps.Receive(ctx); err != nil {
		return err
	}
	slog.Info("pubsub subscribed", "channel", s.channel)

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return errors.New("pubsub channel closed")
			}
			if err := s.handleMessage(ctx, msg.Payload); err != nil {
				slog.Warn("pubsub event dropped", "channel", s.channel, "err", err)
			}
		}
	}
}

func (s *Subscriber) handleMessage(ctx context.Context, payload string) error {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}

	switch ev.Type {
	case TypeNotification:
		var p struct {
			UserID  string `json:"userId"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return fmt.Errorf("decode %s: %w", ev.Type, err)
		}
		_, err := s.dispatcher.Notify(ctx, p.UserID, p.Message)
		return err
	case TypeAppointmentRequest:
		var p struct {
			DoctorID      string `json:"doctorId"`
			AppointmentID string `json:"appointmentId"`
		}
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return fmt.Errorf("decode %s: %w", ev.Type, err)
		}
		_, err := s.dispatcher.AppointmentRequested(ctx, p.DoctorID, p.AppointmentID)
		return err
	case TypeAppointmentStatus:
		var p domain.StatusChange
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return fmt.Errorf("decode %s: %w", ev.Type, err)
		}
		return s.dispatcher.AppointmentStatusChanged(ctx, p)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}
