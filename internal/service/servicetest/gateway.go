// Package servicetest provides an in-memory service.Gateway for tests.
package servicetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/quick-clinic/realtime-service/internal/domain"
)

type Gateway struct {
	mu sync.Mutex

	Users         map[string]domain.User
	Relations     map[string]domain.Relation
	Appointments  map[string]domain.Appointment
	Messages      []domain.ChatMessage
	Notifications []domain.Notification

	// Fail forces the named operation ("GetRelation", "CreateMessage", ...) to return the error.
	Fail map[string]error

	seq int
	now func() time.Time
}

func NewGateway() *Gateway {
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	g := &Gateway{
		Users:        map[string]domain.User{},
		Relations:    map[string]domain.Relation{},
		Appointments: map[string]domain.Appointment{},
		Fail:         map[string]error{},
	}
	g.now = func() time.Time { return base.Add(time.Duration(g.seq) * time.Second) }
	return g
}

// Seed adds a doctor D, a patient P, an outsider X and the relation R between D and P.
func (g *Gateway) Seed() *Gateway {
	g.AddUser(domain.User{ID: "D", Name: "Dr. House", Role: domain.RoleDoctor})
	g.AddUser(domain.User{ID: "P", Name: "Alice", Role: domain.RolePatient})
	g.AddUser(domain.User{ID: "X", Name: "Mallory", Role: domain.RolePatient})
	g.AddRelation(domain.Relation{ID: "R", DoctorUserID: "D", DoctorName: "Dr. House", PatientUserID: "P", PatientName: "Alice"})
	return g
}

func (g *Gateway) AddUser(u domain.User) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Users[u.ID] = u
}

func (g *Gateway) AddRelation(r domain.Relation) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Relations[r.ID] = r
}

func (g *Gateway) AddAppointment(a domain.Appointment) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Appointments[a.ID] = a
}

// AddMessages stores n messages from senderID with increasing timestamps.
func (g *Gateway) AddMessages(relationID, senderID string, n int) {
	for i := 0; i < n; i++ {
		_, _ = g.CreateMessage(context.Background(), relationID, senderID, fmt.Sprintf("msg %d", i+1))
	}
}

func (g *Gateway) MessagesIn(relationID string) []domain.ChatMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []domain.ChatMessage
	for _, m := range g.Messages {
		if m.RelationID == relationID {
			out = append(out, m)
		}
	}
	return out
}

func (g *Gateway) NotificationsFor(userID string) []domain.Notification {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []domain.Notification
	for _, n := range g.Notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (g *Gateway) fail(op string) error {
	return g.Fail[op]
}

func (g *Gateway) GetRelation(_ context.Context, relationID string) (*domain.Relation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("GetRelation"); err != nil {
		return nil, err
	}
	r, ok := g.Relations[relationID]
	if !ok {
		return nil, domain.ErrRelationNotFound
	}
	return &r, nil
}

func (g *Gateway) GetUser(_ context.Context, userID string) (*domain.User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("GetUser"); err != nil {
		return nil, err
	}
	u, ok := g.Users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (g *Gateway) ListMessages(_ context.Context, relationID string, skip, limit int) ([]domain.ChatMessage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("ListMessages"); err != nil {
		return nil, err
	}
	var all []domain.ChatMessage
	for _, m := range g.Messages {
		if m.RelationID == relationID {
			all = append(all, m)
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	if skip >= len(all) {
		return []domain.ChatMessage{}, nil
	}
	end := skip + limit
	if end > len(all) {
		end = len(all)
	}
	return all[skip:end], nil
}

func (g *Gateway) CountMessages(_ context.Context, relationID string) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("CountMessages"); err != nil {
		return 0, err
	}
	n := 0
	for _, m := range g.Messages {
		if m.RelationID == relationID {
			n++
		}
	}
	return n, nil
}

func (g *Gateway) CreateMessage(_ context.Context, relationID, senderID, text string) (*domain.ChatMessage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("CreateMessage"); err != nil {
		return nil, err
	}
	g.seq++
	m := domain.ChatMessage{
		ID:         fmt.Sprintf("m%d", g.seq),
		RelationID: relationID,
		SenderID:   senderID,
		Text:       text,
		CreatedAt:  g.now(),
	}
	if u, ok := g.Users[senderID]; ok {
		m.SenderName, m.SenderRole = u.Name, u.Role
	}
	g.Messages = append(g.Messages, m)
	return &m, nil
}

func (g *Gateway) CreateNotification(_ context.Context, userID, message string) (*domain.Notification, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("CreateNotification"); err != nil {
		return nil, err
	}
	g.seq++
	n := domain.Notification{
		ID:        fmt.Sprintf("n%d", g.seq),
		UserID:    userID,
		Message:   message,
		Status:    domain.NotificationUnread,
		CreatedAt: g.now(),
	}
	g.Notifications = append(g.Notifications, n)
	return &n, nil
}

func (g *Gateway) GetAppointment(_ context.Context, appointmentID string) (*domain.Appointment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("GetAppointment"); err != nil {
		return nil, err
	}
	a, ok := g.Appointments[appointmentID]
	if !ok {
		return nil, domain.ErrAppointmentNotFound
	}
	return &a, nil
}
