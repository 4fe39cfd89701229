package ws

import (
	"log/slog"
	"sync"
)

type Conn interface {
	ID() string
	Send(msg Message) error
	Close() error
}

// Hub tracks room membership of live connections. A connection may be in several rooms.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[string]map[string]Conn     // room -> connID -> conn
	memberOf map[string]map[string]struct{} // connID -> rooms
}

func NewHub() *Hub {
	return &Hub{
		rooms:    make(map[string]map[string]Conn),
		memberOf: make(map[string]map[string]struct{}),
	}
}

// Join is idempotent.
func (h *Hub) Join(c Conn, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rs, ok := h.rooms[room]
	if !ok {
		rs = make(map[string]Conn)
		h.rooms[room] = rs
	}
	rs[c.ID()] = c

	ms, ok := h.memberOf[c.ID()]
	if !ok {
		ms = make(map[string]struct{})
		h.memberOf[c.ID()] = ms
	}
	ms[room] = struct{}{}
}

// Leave is idempotent; the room key is dropped once it is empty.
func (h *Hub) Leave(connID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.leaveLocked(connID, room)
}

func (h *Hub) LeaveAll(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room := range h.memberOf[connID] {
		h.leaveLocked(connID, room)
	}
}

func (h *Hub) leaveLocked(connID, room string) {
	if rs, ok := h.rooms[room]; ok {
		delete(rs, connID)
		if len(rs) == 0 {
			delete(h.rooms, room)
		}
	}
	if ms, ok := h.memberOf[connID]; ok {
		delete(ms, room)
		if len(ms) == 0 {
			delete(h.memberOf, connID)
		}
	}
}

// Broadcast sends msg to every member of room and returns how many sends succeeded.
func (h *Hub) Broadcast(room string, msg Message) int {
	return h.send(h.snapshot(room, ""), msg)
}

// EmitToOthers is Broadcast without the origin connection.
func (h *Hub) EmitToOthers(originID, room string, msg Message) int {
	return h.send(h.snapshot(room, originID), msg)
}

// Emit lets the notifier push without knowing the frame format.
func (h *Hub) Emit(room, event string, payload any) int {
	return h.Broadcast(room, Message{Type: event, Payload: payload})
}

func (h *Hub) Count(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[room])
}

// Rooms returns the number of non-empty rooms.
func (h *Hub) Rooms() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms)
}

// CloseAll closes every tracked connection; their sessions then clean up membership.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	conns := make(map[string]Conn)
	for _, rs := range h.rooms {
		for id, c := range rs {
			conns[id] = c
		}
	}
	h.mu.RUnlock()

	for _, c := range conns {
		_ = c.Close()
	}
}

func (h *Hub) snapshot(room, exclude string) []Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rs := h.rooms[room]
	out := make([]Conn, 0, len(rs))
	for id, c := range rs {
		if id == exclude {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (h *Hub) send(conns []Conn, msg Message) int {
	n := 0
	for _, c := range conns {
		if err := c.Send(msg); err != nil {
			// best-effort: соединение закроется своим read loop
			slog.Debug("ws send failed", "conn_id", c.ID(), "type", msg.Type, "err", err)
			continue
		}
		n++
	}
	return n
}
