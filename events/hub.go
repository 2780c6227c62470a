package events

import (
	"context"
	"slices"
	"sync"
)

// sessionBuffer is how many undelivered events a slow session may hold before new ones are dropped.
const sessionBuffer = 16

type session struct {
	userName string
	events   chan Event
}

// Hub fans events out to the sessions subscribed for the event's user.
type Hub struct {
	mu       sync.Mutex
	sessions []*session
}

func NewHub() *Hub {
	return &Hub{}
}

// Subscribe registers a session for userName. The returned cancel func
// unregisters it and closes the channel.
func (h *Hub) Subscribe(userName string) (<-chan Event, func()) {
	s := &session{userName: userName, events: make(chan Event, sessionBuffer)}

	h.mu.Lock()
	h.sessions = append(h.sessions, s)
	h.mu.Unlock()

	var once sync.Once
	return s.events, func() {
		once.Do(func() { h.remove(s) })
	}
}

func (h *Hub) remove(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	idx := slices.Index(h.sessions, s)
	if idx != -1 {
		h.sessions[idx] = nil
		h.sessions = slices.Delete(h.sessions, idx, idx+1)
		close(s.events)
	}
}

// Publish delivers ev to every matching session without blocking.
func (h *Hub) Publish(_ context.Context, ev Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, s := range h.sessions {
		if s.userName != ev.UserName {
			continue
		}
		select {
		case s.events <- ev:
		default:
		}
	}
	return nil
}

// Sessions returns the number of live sessions.
func (h *Hub) Sessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}
