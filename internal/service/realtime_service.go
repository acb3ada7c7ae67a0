package service

import (
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/hirewire/hirewire/pkg/eventbus"
)

// ChangeMessage is the single outbound message type on the realtime channel.
type ChangeMessage struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Conn is the write side of a realtime connection. *websocket.Conn satisfies
// it; tests substitute a recorder.
type Conn interface {
	WriteJSON(v interface{}) error
}

// RealtimeService maps authenticated connections to their user's change
// topic. Each attached connection gets its own forwarding subscription, and
// Detach must run on every disconnect path or the handler leaks — topics
// stay alive as long as any handler is attached.
type RealtimeService struct {
	bus *eventbus.Bus

	mu    sync.Mutex
	conns map[uuid.UUID]map[Conn]*eventbus.Subscription
}

func NewRealtimeService(bus *eventbus.Bus) *RealtimeService {
	return &RealtimeService{
		bus:   bus,
		conns: make(map[uuid.UUID]map[Conn]*eventbus.Subscription),
	}
}

// Attach subscribes conn to the user's change topic and returns a detach
// function, safe to call more than once.
func (s *RealtimeService) Attach(userID uuid.UUID, conn Conn) func() {
	// gorilla/websocket allows a single concurrent writer; publishes can
	// arrive from any goroutine, so serialize writes per connection.
	var writeMu sync.Mutex

	sub := s.bus.Subscribe(DBChangeTopic(userID), func(payload interface{}) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(ChangeMessage{Event: "change", Payload: payload}); err != nil {
			log.Printf("realtime: forward to user %s failed: %v", userID, err)
		}
	})

	s.mu.Lock()
	set := s.conns[userID]
	if set == nil {
		set = make(map[Conn]*eventbus.Subscription)
		s.conns[userID] = set
	}
	set[conn] = sub
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.detach(userID, conn) })
	}
}

func (s *RealtimeService) detach(userID uuid.UUID, conn Conn) {
	s.mu.Lock()
	set := s.conns[userID]
	sub := set[conn]
	delete(set, conn)
	if len(set) == 0 {
		delete(s.conns, userID)
	}
	s.mu.Unlock()

	if sub != nil {
		s.bus.Unsubscribe(sub)
	}
}

// ConnectionCount reports live connections for a user.
func (s *RealtimeService) ConnectionCount(userID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns[userID])
}
