package service

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/hirewire/hirewire/pkg/eventbus"
)

type recordingConn struct {
	mu       sync.Mutex
	messages []interface{}
}

func (c *recordingConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, v)
	return nil
}

func (c *recordingConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

func TestAttachForwardsUserTopic(t *testing.T) {
	bus := eventbus.New()
	svc := NewRealtimeService(bus)

	userID := uuid.New()
	conn := &recordingConn{}
	detach := svc.Attach(userID, conn)
	defer detach()

	bus.Publish(DBChangeTopic(userID), "payload")
	bus.Publish(DBChangeTopic(uuid.New()), "someone else's payload")

	if conn.count() != 1 {
		t.Fatalf("forwarded %d messages, want 1", conn.count())
	}

	msg := conn.messages[0].(ChangeMessage)
	if msg.Event != "change" || msg.Payload != "payload" {
		t.Fatalf("message = %+v", msg)
	}
}

func TestDetachStopsForwarding(t *testing.T) {
	bus := eventbus.New()
	svc := NewRealtimeService(bus)

	userID := uuid.New()
	conn := &recordingConn{}
	detach := svc.Attach(userID, conn)

	bus.Publish(DBChangeTopic(userID), "before")
	detach()
	detach() // safe to call twice
	bus.Publish(DBChangeTopic(userID), "after")

	if conn.count() != 1 {
		t.Fatalf("forwarded %d messages after detach, want 1", conn.count())
	}
	if svc.ConnectionCount(userID) != 0 {
		t.Fatalf("connection count = %d", svc.ConnectionCount(userID))
	}
	if bus.SubscriberCount(DBChangeTopic(userID)) != 0 {
		t.Fatal("topic subscription leaked after detach")
	}
}

func TestMultipleConnectionsPerUser(t *testing.T) {
	bus := eventbus.New()
	svc := NewRealtimeService(bus)

	userID := uuid.New()
	laptop := &recordingConn{}
	phone := &recordingConn{}
	detachLaptop := svc.Attach(userID, laptop)
	defer detachLaptop()
	detachPhone := svc.Attach(userID, phone)

	bus.Publish(DBChangeTopic(userID), "first")

	if svc.ConnectionCount(userID) != 2 {
		t.Fatalf("connection count = %d", svc.ConnectionCount(userID))
	}
	if laptop.count() != 1 || phone.count() != 1 {
		t.Fatalf("laptop=%d phone=%d", laptop.count(), phone.count())
	}

	detachPhone()
	bus.Publish(DBChangeTopic(userID), "second")

	if laptop.count() != 2 || phone.count() != 1 {
		t.Fatalf("after detaching phone: laptop=%d phone=%d", laptop.count(), phone.count())
	}
}
