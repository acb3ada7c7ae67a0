package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/hirewire/hirewire/pkg/eventbus"
	"github.com/redis/go-redis/v9"
)

const defaultBridgeChannel = "hirewire:db-change"

// redisEnvelope wraps a topic publish so every instance can fan it back into
// its local bus.
type redisEnvelope struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
	SentAt  time.Time       `json:"sent_at"`
}

// RedisBridge replaces direct local publishing in multi-instance
// deployments: publishes go to a shared redis channel, and a subscriber on
// each instance replays them into that instance's local bus, so a websocket
// connected anywhere receives the event. Single-instance deployments skip
// the bridge and hand the bus itself to the notification service.
type RedisBridge struct {
	client  *redis.Client
	channel string
	bus     *eventbus.Bus
}

func NewRedisBridge(client *redis.Client, channel string, bus *eventbus.Bus) *RedisBridge {
	if channel == "" {
		channel = defaultBridgeChannel
	}
	return &RedisBridge{client: client, channel: channel, bus: bus}
}

// Publish implements eventbus.Publisher.
func (b *RedisBridge) Publish(topic string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("realtime bridge: encode payload for %s: %v", topic, err)
		return
	}

	env, err := json.Marshal(redisEnvelope{Topic: topic, Payload: body, SentAt: time.Now().UTC()})
	if err != nil {
		log.Printf("realtime bridge: encode envelope for %s: %v", topic, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := b.client.Publish(ctx, b.channel, env).Err(); err != nil {
		log.Printf("realtime bridge: publish to %s failed: %v", b.channel, err)
	}
}

// Run subscribes to the shared channel and replays envelopes into the local
// bus until ctx is cancelled. Call it on its own goroutine at startup.
func (b *RedisBridge) Run(ctx context.Context) {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	// Ensure subscription is established before reading messages.
	if _, err := pubsub.Receive(ctx); err != nil {
		log.Printf("realtime bridge: subscribe to %s failed: %v", b.channel, err)
		return
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env redisEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Printf("realtime bridge: decode envelope: %v", err)
				continue
			}
			if env.Topic == "" {
				continue
			}
			b.bus.Publish(env.Topic, env.Payload)
		}
	}
}
