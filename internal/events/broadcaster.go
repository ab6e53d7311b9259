package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/prioboard/prioboard-backend/internal/tracker/domain"
)

// DefaultChannel is the pub/sub channel all tracker events go out on.
// Every connected observer shares the one channel; fan-out is redis's job.
const DefaultChannel = "tracker:events"

// Broadcaster publishes domain events to redis pub/sub. Delivery is
// fire-and-forget: observers that are not subscribed at publish time never
// see the event and must do a full list fetch when they (re)connect.
type Broadcaster struct {
	client  *redis.Client
	channel string
}

// NewBroadcaster creates a broadcaster on the given channel; an empty channel
// selects DefaultChannel.
func NewBroadcaster(client *redis.Client, channel string) *Broadcaster {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Broadcaster{client: client, channel: channel}
}

// Publish emits one event to all current subscribers.
func (b *Broadcaster) Publish(ctx context.Context, ev domain.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Subscription delivers decoded events to one observer. Close it when the
// observer disconnects.
type Subscription struct {
	// C carries decoded events. It is closed when the subscription ends.
	C <-chan domain.Event

	// ID identifies the subscriber in logs.
	ID string

	pubsub *redis.PubSub
}

// Subscribe registers a new observer on the event channel. Events published
// before the subscription was confirmed are not delivered.
func (b *Broadcaster) Subscribe(ctx context.Context) (*Subscription, error) {
	pubsub := b.client.Subscribe(ctx, b.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	sub := &Subscription{ID: uuid.NewString(), pubsub: pubsub}
	out := make(chan domain.Event, 16)
	sub.C = out

	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var ev domain.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("events: subscriber %s: dropping malformed event: %v", sub.ID, err)
				continue
			}
			select {
			case out <- ev:
			default:
				// no per-observer backlog: a stalled observer loses the
				// event and resyncs on its next full fetch
				log.Printf("events: subscriber %s: buffer full, dropping %s", sub.ID, ev.Type)
			}
		}
	}()

	return sub, nil
}

// Close unsubscribes the observer and releases its channel.
func (s *Subscription) Close() error {
	return s.pubsub.Close()
}
