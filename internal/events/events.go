// Package events announces settings changes on Redis so every instance of the
// job board reloads its keyword and location lists.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ChannelSettingsUpdated is both the Redis channel and the event type.
const ChannelSettingsUpdated = "EVENT_SETTINGS_UPDATED"

// SettingsUpdated is the JSON payload published on ChannelSettingsUpdated.
type SettingsUpdated struct {
	Type      string    `json:"type"`
	EventID   string    `json:"eventId"`
	Setting   string    `json:"setting"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Publisher is the subset of *redis.Client the notifier needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisNotifier publishes a SettingsUpdated event for every saved setting.
type RedisNotifier struct {
	pub Publisher
	now func() time.Time
}

// NewRedisNotifier returns a notifier publishing through pub.
func NewRedisNotifier(pub Publisher) *RedisNotifier {
	return &RedisNotifier{pub: pub, now: time.Now}
}

// SettingsUpdated publishes the event for setting.
func (n *RedisNotifier) SettingsUpdated(ctx context.Context, setting string) error {
	event, err := NewSettingsUpdated(setting, n.now())
	if err != nil {
		return err
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", ChannelSettingsUpdated, err)
	}
	if err := n.pub.Publish(ctx, ChannelSettingsUpdated, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", ChannelSettingsUpdated, err)
	}
	return nil
}

// NewSettingsUpdated builds an event with a fresh random ID.
func NewSettingsUpdated(setting string, at time.Time) (SettingsUpdated, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return SettingsUpdated{}, fmt.Errorf("event id: %w", err)
	}
	return SettingsUpdated{
		Type:      ChannelSettingsUpdated,
		EventID:   id.String(),
		Setting:   setting,
		UpdatedAt: at.UTC(),
	}, nil
}

// Decode parses a published payload. Payloads of another type are rejected.
func Decode(payload string) (SettingsUpdated, error) {
	var ev SettingsUpdated
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return SettingsUpdated{}, fmt.Errorf("decode %s: %w", ChannelSettingsUpdated, err)
	}
	if ev.Type != ChannelSettingsUpdated {
		return SettingsUpdated{}, fmt.Errorf("unexpected event type %q", ev.Type)
	}
	return ev, nil
}

// Subscription is the subset of *redis.PubSub Listen reads from.
type Subscription interface {
	Receive(ctx context.Context) (interface{}, error)
	Channel(opts ...redis.ChannelOption) <-chan *redis.Message
	Close() error
}

// Subscriber opens a subscription on one channel.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) Subscription
}

// RedisSubscriber adapts *redis.Client to Subscriber.
type RedisSubscriber struct {
	rdb *redis.Client
}

// NewRedisSubscriber returns a Subscriber backed by rdb.
func NewRedisSubscriber(rdb *redis.Client) RedisSubscriber {
	return RedisSubscriber{rdb: rdb}
}

// Subscribe implements Subscriber.
func (s RedisSubscriber) Subscribe(ctx context.Context, channel string) Subscription {
	return s.rdb.Subscribe(ctx, channel)
}

// Listen subscribes to ChannelSettingsUpdated and calls fn for each valid
// event until ctx is cancelled or the subscription closes, returning nil in
// both cases. Undecodable messages are logged and skipped.
func Listen(ctx context.Context, subscriber Subscriber, fn func(SettingsUpdated)) error {
	sub := subscriber.Subscribe(ctx, ChannelSettingsUpdated)
	defer sub.Close()

	// Wait for the subscription confirmation so a bad connection fails fast.
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", ChannelSettingsUpdated, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			ev, err := Decode(msg.Payload)
			if err != nil {
				slog.Warn("ignoring settings event", "err", err)
				continue
			}
			fn(ev)
		}
	}
}
