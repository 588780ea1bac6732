package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/coursehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// channelPrefix namespaces the pub/sub channels this notifier publishes on
const channelPrefix = "coursehub:notify:"

// message is the wire format published to the notification channel
type message struct {
	UserID  string         `json:"user_id"`
	Kind    string         `json:"kind"`
	Payload map[string]any `json:"payload,omitempty"`
	SentAt  time.Time      `json:"sent_at"`
}

// RedisNotifier publishes notifications to a per-user Redis channel. A
// downstream delivery worker fans them out to email or push; the core
// only fires and forgets.
type RedisNotifier struct {
	client *redis.Client
}

// NewRedisNotifier creates a Redis-backed notifier
func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

// Notify implements shared.Notifier
func (n *RedisNotifier) Notify(ctx context.Context, userID uuid.UUID, kind shared.NotificationKind, payload map[string]any) error {
	body, err := json.Marshal(message{
		UserID:  userID.String(),
		Kind:    string(kind),
		Payload: payload,
		SentAt:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}
	channel := channelPrefix + userID.String()
	if err := n.client.Publish(ctx, channel, body).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

var _ shared.Notifier = (*RedisNotifier)(nil)
