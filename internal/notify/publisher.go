package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"casino_platform/pkg/logger"
)

const (
	userChannelPrefix  = "casino:events:user:"
	adminChannelPrefix = "casino:events:admin:"
)

func UserChannel(userID string) string {
	return userChannelPrefix + userID
}

func AdminChannel(operatorID string) string {
	return adminChannelPrefix + operatorID
}

// Publisher pushes events onto redis pub/sub channels. Delivery is at
// most once: nothing is persisted and absent listeners miss the
// message.
type Publisher struct {
	rdb    *redis.Client
	logger *logger.Logger
}

func NewPublisher(rdb *redis.Client, log *logger.Logger) *Publisher {
	return &Publisher{rdb: rdb, logger: log}
}

func (p *Publisher) PublishUserEvent(ctx context.Context, ev Event) error {
	return p.publish(ctx, UserChannel(ev.UserID), ev)
}

func (p *Publisher) PublishAdminEvent(ctx context.Context, ev Event) error {
	return p.publish(ctx, AdminChannel(ev.OperatorID), ev)
}

func (p *Publisher) publish(ctx context.Context, channel string, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", channel, err)
	}
	p.logger.Debugf("event published channel=%s kind=%s", channel, ev.Kind)
	return nil
}
