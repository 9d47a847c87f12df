package notify

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/redis/go-redis/v9"

	"casino_platform/pkg/logger"
)

// Subscriber bridges redis user-event channels into the in-process
// hub so websocket sessions see events regardless of which instance
// settled the bet.
type Subscriber struct {
	rdb    *redis.Client
	hub    *Hub
	logger *logger.Logger
}

func NewSubscriber(rdb *redis.Client, hub *Hub, log *logger.Logger) *Subscriber {
	return &Subscriber{rdb: rdb, hub: hub, logger: log}
}

// Run blocks until ctx is cancelled, feeding the hub.
func (s *Subscriber) Run(ctx context.Context) error {
	sub := s.rdb.PSubscribe(ctx, UserChannel("*"))
	defer sub.Close()

	s.logger.Info("event subscriber started")
	ch := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				s.logger.Warnf("dropping malformed event payload: %v", err)
				continue
			}
			userID := strings.TrimPrefix(msg.Channel, userChannelPrefix)
			s.hub.Publish(userID, ev)
		}
	}
}
